// Package connection binds an async TCP facade to the RESP reply
// builder: it serializes outbound commands, flushes them on commit, and
// feeds inbound bytes to the builder, dispatching each completed reply
// to a user-supplied handler in FIFO order.
package connection

import (
	"sync"
	"time"

	"redisasync/command"
	"redisasync/errors"
	"redisasync/lib/logger"
	"redisasync/network"
	"redisasync/parser"
	"redisasync/reply"
)

// DefaultReadSize is the recommended async-read chunk size.
const DefaultReadSize = 4096

// ReplyHandler is invoked once per completed reply, in the order the
// corresponding commands were sent.
type ReplyHandler func(*Connection, reply.Reply)

// DisconnectHandler is invoked when the connection is torn down by a peer
// close or I/O failure reported by the facade, or by a protocol error. A
// local Disconnect call does not invoke it.
type DisconnectHandler func(client interface{})

// ConnectionOption configures a Connection at construction time.
type ConnectionOption func(*Connection)

// WithReadSize overrides DefaultReadSize for this connection's async
// reads.
func WithReadSize(n int) ConnectionOption {
	return func(c *Connection) { c.readSize = n }
}

// WithDialTimeout sets the timeout passed to the TCP facade's Connect.
func WithDialTimeout(d time.Duration) ConnectionOption {
	return func(c *Connection) { c.dialTimeout = d }
}

// WithLogger injects a logger.Logger in place of the package default.
func WithLogger(l logger.Logger) ConnectionOption {
	return func(c *Connection) { c.log = l }
}

// WithFacade overrides the network.Facade implementation; tests use this
// to inject network/networktest.FakeFacade. Production callers normally
// leave this at its default, a network.TCPFacade.
func WithFacade(f network.Facade) ConnectionOption {
	return func(c *Connection) { c.facade = f }
}

// Connection is a pipelined, single-peer RESP connection. It is safe for
// Send/Commit/Disconnect/IsConnected to be called concurrently from any
// number of goroutines; inbound replies are dispatched from the facade's
// own worker goroutine(s).
type Connection struct {
	facade network.Facade

	readSize    int
	dialTimeout time.Duration
	log         logger.Logger

	outboundMu sync.Mutex
	outbound   []byte

	builder *parser.ReplyBuilder

	replyHandler      ReplyHandler
	disconnectHandler DisconnectHandler
}

// New constructs a disconnected Connection, ready for Connect.
func New(opts ...ConnectionOption) *Connection {
	c := &Connection{
		readSize:    DefaultReadSize,
		dialTimeout: 0,
		log:         logger.Default(),
		builder:     parser.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.facade == nil {
		c.facade = network.NewTCPFacade()
	}
	return c
}

// Connect dials host:port, installs the disconnection handler, stores
// replyHandler for inbound dispatch, and arms the first async read.
// Re-connecting after a prior Disconnect is safe.
func (c *Connection) Connect(host string, port int, disconnectHandler DisconnectHandler, replyHandler ReplyHandler, timeout time.Duration) error {
	if timeout == 0 {
		timeout = c.dialTimeout
	}

	c.replyHandler = replyHandler
	c.disconnectHandler = disconnectHandler

	c.facade.SetOnDisconnectionHandler(c.onFacadeDisconnected)

	if err := c.facade.Connect(host, port, timeout); err != nil {
		return errors.NewConnectError("connect to "+host, err)
	}

	c.log.Info("connection: connected to %s:%d", host, port)
	c.armRead()
	return nil
}

// Send appends cmd's serialized form to the outbound buffer. It returns
// immediately and performs no I/O.
func (c *Connection) Send(argv [][]byte) {
	cmd := command.NewFromBytes(argv)
	buf := cmd.Serialize()

	c.outboundMu.Lock()
	c.outbound = append(c.outbound, buf...)
	c.outboundMu.Unlock()
}

// Commit atomically extracts the outbound buffer and issues one
// async-write of its entire contents. It returns immediately once the
// write has been submitted; it does not wait for the write to complete.
// The only error it can return is a failure to submit the write at all
// (the connection is already down); a write that fails after
// submission is reported through the disconnection handler instead.
func (c *Connection) Commit() error {
	c.outboundMu.Lock()
	chunk := c.outbound
	c.outbound = nil
	c.outboundMu.Unlock()

	if len(chunk) == 0 {
		return nil
	}

	if !c.facade.IsConnected() {
		return errors.NewNetworkError("commit", errConnectionClosed)
	}

	c.facade.AsyncWrite(network.WriteRequest{
		Buffer: chunk,
		Callback: func(res network.WriteResult) {
			if !res.Success {
				c.log.Warn("connection: write failed")
			}
		},
	})
	return nil
}

// IsConnected reports whether the underlying facade considers itself
// connected.
func (c *Connection) IsConnected() bool {
	return c.facade.IsConnected()
}

// Disconnect asks the facade to close, resets the reply builder, and
// clears the outbound buffer. waitForRemoval blocks until all pending
// facade callbacks have drained.
func (c *Connection) Disconnect(waitForRemoval bool) {
	c.facade.Disconnect(waitForRemoval)
	c.teardown()
}

func (c *Connection) teardown() {
	c.outboundMu.Lock()
	c.outbound = nil
	c.outboundMu.Unlock()

	c.builder.Reset()
	c.builder.DiscardReplies()
}

func (c *Connection) onFacadeDisconnected() {
	c.teardown()
	if c.disconnectHandler != nil {
		c.disconnectHandler(c)
	}
}

// armRead issues one async-read of readSize bytes, whose callback
// implements the four-step inbound loop: bail on failure, feed the
// builder, drain completed replies in order, re-arm.
func (c *Connection) armRead() {
	c.facade.AsyncRead(network.ReadRequest{
		Size:     c.readSize,
		Callback: c.onReadComplete,
	})
}

func (c *Connection) onReadComplete(res network.ReadResult) {
	if !res.Success {
		return
	}

	if err := c.builder.PushBytes(res.Buffer); err != nil {
		c.log.Error("connection: could not build reply (invalid format), disconnecting: %v", err)
		c.onFacadeDisconnected()
		return
	}

	for c.builder.HasReply() {
		r, err := c.builder.Front()
		if err != nil {
			break
		}
		_ = c.builder.Pop()
		if c.replyHandler != nil {
			c.replyHandler(c, r)
		}
	}

	if !c.facade.IsConnected() {
		c.log.Debug("connection: skipping re-arm, already disconnected")
		return
	}
	c.armRead()
}

var errConnectionClosed = errors.NewNotConnectedError("write failed")
