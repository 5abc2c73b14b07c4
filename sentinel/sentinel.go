// Package sentinel implements a Redis Sentinel client: a Redis
// Connection specialized for SENTINEL administrative queries, plus a
// registry of candidate sentinel addresses and a round-robin
// fail-through connection policy, grounded on cpp_redis's
// core::sentinel.
package sentinel

import (
	"strconv"
	"sync"
	"time"

	"redisasync/connection"
	"redisasync/errors"
	"redisasync/lib/logger"
	"redisasync/reply"
)

// ReplyCallback is invoked once per Send, with the reply that command
// produced.
type ReplyCallback func(reply.Reply)

// DisconnectHandler is invoked at most once when the sentinel
// connection is torn down.
type DisconnectHandler func(client interface{})

// MonitorEntry is one registered candidate sentinel address.
type MonitorEntry struct {
	Host          string
	Port          int
	TimeoutMillis uint32
}

// SentinelOption configures a Client at construction time.
type SentinelOption func(*Client)

// WithLogger injects a logger.Logger in place of the package default.
func WithLogger(l logger.Logger) SentinelOption {
	return func(c *Client) { c.log = l }
}

// WithConnection overrides the underlying connection, used by tests to
// inject a connection.Connection built over network/networktest.
func WithConnection(conn *connection.Connection) SentinelOption {
	return func(c *Client) { c.conn = conn }
}

// Client is a Redis Connection specialized for SENTINEL queries, with a
// registry of candidate addresses and round-robin fail-through connect.
type Client struct {
	conn *connection.Connection
	log  logger.Logger

	sentinelsMu sync.Mutex
	sentinels   []MonitorEntry

	callbackMu   sync.Mutex
	callbacks    []ReplyCallback
	runningCount int
	cond         *sync.Cond

	disconnectHandler DisconnectHandler
}

// New constructs a Client with an empty monitor registry.
func New(opts ...SentinelOption) *Client {
	c := &Client{log: logger.Default()}
	c.cond = sync.NewCond(&c.callbackMu)
	for _, opt := range opts {
		opt(c)
	}
	if c.conn == nil {
		c.conn = connection.New()
	}
	return c
}

// AddSentinel registers a candidate sentinel address.
func (c *Client) AddSentinel(host string, port int, timeoutMillis uint32) {
	c.sentinelsMu.Lock()
	defer c.sentinelsMu.Unlock()
	c.sentinels = append(c.sentinels, MonitorEntry{Host: host, Port: port, TimeoutMillis: timeoutMillis})
}

// ClearSentinels empties the monitor registry.
func (c *Client) ClearSentinels() {
	c.sentinelsMu.Lock()
	defer c.sentinelsMu.Unlock()
	c.sentinels = nil
}

// Sentinels returns a copy of the current monitor registry, in
// insertion order.
func (c *Client) Sentinels() []MonitorEntry {
	c.sentinelsMu.Lock()
	defer c.sentinelsMu.Unlock()
	out := make([]MonitorEntry, len(c.sentinels))
	copy(out, c.sentinels)
	return out
}

// Connect connects directly to host:port, bypassing the monitor
// registry and round-robin fail-through.
func (c *Client) Connect(host string, port int, disconnectHandler DisconnectHandler, timeout time.Duration) error {
	c.disconnectHandler = disconnectHandler
	c.log.Debug("sentinel: attempts to connect to %s:%d", host, port)
	if err := c.conn.Connect(host, port, c.onConnectionDisconnected, c.onConnectionReceive, timeout); err != nil {
		return err
	}
	c.log.Info("sentinel: connected to %s:%d", host, port)
	return nil
}

// ConnectSentinel walks the monitor registry in insertion order,
// attempting to connect to each until one succeeds. It fails with a
// *ConfigError if the registry is empty, or a *ConnectError if every
// candidate failed.
func (c *Client) ConnectSentinel(disconnectHandler DisconnectHandler) error {
	entries := c.Sentinels()
	if len(entries) == 0 {
		return errors.NewConfigError("no sentinels available; call AddSentinel before ConnectSentinel")
	}

	var lastErr error
	for _, entry := range entries {
		c.log.Debug("sentinel: attempting to connect to host %s", entry.Host)
		timeout := time.Duration(entry.TimeoutMillis) * time.Millisecond
		err := c.conn.Connect(entry.Host, entry.Port, c.onConnectionDisconnected, c.onConnectionReceive, timeout)
		if err == nil && c.conn.IsConnected() {
			c.log.Info("sentinel: connected ok to host %s", entry.Host)
			c.disconnectHandler = disconnectHandler
			return nil
		}
		if err != nil {
			lastErr = err
		}
		c.log.Info("sentinel: unable to connect to sentinel host %s", entry.Host)
		c.conn.Disconnect(true)
	}

	return errors.NewConnectError("unable to connect to any sentinels", lastErr)
}

// Send serializes argv onto the underlying connection and enqueues
// callback, atomically so the callback queue's order matches send
// order. callback may be nil.
func (c *Client) Send(argv [][]byte, callback ReplyCallback) {
	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()

	c.log.Info("sentinel: attempts to store new command in the send buffer")
	c.conn.Send(argv)
	c.callbacks = append(c.callbacks, callback)
	c.log.Info("sentinel: stored new command in the send buffer")
}

// Commit flushes the pipelined commands. On failure the callback queue
// is cleared and the error is returned.
func (c *Client) Commit() error {
	return c.tryCommit()
}

// SyncCommit commits, then blocks until every dispatched callback has
// finished running and the callback queue is empty.
func (c *Client) SyncCommit() error {
	if err := c.tryCommit(); err != nil {
		return err
	}

	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()
	for !(c.runningCount == 0 && len(c.callbacks) == 0) {
		c.cond.Wait()
	}
	return nil
}

func (c *Client) tryCommit() error {
	c.log.Debug("sentinel: attempts to send pipelined commands")
	if err := c.conn.Commit(); err != nil {
		c.log.Error("sentinel: could not send pipelined commands")
		c.clearCallbacks()
		return err
	}
	c.log.Info("sentinel: sent pipelined commands")
	return nil
}

// Disconnect delegates to the underlying connection.
func (c *Client) Disconnect(waitForRemoval bool) {
	c.log.Debug("sentinel: attempts to disconnect")
	c.conn.Disconnect(waitForRemoval)
	c.log.Info("sentinel: disconnected")
}

// IsConnected reports whether the underlying connection is live.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

// GetMasterAddrByName asks a sentinel for the current master address of
// the named monitored set. With autoConnect, it connects via
// ConnectSentinel first (swallowing any error) if not already
// connected, and disconnects again before returning. Callers should
// treat port == 0 as "not found".
func (c *Client) GetMasterAddrByName(name string, autoConnect bool) (host string, port int, err error) {
	if autoConnect && len(c.Sentinels()) == 0 {
		return "", 0, errors.NewConfigError("no sentinels available; call AddSentinel before GetMasterAddrByName")
	}
	if !autoConnect && !c.IsConnected() {
		return "", 0, errors.NewNotConnectedError("call Connect first or enable autoConnect")
	}

	if autoConnect && !c.IsConnected() {
		_ = c.ConnectSentinel(nil)
		if !c.IsConnected() {
			return "", 0, nil
		}
	}

	c.Send([][]byte{[]byte("SENTINEL"), []byte("get-master-addr-by-name"), []byte(name)}, func(r reply.Reply) {
		if r.Kind() != reply.KindArray || len(r.Array()) < 2 {
			return
		}
		arr := r.Array()
		host = arr[0].Str()
		if p, convErr := strconv.Atoi(arr[1].Str()); convErr == nil {
			port = p
		}
	})

	if err := c.SyncCommit(); err != nil {
		return "", 0, err
	}

	if autoConnect {
		c.Disconnect(true)
	}

	return host, port, nil
}

func (c *Client) clearCallbacks() {
	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()
	c.callbacks = nil
	c.cond.Broadcast()
}

func (c *Client) callDisconnectHandler() {
	if c.disconnectHandler != nil {
		c.log.Info("sentinel: calls disconnect handler")
		c.disconnectHandler(c)
	}
}

func (c *Client) onConnectionDisconnected(interface{}) {
	c.log.Warn("sentinel: has been disconnected")
	c.clearCallbacks()
	c.callDisconnectHandler()
}

func (c *Client) onConnectionReceive(_ *connection.Connection, r reply.Reply) {
	c.log.Info("sentinel: received reply")

	c.callbackMu.Lock()
	c.runningCount++
	var callback ReplyCallback
	if len(c.callbacks) > 0 {
		callback = c.callbacks[0]
		c.callbacks = c.callbacks[1:]
	}
	c.callbackMu.Unlock()

	if callback != nil {
		c.log.Debug("sentinel: executes reply callback")
		callback(r)
	}

	c.callbackMu.Lock()
	c.runningCount--
	c.cond.Broadcast()
	c.callbackMu.Unlock()
}
