package network

import (
	"net"
	"strconv"
	"sync"
	"time"

	"redisasync/errors"
	"redisasync/lib/logger"
	"redisasync/lib/sync/wait"
)

// drainTimeout bounds how long Disconnect(true) waits for in-flight
// writes to finish before giving up, mirroring the teacher's own
// WaitWithTimeout usage for graceful shutdown.
const drainTimeout = 5 * time.Second

// TCPFacade is the production Facade, backed by a net.Conn. A single
// read-loop goroutine started by Connect services AsyncRead requests one
// at a time off a channel, performing a blocking net.Conn.Read for each
// and invoking its callback — a perpetually-armed background goroutine
// standing in for one-shot async_read submission. Writes each get their
// own short-lived goroutine so AsyncWrite never blocks its caller,
// mirroring the handleRead/handleWrite goroutine pair the teacher's
// client starts around its net.Conn.
type TCPFacade struct {
	mu   sync.Mutex
	conn net.Conn

	readRequests chan ReadRequest

	onDisconnect     func()
	disconnectCalled bool

	writers wait.Wait
}

// NewTCPFacade returns a disconnected TCPFacade.
func NewTCPFacade() *TCPFacade {
	return &TCPFacade{}
}

// Connect dials host:port, failing after timeout elapses (0 means no
// timeout) and starts the read loop.
func (f *TCPFacade) Connect(host string, port int, timeout time.Duration) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var (
		conn net.Conn
		err  error
	)
	if timeout > 0 {
		conn, err = net.DialTimeout("tcp", addr, timeout)
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return errors.NewConnectError("dial "+addr+" failed", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.disconnectCalled = false
	f.readRequests = make(chan ReadRequest, 8)
	f.mu.Unlock()

	go f.readLoop(conn, f.readRequests)

	return nil
}

func (f *TCPFacade) readLoop(conn net.Conn, requests chan ReadRequest) {
	for req := range requests {
		buf := make([]byte, req.Size)
		n, err := conn.Read(buf)
		if err != nil {
			f.notifyDisconnected()
			if req.Callback != nil {
				req.Callback(ReadResult{Success: false})
			}
			continue
		}
		if req.Callback != nil {
			req.Callback(ReadResult{Success: true, Buffer: buf[:n]})
		}
	}
}

// IsConnected reports whether Connect succeeded and neither Disconnect
// nor a detected read/write failure has happened since.
func (f *TCPFacade) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn != nil && !f.disconnectCalled
}

// AsyncRead enqueues req on the read loop; its callback fires from that
// loop's goroutine once the read completes.
func (f *TCPFacade) AsyncRead(req ReadRequest) {
	f.mu.Lock()
	requests := f.readRequests
	closed := f.disconnectCalled
	f.mu.Unlock()

	if requests == nil || closed {
		if req.Callback != nil {
			req.Callback(ReadResult{Success: false})
		}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			// readRequests was closed by a concurrent Disconnect between
			// the check above and the send.
			if req.Callback != nil {
				req.Callback(ReadResult{Success: false})
			}
		}
	}()
	requests <- req
}

// AsyncWrite spawns a goroutine that writes req.Buffer in full and
// reports the outcome via req.Callback, if given.
func (f *TCPFacade) AsyncWrite(req WriteRequest) {
	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()

	if conn == nil {
		if req.Callback != nil {
			req.Callback(WriteResult{Success: false})
		}
		return
	}

	f.writers.Add(1)
	go func() {
		defer f.writers.Done()
		n, err := conn.Write(req.Buffer)
		if err != nil {
			f.notifyDisconnected()
			if req.Callback != nil {
				req.Callback(WriteResult{Success: false, BytesWritten: n})
			}
			return
		}
		if req.Callback != nil {
			req.Callback(WriteResult{Success: true, BytesWritten: n})
		}
	}()
}

// SetOnDisconnectionHandler installs fn as the at-most-once
// disconnection callback.
func (f *TCPFacade) SetOnDisconnectionHandler(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDisconnect = fn
}

// Disconnect closes the socket and stops the read loop. If waitForRemoval
// is set it blocks until every in-flight AsyncWrite has returned or
// drainTimeout elapses, whichever comes first; it does not wait for a
// read callback that is still running on the read loop.
func (f *TCPFacade) Disconnect(waitForRemoval bool) {
	f.mu.Lock()
	conn := f.conn
	requests := f.readRequests
	f.disconnectCalled = true
	f.readRequests = nil
	f.mu.Unlock()

	// readRequests is non-nil from Connect until the first Disconnect, so
	// the socket is closed exactly once per session, even when a read or
	// write failure has already reported the disconnection.
	if requests != nil {
		if err := conn.Close(); err != nil {
			logger.Default().Warn("tcp facade close: %v", err)
		}
		close(requests)
	}

	if waitForRemoval {
		if f.writers.WaitWithTimeout(drainTimeout) {
			logger.Default().Warn("tcp facade: timed out draining in-flight writes")
		}
	}
}

func (f *TCPFacade) notifyDisconnected() {
	f.mu.Lock()
	already := f.disconnectCalled
	f.disconnectCalled = true
	fn := f.onDisconnect
	f.mu.Unlock()

	if already || fn == nil {
		return
	}
	fn()
}
