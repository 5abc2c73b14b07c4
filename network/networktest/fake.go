// Package networktest provides an in-process fake of network.Facade so
// connection and sentinel tests can exercise pipelining, fragmentation
// and disconnection without opening a real socket.
package networktest

import (
	"sync"
	"time"

	"redisasync/network"
)

// FakeFacade is a network.Facade backed by two in-memory byte queues: an
// internal inbound buffer (bytes the code under test will read) and
// Written (bytes the code under test wrote, one entry per AsyncWrite).
// Tests drive it directly with Deliver and
// inspect Written; there is no goroutine racing the test unless the test
// itself calls Deliver concurrently.
type FakeFacade struct {
	mu sync.Mutex

	connected     bool
	connectErr    error
	failConnectOn map[string]error

	pendingReads []network.ReadRequest
	inbound      []byte

	Written [][]byte

	onDisconnect func()
}

// NewFakeFacade returns a FakeFacade that will succeed on Connect unless
// FailConnect (or FailConnectOnHost for that host) is called first.
func NewFakeFacade() *FakeFacade {
	return &FakeFacade{}
}

// FailConnect makes every subsequent Connect call return err, regardless
// of host.
func (f *FakeFacade) FailConnect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

// FailConnectOnHost makes Connect calls naming host return err, while
// every other host still succeeds. Used to simulate a round-robin
// fail-through across several candidate addresses.
func (f *FakeFacade) FailConnectOnHost(host string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failConnectOn == nil {
		f.failConnectOn = make(map[string]error)
	}
	f.failConnectOn[host] = err
}

func (f *FakeFacade) Connect(host string, port int, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	if err, bad := f.failConnectOn[host]; bad {
		return err
	}
	f.connected = true
	return nil
}

func (f *FakeFacade) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeFacade) Disconnect(waitForRemoval bool) {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
}

// SetOnDisconnectionHandler installs fn, invoked by SimulatePeerClose.
func (f *FakeFacade) SetOnDisconnectionHandler(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDisconnect = fn
}

// AsyncRead queues req if no bytes are available yet, or serves it
// immediately (synchronously) from the buffered inbound bytes.
func (f *FakeFacade) AsyncRead(req network.ReadRequest) {
	f.mu.Lock()
	if len(f.inbound) == 0 {
		f.pendingReads = append(f.pendingReads, req)
		f.mu.Unlock()
		return
	}
	n := req.Size
	if n > len(f.inbound) {
		n = len(f.inbound)
	}
	chunk := f.inbound[:n]
	f.inbound = f.inbound[n:]
	f.mu.Unlock()

	req.Callback(network.ReadResult{Success: true, Buffer: chunk})
}

// AsyncWrite records the write and reports success synchronously.
func (f *FakeFacade) AsyncWrite(req network.WriteRequest) {
	f.mu.Lock()
	f.Written = append(f.Written, append([]byte(nil), req.Buffer...))
	f.mu.Unlock()

	if req.Callback != nil {
		req.Callback(network.WriteResult{Success: true, BytesWritten: len(req.Buffer)})
	}
}

// WrittenCount returns the number of AsyncWrite calls recorded so far,
// safe to poll from a different goroutine than the one driving writes.
func (f *FakeFacade) WrittenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Written)
}

// Deliver makes b available to reads: it satisfies the oldest pending
// AsyncRead if one is waiting, else buffers b for a future AsyncRead.
func (f *FakeFacade) Deliver(b []byte) {
	f.mu.Lock()
	if len(f.pendingReads) == 0 {
		f.inbound = append(f.inbound, b...)
		f.mu.Unlock()
		return
	}
	req := f.pendingReads[0]
	f.pendingReads = f.pendingReads[1:]
	f.mu.Unlock()

	req.Callback(network.ReadResult{Success: true, Buffer: b})
}

// SimulatePeerClose fires the disconnection handler and fails any
// pending read, as a real facade would on EOF.
func (f *FakeFacade) SimulatePeerClose() {
	f.mu.Lock()
	f.connected = false
	pending := f.pendingReads
	f.pendingReads = nil
	fn := f.onDisconnect
	f.mu.Unlock()

	for _, req := range pending {
		req.Callback(network.ReadResult{Success: false})
	}
	if fn != nil {
		fn()
	}
}

var _ network.Facade = (*FakeFacade)(nil)
