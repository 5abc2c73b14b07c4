// Package network defines the async TCP facade this library consumes
// (§6 of the spec this package implements) and ships one concrete,
// net.Conn-backed implementation of it.
package network

import "time"

// ReadResult is delivered to an AsyncRead callback exactly once per
// request, from a worker goroutine.
type ReadResult struct {
	Success bool
	Buffer  []byte
}

// ReadRequest asks the facade to read up to Size bytes and invoke
// Callback with the outcome.
type ReadRequest struct {
	Size     int
	Callback func(ReadResult)
}

// WriteResult is delivered to an AsyncWrite callback, if one was given.
type WriteResult struct {
	Success      bool
	BytesWritten int
}

// WriteRequest asks the facade to write Buffer and, if Callback is
// non-nil, invoke it with the outcome.
type WriteRequest struct {
	Buffer   []byte
	Callback func(WriteResult)
}

// Facade is the contract connection.Connection consumes for byte
// transport. It decouples the pipelined connection and sentinel logic
// from any one socket implementation, matching cpp_redis's
// network::tcp_client_iface.
type Facade interface {
	// Connect blocks until connected or timeout elapses (0 means no
	// timeout), returning an error on failure.
	Connect(host string, port int, timeout time.Duration) error

	// Disconnect closes the connection. waitForRemoval requests that the
	// call block until all in-flight callbacks have drained.
	Disconnect(waitForRemoval bool)

	// IsConnected reports the current connection state.
	IsConnected() bool

	// AsyncRead submits one read request. req.Callback is invoked
	// exactly once.
	AsyncRead(req ReadRequest)

	// AsyncWrite submits one write request.
	AsyncWrite(req WriteRequest)

	// SetOnDisconnectionHandler installs the callback invoked at most
	// once when the facade detects the peer (or itself) has closed the
	// connection.
	SetOnDisconnectionHandler(fn func())
}
