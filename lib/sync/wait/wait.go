// Package wait provides a sync.WaitGroup variant whose Wait can be bounded
// by a timeout, used by network.TCPFacade to bound the wait-for-removal
// flavor of Disconnect while in-flight writes drain.
package wait

import (
	"sync"
	"time"
)

// Wait wraps a sync.WaitGroup with a timeout-aware Wait.
type Wait struct {
	wg sync.WaitGroup
}

// Add adds delta, which may be negative, to the counter.
func (w *Wait) Add(delta int) {
	w.wg.Add(delta)
}

// Done decrements the counter by one.
func (w *Wait) Done() {
	w.wg.Done()
}

// WaitWithTimeout blocks until the counter reaches zero or the timeout
// elapses, whichever happens first. It reports true if the timeout fired.
func (w *Wait) WaitWithTimeout(timeout time.Duration) bool {
	c := make(chan struct{})
	go func() {
		defer close(c)
		w.wg.Wait()
	}()

	select {
	case <-c:
		return false // completed normally
	case <-time.After(timeout):
		return true // timed out
	}
}
