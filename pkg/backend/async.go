package backend

import "sync"

// AsyncCompletion is a reusable Completion implementation for drivers that
// execute asynchronous operations on their own goroutines.
//
// Lifecycle: allocate with NewAsyncCompletion, submit work with Start (at
// most once), observe through IsComplete/WaitForComplete/ReturnValue, then
// Release. A token that was never started completes immediately on Release.
//
// The final status is published before the done channel is closed, so any
// observer that has seen IsComplete() == true reads a consistent status.
type AsyncCompletion struct {
	done    chan struct{}
	status  Status
	started bool

	startOnce   sync.Once
	releaseOnce sync.Once
}

// NewAsyncCompletion allocates a pending completion token.
func NewAsyncCompletion() *AsyncCompletion {
	return &AsyncCompletion{done: make(chan struct{})}
}

// Start launches op on a new goroutine. The op's return value becomes the
// token's return value. Subsequent Start calls are ignored.
func (c *AsyncCompletion) Start(op func() Status) {
	c.startOnce.Do(func() {
		c.started = true
		go func() {
			c.status = op()
			close(c.done)
		}()
	})
}

// Complete finishes the token synchronously with the given status, without
// running work on a separate goroutine. Used by drivers whose submission
// path already has the result in hand. Subsequent Start/Complete calls are
// ignored.
func (c *AsyncCompletion) Complete(st Status) {
	c.startOnce.Do(func() {
		c.started = true
		c.status = st
		close(c.done)
	})
}

// IsComplete reports whether the operation has finished.
func (c *AsyncCompletion) IsComplete() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// WaitForComplete blocks until the operation finishes.
func (c *AsyncCompletion) WaitForComplete() {
	<-c.done
}

// ReturnValue returns the final status, or StatusInProgress while the
// operation is still pending.
func (c *AsyncCompletion) ReturnValue() Status {
	select {
	case <-c.done:
		return c.status
	default:
		return StatusInProgress
	}
}

// Release waits for any started work to finish, so no goroutine is still
// writing into caller buffers when it returns. Safe to call once per token;
// extra calls are no-ops at this layer (the client layer enforces the
// exactly-once contract).
func (c *AsyncCompletion) Release() {
	c.releaseOnce.Do(func() {
		if c.started {
			<-c.done
		}
	})
}
