package rados

import (
	"runtime"
	"time"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// Kind discriminates the result variant an asynchronous operation produces.
type Kind int

const (
	// KindStat: the result carries object size and modification time.
	KindStat Kind = iota

	// KindRead: the result carries the bytes read.
	KindRead
)

func (k Kind) String() string {
	switch k {
	case KindStat:
		return "stat"
	case KindRead:
		return "read"
	default:
		return "unknown"
	}
}

// Result is the harvested outcome of a completed asynchronous operation.
// Kind selects which of the remaining fields is meaningful.
type Result struct {
	Kind Kind

	// Stat is set for KindStat results.
	Stat ObjectStat

	// Data is set for KindRead results: the bytes actually read, truncated
	// to the count the backend reported.
	Data []byte
}

// Completion tracks one in-flight or finished asynchronous operation.
//
// Observe with IsComplete or Wait, harvest with Result (re-enterable once
// complete), then Release exactly once. For read operations the completion
// owns the result buffer; Release does not return while the backend could
// still be writing into it, so releasing is always safe, finished or not.
type Completion struct {
	kind     Kind
	token    backend.Completion
	buf      *buffer
	info     backend.ObjectInfo
	released bool
	metrics  Metrics
	started  time.Time
}

// IsComplete reports whether the operation has finished. Non-blocking.
func (c *Completion) IsComplete() (bool, error) {
	if c.released {
		return false, errReleasedCompletion()
	}

	return c.token.IsComplete(), nil
}

// Wait blocks until the operation finishes.
func (c *Completion) Wait() error {
	if c.released {
		return errReleasedCompletion()
	}

	c.token.WaitForComplete()

	return nil
}

// Result harvests the operation's outcome. Calling before the operation has
// completed fails with the backend's in-progress status; a failed operation
// surfaces its status as a BackendError. Once complete, Result may be called
// any number of times and returns the same values.
func (c *Completion) Result() (*Result, error) {
	if c.released {
		return nil, errReleasedCompletion()
	}

	st := c.token.ReturnValue()
	if !st.OK() {
		return nil, errBackend("aio_"+c.kind.String(), st)
	}

	result := &Result{Kind: c.kind}

	switch c.kind {
	case KindStat:
		result.Stat = ObjectStat{Size: c.info.Size, ModTime: c.info.ModTime}
	case KindRead:
		// st is the byte count, never larger than the requested window.
		result.Data = c.buf.view(int(st))
	}

	return result, nil
}

// Release frees the completion. Blocks until any still-running backend work
// has stopped touching the result buffer, then frees the token and, for read
// operations, the buffer — in that order. Exactly once; the second call is
// rejected.
func (c *Completion) Release() error {
	if c.released {
		return errReleasedCompletion()
	}

	c.release()

	return nil
}

func (c *Completion) release() {
	c.released = true
	runtime.SetFinalizer(c, nil)

	// Token first, then buffer: Release is the synchronization point that
	// guarantees no backend goroutine still writes into the buffer.
	c.token.Release()
	st := c.token.ReturnValue()
	if c.buf != nil {
		c.buf.free()
	}

	n := aioInFlight.Add(-1)
	c.metrics.SetAioInFlight(n)
	c.metrics.ObserveOperation("aio_"+c.kind.String(), st, time.Since(c.started))
}

// trackAio registers a successfully submitted operation with the in-flight
// counter and arms the finalizer that releases leaked completions.
func trackAio(c *Completion) {
	n := aioInFlight.Add(1)
	c.metrics.SetAioInFlight(n)

	runtime.SetFinalizer(c, (*Completion).finalize)
}

func (c *Completion) finalize() {
	if c.released {
		return
	}

	c.release()
}
