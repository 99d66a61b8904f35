package rados

import (
	"runtime"
	"time"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// ObjectStat is the result of a stat query against a single object.
type ObjectStat struct {
	// Size is the object size in bytes.
	Size uint64

	// ModTime is the object's last modification time.
	ModTime time.Time
}

// IOContext is an I/O session scoped to one named pool of a connected
// cluster.
//
// The context keeps the owning cluster's native session alive: closing the
// context releases that reference, and a context that is never closed does
// so when it is collected. After Close every operation is rejected.
//
// Each *Locator variant applies an object locator key for the duration of
// exactly one backend call; the key is always cleared afterward and never
// leaks into later operations on the same context.
type IOContext struct {
	// cluster pins the owning Cluster for the lifetime of the context, so
	// the collector cannot finalize a cluster whose contexts are still
	// reachable. Only the shared handle is used for I/O.
	cluster *Cluster

	handle  *clusterHandle
	pool    backend.Pool
	name    string
	closed  bool
	metrics Metrics
}

// Pool returns the pool name this context is scoped to.
func (io *IOContext) Pool() string {
	return io.name
}

// Close releases the I/O context. Exactly once; the second call is rejected.
func (io *IOContext) Close() error {
	if io.closed {
		return errClosedIoctx()
	}

	io.closed = true
	runtime.SetFinalizer(io, nil)

	io.pool.Destroy()
	io.handle.release()

	return nil
}

// Stat returns size and modification time of the named object.
func (io *IOContext) Stat(oid string) (ObjectStat, error) {
	return io.stat(oid, "")
}

// StatLocator is Stat with an object locator key applied for this single
// call.
func (io *IOContext) StatLocator(oid, locator string) (ObjectStat, error) {
	if locator == "" {
		return ObjectStat{}, &ArgumentError{Message: "locator key must not be empty"}
	}

	return io.stat(oid, locator)
}

func (io *IOContext) stat(oid, locator string) (ObjectStat, error) {
	if err := io.checkOperation(oid); err != nil {
		return ObjectStat{}, err
	}

	start := time.Now()

	var info backend.ObjectInfo
	var st backend.Status
	io.withLocator(locator, func() {
		info, st = io.pool.Stat(oid)
	})

	io.metrics.ObserveOperation("stat", st, time.Since(start))

	if !st.OK() {
		return ObjectStat{}, errBackend("stat", st)
	}

	return ObjectStat{Size: info.Size, ModTime: info.ModTime}, nil
}

// Read reads up to length bytes of the named object starting at offset. The
// returned slice holds the bytes actually read, which is short when the read
// window extends past the end of the object. A zero-length read returns an
// empty slice after verifying the object exists.
func (io *IOContext) Read(oid string, length, offset uint64) ([]byte, error) {
	return io.read(oid, "", length, offset)
}

// ReadLocator is Read with an object locator key applied for this single
// call.
func (io *IOContext) ReadLocator(oid, locator string, length, offset uint64) ([]byte, error) {
	if locator == "" {
		return nil, &ArgumentError{Message: "locator key must not be empty"}
	}

	return io.read(oid, locator, length, offset)
}

func (io *IOContext) read(oid, locator string, length, offset uint64) ([]byte, error) {
	if err := io.checkOperation(oid); err != nil {
		return nil, err
	}

	buf, st := newBuffer(length)
	if !st.OK() {
		return nil, errBackend("read", st)
	}

	start := time.Now()

	io.withLocator(locator, func() {
		st = io.pool.Read(oid, buf.window(length), offset)
	})

	io.metrics.ObserveOperation("read", st, time.Since(start))

	if !st.OK() {
		buf.free()
		return nil, errBackend("read", st)
	}

	// st is the byte count; ownership of the filled region passes to the
	// caller.
	return buf.view(int(st)), nil
}

// AioStat starts an asynchronous stat of the named object. Submission
// failures are reported synchronously; on success the returned Completion
// tracks the operation.
func (io *IOContext) AioStat(oid string) (*Completion, error) {
	return io.aioStat(oid, "")
}

// AioStatLocator is AioStat with an object locator key applied to the
// submission.
func (io *IOContext) AioStatLocator(oid, locator string) (*Completion, error) {
	if locator == "" {
		return nil, &ArgumentError{Message: "locator key must not be empty"}
	}

	return io.aioStat(oid, locator)
}

func (io *IOContext) aioStat(oid, locator string) (*Completion, error) {
	if err := io.checkOperation(oid); err != nil {
		return nil, err
	}

	token, st := io.pool.NewCompletion()
	if !st.OK() {
		return nil, errBackend("aio_stat", st)
	}

	c := &Completion{
		kind:    KindStat,
		token:   token,
		metrics: io.metrics,
		started: time.Now(),
	}

	io.withLocator(locator, func() {
		st = io.pool.AioStat(oid, token, &c.info)
	})

	if !st.OK() {
		token.Release()
		return nil, errBackend("aio_stat", st)
	}

	trackAio(c)

	return c, nil
}

// AioRead starts an asynchronous read of up to length bytes starting at
// offset. The result buffer is owned by the returned Completion: harvest it
// with Result, then Release.
func (io *IOContext) AioRead(oid string, length, offset uint64) (*Completion, error) {
	return io.aioRead(oid, "", length, offset)
}

// AioReadLocator is AioRead with an object locator key applied to the
// submission.
func (io *IOContext) AioReadLocator(oid, locator string, length, offset uint64) (*Completion, error) {
	if locator == "" {
		return nil, &ArgumentError{Message: "locator key must not be empty"}
	}

	return io.aioRead(oid, locator, length, offset)
}

func (io *IOContext) aioRead(oid, locator string, length, offset uint64) (*Completion, error) {
	if err := io.checkOperation(oid); err != nil {
		return nil, err
	}

	buf, st := newBuffer(length)
	if !st.OK() {
		return nil, errBackend("aio_read", st)
	}

	token, st := io.pool.NewCompletion()
	if !st.OK() {
		buf.free()
		return nil, errBackend("aio_read", st)
	}

	c := &Completion{
		kind:    KindRead,
		token:   token,
		buf:     buf,
		metrics: io.metrics,
		started: time.Now(),
	}

	io.withLocator(locator, func() {
		st = io.pool.AioRead(oid, token, buf.window(length), offset)
	})

	if !st.OK() {
		token.Release()
		buf.free()
		return nil, errBackend("aio_read", st)
	}

	trackAio(c)

	return c, nil
}

// checkOperation guards every object operation: the context must be open and
// the object id well formed.
func (io *IOContext) checkOperation(oid string) error {
	if io.closed {
		return errClosedIoctx()
	}
	if oid == "" {
		return &ArgumentError{Message: "object id must not be empty"}
	}
	return nil
}

// withLocator runs fn with the locator key applied to the pool handle. The
// key is cleared immediately after fn returns, success or failure, so it is
// scoped to exactly one backend call.
func (io *IOContext) withLocator(locator string, fn func()) {
	if locator == "" {
		fn()
		return
	}

	io.pool.SetLocator(locator)
	fn()
	io.pool.SetLocator("")
}

// finalize runs when an unclosed context becomes unreachable, releasing its
// hold on the cluster's native session.
func (io *IOContext) finalize() {
	if io.closed {
		return
	}

	io.closed = true
	io.pool.Destroy()
	io.handle.release()
}
