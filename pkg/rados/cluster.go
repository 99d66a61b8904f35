package rados

import (
	"runtime"
	"time"
)

// clusterState tracks the lifecycle of a Cluster handle.
type clusterState int

const (
	// stateConfiguring: created, not yet connected. Settings may be loaded.
	stateConfiguring clusterState = iota

	// stateConnected: session established; I/O contexts may be opened.
	stateConnected

	// stateShutdown: terminal. Every further operation is rejected.
	stateShutdown
)

// Cluster is one session handle to an object-store cluster.
//
// Lifecycle: Configuring → Connected → Shutdown, driven by Connect and
// Shutdown. The shutdown state is terminal; a handle is never reusable after
// it. Calls on a Cluster are expected to be sequential (the client model is
// single-threaded); the handle performs no internal locking of its own
// state.
type Cluster struct {
	handle  *clusterHandle
	state   clusterState
	metrics Metrics
}

// ConfReadFile loads driver-specific settings from a configuration file. An
// empty path applies driver defaults. Valid in any state except shutdown.
func (c *Cluster) ConfReadFile(path string) error {
	if c.state == stateShutdown {
		return errShutdownHandle()
	}

	if st := c.handle.native.ConfReadFile(path); !st.OK() {
		return errBackend("conf_read_file", st)
	}

	return nil
}

// Connect establishes the session. On success the cluster transitions to
// connected; on backend failure the state is unchanged and Connect may be
// retried.
func (c *Cluster) Connect() error {
	switch c.state {
	case stateShutdown:
		return errShutdownHandle()
	case stateConnected:
		return errAlreadyConnected()
	}

	start := time.Now()
	st := c.handle.native.Connect()
	c.metrics.ObserveOperation("connect", st, time.Since(start))

	if !st.OK() {
		return errBackend("connect", st)
	}

	c.state = stateConnected
	c.handle.markConnected()

	return nil
}

// Shutdown terminates a connected session. The handle enters the terminal
// shutdown state immediately; the native session is released once no open
// IOContext still holds it. Only a connected cluster may be shut down.
func (c *Cluster) Shutdown() error {
	switch c.state {
	case stateShutdown:
		return errShutdownHandle()
	case stateConfiguring:
		return errNotConnected()
	}

	c.state = stateShutdown
	runtime.SetFinalizer(c, nil)
	c.handle.release()

	return nil
}

// OpenIOContext opens an I/O context scoped to the named pool. The context
// holds the cluster's native session alive until it is closed, so a
// subsequent Shutdown defers the native teardown rather than invalidating
// open contexts.
func (c *Cluster) OpenIOContext(pool string) (*IOContext, error) {
	switch c.state {
	case stateShutdown:
		return nil, errShutdownHandle()
	case stateConfiguring:
		return nil, errNotConnected()
	}

	if pool == "" {
		return nil, &ArgumentError{Message: "pool name must not be empty"}
	}

	start := time.Now()
	p, st := c.handle.native.OpenPool(pool)
	c.metrics.ObserveOperation("open_ioctx", st, time.Since(start))

	if !st.OK() {
		return nil, errBackend("open_ioctx", st)
	}

	c.handle.acquire()

	io := &IOContext{
		cluster: c,
		handle:  c.handle,
		pool:    p,
		name:    pool,
		metrics: c.metrics,
	}
	runtime.SetFinalizer(io, (*IOContext).finalize)

	return io, nil
}

// finalize runs when a cluster that was never shut down becomes unreachable.
// Dropping the cluster's reference routes the native handle through the
// connected teardown path or, for a never-connected handle, the plain
// allocator release.
func (c *Cluster) finalize() {
	if c.state == stateShutdown {
		return
	}

	c.state = stateShutdown
	c.handle.release()
}
