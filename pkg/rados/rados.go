package rados

import (
	"runtime"
	"sync/atomic"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// Library version.
const (
	VersionMajor = 1
	VersionMinor = 0
	VersionExtra = 0
)

// Version returns the library version triple.
func Version() (major, minor, extra int) {
	return VersionMajor, VersionMinor, VersionExtra
}

// Option configures optional Cluster behaviour at creation time.
type Option func(*options)

type options struct {
	metrics Metrics
}

// WithMetrics routes client operation events to m. The default sink
// discards them; a nil m keeps the default, so callers can pass the result
// of a metrics constructor that returns nil when collection is disabled.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m == nil {
			return
		}
		o.metrics = m
	}
}

// Create allocates a new cluster session against the given backend,
// optionally authenticating as userID (empty means the driver default). The
// returned Cluster is in the configuring state: load settings with
// ConfReadFile, then Connect.
func Create(be backend.Interface, userID string, opts ...Option) (*Cluster, error) {
	if be == nil {
		return nil, &ArgumentError{Message: "backend must not be nil"}
	}

	o := options{metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}

	native, st := be.NewCluster(userID)
	if !st.OK() {
		return nil, errBackend("create", st)
	}

	c := &Cluster{
		handle:  newClusterHandle(native),
		metrics: o.metrics,
	}

	// Leaked clusters are torn down by the collector through the same
	// refcounted path an explicit Shutdown uses.
	runtime.SetFinalizer(c, (*Cluster).finalize)

	return c, nil
}

// aioInFlight counts asynchronous operations that have been submitted but
// whose completion has not yet been released. Process-wide across all
// clusters.
var aioInFlight atomic.Int64

// AioInFlight returns the number of asynchronous operations currently in
// flight across the process.
func AioInFlight() int64 {
	return aioInFlight.Load()
}
