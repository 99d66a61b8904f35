package rados

import (
	"sync/atomic"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// clusterHandle owns the backend session handle shared by a Cluster and every
// IOContext opened from it.
//
// The Cluster holds one reference from creation; each open IOContext holds
// one more. The native handle is torn down exactly once, when the count
// reaches zero — so a Shutdown issued while contexts are still open defers
// the native teardown until the last context closes, and the handle can
// never be freed out from under live I/O.
//
// Two teardown paths exist on the backend contract: Shutdown for sessions
// that connected, Release for sessions that never did. The connected flag,
// latched by Cluster.Connect, picks the path at zero.
//
// Counts are atomic because releases can arrive from finalizer goroutines.
type clusterHandle struct {
	native    backend.Cluster
	refs      atomic.Int32
	connected atomic.Bool
}

func newClusterHandle(native backend.Cluster) *clusterHandle {
	h := &clusterHandle{native: native}
	h.refs.Store(1)
	return h
}

func (h *clusterHandle) acquire() {
	h.refs.Add(1)
}

// release drops one reference. At zero the native handle is freed through
// the teardown path matching its connection history.
func (h *clusterHandle) release() {
	if h.refs.Add(-1) != 0 {
		return
	}

	if h.connected.Load() {
		h.native.Shutdown()
	} else {
		h.native.Release()
	}
}

func (h *clusterHandle) markConnected() {
	h.connected.Store(true)
}
