// Package memory implements an in-memory storage backend.
//
// The memory driver keeps every pool and object in process memory. It is
// designed for:
//   - Testing the client layer without external infrastructure
//   - Development and demos (pools can be seeded from a config file)
//   - Exercising asynchronous code paths (configurable completion latency)
//
// Objects are addressed by (pool, locator, oid): an object is only visible
// to a lookup that presents the same locator key it was stored with. This
// mirrors locator-driven placement on a real cluster, where a lookup with
// the wrong locator does not find the object.
//
// The write surface (CreatePool, Put) is a driver-level seeding API and is
// not part of the client contract.
package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

type objectKey struct {
	locator string
	oid     string
}

type object struct {
	data    []byte
	modTime time.Time
}

// Backend is the in-memory cluster fabric. All cluster handles created from
// one Backend share the same pools, so a test can seed data through the
// driver and read it back through a client session.
type Backend struct {
	mu    sync.RWMutex
	pools map[string]map[objectKey]*object

	// latency is an artificial delay applied to asynchronous operations,
	// so tests can observe a completion in its pending state.
	latency time.Duration

	// connectStatus is returned by Connect when negative (fault injection).
	connectStatus backend.Status

	shutdownCalls atomic.Int64
	releaseCalls  atomic.Int64
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{
		pools: make(map[string]map[objectKey]*object),
	}
}

// Name returns the driver name.
func (b *Backend) Name() string {
	return "memory"
}

// Version returns the driver implementation version.
func (b *Backend) Version() backend.Version {
	return backend.Version{Major: 1, Minor: 0, Extra: 0}
}

// NewCluster allocates an unconnected session handle.
func (b *Backend) NewCluster(userID string) (backend.Cluster, backend.Status) {
	return &cluster{backend: b, userID: userID}, backend.StatusOK
}

// ============================================================================
// Seeding and fault-injection API (driver-level, not part of the client
// contract)
// ============================================================================

// CreatePool creates an empty pool. Creating an existing pool is a no-op.
func (b *Backend) CreatePool(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pools[name]; !ok {
		b.pools[name] = make(map[objectKey]*object)
	}
}

// Put stores an object in the given pool under the given locator key.
// The pool is created if it does not exist.
func (b *Backend) Put(pool, locator, oid string, data []byte, modTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	objects, ok := b.pools[pool]
	if !ok {
		objects = make(map[objectKey]*object)
		b.pools[pool] = objects
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	objects[objectKey{locator: locator, oid: oid}] = &object{data: stored, modTime: modTime}
}

// SetLatency sets an artificial delay for asynchronous operations.
func (b *Backend) SetLatency(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latency = d
}

// FailConnect makes subsequent Connect calls fail with the given status.
// Pass backend.StatusOK to restore normal behaviour.
func (b *Backend) FailConnect(st backend.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connectStatus = st
}

// ShutdownCalls returns how many cluster handles were torn down through the
// connected path.
func (b *Backend) ShutdownCalls() int64 {
	return b.shutdownCalls.Load()
}

// ReleaseCalls returns how many cluster handles were torn down through the
// never-connected allocator path.
func (b *Backend) ReleaseCalls() int64 {
	return b.releaseCalls.Load()
}

func (b *Backend) getLatency() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latency
}

func (b *Backend) lookup(pool string, key objectKey) (*object, backend.Status) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	objects, ok := b.pools[pool]
	if !ok {
		return nil, backend.StatusNotFound
	}

	obj, ok := objects[key]
	if !ok {
		return nil, backend.StatusNotFound
	}

	return obj, backend.StatusOK
}

func (b *Backend) poolExists(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.pools[name]
	return ok
}
