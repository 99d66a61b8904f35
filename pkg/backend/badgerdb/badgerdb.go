// Package badgerdb implements a storage backend on an embedded BadgerDB
// key-value store.
//
// The driver gives the client layer a persistent local object store with the
// same addressing model as the other drivers: objects live under
// (pool, locator, oid), and a lookup only finds an object stored with the
// same locator key.
//
// Storage Model
//
// BadgerDB stores raw bytes, so keys are namespaced by prefix:
//
//	Data Type     Prefix  Key Format                      Value
//	----------------------------------------------------------------------
//	Pool marker   "p:"    p:<pool>                        empty
//	Object        "o:"    o:<pool>\x00<locator>\x00<oid>  objectRecord (XDR)
//
// Object records (modification time + payload) are encoded with XDR, a
// compact self-delimiting binary format with a stable schema (see record.go).
//
// The database is opened at construction and shared by every session handle
// created from the Backend; Close releases it.
package badgerdb

import (
	"fmt"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// Options configures a BadgerDB backend.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the whole database in memory (useful for tests).
	InMemory bool

	// SyncWrites forces synchronous writes to disk.
	SyncWrites bool
}

// Backend is a BadgerDB-backed cluster fabric. All session handles created
// from one Backend share the same database.
type Backend struct {
	db *badger.DB

	shutdownCalls atomic.Int64
	releaseCalls  atomic.Int64
}

// New opens the database and returns a ready backend.
func New(opts Options) (*Backend, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, fmt.Errorf("badgerdb backend: path is required")
	}

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(nil)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &Backend{db: db}, nil
}

// Close releases the underlying database. Session handles must not be used
// afterwards.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Name returns the driver name.
func (b *Backend) Name() string {
	return "badgerdb"
}

// Version returns the driver implementation version.
func (b *Backend) Version() backend.Version {
	return backend.Version{Major: 1, Minor: 0, Extra: 0}
}

// NewCluster allocates an unconnected session handle.
func (b *Backend) NewCluster(userID string) (backend.Cluster, backend.Status) {
	return &cluster{backend: b}, backend.StatusOK
}

// ShutdownCalls returns how many session handles were torn down through the
// connected path.
func (b *Backend) ShutdownCalls() int64 {
	return b.shutdownCalls.Load()
}

// ReleaseCalls returns how many session handles were torn down through the
// never-connected allocator path.
func (b *Backend) ReleaseCalls() int64 {
	return b.releaseCalls.Load()
}

// ============================================================================
// Seeding API (driver-level, not part of the client contract)
// ============================================================================

// CreatePool creates a pool marker. Creating an existing pool is a no-op.
func (b *Backend) CreatePool(name string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(poolKey(name), nil)
	})
}

// Put stores an object in the given pool under the given locator key,
// creating the pool marker if necessary.
func (b *Backend) Put(pool, locator, oid string, data []byte, modTimeNanos int64) error {
	value, err := encodeRecord(&objectRecord{ModTimeNanos: modTimeNanos, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode object record: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(poolKey(pool), nil); err != nil {
			return err
		}
		return txn.Set(objectKey(pool, locator, oid), value)
	})
}

func (b *Backend) poolExists(name string) bool {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(poolKey(name))
		return err
	})
	return err == nil
}

func (b *Backend) getRecord(pool, locator, oid string) (*objectRecord, backend.Status) {
	var record *objectRecord

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(objectKey(pool, locator, oid))
		if err != nil {
			return err
		}

		return item.Value(func(value []byte) error {
			decoded, err := decodeRecord(value)
			if err != nil {
				return err
			}
			record = decoded
			return nil
		})
	})

	switch {
	case err == badger.ErrKeyNotFound:
		return nil, backend.StatusNotFound
	case err != nil:
		return nil, backend.StatusIOError
	}

	return record, backend.StatusOK
}

func poolKey(name string) []byte {
	return []byte("p:" + name)
}

func objectKey(pool, locator, oid string) []byte {
	return []byte("o:" + pool + "\x00" + locator + "\x00" + oid)
}
