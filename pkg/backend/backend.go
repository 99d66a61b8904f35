package backend

import "time"

// Version identifies a driver implementation version.
type Version struct {
	Major int
	Minor int
	Extra int
}

// ObjectInfo is the result of a stat query against a single object.
type ObjectInfo struct {
	// Size is the object size in bytes.
	Size uint64

	// ModTime is the last modification time reported by the backend.
	ModTime time.Time
}

// Interface is a storage backend driver: a factory for cluster session
// handles. Implementations must be safe for use from multiple goroutines.
type Interface interface {
	// Name returns the driver name ("memory", "s3", "badgerdb", ...).
	Name() string

	// Version returns the driver implementation version.
	Version() Version

	// NewCluster allocates a new, unconnected cluster session handle,
	// optionally authenticating as the given user. The handle must be
	// released through exactly one of Cluster.Shutdown (after a successful
	// Connect) or Cluster.Release (never connected).
	NewCluster(userID string) (Cluster, Status)
}

// Cluster is one session handle to the backend's cluster fabric.
//
// The client layer guarantees single-threaded, sequential calls on a Cluster;
// implementations only need internal synchronization for state shared across
// session handles.
type Cluster interface {
	// ConfReadFile loads driver-specific settings from a configuration file.
	// An empty path applies driver defaults. Valid any time before Connect;
	// behaviour after Connect is driver-defined (typically a no-op success).
	ConfReadFile(path string) Status

	// Connect establishes the session. Called at most once per handle by the
	// client layer. On failure the handle stays unconnected and must be
	// released through Release, never Shutdown.
	Connect() Status

	// Shutdown tears down a connected session and frees the handle.
	// Called exactly once, and only after a successful Connect.
	Shutdown()

	// Release frees a handle that never connected (the allocator teardown
	// path). Called exactly once, and never after a successful Connect.
	Release()

	// OpenPool creates an I/O handle scoped to the named pool. Fails with
	// StatusNotFound if the pool does not exist.
	OpenPool(name string) (Pool, Status)
}

// Pool is an I/O handle scoped to one pool of a connected cluster session.
//
// A Pool remains usable until Destroy. Completions created from a Pool are
// self-contained: they stay valid and harvestable after the Pool is
// destroyed.
type Pool interface {
	// Destroy releases the pool handle. Called exactly once.
	Destroy()

	// SetLocator sets the locator key applied to subsequent object lookups
	// on this pool handle. An empty key clears it. The client layer scopes
	// the key strictly around a single call.
	SetLocator(key string)

	// Stat returns size and modification time for the named object.
	Stat(oid string) (ObjectInfo, Status)

	// Read reads up to len(buf) bytes from the object starting at the given
	// offset. A non-negative status is the number of bytes read, which may
	// be short at end of object.
	Read(oid string, buf []byte, offset uint64) Status

	// NewCompletion allocates a completion token for one asynchronous
	// operation. The token must be released exactly once via
	// Completion.Release.
	NewCompletion() (Completion, Status)

	// AioStat starts an asynchronous stat. On completion the result is
	// stored into info before the token reports complete. A negative return
	// means the submission itself failed and the token will never complete.
	AioStat(oid string, c Completion, info *ObjectInfo) Status

	// AioRead starts an asynchronous read into buf. The token's return
	// value is the number of bytes read. The backend owns buf until the
	// token is released.
	AioRead(oid string, c Completion, buf []byte, offset uint64) Status
}

// Completion is an opaque token for one asynchronous operation.
//
// Release is the synchronization point for buffer safety: it must not return
// while the operation could still be writing into a caller-supplied buffer.
type Completion interface {
	// IsComplete reports whether the operation has finished. Non-blocking
	// and safe to call any number of times.
	IsComplete() bool

	// WaitForComplete blocks until the operation finishes.
	WaitForComplete()

	// ReturnValue returns the operation's final status. Before completion
	// it returns StatusInProgress. After completion it is re-enterable and
	// returns the same value every time.
	ReturnValue() Status

	// Release frees the token. Blocks until any in-flight work has stopped
	// touching caller buffers. Called exactly once.
	Release()
}
