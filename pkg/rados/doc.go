// Package rados is a client access layer for a distributed object store.
//
// The package models the four handle types of the classic object-store
// client surface:
//
//   - Cluster: a configured, possibly-connected session
//     (Configuring → Connected → Shutdown)
//   - IOContext: an I/O session scoped to one named pool (Open → Closed)
//   - Completion: one in-flight or finished asynchronous operation
//   - Buffer: the scratch region behind a single read result
//
// The storage protocol itself is delegated to a backend driver (see
// pkg/backend and its memory, s3 and badgerdb implementations); this package
// owns the handle lifecycles: a cluster's native handle is released exactly
// once, through the right teardown path, and never while an open IOContext
// derived from it could still be used.
//
// The calling model is single-threaded and sequential. Expected operational
// failures are reported as error return values (never panics); lifecycle
// misuse and malformed arguments yield distinct error types (see errors.go).
package rados
