package rados

import (
	"fmt"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// ============================================================================
// Client Error Types
// ============================================================================

// Three distinct error types cover the three distinct failure classes of the
// client surface:
//
//   - InvalidStateError: the handle is in a lifecycle state where the
//     operation is not allowed (calling Connect twice, using a shutdown
//     cluster, reading through a closed I/O context).
//   - ArgumentError: a malformed argument was rejected before any backend
//     call was made.
//   - BackendError: the backend reported an operational failure; the raw
//     status code is preserved for callers that need errno-level detail.
//
// Usage Pattern:
//
//	data, err := ioctx.Read("obj", 512, 0)
//	if err != nil {
//	    var be *rados.BackendError
//	    if errors.As(err, &be) && be.Status == backend.StatusNotFound {
//	        // object does not exist
//	    }
//	}

// Lifecycle violation messages. Fixed strings so callers and tests can match
// on them.
const (
	msgShutdownHandle     = "cannot reuse shutdown rados handle"
	msgNotConnected       = "not connected to cluster"
	msgAlreadyConnected   = "already connected to cluster"
	msgClosedIoctx        = "cannot reuse closed ioctx handle"
	msgReleasedCompletion = "cannot reuse released completion handle"
)

// InvalidStateError reports an operation attempted on a handle whose
// lifecycle state does not permit it.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// ArgumentError reports a malformed argument, rejected before any backend
// call was issued.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// BackendError reports an operational failure from the storage backend. The
// Status field carries the raw negative errno-style code.
type BackendError struct {
	// Op names the client operation that failed ("connect", "stat", ...).
	Op string

	// Status is the backend status code. Always negative.
	Status backend.Status
}

func (e *BackendError) Error() string {
	if e.Op == "" {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func errShutdownHandle() error {
	return &InvalidStateError{Message: msgShutdownHandle}
}

func errNotConnected() error {
	return &InvalidStateError{Message: msgNotConnected}
}

func errAlreadyConnected() error {
	return &InvalidStateError{Message: msgAlreadyConnected}
}

func errClosedIoctx() error {
	return &InvalidStateError{Message: msgClosedIoctx}
}

func errReleasedCompletion() error {
	return &InvalidStateError{Message: msgReleasedCompletion}
}

func errBackend(op string, st backend.Status) error {
	return &BackendError{Op: op, Status: st}
}
