package backend

import "fmt"

// Status is the signed status code returned by every backend call.
//
// Zero or positive means success; for read operations a positive value is the
// number of bytes actually transferred. Negative values encode errno-style
// error conditions.
type Status int

// Errno-style status codes used by the built-in drivers.
//
// The numeric values follow the Linux errno table (negated), so a status can
// be handed back to embedding hosts that expect raw negative errno values.
const (
	StatusOK Status = 0

	StatusNotFound     Status = -2   // ENOENT: no such pool or object
	StatusIOError      Status = -5   // EIO: backend I/O failure
	StatusNoMemory     Status = -12  // ENOMEM: allocation failure
	StatusAccessDenied Status = -13  // EACCES: authentication or permission failure
	StatusInvalid      Status = -22  // EINVAL: malformed request
	StatusNotConnected Status = -107 // ENOTCONN: session is not connected
	StatusTimedOut     Status = -110 // ETIMEDOUT: backend did not respond in time
	StatusInProgress   Status = -115 // EINPROGRESS: asynchronous operation still pending
)

// OK reports whether the status indicates success.
func (s Status) OK() bool {
	return s >= 0
}

// String returns a human-readable description of the status, in the spirit
// of strerror(3).
func (s Status) String() string {
	if s >= 0 {
		return "success"
	}

	switch s {
	case StatusNotFound:
		return "no such file or directory"
	case StatusIOError:
		return "input/output error"
	case StatusNoMemory:
		return "cannot allocate memory"
	case StatusAccessDenied:
		return "permission denied"
	case StatusInvalid:
		return "invalid argument"
	case StatusNotConnected:
		return "transport endpoint is not connected"
	case StatusTimedOut:
		return "connection timed out"
	case StatusInProgress:
		return "operation now in progress"
	default:
		return fmt.Sprintf("unknown error %d", int(s))
	}
}
