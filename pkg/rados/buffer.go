package rados

import "github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"

// maxReadLength caps a single read request. Requests above it are refused
// with an allocation-failure status rather than attempting the allocation.
const maxReadLength = 1 << 31

// buffer is the owned scratch region behind one read result.
//
// A zero-length request still allocates one byte, so a buffer always has a
// distinct allocation; the requested window (which may be empty) is what is
// handed to the backend. free may be called exactly once; the Completion and
// IOContext layers enforce that.
type buffer struct {
	data []byte
}

// newBuffer allocates a buffer for a read of length bytes. Over-limit
// requests fail with StatusNoMemory.
func newBuffer(length uint64) (*buffer, backend.Status) {
	if length > maxReadLength {
		return nil, backend.StatusNoMemory
	}

	size := length
	if size == 0 {
		size = 1
	}

	return &buffer{data: make([]byte, size)}, backend.StatusOK
}

// window returns the slice the backend may write into: exactly the requested
// length, which is empty for a zero-length read.
func (b *buffer) window(length uint64) []byte {
	return b.data[:length]
}

// view returns the first n bytes, the portion the backend actually filled.
func (b *buffer) view(n int) []byte {
	return b.data[:n]
}

// free releases the allocation.
func (b *buffer) free() {
	b.data = nil
}
