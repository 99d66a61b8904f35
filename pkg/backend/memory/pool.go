package memory

import (
	"time"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// pool is an I/O handle scoped to one pool. The client layer issues calls on
// a pool handle sequentially, so the locator field needs no locking.
type pool struct {
	backend   *Backend
	name      string
	locator   string
	destroyed bool
}

// Destroy releases the pool handle.
func (p *pool) Destroy() {
	p.destroyed = true
}

// SetLocator sets or clears (empty key) the locator applied to lookups.
func (p *pool) SetLocator(key string) {
	p.locator = key
}

// Stat returns size and modification time for the named object.
func (p *pool) Stat(oid string) (backend.ObjectInfo, backend.Status) {
	if p.destroyed {
		return backend.ObjectInfo{}, backend.StatusInvalid
	}

	obj, st := p.backend.lookup(p.name, objectKey{locator: p.locator, oid: oid})
	if !st.OK() {
		return backend.ObjectInfo{}, st
	}

	return backend.ObjectInfo{Size: uint64(len(obj.data)), ModTime: obj.modTime}, backend.StatusOK
}

// Read reads up to len(buf) bytes from the object starting at offset.
func (p *pool) Read(oid string, buf []byte, offset uint64) backend.Status {
	if p.destroyed {
		return backend.StatusInvalid
	}

	obj, st := p.backend.lookup(p.name, objectKey{locator: p.locator, oid: oid})
	if !st.OK() {
		return st
	}

	if offset >= uint64(len(obj.data)) {
		return backend.Status(0)
	}

	n := copy(buf, obj.data[offset:])
	return backend.Status(n)
}

// NewCompletion allocates a completion token.
func (p *pool) NewCompletion() (backend.Completion, backend.Status) {
	return backend.NewAsyncCompletion(), backend.StatusOK
}

// AioStat starts an asynchronous stat. The locator key is captured at
// submission time; clearing it on the pool afterwards does not affect the
// in-flight operation.
func (p *pool) AioStat(oid string, c backend.Completion, info *backend.ObjectInfo) backend.Status {
	if p.destroyed {
		return backend.StatusInvalid
	}

	key := objectKey{locator: p.locator, oid: oid}
	latency := p.backend.getLatency()
	b := p.backend
	name := p.name

	c.(*backend.AsyncCompletion).Start(func() backend.Status {
		if latency > 0 {
			time.Sleep(latency)
		}

		obj, st := b.lookup(name, key)
		if !st.OK() {
			return st
		}

		*info = backend.ObjectInfo{Size: uint64(len(obj.data)), ModTime: obj.modTime}
		return backend.StatusOK
	})

	return backend.StatusOK
}

// AioRead starts an asynchronous read into buf. The locator key is captured
// at submission time.
func (p *pool) AioRead(oid string, c backend.Completion, buf []byte, offset uint64) backend.Status {
	if p.destroyed {
		return backend.StatusInvalid
	}

	key := objectKey{locator: p.locator, oid: oid}
	latency := p.backend.getLatency()
	b := p.backend
	name := p.name

	c.(*backend.AsyncCompletion).Start(func() backend.Status {
		if latency > 0 {
			time.Sleep(latency)
		}

		obj, st := b.lookup(name, key)
		if !st.OK() {
			return st
		}

		if offset >= uint64(len(obj.data)) {
			return backend.Status(0)
		}

		n := copy(buf, obj.data[offset:])
		return backend.Status(n)
	})

	return backend.StatusOK
}
