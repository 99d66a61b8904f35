package badgerdb

import (
	"time"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// cluster is one session handle to a BadgerDB backend. The database itself
// is owned by the Backend; the handle only tracks session lifecycle.
type cluster struct {
	backend   *Backend
	connected bool
}

// ConfReadFile seeds the database from a YAML configuration file using the
// same schema as the memory driver. An empty path is a successful no-op.
func (c *cluster) ConfReadFile(path string) backend.Status {
	if path == "" {
		return backend.StatusOK
	}

	cfg, err := readSeedConfig(path)
	if err != nil {
		return backend.StatusInvalid
	}

	now := time.Now().UnixNano()
	for _, pool := range cfg.Pools {
		if err := c.backend.CreatePool(pool.Name); err != nil {
			return backend.StatusIOError
		}
		for _, obj := range pool.Objects {
			if err := c.backend.Put(pool.Name, obj.Locator, obj.Oid, []byte(obj.Content), now); err != nil {
				return backend.StatusIOError
			}
		}
	}

	return backend.StatusOK
}

// Connect establishes the session. The database is already open, so this
// only marks the handle connected.
func (c *cluster) Connect() backend.Status {
	c.connected = true
	return backend.StatusOK
}

// Shutdown tears down a connected session.
func (c *cluster) Shutdown() {
	c.backend.shutdownCalls.Add(1)
	c.connected = false
}

// Release frees a never-connected session handle.
func (c *cluster) Release() {
	c.backend.releaseCalls.Add(1)
}

// OpenPool opens an I/O handle scoped to the named pool.
func (c *cluster) OpenPool(name string) (backend.Pool, backend.Status) {
	if !c.backend.poolExists(name) {
		return nil, backend.StatusNotFound
	}

	return &pool{backend: c.backend, name: name}, backend.StatusOK
}
