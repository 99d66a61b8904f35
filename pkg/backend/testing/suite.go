// Package testing provides a reusable conformance suite for backend driver
// implementations. It tests the driver contract, not implementation details,
// so one suite covers the memory, badgerdb and any future driver.
//
// Usage:
//
//	func TestMemoryBackend(t *testing.T) {
//	    suite := &backendtesting.Suite{
//	        New: func(t *testing.T) *backendtesting.Harness {
//	            be := memory.New()
//	            return &backendtesting.Harness{
//	                Backend: be,
//	                CreatePool: func(t *testing.T, pool string) {
//	                    be.CreatePool(pool)
//	                },
//	                Put: func(t *testing.T, pool, locator, oid string, data []byte, modTime time.Time) {
//	                    be.Put(pool, locator, oid, data, modTime)
//	                },
//	            }
//	        },
//	    }
//	    suite.Run(t)
//	}
package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// Harness wraps one backend instance under test together with the
// driver-specific seeding hooks the suite needs.
type Harness struct {
	// Backend is the driver under test.
	Backend backend.Interface

	// CreatePool ensures an empty pool exists.
	CreatePool func(t *testing.T, pool string)

	// Put stores an object in the given pool under the given locator key
	// (empty locator for plain objects).
	Put func(t *testing.T, pool, locator, oid string, data []byte, modTime time.Time)
}

// Suite is the driver conformance suite.
type Suite struct {
	// New creates a fresh harness for each test, ensuring test isolation.
	New func(t *testing.T) *Harness
}

// Run executes all tests in the suite.
func (s *Suite) Run(t *testing.T) {
	t.Run("Lifecycle", s.testLifecycle)
	t.Run("Stat", s.testStat)
	t.Run("Read", s.testRead)
	t.Run("Locator", s.testLocator)
	t.Run("Async", s.testAsync)
}

// connect seeds a pool and returns a connected session plus an open pool
// handle on it.
func (s *Suite) connect(t *testing.T, h *Harness, poolName string) (backend.Cluster, backend.Pool) {
	t.Helper()

	h.CreatePool(t, poolName)

	cluster, st := h.Backend.NewCluster("")
	require.True(t, st.OK(), "NewCluster: %s", st)

	st = cluster.Connect()
	require.True(t, st.OK(), "Connect: %s", st)

	pool, st := cluster.OpenPool(poolName)
	require.True(t, st.OK(), "OpenPool: %s", st)

	return cluster, pool
}

func (s *Suite) testLifecycle(t *testing.T) {
	h := s.New(t)

	t.Run("ConnectAndShutdown", func(t *testing.T) {
		cluster, st := h.Backend.NewCluster("")
		require.True(t, st.OK())

		require.True(t, cluster.Connect().OK())
		cluster.Shutdown()
	})

	t.Run("ReleaseNeverConnected", func(t *testing.T) {
		cluster, st := h.Backend.NewCluster("")
		require.True(t, st.OK())

		cluster.Release()
	})

	t.Run("ConfReadFileEmptyPath", func(t *testing.T) {
		cluster, st := h.Backend.NewCluster("")
		require.True(t, st.OK())
		defer cluster.Release()

		require.True(t, cluster.ConfReadFile("").OK())
	})

	t.Run("OpenMissingPool", func(t *testing.T) {
		cluster, st := h.Backend.NewCluster("")
		require.True(t, st.OK())

		require.True(t, cluster.Connect().OK())
		defer cluster.Shutdown()

		_, st = cluster.OpenPool("no-such-pool")
		require.Equal(t, backend.StatusNotFound, st)
	})

	t.Run("OpenExistingPool", func(t *testing.T) {
		cluster, pool := s.connect(t, h, "lifecycle")
		pool.Destroy()
		cluster.Shutdown()
	})
}

func (s *Suite) testStat(t *testing.T) {
	h := s.New(t)

	modTime := time.Now().Add(-time.Hour).Truncate(time.Second)
	h.Put(t, "stat-pool", "", "obj", []byte("hello world"), modTime)

	cluster, pool := s.connect(t, h, "stat-pool")
	defer cluster.Shutdown()
	defer pool.Destroy()

	t.Run("Existing", func(t *testing.T) {
		info, st := pool.Stat("obj")
		require.True(t, st.OK(), "Stat: %s", st)
		require.Equal(t, uint64(11), info.Size)
		require.WithinDuration(t, modTime, info.ModTime, time.Second)
	})

	t.Run("Missing", func(t *testing.T) {
		_, st := pool.Stat("no-such-object")
		require.Equal(t, backend.StatusNotFound, st)
	})
}

func (s *Suite) testRead(t *testing.T) {
	h := s.New(t)

	h.Put(t, "read-pool", "", "obj", []byte("0123456789"), time.Now())

	cluster, pool := s.connect(t, h, "read-pool")
	defer cluster.Shutdown()
	defer pool.Destroy()

	t.Run("Full", func(t *testing.T) {
		buf := make([]byte, 10)
		st := pool.Read("obj", buf, 0)
		require.Equal(t, backend.Status(10), st)
		require.Equal(t, []byte("0123456789"), buf)
	})

	t.Run("Offset", func(t *testing.T) {
		buf := make([]byte, 4)
		st := pool.Read("obj", buf, 3)
		require.Equal(t, backend.Status(4), st)
		require.Equal(t, []byte("3456"), buf)
	})

	t.Run("ShortAtEnd", func(t *testing.T) {
		buf := make([]byte, 16)
		st := pool.Read("obj", buf, 7)
		require.Equal(t, backend.Status(3), st)
		require.Equal(t, []byte("789"), buf[:st])
	})

	t.Run("OffsetPastEnd", func(t *testing.T) {
		buf := make([]byte, 4)
		st := pool.Read("obj", buf, 100)
		require.Equal(t, backend.Status(0), st)
	})

	t.Run("ZeroLength", func(t *testing.T) {
		st := pool.Read("obj", nil, 0)
		require.Equal(t, backend.Status(0), st)
	})

	t.Run("ZeroLengthMissing", func(t *testing.T) {
		st := pool.Read("no-such-object", nil, 0)
		require.Equal(t, backend.StatusNotFound, st)
	})

	t.Run("Missing", func(t *testing.T) {
		buf := make([]byte, 4)
		st := pool.Read("no-such-object", buf, 0)
		require.Equal(t, backend.StatusNotFound, st)
	})
}

func (s *Suite) testLocator(t *testing.T) {
	h := s.New(t)

	h.Put(t, "loc-pool", "rack1", "placed", []byte("located data"), time.Now())
	h.Put(t, "loc-pool", "", "plain", []byte("plain data"), time.Now())

	cluster, pool := s.connect(t, h, "loc-pool")
	defer cluster.Shutdown()
	defer pool.Destroy()

	t.Run("WrongLocatorMisses", func(t *testing.T) {
		_, st := pool.Stat("placed")
		require.Equal(t, backend.StatusNotFound, st)
	})

	t.Run("MatchingLocatorHits", func(t *testing.T) {
		pool.SetLocator("rack1")
		info, st := pool.Stat("placed")
		pool.SetLocator("")

		require.True(t, st.OK(), "Stat: %s", st)
		require.Equal(t, uint64(len("located data")), info.Size)
	})

	t.Run("ClearedLocatorMissesAgain", func(t *testing.T) {
		pool.SetLocator("rack1")
		pool.SetLocator("")

		_, st := pool.Stat("placed")
		require.Equal(t, backend.StatusNotFound, st)
	})

	t.Run("LocatorHidesPlainObjects", func(t *testing.T) {
		pool.SetLocator("rack1")
		_, st := pool.Stat("plain")
		pool.SetLocator("")

		require.Equal(t, backend.StatusNotFound, st)
	})
}

func (s *Suite) testAsync(t *testing.T) {
	h := s.New(t)

	h.Put(t, "aio-pool", "", "obj", []byte("async payload"), time.Now())

	cluster, pool := s.connect(t, h, "aio-pool")
	defer cluster.Shutdown()
	defer pool.Destroy()

	t.Run("AioStat", func(t *testing.T) {
		c, st := pool.NewCompletion()
		require.True(t, st.OK())

		var info backend.ObjectInfo
		st = pool.AioStat("obj", c, &info)
		require.True(t, st.OK(), "AioStat: %s", st)

		c.WaitForComplete()
		require.True(t, c.IsComplete())
		require.True(t, c.ReturnValue().OK())
		require.Equal(t, uint64(len("async payload")), info.Size)

		c.Release()
	})

	t.Run("AioRead", func(t *testing.T) {
		c, st := pool.NewCompletion()
		require.True(t, st.OK())

		buf := make([]byte, 5)
		st = pool.AioRead("obj", c, buf, 6)
		require.True(t, st.OK(), "AioRead: %s", st)

		c.WaitForComplete()
		require.Equal(t, backend.Status(5), c.ReturnValue())
		require.Equal(t, []byte("paylo"), buf)

		c.Release()
	})

	t.Run("AioStatMissing", func(t *testing.T) {
		c, st := pool.NewCompletion()
		require.True(t, st.OK())

		var info backend.ObjectInfo
		st = pool.AioStat("no-such-object", c, &info)
		require.True(t, st.OK(), "submission should succeed: %s", st)

		c.WaitForComplete()
		require.Equal(t, backend.StatusNotFound, c.ReturnValue())

		c.Release()
	})

	t.Run("ReturnValueWhilePending", func(t *testing.T) {
		c, st := pool.NewCompletion()
		require.True(t, st.OK())

		require.Equal(t, backend.StatusInProgress, c.ReturnValue())
		require.False(t, c.IsComplete())

		c.Release()
	})

	t.Run("ReleaseWaitsForBuffer", func(t *testing.T) {
		c, st := pool.NewCompletion()
		require.True(t, st.OK())

		buf := make([]byte, 13)
		st = pool.AioRead("obj", c, buf, 0)
		require.True(t, st.OK())

		// Release without waiting: it must not return while the driver could
		// still be writing into buf, so the content is stable afterwards.
		c.Release()
		require.Equal(t, []byte("async payload"), buf)
	})
}
