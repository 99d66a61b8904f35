package memory_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/memory"
	backendtesting "github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/testing"
)

func TestMemoryBackendConformance(t *testing.T) {
	suite := &backendtesting.Suite{
		New: func(t *testing.T) *backendtesting.Harness {
			be := memory.New()
			return &backendtesting.Harness{
				Backend: be,
				CreatePool: func(t *testing.T, pool string) {
					be.CreatePool(pool)
				},
				Put: func(t *testing.T, pool, locator, oid string, data []byte, modTime time.Time) {
					be.Put(pool, locator, oid, data, modTime)
				},
			}
		},
	}
	suite.Run(t)
}

func TestConnectFaultInjection(t *testing.T) {
	be := memory.New()
	be.FailConnect(backend.StatusTimedOut)

	cluster, st := be.NewCluster("")
	require.True(t, st.OK())
	defer cluster.Release()

	require.Equal(t, backend.StatusTimedOut, cluster.Connect())

	be.FailConnect(backend.StatusOK)
	require.True(t, cluster.Connect().OK())
}

func TestTeardownCounters(t *testing.T) {
	be := memory.New()

	connected, st := be.NewCluster("")
	require.True(t, st.OK())
	require.True(t, connected.Connect().OK())
	connected.Shutdown()

	idle, st := be.NewCluster("")
	require.True(t, st.OK())
	idle.Release()

	require.Equal(t, int64(1), be.ShutdownCalls())
	require.Equal(t, int64(1), be.ReleaseCalls())
}

func TestLatencyKeepsCompletionPending(t *testing.T) {
	be := memory.New()
	be.CreatePool("pool")
	be.Put("pool", "", "obj", []byte("data"), time.Now())
	be.SetLatency(50 * time.Millisecond)

	cluster, st := be.NewCluster("")
	require.True(t, st.OK())
	require.True(t, cluster.Connect().OK())
	defer cluster.Shutdown()

	pool, st := cluster.OpenPool("pool")
	require.True(t, st.OK())
	defer pool.Destroy()

	c, st := pool.NewCompletion()
	require.True(t, st.OK())

	var info backend.ObjectInfo
	require.True(t, pool.AioStat("obj", c, &info).OK())

	// The artificial latency holds the completion in its pending state long
	// enough to observe it.
	require.False(t, c.IsComplete())
	require.Equal(t, backend.StatusInProgress, c.ReturnValue())

	c.WaitForComplete()
	require.True(t, c.ReturnValue().OK())
	require.Equal(t, uint64(4), info.Size)

	c.Release()
}

func TestConfReadFileSeedsBackend(t *testing.T) {
	seed := `
latency: 10ms
pools:
  - name: seeded
    objects:
      - oid: greeting
        content: hello
      - oid: placed
        locator: rack1
        content: elsewhere
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	be := memory.New()

	cluster, st := be.NewCluster("")
	require.True(t, st.OK())

	require.True(t, cluster.ConfReadFile(path).OK())
	require.True(t, cluster.Connect().OK())
	defer cluster.Shutdown()

	pool, st := cluster.OpenPool("seeded")
	require.True(t, st.OK())
	defer pool.Destroy()

	info, st := pool.Stat("greeting")
	require.True(t, st.OK(), "Stat: %s", st)
	require.Equal(t, uint64(5), info.Size)

	pool.SetLocator("rack1")
	info, st = pool.Stat("placed")
	pool.SetLocator("")
	require.True(t, st.OK(), "Stat: %s", st)
	require.Equal(t, uint64(len("elsewhere")), info.Size)
}

func TestConfReadFileBadPath(t *testing.T) {
	be := memory.New()

	cluster, st := be.NewCluster("")
	require.True(t, st.OK())
	defer cluster.Release()

	require.Equal(t, backend.StatusInvalid, cluster.ConfReadFile("/no/such/file.yaml"))
}
