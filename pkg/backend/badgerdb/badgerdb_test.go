package badgerdb_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/badgerdb"
	backendtesting "github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/testing"
)

func TestBadgerBackendConformance(t *testing.T) {
	suite := &backendtesting.Suite{
		New: func(t *testing.T) *backendtesting.Harness {
			be, err := badgerdb.New(badgerdb.Options{InMemory: true})
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, be.Close()) })

			return &backendtesting.Harness{
				Backend: be,
				CreatePool: func(t *testing.T, pool string) {
					require.NoError(t, be.CreatePool(pool))
				},
				Put: func(t *testing.T, pool, locator, oid string, data []byte, modTime time.Time) {
					require.NoError(t, be.Put(pool, locator, oid, data, modTime.UnixNano()))
				},
			}
		},
	}
	suite.Run(t)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := badgerdb.New(badgerdb.Options{})
	require.Error(t, err)
}

func TestDataSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	modTime := time.Now().Truncate(time.Second)

	be, err := badgerdb.New(badgerdb.Options{Path: dir})
	require.NoError(t, err)
	require.NoError(t, be.Put("pool", "", "obj", []byte("persistent"), modTime.UnixNano()))
	require.NoError(t, be.Close())

	be, err = badgerdb.New(badgerdb.Options{Path: dir})
	require.NoError(t, err)
	defer func() { require.NoError(t, be.Close()) }()

	cluster, st := be.NewCluster("")
	require.True(t, st.OK())
	require.True(t, cluster.Connect().OK())
	defer cluster.Shutdown()

	pool, st := cluster.OpenPool("pool")
	require.True(t, st.OK(), "OpenPool: %s", st)
	defer pool.Destroy()

	info, st := pool.Stat("obj")
	require.True(t, st.OK(), "Stat: %s", st)
	require.Equal(t, uint64(len("persistent")), info.Size)
	require.Equal(t, modTime.UnixNano(), info.ModTime.UnixNano())

	buf := make([]byte, 32)
	st = pool.Read("obj", buf, 0)
	require.Equal(t, backend.Status(len("persistent")), st)
	require.Equal(t, []byte("persistent"), buf[:st])
}
