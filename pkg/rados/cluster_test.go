package rados_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/memory"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/rados"
)

var seedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// seededBackend returns a memory backend with a "data" pool holding one
// plain object and one locator-placed object.
func seededBackend(t *testing.T) *memory.Backend {
	t.Helper()

	be := memory.New()
	be.CreatePool("data")
	be.Put("data", "", "greeting", []byte("hello world"), seedTime)
	be.Put("data", "rack1", "placed", []byte("located"), seedTime)

	return be
}

func connectedCluster(t *testing.T, be *memory.Backend) *rados.Cluster {
	t.Helper()

	cluster, err := rados.Create(be, "")
	require.NoError(t, err)
	require.NoError(t, cluster.Connect())

	return cluster
}

func TestVersion(t *testing.T) {
	major, minor, extra := rados.Version()
	require.Equal(t, rados.VersionMajor, major)
	require.Equal(t, rados.VersionMinor, minor)
	require.Equal(t, rados.VersionExtra, extra)
}

func TestCreateRequiresBackend(t *testing.T) {
	_, err := rados.Create(nil, "")

	var argErr *rados.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestCreateWithNilMetricsKeepsDefaultSink(t *testing.T) {
	be := seededBackend(t)

	// A disabled metrics constructor returns a nil sink; operations must
	// still run against the discarding default.
	cluster, err := rados.Create(be, "", rados.WithMetrics(nil))
	require.NoError(t, err)
	require.NoError(t, cluster.Connect())
	defer func() { _ = cluster.Shutdown() }()

	ioctx, err := cluster.OpenIOContext("data")
	require.NoError(t, err)
	defer func() { _ = ioctx.Close() }()

	stat, err := ioctx.Stat("greeting")
	require.NoError(t, err)
	require.Equal(t, uint64(11), stat.Size)
}

func TestConnectTwice(t *testing.T) {
	cluster := connectedCluster(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()

	err := cluster.Connect()
	require.EqualError(t, err, "already connected to cluster")

	var stateErr *rados.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestConnectFailureLeavesStateUnchanged(t *testing.T) {
	be := seededBackend(t)
	be.FailConnect(backend.StatusTimedOut)

	cluster, err := rados.Create(be, "")
	require.NoError(t, err)

	err = cluster.Connect()

	var backendErr *rados.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, backend.StatusTimedOut, backendErr.Status)

	// Still configuring: a retry after the fault clears must succeed.
	be.FailConnect(backend.StatusOK)
	require.NoError(t, cluster.Connect())
	require.NoError(t, cluster.Shutdown())
}

func TestShutdownRequiresConnected(t *testing.T) {
	cluster, err := rados.Create(seededBackend(t), "")
	require.NoError(t, err)

	require.EqualError(t, cluster.Shutdown(), "not connected to cluster")
}

func TestShutdownIsTerminal(t *testing.T) {
	cluster := connectedCluster(t, seededBackend(t))
	require.NoError(t, cluster.Shutdown())

	require.EqualError(t, cluster.Shutdown(), "cannot reuse shutdown rados handle")
	require.EqualError(t, cluster.Connect(), "cannot reuse shutdown rados handle")
	require.EqualError(t, cluster.ConfReadFile(""), "cannot reuse shutdown rados handle")

	_, err := cluster.OpenIOContext("data")
	require.EqualError(t, err, "cannot reuse shutdown rados handle")
}

func TestOpenIOContextRequiresConnected(t *testing.T) {
	cluster, err := rados.Create(seededBackend(t), "")
	require.NoError(t, err)

	_, err = cluster.OpenIOContext("data")
	require.EqualError(t, err, "not connected to cluster")
}

func TestOpenIOContextValidatesPoolName(t *testing.T) {
	cluster := connectedCluster(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()

	_, err := cluster.OpenIOContext("")

	var argErr *rados.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestOpenIOContextMissingPool(t *testing.T) {
	cluster := connectedCluster(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()

	_, err := cluster.OpenIOContext("no-such-pool")

	var backendErr *rados.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, backend.StatusNotFound, backendErr.Status)
}

func TestConfReadFileDelegatesToBackend(t *testing.T) {
	be := memory.New()

	cluster, err := rados.Create(be, "")
	require.NoError(t, err)

	// Empty path applies driver defaults.
	require.NoError(t, cluster.ConfReadFile(""))

	err = cluster.ConfReadFile("/no/such/file.yaml")
	var backendErr *rados.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, backend.StatusInvalid, backendErr.Status)
}

func TestShutdownDeferredWhileContextsOpen(t *testing.T) {
	be := seededBackend(t)
	cluster := connectedCluster(t, be)

	ioctx, err := cluster.OpenIOContext("data")
	require.NoError(t, err)

	// Shutdown succeeds immediately, but the native session stays alive for
	// the open context.
	require.NoError(t, cluster.Shutdown())
	require.Equal(t, int64(0), be.ShutdownCalls())

	// The context is still usable for I/O.
	stat, err := ioctx.Stat("greeting")
	require.NoError(t, err)
	require.Equal(t, uint64(11), stat.Size)

	// The last close drops the final reference and tears the session down.
	require.NoError(t, ioctx.Close())
	require.Equal(t, int64(1), be.ShutdownCalls())
	require.Equal(t, int64(0), be.ReleaseCalls())
}

func TestLeakedConfiguringClusterUsesAllocatorRelease(t *testing.T) {
	be := memory.New()

	func() {
		cluster, err := rados.Create(be, "")
		require.NoError(t, err)
		_ = cluster
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return be.ReleaseCalls() == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, int64(0), be.ShutdownCalls())
}

func TestLeakedConnectedClusterUsesShutdownPath(t *testing.T) {
	be := seededBackend(t)

	func() {
		cluster := connectedCluster(t, be)
		_ = cluster
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return be.ShutdownCalls() == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, int64(0), be.ReleaseCalls())
}

func TestBackendErrorExposesRawStatus(t *testing.T) {
	cluster := connectedCluster(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()

	_, err := cluster.OpenIOContext("no-such-pool")

	var backendErr *rados.BackendError
	require.True(t, errors.As(err, &backendErr))
	require.Equal(t, backend.StatusNotFound, backendErr.Status)
	require.Contains(t, backendErr.Error(), "no such file or directory")
}
