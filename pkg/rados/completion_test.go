package rados_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/rados"
)

func TestAioStat(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioStat("greeting")
	require.NoError(t, err)

	require.NoError(t, c.Wait())

	complete, err := c.IsComplete()
	require.NoError(t, err)
	require.True(t, complete)

	result, err := c.Result()
	require.NoError(t, err)
	require.Equal(t, rados.KindStat, result.Kind)
	require.Equal(t, uint64(11), result.Stat.Size)
	require.Equal(t, seedTime, result.Stat.ModTime)

	require.NoError(t, c.Release())
}

func TestAioRead(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioRead("greeting", 5, 6)
	require.NoError(t, err)

	require.NoError(t, c.Wait())

	result, err := c.Result()
	require.NoError(t, err)
	require.Equal(t, rados.KindRead, result.Kind)
	require.Equal(t, []byte("world"), result.Data)

	require.NoError(t, c.Release())
}

func TestAioReadTruncatedAtEnd(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioRead("greeting", 100, 6)
	require.NoError(t, err)

	require.NoError(t, c.Wait())

	result, err := c.Result()
	require.NoError(t, err)
	require.Equal(t, []byte("world"), result.Data)

	require.NoError(t, c.Release())
}

func TestAioLocatorScopedToSubmission(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioStatLocator("placed", "rack1")
	require.NoError(t, err)

	// The key is cleared at submission, before the operation completes.
	_, err = ioctx.Stat("greeting")
	require.NoError(t, err)

	require.NoError(t, c.Wait())

	result, err := c.Result()
	require.NoError(t, err)
	require.Equal(t, uint64(len("located")), result.Stat.Size)

	require.NoError(t, c.Release())
}

func TestResultBeforeCompletion(t *testing.T) {
	be := seededBackend(t)
	be.SetLatency(100 * time.Millisecond)

	cluster, ioctx := openContext(t, be)
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioStat("greeting")
	require.NoError(t, err)

	complete, err := c.IsComplete()
	require.NoError(t, err)
	require.False(t, complete)

	_, err = c.Result()
	var backendErr *rados.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, backend.StatusInProgress, backendErr.Status)

	require.NoError(t, c.Release())
}

func TestResultIsReenterable(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioRead("greeting", 11, 0)
	require.NoError(t, err)
	require.NoError(t, c.Wait())

	first, err := c.Result()
	require.NoError(t, err)

	second, err := c.Result()
	require.NoError(t, err)

	require.Equal(t, first.Kind, second.Kind)
	require.Equal(t, first.Data, second.Data)

	require.NoError(t, c.Release())
}

func TestAioFailureSurfacesOnResult(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioStat("no-such-object")
	require.NoError(t, err, "submission itself succeeds")

	require.NoError(t, c.Wait())

	_, err = c.Result()
	var backendErr *rados.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, backend.StatusNotFound, backendErr.Status)

	require.NoError(t, c.Release())
}

func TestReleaseIsTerminal(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioStat("greeting")
	require.NoError(t, err)
	require.NoError(t, c.Release())

	require.EqualError(t, c.Release(), "cannot reuse released completion handle")
	require.EqualError(t, c.Wait(), "cannot reuse released completion handle")

	_, err = c.IsComplete()
	require.EqualError(t, err, "cannot reuse released completion handle")

	_, err = c.Result()
	require.EqualError(t, err, "cannot reuse released completion handle")
}

func TestReleaseBeforeCompletionIsSafe(t *testing.T) {
	be := seededBackend(t)
	be.SetLatency(50 * time.Millisecond)

	cluster, ioctx := openContext(t, be)
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	c, err := ioctx.AioRead("greeting", 11, 0)
	require.NoError(t, err)

	// Releasing a pending completion blocks until the backend has stopped
	// touching the buffer, then frees everything.
	require.NoError(t, c.Release())
}

func TestAioInFlightCounter(t *testing.T) {
	be := seededBackend(t)
	be.SetLatency(50 * time.Millisecond)

	cluster, ioctx := openContext(t, be)
	defer func() { _ = cluster.Shutdown() }()
	defer func() { _ = ioctx.Close() }()

	before := rados.AioInFlight()

	first, err := ioctx.AioStat("greeting")
	require.NoError(t, err)
	second, err := ioctx.AioRead("greeting", 4, 0)
	require.NoError(t, err)

	require.Equal(t, before+2, rados.AioInFlight())

	require.NoError(t, first.Release())
	require.Equal(t, before+1, rados.AioInFlight())

	require.NoError(t, second.Release())
	require.Equal(t, before, rados.AioInFlight())
}

func TestCompletionsSurviveContextClose(t *testing.T) {
	cluster, ioctx := openContext(t, seededBackend(t))
	defer func() { _ = cluster.Shutdown() }()

	c, err := ioctx.AioRead("greeting", 11, 0)
	require.NoError(t, err)

	require.NoError(t, ioctx.Close())

	// The completion is self-contained: it can be harvested and released
	// after the context that created it is gone.
	require.NoError(t, c.Wait())

	result, err := c.Result()
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), result.Data)

	require.NoError(t, c.Release())
}

func TestEndToEnd(t *testing.T) {
	be := seededBackend(t)

	cluster, err := rados.Create(be, "client.admin")
	require.NoError(t, err)
	require.NoError(t, cluster.ConfReadFile(""))
	require.NoError(t, cluster.Connect())

	ioctx, err := cluster.OpenIOContext("data")
	require.NoError(t, err)

	stat, err := ioctx.Stat("greeting")
	require.NoError(t, err)

	data, err := ioctx.Read("greeting", stat.Size, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), data)

	c, err := ioctx.AioRead("greeting", stat.Size, 0)
	require.NoError(t, err)
	require.NoError(t, c.Wait())

	result, err := c.Result()
	require.NoError(t, err)
	require.Equal(t, data, result.Data)
	require.NoError(t, c.Release())

	require.NoError(t, ioctx.Close())
	require.NoError(t, cluster.Shutdown())

	require.Equal(t, int64(1), be.ShutdownCalls())
}
