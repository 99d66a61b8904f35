package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// Registry initialization is process-global, so the disabled and enabled
// paths are covered in one ordered test.
func TestClientMetricsLifecycle(t *testing.T) {
	require.False(t, IsEnabled())
	require.Nil(t, NewClientMetrics())

	InitRegistry()
	InitRegistry() // idempotent
	require.True(t, IsEnabled())

	m := NewClientMetrics()
	require.NotNil(t, m)

	m.ObserveOperation("stat", backend.StatusOK, 5*time.Millisecond)
	m.ObserveOperation("read", backend.StatusNotFound, time.Millisecond)
	m.SetAioInFlight(3)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	require.True(t, names["rados_client_operations_total"])
	require.True(t, names["rados_client_operation_duration_seconds"])
	require.True(t, names["rados_client_aio_in_flight"])
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0"})
	require.Equal(t, "127.0.0.1:0", srv.Addr())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerConfigDefaults(t *testing.T) {
	cfg := ServerConfig{}
	cfg.applyDefaults()
	require.Equal(t, ":9090", cfg.Addr)
}
