package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/rados"
)

// clientMetrics is the Prometheus implementation of the rados.Metrics
// interface.
//
// Collected metrics:
//   - Operation counts by operation and status
//   - Operation latency histograms
//   - In-flight asynchronous operations gauge
type clientMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	aioInFlight       prometheus.Gauge
}

// NewClientMetrics creates a Prometheus-backed rados.Metrics sink.
//
// Returns nil if metrics are not enabled (InitRegistry not called);
// rados.WithMetrics treats a nil sink as the discarding default, so the
// result can be passed through unconditionally.
func NewClientMetrics() rados.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &clientMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rados_client_operations_total",
				Help: "Total number of client operations by operation type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "rados_client_operation_duration_seconds",
				Help: "Duration of client operations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					5.0,   // 5s
					10.0,  // 10s
				},
			},
			[]string{"operation"},
		),
		aioInFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "rados_client_aio_in_flight",
				Help: "Number of asynchronous operations currently in flight",
			},
		),
	}
}

// ObserveOperation implements rados.Metrics.
func (m *clientMetrics) ObserveOperation(op string, st backend.Status, elapsed time.Duration) {
	status := "success"
	if !st.OK() {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetAioInFlight implements rados.Metrics.
func (m *clientMetrics) SetAioInFlight(n int64) {
	m.aioInFlight.Set(float64(n))
}
