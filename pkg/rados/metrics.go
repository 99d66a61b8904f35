package rados

import (
	"time"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// Metrics receives client operation events. Implementations must be cheap
// and must not block; every exported operation reports through this
// interface. pkg/metrics provides a Prometheus-backed implementation.
type Metrics interface {
	// ObserveOperation records one finished client operation with its final
	// backend status and wall-clock duration. Asynchronous operations are
	// observed when their completion is released.
	ObserveOperation(op string, st backend.Status, elapsed time.Duration)

	// SetAioInFlight records the current number of in-flight asynchronous
	// operations.
	SetAioInFlight(n int64)
}

// nopMetrics is the default sink when no Metrics option is given.
type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, backend.Status, time.Duration) {}

func (nopMetrics) SetAioInFlight(int64) {}
