// Package metrics provides Prometheus metrics collection for the go-rados
// client.
//
// All metrics are optional - if the registry is not initialized, the
// constructors return nil and the client falls back to its built-in no-op
// sink. This allows embedding applications to run with or without metrics
// collection enabled.
//
// Usage:
//
//	// Initialize global registry (typically in main)
//	metrics.InitRegistry()
//
//	// Create a client metrics sink
//	cluster, err := rados.Create(be, "", rados.WithMetrics(metrics.NewClientMetrics()))
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all client metrics.
	// Protected by registryOnce for write-once, read-many access.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// Must be called before creating metrics instances. Safe to call multiple
// times - subsequent calls are ignored. If never called, GetRegistry returns
// nil and the constructors return no-op implementations.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry, or nil when metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if metrics collection is enabled.
func IsEnabled() bool {
	return GetRegistry() != nil
}
