// Package telemetry wires the cross-cutting metrics sinks — performance
// cache hit/miss counters, plugin execution histograms, and scheduler
// queue-depth gauges — into a Prometheus registry. Metrics collection is
// off by default; InitRegistry must be called once before any NewXMetrics
// constructor returns a non-nil sink.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide Prometheus registry and marks
// metrics collection enabled. Safe to call once at startup; calling it
// again replaces the registry (existing collectors registered against
// the old one are orphaned, which only matters in tests).
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called. Every
// NewXMetrics constructor in this package checks this first so callers
// that never opt in pay zero collection overhead.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the active registry. Only meaningful once
// IsEnabled reports true.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Handler returns an http.Handler serving the registry in the
// Prometheus exposition format, for mounting under a metrics endpoint.
// Returns nil if metrics are not enabled.
func Handler() http.Handler {
	if !IsEnabled() {
		return nil
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Reset disables metrics collection and drops the registry. Intended
// for tests that need a clean collector namespace between cases.
func Reset() {
	registry = nil
	enabled = false
}
