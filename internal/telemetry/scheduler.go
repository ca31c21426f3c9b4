package telemetry

import "github.com/nexusshell/nexusshell/internal/core/scheduler"

// NewSchedulerMetrics returns a Prometheus-backed
// scheduler.MetricsObserver, or nil if metrics are not enabled.
func NewSchedulerMetrics() scheduler.MetricsObserver {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusSchedulerMetrics()
}

var newPrometheusSchedulerMetrics func() scheduler.MetricsObserver

// RegisterSchedulerMetricsConstructor is called from the prometheus
// subpackage's init to install the concrete constructor.
func RegisterSchedulerMetricsConstructor(constructor func() scheduler.MetricsObserver) {
	newPrometheusSchedulerMetrics = constructor
}
