package telemetry

import "github.com/nexusshell/nexusshell/internal/core/plugin"

// NewPluginMetrics returns a Prometheus-backed plugin.ExecutionObserver,
// or nil if metrics are not enabled.
func NewPluginMetrics() plugin.ExecutionObserver {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusPluginMetrics()
}

var newPrometheusPluginMetrics func() plugin.ExecutionObserver

// RegisterPluginMetricsConstructor is called from the prometheus
// subpackage's init to install the concrete constructor.
func RegisterPluginMetricsConstructor(constructor func() plugin.ExecutionObserver) {
	newPrometheusPluginMetrics = constructor
}
