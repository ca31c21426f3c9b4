package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nexusshell/nexusshell/internal/core/plugin"
	"github.com/nexusshell/nexusshell/internal/telemetry"
)

type pluginMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

func newPluginMetrics() plugin.ExecutionObserver {
	if !telemetry.IsEnabled() {
		return nil
	}
	reg := telemetry.GetRegistry()

	return &pluginMetrics{
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "nexusshell_plugin_execution_duration_milliseconds",
				Help: "Duration of plugin function executions in milliseconds.",
				Buckets: []float64{
					0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
			[]string{"plugin_id"},
		),
		calls: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexusshell_plugin_executions_total",
				Help: "Total number of plugin function executions by outcome.",
			},
			[]string{"plugin_id", "status"}, // status: "success", "failure"
		),
	}
}

func (m *pluginMetrics) ObserveExecution(pluginID string, duration time.Duration, success bool) {
	m.duration.WithLabelValues(pluginID).Observe(duration.Seconds() * 1000)
	status := "success"
	if !success {
		status = "failure"
	}
	m.calls.WithLabelValues(pluginID, status).Inc()
}

func init() {
	telemetry.RegisterPluginMetricsConstructor(newPluginMetrics)
}
