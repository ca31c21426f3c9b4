package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nexusshell/nexusshell/internal/core/scheduler"
	"github.com/nexusshell/nexusshell/internal/telemetry"
)

type schedulerMetrics struct {
	queueDepth prometheus.Gauge
	running    prometheus.Gauge
}

func newSchedulerMetrics() scheduler.MetricsObserver {
	if !telemetry.IsEnabled() {
		return nil
	}
	reg := telemetry.GetRegistry()

	return &schedulerMetrics{
		queueDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "nexusshell_scheduler_queue_depth",
			Help: "Number of jobs currently waiting in the scheduler's priority queue.",
		}),
		running: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "nexusshell_scheduler_running_jobs",
			Help: "Number of job attempts currently executing.",
		}),
	}
}

func (m *schedulerMetrics) ObserveQueueDepth(depth int) { m.queueDepth.Set(float64(depth)) }
func (m *schedulerMetrics) ObserveRunning(count int)    { m.running.Set(float64(count)) }

func init() {
	telemetry.RegisterSchedulerMetricsConstructor(newSchedulerMetrics)
}
