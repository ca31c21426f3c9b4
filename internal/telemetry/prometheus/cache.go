// Package prometheus holds the concrete Prometheus collectors for each
// metrics sink declared in internal/telemetry; importing it for its
// side effect registers the constructors the parent package's
// NewXMetrics functions delegate to.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nexusshell/nexusshell/internal/core/perf"
	"github.com/nexusshell/nexusshell/internal/telemetry"
)

type cacheMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
}

func newCacheMetrics() perf.HitMissObserver {
	if !telemetry.IsEnabled() {
		return nil
	}
	reg := telemetry.GetRegistry()

	return &cacheMetrics{
		hits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nexusshell_perf_cache_hits_total",
			Help: "Total number of performance cache lookups that found an unexpired entry.",
		}),
		misses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nexusshell_perf_cache_misses_total",
			Help: "Total number of performance cache lookups that found no unexpired entry.",
		}),
	}
}

func (m *cacheMetrics) ObserveHit()  { m.hits.Inc() }
func (m *cacheMetrics) ObserveMiss() { m.misses.Inc() }

func init() {
	telemetry.RegisterCacheMetricsConstructor(newCacheMetrics)
}
