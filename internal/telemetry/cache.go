package telemetry

import "github.com/nexusshell/nexusshell/internal/core/perf"

// NewCacheMetrics returns a Prometheus-backed perf.HitMissObserver, or
// nil if metrics are not enabled — callers pass nil straight to
// Cache.SetObserver, which is then a no-op on every Get.
func NewCacheMetrics() perf.HitMissObserver {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusCacheMetrics()
}

// newPrometheusCacheMetrics is supplied by telemetry/prometheus/cache.go
// via RegisterCacheMetricsConstructor. The indirection keeps this
// package import-cycle-free: the prometheus subpackage needs IsEnabled
// and GetRegistry from here, so it cannot be imported directly.
var newPrometheusCacheMetrics func() perf.HitMissObserver

// RegisterCacheMetricsConstructor is called from the prometheus
// subpackage's init to install the concrete constructor.
func RegisterCacheMetricsConstructor(constructor func() perf.HitMissObserver) {
	newPrometheusCacheMetrics = constructor
}
