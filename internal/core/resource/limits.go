package resource

import "time"

// Limits bounds what a resource table will accept. MaxResourcesPerType can
// be overridden on a per-Type basis via PerTypeOverride — a supplemented
// feature carried over from the source's resource-limit configuration
// that the distilled contract omitted (see DESIGN.md).
type Limits struct {
	MaxTotalBytes       int64
	MaxBytesPerPlugin   int64
	MaxResources        int
	MaxResourcesPerType int
	MaxLifetime         time.Duration
	MaxIdleTime         time.Duration
	PerTypeOverride     map[Type]int
}

// maxForType returns the effective per-type resource count cap, honoring
// any override for t.
func (l Limits) maxForType(t Type) int {
	if l.PerTypeOverride != nil {
		if n, ok := l.PerTypeOverride[t]; ok {
			return n
		}
	}
	return l.MaxResourcesPerType
}

// DefaultLimits returns generous limits suitable when no configuration
// section overrides them.
func DefaultLimits() Limits {
	return Limits{
		MaxTotalBytes:       512 * 1024 * 1024,
		MaxBytesPerPlugin:   64 * 1024 * 1024,
		MaxResources:        10000,
		MaxResourcesPerType: 1000,
		MaxLifetime:         24 * time.Hour,
		MaxIdleTime:         10 * time.Minute,
	}
}
