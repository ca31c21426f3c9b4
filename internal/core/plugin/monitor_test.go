package plugin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorRecordSample(t *testing.T) {
	t.Run("AccumulatesRollingMeanMinMax", func(t *testing.T) {
		m := NewMonitor(4)
		m.RecordSample(Sample{PluginID: "p1", Duration: 10 * time.Millisecond, Success: true, MemoryAfter: 100})
		m.RecordSample(Sample{PluginID: "p1", Duration: 30 * time.Millisecond, Success: true, MemoryAfter: 200})
		m.RecordSample(Sample{PluginID: "p1", Duration: 20 * time.Millisecond, Success: false, MemoryAfter: 50})

		metrics, ok := m.Metrics("p1")
		require.True(t, ok)
		assert.Equal(t, uint64(3), metrics.Calls)
		assert.Equal(t, uint64(2), metrics.Successes)
		assert.Equal(t, uint64(1), metrics.Failures)
		assert.Equal(t, 10*time.Millisecond, metrics.MinDur)
		assert.Equal(t, 30*time.Millisecond, metrics.MaxDur)
		assert.Equal(t, 20*time.Millisecond, metrics.MeanDur)
		assert.Equal(t, uint64(200), metrics.PeakMemory)
	})

	t.Run("RingBufferWrapsAtCapacity", func(t *testing.T) {
		m := NewMonitor(2)
		m.RecordSample(Sample{PluginID: "p1", Operation: "a"})
		m.RecordSample(Sample{PluginID: "p1", Operation: "b"})
		m.RecordSample(Sample{PluginID: "p1", Operation: "c"})

		samples := m.Samples()
		require.Len(t, samples, 2)
		assert.Equal(t, "b", samples[0].Operation)
		assert.Equal(t, "c", samples[1].Operation)
	})

	t.Run("DropPluginClearsAggregate", func(t *testing.T) {
		m := NewMonitor(4)
		m.RecordSample(Sample{PluginID: "p1", Success: true})
		m.DropPlugin("p1")

		_, ok := m.Metrics("p1")
		assert.False(t, ok)
	})

	t.Run("CollectReportsActivePluginCount", func(t *testing.T) {
		m := NewMonitor(4)
		m.RecordSample(Sample{PluginID: "p1", MemoryAfter: 10})
		m.RecordSample(Sample{PluginID: "p2", MemoryAfter: 20})

		agg := m.Collect()
		assert.Equal(t, 2, agg.ActivePluginCount)
		assert.Equal(t, uint64(30), agg.TotalMemory)
	})

	t.Run("ComputesPercentileDurations", func(t *testing.T) {
		m := NewMonitor(8)
		for _, d := range []time.Duration{10, 20, 30, 40, 100} {
			m.RecordSample(Sample{PluginID: "p1", Duration: d * time.Millisecond, Success: true})
		}

		metrics, ok := m.Metrics("p1")
		require.True(t, ok)
		assert.Equal(t, 30*time.Millisecond, metrics.P50Dur)
		assert.Equal(t, 100*time.Millisecond, metrics.P99Dur)
	})
}

type fakeObserver struct {
	calls []time.Duration
}

func (f *fakeObserver) ObserveExecution(pluginID string, duration time.Duration, success bool) {
	f.calls = append(f.calls, duration)
}

func TestMonitorNotifiesObserver(t *testing.T) {
	m := NewMonitor(4)
	obs := &fakeObserver{}
	m.SetObserver(obs)

	m.RecordSample(Sample{PluginID: "p1", Duration: 5 * time.Millisecond, Success: true})
	m.RecordSample(Sample{PluginID: "p1", Duration: 7 * time.Millisecond, Success: false})

	require.Len(t, obs.calls, 2)
	assert.Equal(t, 5*time.Millisecond, obs.calls[0])
	assert.Equal(t, 7*time.Millisecond, obs.calls[1])
}

func TestMonitorWithoutObserverDoesNotPanic(t *testing.T) {
	m := NewMonitor(4)
	m.RecordSample(Sample{PluginID: "p1", Duration: time.Millisecond, Success: true})
}

func TestSemverCompare(t *testing.T) {
	t.Run("DetectsNewerPatchVersion", func(t *testing.T) {
		assert.True(t, isNewerVersion("1.0.0", "1.0.1"))
		assert.False(t, isNewerVersion("1.0.1", "1.0.0"))
	})

	t.Run("IgnoresPrereleaseSuffix", func(t *testing.T) {
		assert.Equal(t, 0, compareSemver("1.2.3-beta", "1.2.3"))
	})

	t.Run("MajorVersionDominates", func(t *testing.T) {
		assert.True(t, isNewerVersion("1.9.9", "2.0.0"))
	})
}
