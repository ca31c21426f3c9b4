package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

func TestAddAndGet(t *testing.T) {
	t.Run("RoundTripsTypedValue", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		id, err := Add(tbl, "hello", TypeMemory, "plugin-a", 5)
		require.Nil(t, err)

		got, ok := Get[string](tbl, id)
		assert.True(t, ok)
		assert.Equal(t, "hello", got)
	})

	t.Run("FailsClosedOnTypeMismatch", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		id, err := Add(tbl, 42, TypeMemory, "plugin-a", 8)
		require.Nil(t, err)

		_, ok := Get[string](tbl, id)
		assert.False(t, ok)
	})

	t.Run("UnknownIDReturnsFalse", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		_, ok := Get[string](tbl, "nonexistent")
		assert.False(t, ok)
	})

	t.Run("UpdatesAccessCountAndTimestamp", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		id, err := Add(tbl, "v", TypeMemory, "plugin-a", 1)
		require.Nil(t, err)

		_, _ = Get[string](tbl, id)
		_, _ = Get[string](tbl, id)

		info, ok := tbl.Info(id)
		require.True(t, ok)
		assert.Equal(t, uint64(2), info.AccessCount)
	})
}

func TestLimits(t *testing.T) {
	t.Run("RejectsWhenTotalCountExceeded", func(t *testing.T) {
		tbl := NewTable(Limits{MaxResources: 1})
		_, err := Add(tbl, "a", TypeMemory, "p", 0)
		require.Nil(t, err)

		_, err = Add(tbl, "b", TypeMemory, "p", 0)
		require.NotNil(t, err)
		assert.Equal(t, shellerr.KindResourceExhausted, err.Kind)
	})

	t.Run("RejectsWhenPerTypeCountExceeded", func(t *testing.T) {
		tbl := NewTable(Limits{MaxResources: 100, MaxResourcesPerType: 1})
		_, err := Add(tbl, "a", TypeMemory, "p", 0)
		require.Nil(t, err)

		_, err = Add(tbl, "b", TypeMemory, "p", 0)
		require.NotNil(t, err)
	})

	t.Run("PerTypeOverrideTakesPrecedence", func(t *testing.T) {
		tbl := NewTable(Limits{
			MaxResources:        100,
			MaxResourcesPerType: 1,
			PerTypeOverride:     map[Type]int{TypeFile: 5},
		})
		for i := 0; i < 5; i++ {
			_, err := Add(tbl, i, TypeFile, "p", 0)
			require.Nil(t, err)
		}
		_, err := Add(tbl, 99, TypeFile, "p", 0)
		require.NotNil(t, err)
	})

	t.Run("RejectsWhenTotalBytesExceeded", func(t *testing.T) {
		tbl := NewTable(Limits{MaxResources: 100, MaxTotalBytes: 10})
		_, err := Add(tbl, "a", TypeMemory, "p", 8)
		require.Nil(t, err)

		_, err = Add(tbl, "b", TypeMemory, "p", 8)
		require.NotNil(t, err)
	})

	t.Run("RejectsWhenPerPluginBytesExceeded", func(t *testing.T) {
		tbl := NewTable(Limits{MaxResources: 100, MaxBytesPerPlugin: 10})
		_, err := Add(tbl, "a", TypeMemory, "p1", 8)
		require.Nil(t, err)

		_, err = Add(tbl, "b", TypeMemory, "p2", 8)
		require.Nil(t, err, "different plugin should have its own budget")

		_, err = Add(tbl, "c", TypeMemory, "p1", 8)
		require.NotNil(t, err, "p1 already holds 8 of its 10 bytes")
	})
}

func TestRemove(t *testing.T) {
	t.Run("RemovesAndDecrementsAccounting", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		id, err := Add(tbl, "a", TypeMemory, "p", 100)
		require.Nil(t, err)

		assert.True(t, tbl.Remove(id))
		assert.Equal(t, int64(0), tbl.MemoryInfo("p").CurrentBytes)
		assert.Equal(t, 0, tbl.Len())
	})

	t.Run("RemovingUnknownIDReturnsFalse", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		assert.False(t, tbl.Remove("nonexistent"))
	})
}

func TestCleanupIdle(t *testing.T) {
	t.Run("RemovesOnlyStaleEntries", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		id, err := Add(tbl, "a", TypeMemory, "p", 0)
		require.Nil(t, err)

		tbl.mu.Lock()
		tbl.entries[id].info.LastAccessed = time.Now().Add(-time.Hour)
		tbl.mu.Unlock()

		id2, err := Add(tbl, "b", TypeMemory, "p", 0)
		require.Nil(t, err)

		removed := tbl.CleanupIdle(time.Minute)
		assert.Equal(t, 1, removed)

		_, ok := tbl.Info(id)
		assert.False(t, ok)
		_, ok = tbl.Info(id2)
		assert.True(t, ok)
	})
}

func TestCleanupPlugin(t *testing.T) {
	t.Run("ForceRemovesAllOwnedResources", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		_, err := Add(tbl, "a", TypeMemory, "p1", 10)
		require.Nil(t, err)
		_, err = Add(tbl, "b", TypeFile, "p1", 20)
		require.Nil(t, err)
		_, err = Add(tbl, "c", TypeFile, "p2", 5)
		require.Nil(t, err)

		removed := tbl.CleanupPlugin("p1")
		assert.Equal(t, 2, removed)
		assert.Equal(t, 1, tbl.Len())
	})
}

func TestMemoryInfoConsistency(t *testing.T) {
	t.Run("SumOfResourceBytesEqualsCurrentBytes", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		_, err := Add(tbl, "a", TypeMemory, "p", 30)
		require.Nil(t, err)
		_, err = Add(tbl, "b", TypeMemory, "p", 20)
		require.Nil(t, err)

		assert.Equal(t, int64(50), tbl.MemoryInfo("p").CurrentBytes)
	})
}

func TestCallbacks(t *testing.T) {
	t.Run("OnCreatedFires", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		var fired Info
		tbl.OnCreated(func(i Info) { fired = i })

		id, err := Add(tbl, "a", TypeMemory, "p", 5)
		require.Nil(t, err)
		assert.Equal(t, id, fired.ID)
	})

	t.Run("PanickingCallbackDoesNotAbortOperation", func(t *testing.T) {
		tbl := NewTable(DefaultLimits())
		tbl.OnCreated(func(Info) { panic("boom") })

		id, err := Add(tbl, "a", TypeMemory, "p", 5)
		require.Nil(t, err)
		assert.NotEmpty(t, id)
	})
}
