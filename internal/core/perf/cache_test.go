package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSetRoundTrip(t *testing.T) {
	c := NewCache[string](0)
	c.Set("greeting", "hello", 0)

	v, ok := c.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheEntryExpiresAfterTTL(t *testing.T) {
	c := NewCache[int](0)
	c.Set("n", 42, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("n")
	assert.False(t, ok)
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewCache[int](0)
	c.Set("n", 7, 0)
	time.Sleep(2 * time.Millisecond)

	v, ok := c.Get("n")
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestCacheEvictsOldestWhenAtCapacity(t *testing.T) {
	c := NewCache[int](2)
	c.Set("first", 1, 0)
	time.Sleep(time.Millisecond)
	c.Set("second", 2, 0)
	time.Sleep(time.Millisecond)
	c.Set("third", 3, 0)

	_, ok := c.Get("first")
	assert.False(t, ok, "oldest created entry should have been evicted")

	_, ok = c.Get("second")
	assert.True(t, ok)
	_, ok = c.Get("third")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCacheUpdatingExistingKeyDoesNotEvict(t *testing.T) {
	c := NewCache[int](1)
	c.Set("only", 1, 0)
	c.Set("only", 2, 0)

	v, ok := c.Get("only")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

type recordingHitMissObserver struct {
	hits, misses int
}

func (o *recordingHitMissObserver) ObserveHit()  { o.hits++ }
func (o *recordingHitMissObserver) ObserveMiss() { o.misses++ }

func TestCacheNotifiesHitMissObserver(t *testing.T) {
	c := NewCache[int](0)
	obs := &recordingHitMissObserver{}
	c.SetObserver(obs)

	c.Set("present", 1, 0)
	c.Get("present")
	c.Get("absent")

	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
}

func TestCacheCleanupRemovesOnlyExpiredEntries(t *testing.T) {
	c := NewCache[string](0)
	c.Set("short", "a", time.Millisecond)
	c.Set("long", "b", time.Hour)
	time.Sleep(5 * time.Millisecond)

	removed := c.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("long")
	assert.True(t, ok)
}
