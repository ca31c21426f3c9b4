// Package perf implements the cross-cutting performance utilities
// named in §4.I: a TTL/LRU cache, a power-of-two bucketed buffer pool,
// a size-adaptive I/O wrapper, and byte-search/compare helpers with a
// CPU-feature-gated fast path.
package perf

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	createdAt time.Time
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// HitMissObserver receives a callback for every Get, independent of
// the cache's own bookkeeping. Wired to an optional metrics sink.
type HitMissObserver interface {
	ObserveHit()
	ObserveMiss()
}

// Cache is a keyed string → boxed value store with a per-entry TTL and
// LRU eviction by creation timestamp (not last access) once the
// configured size cap is exceeded.
type Cache[T any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[T]
	maxSize  int
	observer HitMissObserver
}

// NewCache returns an empty cache capped at maxSize entries (0 = unbounded).
func NewCache[T any](maxSize int) *Cache[T] {
	return &Cache[T]{entries: make(map[string]entry[T]), maxSize: maxSize}
}

// SetObserver installs (or, passed nil, removes) the hit/miss metrics
// sink notified on every Get.
func (c *Cache[T]) SetObserver(observer HitMissObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = observer
}

// Get returns the value stored under key, if present and unexpired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		if c.observer != nil {
			c.observer.ObserveMiss()
		}
		var zero T
		return zero, false
	}
	if c.observer != nil {
		c.observer.ObserveHit()
	}
	return e.value, true
}

// Set stores value under key with the given TTL (0 = no expiry),
// evicting the oldest-created entries first if the cache is at capacity.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e := entry[T]{value: value, createdAt: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = e
}

// evictOldestLocked drops the entry with the earliest creation
// timestamp. Caller must hold c.mu for writing.
func (c *Cache[T]) evictOldestLocked() {
	type keyed struct {
		key       string
		createdAt time.Time
	}
	all := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, keyed{k, e.createdAt})
	}
	if len(all) == 0 {
		return
	}
	slices.SortFunc(all, func(a, b keyed) int {
		return cmp.Compare(a.createdAt.UnixNano(), b.createdAt.UnixNano())
	})
	delete(c.entries, all[0].key)
}

// Cleanup drops every expired entry, returning the number removed.
func (c *Cache[T]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently stored (including,
// transiently, expired entries not yet swept by Cleanup).
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
