package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketIndexRoundsUpToPowerOfTwo(t *testing.T) {
	idx, ok := bucketIndex(1)
	assert.True(t, ok)
	assert.Equal(t, 0, idx) // smallest bucket is 64 bytes

	idx, ok = bucketIndex(64)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = bucketIndex(65)
	assert.True(t, ok)
	assert.Equal(t, 1, idx) // rounds up to the 128-byte bucket

	idx, ok = bucketIndex(128)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestBucketIndexRejectsOversizedRequests(t *testing.T) {
	_, ok := bucketIndex(1 << 25)
	assert.False(t, ok)
}

func TestMemPoolAllocateReturnsExactLengthZeroed(t *testing.T) {
	p := NewMemPool(4)
	buf := p.Allocate(100)
	assert.Len(t, buf, 100)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestMemPoolDeallocateReusesBuffer(t *testing.T) {
	p := NewMemPool(4)
	buf := p.Allocate(100)
	for i := range buf {
		buf[i] = 0xFF
	}
	p.Deallocate(buf)

	reused := p.Allocate(100)
	assert.Len(t, reused, 100)
	for _, b := range reused {
		assert.Equal(t, byte(0), b, "reused buffer must come back cleared")
	}
}

func TestMemPoolOversizedAllocationBypassesBuckets(t *testing.T) {
	p := NewMemPool(4)
	buf := p.Allocate(1 << 25)
	assert.Len(t, buf, 1<<25)
	p.Deallocate(buf) // must not panic even though no bucket matches
}

func TestMemPoolDropsBuffersBeyondMaxPerBucket(t *testing.T) {
	p := NewMemPool(1)
	a := p.Allocate(64)
	b := p.Allocate(64)

	p.Deallocate(a)
	p.Deallocate(b) // bucket already holds one; this one is dropped

	assert.Equal(t, int64(1), p.buckets[0].pooled.Load())
}

func TestPackageLevelAllocateDeallocate(t *testing.T) {
	buf := Allocate(32)
	assert.Len(t, buf, 32)
	Deallocate(buf)
}
