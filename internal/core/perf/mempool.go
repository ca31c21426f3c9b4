package perf

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

const (
	minBucketShift = 6  // smallest bucket is 64 bytes
	maxBucketShift = 24 // largest bucket is 16 MiB; bigger requests bypass the pool
	numBuckets     = maxBucketShift - minBucketShift + 1
)

type bucket struct {
	pool    sync.Pool
	pooled  atomic.Int64
	maxHeld int64
}

// MemPool is a free-list of byte buffers bucketed by power-of-two
// capacity. Allocate rounds a requested size up to the next bucket;
// Deallocate returns a buffer to the bucket matching its capacity,
// unless that bucket already holds maxPerBucket buffers, in which case
// the buffer is dropped for the garbage collector to reclaim.
type MemPool struct {
	buckets      [numBuckets]*bucket
	maxPerBucket int64
}

// NewMemPool returns a pool whose buckets each hold at most
// maxPerBucket released buffers before further Deallocate calls are
// dropped rather than retained. maxPerBucket <= 0 means unbounded.
func NewMemPool(maxPerBucket int64) *MemPool {
	p := &MemPool{maxPerBucket: maxPerBucket}
	for i := range p.buckets {
		shift := uint(minBucketShift + i)
		size := 1 << shift
		p.buckets[i] = &bucket{}
		p.buckets[i].pool.New = func() any {
			return make([]byte, size)
		}
	}
	return p
}

// bucketIndex returns the index of the smallest bucket whose capacity
// is >= size, and false if size exceeds the largest bucket.
func bucketIndex(size int) (int, bool) {
	if size <= 0 {
		return 0, true
	}
	minSize := 1 << minBucketShift
	if size <= minSize {
		return 0, true
	}
	shift := bits.Len(uint(size - 1))
	if shift > maxBucketShift {
		return 0, false
	}
	return shift - minBucketShift, true
}

// Allocate returns a zeroed buffer with length size, backed by a
// buffer from the matching bucket when size fits within the pool's
// range, or a freshly allocated slice otherwise.
func (p *MemPool) Allocate(size int) []byte {
	idx, ok := bucketIndex(size)
	if !ok {
		return make([]byte, size)
	}
	b := p.buckets[idx]
	buf := b.pool.Get().([]byte)
	if cur := b.pooled.Add(-1); cur < 0 {
		b.pooled.Store(0)
	}
	if cap(buf) < size {
		buf = make([]byte, 1<<(minBucketShift+idx))
	}
	buf = buf[:size]
	clear(buf)
	return buf
}

// Deallocate returns buf to the bucket matching its capacity. Buffers
// smaller than the minimum bucket size, or larger than the maximum,
// are left for ordinary garbage collection.
func (p *MemPool) Deallocate(buf []byte) {
	if cap(buf) < 1<<minBucketShift {
		return
	}
	idx, ok := bucketIndex(cap(buf))
	if !ok {
		return
	}
	b := p.buckets[idx]
	if p.maxPerBucket > 0 && b.pooled.Load() >= p.maxPerBucket {
		return
	}
	b.pooled.Add(1)
	b.pool.Put(buf[:cap(buf)])
}

var defaultPool = NewMemPool(256)

// Allocate draws a buffer from the package-level default pool.
func Allocate(size int) []byte { return defaultPool.Allocate(size) }

// Deallocate returns a buffer to the package-level default pool.
func Deallocate(buf []byte) { defaultPool.Deallocate(buf) }
