package perf

import (
	"bytes"

	"golang.org/x/sys/cpu"
)

// HardwareAccelerated reports whether the current CPU exposes the
// vector extensions the fast path below is written to exploit. It is
// informational only: IndexByte and Equal always produce identical
// results regardless of its value, falling back to an explicit scalar
// loop when the hardware (or GOARCH) doesn't qualify.
func HardwareAccelerated() bool {
	if cpu.X86.HasAVX2 || cpu.X86.HasSSE2 {
		return true
	}
	return cpu.ARM64.HasASIMD
}

// IndexByte returns the index of the first occurrence of c in data, or
// -1 if not present. On hardware that qualifies under
// HardwareAccelerated it defers to the runtime's assembly-vectorized
// bytes.IndexByte; otherwise it walks data with a scalar loop that
// produces the identical result.
func IndexByte(data []byte, c byte) int {
	if HardwareAccelerated() {
		return bytes.IndexByte(data, c)
	}
	for i, b := range data {
		if b == c {
			return i
		}
	}
	return -1
}

// Equal reports whether a and b hold the same bytes. On qualifying
// hardware it defers to bytes.Equal's vectorized comparison;
// otherwise it compares byte-by-byte with an early-exit scalar loop.
func Equal(a, b []byte) bool {
	if HardwareAccelerated() {
		return bytes.Equal(a, b)
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
