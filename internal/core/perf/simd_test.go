package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexByteFindsFirstOccurrence(t *testing.T) {
	assert.Equal(t, 2, IndexByte([]byte("abcabc"), 'c'))
	assert.Equal(t, -1, IndexByte([]byte("abc"), 'z'))
	assert.Equal(t, 0, IndexByte([]byte("zzz"), 'z'))
}

func TestIndexByteEmptyInput(t *testing.T) {
	assert.Equal(t, -1, IndexByte(nil, 'a'))
}

func TestEqualComparesContents(t *testing.T) {
	assert.True(t, Equal([]byte("same"), []byte("same")))
	assert.False(t, Equal([]byte("same"), []byte("diff")))
	assert.False(t, Equal([]byte("short"), []byte("longer")))
	assert.True(t, Equal(nil, nil))
}

// scalarIndexByte re-implements the hardware-accelerated
// path's scalar fallback directly, so the accelerated and
// non-accelerated branches can be checked against each other for
// equivalence regardless of which one the host CPU actually takes.
func scalarIndexByte(data []byte, c byte) int {
	for i, b := range data {
		if b == c {
			return i
		}
	}
	return -1
}

func TestIndexByteAcceleratedAndScalarAgree(t *testing.T) {
	inputs := [][]byte{
		[]byte(""),
		[]byte("x"),
		[]byte("the quick brown fox"),
		make([]byte, 4096),
	}
	for _, in := range inputs {
		assert.Equal(t, scalarIndexByte(in, 'q'), IndexByte(in, 'q'))
	}
}
