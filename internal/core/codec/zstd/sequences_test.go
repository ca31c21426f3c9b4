package zstd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSequencesSectionRLE(t *testing.T) {
	t.Run("HeaderEncodesAllRLEModes", func(t *testing.T) {
		out := EncodeSequencesSectionRLE(10, 1, 2, 3)
		require.NotEmpty(t, out)
		// Number_of_Sequences=10 fits in one varint byte, followed by the
		// mode byte, then the three RLE symbols.
		assert.Equal(t, byte(10), out[0])
		modeByte := out[1]
		assert.Equal(t, byte(SeqModeRLE), modeByte>>6&0x3)
		assert.Equal(t, byte(SeqModeRLE), modeByte>>4&0x3)
		assert.Equal(t, byte(SeqModeRLE), modeByte>>2&0x3)
		assert.Equal(t, []byte{1, 2, 3}, out[2:5])
	})
}

func TestEncodeSequencesSectionPredefined(t *testing.T) {
	t.Run("HeaderEncodesAllPredefinedModes", func(t *testing.T) {
		out := EncodeSequencesSectionPredefined(5)
		require.Len(t, out, 2)
		modeByte := out[1]
		assert.Equal(t, byte(SeqModePredefined), modeByte>>6&0x3)
	})
}

func TestEncodeVarint(t *testing.T) {
	t.Run("SmallValueIsOneByte", func(t *testing.T) {
		assert.Equal(t, []byte{42}, encodeVarint(42))
	})

	t.Run("MidRangeValueIsTwoBytes", func(t *testing.T) {
		out := encodeVarint(200)
		assert.Len(t, out, 2)
	})

	t.Run("LargeValueIsThreeBytes", func(t *testing.T) {
		out := encodeVarint(40000)
		assert.Len(t, out, 3)
		assert.Equal(t, byte(0xFF), out[0])
	})
}

func TestEncodeSequencesSectionFSE(t *testing.T) {
	seqs := []Sequence{
		{LiteralLengthCode: 0, OffsetCode: 1, MatchLengthCode: 0},
		{LiteralLengthCode: 1, OffsetCode: 1, MatchLengthCode: 2},
		{LiteralLengthCode: 0, OffsetCode: 2, MatchLengthCode: 0},
	}

	t.Run("ProducesNonEmptyOutput", func(t *testing.T) {
		out, err := EncodeSequencesSectionFSE(seqs, 6)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("RejectsEmptySequenceList", func(t *testing.T) {
		_, err := EncodeSequencesSectionFSE(nil, 6)
		assert.Error(t, err)
	})

	t.Run("RejectsOutOfRangeAccuracyLog", func(t *testing.T) {
		_, err := EncodeSequencesSectionFSE(seqs, 20)
		assert.Error(t, err)
	})
}

func TestBitWriter(t *testing.T) {
	t.Run("PacksLSBFirstAndTerminates", func(t *testing.T) {
		bw := newBitWriter()
		bw.writeBits(0b101, 3)
		out := bw.finish()
		require.Len(t, out, 1)
		// bits written: 1,0,1 (LSB first) then terminator bit 1 at
		// position 3 => byte = 0b1101 = 0x0D
		assert.Equal(t, byte(0x0D), out[0])
	})
}
