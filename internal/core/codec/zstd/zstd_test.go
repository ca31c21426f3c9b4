package zstd

import (
	"bytes"
	"encoding/hex"
	"testing"

	kzstd "github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeStoreMode(t *testing.T) {
	t.Run("S1HelloRoundTrips", func(t *testing.T) {
		payload := []byte("Hello")
		frame, err := Encode(payload, DefaultMaxBlockSize)
		require.NoError(t, err)

		assert.True(t, bytes.HasPrefix(frame, MagicBytes[:]))

		decoded, err := DecodeBytes(frame)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	})

	t.Run("S2EmptyPayload", func(t *testing.T) {
		frame, err := Encode(nil, DefaultMaxBlockSize)
		require.NoError(t, err)

		assert.True(t, bytes.HasPrefix(frame, MagicBytes[:]))
		// magic(4) + FHD(1) + FCS(2, both zero) + block header(3, size=0 last=1)
		assert.Equal(t, 10, len(frame))
		assert.Equal(t, byte(0x00), frame[5])
		assert.Equal(t, byte(0x00), frame[6])

		size, bt, last, err := decodeBlockHeader(frame[7:])
		require.NoError(t, err)
		assert.Equal(t, 0, size)
		assert.Equal(t, blockTypeRaw, bt)
		assert.True(t, last)

		decoded, err := DecodeBytes(frame)
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})

	t.Run("FrameHeaderDescriptorByteMatchesSpec", func(t *testing.T) {
		frame, err := Encode([]byte("Hello"), DefaultMaxBlockSize)
		require.NoError(t, err)
		assert.Equal(t, byte(0x60), frame[4], "FHD: single-segment bit + 2-byte FCS code")
		assert.Equal(t, []byte{0x04, 0x00}, frame[5:7], "FCS stores N-1=4 little-endian")
	})
}

func TestUniversalInvariants(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("a"),
		[]byte("Hello, NexusShell!"),
		bytes.Repeat([]byte{0xAB}, 10000),
		randomishBytes(50000),
	}
	blockSizes := []int{1, 3, 7, 128, 4096, DefaultMaxBlockSize}

	for _, p := range payloads {
		for _, b := range blockSizes {
			p, b := p, b
			t.Run("RoundTrip", func(t *testing.T) {
				frame, err := Encode(p, b)
				require.NoError(t, err)

				assert.True(t, bytes.HasPrefix(frame, MagicBytes[:]))

				decoded, err := DecodeBytes(frame)
				require.NoError(t, err)
				if len(p) == 0 {
					assert.Empty(t, decoded)
				} else {
					assert.Equal(t, p, decoded)
				}

				assertExactlyOneLastBlock(t, frame)
				assertBlockSizesSumToPayload(t, frame, len(p))
			})
		}
	}
}

func TestEncodeRejectsInvalidBlockSize(t *testing.T) {
	t.Run("Zero", func(t *testing.T) {
		_, err := Encode([]byte("x"), 0)
		assert.Error(t, err)
	})

	t.Run("TooLarge", func(t *testing.T) {
		_, err := Encode([]byte("x"), MaxBlockSize+1)
		assert.Error(t, err)
	})
}

func TestEncoderIsDeterministic(t *testing.T) {
	t.Run("SameInputSameOutput", func(t *testing.T) {
		payload := bytes.Repeat([]byte("nexusshell"), 5000)
		a, err := Encode(payload, 8192)
		require.NoError(t, err)
		b, err := Encode(payload, 8192)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a, b))
	})
}

func TestStreamingEncoder(t *testing.T) {
	t.Run("WriteThenCloseProducesValidFrame", func(t *testing.T) {
		var buf bytes.Buffer
		enc := NewEncoder(&buf, 16)
		_, err := enc.Write([]byte("streamed "))
		require.NoError(t, err)
		_, err = enc.Write([]byte("payload"))
		require.NoError(t, err)
		require.NoError(t, enc.Close())

		decoded, err := DecodeBytes(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "streamed payload", string(decoded))
	})

	t.Run("WriteAfterCloseFails", func(t *testing.T) {
		var buf bytes.Buffer
		enc := NewEncoder(&buf, 16)
		require.NoError(t, enc.Close())
		_, err := enc.Write([]byte("x"))
		assert.Error(t, err)
	})
}

func TestDecoderAcceptsCompressedFrames(t *testing.T) {
	t.Run("FallsBackForRealCompressionFrame", func(t *testing.T) {
		payload := bytes.Repeat([]byte("compressible compressible compressible "), 200)

		var buf bytes.Buffer
		w, err := kzstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		decoded, err := DecodeBytes(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	})
}

func TestStreamReader(t *testing.T) {
	t.Run("DecodesIncrementally", func(t *testing.T) {
		payload := []byte("stream me please")
		frame, err := Encode(payload, DefaultMaxBlockSize)
		require.NoError(t, err)

		sr := NewStreamReader(bytes.NewReader(frame))
		out := make([]byte, len(payload))
		n, err := sr.Read(out)
		require.NoError(t, err)
		assert.Equal(t, payload, out[:n])
	})
}

func TestHexFixtureDocumentedInSpec(t *testing.T) {
	t.Run("MagicAndFHDMatchDocumentedBytes", func(t *testing.T) {
		frame, err := Encode([]byte("Hello"), DefaultMaxBlockSize)
		require.NoError(t, err)
		prefix := hex.EncodeToString(frame[:7])
		assert.Equal(t, "28b52ffd600400", prefix)
	})
}

func assertExactlyOneLastBlock(t *testing.T, frame []byte) {
	t.Helper()
	_, consumed, err := decodeFrameHeader(frame[4:])
	require.NoError(t, err)
	buf := frame[4+consumed:]

	lastCount := 0
	for len(buf) > 0 {
		size, bt, last, err := decodeBlockHeader(buf)
		require.NoError(t, err)
		if last {
			lastCount++
		}
		buf = buf[blockHeaderSize:]
		if bt == blockTypeRaw {
			buf = buf[size:]
		}
		if last {
			break
		}
	}
	assert.Equal(t, 1, lastCount)
}

func assertBlockSizesSumToPayload(t *testing.T, frame []byte, payloadLen int) {
	t.Helper()
	_, consumed, err := decodeFrameHeader(frame[4:])
	require.NoError(t, err)
	buf := frame[4+consumed:]

	total := 0
	for len(buf) > 0 {
		size, bt, last, err := decodeBlockHeader(buf)
		require.NoError(t, err)
		buf = buf[blockHeaderSize:]
		if bt == blockTypeRaw {
			total += size
			buf = buf[size:]
		}
		if last {
			break
		}
	}
	assert.Equal(t, payloadLen, total)
}

func randomishBytes(n int) []byte {
	out := make([]byte, n)
	state := uint32(0x2545F491)
	for i := range out {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		out[i] = byte(state)
	}
	return out
}
