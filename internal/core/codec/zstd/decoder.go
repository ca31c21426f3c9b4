package zstd

import (
	"bytes"
	"io"
	"sync"

	kzstd "github.com/klauspost/compress/zstd"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// Decode consumes a complete RFC 8878 frame from r and returns its
// decoded payload. Store-mode frames (RAW/RLE blocks only, as produced
// by Encode) are decoded directly with no third-party dependency; frames
// containing an FSE/Huffman-compressed block are decoded via
// klauspost/compress/zstd.
func Decode(r io.Reader) ([]byte, error) {
	frame, err := io.ReadAll(r)
	if err != nil {
		return nil, shellerr.Wrap(shellerr.KindIOOther, err, "failed to read zstd frame")
	}
	return DecodeBytes(frame)
}

// DecodeBytes decodes an in-memory RFC 8878 frame.
func DecodeBytes(frame []byte) ([]byte, error) {
	if len(frame) < 4 || frame[0] != MagicBytes[0] || frame[1] != MagicBytes[1] ||
		frame[2] != MagicBytes[2] || frame[3] != MagicBytes[3] {
		return nil, shellerr.New(shellerr.KindInvalidSyntax, "not a zstd frame: bad magic")
	}

	_, consumed, err := decodeFrameHeader(frame[4:])
	if err != nil {
		return nil, err
	}
	offset := 4 + consumed

	out, fellThrough, err := decodeStoreBlocks(frame[offset:])
	if err == nil && !fellThrough {
		return out, nil
	}

	return decodeWithFallback(frame)
}

// decodeStoreBlocks decodes a sequence of RAW/RLE blocks starting at buf.
// fellThrough is true when a Compressed block is encountered, signaling
// the caller should retry with the general-purpose decoder instead.
func decodeStoreBlocks(buf []byte) (out []byte, fellThrough bool, err error) {
	var result bytes.Buffer

	for {
		size, bt, last, err := decodeBlockHeader(buf)
		if err != nil {
			return nil, false, err
		}
		buf = buf[blockHeaderSize:]

		switch bt {
		case blockTypeRaw:
			if len(buf) < size {
				return nil, false, shellerr.New(shellerr.KindInvalidSyntax, "truncated raw block payload")
			}
			result.Write(buf[:size])
			buf = buf[size:]

		case blockTypeRLE:
			if len(buf) < 1 {
				return nil, false, shellerr.New(shellerr.KindInvalidSyntax, "truncated rle block payload")
			}
			b := buf[0]
			for i := 0; i < size; i++ {
				result.WriteByte(b)
			}
			buf = buf[1:]

		default:
			return nil, true, nil
		}

		if last {
			break
		}
		if len(buf) == 0 {
			return nil, false, shellerr.New(shellerr.KindInvalidSyntax, "frame ended before last block")
		}
	}

	return result.Bytes(), false, nil
}

// decodeWithFallback decodes any conformant zstd frame, including
// FSE/Huffman-compressed blocks, using the general-purpose decoder.
func decodeWithFallback(frame []byte) ([]byte, error) {
	dec, err := kzstd.NewReader(bytes.NewReader(frame))
	if err != nil {
		return nil, shellerr.Wrap(shellerr.KindInvalidSyntax, err, "failed to open fallback zstd decoder")
	}
	defer dec.Close()

	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, shellerr.Wrap(shellerr.KindInvalidSyntax, err, "fallback zstd decode failed")
	}
	return out, nil
}

// StreamReader lazily decodes an underlying frame reader on first Read,
// then serves decoded bytes incrementally.
//
// TODO: a compressed-block frame currently forces a full in-memory decode
// before any bytes are returned; a true block-at-a-time streaming path
// for the fallback decoder would let large foreign frames stream without
// a full buffer.
type StreamReader struct {
	src  io.Reader
	once sync.Once
	buf  *bytes.Reader
	err  error
}

// NewStreamReader wraps r so decoded bytes can be consumed via Read.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{src: r}
}

func (s *StreamReader) Read(p []byte) (int, error) {
	s.once.Do(func() {
		decoded, err := Decode(s.src)
		if err != nil {
			s.err = err
			return
		}
		s.buf = bytes.NewReader(decoded)
	})
	if s.err != nil {
		return 0, s.err
	}
	return s.buf.Read(p)
}
