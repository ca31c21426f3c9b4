package zstd

import (
	"bytes"
	"io"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// DefaultMaxBlockSize is used when callers don't specify one; kept well
// under the RFC 8878 ceiling so a single block maps cleanly to one I/O
// buffer pool slab.
const DefaultMaxBlockSize = 128 * 1024

// Encode produces a deterministic, byte-exact RFC 8878 store-mode frame
// for payload, splitting it into blocks no larger than maxBlockSize
// (which must be in (0, MaxBlockSize]). Two calls with the same payload
// and maxBlockSize always produce identical output.
func Encode(payload []byte, maxBlockSize int) ([]byte, error) {
	if maxBlockSize <= 0 || maxBlockSize > MaxBlockSize {
		return nil, shellerr.New(shellerr.KindInvalidSyntax,
			"max block size %d out of range (0, %d]", maxBlockSize, MaxBlockSize)
	}

	n := uint64(len(payload))
	out := encodeFrameHeader(n)

	if len(payload) == 0 {
		hdr, err := encodeBlockHeader(0, blockTypeRaw, true)
		if err != nil {
			return nil, shellerr.Wrap(shellerr.KindInvalidSyntax, err, "failed to encode empty block header")
		}
		return append(out, hdr[:]...), nil
	}

	for offset := 0; offset < len(payload); {
		remaining := len(payload) - offset
		size := maxBlockSize
		if size > remaining {
			size = remaining
		}
		last := offset+size >= len(payload)

		hdr, err := encodeBlockHeader(size, blockTypeRaw, last)
		if err != nil {
			return nil, shellerr.Wrap(shellerr.KindInvalidSyntax, err, "failed to encode block header")
		}

		out = append(out, hdr[:]...)
		out = append(out, payload[offset:offset+size]...)
		offset += size
	}

	return out, nil
}

// Encoder is a streaming io.WriteCloser that buffers written bytes and
// emits a single deterministic store-mode frame on Close, since the
// frame header must carry the total content size up front.
type Encoder struct {
	w            io.Writer
	maxBlockSize int
	buf          bytes.Buffer
	closed       bool
}

// NewEncoder returns an Encoder that writes a store-mode frame to w once
// closed, using maxBlockSize-sized RAW blocks (DefaultMaxBlockSize if 0).
func NewEncoder(w io.Writer, maxBlockSize int) *Encoder {
	if maxBlockSize <= 0 {
		maxBlockSize = DefaultMaxBlockSize
	}
	return &Encoder{w: w, maxBlockSize: maxBlockSize}
}

// Write buffers payload bytes for the eventual frame.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.closed {
		return 0, shellerr.New(shellerr.KindIOOther, "write to closed zstd encoder")
	}
	return e.buf.Write(p)
}

// Close finalizes and writes the frame. It is safe to call once.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	frame, err := Encode(e.buf.Bytes(), e.maxBlockSize)
	if err != nil {
		return err
	}
	_, err = e.w.Write(frame)
	return err
}
