package zstd

import (
	"encoding/binary"
	"fmt"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// encodeFrameHeader writes the magic, frame header descriptor byte, and
// frame content size field for a Single-Segment frame of content length n.
func encodeFrameHeader(n uint64) []byte {
	code := chooseFCSCode(n)
	width := fcsWidth(code)

	fhd := byte(code)<<fhdFCSFieldShift | fhdSingleSegmentBit

	out := make([]byte, 0, 4+1+width)
	out = append(out, MagicBytes[:]...)
	out = append(out, fhd)

	// FCS stores n-1 for single-segment frames with FCS width > 1 byte,
	// per RFC 8878 §3.1.1.1.3 (the 1-byte code is reserved for the
	// window-descriptor variant this encoder never emits).
	stored := n
	if n > 0 {
		stored = n - 1
	}

	fcs := make([]byte, 8)
	binary.LittleEndian.PutUint64(fcs, stored)
	out = append(out, fcs[:width]...)

	return out
}

// frameHeader is the parsed form of a decoded frame's header.
type frameHeader struct {
	singleSegment bool
	fcsCode       fcsCode
	contentSize   uint64
	hasContentSize bool
}

// decodeFrameHeader parses the frame header descriptor and FCS field
// starting immediately after the 4-byte magic. It returns the header and
// the number of bytes consumed from buf.
func decodeFrameHeader(buf []byte) (frameHeader, int, error) {
	if len(buf) < 1 {
		return frameHeader{}, 0, shellerr.New(shellerr.KindInvalidSyntax, "truncated frame header descriptor")
	}

	fhd := buf[0]
	singleSegment := fhd&fhdSingleSegmentBit != 0
	code := fcsCode(fhd >> fhdFCSFieldShift)

	width := fcsWidth(code)
	if code == fcsCode0 && !singleSegment {
		width = 0
	}

	consumed := 1
	if !singleSegment {
		// Window_Descriptor byte (not produced by this encoder, but must
		// be accepted when decoding foreign frames).
		if len(buf) < consumed+1 {
			return frameHeader{}, 0, shellerr.New(shellerr.KindInvalidSyntax, "truncated window descriptor")
		}
		consumed++
	}

	h := frameHeader{singleSegment: singleSegment, fcsCode: code}

	if width == 0 {
		return h, consumed, nil
	}

	if len(buf) < consumed+width {
		return frameHeader{}, 0, shellerr.New(shellerr.KindInvalidSyntax, "truncated frame content size field")
	}

	raw := make([]byte, 8)
	copy(raw, buf[consumed:consumed+width])
	stored := binary.LittleEndian.Uint64(raw)

	size := stored
	if width > 1 {
		size = stored + 1
	}

	h.contentSize = size
	h.hasContentSize = true
	consumed += width

	return h, consumed, nil
}

// encodeBlockHeader packs a 3-byte RAW block header:
// (size << 3) | (block_type << 1) | last_block_bit.
func encodeBlockHeader(size int, bt blockType, last bool) ([blockHeaderSize]byte, error) {
	var out [blockHeaderSize]byte
	if size < 0 || size > MaxBlockSize {
		return out, fmt.Errorf("block size %d exceeds max block size %d", size, MaxBlockSize)
	}

	var lastBit uint32
	if last {
		lastBit = 1
	}

	word := uint32(size)<<3 | uint32(bt)<<1 | lastBit
	out[0] = byte(word)
	out[1] = byte(word >> 8)
	out[2] = byte(word >> 16)
	return out, nil
}

// decodeBlockHeader unpacks a 3-byte block header.
func decodeBlockHeader(buf []byte) (size int, bt blockType, last bool, err error) {
	if len(buf) < blockHeaderSize {
		return 0, 0, false, shellerr.New(shellerr.KindInvalidSyntax, "truncated block header")
	}
	word := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16
	last = word&1 != 0
	bt = blockType((word >> 1) & 0x3)
	size = int(word >> 3)
	return size, bt, last, nil
}
