// Package zstd implements a deterministic, byte-exact RFC 8878 store-mode
// zstd frame encoder and a streaming decoder that accepts any conformant
// zstd frame (falling back to github.com/klauspost/compress/zstd for
// frames that use real compression rather than RAW blocks).
package zstd

// Magic is the little-endian zstd frame magic number, RFC 8878 §3.1.1.
const Magic uint32 = 0xFD2FB528

// MagicBytes is Magic encoded little-endian, as it appears on the wire.
var MagicBytes = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

// blockType occupies bits 2..1 of a block header.
type blockType uint8

const (
	blockTypeRaw blockType = iota
	blockTypeRLE
	blockTypeCompressed
	blockTypeReserved
)

// MaxBlockSize is the largest payload a single zstd block may carry,
// 2^21 - 1 bytes, per RFC 8878 §3.1.1.2.
const MaxBlockSize = (1 << 21) - 1

// blockHeaderSize is the fixed 3-byte block header width.
const blockHeaderSize = 3

// frameHeaderDescriptor bit layout, RFC 8878 §3.1.1.1.1.
const (
	fhdSingleSegmentBit = 1 << 5
	fhdFCSFieldShift     = 6
)

// fcsCode identifies the width of the Frame_Content_Size field.
type fcsCode uint8

const (
	fcsCode0 fcsCode = iota // 1 byte, only valid without Single_Segment
	fcsCode1                // 2 bytes
	fcsCode2                // 4 bytes
	fcsCode3                // 8 bytes
)

// fcsWidth returns the on-wire byte width for a given fcsCode.
func fcsWidth(code fcsCode) int {
	switch code {
	case fcsCode0:
		return 1
	case fcsCode1:
		return 2
	case fcsCode2:
		return 4
	case fcsCode3:
		return 8
	default:
		return 0
	}
}

// chooseFCSCode picks the minimal FCS width that can hold n, per §4.B of
// the frame format: 2 bytes if n ≤ 0xFFFF, 4 bytes if n ≤ 0xFFFFFFFF,
// 8 bytes otherwise. Single-Segment frames never use the 1-byte code.
func chooseFCSCode(n uint64) fcsCode {
	switch {
	case n <= 0xFFFF:
		return fcsCode1
	case n <= 0xFFFFFFFF:
		return fcsCode2
	default:
		return fcsCode3
	}
}
