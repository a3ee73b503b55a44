package pngdata

import (
	"fmt"
	"strings"
)

// bit 5 of each type byte carries one of the chunk property flags
const propertyBit = 1 << 5

// ChunkType is the 4 byte type code of a chunk.
// The case of each letter encodes a property of the chunk:
//
//	byte 0: uppercase = critical, lowercase = ancillary
//	byte 1: uppercase = public, lowercase = private
//	byte 2: must be uppercase (reserved)
//	byte 3: uppercase = unsafe to copy, lowercase = safe to copy
type ChunkType [4]byte

// ChunkTypeFromBytes stores the raw bytes as they are.
// No validation happens, call IsValid if that is needed.
func ChunkTypeFromBytes(b [4]byte) ChunkType {
	return ChunkType(b)
}

// ParseChunkType creates a chunk type from a string of exactly four ascii letters.
func ParseChunkType(s string) (ChunkType, error) {
	var ct ChunkType
	if len(s) != len(ct) {
		return ct, fmt.Errorf("%w: got %d bytes in %q", ErrInvalidLength, len(s), s)
	}
	for i := 0; i < len(ct); i++ {
		if !isAlpha(s[i]) {
			return ct, fmt.Errorf("%w: byte %d of %q is 0x%02x", ErrNonAlphaByte, i, s, s[i])
		}
		ct[i] = s[i]
	}
	return ct, nil
}

func (ct ChunkType) Bytes() [4]byte {
	return ct
}

// String returns the type code as text. Bytes that are not printable ascii
// are replaced with U+FFFD.
func (ct ChunkType) String() string {
	var sb strings.Builder
	for _, b := range ct {
		if b >= 0x20 && b < 0x7f {
			sb.WriteByte(b)
		} else {
			sb.WriteRune('�')
		}
	}
	return sb.String()
}

func (ct ChunkType) IsCritical() bool {
	return ct[0]&propertyBit == 0
}

func (ct ChunkType) IsPublic() bool {
	return ct[1]&propertyBit == 0
}

func (ct ChunkType) IsReservedBitValid() bool {
	return ct[2]&propertyBit == 0
}

// IsSafeToCopy is true when the bit is set, unlike the other three flags.
func (ct ChunkType) IsSafeToCopy() bool {
	return ct[3]&propertyBit != 0
}

// IsValid checks the reserved bit and that every byte is an ascii letter.
func (ct ChunkType) IsValid() bool {
	if !ct.IsReservedBitValid() {
		return false
	}
	for _, b := range ct {
		if !isAlpha(b) {
			return false
		}
	}
	return true
}

// matches compares against a type given as text without allocating
func (ct ChunkType) matches(name string) bool {
	return len(name) == len(ct) && string(ct[:]) == name
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
