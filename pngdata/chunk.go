package pngdata

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode/utf8"
)

const (
	// length, type and crc fields around the data
	chunkOverhead = 12
	// MaxDataLength is the largest data length a png chunk may declare.
	MaxDataLength = 1<<31 - 1
)

// ChunkData is a single png chunk.
// Each chunk starts with a uint32 length (big endian), then the 4 byte type,
// then the data and finally the CRC32 of type and data.
type ChunkData struct {
	length    uint32
	chunkType ChunkType
	data      []byte
	crc       uint32
}

// creates a chunk with the given type and a copy of data
func NewChunk(chunkType ChunkType, data []byte) ChunkData {
	owned := make([]byte, len(data))
	copy(owned, data)
	return ChunkData{
		length:    uint32(len(owned)),
		chunkType: chunkType,
		data:      owned,
		crc:       checksum(chunkType, owned),
	}
}

// ParseChunk reads exactly one chunk from raw. The buffer must hold the
// complete record and nothing else.
func ParseChunk(raw []byte) (ChunkData, error) {
	if len(raw) < chunkOverhead {
		return ChunkData{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncated, len(raw), chunkOverhead)
	}
	length := binary.BigEndian.Uint32(raw[0:4])
	if length > MaxDataLength {
		return ChunkData{}, fmt.Errorf("%w: declared %d bytes", ErrDataTooLarge, length)
	}
	if uint64(len(raw)-chunkOverhead) != uint64(length) {
		return ChunkData{}, fmt.Errorf("%w: declared %d bytes, got %d", ErrLengthMismatch, length, len(raw)-chunkOverhead)
	}
	var typeRaw [4]byte
	copy(typeRaw[:], raw[4:8])
	chunkType := ChunkTypeFromBytes(typeRaw)

	data := make([]byte, length)
	copy(data, raw[8:8+length])
	crc := binary.BigEndian.Uint32(raw[8+length:])

	if sum := checksum(chunkType, data); sum != crc {
		return ChunkData{}, fmt.Errorf("%w: type %s, stored %d, computed %d", ErrChecksumMismatch, chunkType, crc, sum)
	}
	return ChunkData{
		length:    length,
		chunkType: chunkType,
		data:      data,
		crc:       crc,
	}, nil
}

func (c ChunkData) Length() uint32 {
	return c.length
}

func (c ChunkData) Type() ChunkType {
	return c.chunkType
}

func (c ChunkData) Data() []byte {
	return c.data
}

func (c ChunkData) CRC() uint32 {
	return c.crc
}

// Verify recomputes the checksum and compares it with the stored one.
func (c ChunkData) Verify() bool {
	return c.length == uint32(len(c.data)) && checksum(c.chunkType, c.data) == c.crc
}

// DataAsString returns the data as text if it is valid utf-8.
func (c ChunkData) DataAsString() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: chunk %s", ErrInvalidUTF8, c.chunkType)
	}
	return string(c.data), nil
}

// Bytes returns the chunk in its on-wire layout.
func (c ChunkData) Bytes() []byte {
	raw := make([]byte, 0, chunkOverhead+len(c.data))
	raw = binary.BigEndian.AppendUint32(raw, c.length)
	raw = append(raw, c.chunkType[:]...)
	raw = append(raw, c.data...)
	raw = binary.BigEndian.AppendUint32(raw, c.crc)
	return raw
}

func (c ChunkData) String() string {
	var sb strings.Builder
	sb.WriteString("Chunk {\n")
	fmt.Fprintf(&sb, "  Length: %d\n", c.length)
	fmt.Fprintf(&sb, "  Type: %s\n", c.chunkType)
	fmt.Fprintf(&sb, "  Data: %d bytes\n", len(c.data))
	fmt.Fprintf(&sb, "  Crc: %d\n", c.crc)
	sb.WriteString("}")
	return sb.String()
}

func checksum(chunkType ChunkType, data []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write(chunkType[:])
	crc.Write(data)
	return crc.Sum32()
}
