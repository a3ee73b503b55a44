// Package pngdata reads, edits and writes png files at the chunk level.
package pngdata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// Signature is the fixed header of every png file.
// 89 50 4E 47 0D 0A 1A 0A
const Signature = "\x89PNG\r\n\x1a\n"

// type of the chunk that has to stay last in the file
const endChunkName = "IEND"

// PngData is a png file as an ordered list of chunks.
// It is not safe for concurrent use.
type PngData struct {
	chunks []ChunkData
}

// creates a png holding the given chunks in order
func NewPng(chunks ...ChunkData) *PngData {
	return &PngData{chunks: append([]ChunkData(nil), chunks...)}
}

// ParsePng validates the signature and reads chunks until raw is exhausted.
// The first broken chunk aborts the parse.
func ParsePng(raw []byte) (*PngData, error) {
	if len(raw) < len(Signature) || string(raw[:len(Signature)]) != Signature {
		return nil, ErrBadSignature
	}
	png := &PngData{}
	offset := len(Signature)
	for offset < len(raw) {
		rest := raw[offset:]
		if len(rest) < chunkOverhead {
			return nil, fmt.Errorf("chunk %d at offset %d: %w: %d bytes left", len(png.chunks), offset, ErrTruncated, len(rest))
		}
		length := binary.BigEndian.Uint32(rest[0:4])
		if length > MaxDataLength {
			return nil, fmt.Errorf("chunk %d at offset %d: %w: declared %d bytes", len(png.chunks), offset, ErrDataTooLarge, length)
		}
		if uint64(len(rest)) < uint64(length)+chunkOverhead {
			return nil, fmt.Errorf("chunk %d at offset %d: %w: need %d bytes, %d left", len(png.chunks), offset, ErrTruncated, uint64(length)+chunkOverhead, len(rest))
		}
		size := chunkOverhead + int(length)
		chunk, err := ParseChunk(rest[:size])
		if err != nil {
			return nil, fmt.Errorf("chunk %d at offset %d: %w", len(png.chunks), offset, err)
		}
		png.chunks = append(png.chunks, chunk)
		offset += size
	}
	return png, nil
}

// LoadPng reads and parses the png file at path.
func LoadPng(path string) (*PngData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	png := &PngData{}
	if err := png.Read(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return png, nil
}

// Read replaces the chunks of the png with the ones read from r.
func (png *PngData) Read(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	parsed, err := ParsePng(raw)
	if err != nil {
		return err
	}
	png.chunks = parsed.chunks
	return nil
}

// AppendChunk adds a chunk at the end of the png, but in front of the IEND chunk if there is one.
func (png *PngData) AppendChunk(chunk ChunkData) {
	for i, c := range png.chunks {
		if c.chunkType.matches(endChunkName) {
			png.chunks = append(png.chunks, ChunkData{})
			copy(png.chunks[i+1:], png.chunks[i:])
			png.chunks[i] = chunk
			return
		}
	}
	png.chunks = append(png.chunks, chunk)
}

// ChunkByType returns the first chunk with the given type or nil.
// The pointer is only valid until the png is modified.
func (png *PngData) ChunkByType(name string) *ChunkData {
	for i := range png.chunks {
		if png.chunks[i].chunkType.matches(name) {
			return &png.chunks[i]
		}
	}
	return nil
}

// ChunksByType returns all chunks with the given type in file order.
func (png *PngData) ChunksByType(name string) []ChunkData {
	var chunks []ChunkData
	for _, c := range png.chunks {
		if c.chunkType.matches(name) {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// DeleteChunk removes the first chunk with the given type and returns it.
func (png *PngData) DeleteChunk(name string) (ChunkData, error) {
	for i, c := range png.chunks {
		if c.chunkType.matches(name) {
			png.chunks = append(png.chunks[:i], png.chunks[i+1:]...)
			return c, nil
		}
	}
	return ChunkData{}, fmt.Errorf("%w: %q", ErrChunkNotFound, name)
}

// DeleteChunks removes every chunk with the given type.
func (png *PngData) DeleteChunks(name string) ([]ChunkData, error) {
	var deleted []ChunkData
	kept := png.chunks[:0]
	for _, c := range png.chunks {
		if c.chunkType.matches(name) {
			deleted = append(deleted, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(deleted) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrChunkNotFound, name)
	}
	// drop references held in the tail
	for i := len(kept); i < len(png.chunks); i++ {
		png.chunks[i] = ChunkData{}
	}
	png.chunks = kept
	return deleted, nil
}

// Chunks returns a copy of the chunk list.
func (png *PngData) Chunks() []ChunkData {
	return append([]ChunkData(nil), png.chunks...)
}

// Bytes returns the signature followed by every chunk.
func (png *PngData) Bytes() []byte {
	var buf bytes.Buffer
	// writes to a bytes.Buffer never fail
	_ = png.Write(&buf)
	return buf.Bytes()
}

// Write writes the png file to w.
func (png *PngData) Write(w io.Writer) error {
	if _, err := io.WriteString(w, Signature); err != nil {
		return err
	}
	for _, c := range png.chunks {
		if _, err := w.Write(c.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the png file to path.
func (png *PngData) Save(path string) error {
	return os.WriteFile(path, png.Bytes(), 0o644)
}

func (png *PngData) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Png {\n  Chunks: %d\n", len(png.chunks))
	for i, c := range png.chunks {
		fmt.Fprintf(&sb, "  #%d %s %d bytes\n", i, c.chunkType, c.length)
	}
	sb.WriteString("}")
	return sb.String()
}
