package pngdata

import (
	"errors"
	"fmt"
)

// Structural errors. Any of these aborts the parse in progress.
var (
	ErrMalformed        = errors.New("malformed png data")
	ErrBadSignature     = fmt.Errorf("%w: bad signature", ErrMalformed)
	ErrTruncated        = fmt.Errorf("%w: truncated chunk", ErrMalformed)
	ErrLengthMismatch   = fmt.Errorf("%w: chunk length does not match data", ErrMalformed)
	ErrChecksumMismatch = fmt.Errorf("%w: chunk crc does not match data", ErrMalformed)
	ErrDataTooLarge     = fmt.Errorf("%w: chunk data too large", ErrMalformed)
)

// Validation errors for chunk types given as text.
var (
	ErrInvalidChunkType = errors.New("invalid chunk type")
	ErrInvalidLength    = fmt.Errorf("%w: must be 4 bytes long", ErrInvalidChunkType)
	ErrNonAlphaByte     = fmt.Errorf("%w: must consist of ascii letters", ErrInvalidChunkType)
)

var (
	ErrChunkNotFound = errors.New("chunk not found")
	ErrInvalidUTF8   = errors.New("chunk data is not valid utf-8")
)

// IsMalformed reports whether err describes structurally invalid png data.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsNotFound reports whether err is a failed chunk lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChunkNotFound)
}

// IsInvalidChunkType reports whether err comes from rejecting a chunk type string.
func IsInvalidChunkType(err error) bool {
	return errors.Is(err, ErrInvalidChunkType)
}
