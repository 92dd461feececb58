// Package field holds the dense per-pixel fields produced from a fingerprint
// image. Values are estimated once per w×w block and tiled across the block's
// pixel footprint on access.
//
// Fields are read-only once constructed and may be shared between goroutines
// without synchronisation.
package field

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBlockAlignment is returned when the image dimensions are not a
	// multiple of the block size under the Reject policy.
	ErrBlockAlignment = errors.New("image dimensions are not a multiple of the block size")

	// ErrInvalidBlockSize is returned for non-positive block sizes or
	// images smaller than one block.
	ErrInvalidBlockSize = errors.New("invalid block size")
)

// Boundary selects how trailing pixels that do not fill a whole block are
// treated.
type Boundary int

const (
	// Reject refuses images whose dimensions are not block multiples.
	Reject Boundary = iota

	// Pad extends the image by edge replication up to the next block
	// multiple, so every pixel belongs to a block.
	Pad

	// Partial ignores trailing pixels. Cells outside full-block coverage
	// carry the Undefined (orientation) or Invalid (frequency) sentinel.
	Partial
)

var boundaryNames = map[Boundary]string{
	Reject:  "reject",
	Pad:     "pad",
	Partial: "partial",
}

func (b Boundary) String() string {
	if name, ok := boundaryNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Boundary(%d)", int(b))
}

// ParseBoundary converts a configuration string to a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	for b, name := range boundaryNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}
	return Reject, fmt.Errorf("unknown boundary policy %q (must be reject, pad or partial)", s)
}

// Layout describes how an image is divided into blocks.
type Layout struct {
	// Height and Width are the image dimensions in pixels
	Height, Width int

	// BlockSize is the side length w of a square block
	BlockSize int

	// BlockRows and BlockCols are the number of blocks along each axis
	BlockRows, BlockCols int

	Boundary Boundary
}

// NewLayout computes the block grid for a height×width image.
func NewLayout(height, width, blockSize int, boundary Boundary) (Layout, error) {
	if blockSize <= 0 {
		return Layout{}, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	if height <= 0 || width <= 0 {
		return Layout{}, fmt.Errorf("%w: empty %dx%d image", ErrInvalidBlockSize, height, width)
	}

	l := Layout{
		Height:    height,
		Width:     width,
		BlockSize: blockSize,
		Boundary:  boundary,
	}

	switch boundary {
	case Reject:
		if height%blockSize != 0 || width%blockSize != 0 {
			return Layout{}, fmt.Errorf("%w: %dx%d image, block size %d",
				ErrBlockAlignment, height, width, blockSize)
		}
		l.BlockRows, l.BlockCols = height/blockSize, width/blockSize
	case Pad:
		l.BlockRows = (height + blockSize - 1) / blockSize
		l.BlockCols = (width + blockSize - 1) / blockSize
	case Partial:
		l.BlockRows, l.BlockCols = height/blockSize, width/blockSize
		if l.BlockRows == 0 || l.BlockCols == 0 {
			return Layout{}, fmt.Errorf("%w: %dx%d image smaller than block size %d",
				ErrInvalidBlockSize, height, width, blockSize)
		}
	default:
		return Layout{}, fmt.Errorf("unknown boundary policy %d", int(boundary))
	}

	return l, nil
}

// Blocks returns the total number of blocks.
func (l Layout) Blocks() int {
	return l.BlockRows * l.BlockCols
}

// CoveredHeight and CoveredWidth are the pixel extents spanned by the block
// grid. Under Pad they may exceed the image, under Partial they may fall
// short of it.
func (l Layout) CoveredHeight() int { return l.BlockRows * l.BlockSize }
func (l Layout) CoveredWidth() int  { return l.BlockCols * l.BlockSize }

// BlockOf returns the block containing pixel (row, col), or ok=false when
// the pixel is outside the image or outside full-block coverage.
func (l Layout) BlockOf(row, col int) (i, j int, ok bool) {
	if row < 0 || col < 0 || row >= l.Height || col >= l.Width {
		return 0, 0, false
	}
	i, j = row/l.BlockSize, col/l.BlockSize
	if i >= l.BlockRows || j >= l.BlockCols {
		return 0, 0, false
	}
	return i, j, true
}

// SameShape reports whether two layouts describe the same pixel and block
// grid.
func (l Layout) SameShape(o Layout) bool {
	return l.Height == o.Height && l.Width == o.Width &&
		l.BlockSize == o.BlockSize &&
		l.BlockRows == o.BlockRows && l.BlockCols == o.BlockCols
}
