package frequency

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"ridgefeatures/pkg/imgproc"
)

// ErrEmptyBlock is returned when a window is requested from a block with no
// pixels.
var ErrEmptyBlock = errors.New("block has zero area")

// cropTolerance lets a dimension that rounding leaves just short of an
// integer, as at exact quarter turns, keep that integer.
const cropTolerance = 1e-9

// CropSize returns the dimensions of the largest axis-aligned rectangle that
// fits inside an h×w rectangle rotated by angle. Both rectangles are measured
// in pixel areas, edge to edge. Dimensions are truncated towards zero and may
// be ≤ 0 for degenerate inputs.
func CropSize(h, w int, angle float64) (hr, wr int) {
	if h <= 0 || w <= 0 {
		return 0, 0
	}

	widthLonger := w >= h
	long, short := float64(h), float64(w)
	if widthLonger {
		long, short = float64(w), float64(h)
	}

	sinA, cosA := math.Abs(math.Sin(angle)), math.Abs(math.Cos(angle))
	cos2 := cosA*cosA - sinA*sinA

	var fh, fw float64
	if short <= 2*sinA*cosA*long || math.Abs(cos2) < 1e-12 {
		// Half constrained: two opposite corners touch the longer side
		x := 0.5 * short
		if widthLonger {
			fw, fh = x/sinA, x/cosA
		} else {
			fw, fh = x/cosA, x/sinA
		}
	} else {
		// Fully constrained: all four corners touch the rotated sides
		fw = (float64(w)*cosA - float64(h)*sinA) / cos2
		fh = (float64(h)*cosA - float64(w)*sinA) / cos2
	}

	return truncate(fh), truncate(fw)
}

// truncate converts to int towards zero, mapping non-finite values to 0.
func truncate(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v + cropTolerance)
}

// RotatedWindow rotates block by angle about its centre and returns the
// centred crop of size CropSize. Every pixel of the crop lies within the
// rotated area of the block, so none of it reads the zero fill around the
// rotated content. A nil matrix with a nil error means the crop is empty.
func RotatedWindow(block mat.Matrix, angle float64) (*mat.Dense, error) {
	h, w := block.Dims()
	if h == 0 || w == 0 {
		return nil, ErrEmptyBlock
	}

	hr, wr := CropSize(h, w, angle)
	if hr <= 0 || wr <= 0 {
		return nil, nil
	}
	hr, wr = min(hr, h), min(wr, w)

	rotated := imgproc.Rotate(block, angle)
	y, x := (h-hr)/2, (w-wr)/2
	return mat.DenseCopyOf(rotated.Slice(y, y+hr, x, x+wr)), nil
}
