// Package orientation estimates the ridge orientation field of a
// fingerprint image.
//
// The estimate follows Hong, Wan and Jain (1998): gradients are accumulated
// per block into a doubled-angle least-squares direction, rotated by π/2 to
// give the ridge direction, and smoothed over neighbouring blocks in the
// doubled-angle domain so that directions on either side of the 0/π wrap
// average correctly.
//
// Angles are measured from the column axis towards increasing row index and
// lie in [0, π). Ridges running along image rows have orientation 0.
package orientation

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"ridgefeatures/internal/workers"
	"ridgefeatures/pkg/axial"
	"ridgefeatures/pkg/field"
	"ridgefeatures/pkg/imgproc"
	"ridgefeatures/pkg/logging"
)

// DefaultBlockSize is the block side length used when none is configured.
const DefaultBlockSize = 16

// Options configures an Estimator.
type Options struct {
	// BlockSize is the side length w of the square estimation blocks
	BlockSize int

	// SmoothRadius r selects the (2r+1)×(2r+1) block neighbourhood used
	// for smoothing. Zero disables smoothing.
	SmoothRadius int

	// Boundary decides how images that are not block multiples are handled
	Boundary field.Boundary

	// Workers bounds the number of goroutines; 0 means one per CPU
	Workers int
}

// DefaultOptions returns the standard 16-pixel block, 3×3 smoothing setup.
func DefaultOptions() Options {
	return Options{
		BlockSize:    DefaultBlockSize,
		SmoothRadius: 1,
		Boundary:     field.Reject,
	}
}

// Estimator computes orientation fields. It holds no per-image state and may
// be used concurrently.
type Estimator struct {
	opts Options
}

// NewEstimator creates an Estimator with the given options.
func NewEstimator(opts Options) *Estimator {
	return &Estimator{opts: opts}
}

// Estimate computes the orientation field of img.
func (e *Estimator) Estimate(img mat.Matrix) (*field.OrientationField, error) {
	h, w := img.Dims()
	layout, err := field.NewLayout(h, w, e.opts.BlockSize, e.opts.Boundary)
	if err != nil {
		return nil, err
	}

	src := alignImage(img, layout)
	blurred := imgproc.GaussianBlur3(src)
	gx, gy := imgproc.Sobel(blurred)

	raw := e.blockAngles(gx, gy, layout)
	smoothed := Smooth(raw, e.opts.SmoothRadius, e.opts.Workers)

	logging.Logger().Debug("orientation field estimated",
		"height", h, "width", w,
		"blocks", layout.Blocks(), "blockSize", layout.BlockSize)

	return field.NewOrientationField(layout, smoothed)
}

// alignImage pads img up to the block grid under the Pad policy and returns
// it unchanged otherwise.
func alignImage(img mat.Matrix, layout field.Layout) mat.Matrix {
	if layout.Boundary != field.Pad {
		return img
	}
	return imgproc.PadTo(img, layout.CoveredHeight(), layout.CoveredWidth())
}

// blockAngles returns the unsmoothed ridge orientation of every block.
func (e *Estimator) blockAngles(gx, gy *mat.Dense, layout field.Layout) *mat.Dense {
	r, c := gx.Dims()

	// Per-pixel terms of the least-squares estimate; each block reduces a
	// submatrix view of these.
	var gxx, gyy, num, den mat.Dense
	num.MulElem(gx, gy)
	num.Scale(2, &num)
	gxx.MulElem(gx, gx)
	gyy.MulElem(gy, gy)
	den.Sub(&gxx, &gyy)

	bs := layout.BlockSize
	out := mat.NewDense(layout.BlockRows, layout.BlockCols, nil)
	workers.Run(layout.Blocks(), e.opts.Workers, func(k int) {
		i, j := k/layout.BlockCols, k%layout.BlockCols
		r0, c0 := i*bs, j*bs
		r1, c1 := min(r0+bs, r), min(c0+bs, c)

		n := mat.Sum(num.Slice(r0, r1, c0, c1))
		d := mat.Sum(den.Slice(r0, r1, c0, c1))
		out.Set(i, j, axial.Wrap(math.Atan2(n, d)/2+math.Pi/2))
	})
	return out
}
