// Package frequency estimates the local ridge frequency of a fingerprint
// image from its orientation field.
//
// For every block the pixels are rotated so that ridges run vertically and
// summed down each column, producing a profile across the ridges. The
// spacing of the peaks in that profile is the local ridge period; its
// reciprocal is the frequency. Blocks with too few peaks or an implausible
// period are marked invalid and left out when neighbouring estimates are
// averaged.
package frequency

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"ridgefeatures/internal/workers"
	"ridgefeatures/pkg/field"
	"ridgefeatures/pkg/imgproc"
	"ridgefeatures/pkg/logging"
	"ridgefeatures/pkg/preprocess"
)

// ErrShapeMismatch is returned when the orientation field was not estimated
// on an image of the same size and block size.
var ErrShapeMismatch = errors.New("orientation field does not match image")

// Options configures an Estimator.
type Options struct {
	// BlockSize must equal the orientation field's block size. Zero takes
	// the block size from the field.
	BlockSize int

	// MinPeriod and MaxPeriod bound the accepted ridge spacing in pixels
	MinPeriod, MaxPeriod float64

	// PeakWidth is the window, in samples, a peak must dominate
	PeakWidth int

	// MinProminence is the least prominence, on the normalised [0, 1]
	// profile, for a maximum to count as a ridge
	MinProminence float64

	// SmoothRadius R averages valid estimates over (2R+1)×(2R+1) blocks.
	// Zero disables smoothing.
	SmoothRadius int

	// Workers bounds the number of goroutines; 0 means one per CPU
	Workers int
}

// DefaultOptions returns periods 5 to 15 pixels, 3-sample peaks, 0.1
// prominence and 7×7 smoothing.
func DefaultOptions() Options {
	return Options{
		MinPeriod:     5,
		MaxPeriod:     15,
		PeakWidth:     3,
		MinProminence: 0.1,
		SmoothRadius:  3,
	}
}

// Estimator computes ridge frequency fields. It holds no per-image state and
// may be used concurrently.
type Estimator struct {
	opts Options
}

// NewEstimator creates an Estimator with the given options.
func NewEstimator(opts Options) *Estimator {
	return &Estimator{opts: opts}
}

// Estimate computes the ridge frequency field of img using the block
// orientations of orient.
func (e *Estimator) Estimate(img mat.Matrix, orient *field.OrientationField) (*field.FrequencyField, error) {
	if orient == nil {
		return nil, fmt.Errorf("%w: no orientation field", ErrShapeMismatch)
	}
	layout := orient.Layout()
	h, w := img.Dims()
	if h != layout.Height || w != layout.Width {
		return nil, fmt.Errorf("%w: image is %dx%d, field is %dx%d",
			ErrShapeMismatch, h, w, layout.Height, layout.Width)
	}
	if e.opts.BlockSize != 0 && e.opts.BlockSize != layout.BlockSize {
		return nil, fmt.Errorf("%w: block size %d, field uses %d",
			ErrShapeMismatch, e.opts.BlockSize, layout.BlockSize)
	}

	var src *mat.Dense
	if layout.Boundary == field.Pad {
		src = imgproc.PadTo(img, layout.CoveredHeight(), layout.CoveredWidth())
	} else {
		src = mat.DenseCopyOf(img)
	}

	raw, err := e.blockFrequencies(src, orient)
	if err != nil {
		return nil, err
	}
	smoothed := e.smooth(raw, layout)

	f, err := field.NewFrequencyField(layout, smoothed)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("frequency field estimated",
		"blocks", layout.Blocks(),
		"validRaw", countValid(raw), "valid", len(f.ValidBlocks()))
	return f, nil
}

// blockFrequencies returns the unsmoothed estimate of every block in
// row-major order.
func (e *Estimator) blockFrequencies(src *mat.Dense, orient *field.OrientationField) ([]field.Estimate, error) {
	layout := orient.Layout()
	bs := layout.BlockSize
	out := make([]field.Estimate, layout.Blocks())
	errs := make([]error, layout.Blocks())

	workers.Run(layout.Blocks(), e.opts.Workers, func(k int) {
		i, j := k/layout.BlockCols, k%layout.BlockCols
		block := src.Slice(i*bs, (i+1)*bs, j*bs, (j+1)*bs)
		out[k], errs[k] = e.BlockFrequency(block, orient.Block(i, j))
	})

	for k, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", k, err)
		}
	}
	return out, nil
}

// BlockFrequency estimates the ridge frequency of a single block whose
// ridges run at angle theta.
func (e *Estimator) BlockFrequency(block mat.Matrix, theta float64) (field.Estimate, error) {
	win, err := RotatedWindow(block, math.Pi/2+theta)
	if err != nil || win == nil {
		return field.Estimate{}, err
	}

	profile := Projection(win)
	preprocess.NormalizeSlice(profile)

	peaks := FindPeaks(profile, e.opts.PeakWidth, e.opts.MinProminence)
	if len(peaks) < 2 {
		return field.Estimate{}, nil
	}

	spacing := (peaks[len(peaks)-1] - peaks[0]) / float64(len(peaks)-1)
	if spacing < e.opts.MinPeriod || spacing > e.opts.MaxPeriod {
		return field.Estimate{}, nil
	}
	return field.Estimate{Value: 1 / spacing, Valid: true}, nil
}

// Projection sums each column of win.
func Projection(win mat.Matrix) []float64 {
	_, c := win.Dims()
	profile := make([]float64, c)
	var col []float64
	for j := range profile {
		col = mat.Col(col, j, win)
		profile[j] = floats.Sum(col)
	}
	return profile
}

// smooth replaces every block with the mean of the valid estimates in its
// neighbourhood. Indices past the grid edge are clamped to the nearest
// block. Invalid estimates do not contribute; a neighbourhood with none
// stays invalid.
func (e *Estimator) smooth(raw []field.Estimate, layout field.Layout) []field.Estimate {
	rad := e.opts.SmoothRadius
	if rad <= 0 {
		return append([]field.Estimate(nil), raw...)
	}

	rows, cols := layout.BlockRows, layout.BlockCols
	out := make([]field.Estimate, len(raw))
	workers.Run(len(raw), e.opts.Workers, func(k int) {
		i, j := k/cols, k%cols
		vals := make([]float64, 0, (2*rad+1)*(2*rad+1))
		for di := -rad; di <= rad; di++ {
			ni := min(max(i+di, 0), rows-1)
			for dj := -rad; dj <= rad; dj++ {
				nj := min(max(j+dj, 0), cols-1)
				if est := raw[ni*cols+nj]; est.Valid {
					vals = append(vals, est.Value)
				}
			}
		}
		if len(vals) > 0 {
			out[k] = field.Estimate{Value: floats.Sum(vals) / float64(len(vals)), Valid: true}
		}
	})
	return out
}

func countValid(est []field.Estimate) int {
	n := 0
	for _, e := range est {
		if e.Valid {
			n++
		}
	}
	return n
}
