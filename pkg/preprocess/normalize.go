// Package preprocess implements the intensity conditioning applied to a
// fingerprint image before ridge estimation: global and local
// normalisation, contrast stretching, foreground masking and block
// binarisation.
package preprocess

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Method names a global normalisation applied by Apply.
type Method string

const (
	None     Method = "none"
	Standard Method = "standard"
	MinMax   Method = "minmax"
	Local    Method = "local"
	Custom   Method = "custom"
	Stretch  Method = "stretch"
)

// Options carries the parameters used by Apply.
type Options struct {
	Method    Method
	BlockSize int

	// TargetMean and TargetVariance drive Custom
	TargetMean     float64
	TargetVariance float64

	// Alpha and Gamma drive Stretch
	Alpha float64
	Gamma float64
}

// ParseMethod validates a method name from configuration.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(s))
	switch m {
	case None, Standard, MinMax, Local, Custom, Stretch:
		return m, nil
	case "":
		return None, nil
	}
	return None, fmt.Errorf("unknown preprocessing method %q", s)
}

// Apply runs the normalisation selected by opts. The input is not modified.
func Apply(src mat.Matrix, opts Options) (*mat.Dense, error) {
	switch opts.Method {
	case None, "":
		return mat.DenseCopyOf(src), nil
	case Standard:
		return StandardNormalize(src), nil
	case MinMax:
		return Normalize(src), nil
	case Local:
		if opts.BlockSize <= 0 {
			return nil, fmt.Errorf("local normalisation needs a positive block size, got %d", opts.BlockSize)
		}
		return LocalNormalize(src, opts.BlockSize), nil
	case Custom:
		return CustomNormalize(src, opts.TargetMean, opts.TargetVariance), nil
	case Stretch:
		return StretchDistribution(src, opts.Alpha, opts.Gamma), nil
	}
	return nil, fmt.Errorf("unknown preprocessing method %q", opts.Method)
}

// values returns a copy of the matrix contents in row-major order.
func values(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}

// StandardNormalize returns src shifted and scaled to zero mean and unit
// (population) standard deviation. A constant image maps to all zeros.
func StandardNormalize(src mat.Matrix) *mat.Dense {
	dst := mat.DenseCopyOf(src)
	mean, std := stat.PopMeanStdDev(values(dst), nil)
	if std == 0 {
		std = 1
	}
	dst.Apply(func(_, _ int, v float64) float64 {
		return (v - mean) / std
	}, dst)
	return dst
}

// Normalize maps src linearly onto [0, 1]. A constant image maps to zeros.
func Normalize(src mat.Matrix) *mat.Dense {
	dst := mat.DenseCopyOf(src)
	lo := mat.Min(dst)
	dst.Apply(func(_, _ int, v float64) float64 { return v - lo }, dst)
	if hi := mat.Max(dst); hi > 0 {
		dst.Scale(1/hi, dst)
	}
	return dst
}

// NormalizeSlice is Normalize for a 1-D profile, in place.
func NormalizeSlice(s []float64) {
	if len(s) == 0 {
		return
	}
	floats.AddConst(-floats.Min(s), s)
	if hi := floats.Max(s); hi > 0 {
		floats.Scale(1/hi, s)
	}
}

// LocalNormalize applies Normalize independently to every w×w block.
// Trailing partial blocks are normalised on their own.
func LocalNormalize(src mat.Matrix, w int) *mat.Dense {
	dst := mat.DenseCopyOf(src)
	r, c := dst.Dims()
	bh, bw := tileSize(w, r, c)
	for y := 0; y < r; y += bh {
		for x := 0; x < c; x += bw {
			block := dst.Slice(y, min(y+bh, r), x, min(x+bw, c)).(*mat.Dense)
			block.Copy(Normalize(block))
		}
	}
	return dst
}

// CustomNormalize remaps src to the requested mean and variance, keeping
// each pixel on its original side of the mean.
func CustomNormalize(src mat.Matrix, mean0, variance0 float64) *mat.Dense {
	dst := mat.DenseCopyOf(src)
	mean, std := stat.PopMeanStdDev(values(dst), nil)
	if std == 0 {
		dst.Apply(func(_, _ int, _ float64) float64 { return mean0 }, dst)
		return dst
	}
	dst.Apply(func(_, _ int, v float64) float64 {
		dev := math.Sqrt(variance0*(v-mean)*(v-mean)) / std
		if v > mean {
			return mean0 + dev
		}
		return mean0 - dev
	}, dst)
	return dst
}

// StretchDistribution standardises src and rescales it to mean alpha and
// standard deviation gamma.
func StretchDistribution(src mat.Matrix, alpha, gamma float64) *mat.Dense {
	dst := StandardNormalize(src)
	dst.Apply(func(_, _ int, v float64) float64 { return alpha + gamma*v }, dst)
	return dst
}
