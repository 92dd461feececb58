// Package imgproc contains the small set of image operations the ridge
// estimators need, working on gonum dense matrices of float64 intensities.
package imgproc

import (
	"gonum.org/v1/gonum/mat"
)

var (
	gaussian3   = [3]float64{0.25, 0.5, 0.25}
	sobelSmooth = [3]float64{1, 2, 1}
	sobelDeriv  = [3]float64{-1, 0, 1}
)

// reflect101 maps an out-of-range index back into [0, n) by mirroring about
// the edge samples without repeating them (…cb|abcd|cb…).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// correlate3 applies the separable 3×3 kernel kx (along columns) ⊗ ky
// (along rows) with reflect-101 borders.
func correlate3(src mat.Matrix, kx, ky [3]float64) *mat.Dense {
	r, c := src.Dims()
	in := mat.DenseCopyOf(src)

	tmp := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := in.RawRowView(i)
		out := tmp.RawRowView(i)
		for j := range out {
			out[j] = kx[0]*row[reflect101(j-1, c)] + kx[1]*row[j] + kx[2]*row[reflect101(j+1, c)]
		}
	}

	dst := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		up := tmp.RawRowView(reflect101(i-1, r))
		mid := tmp.RawRowView(i)
		down := tmp.RawRowView(reflect101(i+1, r))
		out := dst.RawRowView(i)
		for j := range out {
			out[j] = ky[0]*up[j] + ky[1]*mid[j] + ky[2]*down[j]
		}
	}
	return dst
}

// GaussianBlur3 smooths src with the 3×3 binomial kernel
// [1 2 1]ᵀ[1 2 1]/16.
func GaussianBlur3(src mat.Matrix) *mat.Dense {
	return correlate3(src, gaussian3, gaussian3)
}

// Sobel returns the horizontal (along columns) and vertical (along rows)
// 3×3 Sobel derivatives of src.
func Sobel(src mat.Matrix) (gx, gy *mat.Dense) {
	gx = correlate3(src, sobelDeriv, sobelSmooth)
	gy = correlate3(src, sobelSmooth, sobelDeriv)
	return gx, gy
}

// PadEdge returns a copy of src grown by the given margins, filling new
// cells with the nearest edge value.
func PadEdge(src mat.Matrix, top, bottom, left, right int) *mat.Dense {
	r, c := src.Dims()
	dst := mat.NewDense(r+top+bottom, c+left+right, nil)
	for i := 0; i < r+top+bottom; i++ {
		si := clamp(i-top, 0, r-1)
		out := dst.RawRowView(i)
		for j := range out {
			out[j] = src.At(si, clamp(j-left, 0, c-1))
		}
	}
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PadTo edge-replicates src on the bottom and right until it is rows×cols.
// Dimensions already at or beyond the target are left as they are.
func PadTo(src mat.Matrix, rows, cols int) *mat.Dense {
	r, c := src.Dims()
	return PadEdge(src, 0, max(rows-r, 0), 0, max(cols-c, 0))
}
