package preprocess

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// tileSize returns the block height and width used to tile an r×c image
// with w×w blocks. A non-positive w makes the whole image a single block.
func tileSize(w, r, c int) (int, int) {
	if w <= 0 {
		return r, c
	}
	return w, w
}

// Mask segments the fingerprint foreground. After standard normalisation,
// every full w×w block whose standard deviation reaches threshold is marked
// 1, everything else (flat background and trailing partial blocks) 0.
func Mask(src mat.Matrix, threshold float64, w int) *mat.Dense {
	norm := StandardNormalize(src)
	r, c := norm.Dims()
	mask := mat.NewDense(r, c, nil)

	bh, bw := tileSize(w, r, c)
	for y := 0; y < r; y += bh {
		for x := 0; x < c; x += bw {
			if y+bh > r || x+bw > c {
				continue
			}
			block := norm.Slice(y, y+bh, x, x+bw).(*mat.Dense)
			_, std := stat.PopMeanStdDev(values(block), nil)
			if std < threshold {
				continue
			}
			mask.Slice(y, y+bh, x, x+bw).(*mat.Dense).Apply(
				func(_, _ int, _ float64) float64 { return 1 }, block)
		}
	}
	return mask
}

// Coverage returns the fraction of non-zero cells in mask.
func Coverage(mask mat.Matrix) float64 {
	r, c := mask.Dims()
	if r == 0 || c == 0 {
		return 0
	}
	v := values(mat.DenseCopyOf(mask))
	n := floats.Count(func(x float64) bool { return x != 0 }, v)
	return float64(n) / float64(len(v))
}

// Binarize thresholds every w×w block at its own mean, producing 1 for
// ridge-valley pixels at or above the mean and 0 below.
func Binarize(src mat.Matrix, w int) *mat.Dense {
	dst := mat.DenseCopyOf(src)
	r, c := dst.Dims()
	bh, bw := tileSize(w, r, c)
	for y := 0; y < r; y += bh {
		for x := 0; x < c; x += bw {
			block := dst.Slice(y, min(y+bh, r), x, min(x+bw, c)).(*mat.Dense)
			br, bc := block.Dims()
			threshold := mat.Sum(block) / float64(br*bc)
			block.Apply(func(_, _ int, v float64) float64 {
				if v >= threshold {
					return 1
				}
				return 0
			}, block)
		}
	}
	return dst
}
