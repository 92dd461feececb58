package orientation

import (
	"gonum.org/v1/gonum/mat"

	"ridgefeatures/internal/workers"
	"ridgefeatures/pkg/axial"
	"ridgefeatures/pkg/imgproc"
)

// Smooth averages block angles over a (2·radius+1)² neighbourhood using the
// doubled-angle representation. The grid is edge-replicated so border blocks
// see a full neighbourhood. A neighbourhood of identical angles returns that
// angle.
func Smooth(angles mat.Matrix, radius, numWorkers int) *mat.Dense {
	rows, cols := angles.Dims()
	if radius <= 0 {
		return mat.DenseCopyOf(angles)
	}

	padded := imgproc.PadEdge(angles, radius, radius, radius, radius)
	var sin2, cos2 mat.Dense
	sin2.Apply(func(_, _ int, v float64) float64 {
		s, _ := axial.Doubled(v)
		return s
	}, padded)
	cos2.Apply(func(_, _ int, v float64) float64 {
		_, c := axial.Doubled(v)
		return c
	}, padded)

	size := 2*radius + 1
	out := mat.NewDense(rows, cols, nil)
	workers.Run(rows*cols, numWorkers, func(k int) {
		i, j := k/cols, k%cols
		s := mat.Sum(sin2.Slice(i, i+size, j, j+size))
		c := mat.Sum(cos2.Slice(i, i+size, j, j+size))
		out.Set(i, j, axial.FromDoubled(s, c))
	})
	return out
}
