// Package synthetic generates ridge patterns with known orientation and
// period for demos and tests.
package synthetic

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stripes returns a rows×cols image of sinusoidal ridges in [0, 255].
// The ridges run along direction theta (radians from the column axis
// towards increasing row), repeat every period pixels, and are shifted by
// phase radians.
func Stripes(rows, cols int, theta, period, phase float64) *mat.Dense {
	nx, ny := -math.Sin(theta), math.Cos(theta)
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		row := m.RawRowView(r)
		for c := range row {
			d := nx*float64(c) + ny*float64(r)
			row[c] = 127.5 + 127.5*math.Cos(2*math.Pi*d/period+phase)
		}
	}
	return m
}

// Flat returns a rows×cols image with every pixel set to value.
func Flat(rows, cols int, value float64) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		row := m.RawRowView(r)
		for c := range row {
			row[c] = value
		}
	}
	return m
}
