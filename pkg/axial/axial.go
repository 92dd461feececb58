// Package axial provides arithmetic for axial angles, i.e. directions with
// period π where θ and θ+π describe the same ridge line.
package axial

import "math"

// Wrap reduces theta to [0, π).
func Wrap(theta float64) float64 {
	v := math.Mod(theta, math.Pi)
	if v < 0 {
		v += math.Pi
	}
	// Mod of a value just below a multiple of π can round up to π itself
	if v >= math.Pi {
		v -= math.Pi
	}
	return v
}

// Diff returns a − b wrapped to (−π/2, π/2].
func Diff(a, b float64) float64 {
	d := math.Mod(a-b, math.Pi)
	if d > math.Pi/2 {
		d -= math.Pi
	} else if d <= -math.Pi/2 {
		d += math.Pi
	}
	return d
}

// Distance is the unsigned axial separation of a and b, in [0, π/2].
func Distance(a, b float64) float64 {
	return math.Abs(Diff(a, b))
}

// Doubled maps theta onto the unit circle at twice its angle so that
// directions differing by π coincide and can be averaged as vectors.
func Doubled(theta float64) (sin2, cos2 float64) {
	return math.Sincos(2 * theta)
}

// FromDoubled recovers an axial angle in [0, π) from a (possibly
// unnormalised) doubled-angle vector.
func FromDoubled(sin2, cos2 float64) float64 {
	return Wrap(math.Atan2(sin2, cos2) / 2)
}
