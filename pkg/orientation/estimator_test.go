package orientation

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"ridgefeatures/internal/synthetic"
	"ridgefeatures/pkg/axial"
	"ridgefeatures/pkg/field"
)

const orientationTolerance = 0.05

// TestEstimateStripes checks every block of synthetic ridge images with a
// known direction.
func TestEstimateStripes(t *testing.T) {
	cases := []struct {
		size          int
		theta, period float64
		phase         float64
	}{
		{32, 0, 8, 0},
		{32, 0, 8, math.Pi},
		{64, 0.3, 6, 0.8},
		{64, 0.5, 6, 0},
		{64, 1.0, 6, 0},
		{64, 1.2, 7, 0},
		{64, 1.9, 7, 0.8},
		{64, 2.5, 6, 2.0},
	}

	est := NewEstimator(DefaultOptions())
	for _, tc := range cases {
		t.Run(fmt.Sprintf("n%d_theta%.1f_L%.0f_phase%.1f", tc.size, tc.theta, tc.period, tc.phase), func(t *testing.T) {
			img := synthetic.Stripes(tc.size, tc.size, tc.theta, tc.period, tc.phase)
			f, err := est.Estimate(img)
			require.NoError(t, err)

			l := f.Layout()
			for i := 0; i < l.BlockRows; i++ {
				for j := 0; j < l.BlockCols; j++ {
					got := f.Block(i, j)
					assert.True(t, got >= 0 && got < math.Pi, "block (%d,%d) = %f outside [0, π)", i, j, got)
					assert.LessOrEqual(t, axial.Distance(got, tc.theta), orientationTolerance,
						"block (%d,%d): expected %f, got %f", i, j, tc.theta, got)
				}
			}
		})
	}
}

func TestEstimatePhaseIndependent(t *testing.T) {
	est := NewEstimator(DefaultOptions())
	for _, phase := range []float64{0, 0.7, 1.9, 3.3, 5.1} {
		f, err := est.Estimate(synthetic.Stripes(64, 64, 1.2, 7, phase))
		require.NoError(t, err)
		assert.LessOrEqual(t, axial.Distance(f.Block(1, 2), 1.2), orientationTolerance, "phase %f", phase)
	}
}

// TestHorizontalRidgesScenario is the 32×32, period-8 example: ridges along
// the rows give orientation 0 (equivalently π) in every pixel.
func TestHorizontalRidgesScenario(t *testing.T) {
	img := synthetic.Stripes(32, 32, 0, 8, math.Pi)
	f, err := NewEstimator(DefaultOptions()).Estimate(img)
	require.NoError(t, err)

	r, c := f.Dims()
	require.Equal(t, 32, r)
	require.Equal(t, 32, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if d := axial.Distance(f.At(i, j), 0); d > orientationTolerance {
				t.Fatalf("pixel (%d,%d): orientation %f, expected 0 mod π", i, j, f.At(i, j))
			}
		}
	}
}

func TestFlatImageIsWellDefined(t *testing.T) {
	f, err := NewEstimator(DefaultOptions()).Estimate(synthetic.Flat(48, 32, 90))
	require.NoError(t, err)
	r, c := f.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := f.At(i, j)
			if math.IsNaN(v) || v < 0 || v >= math.Pi {
				t.Fatalf("pixel (%d,%d) has orientation %f", i, j, v)
			}
		}
	}
}

func TestBoundaryPolicies(t *testing.T) {
	img := synthetic.Stripes(40, 40, 0.3, 6, 0)

	t.Run("reject", func(t *testing.T) {
		_, err := NewEstimator(DefaultOptions()).Estimate(img)
		assert.True(t, errors.Is(err, field.ErrBlockAlignment), "got %v", err)
	})

	t.Run("pad", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Boundary = field.Pad
		f, err := NewEstimator(opts).Estimate(img)
		require.NoError(t, err)
		assert.Equal(t, 3, f.Layout().BlockRows)
		for _, p := range [][2]int{{0, 0}, {39, 39}, {20, 39}} {
			v, ok := f.Lookup(p[0], p[1])
			assert.True(t, ok)
			assert.False(t, math.IsNaN(v))
		}
		assert.LessOrEqual(t, axial.Distance(f.At(10, 10), 0.3), orientationTolerance)
	})

	t.Run("partial", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Boundary = field.Partial
		f, err := NewEstimator(opts).Estimate(img)
		require.NoError(t, err)
		assert.Equal(t, 2, f.Layout().BlockRows)
		assert.Equal(t, field.Undefined, f.At(35, 35))
		_, ok := f.Lookup(35, 35)
		assert.False(t, ok)
		_, ok = f.Lookup(31, 31)
		assert.True(t, ok)
	})
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	img := synthetic.Stripes(64, 96, 2.2, 7, 0.4)

	serial := DefaultOptions()
	serial.Workers = 1
	parallel := DefaultOptions()
	parallel.Workers = 8

	a, err := NewEstimator(serial).Estimate(img)
	require.NoError(t, err)
	b, err := NewEstimator(parallel).Estimate(img)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))
}

func TestSmoothIdenticalNeighbourhood(t *testing.T) {
	for _, theta := range []float64{0, 0.2, 0.7, math.Pi / 2, 2.1, 3.0} {
		angles := mat.NewDense(3, 4, nil)
		angles.Apply(func(_, _ int, _ float64) float64 { return theta }, angles)

		out := Smooth(angles, 1, 0)
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				assert.InDelta(t, theta, out.At(i, j), 1e-12, "theta %f at (%d,%d)", theta, i, j)
			}
		}
	}
}

// TestSmoothAcrossWrap averages directions on both sides of the 0/π seam.
// A linear mean would land near π/2, the axial mean stays at the seam.
func TestSmoothAcrossWrap(t *testing.T) {
	angles := mat.NewDense(3, 3, []float64{
		0.05, math.Pi - 0.05, 0.05,
		math.Pi - 0.05, 0.05, math.Pi - 0.05,
		0.05, math.Pi - 0.05, 0.05,
	})
	out := Smooth(angles, 1, 1)
	assert.Less(t, axial.Distance(out.At(1, 1), 0), 0.05)
}

func TestSmoothRadiusZeroCopies(t *testing.T) {
	angles := mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4})
	out := Smooth(angles, 0, 1)
	assert.True(t, mat.Equal(angles, out))
	out.Set(0, 0, 1)
	assert.Equal(t, 0.1, angles.At(0, 0))
}

func BenchmarkEstimate(b *testing.B) {
	img := synthetic.Stripes(256, 256, 0.8, 9, 0)
	est := NewEstimator(DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := est.Estimate(img); err != nil {
			b.Fatalf("Estimate failed: %v", err)
		}
	}
}
