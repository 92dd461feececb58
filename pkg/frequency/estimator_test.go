package frequency

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"ridgefeatures/internal/synthetic"
	"ridgefeatures/pkg/field"
	"ridgefeatures/pkg/orientation"
)

func estimateBoth(t *testing.T, img mat.Matrix, boundary field.Boundary) (*field.OrientationField, *field.FrequencyField) {
	t.Helper()
	oopts := orientation.DefaultOptions()
	oopts.Boundary = boundary
	orient, err := orientation.NewEstimator(oopts).Estimate(img)
	require.NoError(t, err)

	freq, err := NewEstimator(DefaultOptions()).Estimate(img, orient)
	require.NoError(t, err)
	return orient, freq
}

func TestHorizontalRidgesFrequency(t *testing.T) {
	img := synthetic.Stripes(32, 32, 0, 8, math.Pi)
	_, freq := estimateBoth(t, img, field.Reject)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			b := freq.Block(i, j)
			require.True(t, b.Valid, "block (%d,%d) invalid", i, j)
			assert.InDelta(t, 0.125, b.Value, 1e-3)
		}
	}
	assert.InDelta(t, 0.125, freq.At(31, 0), 1e-3)
}

// Every ridge phase must yield a valid field, including those that put a
// crest between two samples or just past the end of a window.
func TestHorizontalRidgesFrequencyAtAnyPhase(t *testing.T) {
	for k := 0; k < 32; k++ {
		phase := 2 * math.Pi * float64(k) / 32
		img := synthetic.Stripes(32, 32, 0, 8, phase)
		_, freq := estimateBoth(t, img, field.Reject)

		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				b := freq.Block(i, j)
				require.True(t, b.Valid, "phase %.3f: block (%d,%d) invalid", phase, i, j)
				assert.InEpsilon(t, 0.125, b.Value, 0.05, "phase %.3f: block (%d,%d)", phase, i, j)
			}
		}
	}
}

func TestEstimateStripesFrequency(t *testing.T) {
	cases := []struct {
		theta, period, phase float64
	}{
		{0, 6, 0},
		{0, 7, 0},
		{0.5, 6, 0},
		{0.5, 7, 0.8},
		{1.9, 6, 0},
		{2.5, 7, 0},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("theta%.1f_L%.0f", tc.theta, tc.period), func(t *testing.T) {
			img := synthetic.Stripes(64, 64, tc.theta, tc.period, tc.phase)
			_, freq := estimateBoth(t, img, field.Reject)

			want := 1 / tc.period
			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					b := freq.Block(i, j)
					require.True(t, b.Valid, "block (%d,%d) invalid", i, j)
					assert.InEpsilon(t, want, b.Value, 0.1, "block (%d,%d)", i, j)
				}
			}
		})
	}
}

func TestFlatImageHasNoFrequency(t *testing.T) {
	img := synthetic.Flat(48, 32, 128)
	_, freq := estimateBoth(t, img, field.Reject)

	assert.Empty(t, freq.ValidBlocks())
	d := freq.Dense()
	r, c := d.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.Equal(t, field.Invalid, d.At(i, j))
		}
	}
}

func TestValidFrequencyRange(t *testing.T) {
	img := synthetic.Stripes(64, 64, 1.9, 6, 0)
	_, freq := estimateBoth(t, img, field.Reject)
	for _, v := range freq.ValidBlocks() {
		assert.GreaterOrEqual(t, v, 1.0/15)
		assert.LessOrEqual(t, v, 1.0/5)
	}
}

func TestShapeMismatch(t *testing.T) {
	orient, err := orientation.NewEstimator(orientation.DefaultOptions()).
		Estimate(synthetic.Stripes(32, 32, 0, 8, 0))
	require.NoError(t, err)

	_, err = NewEstimator(DefaultOptions()).Estimate(synthetic.Flat(48, 32, 0), orient)
	assert.True(t, errors.Is(err, ErrShapeMismatch), "got %v", err)

	opts := DefaultOptions()
	opts.BlockSize = 8
	_, err = NewEstimator(opts).Estimate(synthetic.Flat(32, 32, 0), orient)
	assert.True(t, errors.Is(err, ErrShapeMismatch), "got %v", err)

	_, err = NewEstimator(DefaultOptions()).Estimate(synthetic.Flat(32, 32, 0), nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch), "got %v", err)
}

func TestFrequencyBoundaryPolicies(t *testing.T) {
	img := synthetic.Stripes(40, 40, 0.5, 6, 0)

	t.Run("partial", func(t *testing.T) {
		_, freq := estimateBoth(t, img, field.Partial)
		assert.Equal(t, field.Invalid, freq.At(35, 35))
		_, ok := freq.Lookup(35, 35)
		assert.False(t, ok)
	})

	t.Run("pad", func(t *testing.T) {
		_, freq := estimateBoth(t, img, field.Pad)
		assert.Equal(t, 3, freq.Layout().BlockCols)
		if v, ok := freq.Lookup(39, 39); ok {
			assert.GreaterOrEqual(t, v, 1.0/15)
			assert.LessOrEqual(t, v, 1.0/5)
		}
	})
}

func TestSmoothSkipsInvalid(t *testing.T) {
	layout, err := field.NewLayout(48, 48, 16, field.Reject)
	require.NoError(t, err)

	raw := make([]field.Estimate, 9)
	raw[0] = field.Estimate{Value: 0.1, Valid: true}
	raw[2] = field.Estimate{Value: 0.2, Valid: true}

	e := NewEstimator(Options{SmoothRadius: 1, Workers: 2})
	out := e.smooth(raw, layout)

	assert.True(t, out[0].Valid)
	assert.InDelta(t, 0.1, out[0].Value, 1e-12)
	assert.InDelta(t, 0.15, out[1].Value, 1e-12)
	assert.InDelta(t, 0.15, out[4].Value, 1e-12)
	assert.False(t, out[8].Valid, "no valid neighbour")

	// Input untouched
	assert.False(t, raw[4].Valid)
}

func TestBlockFrequencyFlat(t *testing.T) {
	est, err := NewEstimator(DefaultOptions()).BlockFrequency(synthetic.Flat(16, 16, 7), 0.4)
	require.NoError(t, err)
	assert.False(t, est.Valid)
}

func TestProjection(t *testing.T) {
	win := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []float64{5, 7, 9}, Projection(win))
}

func TestFrequencyWorkerCountDoesNotChangeResult(t *testing.T) {
	img := synthetic.Stripes(64, 64, 0.5, 6, 0)
	orient, err := orientation.NewEstimator(orientation.DefaultOptions()).Estimate(img)
	require.NoError(t, err)

	serial := DefaultOptions()
	serial.Workers = 1
	parallel := DefaultOptions()
	parallel.Workers = 6

	a, err := NewEstimator(serial).Estimate(img, orient)
	require.NoError(t, err)
	b, err := NewEstimator(parallel).Estimate(img, orient)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))
}

func BenchmarkFrequencyEstimate(b *testing.B) {
	img := synthetic.Stripes(256, 256, 0.8, 9, 0)
	orient, err := orientation.NewEstimator(orientation.DefaultOptions()).Estimate(img)
	if err != nil {
		b.Fatal(err)
	}
	est := NewEstimator(DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := est.Estimate(img, orient); err != nil {
			b.Fatalf("Estimate failed: %v", err)
		}
	}
}
