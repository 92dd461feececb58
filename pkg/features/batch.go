package features

import (
	"fmt"

	"ridgefeatures/internal/models"
	"ridgefeatures/internal/workers"
	"ridgefeatures/pkg/logging"
)

// Options configures GetFeatures.
type Options struct {
	// BifurcationType is the minutia type code flagged as a bifurcation
	BifurcationType int

	// Workers bounds the number of goroutines; 0 means one per CPU
	Workers int
}

// DefaultOptions flags type code 1 as a bifurcation.
func DefaultOptions() Options {
	return Options{BifurcationType: models.Bifurcation}
}

// GetFeatures builds one feature vector per minutia. counts[i] must hold the
// reference points of minutiae[i]; the result is index-aligned with both.
// When several minutiae fail, the error of the lowest index is returned.
func GetFeatures(minutiae []models.Minutia, counts []models.RidgeCount, orient Lookup, opts Options) ([]models.FeatureVector, error) {
	if len(minutiae) != len(counts) {
		return nil, fmt.Errorf("%w: %d minutiae, %d ridge counts",
			ErrLengthMismatch, len(minutiae), len(counts))
	}

	out := make([]models.FeatureVector, len(minutiae))
	errs := make([]error, len(minutiae))
	workers.Run(len(minutiae), opts.Workers, func(i int) {
		out[i], errs[i] = Build(minutiae[i], counts[i], orient, opts.BifurcationType)
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("minutia %d: %w", i, err)
		}
	}

	logging.Logger().Debug("feature vectors built", "count", len(out))
	return out, nil
}
