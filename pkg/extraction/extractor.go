// Package extraction runs the complete ridge feature pipeline on one
// fingerprint image: preprocessing, orientation field, frequency field and
// minutia feature vectors.
package extraction

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"ridgefeatures/internal/models"
	"ridgefeatures/pkg/config"
	"ridgefeatures/pkg/features"
	"ridgefeatures/pkg/field"
	"ridgefeatures/pkg/frequency"
	"ridgefeatures/pkg/logging"
	"ridgefeatures/pkg/orientation"
	"ridgefeatures/pkg/preprocess"
)

// Result bundles everything produced for one image.
type Result struct {
	// Preprocessed is the normalised image both fields were estimated on
	Preprocessed *mat.Dense

	// Mask marks foreground blocks with 1. It is reported, not applied.
	Mask *mat.Dense

	Orientation *field.OrientationField
	Frequency   *field.FrequencyField

	// Features is index-aligned with the minutiae passed to Process
	Features []models.FeatureVector

	Metrics Metrics
}

// Extractor holds the configured stages. It keeps no per-image state, so
// one Extractor may process several images concurrently.
type Extractor struct {
	prep          preprocess.Options
	maskThreshold float64
	orient        *orientation.Estimator
	freq          *frequency.Estimator
	feat          features.Options
}

// NewExtractor validates cfg and prepares the pipeline stages.
func NewExtractor(cfg *config.Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	boundary, err := field.ParseBoundary(cfg.Processing.Boundary)
	if err != nil {
		return nil, err
	}
	method, err := preprocess.ParseMethod(cfg.Preprocess.Method)
	if err != nil {
		return nil, err
	}

	workers := cfg.Processing.NumCores
	blockSize := cfg.Processing.BlockSize

	return &Extractor{
		prep: preprocess.Options{
			Method:         method,
			BlockSize:      blockSize,
			TargetMean:     cfg.Preprocess.TargetMean,
			TargetVariance: cfg.Preprocess.TargetVariance,
			Alpha:          cfg.Preprocess.Alpha,
			Gamma:          cfg.Preprocess.Gamma,
		},
		maskThreshold: cfg.Preprocess.MaskThreshold,
		orient: orientation.NewEstimator(orientation.Options{
			BlockSize:    blockSize,
			SmoothRadius: cfg.Orientation.SmoothRadius,
			Boundary:     boundary,
			Workers:      workers,
		}),
		freq: frequency.NewEstimator(frequency.Options{
			BlockSize:     blockSize,
			MinPeriod:     cfg.Frequency.MinPeriod,
			MaxPeriod:     cfg.Frequency.MaxPeriod,
			PeakWidth:     cfg.Frequency.PeakWidth,
			MinProminence: cfg.Frequency.MinProminence,
			SmoothRadius:  cfg.Frequency.SmoothRadius,
			Workers:       workers,
		}),
		feat: features.Options{
			BifurcationType: cfg.Features.BifurcationType,
			Workers:         workers,
		},
	}, nil
}

// Process runs every stage on img. minutiae and counts may both be empty,
// in which case only the fields are computed. The image is not modified.
func (e *Extractor) Process(img mat.Matrix, minutiae []models.Minutia, counts []models.RidgeCount) (*Result, error) {
	log := logging.Logger()
	res := &Result{}
	var timings []StageTiming

	stage := func(name string, fn func() error) error {
		log.Info("stage started", "stage", name)
		start := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)
		timings = append(timings, StageTiming{Stage: name, Duration: elapsed})
		log.Info("stage finished", "stage", name, "elapsed", elapsed)
		return nil
	}

	h, w := img.Dims()
	log.Info("processing image", "height", h, "width", w, "minutiae", len(minutiae))

	// Step 1: Normalise intensities and segment the foreground
	err := stage("preprocess", func() error {
		var err error
		res.Preprocessed, err = preprocess.Apply(img, e.prep)
		if err != nil {
			return err
		}
		res.Mask = preprocess.Mask(res.Preprocessed, e.maskThreshold, e.prep.BlockSize)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Step 2: Ridge orientation
	err = stage("orientation", func() error {
		var err error
		res.Orientation, err = e.orient.Estimate(res.Preprocessed)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Step 3: Ridge frequency along the estimated orientation
	err = stage("frequency", func() error {
		var err error
		res.Frequency, err = e.freq.Estimate(res.Preprocessed, res.Orientation)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Step 4: Feature vectors for the supplied minutiae
	err = stage("features", func() error {
		var err error
		res.Features, err = features.GetFeatures(minutiae, counts, res.Orientation, e.feat)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Metrics = computeMetrics(res, timings)
	if res.Metrics.ValidFrequencyBlocks == 0 {
		log.Warn("no block has a determinable ridge frequency")
	}
	return res, nil
}
