package extraction

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"ridgefeatures/pkg/preprocess"
)

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Metrics summarises the quality of the estimated fields.
type Metrics struct {
	// Blocks is the number of blocks in the estimation grid
	Blocks int

	// ValidFrequencyBlocks counts blocks with a determinable frequency
	ValidFrequencyBlocks int

	// ValidRatio is ValidFrequencyBlocks / Blocks
	ValidRatio float64

	// MeanFrequency and StdFrequency describe the valid block frequencies
	// in cycles per pixel. Both are zero when no block is valid.
	MeanFrequency float64
	StdFrequency  float64

	// MeanPeriod is the mean ridge spacing in pixels over valid blocks
	MeanPeriod float64

	// ForegroundRatio is the fraction of pixels inside the foreground mask
	ForegroundRatio float64

	// Features is the number of feature vectors built
	Features int

	Timings []StageTiming
}

// Total returns the summed duration of all stages.
func (m Metrics) Total() time.Duration {
	var d time.Duration
	for _, t := range m.Timings {
		d += t.Duration
	}
	return d
}

func computeMetrics(res *Result, timings []StageTiming) Metrics {
	m := Metrics{
		Blocks:          res.Frequency.Layout().Blocks(),
		ForegroundRatio: preprocess.Coverage(res.Mask),
		Features:        len(res.Features),
		Timings:         timings,
	}

	valid := res.Frequency.ValidBlocks()
	m.ValidFrequencyBlocks = len(valid)
	if m.Blocks > 0 {
		m.ValidRatio = float64(len(valid)) / float64(m.Blocks)
	}
	if len(valid) == 0 {
		return m
	}

	m.MeanFrequency, m.StdFrequency = stat.PopMeanStdDev(valid, nil)

	periods := make([]float64, len(valid))
	for i, f := range valid {
		periods[i] = 1 / f
	}
	m.MeanPeriod = stat.Mean(periods, nil)
	return m
}
