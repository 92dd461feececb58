package extraction

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"ridgefeatures/internal/models"
)

// MinutiaRecord pairs a minutia with its ridge-count reference points as
// stored in a minutiae file.
type MinutiaRecord struct {
	Minutia    models.Minutia    `yaml:"minutia"`
	RidgeCount models.RidgeCount `yaml:"ridgeCount"`
}

// ReadMinutiae decodes a YAML list of MinutiaRecord values and splits it
// into the two index-aligned sequences Process expects.
//
// Example document:
//
//	- minutia: {x: 40, y: 52, type: 1}
//	  ridgeCount:
//	    i: {x: 31, y: 60, type: 0, count: 2}
//	    j: {x: 48, y: 41, type: 1, count: 1}
func ReadMinutiae(r io.Reader) ([]models.Minutia, []models.RidgeCount, error) {
	var records []MinutiaRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("error parsing minutiae: %w", err)
	}

	minutiae := make([]models.Minutia, len(records))
	counts := make([]models.RidgeCount, len(records))
	for i, rec := range records {
		minutiae[i] = rec.Minutia
		counts[i] = rec.RidgeCount
	}
	return minutiae, counts, nil
}

// LoadMinutiae reads a minutiae file from disk.
func LoadMinutiae(path string) ([]models.Minutia, []models.RidgeCount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening minutiae file: %w", err)
	}
	defer f.Close()
	return ReadMinutiae(f)
}
