// Package config provides configuration loading and management for ridgefeatures.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"ridgefeatures/internal/models"
	"ridgefeatures/pkg/field"
	"ridgefeatures/pkg/preprocess"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`

		// BlockSize is the side length of the square blocks both fields are
		// estimated on
		BlockSize int `yaml:"blockSize"`

		// Boundary is the policy for images that are not block multiples:
		// reject, pad or partial
		Boundary string `yaml:"boundary"`
	} `yaml:"processing"`

	// Preprocessing parameters
	Preprocess struct {
		// Method is the intensity normalisation applied before estimation
		Method string `yaml:"method"`

		// TargetMean and TargetVariance are used by the custom method
		TargetMean     float64 `yaml:"targetMean"`
		TargetVariance float64 `yaml:"targetVariance"`

		// Alpha and Gamma are the mean and spread of the stretch method
		Alpha float64 `yaml:"alpha"`
		Gamma float64 `yaml:"gamma"`

		// MaskThreshold is the minimum block standard deviation, after
		// standard normalisation, for a block to count as foreground
		MaskThreshold float64 `yaml:"maskThreshold"`
	} `yaml:"preprocess"`

	// Orientation field parameters
	Orientation struct {
		// SmoothRadius r averages over (2r+1)×(2r+1) blocks
		SmoothRadius int `yaml:"smoothRadius"`
	} `yaml:"orientation"`

	// Frequency field parameters
	Frequency struct {
		// MinPeriod and MaxPeriod bound the accepted ridge spacing in pixels
		MinPeriod float64 `yaml:"minPeriod"`
		MaxPeriod float64 `yaml:"maxPeriod"`

		// PeakWidth is the window a projection maximum must dominate
		PeakWidth int `yaml:"peakWidth"`

		// MinProminence rejects maxima that rise less than this fraction of
		// the profile range above their surroundings
		MinProminence float64 `yaml:"minProminence"`

		// SmoothRadius R averages over (2R+1)×(2R+1) blocks
		SmoothRadius int `yaml:"smoothRadius"`
	} `yaml:"frequency"`

	// Feature vector parameters
	Features struct {
		// BifurcationType is the minutia type code treated as a bifurcation
		BifurcationType int `yaml:"bifurcationType"`
	} `yaml:"features"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.BlockSize = 16
	cfg.Processing.Boundary = field.Reject.String()

	// Images are expected to arrive normalised
	cfg.Preprocess.Method = string(preprocess.None)
	cfg.Preprocess.TargetMean = 100
	cfg.Preprocess.TargetVariance = 100
	cfg.Preprocess.Alpha = 150
	cfg.Preprocess.Gamma = 95
	cfg.Preprocess.MaskThreshold = 0.1

	cfg.Orientation.SmoothRadius = 1

	cfg.Frequency.MinPeriod = 5
	cfg.Frequency.MaxPeriod = 15
	cfg.Frequency.PeakWidth = 3
	cfg.Frequency.MinProminence = 0.1
	cfg.Frequency.SmoothRadius = 3

	cfg.Features.BifurcationType = models.Bifurcation

	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that every value is usable by the pipeline.
func (c *Config) Validate() error {
	switch {
	case c.Processing.NumCores < 0:
		return fmt.Errorf("%w: numCores must not be negative, got %d", ErrInvalidConfig, c.Processing.NumCores)
	case c.Processing.BlockSize <= 0:
		return fmt.Errorf("%w: blockSize must be positive, got %d", ErrInvalidConfig, c.Processing.BlockSize)
	case c.Orientation.SmoothRadius < 0:
		return fmt.Errorf("%w: orientation smoothRadius must not be negative", ErrInvalidConfig)
	case c.Frequency.SmoothRadius < 0:
		return fmt.Errorf("%w: frequency smoothRadius must not be negative", ErrInvalidConfig)
	case c.Frequency.MinPeriod <= 0 || c.Frequency.MaxPeriod < c.Frequency.MinPeriod:
		return fmt.Errorf("%w: period range [%g, %g] is empty or not positive",
			ErrInvalidConfig, c.Frequency.MinPeriod, c.Frequency.MaxPeriod)
	case c.Frequency.PeakWidth < 3 || c.Frequency.PeakWidth%2 == 0:
		return fmt.Errorf("%w: peakWidth must be an odd number of at least 3, got %d",
			ErrInvalidConfig, c.Frequency.PeakWidth)
	case c.Frequency.MinProminence < 0 || c.Frequency.MinProminence > 1:
		return fmt.Errorf("%w: minProminence must lie in [0, 1], got %g",
			ErrInvalidConfig, c.Frequency.MinProminence)
	case c.Preprocess.MaskThreshold < 0:
		return fmt.Errorf("%w: maskThreshold must not be negative", ErrInvalidConfig)
	}

	if _, err := field.ParseBoundary(c.Processing.Boundary); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := preprocess.ParseMethod(c.Preprocess.Method); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads the YAML file at configPath over DefaultConfig and
// validates the result. A missing file is not an error: the defaults are
// returned as they are.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig validates cfg and writes it to configPath as YAML, creating
// missing parent directories. An invalid cfg leaves the file system
// untouched.
func SaveConfig(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile writes DefaultConfig to configPath. It refuses to
// replace a file that already exists.
func CreateDefaultConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file %s: %w", configPath, fs.ErrExist)
	}
	return SaveConfig(DefaultConfig(), configPath)
}
