package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.Processing.BlockSize)
	assert.Equal(t, "reject", cfg.Processing.Boundary)
	assert.Equal(t, 3, cfg.Frequency.SmoothRadius)
	assert.Equal(t, 1, cfg.Features.BifurcationType)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Processing.NumCores = 3
	cfg.Processing.Boundary = "pad"
	cfg.Frequency.MaxPeriod = 12
	cfg.Preprocess.Method = "stretch"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("processing:\n  blockSize: 8\nfrequency:\n  minProminence: 0.25\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Processing.BlockSize)
	assert.Equal(t, 0.25, cfg.Frequency.MinProminence)
	assert.Equal(t, 15.0, cfg.Frequency.MaxPeriod)
	assert.Equal(t, 1, cfg.Orientation.SmoothRadius)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing:\n  boundary: wrap\n"), 0644))

	_, err := LoadConfig(path)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)

	require.NoError(t, os.WriteFile(path, []byte("processing: [1, 2\n"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"block size":     func(c *Config) { c.Processing.BlockSize = 0 },
		"negative cores": func(c *Config) { c.Processing.NumCores = -1 },
		"period range":   func(c *Config) { c.Frequency.MinPeriod, c.Frequency.MaxPeriod = 10, 5 },
		"even width":     func(c *Config) { c.Frequency.PeakWidth = 4 },
		"prominence":     func(c *Config) { c.Frequency.MinProminence = 2 },
		"smooth radius":  func(c *Config) { c.Orientation.SmoothRadius = -1 },
		"method":         func(c *Config) { c.Preprocess.Method = "histeq" },
		"boundary":       func(c *Config) { c.Processing.Boundary = "mirror" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// An existing file is left alone
	require.NoError(t, os.WriteFile(path, []byte("processing:\n  blockSize: 8\n"), 0644))
	err = CreateDefaultConfigFile(path)
	assert.True(t, errors.Is(err, fs.ErrExist), "got %v", err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "processing:\n  blockSize: 8\n", string(data))
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Processing.BlockSize = 0

	err := SaveConfig(cfg, path)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "file written for invalid config")
}

func TestLoadConfigUnreadable(t *testing.T) {
	// A directory exists but cannot be read as a file
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
