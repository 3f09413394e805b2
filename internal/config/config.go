// Package config captures the runtime knobs for a training run, loaded
// from YAML with optional CLI overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/garb-ml/garb/internal/nn"
	"github.com/garb-ml/garb/internal/trainer"
)

// Config holds everything one run needs. Zero values are filled in by
// Default before validation.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	PhotosDir string `yaml:"photos_dir"` // optional, skip photo classification when empty

	MaxEpochs   int     `yaml:"max_epochs"`
	BatchSize   int     `yaml:"batch_size"`
	Patience    int     `yaml:"patience"`
	CheckEvery  int     `yaml:"check_every"`
	LR          float32 `yaml:"lr"`
	ValFraction float64 `yaml:"val_fraction"`
	Seed        int64   `yaml:"seed"`

	Conv1   int `yaml:"conv1"`
	Conv2   int `yaml:"conv2"`
	Hidden1 int `yaml:"hidden1"`
	Hidden2 int `yaml:"hidden2"`

	InvertPhotos bool `yaml:"invert_photos"`
}

// Overrides captures CLI supplied values. Zero means "not set".
type Overrides struct {
	DataDir     string
	PhotosDir   string
	MaxEpochs   int
	BatchSize   int
	Patience    int
	CheckEvery  int
	LR          float64
	ValFraction float64
	Seed        int64
}

// Default returns the configuration used when no file or flag says
// otherwise.
func Default() *Config {
	model := nn.DefaultClassifierConfig()
	return &Config{
		DataDir:     "data",
		MaxEpochs:   10,
		BatchSize:   64,
		Patience:    5,
		CheckEvery:  100,
		LR:          0.001,
		ValFraction: 0.1,
		Seed:        42,
		Conv1:       model.Conv1,
		Conv2:       model.Conv2,
		Hidden1:     model.Hidden1,
		Hidden2:     model.Hidden2,
	}
}

// Load reads a Config from YAML, starting from defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.PhotosDir != "" {
		c.PhotosDir = o.PhotosDir
	}
	if o.MaxEpochs > 0 {
		c.MaxEpochs = o.MaxEpochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Patience > 0 {
		c.Patience = o.Patience
	}
	if o.CheckEvery > 0 {
		c.CheckEvery = o.CheckEvery
	}
	if o.LR > 0 {
		c.LR = float32(o.LR)
	}
	if o.ValFraction > 0 {
		c.ValFraction = o.ValFraction
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must be set")
	}
	if err := c.Trainer().Validate(); err != nil {
		return err
	}
	if err := c.Model().Validate(); err != nil {
		return err
	}
	if c.LR <= 0 {
		return fmt.Errorf("config: lr must be > 0 (got %g)", c.LR)
	}
	if c.ValFraction <= 0 || c.ValFraction >= 1 {
		return fmt.Errorf("config: val_fraction must be in (0, 1) (got %g)", c.ValFraction)
	}
	return nil
}

// Trainer returns the training-loop slice of the config.
func (c *Config) Trainer() trainer.Config {
	return trainer.Config{
		MaxEpochs:  c.MaxEpochs,
		BatchSize:  c.BatchSize,
		Patience:   c.Patience,
		CheckEvery: c.CheckEvery,
		Seed:       c.Seed,
	}
}

// Model returns the classifier architecture slice of the config.
func (c *Config) Model() nn.ClassifierConfig {
	return nn.ClassifierConfig{
		Conv1:   c.Conv1,
		Conv2:   c.Conv2,
		Hidden1: c.Hidden1,
		Hidden2: c.Hidden2,
	}
}
