package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/nn"
)

// Defaults applied by Validate.
const (
	DefaultEpochs        = 1
	DefaultProgressEvery = nn.DefaultProgressEvery
)

// Config captures the knobs for a training run.
type Config struct {
	Structure     []int            `yaml:"structure"`
	LearningRate  float64          `yaml:"learning_rate"`
	Normalization nn.Normalization `yaml:"normalization"`
	Seed          uint64           `yaml:"seed"`
	Epochs        int              `yaml:"epochs"`
	ProgressEvery int              `yaml:"progress_every"`
	MaxSamples    int              `yaml:"max_samples"`
	Workers       int              `yaml:"workers"`

	TrainImages string `yaml:"train_images"`
	TrainLabels string `yaml:"train_labels"`
	TestImages  string `yaml:"test_images"`
	TestLabels  string `yaml:"test_labels"`
	ModelPath   string `yaml:"model_path"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	LearningRate  float64
	Seed          uint64
	Epochs        int
	ProgressEvery int
	MaxSamples    int
	ModelPath     string
}

// Load reads and validates a Config from a YAML file.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path is supplied on the command line
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML without validating. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.ProgressEvery > 0 {
		c.ProgressEvery = o.ProgressEvery
	}
	if o.MaxSamples > 0 {
		c.MaxSamples = o.MaxSamples
	}
	if o.ModelPath != "" {
		c.ModelPath = o.ModelPath
	}
}

// Validate verifies the config is runnable and fills in defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Structure) < 2 {
		return fmt.Errorf("structure needs at least 2 entries (got %v)", c.Structure)
	}
	for i, size := range c.Structure {
		if size <= 0 {
			return fmt.Errorf("structure[%d] must be > 0 (got %d)", i, size)
		}
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.LearningRate == 0 {
		c.LearningRate = nn.DefaultLearningRate
	}
	c.Normalization.Method = nn.ParseNormalizationMethod(string(c.Normalization.Method))
	if c.Normalization.Method == nn.NormalizeByConstant && c.Normalization.Constant == 0 {
		return errors.New("normalization.constant must be non-zero for ByConstant")
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.Epochs == 0 {
		c.Epochs = DefaultEpochs
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = DefaultProgressEvery
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must be >= 0 (got %d)", c.MaxSamples)
	}
	if c.TrainImages == "" {
		return errors.New("train_images must be set")
	}
	if c.TrainLabels == "" && !dataset.IsCSV(c.TrainImages) {
		return errors.New("train_labels must be set for IDX data")
	}
	if c.TestImages == "" && c.TestLabels != "" {
		return errors.New("test_labels set without test_images")
	}
	if c.TestImages != "" && c.TestLabels == "" && !dataset.IsCSV(c.TestImages) {
		return errors.New("test_labels must be set for IDX data")
	}
	return nil
}

// NetworkConfig returns the network configuration described by c.
func (c *Config) NetworkConfig() nn.Config {
	return nn.Config{
		Structure:     c.Structure,
		LearningRate:  c.LearningRate,
		Normalization: c.Normalization,
		ProgressEvery: c.ProgressEvery,
		Workers:       c.Workers,
	}
}
