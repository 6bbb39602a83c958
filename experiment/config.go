package experiment

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the knobs of one experiment run.
type Config struct {
	TrainPath    string  `yaml:"train_path"`
	TestPath     string  `yaml:"test_path"`
	HiddenSize   int     `yaml:"hidden_size"`
	LearningRate float64 `yaml:"learning_rate"`
	PrintEvery   int     `yaml:"print_every"`
	Seed         int64   `yaml:"seed"`
	DBPath       string  `yaml:"db_path"`
	ReportPath   string  `yaml:"report_path"`
	Verbose      bool    `yaml:"verbose"`
}

// Overrides captures CLI supplied values. Zero values leave the config alone.
type Overrides struct {
	TrainPath    string
	TestPath     string
	HiddenSize   int
	LearningRate float64
	PrintEvery   int
	Seed         int64
	DBPath       string
	ReportPath   string
}

const defaultPrintEvery = 100

// DefaultConfig returns the settings of the original optdigits experiment.
func DefaultConfig() Config {
	return Config{
		TrainPath:    "optical_recognition_of_handwritten_digits/optdigits-orig.tra",
		TestPath:     "optical_recognition_of_handwritten_digits/optdigits-orig.cv",
		LearningRate: 0.01,
		PrintEvery:   defaultPrintEvery,
		Seed:         42,
		Verbose:      true,
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.TrainPath != "" {
		c.TrainPath = o.TrainPath
	}
	if o.TestPath != "" {
		c.TestPath = o.TestPath
	}
	if o.HiddenSize > 0 {
		c.HiddenSize = o.HiddenSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.PrintEvery > 0 {
		c.PrintEvery = o.PrintEvery
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.ReportPath != "" {
		c.ReportPath = o.ReportPath
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.TrainPath == "" {
		return errors.New("train_path must be set")
	}
	if c.TestPath == "" {
		return errors.New("test_path must be set")
	}
	if c.HiddenSize < 0 {
		return fmt.Errorf("hidden_size must be >= 0 (got %d)", c.HiddenSize)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return fmt.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.PrintEvery < 0 {
		return fmt.Errorf("print_every must be >= 0 (got %d)", c.PrintEvery)
	}
	return nil
}

// printInterval is the number of epochs between progress lines; 0 means the default.
func (c *Config) printInterval() int {
	if c.PrintEvery <= 0 {
		return defaultPrintEvery
	}
	return c.PrintEvery
}
