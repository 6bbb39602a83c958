package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	content := `
train_path: data/train.tra
test_path: data/test.cv
hidden_size: 64
learning_rate: 0.05
print_every: 10
seed: 7
db_path: data/runs.db
verbose: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data/train.tra", cfg.TrainPath)
	assert.Equal(t, "data/test.cv", cfg.TestPath)
	assert.Equal(t, 64, cfg.HiddenSize)
	assert.Equal(t, 0.05, cfg.LearningRate)
	assert.Equal(t, 10, cfg.PrintEvery)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "data/runs.db", cfg.DBPath)
	assert.Empty(t, cfg.ReportPath)
	assert.False(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hidden_size: 16\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	defaults := DefaultConfig()
	assert.Equal(t, 16, cfg.HiddenSize)
	assert.Equal(t, defaults.TrainPath, cfg.TrainPath)
	assert.Equal(t, defaults.LearningRate, cfg.LearningRate)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hidden_size: [1, 2\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides(Overrides{
		TestPath:     "other.cv",
		LearningRate: 0.5,
		Seed:         9,
	})

	assert.Equal(t, DefaultConfig().TrainPath, cfg.TrainPath)
	assert.Equal(t, "other.cv", cfg.TestPath)
	assert.Equal(t, 0.5, cfg.LearningRate)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, 100, cfg.PrintEvery)
	assert.Zero(t, cfg.HiddenSize)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"no train path":   func(c *Config) { c.TrainPath = "" },
		"no test path":    func(c *Config) { c.TestPath = "" },
		"negative hidden": func(c *Config) { c.HiddenSize = -1 },
		"zero rate":       func(c *Config) { c.LearningRate = 0 },
		"negative rate":   func(c *Config) { c.LearningRate = -0.1 },
		"negative print":  func(c *Config) { c.PrintEvery = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.PrintEvery = 0
	before := cfg
	require.NoError(t, cfg.Validate())
	assert.Equal(t, before, cfg, "Validate must not change the config")
	assert.Equal(t, defaultPrintEvery, cfg.printInterval())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
