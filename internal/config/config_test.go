package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, "max_epochs: 3\nbatch_size: 32\nlr: 0.01\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxEpochs)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, float32(0.01), cfg.LR)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().Patience, cfg.Patience)
	assert.Equal(t, Default().Conv1, cfg.Conv1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "max_epochs: [oops\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{
		DataDir:   "/tmp/fashion",
		MaxEpochs: 7,
		LR:        0.1,
		Seed:      99,
	})

	assert.Equal(t, "/tmp/fashion", cfg.DataDir)
	assert.Equal(t, 7, cfg.MaxEpochs)
	assert.Equal(t, float32(0.1), cfg.LR)
	assert.Equal(t, int64(99), cfg.Seed)
	// Unset overrides leave values alone.
	assert.Equal(t, Default().BatchSize, cfg.BatchSize)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"zero epochs", func(c *Config) { c.MaxEpochs = 0 }},
		{"negative lr", func(c *Config) { c.LR = -1 }},
		{"val fraction too big", func(c *Config) { c.ValFraction = 1 }},
		{"zero conv width", func(c *Config) { c.Conv1 = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
