package gaze

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestDefaultConfig tests the default hyperparameters.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Depth)
	assert.Equal(t, 1, cfg.BlocksPerStage())
	assert.Equal(t, []int{3, 36, 60}, cfg.InputShape)
	assert.Equal(t, GateCovariance, cfg.Gate)
	assert.False(t, cfg.Training)

	h, w := cfg.featureHW()
	assert.Equal(t, 9, h)
	assert.Equal(t, 15, w)
}

// TestConfig_Validate tests rejected configurations.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"depth not 6k+2", func(c *Config) { c.Depth = 12 }, ErrInvalidDepth},
		{"depth too small", func(c *Config) { c.Depth = 2 }, ErrInvalidDepth},
		{"zero channels", func(c *Config) { c.BaseChannels = 0 }, ErrInvalidConfig},
		{"rank-2 input", func(c *Config) { c.InputShape = []int{36, 60} }, ErrInvalidConfig},
		{"negative input dim", func(c *Config) { c.InputShape = []int{3, -1, 60} }, ErrInvalidConfig},
		{"zero pose", func(c *Config) { c.PoseDim = 0 }, ErrInvalidConfig},
		{"unknown gate", func(c *Config) { c.Gate = "capsule" }, ErrInvalidConfig},
		{"spatial gate on tiny map", func(c *Config) { c.Gate = GateSpatial; c.InputShape = []int{3, 4, 60} }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), tt.want))
		})
	}
}

// TestLoadConfig tests YAML loading on top of defaults.
func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "depth: 14\ngate: spatial\nseed: 7\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Depth)
	assert.Equal(t, GateSpatial, cfg.Gate)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 16, cfg.BaseChannels, "missing keys keep defaults")
	assert.Equal(t, []int{3, 36, 60}, cfg.InputShape)

	cfg, err = LoadConfig(writeConfig(t, "input_shape: [1, 36, 60]\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 36, 60}, cfg.InputShape)

	cfg, err = LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

// TestLoadConfig_Errors tests unreadable, malformed and invalid files.
func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "depht: 8\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadConfig(writeConfig(t, "depth: 9\n"))
	assert.True(t, errors.Is(err, ErrInvalidDepth))
}

// TestApplyOverrides tests CLI overrides.
func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides(Overrides{})
	assert.Equal(t, DefaultConfig(), cfg)

	cfg.ApplyOverrides(Overrides{Depth: 20, Gate: "none", Seed: 3, Training: true})
	assert.Equal(t, 20, cfg.Depth)
	assert.Equal(t, GateNone, cfg.Gate)
	assert.Equal(t, int64(3), cfg.Seed)
	assert.True(t, cfg.Training)
}
