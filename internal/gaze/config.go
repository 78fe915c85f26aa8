package gaze

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Gate selects the block applied to the backbone's feature map.
type Gate string

// Supported gates.
const (
	GateCovariance Gate = "covariance" // second-order channel gating
	GateSpatial    Gate = "spatial"    // max-pooled single-channel attention mask
	GateNone       Gate = "none"       // backbone output unchanged
)

// Config captures the model hyperparameters.
type Config struct {
	Depth        int   `yaml:"depth"`
	BaseChannels int   `yaml:"base_channels"`
	InputShape   []int `yaml:"input_shape"` // [C, H, W]
	PoseDim      int   `yaml:"pose_dim"`
	HiddenDim    int   `yaml:"hidden_dim"` // fc1 width
	OutputDim    int   `yaml:"output_dim"`
	Gate         Gate  `yaml:"gate"`
	Seed         int64 `yaml:"seed"`
	Training     bool  `yaml:"training"` // BatchNorm uses batch statistics
}

// Overrides captures CLI supplied values. Zero values leave the config unchanged.
type Overrides struct {
	Depth    int
	Gate     string
	Seed     int64
	Training bool
}

// DefaultConfig returns the eye-image configuration: depth 8, 16 base
// channels, 3x36x60 input, 2-D head pose and a covariance gate.
func DefaultConfig() Config {
	return Config{
		Depth:        8,
		BaseChannels: 16,
		InputShape:   []int{3, 36, 60},
		PoseDim:      2,
		HiddenDim:    62,
		OutputDim:    2,
		Gate:         GateCovariance,
		Seed:         1,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Depth > 0 {
		c.Depth = o.Depth
	}
	if o.Gate != "" {
		c.Gate = Gate(o.Gate)
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Training {
		c.Training = true
	}
}

// BlocksPerStage returns (Depth-2)/6, the number of residual blocks in each stage.
func (c Config) BlocksPerStage() int {
	return (c.Depth - 2) / 6
}

// Validate verifies the config describes a buildable model.
func (c Config) Validate() error {
	if c.Depth < 8 || (c.Depth-2)%6 != 0 {
		return fmt.Errorf("%w: %d (need depth >= 8 with (depth-2) divisible by 6)", ErrInvalidDepth, c.Depth)
	}
	if c.BaseChannels <= 0 {
		return fmt.Errorf("%w: base_channels must be > 0 (got %d)", ErrInvalidConfig, c.BaseChannels)
	}
	if len(c.InputShape) != 3 {
		return fmt.Errorf("%w: input_shape must be [C, H, W] (got %v)", ErrInvalidConfig, c.InputShape)
	}
	for _, d := range c.InputShape {
		if d <= 0 {
			return fmt.Errorf("%w: input_shape dimensions must be > 0 (got %v)", ErrInvalidConfig, c.InputShape)
		}
	}
	if c.PoseDim <= 0 || c.HiddenDim <= 0 || c.OutputDim <= 0 {
		return fmt.Errorf("%w: pose_dim, hidden_dim and output_dim must be > 0 (got %d, %d, %d)",
			ErrInvalidConfig, c.PoseDim, c.HiddenDim, c.OutputDim)
	}
	switch c.Gate {
	case GateCovariance, GateNone:
	case GateSpatial:
		if h, w := c.featureHW(); h < 2 || w < 2 {
			return fmt.Errorf("%w: spatial gate needs a feature map of at least 2x2 (got %dx%d)", ErrInvalidConfig, h, w)
		}
	default:
		return fmt.Errorf("%w: unknown gate %q", ErrInvalidConfig, c.Gate)
	}
	return nil
}

// featureHW returns the backbone's output resolution: two stride-2 stages.
func (c Config) featureHW() (h, w int) {
	h, w = c.InputShape[1], c.InputShape[2]
	for range 2 {
		h = (h-1)/2 + 1
		w = (w-1)/2 + 1
	}
	return h, w
}
