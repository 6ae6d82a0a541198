package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/transcoder/internal/parallel"
)

// Device selects where the network computes.
type Device string

// Supported devices.
const (
	DeviceAuto Device = "auto" // resolve at startup
	DeviceCPU  Device = "cpu"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid model configuration")

// Config holds the architecture hyperparameters shared by every network
// instance built from it.
type Config struct {
	VocabSize      int     `yaml:"vocab_size"`      // Output classes and embedding rows
	MaxLength      int     `yaml:"max_length"`      // Longest source or target sequence
	EmbedDim       int     `yaml:"embed_dim"`       // d_model
	NumHeads       int     `yaml:"num_heads"`       // Attention heads (must divide EmbedDim)
	NumLayers      int     `yaml:"num_layers"`      // Encoder layers and decoder layers each
	FeedForwardDim int     `yaml:"feedforward_dim"` // FFN hidden size
	Dropout        float64 `yaml:"dropout"`         // Training only; inert at inference
	NormEps        float64 `yaml:"norm_eps"`        // LayerNorm epsilon
	Device         Device  `yaml:"device"`

	Parallel parallel.Config `yaml:"parallel"`
}

// DefaultConfig returns the configuration the published checkpoints were
// trained with.
func DefaultConfig() Config {
	return Config{
		VocabSize:      12006,
		MaxLength:      100,
		EmbedDim:       256,
		NumHeads:       8,
		NumLayers:      2,
		FeedForwardDim: 512,
		Dropout:        0.1,
		NormEps:        1e-5,
		Device:         DeviceAuto,
		Parallel:       parallel.DefaultConfig(),
	}
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"vocab_size", c.VocabSize},
		{"max_length", c.MaxLength},
		{"embed_dim", c.EmbedDim},
		{"num_heads", c.NumHeads},
		{"num_layers", c.NumLayers},
		{"feedforward_dim", c.FeedForwardDim},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.value)
		}
	}

	if c.EmbedDim%c.NumHeads != 0 {
		return fmt.Errorf("%w: embed_dim (%d) must be divisible by num_heads (%d)",
			ErrInvalidConfig, c.EmbedDim, c.NumHeads)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("%w: dropout must be in [0, 1), got %g", ErrInvalidConfig, c.Dropout)
	}
	if c.NormEps <= 0 {
		return fmt.Errorf("%w: norm_eps must be positive, got %g", ErrInvalidConfig, c.NormEps)
	}
	if _, err := c.ResolveDevice(); err != nil {
		return err
	}
	return nil
}

// HeadDim returns EmbedDim / NumHeads.
func (c *Config) HeadDim() int {
	return c.EmbedDim / c.NumHeads
}

// ResolveDevice maps the configured device to a concrete one.
//
// Only the CPU is implemented, so "auto" and "" resolve to DeviceCPU.
func (c *Config) ResolveDevice() (Device, error) {
	switch c.Device {
	case DeviceAuto, DeviceCPU, "":
		return DeviceCPU, nil
	default:
		return "", fmt.Errorf("%w: unsupported device %q (supported: auto, cpu)", ErrInvalidConfig, c.Device)
	}
}
