// Package config loads the transcoder configuration file.
//
// The file is YAML. Every field is optional; omitted fields keep the values
// of Default, which reproduce the published models. Example:
//
//	model:
//	  vocab_size: 12006
//	  max_length: 100
//	  device: auto
//	vocabulary: vocabulary.json
//	models:
//	  cpp-to-pseudo: cpp_to_pseudo_epoch_1.safetensors
//	  pseudo-to-cpp: transformer_epoch_1.safetensors
//	decode:
//	  max_steps: 50
//	tokenizer:
//	  splitter: whitespace
//	log:
//	  level: info
//	  format: text
//
// Relative paths are resolved against the directory holding the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/transcoder/internal/generate"
	"github.com/born-ml/transcoder/internal/nn"
	"github.com/born-ml/transcoder/internal/registry"
	"github.com/born-ml/transcoder/internal/tokenizer"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete transcoder configuration.
type Config struct {
	Model      nn.Config                     `yaml:"model"`
	Vocabulary string                        `yaml:"vocabulary"`
	Models     map[registry.Direction]string `yaml:"models"`
	Decode     DecodeConfig                  `yaml:"decode"`
	Tokenizer  tokenizer.Options             `yaml:"tokenizer"`
	Log        LogConfig                     `yaml:"log"`
}

// DecodeConfig controls greedy decoding and rendering.
type DecodeConfig struct {
	MaxSteps      int  `yaml:"max_steps"`
	KeepEndMarker bool `yaml:"keep_end_marker"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration of the published models.
func Default() *Config {
	return &Config{
		Model:      nn.DefaultConfig(),
		Vocabulary: "vocabulary.json",
		Models: map[registry.Direction]string{
			registry.CppToPseudo: "cpp_to_pseudo_epoch_1.safetensors",
			registry.PseudoToCpp: "transformer_epoch_1.safetensors",
		},
		Decode: DecodeConfig{
			MaxSteps: generate.DefaultMaxSteps,
		},
		Tokenizer: tokenizer.DefaultOptions(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads, resolves and validates the file at path.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: path is the operator-supplied config file.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ResolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default. Unknown keys are rejected. Paths are left
// as written and the result is not validated.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

// ResolvePaths makes relative vocabulary and weights paths relative to dir.
func (c *Config) ResolvePaths(dir string) {
	c.Vocabulary = resolve(dir, c.Vocabulary)
	for d, p := range c.Models {
		c.Models[d] = resolve(dir, p)
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("%w: model: %w", ErrInvalid, err)
	}
	if c.Vocabulary == "" {
		return fmt.Errorf("%w: vocabulary path is empty", ErrInvalid)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("%w: no models configured", ErrInvalid)
	}
	for d, p := range c.Models {
		if _, err := registry.ParseDirection(string(d)); err != nil {
			return fmt.Errorf("%w: models: %w", ErrInvalid, err)
		}
		if p == "" {
			return fmt.Errorf("%w: models: empty path for %s", ErrInvalid, d)
		}
	}

	if c.Decode.MaxSteps <= 0 {
		return fmt.Errorf("%w: decode.max_steps must be positive, got %d", ErrInvalid, c.Decode.MaxSteps)
	}
	// The last step feeds <start> plus max_steps-1 generated ids.
	if c.Decode.MaxSteps > c.Model.MaxLength {
		return fmt.Errorf("%w: decode.max_steps (%d) exceeds model.max_length (%d)",
			ErrInvalid, c.Decode.MaxSteps, c.Model.MaxLength)
	}

	if _, err := tokenizerKind(c.Tokenizer.Kind); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

func tokenizerKind(k tokenizer.Kind) (tokenizer.Kind, error) {
	switch k {
	case tokenizer.KindWhitespace, tokenizer.KindRegexp, tokenizer.KindTikToken, "":
		return k, nil
	default:
		return "", fmt.Errorf("%w: tokenizer.splitter: %w: %q", ErrInvalid, tokenizer.ErrUnknownSplitter, k)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return level, nil
}

// NewLogger builds the logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
