// Package translate translates between C++ source tokens and pseudocode
// tokens.
//
// This package wraps the internal translation pipeline and provides a clean
// public API:
//
//   - Open: build a Service (vocabulary, both directions, splitter) from a
//     configuration file
//   - Translate: the pure operation over one network and a vocabulary
//   - Translator: per-request logging, direction lookup and text splitting
//
// Example usage:
//
//	import "github.com/born-ml/transcoder/translate"
//
//	svc, err := translate.OpenFile("transcoder.yaml", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := svc.TranslateText(translate.CppToPseudo, "int x = 5 ;")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out.Text)
package translate

import (
	"log/slog"

	"github.com/born-ml/transcoder/internal/config"
	"github.com/born-ml/transcoder/internal/generate"
	"github.com/born-ml/transcoder/internal/registry"
	"github.com/born-ml/transcoder/internal/translate"
	"github.com/born-ml/transcoder/internal/vocab"
)

// Directions

// Direction names a translation direction.
type Direction = registry.Direction

// Supported directions.
const (
	CppToPseudo = registry.CppToPseudo
	PseudoToCpp = registry.PseudoToCpp
)

// ParseDirection validates s as a Direction.
func ParseDirection(s string) (Direction, error) {
	return registry.ParseDirection(s)
}

// Errors

var (
	// ErrUnknownDirection reports an unsupported direction name.
	ErrUnknownDirection = registry.ErrUnknownDirection

	// ErrDirectionUnavailable reports a direction without loaded weights.
	ErrDirectionUnavailable = registry.ErrDirectionUnavailable

	// ErrEmptyInput reports blank input text.
	ErrEmptyInput = translate.ErrEmptyInput
)

// Translation

// Output is the result of one translation.
//
// Fields:
//   - IDs: generated ids without <start>, with <end> if emitted
//   - Tokens: rendered tokens (trailing <end> stripped unless configured)
//   - Text: Tokens joined with single spaces
//   - Steps, Reason: decoding steps and stop reason ("eos" or "max_steps")
//   - UnknownTokens: input tokens substituted with <unk>
type Output = translate.Output

// Model is a network the greedy decoder can drive.
type Model = generate.Model

// Vocabulary is the shared token <-> id mapping.
type Vocabulary = vocab.Vocabulary

// LoadVocabulary reads a JSON {token: id} vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	return vocab.Load(path)
}

// Translate greedily decodes tokens with model (at most maxSteps tokens,
// 0 selects 50).
//
// Example:
//
//	out, err := translate.Translate(model, v, []string{"int", "x", ";"}, 0)
func Translate(model Model, v *Vocabulary, tokens []string, maxSteps int) (*Output, error) {
	return translate.Translate(model, v, tokens, maxSteps)
}

// Translator serves requests for both directions.
type Translator = translate.Translator

// Option configures a Translator.
type Option = translate.Option

// Models resolves a direction to its network.
type Models = translate.Models

// NewTranslator creates a Translator.
func NewTranslator(models Models, v *Vocabulary, opts ...Option) *Translator {
	return translate.NewTranslator(models, v, opts...)
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option { return translate.WithLogger(logger) }

// WithMaxSteps bounds generated tokens per request.
func WithMaxSteps(n int) Option { return translate.WithMaxSteps(n) }

// WithKeepEndMarker renders a trailing <end> instead of stripping it.
func WithKeepEndMarker(keep bool) Option { return translate.WithKeepEndMarker(keep) }

// Service

// Service bundles the translator with the vocabulary and model registry it
// was built from.
type Service = translate.Service

// Config is the YAML configuration.
type Config = config.Config

// DefaultConfig returns the configuration of the published models.
func DefaultConfig() *Config {
	return config.Default()
}

// Open builds a Service from cfg.
func Open(cfg *Config, logger *slog.Logger) (*Service, error) {
	return translate.Open(cfg, logger)
}

// OpenFile loads the configuration file at path and builds a Service.
func OpenFile(path string, logger *slog.Logger) (*Service, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return translate.Open(cfg, logger)
}
