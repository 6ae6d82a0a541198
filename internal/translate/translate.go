// Package translate turns token sequences of one language into the other by
// greedy decoding over a direction's network.
package translate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/transcoder/internal/generate"
	"github.com/born-ml/transcoder/internal/registry"
	"github.com/born-ml/transcoder/internal/tokenizer"
	"github.com/born-ml/transcoder/internal/vocab"
)

// ErrEmptyInput is returned by TranslateText for blank text.
var ErrEmptyInput = errors.New("empty input text")

// Output is the result of one translation.
type Output struct {
	IDs           []int32  // Generated ids, excluding <start>; includes <end> if emitted
	Tokens        []string // Rendered tokens
	Text          string   // Tokens joined with single spaces
	Steps         int      // Decoding steps performed
	Reason        string   // generate.ReasonEOS or generate.ReasonMaxSteps
	UnknownTokens int      // Input tokens substituted with <unk>
}

// Translate greedily decodes tokens with model.
//
// Unknown input tokens map to <unk>. The rendered Tokens omit a trailing
// <end>; IDs keep it. maxSteps <= 0 selects generate.DefaultMaxSteps.
func Translate(model generate.Model, v *vocab.Vocabulary, tokens []string, maxSteps int) (*Output, error) {
	return run(model, v, tokens, maxSteps, false)
}

func run(model generate.Model, v *vocab.Vocabulary, tokens []string, maxSteps int, keepEnd bool) (*Output, error) {
	src, unknown := v.Encode(tokens)

	dec := generate.NewDecoder(model, generate.Config{
		StartID:  v.StartID(),
		EndID:    v.EndID(),
		MaxSteps: maxSteps,
	})
	res, err := dec.Decode(src)
	if err != nil {
		return nil, err
	}

	rendered := res.IDs
	if !keepEnd && len(rendered) > 0 && rendered[len(rendered)-1] == v.EndID() {
		rendered = rendered[:len(rendered)-1]
	}
	out := v.Decode(rendered)

	return &Output{
		IDs:           res.IDs,
		Tokens:        out,
		Text:          strings.Join(out, " "),
		Steps:         res.Steps,
		Reason:        res.Reason,
		UnknownTokens: unknown,
	}, nil
}

// Models resolves a direction to its network. *registry.Registry implements it.
type Models interface {
	Model(direction registry.Direction) (generate.Model, error)
}

// Translator serves translation requests for both directions.
//
// It is safe for concurrent use.
type Translator struct {
	models   Models
	vocab    *vocab.Vocabulary
	splitter tokenizer.Splitter
	logger   *slog.Logger

	maxSteps      int
	keepEndMarker bool
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the request logger. nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithSplitter sets the splitter TranslateText uses. Default: whitespace.
func WithSplitter(s tokenizer.Splitter) Option {
	return func(t *Translator) {
		if s != nil {
			t.splitter = s
		}
	}
}

// WithMaxSteps bounds generated tokens per request. Default: 50.
func WithMaxSteps(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.maxSteps = n
		}
	}
}

// WithKeepEndMarker renders a trailing <end> instead of stripping it.
func WithKeepEndMarker(keep bool) Option {
	return func(t *Translator) {
		t.keepEndMarker = keep
	}
}

// NewTranslator creates a Translator over models and the shared vocabulary.
func NewTranslator(models Models, v *vocab.Vocabulary, opts ...Option) *Translator {
	t := &Translator{
		models:   models,
		vocab:    v,
		splitter: tokenizer.Whitespace{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxSteps: generate.DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate translates tokens in direction.
func (t *Translator) Translate(direction registry.Direction, tokens []string) (*Output, error) {
	requestID := uuid.NewString()
	logger := t.logger.With("request_id", requestID, "direction", direction)
	start := time.Now()

	model, err := t.models.Model(direction)
	if err != nil {
		logger.Error("translation failed", "error", err)
		return nil, err
	}

	out, err := run(model, t.vocab, tokens, t.maxSteps, t.keepEndMarker)
	if err != nil {
		logger.Error("translation failed", "input_tokens", len(tokens), "error", err)
		return nil, fmt.Errorf("translate %s: %w", direction, err)
	}

	if out.UnknownTokens > 0 {
		logger.Debug("unknown tokens substituted", "count", out.UnknownTokens)
	}
	logger.Info("translated",
		"input_tokens", len(tokens),
		"unknown_tokens", out.UnknownTokens,
		"output_tokens", len(out.Tokens),
		"steps", out.Steps,
		"reason", out.Reason,
		"duration", time.Since(start))
	return out, nil
}

// TranslateText splits text with the configured splitter and translates it.
//
// Returns ErrEmptyInput if text has no tokens.
func (t *Translator) TranslateText(direction registry.Direction, text string) (*Output, error) {
	tokens, err := t.splitter.Split(strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}
	return t.Translate(direction, tokens)
}

// Splitter returns the configured splitter.
func (t *Translator) Splitter() tokenizer.Splitter { return t.splitter }
