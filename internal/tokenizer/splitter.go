package tokenizer

import (
	"errors"
	"fmt"
	"strings"
)

// Splitter turns raw text into tokens.
type Splitter interface {
	// Split returns the tokens of text in order. Blank text yields no tokens.
	Split(text string) ([]string, error)

	// Name identifies the splitter in logs.
	Name() string
}

// Kind selects a Splitter implementation.
type Kind string

// Supported splitter kinds.
const (
	KindWhitespace Kind = "whitespace"
	KindRegexp     Kind = "regexp"
	KindTikToken   Kind = "tiktoken"
)

// ErrUnknownSplitter is returned by New for an unsupported Kind.
var ErrUnknownSplitter = errors.New("unknown splitter")

// Options configures New.
type Options struct {
	Kind     Kind   `yaml:"splitter"`
	Pattern  string `yaml:"pattern"`  // KindRegexp; empty selects DefaultPattern
	Encoding string `yaml:"encoding"` // KindTikToken; empty selects cl100k_base
}

// DefaultOptions returns whitespace splitting, which reproduces how the
// published models' inputs were tokenized.
func DefaultOptions() Options {
	return Options{
		Kind:     KindWhitespace,
		Pattern:  DefaultPattern,
		Encoding: encodingCL100kBase,
	}
}

// New builds the splitter described by opts. An empty Kind selects
// KindWhitespace.
func New(opts Options) (Splitter, error) {
	switch opts.Kind {
	case KindWhitespace, "":
		return Whitespace{}, nil
	case KindRegexp:
		pattern := opts.Pattern
		if pattern == "" {
			pattern = DefaultPattern
		}
		return NewRegexp(pattern)
	case KindTikToken:
		encoding := opts.Encoding
		if encoding == "" {
			encoding = encodingCL100kBase
		}
		return NewTikToken(encoding)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s, %s)",
			ErrUnknownSplitter, opts.Kind, KindWhitespace, KindRegexp, KindTikToken)
	}
}

// Whitespace splits on runs of white space.
type Whitespace struct{}

// Split implements Splitter.
func (Whitespace) Split(text string) ([]string, error) {
	return strings.Fields(text), nil
}

// Name implements Splitter.
func (Whitespace) Name() string { return string(KindWhitespace) }
