// Package tokenizer splits raw input text into vocabulary tokens.
//
// This package wraps the internal tokenizer implementations and provides a
// clean public API.
//
// Supported splitters:
//   - Whitespace: runs of white space (default)
//   - Regexp: matches of a regexp2 pattern (DefaultPattern lexes C-like code)
//   - TikToken: piece boundaries of an OpenAI BPE encoding
//
// Example usage:
//
//	import "github.com/born-ml/transcoder/tokenizer"
//
//	s, err := tokenizer.NewRegexp(tokenizer.DefaultPattern)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tokens, err := s.Split("int x=0;")
//	// ["int", "x", "=", "0", ";"]
package tokenizer

import (
	"github.com/born-ml/transcoder/internal/tokenizer"
)

// Splitter turns raw text into tokens.
type Splitter = tokenizer.Splitter

// Kind selects a Splitter implementation.
type Kind = tokenizer.Kind

// Supported splitter kinds.
const (
	KindWhitespace = tokenizer.KindWhitespace
	KindRegexp     = tokenizer.KindRegexp
	KindTikToken   = tokenizer.KindTikToken
)

// DefaultPattern tokenizes C-like source code.
const DefaultPattern = tokenizer.DefaultPattern

// Options configures New.
type Options = tokenizer.Options

// New builds the splitter described by opts.
func New(opts Options) (Splitter, error) {
	return tokenizer.New(opts)
}

// NewWhitespace returns the whitespace splitter.
func NewWhitespace() Splitter {
	return tokenizer.Whitespace{}
}

// NewRegexp compiles a regexp2 pattern into a splitter.
func NewRegexp(pattern string) (Splitter, error) {
	return tokenizer.NewRegexp(pattern)
}

// NewTikToken creates a splitter from a tiktoken encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string) (Splitter, error) {
	return tokenizer.NewTikToken(encodingName)
}
