package tokenizer

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultPattern tokenizes C-like source: identifiers, numbers, string and
// character literals, multi-character operators, then single punctuation.
const DefaultPattern = `[A-Za-z_]\w*` +
	`|\d+(?:\.\d+)?` +
	`|"(?:\\.|[^"\\])*"` +
	`|'(?:\\.|[^'\\])*'` +
	`|<<=|>>=|<<|>>|\+\+|--|->|::|==|!=|<=|>=|&&|\|\||[+\-*/%&|^]=` +
	`|[^\s\w]`

// matchTimeout bounds a single match against pathological input.
const matchTimeout = time.Second

// Regexp emits every non-overlapping match of a pattern.
//
// Patterns use .NET syntax via dlclark/regexp2, so lookarounds and
// backreferences are available.
type Regexp struct {
	re      *regexp2.Regexp
	pattern string
}

// NewRegexp compiles pattern.
func NewRegexp(pattern string) (*Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile splitter pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = matchTimeout
	return &Regexp{re: re, pattern: pattern}, nil
}

// Split implements Splitter.
func (r *Regexp) Split(text string) ([]string, error) {
	var tokens []string

	m, err := r.re.FindStringMatch(text)
	for m != nil && err == nil {
		if s := m.String(); s != "" {
			tokens = append(tokens, s)
		}
		m, err = r.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	return tokens, nil
}

// Name implements Splitter.
func (r *Regexp) Name() string { return string(KindRegexp) }

// Pattern returns the compiled pattern.
func (r *Regexp) Pattern() string { return r.pattern }
