package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"
)

// TikToken splits text along the piece boundaries of a tiktoken BPE
// encoding, trimming the leading space tiktoken attaches to words.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken loads the named encoding.
//
// tiktoken-go downloads encoding files on first use unless a cache is
// configured through TIKTOKEN_CACHE_DIR.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// Split implements Splitter.
func (t *TikToken) Split(text string) ([]string, error) {
	ids := t.encoding.Encode(text, nil, nil)

	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		piece := strings.TrimSpace(t.encoding.Decode([]int{id}))
		if piece != "" {
			tokens = append(tokens, piece)
		}
	}
	return tokens, nil
}

// Name implements Splitter.
func (t *TikToken) Name() string {
	return string(KindTikToken) + ":" + t.name
}
