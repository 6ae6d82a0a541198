package vocab

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Reserved tokens. Every vocabulary contains each of them exactly once.
const (
	UnkToken   = "<unk>"
	StartToken = "<start>"
	EndToken   = "<end>"
)

// Vocabulary is a bijection between tokens and the ids in [0, Size()).
type Vocabulary struct {
	tokenToID map[string]int32
	idToToken []string

	unk   int32
	start int32
	end   int32
}

// New builds a Vocabulary from a token -> id mapping.
//
// The mapping must contain the three reserved tokens, and its ids must be
// unique, non-negative and contiguous from zero. The input map is copied.
func New(mapping map[string]int) (*Vocabulary, error) {
	if len(mapping) == 0 {
		return nil, ErrEmpty
	}
	if len(mapping) > math.MaxInt32 {
		return nil, fmt.Errorf("vocabulary size %d exceeds int32 range", len(mapping))
	}

	idToToken := make([]string, len(mapping))
	filled := make([]bool, len(mapping))
	tokenToID := make(map[string]int32, len(mapping))

	for token, id := range mapping {
		if id < 0 {
			return nil, fmt.Errorf("%w: %q -> %d", ErrNegativeID, token, id)
		}
		if id >= len(mapping) {
			return nil, fmt.Errorf("%w: %q -> %d with %d entries", ErrNonContiguous, token, id, len(mapping))
		}
		if filled[id] {
			return nil, fmt.Errorf("%w: %q and %q -> %d", ErrDuplicateID, idToToken[id], token, id)
		}
		filled[id] = true
		idToToken[id] = token
		tokenToID[token] = int32(id) //nolint:gosec // G115: bounded by len(mapping) checked above.
	}

	v := &Vocabulary{
		tokenToID: tokenToID,
		idToToken: idToToken,
	}

	for _, reserved := range []struct {
		token string
		dst   *int32
	}{
		{UnkToken, &v.unk},
		{StartToken, &v.start},
		{EndToken, &v.end},
	} {
		id, ok := tokenToID[reserved.token]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingReserved, reserved.token)
		}
		*reserved.dst = id
	}

	return v, nil
}

// Load reads a vocabulary from a JSON file holding a single token -> id object.
func Load(path string) (*Vocabulary, error) {
	//nolint:gosec // G304: vocabulary path comes from configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON token -> id object.
func Parse(data []byte) (*Vocabulary, error) {
	var mapping map[string]int
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary JSON: %w", err)
	}
	return New(mapping)
}

// Size returns the number of entries.
func (v *Vocabulary) Size() int {
	return len(v.idToToken)
}

// UnkID returns the id of <unk>.
func (v *Vocabulary) UnkID() int32 { return v.unk }

// StartID returns the id of <start>.
func (v *Vocabulary) StartID() int32 { return v.start }

// EndID returns the id of <end>.
func (v *Vocabulary) EndID() int32 { return v.end }

// IsReserved reports whether id belongs to <unk>, <start> or <end>.
func (v *Vocabulary) IsReserved(id int32) bool {
	return id == v.unk || id == v.start || id == v.end
}

// LookupID returns the id of token, or the id of <unk> if token is absent.
func (v *Vocabulary) LookupID(token string) int32 {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	return v.unk
}

// Contains reports whether token has its own entry.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.tokenToID[token]
	return ok
}

// LookupToken returns the token for id, or "<unk>" if id is out of range.
func (v *Vocabulary) LookupToken(id int32) string {
	if id < 0 || int(id) >= len(v.idToToken) {
		return UnkToken
	}
	return v.idToToken[id]
}

// Encode maps tokens to ids. The second result counts tokens that were
// substituted with <unk>; a literal "<unk>" in the input is not counted.
func (v *Vocabulary) Encode(tokens []string) ([]int32, int) {
	ids := make([]int32, len(tokens))
	unknown := 0
	for i, token := range tokens {
		id, ok := v.tokenToID[token]
		if !ok {
			id = v.unk
			unknown++
		}
		ids[i] = id
	}
	return ids, unknown
}

// Decode maps ids back to tokens.
func (v *Vocabulary) Decode(ids []int32) []string {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = v.LookupToken(id)
	}
	return tokens
}
