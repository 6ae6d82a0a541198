package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitespace_Split(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "int x = 5 ;", []string{"int", "x", "=", "5", ";"}},
		{"runs and newlines", "  a\t\tb\n c  ", []string{"a", "b", "c"}},
		{"blank", "   \n", []string{}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Whitespace{}.Split(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegexp_DefaultPattern(t *testing.T) {
	r, err := NewRegexp(DefaultPattern)
	require.NoError(t, err)
	assert.Equal(t, "regexp", r.Name())

	tests := []struct {
		text string
		want []string
	}{
		{
			"for(int i=0;i<n;i++)",
			[]string{"for", "(", "int", "i", "=", "0", ";", "i", "<", "n", ";", "i", "++", ")"},
		},
		{
			`cout<<"a b"<<x;`,
			[]string{"cout", "<<", `"a b"`, "<<", "x", ";"},
		},
		{
			"x+=3.5; if(a&&b!=c) p->q = 'z';",
			[]string{"x", "+=", "3.5", ";", "if", "(", "a", "&&", "b", "!=", "c", ")", "p", "->", "q", "=", "'z'", ";"},
		},
		{
			"std::vector<int> v;",
			[]string{"std", "::", "vector", "<", "int", ">", "v", ";"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := r.Split(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := r.Split("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRegexp_CustomPattern(t *testing.T) {
	// Lookahead is regexp2-only syntax.
	r, err := NewRegexp(`\w+(?=;)`)
	require.NoError(t, err)

	got, err := r.Split("a; b c;")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, got)

	_, err = NewRegexp(`(unclosed`)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, "whitespace", s.Name())

	s, err = New(Options{Kind: KindRegexp})
	require.NoError(t, err)
	assert.Equal(t, DefaultPattern, s.(*Regexp).Pattern())

	_, err = New(Options{Kind: "sentencepiece"})
	assert.ErrorIs(t, err, ErrUnknownSplitter)

	def := DefaultOptions()
	assert.Equal(t, KindWhitespace, def.Kind)
}

func TestTikToken_Split(t *testing.T) {
	tok, err := NewTikToken("cl100k_base")
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	assert.Equal(t, "tiktoken:cl100k_base", tok.Name())

	got, err := tok.Split("int main() { return 0; }")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "int", got[0])
	assert.Contains(t, got, "return")
	for _, piece := range got {
		assert.NotContains(t, piece, " ")
	}

	got, err = tok.Split("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewTikToken_InvalidEncoding(t *testing.T) {
	tok, err := NewTikToken("invalid_encoding_xyz")
	assert.Error(t, err)
	assert.Nil(t, tok)
}
