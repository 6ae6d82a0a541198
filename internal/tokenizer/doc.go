// Package tokenizer splits raw input text into the word-level tokens looked
// up in the vocabulary.
//
// Three splitters are provided:
//   - Whitespace: splits on runs of Unicode white space (the default)
//   - Regexp: emits every match of a regular expression, by default a lexer
//     for C-like source code
//   - TikToken: emits the trimmed text pieces of a tiktoken BPE encoding
//
// Example:
//
//	s, _ := tokenizer.New(tokenizer.Options{Kind: tokenizer.KindRegexp})
//	tokens, _ := s.Split("for(int i=0;i<n;i++)")
//	// ["for", "(", "int", "i", "=", "0", ";", "i", "<", "n", ";", "i", "++", ")"]
package tokenizer
