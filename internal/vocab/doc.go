// Package vocab implements the immutable token <-> id mapping shared by both
// translation directions.
//
// A Vocabulary is built once from a JSON object of the form
//
//	{"<unk>": 0, "<start>": 1, "<end>": 2, "int": 3, ...}
//
// and is never mutated afterwards, so a single instance may be shared by any
// number of concurrent translation requests.
//
// Lookups never fail: unknown tokens map to the id of <unk>, and ids outside
// the vocabulary render as the literal "<unk>".
package vocab
