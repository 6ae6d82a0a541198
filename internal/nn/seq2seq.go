package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Seq2SeqTransformer is the encoder-decoder translation network.
//
// Architecture:
//
//	src ids -> Embedding * sqrt(E) -> + PE -> Encoder ------------+
//	                                                               | memory
//	tgt ids -> Embedding * sqrt(E) -> + PE -> Decoder (causal) <--+
//	                                             -> fc_out -> logits [len(tgt), vocab]
//
// Source and target share one embedding table and one positional table.
// The network is read-only after construction and LoadStateDict, so Forward
// is safe for concurrent use.
type Seq2SeqTransformer struct {
	cfg *Config

	Embedding  *Embedding
	Positional *PositionalEncoding
	Encoder    *Encoder
	Decoder    *Decoder
	FCOut      *Linear
}

// NewSeq2SeqTransformer builds a randomly initialized network for cfg.
//
// Returns an error wrapping ErrInvalidConfig if cfg fails validation.
func NewSeq2SeqTransformer(cfg *Config) (*Seq2SeqTransformer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Seq2SeqTransformer{
		cfg:        cfg,
		Embedding:  NewEmbedding(cfg.VocabSize, cfg.EmbedDim),
		Positional: NewPositionalEncoding(cfg.MaxLength, cfg.EmbedDim),
		Encoder:    NewEncoder(cfg),
		Decoder:    NewDecoder(cfg),
		FCOut:      NewLinear(cfg.EmbedDim, cfg.VocabSize),
	}, nil
}

// Config returns the configuration the network was built with.
func (m *Seq2SeqTransformer) Config() *Config { return m.cfg }

// VocabSize returns the number of output classes.
func (m *Seq2SeqTransformer) VocabSize() int { return m.cfg.VocabSize }

// Forward returns next-token logits [len(tgt), vocab] for every target
// position. Row i depends only on src and tgt[0..i].
//
// src may be empty; tgt must not be. Either longer than MaxLength yields a
// *SequenceTooLongError.
func (m *Seq2SeqTransformer) Forward(src, tgt []int32) (*mat.Dense, error) {
	memory, err := m.Encode(src)
	if err != nil {
		return nil, err
	}
	return m.Decode(memory, tgt)
}

// Encode embeds src and runs the encoder stack. An empty src yields a nil
// memory.
func (m *Seq2SeqTransformer) Encode(src []int32) (*mat.Dense, error) {
	x, err := m.embed(src, "source")
	if err != nil {
		return nil, err
	}
	return m.Encoder.Forward(x), nil
}

// Decode runs the decoder over tgt against memory (nil for an empty source)
// and projects to vocabulary logits.
func (m *Seq2SeqTransformer) Decode(memory *mat.Dense, tgt []int32) (*mat.Dense, error) {
	if len(tgt) == 0 {
		return nil, ErrEmptyTarget
	}
	x, err := m.embed(tgt, "target")
	if err != nil {
		return nil, err
	}
	h := m.Decoder.Forward(x, memory, CausalMask(len(tgt)))
	return m.FCOut.Forward(h), nil
}

// DecoderSelfAttentionWeights returns the per-head self-attention weights
// [len(tgt), len(tgt)] of decoder layer for the given pair.
func (m *Seq2SeqTransformer) DecoderSelfAttentionWeights(src, tgt []int32, layer int) ([]*mat.Dense, error) {
	if layer < 0 || layer >= len(m.Decoder.Layers) {
		return nil, fmt.Errorf("decoder layer %d out of range [0, %d)", layer, len(m.Decoder.Layers))
	}
	if len(tgt) == 0 {
		return nil, ErrEmptyTarget
	}
	memory, err := m.Encode(src)
	if err != nil {
		return nil, err
	}
	x, err := m.embed(tgt, "target")
	if err != nil {
		return nil, err
	}
	return m.Decoder.selfAttentionWeights(x, memory, CausalMask(len(tgt)), layer), nil
}

// embed applies the scaled embedding and positional encoding to ids.
func (m *Seq2SeqTransformer) embed(ids []int32, sequence string) (*mat.Dense, error) {
	if len(ids) > m.cfg.MaxLength {
		return nil, &SequenceTooLongError{Sequence: sequence, Length: len(ids), Max: m.cfg.MaxLength}
	}
	x, err := m.Embedding.Forward(ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sequence, err)
	}
	return m.Positional.Add(x)
}

// Parameters returns every learned parameter under its PyTorch state_dict
// name.
func (m *Seq2SeqTransformer) Parameters() []*Parameter {
	var params []*Parameter
	params = append(params, prefixed("embedding", m.Embedding.Parameters())...)
	params = append(params, prefixed("transformer.encoder", m.Encoder.Parameters())...)
	params = append(params, prefixed("transformer.decoder", m.Decoder.Parameters())...)
	params = append(params, prefixed("fc_out", m.FCOut.Parameters())...)
	return params
}

// NumParameters returns the total number of learned scalars.
func (m *Seq2SeqTransformer) NumParameters() int {
	total := 0
	for _, p := range m.Parameters() {
		total += p.NumElements()
	}
	return total
}
