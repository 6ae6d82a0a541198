// Package nn implements the encoder-decoder transformer used for
// code <-> pseudocode translation.
//
// The package provides the building blocks and their composition:
//   - Linear, LayerNorm, FFN: dense layers over gonum matrices
//   - Embedding: scaled token lookup
//   - PositionalEncoding: fixed sinusoidal table
//   - MultiHeadAttention, ScaledDotProductAttention, CausalMask
//   - EncoderLayer/Encoder, DecoderLayer/Decoder: post-norm stacks
//   - Seq2SeqTransformer: embedding + encoder + decoder + output projection
//
// Activations are row-major *mat.Dense values with one row per sequence
// position. A zero-length sequence is represented by a nil matrix.
//
// Parameter names follow the PyTorch state_dict of the published models, so a
// checkpoint exported to SafeTensors loads without renaming:
//
//	embedding.weight
//	transformer.encoder.layers.0.self_attn.in_proj_weight
//	transformer.decoder.layers.1.multihead_attn.out_proj.bias
//	fc_out.weight
//
// A constructed network is read-only during inference: Forward allocates its
// own activations and may be called from many goroutines at once.
package nn
