package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EncoderLayer is a post-norm Transformer encoder layer.
//
//	x = norm1(x + SelfAttn(x))
//	x = norm2(x + FFN(x))
type EncoderLayer struct {
	SelfAttn *MultiHeadAttention
	FFN      *FFN
	Norm1    *LayerNorm
	Norm2    *LayerNorm
}

// NewEncoderLayer creates an encoder layer from cfg.
func NewEncoderLayer(cfg *Config) *EncoderLayer {
	return &EncoderLayer{
		SelfAttn: NewMultiHeadAttention(cfg.EmbedDim, cfg.NumHeads, cfg.Parallel),
		FFN:      NewFFN(cfg.EmbedDim, cfg.FeedForwardDim),
		Norm1:    NewLayerNorm(cfg.EmbedDim, cfg.NormEps),
		Norm2:    NewLayerNorm(cfg.EmbedDim, cfg.NormEps),
	}
}

// Forward runs the layer over x [seq, E]. The source is not masked.
func (l *EncoderLayer) Forward(x *mat.Dense) *mat.Dense {
	if x == nil {
		return nil
	}
	x = l.Norm1.Forward(residual(x, l.SelfAttn.Forward(x, x, nil)))
	return l.Norm2.Forward(residual(x, l.FFN.Forward(x)))
}

// Parameters returns the layer parameters with PyTorch names.
func (l *EncoderLayer) Parameters() []*Parameter {
	var params []*Parameter
	params = append(params, prefixed("self_attn", l.SelfAttn.Parameters())...)
	params = append(params, l.FFN.Parameters()...)
	params = append(params, prefixed("norm1", l.Norm1.Parameters())...)
	params = append(params, prefixed("norm2", l.Norm2.Parameters())...)
	return params
}

// Encoder is a stack of encoder layers followed by a final LayerNorm.
type Encoder struct {
	Layers []*EncoderLayer
	Norm   *LayerNorm
}

// NewEncoder creates cfg.NumLayers encoder layers.
func NewEncoder(cfg *Config) *Encoder {
	layers := make([]*EncoderLayer, cfg.NumLayers)
	for i := range layers {
		layers[i] = NewEncoderLayer(cfg)
	}
	return &Encoder{
		Layers: layers,
		Norm:   NewLayerNorm(cfg.EmbedDim, cfg.NormEps),
	}
}

// Forward encodes x [seq, E] into memory [seq, E]. nil stays nil.
func (e *Encoder) Forward(x *mat.Dense) *mat.Dense {
	for _, layer := range e.Layers {
		x = layer.Forward(x)
	}
	return e.Norm.Forward(x)
}

// Parameters returns layers.{i}.* and norm.*.
func (e *Encoder) Parameters() []*Parameter {
	var params []*Parameter
	for i, layer := range e.Layers {
		params = append(params, prefixed(fmt.Sprintf("layers.%d", i), layer.Parameters())...)
	}
	params = append(params, prefixed("norm", e.Norm.Parameters())...)
	return params
}

// residual returns x + y as a new matrix.
func residual(x, y *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Add(x, y)
	return out
}

