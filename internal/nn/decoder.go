package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DecoderLayer is a post-norm Transformer decoder layer.
//
//	x = norm1(x + SelfAttn(x, causal))
//	x = norm2(x + CrossAttn(x, memory))
//	x = norm3(x + FFN(x))
type DecoderLayer struct {
	SelfAttn  *MultiHeadAttention
	CrossAttn *MultiHeadAttention
	FFN       *FFN
	Norm1     *LayerNorm
	Norm2     *LayerNorm
	Norm3     *LayerNorm
}

// NewDecoderLayer creates a decoder layer from cfg.
func NewDecoderLayer(cfg *Config) *DecoderLayer {
	return &DecoderLayer{
		SelfAttn:  NewMultiHeadAttention(cfg.EmbedDim, cfg.NumHeads, cfg.Parallel),
		CrossAttn: NewMultiHeadAttention(cfg.EmbedDim, cfg.NumHeads, cfg.Parallel),
		FFN:       NewFFN(cfg.EmbedDim, cfg.FeedForwardDim),
		Norm1:     NewLayerNorm(cfg.EmbedDim, cfg.NormEps),
		Norm2:     NewLayerNorm(cfg.EmbedDim, cfg.NormEps),
		Norm3:     NewLayerNorm(cfg.EmbedDim, cfg.NormEps),
	}
}

// Forward runs the layer over x [seq_t, E] attending to memory [seq_s, E].
func (l *DecoderLayer) Forward(x, memory *mat.Dense, mask mat.Matrix) *mat.Dense {
	out, _ := l.forward(x, memory, mask, false)
	return out
}

// forward optionally returns the per-head self-attention weights.
func (l *DecoderLayer) forward(x, memory *mat.Dense, mask mat.Matrix, needWeights bool) (*mat.Dense, []*mat.Dense) {
	var (
		sa      *mat.Dense
		weights []*mat.Dense
	)
	if needWeights {
		sa, weights = l.SelfAttn.ForwardWithWeights(x, x, mask)
	} else {
		sa = l.SelfAttn.Forward(x, x, mask)
	}
	x = l.Norm1.Forward(residual(x, sa))
	x = l.Norm2.Forward(residual(x, l.CrossAttn.Forward(x, memory, nil)))
	return l.Norm3.Forward(residual(x, l.FFN.Forward(x))), weights
}

// Parameters returns the layer parameters with PyTorch names.
func (l *DecoderLayer) Parameters() []*Parameter {
	var params []*Parameter
	params = append(params, prefixed("self_attn", l.SelfAttn.Parameters())...)
	params = append(params, prefixed("multihead_attn", l.CrossAttn.Parameters())...)
	params = append(params, l.FFN.Parameters()...)
	params = append(params, prefixed("norm1", l.Norm1.Parameters())...)
	params = append(params, prefixed("norm2", l.Norm2.Parameters())...)
	params = append(params, prefixed("norm3", l.Norm3.Parameters())...)
	return params
}

// Decoder is a stack of decoder layers followed by a final LayerNorm.
type Decoder struct {
	Layers []*DecoderLayer
	Norm   *LayerNorm
}

// NewDecoder creates cfg.NumLayers decoder layers.
func NewDecoder(cfg *Config) *Decoder {
	layers := make([]*DecoderLayer, cfg.NumLayers)
	for i := range layers {
		layers[i] = NewDecoderLayer(cfg)
	}
	return &Decoder{
		Layers: layers,
		Norm:   NewLayerNorm(cfg.EmbedDim, cfg.NormEps),
	}
}

// Forward decodes x [seq_t, E] against memory, which may be nil.
func (d *Decoder) Forward(x, memory *mat.Dense, mask mat.Matrix) *mat.Dense {
	for _, layer := range d.Layers {
		x = layer.Forward(x, memory, mask)
	}
	return d.Norm.Forward(x)
}

// selfAttentionWeights runs the stack up to layer and returns that layer's
// per-head self-attention weights.
func (d *Decoder) selfAttentionWeights(x, memory *mat.Dense, mask mat.Matrix, layer int) []*mat.Dense {
	for i, l := range d.Layers {
		if i == layer {
			_, w := l.forward(x, memory, mask, true)
			return w
		}
		x = l.Forward(x, memory, mask)
	}
	return nil
}

// Parameters returns layers.{i}.* and norm.*.
func (d *Decoder) Parameters() []*Parameter {
	var params []*Parameter
	for i, layer := range d.Layers {
		params = append(params, prefixed(fmt.Sprintf("layers.%d", i), layer.Parameters())...)
	}
	params = append(params, prefixed("norm", d.Norm.Parameters())...)
	return params
}
