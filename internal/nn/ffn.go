package nn

import (
	"gonum.org/v1/gonum/mat"
)

// FFN implements the position-wise feed-forward network.
//
//	FFN(x) = Linear2(ReLU(Linear1(x)))
//
// Where:
//   - Linear1: [embed_dim → ffn_dim] (expansion)
//   - Linear2: [ffn_dim → embed_dim] (projection back)
type FFN struct {
	Linear1 *Linear
	Linear2 *Linear
}

// NewFFN creates a new Feed-Forward Network.
func NewFFN(embedDim, ffnDim int) *FFN {
	return &FFN{
		Linear1: NewLinear(embedDim, ffnDim),
		Linear2: NewLinear(ffnDim, embedDim),
	}
}

// Forward computes the FFN output. Shapes: [seq, embed_dim] -> [seq, embed_dim].
func (f *FFN) Forward(x *mat.Dense) *mat.Dense {
	h := f.Linear1.Forward(x)
	h.Apply(relu, h)
	return f.Linear2.Forward(h)
}

// Parameters returns linear1.* and linear2.*, matching the layer-level names
// of a PyTorch TransformerEncoderLayer.
func (f *FFN) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 4)
	params = append(params, prefixed("linear1", f.Linear1.Parameters())...)
	params = append(params, prefixed("linear2", f.Linear2.Parameters())...)
	return params
}

func relu(_, _ int, v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
