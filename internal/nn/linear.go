package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input with shape [seq, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights are initialized using Xavier/Glorot uniform initialization and
// biases to zero; both are normally overwritten by LoadStateDict.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *mat.Dense // [out_features, in_features]
	bias        []float64  // [out_features]

	weightName string
	biasName   string
}

// NewLinear creates a new Linear layer whose parameters are named
// "weight" and "bias".
func NewLinear(inFeatures, outFeatures int) *Linear {
	return newNamedLinear(inFeatures, outFeatures, "weight", "bias")
}

// newNamedLinear creates a Linear whose parameters use custom names, as
// PyTorch does for the packed attention projection ("in_proj_weight").
func newNamedLinear(inFeatures, outFeatures int, weightName, biasName string) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("Linear: features must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      mat.NewDense(outFeatures, inFeatures, xavierUniform(inFeatures, outFeatures)),
		bias:        make([]float64, outFeatures),
		weightName:  weightName,
		biasName:    biasName,
	}
}

// Forward computes x @ W.T + b.
//
// Panics if x does not have InFeatures columns.
func (l *Linear) Forward(x *mat.Dense) *mat.Dense {
	return l.forwardRows(x, 0, l.outFeatures)
}

// forwardRows applies only output units [from, to) of the layer, i.e. the
// sub-layer formed by weight rows from..to and the matching bias entries.
func (l *Linear) forwardRows(x *mat.Dense, from, to int) *mat.Dense {
	seq, in := x.Dims()
	if in != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, in))
	}

	w := l.weight.Slice(from, to, 0, l.inFeatures)
	out := mat.NewDense(seq, to-from, nil)
	out.Mul(x, w.T())

	bias := l.bias[from:to]
	for i := 0; i < seq; i++ {
		floats.Add(out.RawRowView(i), bias)
	}
	return out
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{
		NewParameter(l.weightName, []int{l.outFeatures, l.inFeatures}, l.weight.RawMatrix().Data),
		NewParameter(l.biasName, []int{l.outFeatures}, l.bias),
	}
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int { return l.inFeatures }

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int { return l.outFeatures }

// Weight returns the weight matrix [out_features, in_features].
func (l *Linear) Weight() *mat.Dense { return l.weight }

// Bias returns the bias vector.
func (l *Linear) Bias() []float64 { return l.bias }
