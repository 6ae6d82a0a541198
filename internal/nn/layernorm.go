package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LayerNorm applies Layer Normalization to every row of its input.
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// mean and (biased) variance are taken over the feature dimension.
// gamma starts at ones and beta at zeros.
type LayerNorm struct {
	Gamma   []float64 // learnable scale [d_model]
	Beta    []float64 // learnable shift [d_model]
	Epsilon float64
}

// NewLayerNorm creates a new LayerNorm over dim features.
func NewLayerNorm(dim int, epsilon float64) *LayerNorm {
	if dim <= 0 {
		panic(fmt.Sprintf("LayerNorm: dim must be positive, got %d", dim))
	}
	return &LayerNorm{
		Gamma:   filled(dim, 1),
		Beta:    make([]float64, dim),
		Epsilon: epsilon,
	}
}

// Forward normalizes each row of x into a new matrix. nil passes through.
func (l *LayerNorm) Forward(x *mat.Dense) *mat.Dense {
	if x == nil {
		return nil
	}
	rows, cols := x.Dims()
	if cols != len(l.Gamma) {
		panic(fmt.Sprintf("LayerNorm.Forward: expected %d features, got %d", len(l.Gamma), cols))
	}

	out := mat.NewDense(rows, cols, nil)
	n := float64(cols)
	for i := 0; i < rows; i++ {
		src := x.RawRowView(i)
		dst := out.RawRowView(i)

		mean := floats.Sum(src) / n
		var variance float64
		for _, v := range src {
			d := v - mean
			variance += d * d
		}
		variance /= n

		inv := 1 / math.Sqrt(variance+l.Epsilon)
		for j, v := range src {
			dst[j] = (v-mean)*inv*l.Gamma[j] + l.Beta[j]
		}
	}
	return out
}

// Parameters returns [weight (gamma), bias (beta)] using PyTorch names.
func (l *LayerNorm) Parameters() []*Parameter {
	dim := len(l.Gamma)
	return []*Parameter{
		NewParameter("weight", []int{dim}, l.Gamma),
		NewParameter("bias", []int{dim}, l.Beta),
	}
}
