package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Embedding is a lookup table that maps token ids to dense vectors.
//
// Looked-up rows are multiplied by sqrt(EmbedDim) before positional encoding
// is added, which keeps the embedding magnitude comparable to the unit-scale
// sinusoids.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter
//   - Forward: ids [seq] -> embeddings [seq, EmbedDim]
type Embedding struct {
	Weight   *mat.Dense // [NumEmbed, EmbedDim]
	NumEmbed int
	EmbedDim int
	scale    float64
}

// NewEmbedding creates a new Embedding layer initialized from N(0, 1).
func NewEmbedding(numEmbeddings, embeddingDim int) *Embedding {
	if numEmbeddings <= 0 || embeddingDim <= 0 {
		panic(fmt.Sprintf("Embedding: sizes must be positive, got %d x %d", numEmbeddings, embeddingDim))
	}
	return &Embedding{
		Weight:   mat.NewDense(numEmbeddings, embeddingDim, standardNormal(numEmbeddings*embeddingDim)),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
		scale:    math.Sqrt(float64(embeddingDim)),
	}
}

// Forward returns the scaled embeddings of ids, or nil for no ids.
//
// Returns ErrTokenOutOfRange if any id is outside [0, NumEmbed).
func (e *Embedding) Forward(ids []int32) (*mat.Dense, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := mat.NewDense(len(ids), e.EmbedDim, nil)
	for i, id := range ids {
		if id < 0 || int(id) >= e.NumEmbed {
			return nil, fmt.Errorf("%w: id %d at position %d, vocabulary size %d", ErrTokenOutOfRange, id, i, e.NumEmbed)
		}
		dst := out.RawRowView(i)
		for j, v := range e.Weight.RawRowView(int(id)) {
			dst[j] = v * e.scale
		}
	}
	return out, nil
}

// Parameters returns [weight].
func (e *Embedding) Parameters() []*Parameter {
	return []*Parameter{
		NewParameter("weight", []int{e.NumEmbed, e.EmbedDim}, e.Weight.RawMatrix().Data),
	}
}
