package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/transcoder/internal/parallel"
)

// MultiHeadAttention implements multi-head attention.
//
// Architecture:
//  1. Project: Q = query @ Wq^T, K = memory @ Wk^T, V = memory @ Wv^T
//     (Wq, Wk and Wv are stacked in one packed InProj [3*E, E])
//  2. Split every projection into NumHeads column blocks of HeadDim
//  3. Per head: ScaledDotProductAttention(Q_h, K_h, V_h, mask)
//  4. Concatenate heads and apply OutProj
//
// Heads are independent and run through parallel.For; each writes a
// disjoint column block of the concatenated context.
//
// Self-attention passes the same matrix as query and memory.
type MultiHeadAttention struct {
	InProj  *Linear // [3*E, E], named in_proj_weight / in_proj_bias
	OutProj *Linear // [E, E]

	EmbedDim int
	NumHeads int
	HeadDim  int

	parallel parallel.Config
}

// NewMultiHeadAttention creates a new multi-head attention module.
//
// Panics if embedDim is not divisible by numHeads.
func NewMultiHeadAttention(embedDim, numHeads int, pcfg parallel.Config) *MultiHeadAttention {
	if numHeads <= 0 || embedDim%numHeads != 0 {
		panic(fmt.Sprintf("MultiHeadAttention: embed_dim (%d) must be divisible by num_heads (%d)", embedDim, numHeads))
	}
	return &MultiHeadAttention{
		InProj:   newNamedLinear(embedDim, 3*embedDim, "in_proj_weight", "in_proj_bias"),
		OutProj:  NewLinear(embedDim, embedDim),
		EmbedDim: embedDim,
		NumHeads: numHeads,
		HeadDim:  embedDim / numHeads,
		parallel: pcfg,
	}
}

// Forward attends query [seq_q, E] over memory [seq_k, E].
//
// mask is an optional additive [seq_q, seq_k] mask. A nil memory (empty
// sequence) contributes a zero context, so the result is the output bias.
func (m *MultiHeadAttention) Forward(query, memory *mat.Dense, mask mat.Matrix) *mat.Dense {
	out, _ := m.forward(query, memory, mask, false)
	return out
}

// ForwardWithWeights is Forward that also returns every head's attention
// weights, each [seq_q, seq_k]. The weights are nil when memory is nil.
func (m *MultiHeadAttention) ForwardWithWeights(query, memory *mat.Dense, mask mat.Matrix) (*mat.Dense, []*mat.Dense) {
	return m.forward(query, memory, mask, true)
}

func (m *MultiHeadAttention) forward(query, memory *mat.Dense, mask mat.Matrix, needWeights bool) (*mat.Dense, []*mat.Dense) {
	if query == nil {
		return nil, nil
	}
	seqQ, _ := query.Dims()
	context := mat.NewDense(seqQ, m.EmbedDim, nil)
	if memory == nil {
		return m.OutProj.Forward(context), nil
	}
	seqK, _ := memory.Dims()

	e := m.EmbedDim
	q := m.InProj.forwardRows(query, 0, e)
	k := m.InProj.forwardRows(memory, e, 2*e)
	v := m.InProj.forwardRows(memory, 2*e, 3*e)

	headWeights := make([]*mat.Dense, m.NumHeads)
	parallel.For(m.NumHeads, func(h int) {
		lo, hi := h*m.HeadDim, (h+1)*m.HeadDim
		out, w := ScaledDotProductAttention(
			q.Slice(0, seqQ, lo, hi),
			k.Slice(0, seqK, lo, hi),
			v.Slice(0, seqK, lo, hi),
			mask,
		)
		context.Slice(0, seqQ, lo, hi).(*mat.Dense).Copy(out)
		headWeights[h] = w
	}, m.parallel)

	out := m.OutProj.Forward(context)
	if !needWeights {
		return out, nil
	}
	return out, headWeights
}

// Parameters returns in_proj_weight, in_proj_bias, out_proj.weight and
// out_proj.bias.
func (m *MultiHeadAttention) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 4)
	params = append(params, m.InProj.Parameters()...)
	params = append(params, prefixed("out_proj", m.OutProj.Parameters())...)
	return params
}
