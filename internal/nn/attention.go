package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ScaledDotProductAttention computes attention for one head.
//
// Formula: Attention(Q, K, V) = softmax(Q @ K^T / sqrt(d_k) + mask) @ V
//
// Parameters:
//   - q: queries [seq_q, d_k]
//   - k: keys [seq_k, d_k]
//   - v: values [seq_k, d_v]
//   - mask: optional additive mask [seq_q, seq_k] (0 keeps, -Inf blocks), or nil
//
// Returns:
//   - out: [seq_q, d_v]
//   - weights: attention weights [seq_q, seq_k], each row summing to 1
//
// A query row whose every key is blocked attends to nothing and yields zeros.
func ScaledDotProductAttention(q, k, v, mask mat.Matrix) (out, weights *mat.Dense) {
	seqQ, dk := q.Dims()
	seqK, dk2 := k.Dims()
	seqV, dv := v.Dims()
	if dk != dk2 || seqK != seqV {
		panic(fmt.Sprintf("ScaledDotProductAttention: incompatible shapes q=[%d,%d] k=[%d,%d] v=[%d,%d]",
			seqQ, dk, seqK, dk2, seqV, dv))
	}

	scores := mat.NewDense(seqQ, seqK, nil)
	scores.Mul(q, k.T())
	scores.Scale(1/math.Sqrt(float64(dk)), scores)

	if mask != nil {
		mr, mc := mask.Dims()
		if mr != seqQ || mc != seqK {
			panic(fmt.Sprintf("ScaledDotProductAttention: mask shape [%d,%d], want [%d,%d]", mr, mc, seqQ, seqK))
		}
		scores.Add(scores, mask)
	}

	for i := 0; i < seqQ; i++ {
		softmaxInPlace(scores.RawRowView(i))
	}

	out = mat.NewDense(seqQ, dv, nil)
	out.Mul(scores, v)
	return out, scores
}

// CausalMask returns the additive [n, n] mask that blocks attention from
// position i to any position j > i.
//
// Example (n=3):
//
//	[[0, -Inf, -Inf],
//	 [0,    0, -Inf],
//	 [0,    0,    0]]
func CausalMask(n int) *mat.Dense {
	if n <= 0 {
		return nil
	}
	mask := mat.NewDense(n, n, nil)
	negInf := math.Inf(-1)
	for i := 0; i < n; i++ {
		row := mask.RawRowView(i)
		for j := i + 1; j < n; j++ {
			row[j] = negInf
		}
	}
	return mask
}

// softmaxInPlace replaces row with its numerically stable softmax.
func softmaxInPlace(row []float64) {
	if len(row) == 0 {
		return
	}
	peak := floats.Max(row)
	if math.IsInf(peak, -1) {
		for j := range row {
			row[j] = 0
		}
		return
	}

	var sum float64
	for j, v := range row {
		e := math.Exp(v - peak)
		row[j] = e
		sum += e
	}
	floats.Scale(1/sum, row)
}
