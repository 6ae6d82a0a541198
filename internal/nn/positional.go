package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PositionalEncoding implements fixed sinusoidal positional encodings.
//
// Mathematical formulation:
//
//	PE(pos, 2i)   = sin(pos / 10000^(2i/d))
//	PE(pos, 2i+1) = cos(pos / 10000^(2i/d))
//
// The table is computed once from (MaxLen, Dim) and is read-only afterwards.
type PositionalEncoding struct {
	Table  *mat.Dense // [max_len, dim]
	MaxLen int
	Dim    int
}

// NewPositionalEncoding pre-computes the table for maxLen positions.
func NewPositionalEncoding(maxLen, dim int) *PositionalEncoding {
	if maxLen <= 0 {
		panic(fmt.Sprintf("PositionalEncoding: maxLen must be positive, got %d", maxLen))
	}
	if dim <= 0 {
		panic(fmt.Sprintf("PositionalEncoding: dim must be positive, got %d", dim))
	}

	table := mat.NewDense(maxLen, dim, nil)
	for pos := 0; pos < maxLen; pos++ {
		row := table.RawRowView(pos)
		for i := 0; i < dim; i++ {
			angle := float64(pos) / math.Pow(10000.0, float64(2*(i/2))/float64(dim))
			if i%2 == 0 {
				row[i] = math.Sin(angle)
			} else {
				row[i] = math.Cos(angle)
			}
		}
	}

	return &PositionalEncoding{
		Table:  table,
		MaxLen: maxLen,
		Dim:    dim,
	}
}

// Add returns x + Table[:len(x)]. nil (an empty sequence) passes through.
//
// Returns a *SequenceTooLongError if x has more than MaxLen rows.
func (p *PositionalEncoding) Add(x *mat.Dense) (*mat.Dense, error) {
	if x == nil {
		return nil, nil
	}
	rows, cols := x.Dims()
	if rows > p.MaxLen {
		return nil, &SequenceTooLongError{Sequence: "input", Length: rows, Max: p.MaxLen}
	}
	if cols != p.Dim {
		panic(fmt.Sprintf("PositionalEncoding.Add: expected %d features, got %d", p.Dim, cols))
	}

	out := mat.NewDense(rows, cols, nil)
	out.Add(x, p.Table.Slice(0, rows, 0, cols))
	return out, nil
}
