package loader

import (
	"fmt"
	"math"
)

// Tensor is a dense row-major tensor widened to float64.
type Tensor struct {
	DType SafeTensorsDType // dtype it was stored with
	Shape []int
	Data  []float64
}

// NewTensor creates a tensor of the given shape. If data is nil a zeroed
// buffer is allocated.
func NewTensor(shape []int, data []float64) (*Tensor, error) {
	n := NumElements(shape)
	if n < 0 {
		return nil, fmt.Errorf("invalid shape %v", shape)
	}
	if data == nil {
		data = make([]float64, n)
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, got %d", ErrSizeMismatch, shape, n, len(data))
	}
	return &Tensor{
		DType: SafeTensorsF32,
		Shape: append([]int(nil), shape...),
		Data:  data,
	}, nil
}

// NumElements returns the product of shape, or -1 if any dimension is
// negative or the product overflows int.
func NumElements(shape []int) int {
	n := 1
	for _, dim := range shape {
		switch {
		case dim < 0:
			return -1
		case dim == 0:
			n = 0
		case n > math.MaxInt/dim:
			return -1
		default:
			n *= dim
		}
	}
	return n
}

// ShapeEqual reports whether two shapes are identical.
func ShapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
