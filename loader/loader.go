// Package loader reads and writes SafeTensors weight files.
//
// This package wraps the internal loader implementation and exports a clean
// public API. Tensors of every floating dtype (F16, BF16, F32, F64) are
// widened to float64 on load.
//
// Example usage:
//
//	import "github.com/born-ml/transcoder/loader"
//
//	// Load a PyTorch export, stripping DataParallel / torch.compile prefixes
//	state, err := loader.ReadSafeTensors("model.safetensors", loader.NewPyTorchMapper())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(state["fc_out.weight"].Shape)
package loader

import (
	"github.com/born-ml/transcoder/internal/loader"
)

// Tensor is a dense row-major tensor widened to float64.
type Tensor = loader.Tensor

// DType is a SafeTensors element type.
type DType = loader.SafeTensorsDType

// Supported dtypes.
const (
	F16  = loader.SafeTensorsF16
	BF16 = loader.SafeTensorsBF16
	F32  = loader.SafeTensorsF32
	F64  = loader.SafeTensorsF64
)

// Reader provides random access to the tensors of one SafeTensors file.
type Reader = loader.SafeTensorsReader

// WeightMapper renames stored tensor names.
type WeightMapper = loader.WeightMapper

// Errors.
var (
	ErrTensorNotFound   = loader.ErrTensorNotFound
	ErrUnsupportedDType = loader.ErrUnsupportedDType
	ErrSkipTensor       = loader.ErrSkipTensor
	ErrOutOfBounds      = loader.ErrOutOfBounds
	ErrHeaderTooLarge   = loader.ErrHeaderTooLarge
	ErrSizeMismatch     = loader.ErrSizeMismatch
)

// Open opens a SafeTensors file and parses its header.
func Open(path string) (*Reader, error) {
	return loader.NewSafeTensorsReader(path)
}

// NewPyTorchMapper returns the mapper for PyTorch state_dict exports.
func NewPyTorchMapper() WeightMapper {
	return loader.NewPyTorchMapper()
}

// ReadSafeTensors loads every tensor in path, renamed through mapper (nil
// keeps stored names).
func ReadSafeTensors(path string, mapper WeightMapper) (map[string]*Tensor, error) {
	return loader.ReadSafeTensors(path, mapper)
}

// WriteSafeTensors writes tensors in name order.
func WriteSafeTensors(path string, tensors map[string]*Tensor, metadata map[string]string) error {
	return loader.WriteSafeTensors(path, tensors, metadata)
}
