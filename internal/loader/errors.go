package loader

import "errors"

// Common errors.
var (
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
	ErrTensorNotFound   = errors.New("tensor not found")
	ErrOutOfBounds      = errors.New("tensor extends beyond data section")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrSizeMismatch     = errors.New("tensor byte size does not match shape")

	// ErrSkipTensor is returned by a WeightMapper for names that must not be loaded.
	ErrSkipTensor = errors.New("tensor skipped")
)
