package nn

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrSequenceTooLong = errors.New("sequence exceeds maximum length")
	ErrWeightsMismatch = errors.New("weights do not match configuration")
	ErrEmptyTarget     = errors.New("target sequence is empty")
	ErrTokenOutOfRange = errors.New("token id outside vocabulary")
)

// SequenceTooLongError reports a source or target longer than MaxLength.
type SequenceTooLongError struct {
	Sequence string // "source" or "target"
	Length   int
	Max      int
}

// Error implements the error interface.
func (e *SequenceTooLongError) Error() string {
	return fmt.Sprintf("%s sequence length %d exceeds maximum length %d", e.Sequence, e.Length, e.Max)
}

// Is makes errors.Is(err, ErrSequenceTooLong) match.
func (e *SequenceTooLongError) Is(target error) bool {
	return target == ErrSequenceTooLong
}

// WeightsMismatchError describes a parameter whose stored form disagrees with
// the configuration-implied shape.
type WeightsMismatchError struct {
	Name   string
	Reason string // "missing", "unexpected" or "shape"
	Want   []int
	Got    []int
}

// Error implements the error interface.
func (e *WeightsMismatchError) Error() string {
	switch e.Reason {
	case "missing":
		return fmt.Sprintf("weights mismatch: missing parameter %q (want shape %v)", e.Name, e.Want)
	case "unexpected":
		return fmt.Sprintf("weights mismatch: unexpected parameter %q (shape %v)", e.Name, e.Got)
	default:
		return fmt.Sprintf("weights mismatch: parameter %q has shape %v, want %v", e.Name, e.Got, e.Want)
	}
}

// Is makes errors.Is(err, ErrWeightsMismatch) match.
func (e *WeightsMismatchError) Is(target error) bool {
	return target == ErrWeightsMismatch
}
