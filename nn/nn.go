// Package nn provides the encoder-decoder translation network.
//
// This package wraps the internal network implementation and provides a
// clean public API for building networks, loading weights and running
// forward passes.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/transcoder/loader"
//	    "github.com/born-ml/transcoder/nn"
//	)
//
//	cfg := nn.DefaultConfig()
//	model, err := nn.NewSeq2SeqTransformer(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state, err := loader.ReadSafeTensors("model.safetensors", loader.NewPyTorchMapper())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := model.LoadStateDict(state, true); err != nil {
//	    log.Fatal(err)
//	}
//
//	logits, err := model.Forward(srcIDs, tgtIDs) // [len(tgt), vocab]
package nn

import (
	"github.com/born-ml/transcoder/internal/nn"
)

// Configuration

// Config holds the architecture hyperparameters.
//
// Parameters:
//   - VocabSize: output classes and embedding rows
//   - MaxLength: longest source or target sequence
//   - EmbedDim, NumHeads: model width and attention heads (NumHeads | EmbedDim)
//   - NumLayers: encoder layers and decoder layers each
//   - FeedForwardDim: FFN hidden size
//   - Dropout: validated, inert at inference
//   - NormEps: LayerNorm epsilon
//   - Device: "auto" or "cpu"
type Config = nn.Config

// Device selects where the network computes.
type Device = nn.Device

// Supported devices.
const (
	DeviceAuto = nn.DeviceAuto
	DeviceCPU  = nn.DeviceCPU
)

// DefaultConfig returns the configuration of the published models
// (12006 / 100 / 256 / 8 / 2 / 512 / 0.1 / auto).
func DefaultConfig() Config {
	return nn.DefaultConfig()
}

// Network

// Seq2SeqTransformer is the encoder-decoder translation network.
type Seq2SeqTransformer = nn.Seq2SeqTransformer

// NewSeq2SeqTransformer builds a randomly initialized network for cfg.
func NewSeq2SeqTransformer(cfg *Config) (*Seq2SeqTransformer, error) {
	return nn.NewSeq2SeqTransformer(cfg)
}

// Parameter is a named view of a learned tensor.
type Parameter = nn.Parameter

// CausalMask returns the additive [n, n] mask blocking attention to later
// positions.
var CausalMask = nn.CausalMask

// Errors

var (
	// ErrInvalidConfig is wrapped by configuration validation failures.
	ErrInvalidConfig = nn.ErrInvalidConfig

	// ErrSequenceTooLong matches *SequenceTooLongError.
	ErrSequenceTooLong = nn.ErrSequenceTooLong

	// ErrWeightsMismatch matches *WeightsMismatchError.
	ErrWeightsMismatch = nn.ErrWeightsMismatch

	// ErrEmptyTarget reports a Forward call without target ids.
	ErrEmptyTarget = nn.ErrEmptyTarget

	// ErrTokenOutOfRange reports an id outside the vocabulary.
	ErrTokenOutOfRange = nn.ErrTokenOutOfRange
)

// SequenceTooLongError reports a source or target longer than MaxLength.
type SequenceTooLongError = nn.SequenceTooLongError

// WeightsMismatchError describes a parameter whose stored form disagrees
// with the configuration.
type WeightsMismatchError = nn.WeightsMismatchError
