// Package generate provides greedy decoding for the translation network.
//
// This package wraps the internal generate implementation and provides a
// clean public API.
//
// Components:
//   - Decoder: runs decoding to completion (Decode) or as a stream
//   - Session: the INITIAL -> STEPPING -> DONE state machine, one step at a time
//
// Example usage:
//
//	import "github.com/born-ml/transcoder/generate"
//
//	dec := generate.NewDecoder(model, generate.Config{StartID: 1, EndID: 2})
//	res, err := dec.Decode(srcIDs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.IDs, res.Reason)
package generate

import (
	"github.com/born-ml/transcoder/internal/generate"
)

// DefaultMaxSteps bounds the number of generated tokens per request.
const DefaultMaxSteps = generate.DefaultMaxSteps

// Stop reasons.
const (
	ReasonEOS      = generate.ReasonEOS
	ReasonMaxSteps = generate.ReasonMaxSteps
)

// ErrSessionDone is returned by Step on a finished session.
var ErrSessionDone = generate.ErrSessionDone

// Model is the network the decoder drives.
type Model = generate.Model

// Config configures greedy decoding.
//
// Parameters:
//   - StartID: seeds the target prefix
//   - EndID: stops decoding once appended
//   - MaxSteps: maximum generated tokens (0 = 50)
type Config = generate.Config

// Result is the outcome of a finished decode.
type Result = generate.Result

// StepResult is a single result from streaming decoding.
type StepResult = generate.StepResult

// Decoder runs greedy decoding against a Model.
type Decoder = generate.Decoder

// Session is one in-progress decode.
type Session = generate.Session

// State is a session's lifecycle position.
type State = generate.State

// Session states.
const (
	StateInitial  = generate.StateInitial
	StateStepping = generate.StateStepping
	StateDone     = generate.StateDone
)

// NewDecoder creates a greedy decoder.
//
// Example:
//
//	dec := generate.NewDecoder(model, generate.Config{StartID: 1, EndID: 2, MaxSteps: 20})
//	for r := range dec.DecodeStream(src) {
//	    fmt.Println(r.TokenID)
//	}
func NewDecoder(model Model, cfg Config) *Decoder {
	return generate.NewDecoder(model, cfg)
}
