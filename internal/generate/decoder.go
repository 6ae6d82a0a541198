package generate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxSteps bounds the number of generated tokens per request.
const DefaultMaxSteps = 50

// prefixPrealloc caps the up-front prefix capacity; longer decodes grow it.
const prefixPrealloc = 64

// Stop reasons reported in Result.Reason.
const (
	ReasonEOS      = "eos"
	ReasonMaxSteps = "max_steps"
)

// ErrSessionDone is returned by Step on a finished session.
var ErrSessionDone = errors.New("decoding session already finished")

// Model is the network the decoder drives.
type Model interface {
	// Forward returns next-token logits [len(tgt), vocab] for every target
	// position.
	Forward(src, tgt []int32) (*mat.Dense, error)
}

// Config configures greedy decoding.
type Config struct {
	// StartID seeds the target prefix.
	StartID int32

	// EndID stops decoding once appended.
	EndID int32

	// MaxSteps is the maximum number of generated tokens (default 50).
	MaxSteps int
}

// Result is the outcome of a finished decode.
type Result struct {
	IDs    []int32 // Generated ids, excluding <start>; includes <end> if emitted
	Steps  int     // Forward passes performed
	Reason string  // ReasonEOS or ReasonMaxSteps
}

// StepResult is a single result from streaming decoding.
type StepResult struct {
	TokenID int32  // Id appended at this step
	Step    int    // 1-based step number
	Done    bool   // Is decoding complete
	Reason  string // Stop reason once Done
	Error   error  // Error if any
}

// Decoder runs greedy decoding against a Model.
//
// A Decoder holds no per-request state and is safe for concurrent use if the
// Model is.
type Decoder struct {
	model Model
	cfg   Config
}

// NewDecoder creates a greedy decoder. A non-positive MaxSteps selects
// DefaultMaxSteps.
func NewDecoder(model Model, cfg Config) *Decoder {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	return &Decoder{model: model, cfg: cfg}
}

// MaxSteps returns the effective step limit.
func (d *Decoder) MaxSteps() int { return d.cfg.MaxSteps }

// NewSession starts decoding src. src may be empty.
func (d *Decoder) NewSession(src []int32) *Session {
	prefix := make([]int32, 1, min(d.cfg.MaxSteps, prefixPrealloc)+1)
	prefix[0] = d.cfg.StartID
	return &Session{
		decoder: d,
		src:     append([]int32(nil), src...),
		prefix:  prefix,
		state:   StateInitial,
	}
}

// Decode runs a session over src to completion.
//
// A Forward error aborts the decode; no partial result is returned.
func (d *Decoder) Decode(src []int32) (*Result, error) {
	s := d.NewSession(src)
	for !s.Done() {
		if _, err := s.Step(); err != nil {
			return nil, err
		}
	}
	return s.Result(), nil
}

// DecodeStream decodes src and reports every step on the returned channel.
// The channel is closed after the final (Done or Error) result.
func (d *Decoder) DecodeStream(src []int32) <-chan StepResult {
	ch := make(chan StepResult, 1)

	go func() {
		defer close(ch)

		s := d.NewSession(src)
		for !s.Done() {
			id, err := s.Step()
			if err != nil {
				ch <- StepResult{Step: s.Steps(), Done: true, Error: err}
				return
			}
			ch <- StepResult{TokenID: id, Step: s.Steps(), Done: s.Done(), Reason: s.reason}
		}
	}()

	return ch
}

// State is a decoding session's position in its lifecycle.
type State int

// Session states.
const (
	StateInitial State = iota
	StateStepping
	StateDone
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateStepping:
		return "stepping"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is one in-progress greedy decode. It is not safe for concurrent
// use.
type Session struct {
	decoder *Decoder
	src     []int32
	prefix  []int32
	state   State
	steps   int
	reason  string
}

// Step runs one forward pass, appends the arg-max token and returns it.
//
// Returns ErrSessionDone if the session already finished. A Forward error
// leaves the session unchanged.
func (s *Session) Step() (int32, error) {
	if s.state == StateDone {
		return 0, ErrSessionDone
	}

	logits, err := s.decoder.model.Forward(s.src, s.prefix)
	if err != nil {
		return 0, fmt.Errorf("decode step %d: %w", s.steps+1, err)
	}
	next, err := lastArgMax(logits)
	if err != nil {
		return 0, fmt.Errorf("decode step %d: %w", s.steps+1, err)
	}

	s.prefix = append(s.prefix, next)
	s.steps++
	s.state = StateStepping

	switch {
	case next == s.decoder.cfg.EndID:
		s.state, s.reason = StateDone, ReasonEOS
	case s.steps >= s.decoder.cfg.MaxSteps:
		s.state, s.reason = StateDone, ReasonMaxSteps
	}
	return next, nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Done reports whether the session reached DONE.
func (s *Session) Done() bool { return s.state == StateDone }

// Steps returns the number of completed steps.
func (s *Session) Steps() int { return s.steps }

// Prefix returns a copy of the target prefix, including <start>.
func (s *Session) Prefix() []int32 {
	return append([]int32(nil), s.prefix...)
}

// Result returns the generated ids so far. Reason is empty until Done.
func (s *Session) Result() *Result {
	return &Result{
		IDs:    append([]int32(nil), s.prefix[1:]...),
		Steps:  s.steps,
		Reason: s.reason,
	}
}

// lastArgMax returns the index of the largest logit in the last row. Ties
// resolve to the lowest index.
func lastArgMax(logits *mat.Dense) (int32, error) {
	if logits == nil {
		return 0, errors.New("model returned no logits")
	}
	rows, cols := logits.Dims()
	if cols == 0 {
		return 0, errors.New("model returned empty logits")
	}
	return int32(floats.MaxIdx(logits.RawRowView(rows - 1))), nil
}
