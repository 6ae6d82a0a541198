package nn

import (
	"errors"
	"sort"

	"github.com/born-ml/transcoder/internal/loader"
)

// LoadStateDict copies tensors into the network's parameters by name.
//
// Every parameter must be present with exactly the expected shape. When
// strict is true, tensors that match no parameter are rejected as well.
// All problems are collected; the returned error joins one
// *WeightsMismatchError per offending name. Parameters are only written when
// no problem was found.
func (m *Seq2SeqTransformer) LoadStateDict(state map[string]*loader.Tensor, strict bool) error {
	params := m.Parameters()
	known := make(map[string]bool, len(params))

	var errs []error
	for _, p := range params {
		known[p.Name()] = true
		t, ok := state[p.Name()]
		if !ok {
			errs = append(errs, &WeightsMismatchError{Name: p.Name(), Reason: "missing", Want: p.Shape()})
			continue
		}
		if !loader.ShapeEqual(t.Shape, p.Shape()) || len(t.Data) != p.NumElements() {
			errs = append(errs, &WeightsMismatchError{Name: p.Name(), Reason: "shape", Want: p.Shape(), Got: t.Shape})
		}
	}

	if strict {
		extra := make([]string, 0)
		for name := range state {
			if !known[name] {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			errs = append(errs, &WeightsMismatchError{Name: name, Reason: "unexpected", Got: state[name].Shape})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, p := range params {
		copy(p.Data(), state[p.Name()].Data)
	}
	return nil
}

// StateDict returns a copy of every parameter keyed by its state_dict name.
func (m *Seq2SeqTransformer) StateDict() map[string]*loader.Tensor {
	params := m.Parameters()
	state := make(map[string]*loader.Tensor, len(params))
	for _, p := range params {
		data := make([]float64, len(p.Data()))
		copy(data, p.Data())
		state[p.Name()] = &loader.Tensor{
			DType: loader.SafeTensorsF32,
			Shape: append([]int(nil), p.Shape()...),
			Data:  data,
		}
	}
	return state
}
