package nn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/transcoder/internal/loader"
)

func TestLoadStateDict_RoundTrip(t *testing.T) {
	src := tinyModel(t)
	dst := tinyModel(t)

	require.NoError(t, dst.LoadStateDict(src.StateDict(), true))

	want, err := src.Forward([]int32{4, 5}, []int32{1, 2, 3})
	require.NoError(t, err)
	got, err := dst.Forward([]int32{4, 5}, []int32{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
}

func TestLoadStateDict_StateDictIsCopy(t *testing.T) {
	m := tinyModel(t)
	state := m.StateDict()
	before := m.FCOut.Bias()[0]

	state["fc_out.bias"].Data[0] = before + 1
	assert.Equal(t, before, m.FCOut.Bias()[0])
}

func TestLoadStateDict_Missing(t *testing.T) {
	m := tinyModel(t)
	state := tinyModel(t).StateDict()
	delete(state, "transformer.decoder.norm.weight")
	before := m.FCOut.Bias()[0]

	err := m.LoadStateDict(state, true)
	require.ErrorIs(t, err, ErrWeightsMismatch)

	var mismatch *WeightsMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "transformer.decoder.norm.weight", mismatch.Name)
	assert.Equal(t, "missing", mismatch.Reason)

	// Nothing is written on failure.
	assert.Equal(t, before, m.FCOut.Bias()[0])
}

func TestLoadStateDict_ShapeMismatch(t *testing.T) {
	m := tinyModel(t)
	state := tinyModel(t).StateDict()
	state["fc_out.bias"] = &loader.Tensor{DType: loader.SafeTensorsF32, Shape: []int{11}, Data: make([]float64, 11)}

	err := m.LoadStateDict(state, false)
	require.ErrorIs(t, err, ErrWeightsMismatch)

	var mismatch *WeightsMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "shape", mismatch.Reason)
	assert.Equal(t, []int{10}, mismatch.Want)
	assert.Equal(t, []int{11}, mismatch.Got)
}

func TestLoadStateDict_Unexpected(t *testing.T) {
	m := tinyModel(t)
	state := tinyModel(t).StateDict()
	state["transformer.encoder.layers.2.norm1.weight"] = &loader.Tensor{Shape: []int{8}, Data: make([]float64, 8)}

	err := m.LoadStateDict(state, true)
	require.ErrorIs(t, err, ErrWeightsMismatch)
	assert.Contains(t, err.Error(), "unexpected")

	assert.NoError(t, m.LoadStateDict(state, false))
}
