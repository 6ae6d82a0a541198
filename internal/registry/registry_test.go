package registry

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/transcoder/internal/loader"
	"github.com/born-ml/transcoder/internal/nn"
	"github.com/born-ml/transcoder/internal/parallel"
)

func tinyConfig() *nn.Config {
	return &nn.Config{
		VocabSize:      7,
		MaxLength:      6,
		EmbedDim:       4,
		NumHeads:       2,
		NumLayers:      1,
		FeedForwardDim: 8,
		Dropout:        0.1,
		NormEps:        1e-5,
		Device:         nn.DeviceCPU,
		Parallel:       parallel.Sequential(),
	}
}

// writeCheckpoint saves a freshly initialized network for cfg the way a
// PyTorch export would look: wrapper prefix plus the positional buffer.
func writeCheckpoint(t *testing.T, cfg *nn.Config, name string) string {
	t.Helper()
	m, err := nn.NewSeq2SeqTransformer(cfg)
	require.NoError(t, err)

	state := make(map[string]*loader.Tensor)
	for k, v := range m.StateDict() {
		state["module."+k] = v
	}
	state["positional_encoding.pe"] = &loader.Tensor{
		DType: loader.SafeTensorsF32,
		Shape: []int{cfg.MaxLength, 1, cfg.EmbedDim},
		Data:  make([]float64, cfg.MaxLength*cfg.EmbedDim),
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, loader.WriteSafeTensors(path, state, map[string]string{"format": "pt"}))
	return path
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("cpp-to-pseudo")
	require.NoError(t, err)
	assert.Equal(t, CppToPseudo, d)

	d, err = ParseDirection("pseudo-to-cpp")
	require.NoError(t, err)
	assert.Equal(t, PseudoToCpp, d)

	_, err = ParseDirection("cpp-to-rust")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestRegistry_LoadCaches(t *testing.T) {
	cfg := tinyConfig()
	path := writeCheckpoint(t, cfg, "model.safetensors")
	r := New(cfg)

	first, err := r.Load(path)
	require.NoError(t, err)
	second, err := r.Load(filepath.Join(filepath.Dir(path), ".", "model.safetensors"))
	require.NoError(t, err)
	assert.Same(t, first, second)

	logits, err := first.Forward([]int32{3, 4}, []int32{1})
	require.NoError(t, err)
	_, cols := logits.Dims()
	assert.Equal(t, 7, cols)
}

func TestRegistry_LoadMissingFile(t *testing.T) {
	r := New(tinyConfig())

	_, err := r.Load(filepath.Join(t.TempDir(), "absent.safetensors"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRegistry_LoadWeightsMismatch(t *testing.T) {
	other := tinyConfig()
	other.VocabSize = 9
	path := writeCheckpoint(t, other, "wrong.safetensors")

	_, err := New(tinyConfig()).Load(path)
	require.ErrorIs(t, err, nn.ErrWeightsMismatch)

	var mismatch *nn.WeightsMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "shape", mismatch.Reason)
}

func TestOpen_PartialFailure(t *testing.T) {
	cfg := tinyConfig()
	good := writeCheckpoint(t, cfg, "cpp.safetensors")

	r, err := Open(cfg, map[Direction]string{
		CppToPseudo: good,
		PseudoToCpp: filepath.Join(t.TempDir(), "missing.safetensors"),
	})
	require.NoError(t, err)

	assert.Equal(t, []Direction{CppToPseudo}, r.Available())

	m, err := r.Model(CppToPseudo)
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = r.Model(PseudoToCpp)
	assert.ErrorIs(t, err, ErrDirectionUnavailable)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, r.Failures(), PseudoToCpp)
}

func TestOpen_SharedPath(t *testing.T) {
	cfg := tinyConfig()
	path := writeCheckpoint(t, cfg, "both.safetensors")

	r, err := Open(cfg, map[Direction]string{CppToPseudo: path, PseudoToCpp: path})
	require.NoError(t, err)

	a, err := r.Model(CppToPseudo)
	require.NoError(t, err)
	b, err := r.Model(PseudoToCpp)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestOpen_Errors(t *testing.T) {
	bad := tinyConfig()
	bad.NumHeads = 3
	_, err := Open(bad, nil)
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)

	_, err = Open(tinyConfig(), map[Direction]string{"sideways": "x"})
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestRegistry_RegisterAndModel(t *testing.T) {
	r := New(tinyConfig())

	_, err := r.Model(CppToPseudo)
	assert.ErrorIs(t, err, ErrDirectionUnavailable)

	_, err = r.Model("sideways")
	assert.ErrorIs(t, err, ErrUnknownDirection)

	m, err := nn.NewSeq2SeqTransformer(tinyConfig())
	require.NoError(t, err)
	r.Register(PseudoToCpp, m)

	got, err := r.Model(PseudoToCpp)
	require.NoError(t, err)
	assert.Same(t, m, got)
}
