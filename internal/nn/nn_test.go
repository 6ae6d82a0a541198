package nn

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/transcoder/internal/parallel"
)

func tinyConfig() *Config {
	return &Config{
		VocabSize:      10,
		MaxLength:      8,
		EmbedDim:       8,
		NumHeads:       2,
		NumLayers:      2,
		FeedForwardDim: 16,
		Dropout:        0.1,
		NormEps:        1e-5,
		Device:         DeviceAuto,
		Parallel:       parallel.Sequential(),
	}
}

func tinyModel(t *testing.T) *Seq2SeqTransformer {
	t.Helper()
	m, err := NewSeq2SeqTransformer(tinyConfig())
	require.NoError(t, err)
	return m
}

func TestConfig_Validate(t *testing.T) {
	def := DefaultConfig()
	require.NoError(t, def.Validate())
	assert.Equal(t, 32, def.HeadDim())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero vocab", func(c *Config) { c.VocabSize = 0 }},
		{"heads do not divide", func(c *Config) { c.NumHeads = 3 }},
		{"negative layers", func(c *Config) { c.NumLayers = -1 }},
		{"dropout one", func(c *Config) { c.Dropout = 1 }},
		{"zero eps", func(c *Config) { c.NormEps = 0 }},
		{"gpu device", func(c *Config) { c.Device = "cuda" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tinyConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_ResolveDevice(t *testing.T) {
	for _, d := range []Device{DeviceAuto, DeviceCPU, ""} {
		cfg := tinyConfig()
		cfg.Device = d
		got, err := cfg.ResolveDevice()
		require.NoError(t, err)
		assert.Equal(t, DeviceCPU, got)
	}
}

func TestPositionalEncoding_Table(t *testing.T) {
	pe := NewPositionalEncoding(4, 6)

	for i := 0; i < 6; i++ {
		want := 0.0
		if i%2 == 1 {
			want = 1.0
		}
		assert.InDelta(t, want, pe.Table.At(0, i), 1e-12, "pos 0, dim %d", i)
	}

	assert.InDelta(t, math.Sin(1), pe.Table.At(1, 0), 1e-12)
	assert.InDelta(t, math.Cos(1), pe.Table.At(1, 1), 1e-12)
	assert.InDelta(t, math.Sin(2/math.Pow(10000, 2.0/6)), pe.Table.At(2, 2), 1e-12)
	assert.InDelta(t, math.Cos(3/math.Pow(10000, 4.0/6)), pe.Table.At(3, 5), 1e-12)

	// Pure function of (maxLen, dim).
	assert.True(t, mat.Equal(pe.Table, NewPositionalEncoding(4, 6).Table))
}

func TestPositionalEncoding_Add(t *testing.T) {
	pe := NewPositionalEncoding(3, 2)

	out, err := pe.Add(mat.NewDense(2, 2, []float64{1, 1, 1, 1}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, out.At(0, 1), 1e-12)
	assert.InDelta(t, 1+math.Sin(1), out.At(1, 0), 1e-12)

	out, err = pe.Add(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = pe.Add(mat.NewDense(4, 2, nil))
	assert.ErrorIs(t, err, ErrSequenceTooLong)
}

func TestEmbedding_Forward(t *testing.T) {
	e := NewEmbedding(5, 4)

	out, err := e.Forward([]int32{3, 0})
	require.NoError(t, err)
	r, c := out.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 4, c)
	for j := 0; j < 4; j++ {
		assert.InDelta(t, 2*e.Weight.At(3, j), out.At(0, j), 1e-12)
	}

	out, err = e.Forward(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = e.Forward([]int32{5})
	assert.ErrorIs(t, err, ErrTokenOutOfRange)
	_, err = e.Forward([]int32{-1})
	assert.ErrorIs(t, err, ErrTokenOutOfRange)
}

func TestLayerNorm_Forward(t *testing.T) {
	ln := NewLayerNorm(4, 1e-5)
	out := ln.Forward(mat.NewDense(1, 4, []float64{1, 2, 3, 4}))

	row := out.RawRowView(0)
	var sum, sq float64
	for _, v := range row {
		sum += v
		sq += v * v
	}
	assert.InDelta(t, 0, sum/4, 1e-9)
	assert.InDelta(t, 1, sq/4, 1e-4)
}

func TestCausalMask(t *testing.T) {
	mask := CausalMask(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if j > i {
				assert.True(t, math.IsInf(mask.At(i, j), -1), "(%d,%d)", i, j)
			} else {
				assert.Equal(t, 0.0, mask.At(i, j), "(%d,%d)", i, j)
			}
		}
	}
	assert.Nil(t, CausalMask(0))
}

func TestScaledDotProductAttention(t *testing.T) {
	q := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})
	k := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})
	v := mat.NewDense(3, 1, []float64{1, 2, 3})

	out, weights := ScaledDotProductAttention(q, k, v, CausalMask(3))

	for i := 0; i < 3; i++ {
		var sum float64
		for j := 0; j < 3; j++ {
			if j > i {
				assert.Equal(t, 0.0, weights.At(i, j))
			}
			sum += weights.At(i, j)
		}
		assert.InDelta(t, 1, sum, 1e-12)
	}
	// The first query can only see the first value.
	assert.InDelta(t, 1, out.At(0, 0), 1e-12)
}

func TestSeq2Seq_ForwardShape(t *testing.T) {
	m := tinyModel(t)

	logits, err := m.Forward([]int32{4, 5, 6}, []int32{1, 7})
	require.NoError(t, err)
	r, c := logits.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 10, c)
}

func TestSeq2Seq_CausalMasking(t *testing.T) {
	m := tinyModel(t)
	src := []int32{4, 5, 6}
	tgt := []int32{1, 3, 7, 8, 9}

	base, err := m.Forward(src, tgt)
	require.NoError(t, err)

	for i := 0; i < len(tgt)-1; i++ {
		perturbed := append([]int32(nil), tgt...)
		for j := i + 1; j < len(perturbed); j++ {
			perturbed[j] = int32((int(perturbed[j]) + 3) % 10)
		}
		got, err := m.Forward(src, perturbed)
		require.NoError(t, err)

		for row := 0; row <= i; row++ {
			for col := 0; col < 10; col++ {
				assert.InDelta(t, base.At(row, col), got.At(row, col), 1e-9,
					"prefix %d: row %d col %d changed", i, row, col)
			}
		}
	}
}

func TestSeq2Seq_EmptySource(t *testing.T) {
	m := tinyModel(t)

	memory, err := m.Encode(nil)
	require.NoError(t, err)
	assert.Nil(t, memory)

	logits, err := m.Forward(nil, []int32{1})
	require.NoError(t, err)
	for _, v := range logits.RawRowView(0) {
		assert.False(t, math.IsNaN(v))
	}
}

func TestSeq2Seq_Errors(t *testing.T) {
	m := tinyModel(t)

	_, err := m.Forward([]int32{1}, nil)
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = m.Forward(make([]int32, 9), []int32{1})
	require.ErrorIs(t, err, ErrSequenceTooLong)
	var tooLong *SequenceTooLongError
	require.True(t, errors.As(err, &tooLong))
	assert.Equal(t, "source", tooLong.Sequence)
	assert.Equal(t, 9, tooLong.Length)
	assert.Equal(t, 8, tooLong.Max)

	_, err = m.Forward([]int32{1}, make([]int32, 9))
	require.True(t, errors.As(err, &tooLong))
	assert.Equal(t, "target", tooLong.Sequence)

	_, err = m.Forward([]int32{42}, []int32{1})
	assert.ErrorIs(t, err, ErrTokenOutOfRange)
}

func TestSeq2Seq_DecoderSelfAttentionWeights(t *testing.T) {
	m := tinyModel(t)
	tgt := []int32{1, 3, 7, 8}

	heads, err := m.DecoderSelfAttentionWeights([]int32{4, 5}, tgt, 1)
	require.NoError(t, err)
	require.Len(t, heads, 2)

	for _, w := range heads {
		for i := range tgt {
			var sum float64
			for j := range tgt {
				if j > i {
					assert.Equal(t, 0.0, w.At(i, j))
				}
				sum += w.At(i, j)
			}
			assert.InDelta(t, 1, sum, 1e-9)
		}
	}

	_, err = m.DecoderSelfAttentionWeights(nil, tgt, 2)
	assert.Error(t, err)
}

func TestSeq2Seq_Parameters(t *testing.T) {
	m := tinyModel(t)

	shapes := make(map[string][]int)
	for _, p := range m.Parameters() {
		_, dup := shapes[p.Name()]
		require.False(t, dup, "duplicate parameter %s", p.Name())
		shapes[p.Name()] = p.Shape()
	}

	assert.Len(t, shapes, 67)
	assert.Equal(t, []int{10, 8}, shapes["embedding.weight"])
	assert.Equal(t, []int{24, 8}, shapes["transformer.encoder.layers.0.self_attn.in_proj_weight"])
	assert.Equal(t, []int{24}, shapes["transformer.encoder.layers.1.self_attn.in_proj_bias"])
	assert.Equal(t, []int{16, 8}, shapes["transformer.encoder.layers.0.linear1.weight"])
	assert.Equal(t, []int{8}, shapes["transformer.encoder.norm.bias"])
	assert.Equal(t, []int{8, 8}, shapes["transformer.decoder.layers.1.multihead_attn.out_proj.weight"])
	assert.Equal(t, []int{8}, shapes["transformer.decoder.layers.0.norm3.weight"])
	assert.Equal(t, []int{8}, shapes["transformer.decoder.norm.weight"])
	assert.Equal(t, []int{10, 8}, shapes["fc_out.weight"])
	assert.Equal(t, []int{10}, shapes["fc_out.bias"])

	assert.Equal(t, 3210, m.NumParameters())
}

func TestSeq2Seq_ParallelHeadsMatchSequential(t *testing.T) {
	seq := tinyModel(t)

	cfg := tinyConfig()
	cfg.Parallel = parallel.Config{Enabled: true, NumWorkers: 4, MinItems: 1}
	par, err := NewSeq2SeqTransformer(cfg)
	require.NoError(t, err)
	require.NoError(t, par.LoadStateDict(seq.StateDict(), true))

	src, tgt := []int32{4, 5, 6}, []int32{1, 2, 3}
	want, err := seq.Forward(src, tgt)
	require.NoError(t, err)
	got, err := par.Forward(src, tgt)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
}

func TestSeq2Seq_ConcurrentForward(t *testing.T) {
	cfg := tinyConfig()
	cfg.Parallel = parallel.Config{Enabled: true, NumWorkers: 4, MinItems: 1}
	m, err := NewSeq2SeqTransformer(cfg)
	require.NoError(t, err)

	inputs := []struct{ src, tgt []int32 }{
		{[]int32{4, 5, 6}, []int32{1, 2, 3}},
		{[]int32{7}, []int32{1}},
		{nil, []int32{1, 9}},
		{[]int32{3, 3, 8, 2}, []int32{1, 4, 4}},
	}
	want := make([]*mat.Dense, len(inputs))
	for i, in := range inputs {
		want[i], err = m.Forward(in.src, in.tgt)
		require.NoError(t, err)
	}

	const goroutines, calls = 16, 20
	got := make([][]*mat.Dense, goroutines)
	errs := make([]error, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for c := 0; c < calls; c++ {
				in := inputs[(g+c)%len(inputs)]
				out, err := m.Forward(in.src, in.tgt)
				if err != nil {
					errs[g] = err
					return
				}
				got[g] = append(got[g], out)
			}
		}(g)
	}
	wg.Wait()

	for g := 0; g < goroutines; g++ {
		require.NoError(t, errs[g])
		require.Len(t, got[g], calls)
		for c, out := range got[g] {
			assert.True(t, mat.EqualApprox(want[(g+c)%len(inputs)], out, 0), "goroutine %d call %d", g, c)
		}
	}
}
