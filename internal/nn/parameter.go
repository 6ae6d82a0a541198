package nn

// Parameter is a named view of a learned tensor.
//
// Data aliases the owning layer's storage, so writing through it (as
// LoadStateDict does) updates the layer in place.
type Parameter struct {
	name  string
	shape []int
	data  []float64
}

// NewParameter creates a Parameter over data.
func NewParameter(name string, shape []int, data []float64) *Parameter {
	return &Parameter{name: name, shape: shape, data: data}
}

// Name returns the dotted parameter name.
func (p *Parameter) Name() string { return p.name }

// Shape returns the parameter shape.
func (p *Parameter) Shape() []int { return p.shape }

// Data returns the backing storage.
func (p *Parameter) Data() []float64 { return p.data }

// NumElements returns the number of scalars in the parameter.
func (p *Parameter) NumElements() int { return len(p.data) }

// Module is implemented by every layer with learned state.
type Module interface {
	// Parameters returns the layer's parameters with names relative to it.
	Parameters() []*Parameter
}

var (
	_ Module = (*Linear)(nil)
	_ Module = (*LayerNorm)(nil)
	_ Module = (*FFN)(nil)
	_ Module = (*Embedding)(nil)
	_ Module = (*MultiHeadAttention)(nil)
	_ Module = (*EncoderLayer)(nil)
	_ Module = (*Encoder)(nil)
	_ Module = (*DecoderLayer)(nil)
	_ Module = (*Decoder)(nil)
	_ Module = (*Seq2SeqTransformer)(nil)
)

// prefixed returns params renamed to prefix + "." + name, sharing storage.
func prefixed(prefix string, params []*Parameter) []*Parameter {
	out := make([]*Parameter, len(params))
	for i, p := range params {
		out[i] = &Parameter{name: prefix + "." + p.name, shape: p.shape, data: p.data}
	}
	return out
}
