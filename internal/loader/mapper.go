package loader

import (
	"fmt"
	"strings"
)

// WeightMapper maps checkpoint weight names to the names the network expects.
type WeightMapper interface {
	// MapName converts a stored weight name to its canonical name.
	MapName(name string) (string, error)
}

// wrapperPrefixes are added by torch.nn.DataParallel and torch.compile.
var wrapperPrefixes = []string{"module.", "_orig_mod."}

// PyTorchMapper maps names saved from a PyTorch Seq2SeqTransformer state_dict.
//
// Stored names are already canonical apart from wrapper prefixes:
//   - module.embedding.weight -> embedding.weight
//   - _orig_mod.transformer.decoder.norm.bias -> transformer.decoder.norm.bias
//
// The sinusoidal table is not a parameter; a stray "positional_encoding.pe"
// entry is reported with ErrSkipTensor so it never shadows the computed one.
type PyTorchMapper struct{}

// NewPyTorchMapper creates a new PyTorch weight mapper.
func NewPyTorchMapper() *PyTorchMapper {
	return &PyTorchMapper{}
}

// MapName strips wrapper prefixes from name.
func (m *PyTorchMapper) MapName(name string) (string, error) {
	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range wrapperPrefixes {
			if strings.HasPrefix(name, prefix) {
				name = strings.TrimPrefix(name, prefix)
				stripped = true
			}
		}
	}

	if name == "" {
		return "", fmt.Errorf("empty weight name")
	}
	if strings.HasPrefix(name, "positional_encoding.") {
		return "", fmt.Errorf("%w: %s is computed, not loaded", ErrSkipTensor, name)
	}
	return name, nil
}
