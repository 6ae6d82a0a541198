// Package loader reads and writes model weights in the SafeTensors format.
//
// SafeTensors layout:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw bytes]
//
// Weights exported from a PyTorch state_dict keep their dotted parameter names
// (e.g. "transformer.encoder.layers.0.self_attn.in_proj_weight"). Wrapper
// prefixes added by DataParallel or torch.compile are removed by PyTorchMapper.
//
// Every floating-point dtype (F32, F64, F16, BF16) is widened to float64 on
// load, which is what the gonum-based network consumes.
//
// Example:
//
//	tensors, err := loader.ReadSafeTensors("cpp_to_pseudo.safetensors", loader.NewPyTorchMapper())
//	if err != nil {
//	    return err
//	}
//	emb := tensors["embedding.weight"] // Shape [vocab, embed_dim]
package loader
