package loader

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// safeTensorHeaderEntry represents a tensor in the SafeTensors header.
type safeTensorHeaderEntry struct {
	DType       SafeTensorsDType `json:"dtype"`
	Shape       []int64          `json:"shape"`
	DataOffsets [2]int64         `json:"data_offsets"`
}

// WriteSafeTensors writes tensors to a SafeTensors file.
//
// Tensors are written in alphabetical order by name. Tensors whose DType is
// F64 are stored as F64; everything else is narrowed to F32.
func WriteSafeTensors(path string, tensors map[string]*Tensor, metadata map[string]string) error {
	//nolint:gosec // G304: output path comes from the caller.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	w := bufio.NewWriter(file)
	if err := writeStateDict(w, tensors, metadata); err != nil {
		_ = file.Close() // Best effort close on error
		return err
	}
	if err := w.Flush(); err != nil {
		_ = file.Close() // Best effort close on error
		return fmt.Errorf("failed to flush weights: %w", err)
	}
	return file.Close()
}

func writeStateDict(w *bufio.Writer, tensors map[string]*Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(tensors)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	var offset int64
	for _, name := range names {
		t := tensors[name]
		if NumElements(t.Shape) != len(t.Data) {
			return fmt.Errorf("%w: tensor %s shape %v with %d elements", ErrSizeMismatch, name, t.Shape, len(t.Data))
		}

		dtype := storedDType(t)
		size := int64(len(t.Data) * dtype.Size())

		shape := make([]int64, len(t.Shape))
		for i, dim := range t.Shape {
			shape[i] = int64(dim)
		}

		header[name] = safeTensorHeaderEntry{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var buf [8]byte
	for _, name := range names {
		t := tensors[name]
		if storedDType(t) == SafeTensorsF64 {
			for _, v := range t.Data {
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
				if _, err := w.Write(buf[:8]); err != nil {
					return fmt.Errorf("failed to write tensor %s: %w", name, err)
				}
			}
			continue
		}
		for _, v := range t.Data {
			binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(float32(v)))
			if _, err := w.Write(buf[:4]); err != nil {
				return fmt.Errorf("failed to write tensor %s: %w", name, err)
			}
		}
	}

	return nil
}

func storedDType(t *Tensor) SafeTensorsDType {
	if t.DType == SafeTensorsF64 {
		return SafeTensorsF64
	}
	return SafeTensorsF32
}
