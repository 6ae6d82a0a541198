package loader

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// maxHeaderSize bounds the JSON header we are willing to allocate.
const maxHeaderSize = 100 * 1024 * 1024

// SafeTensorsDType represents supported SafeTensors data types.
type SafeTensorsDType string

// Supported SafeTensors dtypes.
const (
	SafeTensorsF16  SafeTensorsDType = "F16"
	SafeTensorsF32  SafeTensorsDType = "F32"
	SafeTensorsF64  SafeTensorsDType = "F64"
	SafeTensorsBF16 SafeTensorsDType = "BF16"
	SafeTensorsI32  SafeTensorsDType = "I32"
	SafeTensorsI64  SafeTensorsDType = "I64"
)

// Size returns the element size in bytes, or 0 for an unknown dtype.
func (d SafeTensorsDType) Size() int {
	switch d {
	case SafeTensorsF16, SafeTensorsBF16:
		return 2
	case SafeTensorsF32, SafeTensorsI32:
		return 4
	case SafeTensorsF64, SafeTensorsI64:
		return 8
	default:
		return 0
	}
}

// SafeTensorInfo describes a tensor in SafeTensors format.
type SafeTensorInfo struct {
	DType       SafeTensorsDType `json:"dtype"`
	Shape       []int            `json:"shape"`
	DataOffsets [2]int64         `json:"data_offsets"` // [start, end]
}

// SafeTensorsHeader is the JSON header in SafeTensors format.
type SafeTensorsHeader struct {
	Metadata map[string]string         `json:"__metadata__"`
	Tensors  map[string]SafeTensorInfo `json:"-"`
}

// UnmarshalJSON implements custom JSON unmarshaling for SafeTensorsHeader.
func (h *SafeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]SafeTensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info SafeTensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}

	return nil
}

// SafeTensorsReader reads SafeTensors format files.
type SafeTensorsReader struct {
	file       *os.File
	header     SafeTensorsHeader
	dataOffset int64 // Offset where tensor data starts
	dataSize   int64 // Bytes available after the header
}

// NewSafeTensorsReader opens path and parses its header.
//
// A missing file yields an error wrapping fs.ErrNotExist.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	//nolint:gosec // G304: weight paths come from configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights: %w", err)
	}

	reader, err := newSafeTensorsReader(file)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, err
	}
	return reader, nil
}

func newSafeTensorsReader(file *os.File) (*SafeTensorsReader, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat weights: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header SafeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	dataOffset := int64(8 + headerSize) //nolint:gosec // G115: headerSize bounded by maxHeaderSize.

	return &SafeTensorsReader{
		file:       file,
		header:     header,
		dataOffset: dataOffset,
		dataSize:   stat.Size() - dataOffset,
	}, nil
}

// Close closes the SafeTensors file.
func (r *SafeTensorsReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Metadata returns the metadata map from the header.
func (r *SafeTensorsReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns all tensor names in the file, sorted.
func (r *SafeTensorsReader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *SafeTensorsReader) TensorInfo(name string) (*SafeTensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return &info, nil
}

// ReadTensorData reads raw tensor bytes for a given tensor name.
func (r *SafeTensorsReader) ReadTensorData(name string) ([]byte, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if start < 0 || end < start || end > r.dataSize {
		return nil, fmt.Errorf("%w: tensor %s [%d, %d] with %d data bytes",
			ErrOutOfBounds, name, start, end, r.dataSize)
	}

	data := make([]byte, end-start)
	if _, err := r.file.ReadAt(data, r.dataOffset+start); err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}

	return data, nil
}

// LoadTensor reads a tensor and widens it to float64.
func (r *SafeTensorsReader) LoadTensor(name string) (*Tensor, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	n := NumElements(info.Shape)
	if n < 0 {
		return nil, fmt.Errorf("%w: invalid shape for tensor %s: %v", ErrSizeMismatch, name, info.Shape)
	}
	elemSize := info.DType.Size()
	if elemSize == 0 {
		return nil, fmt.Errorf("%w: %s (tensor %s)", ErrUnsupportedDType, info.DType, name)
	}

	raw, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	if n > len(raw)/elemSize || len(raw) != n*elemSize {
		return nil, fmt.Errorf("%w: tensor %s has %d bytes, shape %v %s needs %d",
			ErrSizeMismatch, name, len(raw), info.Shape, info.DType, n*elemSize)
	}

	return &Tensor{
		DType: info.DType,
		Shape: append([]int(nil), info.Shape...),
		Data:  decode(raw, info.DType, n),
	}, nil
}

// decode widens little-endian elements of dtype to float64.
func decode(raw []byte, dtype SafeTensorsDType, n int) []float64 {
	out := make([]float64, n)
	switch dtype {
	case SafeTensorsF32:
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case SafeTensorsF64:
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	case SafeTensorsF16:
		for i := range out {
			out[i] = float64(Float16ToFloat32(binary.LittleEndian.Uint16(raw[i*2:])))
		}
	case SafeTensorsBF16:
		for i := range out {
			out[i] = float64(BFloat16ToFloat32(binary.LittleEndian.Uint16(raw[i*2:])))
		}
	case SafeTensorsI32:
		for i := range out {
			//nolint:gosec // G115: reinterpreting stored int32 bits.
			out[i] = float64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case SafeTensorsI64:
		for i := range out {
			//nolint:gosec // G115: reinterpreting stored int64 bits.
			out[i] = float64(int64(binary.LittleEndian.Uint64(raw[i*8:])))
		}
	}
	return out
}

// ReadSafeTensors loads every tensor in path, renaming each through mapper.
// A nil mapper keeps the stored names.
func ReadSafeTensors(path string, mapper WeightMapper) (map[string]*Tensor, error) {
	reader, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close() // read-only, nothing to flush
	}()

	tensors := make(map[string]*Tensor, len(reader.header.Tensors))
	for _, name := range reader.TensorNames() {
		mapped := name
		if mapper != nil {
			mapped, err = mapper.MapName(name)
			if errors.Is(err, ErrSkipTensor) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to map tensor name %s: %w", name, err)
			}
		}
		if _, dup := tensors[mapped]; dup {
			return nil, fmt.Errorf("tensor %s maps to already loaded name %s", name, mapped)
		}

		t, err := reader.LoadTensor(name)
		if err != nil {
			return nil, err
		}
		tensors[mapped] = t
	}

	return tensors, nil
}
