package serialization

import (
	"github.com/netdyn/netdyn/internal/tensor"
)

// Format constants.
const (
	// MetadataKey is the reserved header entry holding string metadata.
	MetadataKey = "__metadata__"

	// ChecksumKey is the metadata entry holding the hex SHA-256 of the data section.
	ChecksumKey = "sha256"
)

// SafeTensors dtype strings.
const (
	DTypeF32 = "F32"
	DTypeF64 = "F64"
)

// TensorHeader describes one tensor in the SafeTensors JSON header.
type TensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta is a named tensor location within the data section.
type TensorMeta struct {
	Name   string
	DType  tensor.DataType
	Shape  tensor.Shape
	Offset int64 // Bytes from start of the data section
	Size   int64 // Size in bytes
}

// Checkpoint is the decoded content of a SafeTensors file.
type Checkpoint struct {
	Tensors  map[string]*tensor.RawTensor
	Metadata map[string]string
}

// dtypeToString converts tensor.DataType to its SafeTensors name.
func dtypeToString(dt tensor.DataType) (string, bool) {
	switch dt {
	case tensor.Float32:
		return DTypeF32, true
	case tensor.Float64:
		return DTypeF64, true
	default:
		return "", false
	}
}

// stringToDtype converts a SafeTensors dtype name to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeF32:
		return tensor.Float32, true
	case DTypeF64:
		return tensor.Float64, true
	default:
		return 0, false
	}
}
