package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/netdyn/netdyn/internal/tensor"
)

// Read decodes a SafeTensors stream into a Checkpoint.
//
// Tensor offsets are validated against the data section before any tensor is
// materialized. If the metadata carries a checksum it must match.
func Read(r io.Reader) (*Checkpoint, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	ckpt := &Checkpoint{
		Tensors:  make(map[string]*tensor.RawTensor, len(entries)),
		Metadata: map[string]string{},
	}
	if raw, ok := entries[MetadataKey]; ok {
		if err := json.Unmarshal(raw, &ckpt.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
		delete(entries, MetadataKey)
	}

	metas, err := parseTensorHeaders(entries)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, err
	}
	if sum, ok := ckpt.Metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, err
		}
	}

	for _, m := range metas {
		raw, err := tensor.NewRaw(m.Shape, m.DType, tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", m.Name, err)
		}
		copy(raw.Data(), data[m.Offset:m.Offset+m.Size])
		ckpt.Tensors[m.Name] = raw
	}
	return ckpt, nil
}

// ReadFile reads a SafeTensors file from path.
func ReadFile(path string) (*Checkpoint, error) {
	//nolint:gosec // G304: loading a user-supplied checkpoint path is the point
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Read(f)
}

func parseTensorHeaders(entries map[string]json.RawMessage) ([]TensorMeta, error) {
	metas := make([]TensorMeta, 0, len(entries))
	for name, raw := range entries {
		if err := ValidateTensorName(name); err != nil {
			return nil, err
		}
		var h TensorHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("tensor %q: failed to parse header: %w", name, err)
		}
		dtype, ok := stringToDtype(h.DType)
		if !ok {
			return nil, fmt.Errorf("tensor %q: %w: %s", name, ErrUnsupportedDType, h.DType)
		}
		shape := make(tensor.Shape, len(h.Shape))
		for i, dim := range h.Shape {
			if dim < 0 {
				return nil, &ValidationError{Err: ErrNegativeOffset, Tensor: name, Details: fmt.Sprintf("negative dimension %d", dim)}
			}
			shape[i] = int(dim)
		}
		metas = append(metas, TensorMeta{
			Name:   name,
			DType:  dtype,
			Shape:  shape,
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		})
	}
	return metas, nil
}
