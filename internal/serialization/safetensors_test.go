package serialization_test

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/serialization"
	"github.com/netdyn/netdyn/internal/tensor"
)

func newF32(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

// encode builds a SafeTensors stream from a raw header, bypassing Write.
func encode(t *testing.T, header map[string]any, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON))))
	buf.Write(headerJSON)
	buf.Write(data)
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	step, err := tensor.NewRaw(tensor.Shape{}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	step.AsFloat64()[0] = 42

	stateDict := map[string]*tensor.RawTensor{
		"fc1.weight": newF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6),
		"fc1.bias":   newF32(t, tensor.Shape{2}, 0.5, -0.5),
		"t":          step,
	}

	var buf bytes.Buffer
	require.NoError(t, serialization.Write(&buf, stateDict, map[string]string{"model": "scm"}))

	ckpt, err := serialization.Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, "scm", ckpt.Metadata["model"])
	assert.Len(t, ckpt.Metadata[serialization.ChecksumKey], 64)
	require.Len(t, ckpt.Tensors, 3)

	w := ckpt.Tensors["fc1.weight"]
	assert.Equal(t, tensor.Shape{2, 3}, w.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, w.AsFloat32())
	assert.Equal(t, []float32{0.5, -0.5}, ckpt.Tensors["fc1.bias"].AsFloat32())
	assert.Equal(t, tensor.Float64, ckpt.Tensors["t"].DType())
	assert.Equal(t, []float64{42}, ckpt.Tensors["t"].AsFloat64())
}

func TestWriteFile_ModelStateDict(t *testing.T) {
	backend := cpu.New()
	cfg := nn.SCMConfig[*cpu.CPUBackend]{InFeatures: 3, HiddenFeatures: 4}
	model := nn.NewSCM(cfg, random.NewKey(7), backend)

	path := filepath.Join(t.TempDir(), "scm.safetensors")
	require.NoError(t, serialization.WriteFile(path, model.StateDict(), nil))

	ckpt, err := serialization.ReadFile(path)
	require.NoError(t, err)

	restored := nn.NewSCM(cfg, random.NewKey(8), backend)
	require.NoError(t, restored.LoadStateDict(ckpt.Tensors))

	want := model.StateDict()
	got := restored.StateDict()
	require.Len(t, got, len(want))
	for name, raw := range want {
		assert.Equal(t, raw.AsFloat32(), got[name].AsFloat32(), name)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := serialization.ReadFile(filepath.Join(t.TempDir(), "nope.safetensors"))
	require.Error(t, err)
}

func TestRead_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, serialization.Write(&buf, map[string]*tensor.RawTensor{
		"w": newF32(t, tensor.Shape{2}, 1, 2),
	}, nil))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xff

	_, err := serialization.Read(bytes.NewReader(data))
	require.ErrorIs(t, err, serialization.ErrChecksumMismatch)
}

func TestRead_WithoutChecksum(t *testing.T) {
	raw := newF32(t, tensor.Shape{2}, 3, 4)
	data := encode(t, map[string]any{
		"w": serialization.TensorHeader{DType: "F32", Shape: []int64{2}, DataOffsets: [2]int64{0, 8}},
	}, raw.Data())

	ckpt, err := serialization.Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, ckpt.Metadata)
	assert.Equal(t, []float32{3, 4}, ckpt.Tensors["w"].AsFloat32())
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]any
		data   []byte
		want   error
	}{
		{
			name: "unsupported dtype",
			header: map[string]any{
				"w": serialization.TensorHeader{DType: "I64", Shape: []int64{1}, DataOffsets: [2]int64{0, 8}},
			},
			data: make([]byte, 8),
			want: serialization.ErrUnsupportedDType,
		},
		{
			name: "out of bounds",
			header: map[string]any{
				"w": serialization.TensorHeader{DType: "F32", Shape: []int64{4}, DataOffsets: [2]int64{0, 16}},
			},
			data: make([]byte, 8),
			want: serialization.ErrOutOfBounds,
		},
		{
			name: "overlap",
			header: map[string]any{
				"a": serialization.TensorHeader{DType: "F32", Shape: []int64{2}, DataOffsets: [2]int64{0, 8}},
				"b": serialization.TensorHeader{DType: "F32", Shape: []int64{2}, DataOffsets: [2]int64{4, 12}},
			},
			data: make([]byte, 12),
			want: serialization.ErrOffsetOverlap,
		},
		{
			name: "size mismatch",
			header: map[string]any{
				"w": serialization.TensorHeader{DType: "F32", Shape: []int64{3}, DataOffsets: [2]int64{0, 8}},
			},
			data: make([]byte, 8),
			want: serialization.ErrSizeMismatch,
		},
		{
			name: "path in name",
			header: map[string]any{
				"../w": serialization.TensorHeader{DType: "F32", Shape: []int64{1}, DataOffsets: [2]int64{0, 4}},
			},
			data: make([]byte, 4),
			want: serialization.ErrInvalidTensorName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serialization.Read(bytes.NewReader(encode(t, tt.header, tt.data)))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRead_HeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(serialization.MaxHeaderSize+1)))

	_, err := serialization.Read(&buf)
	require.ErrorIs(t, err, serialization.ErrHeaderTooLarge)
}

func TestWrite_InvalidName(t *testing.T) {
	var buf bytes.Buffer
	err := serialization.Write(&buf, map[string]*tensor.RawTensor{
		serialization.MetadataKey: newF32(t, tensor.Shape{1}, 1),
	}, nil)
	require.ErrorIs(t, err, serialization.ErrInvalidTensorName)
}

func TestValidationError_Message(t *testing.T) {
	err := serialization.ValidateTensorOffsets([]serialization.TensorMeta{
		{Name: "a", DType: tensor.Float32, Shape: tensor.Shape{2}, Offset: 0, Size: 8},
		{Name: "b", DType: tensor.Float32, Shape: tensor.Shape{2}, Offset: 4, Size: 8},
	}, 12)

	var verr *serialization.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "a", verr.Tensor)
	assert.Equal(t, "b", verr.Tensor2)
	assert.Contains(t, err.Error(), "overlap")
}

func TestValidateChecksum(t *testing.T) {
	data := []byte("netdyn")
	sum := serialization.ComputeChecksum(data)

	require.ErrorIs(t, serialization.ValidateChecksum(data, "zz"), serialization.ErrChecksumMismatch)
	require.ErrorIs(t, serialization.ValidateChecksum([]byte("other"), hex.EncodeToString(sum[:])), serialization.ErrChecksumMismatch)
	require.NoError(t, serialization.ValidateChecksum(data, hex.EncodeToString(sum[:])))
}
