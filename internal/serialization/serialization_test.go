package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/densenet/internal/nn"
)

func testNetwork(t *testing.T) *nn.Network {
	t.Helper()
	net, err := nn.New(nn.Config{
		Structure:     []int{3, 4, 2},
		LearningRate:  0.25,
		Normalization: nn.Normalization{Method: nn.NormalizeByConstant, Constant: 255},
		Rand:          rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)
	return net
}

func encode(t *testing.T, net *nn.Network, meta map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := WriteSnapshot(&buf, net.Save(), meta)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestWriteReadSnapshot(t *testing.T) {
	net := testNetwork(t)

	var buf bytes.Buffer
	id, err := WriteSnapshot(&buf, net.Save(), map[string]string{"dataset": "unit"})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	raw := buf.Bytes()
	assert.Equal(t, MagicBytes, string(raw[:4]))
	assert.Equal(t, FlagHasMetadata, binary.LittleEndian.Uint32(raw[8:12]))

	snap, header, err := ReadSnapshot(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, net.Save(), snap)
	assert.Equal(t, id, header.ModelID)
	assert.Equal(t, ModelType, header.ModelType)
	assert.Equal(t, "unit", header.Metadata["dataset"])
	require.Len(t, header.Tensors, 4)
	assert.Equal(t, "layers.0.weights", header.Tensors[0].Name)
	assert.Equal(t, []int{4, 3}, header.Tensors[0].Shape)
	assert.Equal(t, "layers.1.bias", header.Tensors[3].Name)
	assert.Equal(t, []int{2, 1}, header.Tensors[3].Shape)
}

func TestWriteSnapshot_DataIsAligned(t *testing.T) {
	raw := encode(t, testNetwork(t), nil)

	headerSize := binary.LittleEndian.Uint64(raw[16:24])
	dataSize := binary.LittleEndian.Uint64(raw[24:32])
	dataStart := uint64(len(raw)) - dataSize

	assert.Zero(t, dataStart%HeaderAlignment)
	assert.GreaterOrEqual(t, dataStart, FixedHeaderSize+headerSize)
	assert.Equal(t, uint64((4*3+4+2*4+2)*8), dataSize)
	assert.Zero(t, binary.LittleEndian.Uint32(raw[8:12]), "no metadata flag without metadata")
}

func TestSaveLoadFile(t *testing.T) {
	net := testNetwork(t)
	path := filepath.Join(t.TempDir(), "model.dnet")

	id, err := SaveFile(path, net, nil)
	require.NoError(t, err)

	loaded, header, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, id, header.ModelID)

	for _, input := range [][]float64{{0, 128, 255}, {12, 40, 3}} {
		want, err := net.Predict(input)
		require.NoError(t, err)
		got, err := loaded.Predict(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.dnet"))
	assert.Error(t, err)
}

func TestReadSnapshot_InvalidMagic(t *testing.T) {
	raw := encode(t, testNetwork(t), nil)
	copy(raw, "BORN")

	_, _, err := ReadSnapshot(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReadSnapshot_UnsupportedVersion(t *testing.T) {
	raw := encode(t, testNetwork(t), nil)
	binary.LittleEndian.PutUint32(raw[4:8], 9)

	_, _, err := ReadSnapshot(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestReadSnapshot_CorruptData(t *testing.T) {
	raw := encode(t, testNetwork(t), nil)
	raw[len(raw)-1] ^= 0xff

	_, _, err := ReadSnapshot(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	snap, _, err := ReadSnapshotWithOptions(bytes.NewReader(raw), ReaderOptions{SkipChecksumValidation: true})
	require.NoError(t, err)
	assert.Len(t, snap.Layers, 2)
}

func TestReadSnapshot_HeaderTooLarge(t *testing.T) {
	raw := encode(t, testNetwork(t), nil)
	binary.LittleEndian.PutUint64(raw[16:24], MaxHeaderSize+1)

	_, _, err := ReadSnapshot(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestReadSnapshot_Truncated(t *testing.T) {
	raw := encode(t, testNetwork(t), nil)

	for _, n := range []int{0, 10, FixedHeaderSize + 5, len(raw) - 8} {
		_, _, err := ReadSnapshot(bytes.NewReader(raw[:n]))
		assert.Error(t, err, "n=%d", n)
	}
}

func TestValidateTensorName(t *testing.T) {
	assert.NoError(t, ValidateTensorName("layers.0.weights"))
	for _, name := range []string{"", "../etc/passwd", "a/b", `a\b`, "x\x00y", string(make([]byte, MaxTensorNameLen+1))} {
		assert.ErrorIs(t, ValidateTensorName(name), ErrInvalidTensorName, "name=%q", name)
	}
}

func TestValidateTensorOffsets(t *testing.T) {
	a := TensorMeta{Name: "a", DType: DTypeFloat64, Shape: []int{2, 1}, Offset: 0, Size: 16}
	b := TensorMeta{Name: "b", DType: DTypeFloat64, Shape: []int{1, 1}, Offset: 16, Size: 8}

	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantErr  error
		wantType string
	}{
		{"valid", []TensorMeta{a, b}, 24, nil, ""},
		{"out of bounds", []TensorMeta{a, b}, 20, ErrOutOfBounds, "out_of_bounds"},
		{"overlap", []TensorMeta{a, {Name: "b", DType: DTypeFloat64, Shape: []int{1, 1}, Offset: 8, Size: 8}}, 24, ErrOffsetOverlap, "offset_overlap"},
		{"size does not match shape", []TensorMeta{{Name: "a", DType: DTypeFloat64, Shape: []int{2, 2}, Offset: 0, Size: 16}}, 32, nil, "bad_layout"},
		{"negative offset", []TensorMeta{{Name: "a", DType: DTypeFloat64, Shape: []int{1, 1}, Offset: -8, Size: 8}}, 32, ErrOutOfBounds, "negative_offset"},
		{"offset wraps when added to size", []TensorMeta{{Name: "a", DType: DTypeFloat64, Shape: []int{1, 1}, Offset: math.MaxInt64 - 4, Size: 8}}, 32, ErrOutOfBounds, "out_of_bounds"},
		{"shape product wraps to zero", []TensorMeta{{Name: "a", DType: DTypeFloat64, Shape: []int{1 << 62, 4}, Offset: 0, Size: 0}}, 32, ErrInvalidShape, "bad_shape"},
		{"shape product too large", []TensorMeta{{Name: "a", DType: DTypeFloat64, Shape: []int{1 << 20, 1 << 20}, Offset: 0, Size: 8}}, 32, ErrInvalidShape, "bad_shape"},
		{"zero dimension", []TensorMeta{{Name: "a", DType: DTypeFloat64, Shape: []int{0, 4}, Offset: 0, Size: 0}}, 32, ErrInvalidShape, "bad_shape"},
		{"negative dimension", []TensorMeta{{Name: "a", DType: DTypeFloat64, Shape: []int{-1, -8}, Offset: 0, Size: 64}}, 64, ErrInvalidShape, "bad_shape"},
		{"empty shape", []TensorMeta{{Name: "a", DType: DTypeFloat64, Offset: 0, Size: 0}}, 32, ErrInvalidShape, "bad_shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantType, verr.Type)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// craft lays out a file from an arbitrary header and data section with a
// correct checksum, bypassing WriteSnapshot's consistency.
func craft(t *testing.T, header Header, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed, MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	sum := ComputeChecksum(data)
	copy(fixed[ChecksumOffset:], sum[:])

	raw := append(fixed, headerJSON...)
	raw = append(raw, make([]byte, paddingFor(int64(len(raw))))...)
	return append(raw, data...)
}

func TestReadSnapshot_RejectsOversizedShapes(t *testing.T) {
	bias := TensorMeta{Name: BiasName(0), DType: DTypeFloat64, Shape: []int{4, 1}, Offset: 0, Size: 32}
	data := make([]byte, 32)

	tests := []struct {
		name    string
		weights TensorMeta
		wantErr error
	}{
		{"shape product wraps", TensorMeta{Name: WeightsName(0), DType: DTypeFloat64, Shape: []int{1 << 62, 4}, Offset: 32, Size: 0}, ErrInvalidShape},
		{"offset wraps", TensorMeta{Name: WeightsName(0), DType: DTypeFloat64, Shape: []int{4, 1}, Offset: math.MaxInt64 - 8, Size: 32}, ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := craft(t, Header{
				FormatVersion: FormatVersion,
				ModelType:     ModelType,
				Structure:     []int{1, 4},
				Tensors:       []TensorMeta{bias, tt.weights},
			}, data)

			var err error
			require.NotPanics(t, func() {
				_, _, err = ReadSnapshot(bytes.NewReader(raw))
			})
			assert.ErrorIs(t, err, tt.wantErr)

			path := filepath.Join(t.TempDir(), "crafted.dnet")
			require.NoError(t, os.WriteFile(path, raw, 0o600))
			require.NotPanics(t, func() {
				_, _, err = LoadFile(path)
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestChecksum(t *testing.T) {
	a := ComputeChecksum([]byte("weights"))
	assert.NoError(t, ValidateChecksum(a, ComputeChecksum([]byte("weights"))))
	assert.ErrorIs(t, ValidateChecksum(a, ComputeChecksum([]byte("weightz"))), ErrChecksumMismatch)
}
