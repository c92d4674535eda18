package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/born-ml/densenet/internal/nn"
)

// ReaderOptions configures ReadSnapshot.
type ReaderOptions struct {
	SkipChecksumValidation bool // Skip checksum validation (faster but less safe)
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
//
// The fixed header, JSON header, tensor table and checksum are validated.
// Layer shapes are checked again when the snapshot is turned into a network.
func ReadSnapshot(r io.Reader) (nn.Snapshot, *Header, error) {
	return ReadSnapshotWithOptions(r, ReaderOptions{})
}

// ReadSnapshotWithOptions is ReadSnapshot with custom options.
func ReadSnapshotWithOptions(r io.Reader, opts ReaderOptions) (nn.Snapshot, *Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nn.Snapshot{}, nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	fh, err := parseFixedHeader(fixed)
	if err != nil {
		return nn.Snapshot{}, nil, err
	}
	headerSize, dataSize, stored := fh.headerSize, fh.dataSize, fh.checksum

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nn.Snapshot{}, nil, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nn.Snapshot{}, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if pad := paddingFor(int64(FixedHeaderSize) + int64(headerSize)); pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return nn.Snapshot{}, nil, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nn.Snapshot{}, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
			return nn.Snapshot{}, nil, err
		}
	}

	//nolint:gosec // G115: dataSize is bounded by MaxDataSize
	if err := ValidateHeader(&header, int64(dataSize)); err != nil {
		return nn.Snapshot{}, nil, fmt.Errorf("validation failed: %w", err)
	}

	snap, err := decodeSnapshot(&header, data)
	if err != nil {
		return nn.Snapshot{}, nil, err
	}
	return snap, &header, nil
}

type fixedHeader struct {
	flags      uint32
	headerSize uint64
	dataSize   uint64
	checksum   [32]byte
}

// parseFixedHeader decodes the first FixedHeaderSize bytes of a file.
func parseFixedHeader(b []byte) (fixedHeader, error) {
	if len(b) < FixedHeaderSize {
		return fixedHeader{}, fmt.Errorf("file too small: %d bytes (minimum %d required)", len(b), FixedHeaderSize)
	}
	if string(b[0:4]) != MagicBytes {
		return fixedHeader{}, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(b[4:8]); version != FormatVersion {
		return fixedHeader{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	fh := fixedHeader{
		flags:      binary.LittleEndian.Uint32(b[8:12]),
		headerSize: binary.LittleEndian.Uint64(b[16:24]),
		dataSize:   binary.LittleEndian.Uint64(b[24:32]),
	}
	copy(fh.checksum[:], b[ChecksumOffset:ChecksumOffset+ChecksumSize])
	if fh.headerSize > MaxHeaderSize {
		return fixedHeader{}, ErrHeaderTooLarge
	}
	if fh.dataSize > MaxDataSize {
		return fixedHeader{}, ErrDataTooLarge
	}
	return fh, nil
}

func decodeSnapshot(h *Header, data []byte) (nn.Snapshot, error) {
	byName := make(map[string]TensorMeta, len(h.Tensors))
	for _, t := range h.Tensors {
		byName[t.Name] = t
	}

	count := len(h.Structure) - 1
	if count < 1 {
		return nn.Snapshot{}, fmt.Errorf("%w: structure %v", nn.ErrInvalidConfiguration, h.Structure)
	}
	layers := make([]nn.LayerState, count)
	for i := range layers {
		weights, err := decodeTensor(byName, WeightsName(i), data)
		if err != nil {
			return nn.Snapshot{}, err
		}
		bias, err := decodeTensor(byName, BiasName(i), data)
		if err != nil {
			return nn.Snapshot{}, err
		}
		layers[i] = nn.LayerState{Weights: weights, Bias: bias}
	}

	return nn.Snapshot{
		Structure:     h.Structure,
		LearningRate:  h.LearningRate,
		Normalization: h.Normalization,
		Layers:        layers,
	}, nil
}

func decodeTensor(byName map[string]TensorMeta, name string, data []byte) ([][]float64, error) {
	t, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTensor, name)
	}
	if len(t.Shape) != 2 {
		return nil, &ValidationError{
			Type:    "bad_shape",
			Tensor:  name,
			Details: fmt.Sprintf("want 2 dimensions, got %v", t.Shape),
		}
	}
	buf := data[t.Offset : t.Offset+t.Size]
	rows := make([][]float64, t.Shape[0])
	for i := range rows {
		rows[i] = make([]float64, t.Shape[1])
		for j := range rows[i] {
			rows[i][j] = math.Float64frombits(binary.LittleEndian.Uint64(buf))
			buf = buf[8:]
		}
	}
	return rows, nil
}

// LoadFile reads a network saved with SaveFile. The file is memory-mapped
// and unmapped again before LoadFile returns.
func LoadFile(path string) (*nn.Network, *Header, error) {
	r, err := NewMmapReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	snap, err := r.Snapshot(ReaderOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	net, err := nn.FromSnapshot(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	header := r.Header()
	return net, &header, nil
}
