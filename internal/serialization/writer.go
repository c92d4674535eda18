package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/densenet/internal/nn"
)

// WriteSnapshot encodes a network snapshot to w.
//
// The layout is a 64-byte fixed header, the JSON Header, zero padding to a
// 64-byte boundary and finally the tensor data as little-endian float64
// values in row-major order. The fixed header carries a SHA-256 checksum of
// the data section.
//
// Each write gets a fresh model id. It is returned along with any error.
func WriteSnapshot(w io.Writer, snap nn.Snapshot, metadata map[string]string) (string, error) {
	if len(snap.Layers) != len(snap.Structure)-1 {
		return "", fmt.Errorf("snapshot has %d layers for structure %v", len(snap.Layers), snap.Structure)
	}

	header := Header{
		FormatVersion: FormatVersion,
		ModelType:     ModelType,
		ModelID:       uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Structure:     snap.Structure,
		LearningRate:  snap.LearningRate,
		Normalization: snap.Normalization,
		Tensors:       make([]TensorMeta, 0, 2*len(snap.Layers)),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Collect tensor data in layer order so offsets are deterministic.
	var data []byte
	appendTensor := func(name string, rows [][]float64) {
		cols := 0
		if len(rows) > 0 {
			cols = len(rows[0])
		}
		start := int64(len(data))
		for _, row := range rows {
			for _, v := range row {
				data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
			}
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  DTypeFloat64,
			Shape:  []int{len(rows), cols},
			Offset: start,
			Size:   int64(len(data)) - start,
		})
	}
	for i, l := range snap.Layers {
		appendTensor(WeightsName(i), l.Weights)
		appendTensor(BiasName(i), l.Bias)
	}

	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}

	fixed := make([]byte, FixedHeaderSize)
	// 0x00-0x03: magic
	copy(fixed[0:4], MagicBytes)
	// 0x04-0x07: version
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	// 0x08-0x0B: flags
	var flags uint32
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	// 0x0C-0x0F: reserved
	// 0x10-0x17: header size
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	// 0x18-0x1F: data size
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	// 0x20-0x3F: checksum
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return "", fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return "", fmt.Errorf("failed to write header JSON: %w", err)
	}
	if pad := paddingFor(int64(FixedHeaderSize + len(headerJSON))); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return "", fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to write tensor data: %w", err)
	}
	return header.ModelID, nil
}

// SaveFile writes the network's current state to path.
func SaveFile(path string, net *nn.Network, metadata map[string]string) (modelID string, err error) {
	//nolint:gosec // G304: path is supplied by the caller on purpose
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	bw := bufio.NewWriter(f)
	modelID, err = WriteSnapshot(bw, net.Save(), metadata)
	if err != nil {
		return "", err
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return modelID, nil
}
