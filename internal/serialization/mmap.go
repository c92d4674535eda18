package serialization

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/born-ml/densenet/internal/nn"
)

var errReaderClosed = errors.New("reader is closed")

// MmapReader provides memory-mapped access to .dnet files.
//
// Only the headers are parsed when the reader is opened. Tensor data is
// read from the mapping on demand.
type MmapReader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	header     Header
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   [32]byte
	closed     bool
}

// NewMmapReader maps path read-only and parses its headers.
//
// Always call Close when done.
func NewMmapReader(path string) (*MmapReader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() < FixedHeaderSize {
		_ = file.Close()
		return nil, fmt.Errorf("%s: file too small: %d bytes (minimum %d required)", path, stat.Size(), FixedHeaderSize)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &MmapReader{
		file: file,
		data: data,
		size: stat.Size(),
	}
	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *MmapReader) parseHeader() error {
	fh, err := parseFixedHeader(r.data)
	if err != nil {
		return err
	}
	r.flags = fh.flags
	r.checksum = fh.checksum

	//nolint:gosec // G115: bounded by MaxHeaderSize and MaxDataSize
	headerEnd, dataSize := int64(FixedHeaderSize)+int64(fh.headerSize), int64(fh.dataSize)
	if headerEnd > r.size {
		return fmt.Errorf("header extends beyond file: header_end=%d, file_size=%d", headerEnd, r.size)
	}
	if err := json.Unmarshal(r.data[FixedHeaderSize:headerEnd], &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = headerEnd + paddingFor(headerEnd)
	r.dataSize = dataSize
	if r.dataOffset+r.dataSize > r.size {
		return fmt.Errorf("%w: data_end=%d, file_size=%d", ErrOutOfBounds, r.dataOffset+r.dataSize, r.size)
	}

	if err := ValidateHeader(&r.header, r.dataSize); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Close unmaps and closes the file. It is safe to call more than once.
func (r *MmapReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}
	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Header returns the decoded JSON header.
func (r *MmapReader) Header() Header {
	return r.header
}

// Flags returns the flags bitfield.
func (r *MmapReader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 checksum of the data section.
func (r *MmapReader) Checksum() [32]byte {
	return r.checksum
}

// TensorNames returns the tensor names in file order.
func (r *MmapReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// TensorInfo returns metadata about a specific tensor.
func (r *MmapReader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingTensor, name)
}

// TensorData returns a zero-copy slice of a tensor's raw bytes.
//
// The slice is read-only and valid only until Close.
func (r *MmapReader) TensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, errReaderClosed
	}
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	start := r.dataOffset + meta.Offset
	return r.data[start : start+meta.Size], nil
}

// VerifyChecksum hashes the mapped data section and compares it with the
// stored checksum.
func (r *MmapReader) VerifyChecksum() error {
	if r.closed {
		return errReaderClosed
	}
	return ValidateChecksum(ComputeChecksum(r.section()), r.checksum)
}

// Snapshot decodes every layer into a network snapshot. The returned
// snapshot does not reference the mapping.
func (r *MmapReader) Snapshot(opts ReaderOptions) (nn.Snapshot, error) {
	if r.closed {
		return nn.Snapshot{}, errReaderClosed
	}
	if !opts.SkipChecksumValidation {
		if err := r.VerifyChecksum(); err != nil {
			return nn.Snapshot{}, err
		}
	}
	return decodeSnapshot(&r.header, r.section())
}

func (r *MmapReader) section() []byte {
	return r.data[r.dataOffset : r.dataOffset+r.dataSize]
}
