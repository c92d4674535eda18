package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051 // 0x00000803
	idxLabelsMagic = 2049 // 0x00000801
)

// MaxIDXBytes bounds the payload size declared by an IDX header.
const MaxIDXBytes = 1 << 31

// ReadIDXImages reads an IDX image file.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(r io.Reader) ([][]byte, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if header[0] != idxImagesMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", header[0], idxImagesMagic)
	}

	numImages, numRows, numCols := header[1], header[2], header[3]
	imageSize := int64(numRows) * int64(numCols)
	if imageSize == 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", numRows, numCols)
	}
	if total := int64(numImages) * imageSize; total > MaxIDXBytes {
		return nil, fmt.Errorf("image data of %d bytes exceeds limit %d", total, MaxIDXBytes)
	}

	// Grow with the data actually read rather than the declared count.
	images := make([][]byte, 0, min(numImages, 1024))
	for i := 0; i < int(numImages); i++ {
		img := make([]byte, imageSize)
		if _, err := io.ReadFull(r, img); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// ReadIDXLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read label header: %w", err)
	}
	if header[0] != idxLabelsMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", header[0], idxLabelsMagic)
	}

	if header[1] > MaxIDXBytes {
		return nil, fmt.Errorf("label count %d exceeds limit %d", header[1], MaxIDXBytes)
	}
	labels, err := io.ReadAll(io.LimitReader(r, int64(header[1])))
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) != int(header[1]) {
		return nil, fmt.Errorf("failed to read labels: got %d of %d: %w", len(labels), header[1], io.ErrUnexpectedEOF)
	}
	return labels, nil
}

// LoadIDX loads a matching pair of IDX image and label files.
//
// maxSamples limits how many samples are returned (0 = all).
func LoadIDX(imagesPath, labelsPath string, maxSamples int) (*Set, error) {
	images, err := readFile(imagesPath, ReadIDXImages)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	labels, err := readFile(labelsPath, ReadIDXLabels)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", len(images), len(labels))
	}

	n := len(images)
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}
	set := &Set{
		Inputs: make([][]float64, n),
		Labels: make([]int, n),
	}
	for i := 0; i < n; i++ {
		pixels := make([]float64, len(images[i]))
		for j, p := range images[i] {
			pixels[j] = float64(p)
		}
		set.Inputs[i] = pixels
		set.Labels[i] = int(labels[i])
	}
	return set, nil
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	//nolint:gosec // G304: dataset paths come from configuration
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return read(bufio.NewReader(f))
}
