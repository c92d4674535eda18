package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024   // 16MB
	MaxDataSize      = 1024 * 1024 * 1024 // 1GB
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 256
)

// ValidateTensorName rejects empty, oversized and path-like names.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{Type: "invalid_name", Details: "empty name", Err: ErrInvalidTensorName}
	}
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
			Err:     ErrInvalidTensorName,
		}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains a path separator, '..' or a null byte",
			Err:     ErrInvalidTensorName,
		}
	}
	return nil
}

// ValidateTensorOffsets checks that every tensor lies inside the data
// section, that no two tensors overlap, and that each size matches its shape.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
				Err:     ErrOutOfBounds,
			}
		}
		if t.Offset > dataSize-t.Size {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
				Err:     ErrOutOfBounds,
			}
		}
		count, ok := elementCount(t.Shape)
		if !ok {
			return &ValidationError{
				Type:    "bad_shape",
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v needs positive dimensions totalling at most %d elements", t.Shape, maxElements),
				Err:     ErrInvalidShape,
			}
		}
		if want := count * 8; t.DType != DTypeFloat64 || t.Size != want {
			return &ValidationError{
				Type:    "bad_layout",
				Tensor:  t.Name,
				Details: fmt.Sprintf("dtype %q size %d for shape %v, want float64 size %d", t.DType, t.Size, t.Shape, want),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
					Err: ErrOffsetOverlap,
				}
			}
		}
	}
	return nil
}

// ValidateHeader validates tensor names and layout against the data size.
func ValidateHeader(h *Header, dataSize int64) error {
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
	}
	return ValidateTensorOffsets(h.Tensors, dataSize)
}

// maxElements bounds the float64 count of a single tensor.
const maxElements = MaxDataSize / 8

// elementCount returns the product of shape. It reports false for an empty
// shape, a dimension below 1, or a product above maxElements; each factor is
// checked before multiplying so the product cannot wrap.
func elementCount(shape []int) (int64, bool) {
	if len(shape) == 0 {
		return 0, false
	}
	n := int64(1)
	for _, d := range shape {
		if d < 1 || int64(d) > maxElements/n {
			return 0, false
		}
		n *= int64(d)
	}
	return n, true
}
