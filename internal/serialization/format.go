package serialization

import (
	"strconv"
	"time"

	"github.com/born-ml/densenet/internal/nn"
)

// Format constants.
const (
	MagicBytes      = "DNET"
	FormatVersion   = 1
	FixedHeaderSize = 64   // magic, version, flags, reserved, header size, data size, checksum
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // Checksum position inside the fixed header
)

// DTypeFloat64 is the only tensor data type written by this package.
const DTypeFloat64 = "float64"

// Flags stored in the fixed header.
const (
	FlagHasMetadata uint32 = 1 << 0 // custom metadata present in the JSON header
)

// ModelType identifies the network family in the JSON header.
const ModelType = "DenseSigmoid"

// Header is the JSON header of a saved network.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"`
	ModelID       string            `json:"model_id"`
	CreatedAt     time.Time         `json:"created_at"`
	Structure     []int             `json:"structure"`
	LearningRate  float64           `json:"learning_rate"`
	Normalization nn.Normalization  `json:"normalization"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "layers.0.weights"
	DType  string `json:"dtype"`  // always "float64"
	Shape  []int  `json:"shape"`  // [rows, cols]
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// WeightsName returns the tensor name of layer i's weight matrix.
func WeightsName(i int) string {
	return "layers." + strconv.Itoa(i) + ".weights"
}

// BiasName returns the tensor name of layer i's bias column.
func BiasName(i int) string {
	return "layers." + strconv.Itoa(i) + ".bias"
}

func paddingFor(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
