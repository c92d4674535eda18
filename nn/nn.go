// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
)

// Defaults
const (
	// DefaultLearningRate is used when Config.LearningRate is zero.
	DefaultLearningRate = nn.DefaultLearningRate

	// DefaultProgressEvery is the number of examples between progress reports.
	DefaultProgressEvery = nn.DefaultProgressEvery
)

// Errors
var (
	// ErrInvalidConfiguration is returned for bad structure, learning rate or normalization.
	ErrInvalidConfiguration = nn.ErrInvalidConfiguration

	// ErrInvalidDimension is returned when a vector or saved layer has the wrong shape.
	ErrInvalidDimension = nn.ErrInvalidDimension

	// ErrEmptyDataset is returned by Train and Evaluate for empty input.
	ErrEmptyDataset = nn.ErrEmptyDataset
)

// Network

// Network is a fully connected feedforward network with sigmoid activations.
type Network = nn.Network

// Config describes a network to construct.
type Config = nn.Config

// Layer is the weighted edge set between two consecutive stages.
type Layer = nn.Layer

// RandomSource supplies uniform values in [0, 1) for weight initialization.
type RandomSource = matrix.RandomSource

// New validates cfg and builds a network.
//
// Example:
//
//	net, err := nn.New(nn.Config{
//	    Structure:     []int{784, 30, 10},
//	    LearningRate:  0.1,
//	    Normalization: nn.Normalization{Method: nn.NormalizeByConstant, Constant: 255},
//	})
func New(cfg Config) (*Network, error) {
	return nn.New(cfg)
}

// NewLayer creates a layer with weights and bias drawn uniformly from [-1, 1).
func NewLayer(prevSize, size int, rng RandomSource) *Layer {
	return nn.NewLayer(prevSize, size, rng)
}

// Activations

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return nn.Sigmoid(x)
}

// SigmoidDerivative returns y·(1-y), the slope of Sigmoid in terms of its output.
func SigmoidDerivative(y float64) float64 {
	return nn.SigmoidDerivative(y)
}

// Data

// TrainingExample pairs an input with its target output vector.
type TrainingExample = nn.TrainingExample

// EvaluationExample pairs an input with the index of its expected class.
type EvaluationExample = nn.EvaluationExample

// EvaluationResult summarizes an evaluation run.
type EvaluationResult = nn.EvaluationResult

// Argmax returns the index of the largest value, preferring the first on ties.
func Argmax(v []float64) int {
	return nn.Argmax(v)
}

// MeanSquaredError returns the mean of squared differences between two vectors.
func MeanSquaredError(prediction, target []float64) float64 {
	return nn.MeanSquaredError(prediction, target)
}

// Normalization

// NormalizationMethod names an input normalization rule.
type NormalizationMethod = nn.NormalizationMethod

// Normalization rules.
const (
	NormalizeNone       = nn.NormalizeNone
	NormalizeByMax      = nn.NormalizeByMax
	NormalizeByConstant = nn.NormalizeByConstant
)

// Normalization is a method plus its constant.
type Normalization = nn.Normalization

// ParseNormalizationMethod maps a name to a method. Unknown names give NormalizeNone.
func ParseNormalizationMethod(s string) NormalizationMethod {
	return nn.ParseNormalizationMethod(s)
}

// NormalizeByMaxValue divides every element by the vector maximum.
func NormalizeByMaxValue(v []float64) []float64 {
	return nn.NormalizeByMaxValue(v)
}

// NormalizeByConstantValue divides every element by c.
func NormalizeByConstantValue(v []float64, c float64) []float64 {
	return nn.NormalizeByConstantValue(v, c)
}

// Progress

// Progress reports how far a training run has advanced.
type Progress = nn.Progress

// ProgressObserver receives training progress.
type ProgressObserver = nn.ProgressObserver

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc = nn.ProgressFunc

// ChannelObserver forwards progress to a channel without blocking.
type ChannelObserver = nn.ChannelObserver

// NewChannelObserver returns an observer that publishes to ch.
func NewChannelObserver(ch chan<- Progress) *ChannelObserver {
	return nn.NewChannelObserver(ch)
}

// Persistence

// LayerState holds one layer's parameters as plain rows.
type LayerState = nn.LayerState

// Snapshot is the full persistent state of a network.
type Snapshot = nn.Snapshot

// FromSnapshot rebuilds a network from a snapshot.
func FromSnapshot(s Snapshot) (*Network, error) {
	return nn.FromSnapshot(s)
}
