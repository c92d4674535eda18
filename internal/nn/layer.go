package nn

import (
	"github.com/born-ml/densenet/internal/matrix"
)

// Layer is the weighted edge set between two consecutive network stages.
//
// It owns a weight matrix of shape [size, prevSize] and a bias column of
// shape [size, 1]. Layer performs no shape validation; the owning Network is
// responsible for passing compatible matrices.
//
// Matrices are immutable values, so the accessors hand out the current
// matrix directly and every update installs a new one.
type Layer struct {
	inFeatures  int
	outFeatures int
	weights     *matrix.Matrix // [outFeatures, inFeatures]
	bias        *matrix.Matrix // [outFeatures, 1]
}

// NewLayer creates a layer mapping prevSize inputs to size outputs with
// weights and bias drawn uniformly from [-1, 1).
//
// Weights are drawn before the bias, row by row.
func NewLayer(prevSize, size int, rng matrix.RandomSource) *Layer {
	return &Layer{
		inFeatures:  prevSize,
		outFeatures: size,
		weights:     matrix.Create(size, prevSize, rng),
		bias:        matrix.Create(size, 1, rng),
	}
}

// restoreLayer builds a layer from previously saved parameters. The
// matrices must already match [size, prevSize] and [size, 1].
func restoreLayer(prevSize, size int, weights, bias *matrix.Matrix) *Layer {
	l := &Layer{inFeatures: prevSize, outFeatures: size}
	l.UpdateWeights(weights)
	l.UpdateBias(bias)
	return l
}

// Weights returns the weight matrix.
func (l *Layer) Weights() *matrix.Matrix {
	return l.weights
}

// Bias returns the bias column.
func (l *Layer) Bias() *matrix.Matrix {
	return l.bias
}

// UpdateWeights replaces the weight matrix.
func (l *Layer) UpdateWeights(w *matrix.Matrix) {
	l.weights = w
}

// UpdateBias replaces the bias column.
func (l *Layer) UpdateBias(b *matrix.Matrix) {
	l.bias = b
}

// AddToWeights accumulates delta into the weights.
func (l *Layer) AddToWeights(delta *matrix.Matrix) {
	l.weights = matrix.Add(l.weights, delta)
}

// AddToBias accumulates delta into the bias.
func (l *Layer) AddToBias(delta *matrix.Matrix) {
	l.bias = matrix.Add(l.bias, delta)
}

// InFeatures returns the size of the previous stage.
func (l *Layer) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the size of this stage.
func (l *Layer) OutFeatures() int {
	return l.outFeatures
}

// State returns a deep copy of the layer parameters.
func (l *Layer) State() LayerState {
	return LayerState{
		Weights: l.weights.ToRows(),
		Bias:    l.bias.ToRows(),
	}
}
