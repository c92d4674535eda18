package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/parallel"
)

// DefaultLearningRate is used when Config.LearningRate is left at zero.
const DefaultLearningRate = 0.1

// DefaultProgressEvery is the number of examples between progress reports.
const DefaultProgressEvery = 1000

// Config describes a network to construct.
type Config struct {
	// Structure lists the stage sizes from input to output. It needs at
	// least two entries, all positive.
	Structure []int

	// LearningRate scales every gradient step. Zero selects
	// DefaultLearningRate; negative or non-finite values are rejected.
	LearningRate float64

	// Normalization is applied to inputs before they enter the network.
	// Unknown methods fall back to NormalizeNone.
	Normalization Normalization

	// Layers optionally restores saved parameters instead of drawing
	// random ones. It must hold len(Structure)-1 entries matching Structure.
	Layers []LayerState

	// Rand supplies weight initialization randomness. Nil uses the
	// process-wide generator.
	Rand matrix.RandomSource

	// Observer receives training progress. Nil disables reporting.
	Observer ProgressObserver

	// ProgressEvery sets the reporting interval in examples. Zero selects
	// DefaultProgressEvery.
	ProgressEvery int

	// Workers bounds the goroutines used by Evaluate and Loss. Zero uses
	// one per CPU and 1 keeps them sequential. Training is always
	// sequential.
	Workers int
}

// Network is a fully connected feedforward network with sigmoid activations
// trained by online gradient descent.
//
// Network is not safe for concurrent use. Calls that mutate it (Train,
// TrainEpochs, Backprop) must be serialized by the caller.
type Network struct {
	structure     []int
	layers        []*Layer
	learningRate  float64
	normalization Normalization
	observer      ProgressObserver
	progressEvery int
	par           parallel.Config
}

// New validates cfg and builds a network.
//
// Example:
//
//	net, err := nn.New(nn.Config{
//	    Structure:    []int{2, 4, 1},
//	    LearningRate: 0.5,
//	    Rand:         rand.New(rand.NewPCG(1, 2)),
//	})
func New(cfg Config) (*Network, error) {
	if len(cfg.Structure) < 2 {
		return nil, fmt.Errorf("%w: structure needs at least 2 entries, got %d",
			ErrInvalidConfiguration, len(cfg.Structure))
	}
	for i, size := range cfg.Structure {
		if size < 1 {
			return nil, fmt.Errorf("%w: structure[%d] = %d, must be positive",
				ErrInvalidConfiguration, i, size)
		}
	}

	lr := cfg.LearningRate
	if lr == 0 {
		lr = DefaultLearningRate
	}
	if lr < 0 || math.IsNaN(lr) || math.IsInf(lr, 0) {
		return nil, fmt.Errorf("%w: learning rate must be positive and finite, got %v",
			ErrInvalidConfiguration, cfg.LearningRate)
	}

	norm := cfg.Normalization.canonical()
	if err := norm.validate(); err != nil {
		return nil, err
	}

	if cfg.ProgressEvery < 0 {
		return nil, fmt.Errorf("%w: progress interval must not be negative, got %d",
			ErrInvalidConfiguration, cfg.ProgressEvery)
	}
	every := cfg.ProgressEvery
	if every == 0 {
		every = DefaultProgressEvery
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d",
			ErrInvalidConfiguration, cfg.Workers)
	}

	structure := make([]int, len(cfg.Structure))
	copy(structure, cfg.Structure)

	n := &Network{
		structure:     structure,
		learningRate:  lr,
		normalization: norm,
		observer:      cfg.Observer,
		progressEvery: every,
		par:           parallel.WithWorkers(cfg.Workers),
	}

	if cfg.Layers != nil {
		layers, err := restoreLayers(structure, cfg.Layers)
		if err != nil {
			return nil, err
		}
		n.layers = layers
		return n, nil
	}

	rng := cfg.Rand
	if rng == nil {
		rng = processRand{}
	}
	n.layers = make([]*Layer, len(structure)-1)
	for i := range n.layers {
		n.layers[i] = NewLayer(structure[i], structure[i+1], rng)
	}
	return n, nil
}

func restoreLayers(structure []int, states []LayerState) ([]*Layer, error) {
	if len(states) != len(structure)-1 {
		return nil, fmt.Errorf("%w: %d layers for structure %v, want %d",
			ErrInvalidDimension, len(states), structure, len(structure)-1)
	}
	layers := make([]*Layer, len(states))
	for i, st := range states {
		in, out := structure[i], structure[i+1]
		if err := checkShape(st.Weights, out, in); err != nil {
			return nil, fmt.Errorf("%w: layer %d weights: %s", ErrInvalidDimension, i, err)
		}
		if err := checkShape(st.Bias, out, 1); err != nil {
			return nil, fmt.Errorf("%w: layer %d bias: %s", ErrInvalidDimension, i, err)
		}
		layers[i] = restoreLayer(in, out, matrix.FromRows(st.Weights), matrix.FromRows(st.Bias))
	}
	return layers, nil
}

type shapeError struct {
	rows, cols int
	detail     string
}

func (e *shapeError) Error() string {
	return fmt.Sprintf("want shape [%d,%d]: %s", e.rows, e.cols, e.detail)
}

func checkShape(rows [][]float64, wantRows, wantCols int) error {
	if len(rows) != wantRows {
		return &shapeError{wantRows, wantCols, fmt.Sprintf("got %d rows", len(rows))}
	}
	for i, row := range rows {
		if len(row) != wantCols {
			return &shapeError{wantRows, wantCols, fmt.Sprintf("row %d has %d columns", i, len(row))}
		}
	}
	return nil
}

// processRand draws from the math/rand/v2 global generator.
type processRand struct{}

func (processRand) Float64() float64 { return rand.Float64() }

// Structure returns a copy of the stage sizes.
func (n *Network) Structure() []int {
	out := make([]int, len(n.structure))
	copy(out, n.structure)
	return out
}

// LayerCount returns the number of weighted layers, len(Structure())-1.
func (n *Network) LayerCount() int {
	return len(n.layers)
}

// Layer returns the i-th layer.
func (n *Network) Layer(i int) *Layer {
	return n.layers[i]
}

// LearningRate returns the gradient step scale.
func (n *Network) LearningRate() float64 {
	return n.learningRate
}

// Normalization returns the input normalization rule.
func (n *Network) Normalization() Normalization {
	return n.normalization
}

// SetObserver replaces the progress observer. Nil disables reporting.
func (n *Network) SetObserver(o ProgressObserver) {
	n.observer = o
}

// String describes the network shape.
func (n *Network) String() string {
	return fmt.Sprintf("Network(structure=%v, lr=%g, normalization=%s)",
		n.structure, n.learningRate, n.normalization.Method)
}

// InputSize returns structure[0].
func (n *Network) InputSize() int {
	return n.structure[0]
}

// OutputSize returns the last structure entry.
func (n *Network) OutputSize() int {
	return n.structure[len(n.structure)-1]
}

// Predict runs the forward pass on a single input vector and returns the
// output activations.
//
// The input is normalized first. Predict does not mutate the network, and
// two calls with the same input on the same state return identical results.
func (n *Network) Predict(input []float64) ([]float64, error) {
	if err := n.checkInput(input); err != nil {
		return nil, err
	}
	return n.predictNormalized(n.normalization.Apply(input)), nil
}

// predictNormalized runs the forward pass on an already normalized input.
func (n *Network) predictNormalized(input []float64) []float64 {
	a := matrix.Column(input)
	for _, l := range n.layers {
		a = activate(l, a)
	}
	return matrix.Flatten(a)
}

// activate computes σ(W·a + b) for one layer.
func activate(l *Layer, a *matrix.Matrix) *matrix.Matrix {
	z := matrix.Add(matrix.Product(l.Weights(), a), l.Bias())
	return matrix.Map(z, Sigmoid)
}

func (n *Network) checkInput(input []float64) error {
	if len(input) != n.InputSize() {
		return fmt.Errorf("%w: input length %d, want %d", ErrInvalidDimension, len(input), n.InputSize())
	}
	return nil
}

func (n *Network) checkTarget(target []float64) error {
	if len(target) != n.OutputSize() {
		return fmt.Errorf("%w: target length %d, want %d", ErrInvalidDimension, len(target), n.OutputSize())
	}
	return nil
}
