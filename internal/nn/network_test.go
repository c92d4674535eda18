package nn

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestNew_Defaults(t *testing.T) {
	net, err := New(Config{Structure: []int{3, 5, 2}, Rand: newTestRand(1)})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 5, 2}, net.Structure())
	assert.Equal(t, 2, net.LayerCount())
	assert.Equal(t, DefaultLearningRate, net.LearningRate())
	assert.Equal(t, NormalizeNone, net.Normalization().Method)
	assert.Equal(t, 3, net.InputSize())
	assert.Equal(t, 2, net.OutputSize())

	// Layers chain without gaps.
	for i := 0; i < net.LayerCount(); i++ {
		l := net.Layer(i)
		rows, cols := l.Weights().Dims()
		assert.Equal(t, net.Structure()[i+1], rows)
		assert.Equal(t, net.Structure()[i], cols)
		brows, bcols := l.Bias().Dims()
		assert.Equal(t, rows, brows)
		assert.Equal(t, 1, bcols)
	}
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"nil structure", Config{}},
		{"single stage", Config{Structure: []int{3}}},
		{"zero size", Config{Structure: []int{3, 0, 1}}},
		{"negative size", Config{Structure: []int{-1, 2}}},
		{"negative learning rate", Config{Structure: []int{2, 1}, LearningRate: -0.1}},
		{"NaN learning rate", Config{Structure: []int{2, 1}, LearningRate: math.NaN()}},
		{"infinite learning rate", Config{Structure: []int{2, 1}, LearningRate: math.Inf(1)}},
		{"zero constant", Config{Structure: []int{2, 1}, Normalization: Normalization{Method: NormalizeByConstant}}},
		{"negative progress interval", Config{Structure: []int{2, 1}, ProgressEvery: -5}},
		{"negative workers", Config{Structure: []int{2, 1}, Workers: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, err := New(tt.cfg)
			assert.Nil(t, net)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestNew_SeededIsReproducible(t *testing.T) {
	a, err := New(Config{Structure: []int{4, 3, 2}, Rand: newTestRand(42)})
	require.NoError(t, err)
	b, err := New(Config{Structure: []int{4, 3, 2}, Rand: newTestRand(42)})
	require.NoError(t, err)

	assert.Equal(t, a.Save(), b.Save())
}

func TestNew_DoesNotAliasStructure(t *testing.T) {
	structure := []int{2, 3, 1}
	net, err := New(Config{Structure: structure, Rand: newTestRand(1)})
	require.NoError(t, err)

	structure[0] = 99
	assert.Equal(t, 2, net.InputSize())

	got := net.Structure()
	got[0] = 77
	assert.Equal(t, 2, net.InputSize())
}

func TestNew_RestoredLayerShapeMismatch(t *testing.T) {
	good := LayerState{
		Weights: [][]float64{{0.1, 0.2}},
		Bias:    [][]float64{{0.3}},
	}
	tests := []struct {
		name   string
		layers []LayerState
	}{
		{"too few layers", []LayerState{}},
		{"too many layers", []LayerState{good, good}},
		{"wrong weight rows", []LayerState{{Weights: [][]float64{{0.1, 0.2}, {0.3, 0.4}}, Bias: good.Bias}}},
		{"wrong weight cols", []LayerState{{Weights: [][]float64{{0.1}}, Bias: good.Bias}}},
		{"ragged bias", []LayerState{{Weights: good.Weights, Bias: [][]float64{{0.3, 0.4}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Structure: []int{2, 1}, Layers: tt.layers})
			assert.ErrorIs(t, err, ErrInvalidDimension)
		})
	}

	net, err := New(Config{Structure: []int{2, 1}, Layers: []LayerState{good}})
	require.NoError(t, err)
	assert.Equal(t, []LayerState{good}, net.Save().Layers)
}

func TestPredict(t *testing.T) {
	net, err := New(Config{Structure: []int{3, 4, 2}, Rand: newTestRand(5)})
	require.NoError(t, err)

	out, err := net.Predict([]float64{0.2, -0.4, 0.9})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, v := range out {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestPredict_KnownWeights(t *testing.T) {
	net, err := New(Config{
		Structure: []int{2, 1},
		Layers: []LayerState{{
			Weights: [][]float64{{0.5, -0.25}},
			Bias:    [][]float64{{0.1}},
		}},
	})
	require.NoError(t, err)

	out, err := net.Predict([]float64{2, 4})
	require.NoError(t, err)
	assert.InDelta(t, Sigmoid(0.5*2-0.25*4+0.1), out[0], 1e-15)
}

func TestPredict_Deterministic(t *testing.T) {
	net, err := New(Config{Structure: []int{5, 8, 8, 3}, Rand: newTestRand(9)})
	require.NoError(t, err)

	input := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	first, err := net.Predict(input)
	require.NoError(t, err)
	second, err := net.Predict(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, input)
}

func TestPredict_NormalizesInput(t *testing.T) {
	layers := []LayerState{{Weights: [][]float64{{1, 1}}, Bias: [][]float64{{0}}}}

	plain, err := New(Config{Structure: []int{2, 1}, Layers: layers})
	require.NoError(t, err)
	scaled, err := New(Config{
		Structure:     []int{2, 1},
		Layers:        layers,
		Normalization: Normalization{Method: NormalizeByConstant, Constant: 255},
	})
	require.NoError(t, err)

	want, err := plain.Predict([]float64{51.0 / 255, 102.0 / 255})
	require.NoError(t, err)
	got, err := scaled.Predict([]float64{51, 102})
	require.NoError(t, err)

	assert.InDelta(t, want[0], got[0], 1e-15)
}

func TestPredict_InvalidDimension(t *testing.T) {
	net, err := New(Config{Structure: []int{3, 2, 1}, Rand: newTestRand(1)})
	require.NoError(t, err)

	for _, input := range [][]float64{nil, {1, 2}, {1, 2, 3, 4}} {
		out, err := net.Predict(input)
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, ErrInvalidDimension), "len=%d: %v", len(input), err)
	}
}
