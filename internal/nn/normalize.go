package nn

import (
	"fmt"
	"math"
)

// NormalizationMethod selects how input vectors are scaled before they enter
// the network.
type NormalizationMethod string

// Recognized normalization methods.
const (
	NormalizeNone       NormalizationMethod = "None"
	NormalizeByMax      NormalizationMethod = "ByMax"
	NormalizeByConstant NormalizationMethod = "ByConstant"
)

// ParseNormalizationMethod maps a method name to a NormalizationMethod.
// Unrecognized names, including the empty string, map to NormalizeNone.
func ParseNormalizationMethod(s string) NormalizationMethod {
	switch NormalizationMethod(s) {
	case NormalizeByMax:
		return NormalizeByMax
	case NormalizeByConstant:
		return NormalizeByConstant
	default:
		return NormalizeNone
	}
}

// Normalization is the input preprocessing rule of a network.
//
// Constant is only consulted for NormalizeByConstant and must be non-zero there.
type Normalization struct {
	Method   NormalizationMethod `json:"method" yaml:"method"`
	Constant float64             `json:"constant,omitempty" yaml:"constant,omitempty"`
}

// canonical folds unknown methods to None.
func (n Normalization) canonical() Normalization {
	n.Method = ParseNormalizationMethod(string(n.Method))
	if n.Method != NormalizeByConstant {
		n.Constant = 0
	}
	return n
}

func (n Normalization) validate() error {
	if n.Method == NormalizeByConstant && n.Constant == 0 {
		return fmt.Errorf("%w: ByConstant normalization requires a non-zero constant", ErrInvalidConfiguration)
	}
	return nil
}

// Apply returns a normalized copy of input. The input slice is not modified.
func (n Normalization) Apply(input []float64) []float64 {
	switch n.Method {
	case NormalizeByMax:
		return NormalizeByMaxValue(input)
	case NormalizeByConstant:
		return NormalizeByConstantValue(input, n.Constant)
	default:
		out := make([]float64, len(input))
		copy(out, input)
		return out
	}
}

// NormalizeByMaxValue divides every element by the largest element of v.
//
// The maximum is signed, not absolute: a vector whose largest element is
// negative has all of its signs flipped. NaN elements are skipped when
// finding the maximum; if every element is NaN the result is all NaN. A zero
// maximum yields ±Inf or NaN.
func NormalizeByMaxValue(v []float64) []float64 {
	out := make([]float64, len(v))
	m := maxIgnoringNaN(v)
	for i, x := range v {
		out[i] = x / m
	}
	return out
}

func maxIgnoringNaN(v []float64) float64 {
	m := math.NaN()
	for _, x := range v {
		if !math.IsNaN(x) && (math.IsNaN(m) || x > m) {
			m = x
		}
	}
	return m
}

// NormalizeByConstantValue divides every element of v by c.
func NormalizeByConstantValue(v []float64, c float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / c
	}
	return out
}

// NormalizeDataset returns a copy of data with every input normalized.
// Targets are shared with the original examples, not copied.
func (n *Network) NormalizeDataset(data []TrainingExample) []TrainingExample {
	out := make([]TrainingExample, len(data))
	for i, ex := range data {
		out[i] = TrainingExample{
			Input:  n.normalization.Apply(ex.Input),
			Output: ex.Output,
		}
	}
	return out
}

// NormalizeEvaluationDataset is NormalizeDataset for evaluation examples.
func (n *Network) NormalizeEvaluationDataset(data []EvaluationExample) []EvaluationExample {
	out := make([]EvaluationExample, len(data))
	for i, ex := range data {
		out[i] = EvaluationExample{
			Input:              n.normalization.Apply(ex.Input),
			ExpectedClassIndex: ex.ExpectedClassIndex,
		}
	}
	return out
}
