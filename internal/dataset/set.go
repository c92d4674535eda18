package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/born-ml/densenet/internal/nn"
)

// Set holds labelled samples with raw feature values.
//
// Pixel data is kept in its stored range (0-255 for MNIST). Scaling is left
// to the network's input normalization.
type Set struct {
	Inputs [][]float64 // [num_samples][features]
	Labels []int       // [num_samples]
}

// Len returns the number of samples.
func (s *Set) Len() int {
	return len(s.Inputs)
}

// Features returns the input dimension, or 0 for an empty set.
func (s *Set) Features() int {
	if len(s.Inputs) == 0 {
		return 0
	}
	return len(s.Inputs[0])
}

// Limit truncates the set to at most n samples. n <= 0 keeps everything.
func (s *Set) Limit(n int) *Set {
	if n <= 0 || n >= s.Len() {
		return s
	}
	return &Set{Inputs: s.Inputs[:n], Labels: s.Labels[:n]}
}

// TrainingExamples converts the set to training examples with one-hot
// targets of length classes.
func (s *Set) TrainingExamples(classes int) ([]nn.TrainingExample, error) {
	out := make([]nn.TrainingExample, s.Len())
	for i, input := range s.Inputs {
		label := s.Labels[i]
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("sample %d: label %d out of range [0, %d)", i, label, classes)
		}
		target := make([]float64, classes)
		target[label] = 1
		out[i] = nn.TrainingExample{Input: input, Output: target}
	}
	return out, nil
}

// EvaluationExamples converts the set to evaluation examples labelled by
// class index.
func (s *Set) EvaluationExamples() []nn.EvaluationExample {
	out := make([]nn.EvaluationExample, s.Len())
	for i, input := range s.Inputs {
		out[i] = nn.EvaluationExample{Input: input, ExpectedClassIndex: s.Labels[i]}
	}
	return out
}

// Load reads a dataset from disk. Paths ending in .csv are read with
// LoadCSV and labelsPath is ignored; anything else is treated as an IDX
// image and label file pair.
func Load(imagesPath, labelsPath string, maxSamples int) (*Set, error) {
	if IsCSV(imagesPath) {
		return LoadCSV(imagesPath, maxSamples)
	}
	return LoadIDX(imagesPath, labelsPath, maxSamples)
}

// IsCSV reports whether path names a CSV dataset.
func IsCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
