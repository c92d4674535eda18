package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/densenet/internal/parallel"
)

// EvaluationResult summarizes a classification run.
type EvaluationResult struct {
	Matches  int     `json:"matches"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"` // Matches / Total
}

// String formats the result as "matches / total (accuracy%)".
func (r EvaluationResult) String() string {
	return fmt.Sprintf("%d / %d (%.2f%%)", r.Matches, r.Total, r.Accuracy*100)
}

// Evaluate classifies every example and counts how often the highest
// scoring output unit equals ExpectedClassIndex. Ties go to the lowest index.
//
// An empty dataset returns ErrEmptyDataset rather than an undefined accuracy.
// Predictions run concurrently; the network must not be trained meanwhile.
func (n *Network) Evaluate(data []EvaluationExample) (EvaluationResult, error) {
	if len(data) == 0 {
		return EvaluationResult{}, ErrEmptyDataset
	}
	for i, ex := range data {
		if err := n.checkInput(ex.Input); err != nil {
			return EvaluationResult{}, fmt.Errorf("example %d: %w", i, err)
		}
	}

	normalized := n.NormalizeEvaluationDataset(data)
	hits := parallel.Map(len(normalized), n.par, func(i int) bool {
		ex := normalized[i]
		return Argmax(n.predictNormalized(ex.Input)) == ex.ExpectedClassIndex
	})
	matches := 0
	for _, hit := range hits {
		if hit {
			matches++
		}
	}
	return EvaluationResult{
		Matches:  matches,
		Total:    len(data),
		Accuracy: float64(matches) / float64(len(data)),
	}, nil
}

// Argmax returns the index of the first maximal element of v.
func Argmax(v []float64) int {
	return floats.MaxIdx(v)
}
