package nn

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/densenet/internal/parallel"
)

// MeanSquaredError returns mean((prediction - target)²).
//
// Both slices must have the same non-zero length.
func MeanSquaredError(prediction, target []float64) float64 {
	diff := make([]float64, len(prediction))
	floats.SubTo(diff, prediction, target)
	return floats.Dot(diff, diff) / float64(len(diff))
}

// Loss returns the mean squared error of the network over data without
// training on it.
func (n *Network) Loss(data []TrainingExample) (float64, error) {
	if err := n.checkTrainingData(data); err != nil {
		return 0, err
	}
	normalized := n.NormalizeDataset(data)
	losses := parallel.Map(len(normalized), n.par, func(i int) float64 {
		return MeanSquaredError(n.predictNormalized(normalized[i].Input), normalized[i].Output)
	})
	return floats.Sum(losses) / float64(len(data)), nil
}
