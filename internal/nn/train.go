package nn

import (
	"context"
	"fmt"
)

// Train runs one pass of online gradient descent over data.
//
// The dataset is validated and normalized up front; nothing is mutated if
// any example has the wrong dimensions. Examples are then processed strictly
// in order with one Backprop step each. Progress is reported before every
// ProgressEvery-th example and once more on completion.
//
// ctx is checked before each example. On cancellation Train returns
// ctx.Err() and the network keeps the updates applied so far.
func (n *Network) Train(ctx context.Context, data []TrainingExample) error {
	if err := n.checkTrainingData(data); err != nil {
		return err
	}
	return n.train(ctx, n.NormalizeDataset(data))
}

// TrainEpochs runs Train over the same dataset epochs times in sequence.
func (n *Network) TrainEpochs(ctx context.Context, data []TrainingExample, epochs int) error {
	if epochs < 1 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfiguration, epochs)
	}
	if err := n.checkTrainingData(data); err != nil {
		return err
	}
	normalized := n.NormalizeDataset(data)
	for epoch := 0; epoch < epochs; epoch++ {
		if err := n.train(ctx, normalized); err != nil {
			return fmt.Errorf("epoch %d: %w", epoch+1, err)
		}
	}
	return nil
}

func (n *Network) train(ctx context.Context, data []TrainingExample) error {
	total := len(data)
	for i, ex := range data {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i%n.progressEvery == 0 {
			n.report(Progress{Iteration: i, Total: total})
		}
		n.backprop(ex.Input, ex.Output)
	}
	n.report(Progress{Iteration: total, Total: total})
	return nil
}

func (n *Network) checkTrainingData(data []TrainingExample) error {
	if len(data) == 0 {
		return ErrEmptyDataset
	}
	for i, ex := range data {
		if err := n.checkInput(ex.Input); err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
		if err := n.checkTarget(ex.Output); err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
	}
	return nil
}
