package nn

import (
	"github.com/born-ml/densenet/internal/matrix"
)

// Backprop performs one online gradient descent step on a single example.
//
// The input is used as given; Train normalizes its dataset before calling
// into the same step.
func (n *Network) Backprop(input, target []float64) error {
	if err := n.checkInput(input); err != nil {
		return err
	}
	if err := n.checkTarget(target); err != nil {
		return err
	}
	n.backprop(input, target)
	return nil
}

// backprop runs the forward pass keeping every activation, then walks the
// layers from output to input.
//
// For layer i the scaled gradient is g = lr · (a_i ⊙ (1-a_i)) ⊙ e_i, the
// weights receive g·a_{i-1}ᵀ and the bias receives g. The error for the
// previous stage is computed from the weights after they were updated.
func (n *Network) backprop(input, target []float64) {
	count := len(n.layers)

	activations := make([]*matrix.Matrix, count+1)
	activations[0] = matrix.Column(input)
	for i, l := range n.layers {
		activations[i+1] = activate(l, activations[i])
	}

	e := matrix.Subtract(matrix.Column(target), activations[count])

	for i := count; i > 0; i-- {
		g := matrix.Map(activations[i], SigmoidDerivative)
		g = matrix.HadamardProduct(g, e)
		g = matrix.Scale(g, n.learningRate)

		delta := matrix.Product(g, matrix.Transpose(activations[i-1]))

		l := n.layers[i-1]
		l.AddToWeights(delta)
		l.AddToBias(g)

		e = matrix.Product(matrix.Transpose(l.Weights()), e)
	}
}
