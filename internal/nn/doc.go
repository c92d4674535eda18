// Package nn implements a dense feedforward network engine.
//
// A Network is a stack of Layers sized by a structure descriptor such as
// []int{784, 30, 10}. Every layer applies σ(W·a + b) with the logistic
// sigmoid. Training is plain online gradient descent: Train walks the
// dataset in order and applies one Backprop step per example.
//
// Inputs can be normalized before they reach the first layer (None, ByMax,
// ByConstant). Save returns a Snapshot that FromSnapshot turns back into a
// network producing identical predictions.
//
// Example:
//
//	net, err := nn.New(nn.Config{Structure: []int{2, 4, 1}, LearningRate: 0.5})
//	if err != nil {
//	    return err
//	}
//	if err := net.Train(ctx, examples); err != nil {
//	    return err
//	}
//	out, err := net.Predict([]float64{1, 0})
package nn
