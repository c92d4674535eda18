// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a dense feedforward network with sigmoid activations.
//
// # Overview
//
// This package contains:
//   - Network: construction, Predict, Backprop, Train, Evaluate
//   - Layer: weights and bias between two stages
//   - Normalization: None, ByMax, ByConstant
//   - Progress reporting: ProgressObserver, ProgressFunc, ChannelObserver
//   - Persistence: Snapshot, FromSnapshot
//
// # Basic Usage
//
//	import "github.com/born-ml/densenet/nn"
//
//	func main() {
//	    net, err := nn.New(nn.Config{Structure: []int{2, 3, 1}, LearningRate: 0.5})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    data := []nn.TrainingExample{
//	        {Input: []float64{0, 0}, Output: []float64{0}},
//	        {Input: []float64{0, 1}, Output: []float64{1}},
//	        {Input: []float64{1, 0}, Output: []float64{1}},
//	        {Input: []float64{1, 1}, Output: []float64{0}},
//	    }
//	    if err := net.TrainEpochs(ctx, data, 10000); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, _ := net.Predict([]float64{1, 0})
//	}
//
// # Training
//
// Training is online gradient descent: one Backprop step per example, in
// dataset order, with no shuffling. The dataset is normalized once before
// the pass. Each layer is updated before the error is propagated through
// its new weights.
//
// # Evaluation
//
// Evaluate counts predictions whose Argmax matches the expected class:
//
//	result, err := net.Evaluate(testData)
//	fmt.Println(result) // 9123 / 10000 (91.23%)
//
// # Persistence
//
// Save returns a Snapshot that can be encoded as JSON or written with the
// serialization package:
//
//	snap := net.Save()
//	restored, err := nn.FromSnapshot(snap)
package nn
