package nn

import "math"

// Sigmoid is the logistic activation σ(x) = 1 / (1 + e^-x).
//
// Output lies in (0, 1) for every finite x, with Sigmoid(0) = 0.5.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SigmoidDerivative returns σ'(·) expressed through an already activated
// value y = σ(x): y·(1-y). It peaks at y = 0.5 with value 0.25.
func SigmoidDerivative(y float64) float64 {
	return y * (1 - y)
}
