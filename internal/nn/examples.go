package nn

// TrainingExample pairs an input vector with the full target output vector.
type TrainingExample struct {
	Input  []float64 `json:"input"`
	Output []float64 `json:"output"`
}

// EvaluationExample pairs an input vector with the index of the output unit
// expected to score highest.
type EvaluationExample struct {
	Input              []float64 `json:"input"`
	ExpectedClassIndex int       `json:"expectedClassIndex"`
}
