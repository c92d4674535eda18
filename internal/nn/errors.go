package nn

import "errors"

// Errors reported at the network API boundary. Detail is attached with
// fmt.Errorf and %w, so callers match them with errors.Is.
var (
	// ErrInvalidConfiguration is returned for a structure shorter than two
	// entries, a non-positive layer size, a non-positive learning rate, or
	// ByConstant normalization with a zero constant.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidDimension is returned when an input or target vector does not
	// match the network structure, or when restored layers have the wrong shape.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrEmptyDataset is returned by Train and Evaluate when called with no examples.
	ErrEmptyDataset = errors.New("empty dataset")
)
