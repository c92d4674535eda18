// Package matrix provides the dense 2-D numeric primitives used by the
// network engine: construction with uniform random initialization,
// elementwise add/subtract/hadamard, matrix product, transpose, scalar
// scaling and elementwise map.
//
// All operations are pure. They allocate a new Matrix for the result and
// never write to their operands, so a caller may keep references to any
// intermediate value without observing later mutation.
//
// Shape mismatches are programming errors and panic.
package matrix
