package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RandomSource yields uniformly distributed values in [0, 1).
//
// *rand.Rand from both math/rand and math/rand/v2 satisfies it, which lets
// callers inject a seeded generator for reproducible initialization.
type RandomSource interface {
	Float64() float64
}

// Matrix is a dense R×C grid of float64 values.
//
// Every operation in this package returns a freshly allocated Matrix and
// leaves its operands untouched. Storage is a gonum dense matrix in
// row-major order.
type Matrix struct {
	dense *mat.Dense
}

// New creates a rows×cols matrix from row-major data.
//
// If data is nil a zero matrix is allocated. Otherwise len(data) must equal
// rows*cols. The slice is copied.
func New(rows, cols int, data []float64) *Matrix {
	checkDims("new", rows, cols)
	if data == nil {
		return &Matrix{dense: mat.NewDense(rows, cols, nil)}
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("matrix.New: %d values for shape [%d,%d]", len(data), rows, cols))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Matrix{dense: mat.NewDense(rows, cols, buf)}
}

// Zeros creates a rows×cols matrix filled with zeros.
func Zeros(rows, cols int) *Matrix {
	return New(rows, cols, nil)
}

// Identity creates the n×n identity matrix.
func Identity(n int) *Matrix {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.dense.Set(i, i, 1)
	}
	return m
}

// Create creates a rows×cols matrix with each entry drawn independently and
// uniformly from [-1, 1).
func Create(rows, cols int, rng RandomSource) *Matrix {
	checkDims("create", rows, cols)
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return &Matrix{dense: mat.NewDense(rows, cols, data)}
}

// FromRows builds a matrix from a slice of equal-length rows.
func FromRows(rows [][]float64) *Matrix {
	if len(rows) == 0 {
		panic("matrix.FromRows: no rows")
	}
	cols := len(rows[0])
	checkDims("from rows", len(rows), cols)
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			panic(fmt.Sprintf("matrix.FromRows: row %d has %d columns, want %d", i, len(row), cols))
		}
		data = append(data, row...)
	}
	return &Matrix{dense: mat.NewDense(len(rows), cols, data)}
}

// Column builds an n×1 column matrix from a vector.
func Column(v []float64) *Matrix {
	return New(len(v), 1, v)
}

// Rows returns the row count.
func (m *Matrix) Rows() int {
	r, _ := m.dense.Dims()
	return r
}

// Cols returns the column count.
func (m *Matrix) Cols() int {
	_, c := m.dense.Dims()
	return c
}

// Dims returns the row and column counts.
func (m *Matrix) Dims() (rows, cols int) {
	return m.dense.Dims()
}

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{dense: mat.DenseCopyOf(m.dense)}
}

// ToRows returns a deep copy of the entries as a slice of rows.
func (m *Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.Rows())
	for i := range out {
		out[i] = mat.Row(nil, i, m.dense)
	}
	return out
}

// Flatten returns a row-major copy of the entries.
//
// For a column matrix this is the plain vector it represents.
func Flatten(m *Matrix) []float64 {
	r, c := m.dense.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.dense.RawRowView(i)...)
	}
	return out
}

// String formats the matrix for debugging.
func (m *Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m.dense, mat.Squeeze()))
}

func checkDims(op string, rows, cols int) {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("matrix.%s: invalid shape [%d,%d]", op, rows, cols))
	}
}
