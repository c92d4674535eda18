package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Add returns the elementwise sum a + b.
func Add(a, b *Matrix) *Matrix {
	sameShape("add", a, b)
	var out mat.Dense
	out.Add(a.dense, b.dense)
	return &Matrix{dense: &out}
}

// Subtract returns the elementwise difference a - b.
func Subtract(a, b *Matrix) *Matrix {
	sameShape("subtract", a, b)
	var out mat.Dense
	out.Sub(a.dense, b.dense)
	return &Matrix{dense: &out}
}

// HadamardProduct returns the elementwise product a ⊙ b.
func HadamardProduct(a, b *Matrix) *Matrix {
	sameShape("hadamard", a, b)
	var out mat.Dense
	out.MulElem(a.dense, b.dense)
	return &Matrix{dense: &out}
}

// Product returns the matrix product a·b.
//
// Requires a.Cols() == b.Rows(). The result has shape [a.Rows(), b.Cols()]
// and entry (i,j) = Σ_k a[i][k]·b[k][j].
func Product(a, b *Matrix) *Matrix {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		panic(fmt.Sprintf("matrix.product: shape mismatch [%d,%d] @ [%d,%d]", ar, ac, br, bc))
	}
	var out mat.Dense
	out.Mul(a.dense, b.dense)
	return &Matrix{dense: &out}
}

// Transpose returns a new matrix with entry (j,i) = a[i][j].
func Transpose(a *Matrix) *Matrix {
	return &Matrix{dense: mat.DenseCopyOf(a.dense.T())}
}

// Map applies f to every entry and returns the result as a new matrix.
// The input is not modified.
func Map(a *Matrix, f func(float64) float64) *Matrix {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return f(v)
	}, a.dense)
	return &Matrix{dense: &out}
}

// Scale returns s·a.
func Scale(a *Matrix, s float64) *Matrix {
	var out mat.Dense
	out.Scale(s, a.dense)
	return &Matrix{dense: &out}
}

// Equal reports whether a and b have the same shape and identical entries.
func Equal(a, b *Matrix) bool {
	return mat.Equal(a.dense, b.dense)
}

// EqualApprox reports whether a and b have the same shape and entries that
// agree within tol (absolute or relative).
func EqualApprox(a, b *Matrix, tol float64) bool {
	return mat.EqualApprox(a.dense, b.dense, tol)
}

func sameShape(op string, a, b *Matrix) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		panic(fmt.Sprintf("matrix.%s: shape mismatch [%d,%d] vs [%d,%d]", op, ar, ac, br, bc))
	}
}
