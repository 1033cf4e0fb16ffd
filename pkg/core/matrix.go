package core

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrDimensionMismatch is returned (wrapped) by every operation whose operand shapes disagree.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Matrix is a dense row-major matrix.
type Matrix struct {
	R, C int
	Data []float64
}

// New Matrix Allocates Zero Matrix
func NewMatrix(r, c int) *Matrix {
	return &Matrix{R: r, C: c, Data: make([]float64, r*c)}
}

// FromSlice creates a Matrix from a nested slice (copies Matrix)
func FromSlice(a [][]float64) *Matrix {
	r := len(a)
	if r == 0 {
		return &Matrix{R: 0, C: 0}
	}

	c := len(a[0])
	m := NewMatrix(r, c)
	k := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Data[k] = a[i][j]
			k++
		}
	}
	return m
}

// FromData wraps data (not copied) as an r x c matrix.
func FromData(r, c int, data []float64) (*Matrix, error) {
	if len(data) != r*c {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d values for a %dx%d matrix", len(data), r, c)
	}
	return &Matrix{R: r, C: c, Data: data}, nil
}

// At returns element (i, j)
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.C+j] }

// Set sets element (i, j)
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.C+j] = v }

// Row returns row i sharing the underlying storage.
func (m *Matrix) Row(i int) []float64 { return m.Data[i*m.C : (i+1)*m.C] }

// SameShape reports whether m and o have identical dimensions.
func (m *Matrix) SameShape(o *Matrix) bool { return m.R == o.R && m.C == o.C }

// Clone Deep Copies of Matrix
func (m *Matrix) Clone() *Matrix {
	n := &Matrix{R: m.R, C: m.C, Data: make([]float64, len(m.Data))}
	copy(n.Data, m.Data)
	return n
}

func (m *Matrix) Transpose() *Matrix {
	t := NewMatrix(m.C, m.R)
	for i := 0; i < m.R; i++ {
		for j := 0; j < m.C; j++ {
			t.Data[j*t.C+i] = m.Data[i*m.C+j]
		}
	}
	return t
}

// dense views m as a gonum matrix sharing the same backing slice.
func (m *Matrix) dense() *mat.Dense { return mat.NewDense(m.R, m.C, m.Data) }

// MatMul returns A·B. The product itself is delegated to gonum's BLAS-backed Dense.Mul.
func MatMul(A, B *Matrix) (*Matrix, error) {
	if A.C != B.R {
		return nil, errors.Wrapf(ErrDimensionMismatch, "matmul %dx%d by %dx%d", A.R, A.C, B.R, B.C)
	}

	C := NewMatrix(A.R, B.C)
	// gonum panics on zero-sized matrices; the product of empty operands is all zeros anyway.
	if A.R == 0 || A.C == 0 || B.C == 0 {
		return C, nil
	}
	C.dense().Mul(A.dense(), B.dense())
	return C, nil
}

// Add returns A + B (element-wise).
func Add(A, B *Matrix) (*Matrix, error) {
	if !A.SameShape(B) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "add %dx%d and %dx%d", A.R, A.C, B.R, B.C)
	}
	C := NewMatrix(A.R, A.C)
	for i := 0; i < len(A.Data); i++ {
		C.Data[i] = A.Data[i] + B.Data[i]
	}
	return C, nil
}

// Sub returns A - B (element-wise).
func Sub(A, B *Matrix) (*Matrix, error) {
	if !A.SameShape(B) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "sub %dx%d and %dx%d", A.R, A.C, B.R, B.C)
	}
	C := NewMatrix(A.R, A.C)
	for i := 0; i < len(A.Data); i++ {
		C.Data[i] = A.Data[i] - B.Data[i]
	}
	return C, nil
}

// Hadamard returns the element-wise product A ⊙ B.
func Hadamard(A, B *Matrix) (*Matrix, error) {
	if !A.SameShape(B) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "hadamard %dx%d and %dx%d", A.R, A.C, B.R, B.C)
	}
	C := NewMatrix(A.R, A.C)
	for i := range A.Data {
		C.Data[i] = A.Data[i] * B.Data[i]
	}
	return C, nil
}

// Scale returns s*A.
func Scale(A *Matrix, s float64) *Matrix {
	C := NewMatrix(A.R, A.C)
	for i := 0; i < len(A.Data); i++ {
		C.Data[i] = s * A.Data[i]
	}
	return C
}

// AddRowVector adds the 1xC vector v to every row of A.
func AddRowVector(A, v *Matrix) (*Matrix, error) {
	if v.R != 1 || v.C != A.C {
		return nil, errors.Wrapf(ErrDimensionMismatch, "broadcast %dx%d onto %dx%d", v.R, v.C, A.R, A.C)
	}
	C := NewMatrix(A.R, A.C)
	for i := 0; i < A.R; i++ {
		for j := 0; j < A.C; j++ {
			C.Data[i*C.C+j] = A.Data[i*A.C+j] + v.Data[j]
		}
	}
	return C, nil
}

// SumCols sums over rows, returning a 1xC matrix of column totals.
func SumCols(A *Matrix) *Matrix {
	s := NewMatrix(1, A.C)
	for i := 0; i < A.R; i++ {
		for j := 0; j < A.C; j++ {
			s.Data[j] += A.Data[i*A.C+j]
		}
	}
	return s
}

// ArgmaxRows returns the column index of the largest value in each row.
func ArgmaxRows(A *Matrix) []int {
	out := make([]int, A.R)
	for i := 0; i < A.R; i++ {
		row := A.Row(i)
		best, bestV := 0, math.Inf(-1)
		for j, v := range row {
			if v > bestV {
				best, bestV = j, v
			}
		}
		out[i] = best
	}
	return out
}

// Apply applies f element-wise (in-place, pointer receiver for efficiency).
func (m *Matrix) Apply(f func(float64) float64) {
	for i := 0; i < len(m.Data); i++ {
		m.Data[i] = f(m.Data[i])
	}
}

// Map returns a new matrix with f applied element-wise.
func (m *Matrix) Map(f func(float64) float64) *Matrix {
	n := m.Clone()
	n.Apply(f)
	return n
}

// RowSlice returns a view copy of row i as a row vector matrix (1,n).
func (m *Matrix) RowSlice(i int) *Matrix {
	v := NewMatrix(1, m.C)
	copy(v.Data, m.Data[i*m.C:(i+1)*m.C])
	return v
}

// ColSlice returns a view copy of column j as a column vector (n,1).
func (m *Matrix) ColSlice(j int) *Matrix {
	v := NewMatrix(m.R, 1)
	for i := 0; i < m.R; i++ {
		v.Data[i] = m.Data[i*m.C+j]
	}
	return v
}

// IsFinite reports whether every element is neither NaN nor ±Inf.
func (m *Matrix) IsFinite() bool {
	for _, v := range m.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
