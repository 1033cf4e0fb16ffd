package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatMul(t *testing.T) {
	A := FromSlice([][]float64{{1, 2, 3}, {4, 5, 6}})
	B := FromSlice([][]float64{{7, 8}, {9, 10}, {11, 12}})
	C, err := MatMul(A, B)
	require.NoError(t, err)
	assert.Equal(t, 2, C.R)
	assert.Equal(t, 2, C.C)
	assert.Equal(t, []float64{58, 64, 139, 154}, C.Data)

	_, err = MatMul(A, A)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestMatMulEmpty(t *testing.T) {
	C, err := MatMul(NewMatrix(0, 3), NewMatrix(3, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, C.R)
	assert.Equal(t, 2, C.C)
}

func TestElementwise(t *testing.T) {
	A := FromSlice([][]float64{{1, 2}, {3, 4}})
	B := FromSlice([][]float64{{5, 6}, {7, 8}})

	sum, err := Add(A, B)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 8, 10, 12}, sum.Data)

	diff, err := Sub(B, A)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 4, 4}, diff.Data)

	prod, err := Hadamard(A, B)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 12, 21, 32}, prod.Data)

	assert.Equal(t, []float64{2, 4, 6, 8}, Scale(A, 2).Data)

	_, err = Add(A, NewMatrix(1, 2))
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestBroadcastAndReduce(t *testing.T) {
	A := FromSlice([][]float64{{1, 2, 3}, {4, 5, 6}})
	v := FromSlice([][]float64{{10, 20, 30}})

	B, err := AddRowVector(A, v)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, B.Data)

	_, err = AddRowVector(A, A)
	assert.Error(t, err)

	s := SumCols(A)
	assert.Equal(t, 1, s.R)
	assert.Equal(t, []float64{5, 7, 9}, s.Data)
}

func TestTransposeAndSlices(t *testing.T) {
	A := FromSlice([][]float64{{1, 2, 3}, {4, 5, 6}})
	T := A.Transpose()
	assert.Equal(t, 3, T.R)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, T.Data)

	assert.Equal(t, []float64{4, 5, 6}, A.RowSlice(1).Data)
	assert.Equal(t, []float64{2, 5}, A.ColSlice(1).Data)

	A.Set(0, 0, 9)
	assert.Equal(t, 9.0, A.At(0, 0))
	assert.Equal(t, []float64{9, 2, 3}, A.Row(0))
}

func TestArgmaxRows(t *testing.T) {
	A := FromSlice([][]float64{{0.1, 0.7, 0.2}, {3, -1, 2}, {0, 0, 0}})
	assert.Equal(t, []int{1, 0, 0}, ArgmaxRows(A))
}

func TestFromData(t *testing.T) {
	m, err := FromData(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(1, 0))

	_, err = FromData(2, 3, []float64{1})
	assert.Error(t, err)
}
