package data

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

func TestFlatten(t *testing.T) {
	im, _ := sampleImages()
	x := Flatten(im)
	assert.Equal(t, 3, x.R)
	assert.Equal(t, 4, x.C)
	assert.Equal(t, []float64{0, 1, 0, 1}, x.Row(0))
	for _, v := range x.Data {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestOneHot(t *testing.T) {
	y, err := OneHot([]uint8{2, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0}, y.Data)
	assert.Equal(t, []int{2, 0}, core.ArgmaxRows(y))

	_, err = OneHot([]uint8{3}, 3)
	assert.Error(t, err)

	assert.Equal(t, []int{2, 0}, Ints([]uint8{2, 0}))
}

func TestFixedBatch(t *testing.T) {
	idx, err := FixedBatch(10, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, idx)

	a, err := FixedBatch(100, 8, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b, err := FixedBatch(100, 8, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must give the same batch")

	seen := map[int]bool{}
	for _, i := range a {
		assert.False(t, seen[i])
		seen[i] = true
	}

	_, err = FixedBatch(5, 6, nil)
	assert.Error(t, err)
	_, err = FixedBatch(5, 0, nil)
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	m := core.FromSlice([][]float64{{1, 2}, {3, 4}, {5, 6}})
	s := SelectRows(m, []int{2, 0})
	assert.Equal(t, []float64{5, 6, 1, 2}, s.Data)
	assert.Equal(t, []uint8{9, 7}, SelectLabels([]uint8{7, 8, 9}, []int{2, 0}))
}
