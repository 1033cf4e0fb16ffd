package data

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

// Flatten turns every image into one row of Size() features scaled from [0, 255] into [0, 1].
func Flatten(im *Images) *core.Matrix {
	m := core.NewMatrix(im.N, im.Size())
	for i, p := range im.Pixels {
		m.Data[i] = float64(p) / 255
	}
	return m
}

// OneHot encodes labels as rows with a single 1 at the label's column.
func OneHot(labels []uint8, numClasses int) (*core.Matrix, error) {
	m := core.NewMatrix(len(labels), numClasses)
	for i, l := range labels {
		if int(l) >= numClasses {
			return nil, errors.Errorf("label %d at row %d out of range for %d classes", l, i, numClasses)
		}
		m.Set(i, int(l), 1)
	}
	return m, nil
}

// Ints converts labels for metric functions.
func Ints(labels []uint8) []int {
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = int(l)
	}
	return out
}

// FixedBatch draws size distinct indices out of n. A nil rng takes the first size indices.
func FixedBatch(n, size int, rng *rand.Rand) ([]int, error) {
	if size <= 0 || size > n {
		return nil, errors.Errorf("batch size %d must be in [1, %d]", size, n)
	}
	if rng == nil {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	return rng.Perm(n)[:size], nil
}

// SelectRows copies rows idx of m, in that order.
func SelectRows(m *core.Matrix, idx []int) *core.Matrix {
	out := core.NewMatrix(len(idx), m.C)
	for i, j := range idx {
		copy(out.Row(i), m.Row(j))
	}
	return out
}

func SelectLabels(labels []uint8, idx []int) []uint8 {
	out := make([]uint8, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
