package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegressionMetrics(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{1, 2, 3, 6}
	assert.InDelta(t, 1.0, MSE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 0.5, MAE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 1.0, RMSE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 1.0, R2(yTrue, yTrue), 1e-12)
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := []int{0, 1, 2, 2, -1, 1, 3}
	yPred := []int{0, 2, 2, 2, 0, -1, 1}
	want := [][]int{
		{1, 0, 0},
		{0, 0, 1},
		{0, 0, 2},
	}
	assert.Equal(t, want, ConfusionMatrix(yTrue, yPred, 3), "labels outside [0, 3) are skipped")
	assert.InDelta(t, 3.0/7, Accuracy(yTrue, yPred), 1e-12)
}
