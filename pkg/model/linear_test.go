package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
	"github.com/hai-mn/ai-science-training-series/pkg/neuralnet"
)

// generateLinearData draws n samples of y = 2x₀ - 3x₁ + 0.5 with small noise.
func generateLinearData(rng *rand.Rand, n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = []float64{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		y[i] = 2*X[i][0] - 3*X[i][1] + 0.5 + rng.NormFloat64()*0.01
	}
	return X, y
}

func TestLinearRegressionFit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	X, y := generateLinearData(rng, 400)

	m, err := NewLinearRegression(2, LinearConfig{LearningRate: 0.1, Epochs: 60, BatchSize: 16}, rng)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))

	assert.InDelta(t, 2.0, m.W[0], 0.05)
	assert.InDelta(t, -3.0, m.W[1], 0.05)
	assert.InDelta(t, 0.5, m.Bias(), 0.05)
	assert.Greater(t, R2(y, m.Predict(X)), 0.99)
}

func TestLinearRegressionErrors(t *testing.T) {
	_, err := NewLinearRegression(2, LinearConfig{LearningRate: 0, Epochs: 1, BatchSize: 1}, nil)
	assert.Error(t, err)
	_, err = NewLinearRegression(0, LinearConfig{LearningRate: 0.1, Epochs: 1, BatchSize: 1}, nil)
	assert.Error(t, err)

	m, err := NewLinearRegression(2, LinearConfig{LearningRate: 0.1, Epochs: 1, BatchSize: 4}, nil)
	require.NoError(t, err)
	assert.Error(t, m.Fit(nil, nil))
	assert.Error(t, m.Fit([][]float64{{1, 2}}, []float64{1, 2}))
	assert.Error(t, m.Fit([][]float64{{1, 2, 3}}, []float64{1}))
	assert.Nil(t, m.Predict(nil))
}

func TestLinearRegressionDiverges(t *testing.T) {
	X := [][]float64{{1e3}, {-1e3}, {2e3}}
	y := []float64{1, 2, 3}
	m, err := NewLinearRegression(1, LinearConfig{LearningRate: 10, Epochs: 200, BatchSize: 3}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, m.Fit(X, y), "diverged")
}

func TestLinearRegressorSeparatesClasses(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// Two well separated clusters in 2D, one-hot targets.
	n := 40
	x := core.NewMatrix(n, 2)
	y := core.NewMatrix(n, 2)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		c := i % 2
		labels[i] = c
		center := -1.0
		if c == 1 {
			center = 1.0
		}
		x.Set(i, 0, center+rng.NormFloat64()*0.1)
		x.Set(i, 1, center+rng.NormFloat64()*0.1)
		y.Set(i, c, 1)
	}

	m, err := NewLinearRegressor(2, 2, rng)
	require.NoError(t, err)
	assert.Equal(t, "LinearRegressor(2->2)", m.String())

	hist, err := m.Fit(x, y, neuralnet.TrainConfig{Iterations: 200, LearningRate: 0.1})
	require.NoError(t, err)
	assert.Less(t, hist.Final(), hist.Loss[0])

	acc, err := EvaluateAccuracy(m, x, labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	w, b := m.Weights()
	assert.Equal(t, 2, w.R)
	assert.Equal(t, 1, b.R)

	_, err = EvaluateAccuracy(m, x, labels[:3])
	assert.Error(t, err)
}
