package model

import (
	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

// Model is a supervised learner with a scalar target per row.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Classifier assigns a class index to every row of a batch.
// Both LinearRegressor and neuralnet.MLP satisfy it.
type Classifier interface {
	Predict(x *core.Matrix) ([]int, error)
}

// EvaluateAccuracy returns the fraction of rows of x that c labels correctly.
func EvaluateAccuracy(c Classifier, x *core.Matrix, labels []int) (float64, error) {
	if x.R != len(labels) {
		return 0, errors.Errorf("%d inputs but %d labels", x.R, len(labels))
	}
	pred, err := c.Predict(x)
	if err != nil {
		return 0, err
	}
	return Accuracy(labels, pred), nil
}
