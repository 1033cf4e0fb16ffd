package neuralnet

import (
	"math"

	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

// probability clipping bound shared by BCE and CrossEntropy
const eps = 1e-12

// Mean Squared Error(MSE) and its gradient for regression
// Use this loss when predicting continuous values (regression problems)
func MSE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := range n {
		e := yPred[i] - yTrue[i]
		s += e * e
		grad[i] = 2 * e / float64(n)
	}
	return s / float64(n), grad
}

// Binary cross-entropy loss and gradient for logistic regression
// Use this loss when predicting probabilities for two classes (binary classification)
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := range n {
		p := math.Min(math.Max(yPred[i], eps), 1-eps)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (p - y) / float64(n)
	}
	return s / float64(n), grad
}

// Loss evaluates a batch of predictions (one row per sample) against targets
// of the same shape, returning the batch-mean loss and dL/dPred.
type Loss interface {
	Name() string
	Eval(pred, target *core.Matrix) (float64, *core.Matrix, error)
}

// MeanSquared is the per-sample sum of squared errors averaged over the batch.
// With one-hot targets this is the loss of the linear regressor on class scores.
type MeanSquared struct{}

func (MeanSquared) Name() string { return "mse" }

func (MeanSquared) Eval(pred, target *core.Matrix) (float64, *core.Matrix, error) {
	if !pred.SameShape(target) {
		return 0, nil, errors.Wrapf(core.ErrDimensionMismatch, "mse %dx%d vs %dx%d", pred.R, pred.C, target.R, target.C)
	}
	n := float64(pred.R)
	grad := core.NewMatrix(pred.R, pred.C)
	s := 0.0
	for i, p := range pred.Data {
		e := p - target.Data[i]
		s += e * e
		grad.Data[i] = 2 * e / n
	}
	return s / n, grad, nil
}

// CrossEntropy is -Σ y log p averaged over the batch. Predictions are clipped to [eps, 1].
type CrossEntropy struct{}

func (CrossEntropy) Name() string { return "cross_entropy" }

func (CrossEntropy) Eval(pred, target *core.Matrix) (float64, *core.Matrix, error) {
	if !pred.SameShape(target) {
		return 0, nil, errors.Wrapf(core.ErrDimensionMismatch, "cross entropy %dx%d vs %dx%d", pred.R, pred.C, target.R, target.C)
	}
	n := float64(pred.R)
	grad := core.NewMatrix(pred.R, pred.C)
	s := 0.0
	for i, p := range pred.Data {
		y := target.Data[i]
		if y == 0 {
			continue
		}
		p = math.Max(p, eps)
		s -= y * math.Log(p)
		grad.Data[i] = -y / (p * n)
	}
	return s / n, grad, nil
}

// LossByName resolves "mse" or "cross_entropy".
func LossByName(name string) (Loss, error) {
	switch name {
	case "mse":
		return MeanSquared{}, nil
	case "cross_entropy", "ce":
		return CrossEntropy{}, nil
	}
	return nil, errors.Errorf("unknown loss %q", name)
}
