package optim

import (
	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

// Param pairs a trainable matrix with the gradient computed for it by the last backward pass.
type Param struct {
	Name  string
	Value *core.Matrix
	Grad  *core.Matrix
}

// Stochastic Gradient Descent optimizer with a constant learning rate
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

func (o *SGD) Step(weights, grads []float64) { // in-place update using pointer receiver
	for i := range weights {
		weights[i] -= o.LearningRate * grads[i]
	}
}

// StepMatrix updates w in place with w -= lr * g.
func (o *SGD) StepMatrix(w, g *core.Matrix) error {
	if !w.SameShape(g) {
		return errors.Wrapf(core.ErrDimensionMismatch, "gradient %dx%d for weights %dx%d", g.R, g.C, w.R, w.C)
	}
	o.Step(w.Data, g.Data)
	return nil
}

// Apply steps every parameter. A parameter without a gradient is an error.
func (o *SGD) Apply(params []Param) error {
	for _, p := range params {
		if p.Grad == nil {
			return errors.Errorf("parameter %q has no gradient: call Backward before stepping", p.Name)
		}
		if err := o.StepMatrix(p.Value, p.Grad); err != nil {
			return errors.WithMessagef(err, "parameter %q", p.Name)
		}
	}
	return nil
}
