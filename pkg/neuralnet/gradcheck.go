package neuralnet

import (
	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

// NumericalGradient estimates df/dp by central differences, perturbing p in
// place and restoring every entry afterwards.
func NumericalGradient(f func() (float64, error), p *core.Matrix, h float64) (*core.Matrix, error) {
	grad := core.NewMatrix(p.R, p.C)
	for i := range p.Data {
		orig := p.Data[i]
		p.Data[i] = orig + h
		plus, err := f()
		if err != nil {
			p.Data[i] = orig
			return nil, err
		}
		p.Data[i] = orig - h
		minus, err := f()
		p.Data[i] = orig
		if err != nil {
			return nil, err
		}
		grad.Data[i] = (plus - minus) / (2 * h)
	}
	return grad, nil
}

// BatchLoss runs a forward pass and returns only the loss value.
func BatchLoss(net *MLP, x, y *core.Matrix, loss Loss) (float64, error) {
	pred, err := net.Forward(x)
	if err != nil {
		return 0, err
	}
	v, _, err := loss.Eval(pred, y)
	return v, err
}
