package neuralnet

import (
	"math"

	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func SigmoidPrime(x float64) float64 { s := Sigmoid(x); return s * (1 - s) }

func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func ReLUPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// SoftmaxRows normalizes every row of m into a probability distribution.
// Each row is shifted by its maximum before exponentiating.
func SoftmaxRows(m *core.Matrix) *core.Matrix {
	out := core.NewMatrix(m.R, m.C)
	for i := 0; i < m.R; i++ {
		row := m.Row(i)
		dst := out.Row(i)
		maxV := math.Inf(-1)
		for _, v := range row {
			maxV = math.Max(maxV, v)
		}
		sum := 0.0
		for j, v := range row {
			dst[j] = math.Exp(v - maxV)
			sum += dst[j]
		}
		for j := range dst {
			dst[j] /= sum
		}
	}
	return out
}

// Activation is a layer nonlinearity. Backward maps dL/dA to dL/dZ given the
// cached pre-activation z and activation a.
type Activation interface {
	Name() string
	Forward(z *core.Matrix) *core.Matrix
	Backward(z, a, gradA *core.Matrix) (*core.Matrix, error)
}

// Identity leaves its input untouched; a single Dense layer with Identity is a linear regressor.
type Identity struct{}

func (Identity) Name() string                        { return "identity" }
func (Identity) Forward(z *core.Matrix) *core.Matrix { return z.Clone() }
func (Identity) Backward(_, _, gradA *core.Matrix) (*core.Matrix, error) {
	return gradA.Clone(), nil
}

type SigmoidActivation struct{}

func (SigmoidActivation) Name() string                        { return "sigmoid" }
func (SigmoidActivation) Forward(z *core.Matrix) *core.Matrix { return z.Map(Sigmoid) }

// Backward uses σ'(z) = a(1-a) from the cached activation.
func (SigmoidActivation) Backward(_, a, gradA *core.Matrix) (*core.Matrix, error) {
	d := a.Map(func(s float64) float64 { return s * (1 - s) })
	return core.Hadamard(gradA, d)
}

type ReLUActivation struct{}

func (ReLUActivation) Name() string                        { return "relu" }
func (ReLUActivation) Forward(z *core.Matrix) *core.Matrix { return z.Map(ReLU) }
func (ReLUActivation) Backward(z, _, gradA *core.Matrix) (*core.Matrix, error) {
	return core.Hadamard(gradA, z.Map(ReLUPrime))
}

// SoftmaxActivation applies SoftmaxRows. Its Backward is the full
// Jacobian-vector product dz_j = p_j (g_j - Σ_k g_k p_k), row by row.
type SoftmaxActivation struct{}

func (SoftmaxActivation) Name() string                        { return "softmax" }
func (SoftmaxActivation) Forward(z *core.Matrix) *core.Matrix { return SoftmaxRows(z) }
func (SoftmaxActivation) Backward(_, a, gradA *core.Matrix) (*core.Matrix, error) {
	if !a.SameShape(gradA) {
		return nil, errors.Wrapf(core.ErrDimensionMismatch, "softmax backward %dx%d vs %dx%d", a.R, a.C, gradA.R, gradA.C)
	}
	out := core.NewMatrix(a.R, a.C)
	for i := 0; i < a.R; i++ {
		p, g, dst := a.Row(i), gradA.Row(i), out.Row(i)
		dot := 0.0
		for j := range p {
			dot += g[j] * p[j]
		}
		for j := range p {
			dst[j] = p[j] * (g[j] - dot)
		}
	}
	return out, nil
}

// ActivationByName resolves "identity", "sigmoid", "relu" or "softmax".
func ActivationByName(name string) (Activation, error) {
	switch name {
	case "identity", "linear", "":
		return Identity{}, nil
	case "sigmoid":
		return SigmoidActivation{}, nil
	case "relu":
		return ReLUActivation{}, nil
	case "softmax":
		return SoftmaxActivation{}, nil
	}
	return nil, errors.Errorf("unknown activation %q", name)
}
