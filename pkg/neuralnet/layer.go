package neuralnet

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
	"github.com/hai-mn/ai-science-training-series/pkg/optim"
)

// Dense is a fully connected layer a = act(x·W + b).
// W is in×out and B is 1×out; Forward caches x, z and a for Backward.
type Dense struct {
	W, B         *core.Matrix
	Act          Activation
	GradW, GradB *core.Matrix

	x, z, a *core.Matrix
}

// NewDense draws W from N(0, 1/in) and zeroes the bias.
func NewDense(in, out int, act Activation, rng *rand.Rand) *Dense {
	if act == nil {
		act = Identity{}
	}
	w := core.NewMatrix(in, out)
	scale := 1 / math.Sqrt(float64(max(in, 1)))
	for i := range w.Data {
		w.Data[i] = rng.NormFloat64() * scale
	}
	return &Dense{W: w, B: core.NewMatrix(1, out), Act: act}
}

func (l *Dense) In() int  { return l.W.R }
func (l *Dense) Out() int { return l.W.C }

func (l *Dense) String() string {
	return fmt.Sprintf("Dense(%d->%d, %s)", l.In(), l.Out(), l.Act.Name())
}

// Forward computes the layer output for a batch x (one sample per row).
func (l *Dense) Forward(x *core.Matrix) (*core.Matrix, error) {
	xw, err := core.MatMul(x, l.W)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s forward", l)
	}
	z, err := core.AddRowVector(xw, l.B)
	if err != nil {
		return nil, err
	}
	l.x, l.z = x, z
	l.a = l.Act.Forward(z)
	return l.a, nil
}

// Backward takes dL/dA, stores GradW and GradB, and returns dL/dX.
func (l *Dense) Backward(gradA *core.Matrix) (*core.Matrix, error) {
	if l.a == nil {
		return nil, errors.Errorf("%s: Backward called before Forward", l)
	}
	gradZ, err := l.Act.Backward(l.z, l.a, gradA)
	if err != nil {
		return nil, err
	}
	return l.BackwardFromZ(gradZ)
}

// BackwardFromZ is Backward for a caller that already holds dL/dZ,
// e.g. the combined softmax + cross-entropy gradient.
func (l *Dense) BackwardFromZ(gradZ *core.Matrix) (*core.Matrix, error) {
	if l.x == nil {
		return nil, errors.Errorf("%s: Backward called before Forward", l)
	}
	var err error
	if l.GradW, err = core.MatMul(l.x.Transpose(), gradZ); err != nil {
		return nil, errors.WithMessagef(err, "%s weight gradient", l)
	}
	l.GradB = core.SumCols(gradZ)
	gradX, err := core.MatMul(gradZ, l.W.Transpose())
	if err != nil {
		return nil, errors.WithMessagef(err, "%s input gradient", l)
	}
	return gradX, nil
}

func (l *Dense) Params(prefix string) []optim.Param {
	return []optim.Param{
		{Name: prefix + "W", Value: l.W, Grad: l.GradW},
		{Name: prefix + "b", Value: l.B, Grad: l.GradB},
	}
}
