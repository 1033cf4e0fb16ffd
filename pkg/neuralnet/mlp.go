package neuralnet

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
	"github.com/hai-mn/ai-science-training-series/pkg/optim"
)

// MLP is a stack of Dense layers: every layer but the last uses the hidden
// activation, the last uses the output activation.
type MLP struct {
	Layers []*Dense
}

// NewMLP builds a network for layer widths sizes, e.g. {784, 64, 10}.
// With sizes of length 2 and an Identity output it is a plain linear model.
func NewMLP(sizes []int, hidden, output Activation, rng *rand.Rand) (*MLP, error) {
	if len(sizes) < 2 {
		return nil, errors.Errorf("an MLP needs at least input and output widths, got %v", sizes)
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, errors.Errorf("layer widths must be positive, got %v", sizes)
		}
	}
	if rng == nil {
		return nil, errors.New("NewMLP requires a random source")
	}
	net := &MLP{}
	for i := 0; i+1 < len(sizes); i++ {
		act := hidden
		if i+2 == len(sizes) {
			act = output
		}
		net.Layers = append(net.Layers, NewDense(sizes[i], sizes[i+1], act, rng))
	}
	return net, nil
}

func (n *MLP) String() string {
	parts := make([]string, len(n.Layers))
	for i, l := range n.Layers {
		parts[i] = l.String()
	}
	return "MLP[" + strings.Join(parts, " ") + "]"
}

func (n *MLP) output() *Dense { return n.Layers[len(n.Layers)-1] }

// InputSize and OutputSize are the widths of the first and last layer.
func (n *MLP) InputSize() int  { return n.Layers[0].In() }
func (n *MLP) OutputSize() int { return n.output().Out() }

func (n *MLP) Forward(x *core.Matrix) (*core.Matrix, error) {
	if x.C != n.InputSize() {
		return nil, errors.Wrapf(core.ErrDimensionMismatch, "input has %d features, network expects %d", x.C, n.InputSize())
	}
	a := x
	var err error
	for _, l := range n.Layers {
		if a, err = l.Forward(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Backward propagates dL/dOutput through every layer, leaving gradients on each one.
func (n *MLP) Backward(gradOut *core.Matrix) error {
	gradZ, err := n.output().Act.Backward(n.output().z, n.output().a, gradOut)
	if err != nil {
		return err
	}
	return n.BackwardFromLogits(gradZ)
}

// BackwardFromLogits starts the backward pass from dL/dZ of the output layer.
func (n *MLP) BackwardFromLogits(gradZ *core.Matrix) error {
	grad, err := n.output().BackwardFromZ(gradZ)
	if err != nil {
		return err
	}
	for i := len(n.Layers) - 2; i >= 0; i-- {
		if grad, err = n.Layers[i].Backward(grad); err != nil {
			return err
		}
	}
	return nil
}

// Predict returns the argmax class of every row of x.
func (n *MLP) Predict(x *core.Matrix) ([]int, error) {
	out, err := n.Forward(x)
	if err != nil {
		return nil, err
	}
	return core.ArgmaxRows(out), nil
}

func (n *MLP) Params() []optim.Param {
	var params []optim.Param
	for i, l := range n.Layers {
		params = append(params, l.Params(fmt.Sprintf("layer%d/", i))...)
	}
	return params
}
