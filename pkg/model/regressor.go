package model

import (
	"fmt"
	"math/rand"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
	"github.com/hai-mn/ai-science-training-series/pkg/neuralnet"
)

// LinearRegressor maps each input row to one score per class with XW + b and
// is trained by regressing those scores onto one-hot targets under mean squared error.
// It is a single identity-activated Dense layer.
type LinearRegressor struct {
	net *neuralnet.MLP
}

var _ Classifier = (*LinearRegressor)(nil)

func NewLinearRegressor(inputs, outputs int, rng *rand.Rand) (*LinearRegressor, error) {
	net, err := neuralnet.NewMLP([]int{inputs, outputs}, nil, neuralnet.Identity{}, rng)
	if err != nil {
		return nil, err
	}
	return &LinearRegressor{net: net}, nil
}

// Fit runs batch gradient descent on the fixed batch (x, y).
func (m *LinearRegressor) Fit(x, y *core.Matrix, cfg neuralnet.TrainConfig) (neuralnet.History, error) {
	return neuralnet.Train(m.net, x, y, neuralnet.MeanSquared{}, cfg)
}

// Predict returns the highest scoring class of every row.
func (m *LinearRegressor) Predict(x *core.Matrix) ([]int, error) { return m.net.Predict(x) }

// Weights exposes W (inputs×outputs) and b (1×outputs).
func (m *LinearRegressor) Weights() (w, b *core.Matrix) {
	l := m.net.Layers[0]
	return l.W, l.B
}

func (m *LinearRegressor) String() string {
	return fmt.Sprintf("LinearRegressor(%d->%d)", m.net.InputSize(), m.net.OutputSize())
}
