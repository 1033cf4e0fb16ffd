package neuralnet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
)

func randomBatch(rng *rand.Rand, n, in, classes int) (x, y *core.Matrix) {
	x = core.NewMatrix(n, in)
	for i := range x.Data {
		x.Data[i] = rng.Float64()
	}
	y = core.NewMatrix(n, classes)
	for i := 0; i < n; i++ {
		y.Set(i, rng.Intn(classes), 1)
	}
	return
}

func TestNewMLP(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net, err := NewMLP([]int{4, 3, 2}, SigmoidActivation{}, SoftmaxActivation{}, rng)
	require.NoError(t, err)
	require.Len(t, net.Layers, 2)
	assert.Equal(t, 4, net.InputSize())
	assert.Equal(t, 2, net.OutputSize())
	assert.Equal(t, "sigmoid", net.Layers[0].Act.Name())
	assert.Equal(t, "softmax", net.Layers[1].Act.Name())
	assert.Equal(t, "MLP[Dense(4->3, sigmoid) Dense(3->2, softmax)]", net.String())
	assert.Len(t, net.Params(), 4)

	_, err = NewMLP([]int{4}, nil, nil, rng)
	assert.Error(t, err)
	_, err = NewMLP([]int{4, 0}, nil, nil, rng)
	assert.Error(t, err)
	_, err = NewMLP([]int{4, 2}, nil, nil, nil)
	assert.Error(t, err)
}

func TestForwardShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	net, err := NewMLP([]int{5, 7, 3}, SigmoidActivation{}, SoftmaxActivation{}, rng)
	require.NoError(t, err)
	x, _ := randomBatch(rng, 6, 5, 3)
	out, err := net.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, 6, out.R)
	assert.Equal(t, 3, out.C)

	_, err = net.Forward(core.NewMatrix(2, 4))
	assert.Error(t, err)

	pred, err := net.Predict(x)
	require.NoError(t, err)
	assert.Len(t, pred, 6)
}

// Analytic gradients from Step must agree with central differences for every
// pairing the workflows use, including the fused softmax + cross-entropy path.
func TestGradientCheck(t *testing.T) {
	cases := []struct {
		name           string
		sizes          []int
		hidden, output Activation
		loss           Loss
	}{
		{"linear-mse", []int{4, 3}, nil, Identity{}, MeanSquared{}},
		{"sigmoid-softmax-ce", []int{4, 5, 3}, SigmoidActivation{}, SoftmaxActivation{}, CrossEntropy{}},
		{"sigmoid-sigmoid-mse", []int{4, 5, 3}, SigmoidActivation{}, SigmoidActivation{}, MeanSquared{}},
		{"sigmoid-softmax-mse", []int{4, 6, 5, 3}, SigmoidActivation{}, SoftmaxActivation{}, MeanSquared{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			net, err := NewMLP(tc.sizes, tc.hidden, tc.output, rng)
			require.NoError(t, err)
			x, y := randomBatch(rng, 5, tc.sizes[0], tc.sizes[len(tc.sizes)-1])

			_, err = Step(net, x, y, tc.loss)
			require.NoError(t, err)

			for _, p := range net.Params() {
				analytic := p.Grad.Clone()
				numeric, err := NumericalGradient(func() (float64, error) {
					return BatchLoss(net, x, y, tc.loss)
				}, p.Value, 1e-5)
				require.NoError(t, err)
				assert.InDeltaSlice(t, numeric.Data, analytic.Data, 1e-6, "parameter %s", p.Name)
			}
		})
	}
}

func TestTrainReducesLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	net, err := NewMLP([]int{6, 16, 3}, SigmoidActivation{}, SoftmaxActivation{}, rng)
	require.NoError(t, err)
	x, y := randomBatch(rng, 12, 6, 3)

	var steps int
	hist, err := Train(net, x, y, CrossEntropy{}, TrainConfig{
		Iterations:   2000,
		LearningRate: 1.0,
		LogEvery:     500,
		OnStep:       func(int, float64) { steps++ },
	})
	require.NoError(t, err)
	require.Len(t, hist.Loss, 2000)
	assert.Equal(t, 2000, steps)
	assert.Less(t, hist.Final(), hist.Loss[0]/2)
}

func TestTrainValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net, err := NewMLP([]int{2, 2}, nil, Identity{}, rng)
	require.NoError(t, err)
	x, y := randomBatch(rng, 4, 2, 2)

	_, err = Train(net, x, y, MeanSquared{}, TrainConfig{Iterations: 0, LearningRate: 0.1})
	assert.Error(t, err)
	_, err = Train(net, x, y, MeanSquared{}, TrainConfig{Iterations: 1, LearningRate: -1})
	assert.Error(t, err)
	_, err = Train(net, x, core.NewMatrix(3, 2), MeanSquared{}, TrainConfig{Iterations: 1, LearningRate: 0.1})
	assert.Error(t, err)
	_, err = Train(net, x, core.NewMatrix(4, 3), MeanSquared{}, TrainConfig{Iterations: 1, LearningRate: 0.1})
	assert.Error(t, err)
}

func TestTrainDetectsDivergence(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	net, err := NewMLP([]int{3, 3}, nil, Identity{}, rng)
	require.NoError(t, err)
	x, y := randomBatch(rng, 4, 3, 3)
	for i := range x.Data {
		x.Data[i] *= 1e3
	}
	_, err = Train(net, x, y, MeanSquared{}, TrainConfig{Iterations: 500, LearningRate: 10})
	assert.ErrorContains(t, err, "diverged")
}

func TestHistoryFinal(t *testing.T) {
	assert.True(t, math.IsNaN(History{}.Final()))
	assert.Equal(t, 2.0, History{Loss: []float64{3, 2}}.Final())
}
