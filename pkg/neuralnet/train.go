package neuralnet

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
	"github.com/hai-mn/ai-science-training-series/pkg/optim"
)

// TrainConfig holds the hyperparameters of a batch gradient descent run.
type TrainConfig struct {
	// Iterations is the number of gradient steps taken on the batch.
	Iterations int

	LearningRate float64

	// LogEvery logs the loss at klog verbosity 1 every LogEvery steps. Zero disables it.
	LogEvery int

	// OnStep, if set, is called after every step with the loss measured before the update.
	OnStep func(iter int, loss float64)
}

func (c TrainConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return errors.Errorf("learning rate must be a positive finite number, got %g", c.LearningRate)
	}
	if c.LogEvery < 0 {
		return errors.Errorf("log interval must not be negative, got %d", c.LogEvery)
	}
	return nil
}

// History is the loss recorded at every iteration.
type History struct {
	Loss []float64
}

// Final returns the last recorded loss, or NaN for an empty history.
func (h History) Final() float64 {
	if len(h.Loss) == 0 {
		return math.NaN()
	}
	return h.Loss[len(h.Loss)-1]
}

// Step runs one forward/backward pass on (x, y) and returns the loss before the update.
// Gradients are left on the layers; the caller applies them.
func Step(net *MLP, x, y *core.Matrix, loss Loss) (float64, error) {
	pred, err := net.Forward(x)
	if err != nil {
		return 0, err
	}
	value, gradPred, err := loss.Eval(pred, y)
	if err != nil {
		return 0, err
	}
	_, softmaxOut := net.output().Act.(SoftmaxActivation)
	_, ce := loss.(CrossEntropy)
	if softmaxOut && ce {
		// d(CE∘softmax)/dz = (p - y) / N
		gradZ, err := core.Sub(pred, y)
		if err != nil {
			return 0, err
		}
		return value, net.BackwardFromLogits(core.Scale(gradZ, 1/float64(x.R)))
	}
	return value, net.Backward(gradPred)
}

// Train runs plain batch gradient descent on the fixed batch (x, y), one sample per row.
func Train(net *MLP, x, y *core.Matrix, loss Loss, cfg TrainConfig) (History, error) {
	if err := cfg.Validate(); err != nil {
		return History{}, err
	}
	if x.R != y.R {
		return History{}, errors.Wrapf(core.ErrDimensionMismatch, "%d inputs but %d targets", x.R, y.R)
	}
	if x.R == 0 {
		return History{}, errors.New("empty training batch")
	}
	if y.C != net.OutputSize() {
		return History{}, errors.Wrapf(core.ErrDimensionMismatch, "targets have %d columns, network outputs %d", y.C, net.OutputSize())
	}

	opt := optim.NewSGD(cfg.LearningRate)
	hist := History{Loss: make([]float64, 0, cfg.Iterations)}
	for it := 0; it < cfg.Iterations; it++ {
		value, err := Step(net, x, y, loss)
		if err != nil {
			return hist, errors.WithMessagef(err, "iteration %d", it)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return hist, errors.Errorf("%s loss diverged to %g at iteration %d; lower the learning rate", loss.Name(), value, it)
		}
		params := net.Params()
		if err := opt.Apply(params); err != nil {
			return hist, err
		}
		for _, p := range params {
			if !p.Value.IsFinite() {
				return hist, errors.Errorf("%s diverged: %s is no longer finite after iteration %d; lower the learning rate", net, p.Name, it)
			}
		}
		hist.Loss = append(hist.Loss, value)
		if cfg.LogEvery > 0 && (it%cfg.LogEvery == 0 || it == cfg.Iterations-1) {
			klog.V(1).Infof("%s: iteration %d %s=%.6f", net, it, loss.Name(), value)
		}
		if cfg.OnStep != nil {
			cfg.OnStep(it, value)
		}
	}
	return hist, nil
}
