package model

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/hai-mn/ai-science-training-series/pkg/data"
	"github.com/hai-mn/ai-science-training-series/pkg/neuralnet"
	"github.com/hai-mn/ai-science-training-series/pkg/optim"
)

// LinearConfig holds mini-batch gradient descent hyperparameters.
type LinearConfig struct {
	LearningRate float64
	Epochs       int
	BatchSize    int
}

func (c LinearConfig) Validate() error {
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return errors.Errorf("learning rate must be a positive finite number, got %g", c.LearningRate)
	}
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// LinearRegression predicts a scalar target as w·x + b, fit by mini-batch gradient descent.
type LinearRegression struct {
	W   []float64 // weights
	b   float64   // bias
	cfg LinearConfig
	rng *rand.Rand
}

var _ Model = (*LinearRegression)(nil)

// NewLinearRegression initializes small random weights; rng also drives the per-epoch shuffle.
func NewLinearRegression(nFeatures int, cfg LinearConfig, rng *rand.Rand) (*LinearRegression, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if nFeatures <= 0 {
		return nil, errors.Errorf("need at least one feature, got %d", nFeatures)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	w := make([]float64, nFeatures)
	for i := range w {
		w[i] = rng.NormFloat64() * 0.01
	}
	return &LinearRegression{W: w, cfg: cfg, rng: rng}, nil
}

// Predict returns predictions for rows in X, split across GOMAXPROCS workers.
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	pred := make([]float64, len(X))
	var wg sync.WaitGroup

	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		s := w * rowsPerWorker
		e := min(s+rowsPerWorker, len(X))
		if s >= e {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				sum := m.b
				for j, v := range X[i] {
					sum += m.W[j] * v
				}
				pred[i] = sum
			}
		}(s, e)
	}
	wg.Wait()
	return pred
}

// Fit runs cfg.Epochs passes over (X, y). Each epoch shuffles the rows and
// streams them through data.Batcher.
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("no training samples")
	}
	if len(X) != len(y) {
		return errors.Errorf("%d feature rows but %d targets", len(X), len(y))
	}
	for i, row := range X {
		if len(row) != len(m.W) {
			return errors.Errorf("row %d has %d features, model has %d", i, len(row), len(m.W))
		}
	}

	opt := optim.NewSGD(m.cfg.LearningRate)
	for ep := 0; ep < m.cfg.Epochs; ep++ {
		if err := m.epoch(X, y, opt); err != nil {
			return errors.WithMessagef(err, "epoch %d", ep)
		}
	}
	return nil
}

func (m *LinearRegression) epoch(X [][]float64, y []float64, opt *optim.SGD) error {
	stop := make(chan struct{})
	defer close(stop)
	samples, err := data.Emit(X, y, m.rng.Perm(len(X)), stop)
	if err != nil {
		return err
	}
	batches := make(chan data.Batch)
	done := data.Batcher(samples, m.cfg.BatchSize, batches)
	defer close(done)

	for batch := range batches {
		yhat := m.Predict(batch.X)
		loss, dy := neuralnet.MSE(batch.Y, yhat)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return errors.Errorf("loss diverged to %g; lower the learning rate", loss)
		}
		gW := make([]float64, len(m.W))
		gb := 0.0
		for i, row := range batch.X {
			d := dy[i]
			for j, xij := range row {
				gW[j] += d * xij
			}
			gb += d
		}
		opt.Step(m.W, gW)
		m.b -= opt.LearningRate * gb
	}
	return nil
}

// Bias returns the current bias value of the model.
func (m *LinearRegression) Bias() float64 {
	return m.b
}
