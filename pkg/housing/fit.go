package housing

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/hai-mn/ai-science-training-series/pkg/loader"
	"github.com/hai-mn/ai-science-training-series/pkg/model"
	"github.com/hai-mn/ai-science-training-series/pkg/stats"
)

// FitConfig controls the price ~ area regression.
type FitConfig struct {
	model.LinearConfig
	TestRatio float64
	Seed      int64
}

var DefaultFitConfig = FitConfig{
	LinearConfig: model.LinearConfig{LearningRate: 0.05, Epochs: 100, BatchSize: 32},
	TestRatio:    0.2,
	Seed:         42,
}

func (c FitConfig) Validate() error {
	if err := c.LinearConfig.Validate(); err != nil {
		return err
	}
	if c.TestRatio < 0 || c.TestRatio >= 1 {
		return errors.Errorf("test ratio must be in [0, 1), got %g", c.TestRatio)
	}
	return nil
}

// PriceFit is price ≈ Slope·area + Intercept, in the table's original units.
type PriceFit struct {
	Slope, Intercept float64
	R2Train, R2Test  float64
	RMSETest         float64
	MAETest          float64
	TrainRows        int
	TestRows         int

	// Correlation is Pearson's r between area and price over all complete rows.
	Correlation float64

	// Area and Price are the complete rows used, for plotting.
	Area, Price []float64
}

// Predict returns the fitted price for a living area.
func (f *PriceFit) Predict(area float64) float64 { return f.Slope*area + f.Intercept }

// FitPriceModel regresses price on living area. Both are standardized for
// training and the coefficients are mapped back to original units.
func FitPriceModel(t *Table, cfg FitConfig) (*PriceFit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cols := t.Columns()
	areas, err := t.Column(cols.Area)
	if err != nil {
		return nil, err
	}
	prices, err := t.Column(cols.Price)
	if err != nil {
		return nil, err
	}

	var X [][]float64
	var y []float64
	for i := range areas {
		if math.IsNaN(areas[i]) || math.IsNaN(prices[i]) {
			continue
		}
		X = append(X, []float64{areas[i]})
		y = append(y, prices[i])
	}
	if len(y) < 2 {
		return nil, errors.Errorf("need at least 2 complete rows to fit, got %d", len(y))
	}
	if skipped := len(areas) - len(y); skipped > 0 {
		klog.Warningf("skipping %d rows with missing %s or %s", skipped, cols.Area, cols.Price)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	XTrain, XTest, yTrain, yTest, err := loader.TrainTestSplit(X, y, cfg.TestRatio, rng)
	if err != nil {
		return nil, err
	}

	xScaler, yScaler := stats.NewStandardScaler(), stats.NewStandardScaler()
	XTrainS, err := xScaler.FitTransform(XTrain)
	if err != nil {
		return nil, err
	}
	yTrainS, err := yScaler.FitTransform(column(yTrain))
	if err != nil {
		return nil, err
	}

	m, err := model.NewLinearRegression(1, cfg.LinearConfig, rng)
	if err != nil {
		return nil, err
	}
	if err := m.Fit(XTrainS, flatten(yTrainS)); err != nil {
		return nil, errors.WithMessage(err, "fitting price model")
	}

	// y = sy·(w·(x-mx)/sx + b) + my
	w, b := xScaler.Unscale(0, m.W[0], m.Bias())
	fit := &PriceFit{
		Slope:     yScaler.Std[0] * w,
		Intercept: yScaler.Std[0]*b + yScaler.Mean[0],
		TrainRows: len(yTrain),
		TestRows:  len(yTest),
	}
	for _, row := range X {
		fit.Area = append(fit.Area, row[0])
	}
	fit.Price = y
	fit.Correlation = stats.Correlation(fit.Area, fit.Price)

	fit.R2Train = model.R2(yTrain, fit.predictRows(XTrain))
	if len(yTest) > 0 {
		pred := fit.predictRows(XTest)
		fit.R2Test = model.R2(yTest, pred)
		fit.RMSETest = model.RMSE(yTest, pred)
		fit.MAETest = model.MAE(yTest, pred)
	}
	klog.V(1).Infof("price model: price = %.2f * area + %.2f (train R²=%.3f, test R²=%.3f)",
		fit.Slope, fit.Intercept, fit.R2Train, fit.R2Test)
	return fit, nil
}

func (f *PriceFit) predictRows(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = f.Predict(row[0])
	}
	return out
}

func column(v []float64) [][]float64 {
	out := make([][]float64, len(v))
	for i, x := range v {
		out[i] = []float64{x}
	}
	return out
}

func flatten(m [][]float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[0]
	}
	return out
}
