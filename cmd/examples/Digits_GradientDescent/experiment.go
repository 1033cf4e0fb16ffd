package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/hai-mn/ai-science-training-series/pkg/core"
	"github.com/hai-mn/ai-science-training-series/pkg/data"
	"github.com/hai-mn/ai-science-training-series/pkg/model"
	"github.com/hai-mn/ai-science-training-series/pkg/neuralnet"
	"github.com/hai-mn/ai-science-training-series/pkg/viz"
)

const numClasses = 10

// config is everything one run needs, filled from the flags.
type config struct {
	DataDir   string
	OutDir    string
	BatchSize int
	Iters     int
	LRLinear  float64
	LRMLP     float64
	Hidden    []int
	Seed      int64

	// GridSize is how many test images the prediction grids show.
	GridSize int
	Progress bool
}

func (c config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data directory is required")
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	for _, h := range c.Hidden {
		if h <= 0 {
			return errors.Errorf("hidden layer widths must be positive, got %v", c.Hidden)
		}
	}
	if c.GridSize < 0 {
		return errors.Errorf("grid size must not be negative, got %d", c.GridSize)
	}
	return nil
}

// parseHidden parses a comma separated list of layer widths. An empty string means no hidden layer.
func parseHidden(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Wrapf(err, "hidden layer width %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// result is what one trained classifier scored.
type result struct {
	Name          string
	History       neuralnet.History
	BatchAccuracy float64
	TestAccuracy  float64

	// Confusion counts test images by [true][predicted] class.
	Confusion [][]int
}

func (r result) String() string {
	return fmt.Sprintf("%-20s final loss %.4f, batch accuracy %5.2f%%, test accuracy %5.2f%%",
		r.Name, r.History.Final(), 100*r.BatchAccuracy, 100*r.TestAccuracy)
}

// report collects the results of a run and the figures it saved.
type report struct {
	Linear, MLP result
	Figures     []string
}

// run trains the linear regressor and then the MLP on the same fixed batch and evaluates both.
func run(cfg config) (*report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	trainImages, trainLabels, err := data.LoadSplit(cfg.DataDir, "train")
	if err != nil {
		return nil, err
	}
	testImages, testLabels, err := data.LoadSplit(cfg.DataDir, "test")
	if err != nil {
		return nil, err
	}
	klog.Infof("train: %s images, test: %s images of %dx%d",
		humanize.Comma(int64(trainImages.N)), humanize.Comma(int64(testImages.N)), trainImages.Height, trainImages.Width)

	idx, err := data.FixedBatch(trainImages.N, cfg.BatchSize, rng)
	if err != nil {
		return nil, err
	}
	batchImages := trainImages.Subset(idx)
	batchLabels := data.SelectLabels(trainLabels, idx)
	x := data.Flatten(batchImages)
	y, err := data.OneHot(batchLabels, numClasses)
	if err != nil {
		return nil, err
	}
	xTest := data.Flatten(testImages)
	trueBatch, trueTest := data.Ints(batchLabels), data.Ints(testLabels)

	rep := &report{}

	linear, err := model.NewLinearRegressor(x.C, numClasses, rng)
	if err != nil {
		return nil, err
	}
	hist, err := linear.Fit(x, y, trainConfig(cfg, cfg.LRLinear, linear.String()))
	if err != nil {
		return nil, errors.WithMessage(err, "training linear regressor")
	}
	if rep.Linear, err = evaluate(linear.String(), hist, linear, x, trueBatch, xTest, trueTest); err != nil {
		return nil, err
	}
	fmt.Println(rep.Linear)

	sizes := append(append([]int{x.C}, cfg.Hidden...), numClasses)
	mlp, err := neuralnet.NewMLP(sizes, neuralnet.SigmoidActivation{}, neuralnet.SoftmaxActivation{}, rng)
	if err != nil {
		return nil, err
	}
	hist, err = neuralnet.Train(mlp, x, y, neuralnet.CrossEntropy{}, trainConfig(cfg, cfg.LRMLP, mlp.String()))
	if err != nil {
		return nil, errors.WithMessage(err, "training MLP")
	}
	if rep.MLP, err = evaluate(mlp.String(), hist, mlp, x, trueBatch, xTest, trueTest); err != nil {
		return nil, err
	}
	fmt.Println(rep.MLP)
	fmt.Print(formatConfusion(rep.MLP.Confusion))

	if cfg.OutDir == "" {
		return rep, nil
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	lossPath := filepath.Join(cfg.OutDir, "loss.png")
	err = viz.PlotLoss(lossPath, fmt.Sprintf("training loss on %d images", x.R),
		viz.Series{Name: "linear (mse)", Values: rep.Linear.History.Loss},
		viz.Series{Name: "mlp (cross entropy)", Values: rep.MLP.History.Loss})
	if err != nil {
		return nil, err
	}
	rep.Figures = append(rep.Figures, lossPath)

	if n := min(cfg.GridSize, testImages.N); n > 0 {
		grid := make([]int, n)
		for i := range grid {
			grid[i] = i
		}
		gridImages := testImages.Subset(grid)
		gridX := data.SelectRows(xTest, grid)
		classifiers := []struct {
			name string
			c    model.Classifier
		}{{"linear", linear}, {"mlp", mlp}}
		for _, nc := range classifiers {
			pred, err := nc.c.Predict(gridX)
			if err != nil {
				return nil, err
			}
			path := filepath.Join(cfg.OutDir, "predictions_"+nc.name+".png")
			if err := viz.PlotPredictions(path, gridImages, trueTest[:n], pred, 5); err != nil {
				return nil, err
			}
			rep.Figures = append(rep.Figures, path)
		}
	}
	return rep, nil
}

func trainConfig(cfg config, lr float64, name string) neuralnet.TrainConfig {
	tc := neuralnet.TrainConfig{Iterations: cfg.Iters, LearningRate: lr, LogEvery: max(cfg.Iters/10, 1)}
	if cfg.Progress {
		bar := progressbar.NewOptions(cfg.Iters,
			progressbar.OptionSetDescription(name),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("steps"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionClearOnFinish())
		tc.OnStep = func(it int, loss float64) {
			bar.Describe(fmt.Sprintf("%s loss=%.4f", name, loss))
			_ = bar.Add(1)
		}
	}
	return tc
}

func evaluate(name string, hist neuralnet.History, c model.Classifier, x *core.Matrix, yBatch []int, xTest *core.Matrix, yTest []int) (result, error) {
	r := result{Name: name, History: hist}
	var err error
	if r.BatchAccuracy, err = model.EvaluateAccuracy(c, x, yBatch); err != nil {
		return r, err
	}
	pred, err := c.Predict(xTest)
	if err != nil {
		return r, err
	}
	r.TestAccuracy = model.Accuracy(yTest, pred)
	r.Confusion = model.ConfusionMatrix(yTest, pred, numClasses)
	return r, nil
}

// formatConfusion prints the confusion matrix with true classes as rows.
func formatConfusion(counts [][]int) string {
	var b strings.Builder
	b.WriteString("true\\pred")
	for j := range counts {
		fmt.Fprintf(&b, "%6d", j)
	}
	b.WriteString("\n")
	for i, row := range counts {
		fmt.Fprintf(&b, "%9d", i)
		for _, c := range row {
			fmt.Fprintf(&b, "%6d", c)
		}
		b.WriteString("\n")
	}
	return b.String()
}
