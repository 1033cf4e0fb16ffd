// Digits_GradientDescent trains, by plain batch gradient descent on one fixed
// batch of images, first a linear regressor onto one-hot labels and then a
// small sigmoid MLP with a softmax output, and compares the two.
//
// The data directory must hold the MNIST files (train-images-idx3-ubyte,
// train-labels-idx1-ubyte, t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte),
// optionally gzipped. Fashion-MNIST and KMNIST use the same layout.
//
// Example:
//
//	go run ./cmd/examples/Digits_GradientDescent --data-dir ~/data/mnist --out-dir ./figures -v=1
package main

import (
	"flag"

	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagDataDir  = flag.String("data-dir", "", "Directory with the MNIST IDX files")
	flagOutDir   = flag.String("out-dir", "", "Directory to save the loss curves and prediction grids. Empty skips plotting")
	flagBatch    = flag.Int("batch", 2000, "Size of the fixed training batch")
	flagIters    = flag.Int("iters", 500, "Gradient descent iterations per model")
	flagLRLinear = flag.Float64("lr-linear", 0.005, "Learning rate of the linear regressor")
	flagLRMLP    = flag.Float64("lr-mlp", 0.1, "Learning rate of the MLP")
	flagHidden   = flag.String("hidden", "128", "Comma separated hidden layer widths of the MLP")
	flagSeed     = flag.Int64("seed", 42, "Random seed for batch selection and weight initialization")
	flagGrid     = flag.Int("grid", 20, "Number of test images in the prediction grids")
	flagProgress = flag.Bool("progress", true, "Show a progress bar while training")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	cfg := config{
		DataDir:   *flagDataDir,
		OutDir:    *flagOutDir,
		BatchSize: *flagBatch,
		Iters:     *flagIters,
		LRLinear:  *flagLRLinear,
		LRMLP:     *flagLRMLP,
		Hidden:    must.M1(parseHidden(*flagHidden)),
		Seed:      *flagSeed,
		GridSize:  *flagGrid,
		Progress:  *flagProgress,
	}
	rep, err := run(cfg)
	if err != nil {
		klog.Exitf("Error:\n%+v", err)
	}
	for _, f := range rep.Figures {
		klog.Infof("saved %s", f)
	}
}
