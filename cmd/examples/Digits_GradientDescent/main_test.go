package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hai-mn/ai-science-training-series/pkg/data"
)

// writeDigits writes an MNIST-layout split of 4x4 images where class k lights pixel k over faint noise.
func writeDigits(t *testing.T, dir, imagesName, labelsName string, n int, rng *rand.Rand) {
	t.Helper()
	im := &data.Images{N: n, Height: 4, Width: 4, Pixels: make([]byte, n*16)}
	labels := make([]uint8, n)
	for i := 0; i < n; i++ {
		labels[i] = uint8(i % numClasses)
		px := im.At(i)
		for j := range px {
			px[j] = byte(rng.Intn(20))
		}
		px[labels[i]] = 255
	}

	f, err := os.Create(filepath.Join(dir, imagesName))
	require.NoError(t, err)
	require.NoError(t, data.WriteImages(f, im))
	require.NoError(t, f.Close())

	f, err = os.Create(filepath.Join(dir, labelsName))
	require.NoError(t, err)
	require.NoError(t, data.WriteLabels(f, labels))
	require.NoError(t, f.Close())
}

func testConfig(t *testing.T) config {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(1))
	writeDigits(t, dir, "train-images-idx3-ubyte", "train-labels-idx1-ubyte", 300, rng)
	writeDigits(t, dir, "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte", 60, rng)
	return config{
		DataDir:   dir,
		OutDir:    filepath.Join(dir, "figures"),
		BatchSize: 200,
		Iters:     300,
		LRLinear:  0.5,
		LRMLP:     0.5,
		Hidden:    []int{16},
		Seed:      7,
		GridSize:  10,
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	rep, err := run(cfg)
	require.NoError(t, err)

	for _, r := range []result{rep.Linear, rep.MLP} {
		require.Len(t, r.History.Loss, cfg.Iters, r.Name)
		assert.Less(t, r.History.Final(), r.History.Loss[0], "%s loss should go down", r.Name)
		assert.GreaterOrEqual(t, r.TestAccuracy, 0.0)
		assert.LessOrEqual(t, r.TestAccuracy, 1.0)
	}
	total := 0
	for _, row := range rep.MLP.Confusion {
		for _, c := range row {
			total += c
		}
	}
	assert.Equal(t, 60, total, "every test image lands in the confusion matrix")
	assert.Contains(t, formatConfusion(rep.MLP.Confusion), "true\\pred")

	assert.Greater(t, rep.Linear.BatchAccuracy, 0.9)
	assert.Greater(t, rep.Linear.TestAccuracy, 0.9)

	assert.Equal(t, []string{
		filepath.Join(cfg.OutDir, "loss.png"),
		filepath.Join(cfg.OutDir, "predictions_linear.png"),
		filepath.Join(cfg.OutDir, "predictions_mlp.png"),
	}, rep.Figures)
	for _, f := range rep.Figures {
		assert.FileExists(t, f)
	}
}

func TestRunWithoutFigures(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutDir = ""
	cfg.Iters = 5
	rep, err := run(cfg)
	require.NoError(t, err)
	assert.Empty(t, rep.Figures)
}

func TestRunErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 1000
	_, err := run(cfg)
	assert.Error(t, err, "batch larger than the training split")

	cfg = testConfig(t)
	cfg.DataDir = t.TempDir()
	_, err = run(cfg)
	assert.Error(t, err, "missing files")

	cfg = testConfig(t)
	cfg.LRLinear = 0
	_, err = run(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Hidden = []int{0}
	_, err = run(cfg)
	assert.Error(t, err)
}

func TestParseHidden(t *testing.T) {
	h, err := parseHidden("128, 64")
	require.NoError(t, err)
	assert.Equal(t, []int{128, 64}, h)

	h, err = parseHidden("")
	require.NoError(t, err)
	assert.Empty(t, h)

	_, err = parseHidden("12,x")
	assert.Error(t, err)
}
