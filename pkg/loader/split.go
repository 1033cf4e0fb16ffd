package loader

import (
	"math/rand"

	"github.com/pkg/errors"
)

// TrainTestSplit shuffles (X, Y) with rng and holds out floor(n*testRatio) rows for testing.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, rng *rand.Rand) (XTrain, XTest [][]float64, YTrain, YTest []float64, err error) {
	if len(X) != len(Y) {
		err = errors.Errorf("%d feature rows but %d targets", len(X), len(Y))
		return
	}
	if testRatio < 0 || testRatio >= 1 {
		err = errors.Errorf("test ratio must be in [0, 1), got %g", testRatio)
		return
	}
	n := len(X)
	indices := rng.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			YTest = append(YTest, Y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			YTrain = append(YTrain, Y[idx])
		}
	}
	return
}

// ShuffleData shuffles X and Y in unison.
func ShuffleData(X [][]float64, Y []float64, rng *rand.Rand) ([][]float64, []float64) {
	n := len(X)
	XShuf := make([][]float64, n)
	YShuf := make([]float64, n)
	for i, idx := range rng.Perm(n) {
		XShuf[i] = X[idx]
		YShuf[i] = Y[idx]
	}
	return XShuf, YShuf
}
