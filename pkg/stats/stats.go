package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice; 0 when empty.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Variance is the population variance (divides by n).
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(x, nil)
	return v
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return floats.Min(x), floats.Max(x)
}

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 { return Percentile(x, 50) }

// Percentile returns the p-th percentile (0 <= p <= 100), interpolating
// linearly between closest ranks. The input is not modified.
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	if lower+1 >= n {
		return cp[lower]
	}
	weight := rank - float64(lower)
	return cp[lower]*(1-weight) + cp[lower+1]*weight
}

// Correlation is the Pearson correlation coefficient; 0 for mismatched, empty or constant input.
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	if Std(x) == 0 || Std(y) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}
