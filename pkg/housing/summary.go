package housing

import (
	"fmt"
	"math"
	"strings"

	"github.com/hai-mn/ai-science-training-series/pkg/stats"
)

// ColumnSummary describes the non-missing values of one column.
type ColumnSummary struct {
	Name    string
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Median  float64
	Max     float64
}

type Summary []ColumnSummary

// Summarize describes every column of t. NaN values are counted as missing.
func Summarize(t *Table) (Summary, error) {
	var out Summary
	for _, name := range t.Names() {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		present := dropNaN(values)
		cs := ColumnSummary{Name: name, Count: len(present), Missing: len(values) - len(present)}
		if len(present) > 0 {
			cs.Mean = stats.Mean(present)
			cs.Std = stats.Std(present)
			cs.Min, cs.Max = stats.MinMax(present)
			cs.Median = stats.Median(present)
		}
		out = append(out, cs)
	}
	return out, nil
}

func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-15s%10s%10s%15s%15s%15s%15s%15s\n", "column", "count", "missing", "mean", "std", "min", "median", "max")
	for _, c := range s {
		fmt.Fprintf(&b, "%-15s%10d%10d%15.2f%15.2f%15.2f%15.2f%15.2f\n", c.Name, c.Count, c.Missing, c.Mean, c.Std, c.Min, c.Median, c.Max)
	}
	return b.String()
}
