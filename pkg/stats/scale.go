package stats

import (
	"github.com/pkg/errors"
)

// StandardScaler shifts every column to zero mean and scales it to unit variance.
// Constant columns keep a scale of 1.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	fit  bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("cannot fit a scaler on zero rows")
	}
	c := len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	col := make([]float64, len(X))
	for j := 0; j < c; j++ {
		for i, row := range X {
			if len(row) != c {
				return errors.Errorf("row %d has %d columns, want %d", i, len(row), c)
			}
			col[i] = row[j]
		}
		s.Mean[j] = Mean(col)
		s.Std[j] = Std(col)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fit = true
	return nil
}

// Transform returns a standardized copy of X. It is the identity before Fit.
// Rows must have the width the scaler was fitted on.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.fit {
		return X, nil
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.Mean) {
			return nil, errors.Errorf("row %d has %d columns, scaler was fitted on %d", i, len(row), len(s.Mean))
		}
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = r
	}
	return out, nil
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Unscale maps a coefficient learned on standardized column j, together with
// the model bias, back into the original units: y = w'x + b'.
func (s *StandardScaler) Unscale(j int, w, b float64) (float64, float64) {
	return w / s.Std[j], b - w*s.Mean[j]/s.Std[j]
}
