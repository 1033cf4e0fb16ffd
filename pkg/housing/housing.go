// Package housing slims a real-estate sales table down to sale price and
// living area for the rows in better than average condition.
package housing

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// DefaultMinCondition is the condition rating a row must exceed to be kept.
const DefaultMinCondition = 5

// Columns names the three columns the workflow reads.
type Columns struct {
	Condition string
	Price     string
	Area      string
}

// DefaultColumns matches the Kaggle "House Prices" headers. The Ames source
// file spells them "Overall Cond", "SalePrice" and "Gr Liv Area".
var DefaultColumns = Columns{
	Condition: "OverallCond",
	Price:     "SalePrice",
	Area:      "GrLivArea",
}

func (c Columns) Validate() error {
	if c.Condition == "" || c.Price == "" || c.Area == "" {
		return errors.Errorf("condition, price and area column names are all required, got %+v", c)
	}
	if c.Price == c.Area {
		return errors.Errorf("price and area must be different columns, both are %q", c.Price)
	}
	return nil
}

// Table is a loaded or slimmed real-estate table.
type Table struct {
	df    dataframe.DataFrame
	names []string
	cols  Columns
}

// Load reads a headed CSV. The condition column is parsed as float so that
// missing or non-numeric ratings ("NA", "") become NaN and never pass the filter.
// Price and area are kept as the source text, so Write reproduces them verbatim;
// Column still parses them as numbers.
func Load(r io.Reader, cols Columns) (*Table, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.NaNValues(nil),
		dataframe.WithTypes(map[string]series.Type{
			cols.Condition: series.Float,
			cols.Price:     series.String,
			cols.Area:      series.String,
		}))
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "reading real-estate CSV")
	}
	names := df.Names()
	for _, want := range []string{cols.Condition, cols.Price, cols.Area} {
		if !slices.Contains(names, want) {
			return nil, errors.Errorf("column %q not found; available columns: %v", want, names)
		}
	}
	return &Table{df: df, names: names, cols: cols}, nil
}

func LoadFile(path string, cols Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.Open")
	}
	defer f.Close()
	t, err := Load(f, cols)
	return t, errors.WithMessage(err, path)
}

// Slim keeps the rows whose condition is strictly greater than minCondition
// and the columns [Price, Area], in that order. Row order is preserved.
func (t *Table) Slim(minCondition float64) (*Table, error) {
	if math.IsNaN(minCondition) {
		return nil, errors.New("minimum condition must be a number")
	}
	cols := t.cols
	if !slices.Contains(t.names, cols.Condition) {
		return nil, errors.Errorf("table has no %q column to filter on", cols.Condition)
	}
	selected := []string{cols.Price, cols.Area}

	kept := 0
	for _, v := range t.df.Col(cols.Condition).Float() {
		if v > minCondition {
			kept++
		}
	}
	if kept == 0 {
		return &Table{names: selected, cols: cols}, nil
	}

	df := t.df.Filter(dataframe.F{Colname: cols.Condition, Comparator: series.Greater, Comparando: minCondition}).
		Select(selected)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "filtering real-estate table")
	}
	return &Table{df: df, names: selected, cols: cols}, nil
}

// Rows is the number of data rows.
func (t *Table) Rows() int {
	if t.df.Ncol() == 0 {
		return 0
	}
	return t.df.Nrow()
}

// Columns returns the column names the table was loaded with.
func (t *Table) Columns() Columns { return t.cols }

// Names lists the column headers in order.
func (t *Table) Names() []string { return t.names }

// Column returns the named column as floats; non-numeric or missing values are NaN.
func (t *Table) Column(name string) ([]float64, error) {
	if !slices.Contains(t.names, name) {
		return nil, errors.Errorf("column %q not in table %v", name, t.names)
	}
	if t.Rows() == 0 {
		return nil, nil
	}
	return t.df.Col(name).Float(), nil
}

// Write writes the table as a headed CSV. An empty table writes only its header.
func (t *Table) Write(w io.Writer) error {
	if t.Rows() == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.names); err != nil {
			return errors.Wrap(err, "writing CSV header")
		}
		cw.Flush()
		return errors.Wrap(cw.Error(), "writing CSV header")
	}
	return errors.Wrap(t.df.WriteCSV(w), "writing CSV")
}

func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "os.Create")
	}
	if err := t.Write(f); err != nil {
		_ = f.Close()
		return errors.WithMessage(err, path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
