// Package viz draws the figures of the training walkthroughs with gonum/plot.
// The output format follows the file extension (.png, .svg, .pdf, ...).
package viz

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/hai-mn/ai-science-training-series/pkg/data"
	"github.com/hai-mn/ai-science-training-series/pkg/stats"
)

var (
	dataColor  = color.RGBA{B: 255, A: 255, R: 50, G: 50}
	fitColor   = color.RGBA{R: 255, A: 255}
	wrongColor = color.RGBA{R: 200, A: 255}
)

// Series is one named loss curve, indexed by iteration.
type Series struct {
	Name   string
	Values []float64
}

// PlotLoss draws every series as loss against iteration.
func PlotLoss(path, title string, series ...Series) error {
	if len(series) == 0 {
		return errors.New("no loss series to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "loss"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Values) == 0 {
			return errors.Errorf("loss series %q is empty", s.Name)
		}
		pts := make(plotter.XYs, len(s.Values))
		for it, v := range s.Values {
			pts[it].X = float64(it)
			pts[it].Y = v
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "loss series %q", s.Name)
		}
		l.Color = plotutil.Color(i)
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	p.Legend.Top = true

	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "saving %s", path)
}

// PlotRegression draws the (x, y) points and the line y = slope·x + intercept across their x range.
func PlotRegression(path, xLabel, yLabel string, x, y []float64, slope, intercept float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return errors.Errorf("need matching non-empty x and y, got %d and %d values", len(x), len(y))
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", yLabel, xLabel)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "scatter")
	}
	s.Color = dataColor
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s)

	lo, hi := stats.MinMax(x)
	l, err := plotter.NewLine(plotter.XYs{
		{X: lo, Y: slope*lo + intercept},
		{X: hi, Y: slope*hi + intercept},
	})
	if err != nil {
		return errors.Wrap(err, "fit line")
	}
	l.Color = fitColor
	l.LineStyle.Width = vg.Points(2)
	p.Add(l)
	p.Legend.Add("fit", l)

	return errors.Wrapf(p.Save(5*vg.Inch, 4*vg.Inch, path), "saving %s", path)
}

// PlotPredictions tiles images in a grid of cols columns, each titled with its
// true and predicted label. Mispredictions get a red title.
func PlotPredictions(path string, images *data.Images, labels, preds []int, cols int) error {
	n := images.N
	if n == 0 {
		return errors.New("no images to plot")
	}
	if len(labels) != n || len(preds) != n {
		return errors.Errorf("%d images, %d labels and %d predictions", n, len(labels), len(preds))
	}
	if cols <= 0 {
		return errors.Errorf("columns must be positive, got %d", cols)
	}
	cols = min(cols, n)
	rows := (n + cols - 1) / cols

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
		for c := range plots[r] {
			p := plot.New()
			p.HideAxes()
			plots[r][c] = p
			i := r*cols + c
			if i >= n {
				continue
			}
			p.Title.Text = fmt.Sprintf("%d / %d", labels[i], preds[i])
			if labels[i] != preds[i] {
				p.Title.TextStyle.Color = wrongColor
			}
			p.Add(plotter.NewImage(images.Gray(i), 0, 0, float64(images.Width), float64(images.Height)))
		}
	}

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	cell := 1.25 * vg.Inch
	canvas, err := draw.NewFormattedCanvas(vg.Length(cols)*cell, vg.Length(rows)*cell, format)
	if err != nil {
		return errors.Wrapf(err, "canvas for %s", path)
	}
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Millimeter, PadBottom: vg.Millimeter,
		PadLeft: vg.Millimeter, PadRight: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, draw.New(canvas))
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "os.Create")
	}
	if _, err := canvas.WriteTo(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
