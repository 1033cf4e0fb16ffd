package main

import (
	"flag"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/hai-mn/ai-science-training-series/pkg/housing"
	"github.com/hai-mn/ai-science-training-series/pkg/viz"
)

//
// ---------------------- CLI FLAGS ----------------------
//
// --input         : Path to the real-estate CSV (required)
// --output        : Path of the slimmed CSV. Default = slimmed_realestate_data.csv
// --min-condition : Keep rows whose condition is strictly greater than this. Default = 5
// --condition-col : Condition rating column. Default = OverallCond
// --price-col     : Sale price column. Default = SalePrice
// --area-col      : Living area column. Default = GrLivArea
// --fit           : Also fit price ~ area on the slimmed rows
// --plot          : With --fit, save the scatter and fitted line to this file (.png, .svg, .pdf)
//
// Example:
//   go run ./cmd/examples/House_Filter --input realestate.csv --fit --plot price_vs_area.png
//
// -------------------------------------------------------
//

var (
	flagInput        = flag.String("input", "", "Path to the real-estate CSV file")
	flagOutput       = flag.String("output", "slimmed_realestate_data.csv", "Path of the slimmed CSV")
	flagMinCondition = flag.Float64("min-condition", housing.DefaultMinCondition, "Keep rows with condition strictly greater than this")
	flagConditionCol = flag.String("condition-col", housing.DefaultColumns.Condition, "Condition rating column")
	flagPriceCol     = flag.String("price-col", housing.DefaultColumns.Price, "Sale price column")
	flagAreaCol      = flag.String("area-col", housing.DefaultColumns.Area, "Living area column")
	flagFit          = flag.Bool("fit", false, "Fit price ~ area on the slimmed rows")
	flagPlot         = flag.String("plot", "", "With --fit, save the regression plot to this file")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagInput == "" {
		klog.Exitf("--input is required")
	}
	cols := housing.Columns{Condition: *flagConditionCol, Price: *flagPriceCol, Area: *flagAreaCol}

	table := must.M1(housing.LoadFile(*flagInput, cols))
	klog.Infof("loaded %s rows from %s", humanize.Comma(int64(table.Rows())), *flagInput)

	slim := must.M1(table.Slim(*flagMinCondition))
	klog.Infof("kept %s of %s rows with %s > %g", humanize.Comma(int64(slim.Rows())),
		humanize.Comma(int64(table.Rows())), cols.Condition, *flagMinCondition)
	if slim.Rows() == 0 {
		klog.Warningf("no rows passed the condition filter; %s will only hold the header", *flagOutput)
	}
	must.M(slim.WriteFile(*flagOutput))
	fmt.Printf("Saved slimmed data to %s\n", *flagOutput)

	if slim.Rows() > 0 {
		fmt.Print(must.M1(housing.Summarize(slim)))
	}

	if !*flagFit {
		return
	}
	fit, err := housing.FitPriceModel(slim, housing.DefaultFitConfig)
	if err != nil {
		klog.Exitf("fitting price model: %+v", err)
	}
	fmt.Printf("%s ≈ %.2f * %s + %.2f\n", cols.Price, fit.Slope, cols.Area, fit.Intercept)
	fmt.Printf("r=%.4f  train R²=%.4f  test R²=%.4f  test RMSE=%s  test MAE=%s (%d train / %d test rows)\n",
		fit.Correlation, fit.R2Train, fit.R2Test, humanize.Commaf(math.Round(fit.RMSETest)),
		humanize.Commaf(math.Round(fit.MAETest)), fit.TrainRows, fit.TestRows)

	if *flagPlot != "" {
		must.M(viz.PlotRegression(*flagPlot, cols.Area, cols.Price, fit.Area, fit.Price, fit.Slope, fit.Intercept))
		fmt.Printf("Saved regression plot to %s\n", *flagPlot)
	}
}
