// Package report renders evaluation plots for a fitted pipeline.
package report

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// Default canvas size.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// residualBins is the histogram bin count of ResidualPlot.
const residualBins = 20

func checkPair(op string, actual, predicted mat.Vector) error {
	if actual.Len() != predicted.Len() {
		return errors.NewDimensionError(op, actual.Len(), predicted.Len(), 0)
	}
	if actual.Len() == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	return nil
}

// ParityPlot scatters predicted against actual prices with the y = x line.
// Points on the line are exact predictions.
func ParityPlot(actual, predicted mat.Vector, title string) (*plot.Plot, error) {
	if err := checkPair("report.ParityPlot", actual, predicted); err != nil {
		return nil, err
	}

	n := actual.Len()
	pts := make(plotter.XYs, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		pts[i].X = actual.AtVec(i)
		pts[i].Y = predicted.AtVec(i)
		lo = math.Min(lo, math.Min(pts[i].X, pts[i].Y))
		hi = math.Max(hi, math.Max(pts[i].X, pts[i].Y))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Actual price"
	p.Y.Label.Text = "Predicted price"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "parity scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(2)

	ideal, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "parity line")
	}
	ideal.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(scatter, ideal)
	p.Legend.Add("predictions", scatter)
	p.Legend.Add("y = x", ideal)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// ResidualPlot is a histogram of predicted - actual.
func ResidualPlot(actual, predicted mat.Vector, title string) (*plot.Plot, error) {
	if err := checkPair("report.ResidualPlot", actual, predicted); err != nil {
		return nil, err
	}

	n := actual.Len()
	res := make([]float64, n)
	for i := range res {
		res[i] = predicted.AtVec(i) - actual.AtVec(i)
	}

	bins := residualBins
	if n < bins {
		bins = n
	}
	// 残差が全て同じ値だと幅0のビンになる
	if floats.Max(res) == floats.Min(res) {
		bins = 1
	}

	hist, err := plotter.NewHist(plotter.Values(res), bins)
	if err != nil {
		return nil, errors.Wrap(err, "residual histogram")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Residual (predicted - actual)"
	p.Y.Label.Text = "Count"
	p.Add(hist)
	return p, nil
}

// Save writes p to path. The image format follows the file extension
// (png, svg, pdf, eps, jpg, tif).
func Save(p *plot.Plot, path string) error {
	if filepath.Ext(path) == "" {
		return errors.NewValidationError("plot_path", "needs a file extension", path)
	}
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// Write renders p in format to w.
func Write(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, strings.ToLower(format))
	if err != nil {
		return errors.Wrapf(err, "unsupported plot format %q", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write plot")
	}
	return nil
}

// SaveEvaluation writes the parity plot to path and, next to it, the residual
// histogram with a "_residuals" suffix. It returns the written paths.
func SaveEvaluation(actual, predicted mat.Vector, path string) ([]string, error) {
	parity, err := ParityPlot(actual, predicted, fmt.Sprintf("Held-out predictions (n=%d)", actual.Len()))
	if err != nil {
		return nil, err
	}
	if err := Save(parity, path); err != nil {
		return nil, err
	}

	residuals, err := ResidualPlot(actual, predicted, "Held-out residuals")
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(path)
	resPath := strings.TrimSuffix(path, ext) + "_residuals" + ext
	if err := Save(residuals, resPath); err != nil {
		return nil, err
	}
	return []string{path, resPath}, nil
}
