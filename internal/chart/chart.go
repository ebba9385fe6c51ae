// Package chart renders forecast and trend charts as image files.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

const (
	width  = 10 * vg.Inch
	height = 5 * vg.Inch
)

var (
	historyColor  = color.RGBA{R: 30, G: 80, B: 160, A: 255}
	forecastColor = color.RGBA{R: 200, G: 60, B: 40, A: 255}
	bandColor     = color.RGBA{R: 200, G: 60, B: 40, A: 50}
)

// ForecastPNG draws the observed yearly rates, the forecast and its
// confidence band. The file format follows the extension of path
// (png, svg, pdf, ...).
func ForecastPNG(path string, years []int, rates []float64, points []analysis.ForecastPoint) error {
	if len(years) == 0 && len(points) == 0 {
		return ErrNoData
	}
	if len(years) != len(rates) {
		return fmt.Errorf("years and rates differ in length: %d vs %d", len(years), len(rates))
	}
	p := newPlot("Suicide rate forecast", "Suicides per 100k")

	if len(points) > 0 {
		band := make(plotter.XYs, 0, 2*len(points))
		for _, f := range points {
			band = append(band, plotter.XY{X: float64(f.Year), Y: f.ConfidenceHigh})
		}
		for i := len(points) - 1; i >= 0; i-- {
			band = append(band, plotter.XY{X: float64(points[i].Year), Y: points[i].ConfidenceLow})
		}
		poly, err := plotter.NewPolygon(band)
		if err != nil {
			return fmt.Errorf("confidence band: %w", err)
		}
		poly.Color = bandColor
		poly.LineStyle.Width = 0
		p.Add(poly)
		p.Legend.Add("95% interval", poly)
	}

	if len(years) > 0 {
		hist := make(plotter.XYs, len(years))
		for i, y := range years {
			hist[i] = plotter.XY{X: float64(y), Y: rates[i]}
		}
		line, err := plotter.NewLine(hist)
		if err != nil {
			return fmt.Errorf("history line: %w", err)
		}
		line.Color = historyColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("observed", line)
	}

	if len(points) > 0 {
		fc := make(plotter.XYs, 0, len(points)+1)
		if len(years) > 0 {
			// join the forecast to the last observation
			fc = append(fc, plotter.XY{X: float64(years[len(years)-1]), Y: rates[len(rates)-1]})
		}
		for _, f := range points {
			fc = append(fc, plotter.XY{X: float64(f.Year), Y: f.Predicted})
		}
		line, err := plotter.NewLine(fc)
		if err != nil {
			return fmt.Errorf("forecast line: %w", err)
		}
		line.Color = forecastColor
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(line)
		p.Legend.Add("forecast", line)
	}

	return save(p, path)
}

// TrendsPNG draws the global yearly rate and, when present, one line per region.
func TrendsPNG(path string, trends []analysis.YearTrend) error {
	if len(trends) == 0 {
		return ErrNoData
	}
	p := newPlot("Suicide rate by year", "Suicides per 100k")

	global := make(plotter.XYs, len(trends))
	regions := make(map[string]plotter.XYs)
	for i, t := range trends {
		global[i] = plotter.XY{X: float64(t.Year), Y: t.GlobalRate}
		for name, rate := range t.ByRegion {
			regions[name] = append(regions[name], plotter.XY{X: float64(t.Year), Y: rate})
		}
	}
	line, err := plotter.NewLine(global)
	if err != nil {
		return fmt.Errorf("global line: %w", err)
	}
	line.Color = color.Black
	line.Width = vg.Points(2.5)
	p.Add(line)
	p.Legend.Add("global", line)

	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		l, err := plotter.NewLine(regions[name])
		if err != nil {
			return fmt.Errorf("%s line: %w", name, err)
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i + 1)
		p.Add(l)
		p.Legend.Add(name, l)
	}
	return save(p, path)
}

func newPlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = ylabel
	p.Y.Min = 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
