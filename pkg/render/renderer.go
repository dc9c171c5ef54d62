// Package render turns ChartSpecs into PNG or SVG images using go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"csv-chart-api/pkg/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

var (
	// ErrNothingToRender is returned for the empty spec and for specs without data.
	ErrNothingToRender = errors.New("chart has no data to render")
	// ErrUnsupportedFormat is returned by ParseFormat for anything but png and svg.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrNonNumericValue is returned when a bar chart's y column holds text.
	ErrNonNumericValue = errors.New("bar values must be numeric")
)

// Options controls the output size and format.
type Options struct {
	Format Format
	Width  int
	Height int
}

// ParseFormat accepts "png" (also the default for "") and "svg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (o Options) provider() chart.RendererProvider {
	if o.Format == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 480
	}
	return w, h
}

var (
	seriesColor  = drawing.ColorFromHex("3498db")
	outlierColor = drawing.ColorFromHex("e74c3c")
	background   = chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}}
)

// Render draws spec to w.
func Render(spec models.ChartSpec, opts Options, w io.Writer) error {
	switch spec.Kind {
	case models.PlotHistogram:
		return renderHistogram(spec, opts, w)
	case models.PlotBar:
		return renderBar(spec, opts, w)
	case models.PlotPie:
		return renderPie(spec, opts, w)
	case models.PlotScatter, models.PlotLine:
		return renderXY(spec, opts, w)
	case models.PlotBox:
		return renderBox(spec, opts, w)
	case "":
		return ErrNothingToRender
	}
	return fmt.Errorf("unknown plot kind %q", spec.Kind)
}

func renderHistogram(spec models.ChartSpec, opts Options, w io.Writer) error {
	var bars []chart.Value
	for _, b := range spec.Bins {
		bars = append(bars, chart.Value{Label: shortFloat(b.Lower) + "-" + shortFloat(b.Upper), Value: float64(b.Count)})
	}
	for _, c := range spec.Categories {
		bars = append(bars, chart.Value{Label: c.Label, Value: float64(c.Count)})
	}
	return renderBars(spec.Title, bars, opts, w)
}

func renderBar(spec models.ChartSpec, opts Options, w io.Writer) error {
	bars := make([]chart.Value, 0, len(spec.Points))
	for _, p := range spec.Points {
		y, ok := p.Y.(float64)
		if !ok {
			return fmt.Errorf("%w: %q in column %s", ErrNonNumericValue, label(p.Y), spec.Y)
		}
		bars = append(bars, chart.Value{Label: label(p.X), Value: y})
	}
	return renderBars(spec.Title, bars, opts, w)
}

func renderBars(title string, bars []chart.Value, opts Options, w io.Writer) error {
	if len(bars) == 0 {
		return ErrNothingToRender
	}
	width, height := opts.size()

	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	lo, hi = padRange(lo, hi)

	// 棒がキャンバス幅に収まるよう幅を調整する
	spacing := 10
	barWidth := (width-100)/len(bars) - spacing
	if barWidth < 2 {
		barWidth, spacing = 2, 1
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: background,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       bars,
	}
	return bc.Render(opts.provider(), w)
}

func renderPie(spec models.ChartSpec, opts Options, w io.Writer) error {
	if len(spec.Categories) == 0 {
		return ErrNothingToRender
	}
	width, height := opts.size()
	values := make([]chart.Value, 0, len(spec.Categories))
	for _, c := range spec.Categories {
		values = append(values, chart.Value{Label: fmt.Sprintf("%s (%d)", c.Label, c.Count), Value: float64(c.Count)})
	}
	pc := chart.PieChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: background,
		Values:     values,
	}
	return pc.Render(opts.provider(), w)
}

func renderXY(spec models.ChartSpec, opts Options, w io.Writer) error {
	if len(spec.Points) == 0 {
		return ErrNothingToRender
	}
	xs := make([]interface{}, len(spec.Points))
	ys := make([]interface{}, len(spec.Points))
	for i, p := range spec.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	xVals, xTicks := axisValues(xs)
	yVals, yTicks := axisValues(ys)

	style := chart.Style{StrokeColor: seriesColor, StrokeWidth: 2}
	if spec.Kind == models.PlotScatter {
		style = chart.Style{StrokeColor: drawing.ColorTransparent, DotColor: seriesColor, DotWidth: 4}
	}

	width, height := opts.size()
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: background,
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: rangeOf(xVals), Ticks: xTicks},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: rangeOf(yVals), Ticks: yTicks},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: spec.Y, Style: style, XValues: xVals, YValues: yVals},
		},
	}
	return ch.Render(opts.provider(), w)
}

func renderBox(spec models.ChartSpec, opts Options, w io.Writer) error {
	b := spec.Box
	if b == nil || b.Count == 0 {
		return ErrNothingToRender
	}
	line := chart.Style{StrokeColor: seriesColor, StrokeWidth: 2}
	series := []chart.Series{
		chart.ContinuousSeries{Name: "lower whisker", Style: line, XValues: []float64{1, 1}, YValues: []float64{b.LowerWhisker, b.Q1}},
		chart.ContinuousSeries{Name: "upper whisker", Style: line, XValues: []float64{1, 1}, YValues: []float64{b.Q3, b.UpperWhisker}},
		chart.ContinuousSeries{Name: "box", Style: line, XValues: []float64{0.7, 1.3, 1.3, 0.7, 0.7}, YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}},
		chart.ContinuousSeries{Name: "median", Style: line, XValues: []float64{0.7, 1.3}, YValues: []float64{b.Median, b.Median}},
	}
	if len(b.Outliers) > 0 {
		xs := make([]float64, len(b.Outliers))
		for i := range xs {
			xs[i] = 1
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "outliers",
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent, DotColor: outlierColor, DotWidth: 4},
			XValues: xs,
			YValues: append([]float64(nil), b.Outliers...),
		})
	}

	width, height := opts.size()
	lo, hi := padRange(b.Min, b.Max)
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: background,
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 2},
			Ticks: []chart.Tick{{Value: 0, Label: ""}, {Value: 1, Label: spec.YLabel}, {Value: 2, Label: ""}},
		},
		YAxis:  chart.YAxis{Name: spec.YLabel, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: series,
	}
	return ch.Render(opts.provider(), w)
}

// axisValues maps numeric values through unchanged; text values become ordinal
// positions labelled with ticks, in order of first appearance.
func axisValues(vals []interface{}) ([]float64, []chart.Tick) {
	out := make([]float64, len(vals))
	numeric := true
	for i, v := range vals {
		f, ok := v.(float64)
		if !ok {
			numeric = false
			break
		}
		out[i] = f
	}
	if numeric {
		return out, nil
	}

	index := make(map[string]int)
	var ticks []chart.Tick
	for i, v := range vals {
		l := label(v)
		pos, ok := index[l]
		if !ok {
			pos = len(ticks)
			index[l] = pos
			ticks = append(ticks, chart.Tick{Value: float64(pos), Label: l})
		}
		out[i] = float64(pos)
	}
	return out, ticks
}

func rangeOf(vals []float64) *chart.ContinuousRange {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	lo, hi = padRange(lo, hi)
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// padRange widens a degenerate range and adds a 5% margin.
func padRange(lo, hi float64) (float64, float64) {
	if lo == hi {
		return lo - 1, hi + 1
	}
	margin := (hi - lo) * 0.05
	return lo - margin, hi + margin
}

func label(v interface{}) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func shortFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64)
}
