package render

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"spotchart/internal/model"
)

// labelEvery is the x-axis tick spacing in slots (two hours).
const labelEvery = 8

// gapSeries is a line series that breaks at NaN entries instead of drawing
// through them.
type gapSeries struct {
	chart.ContinuousSeries
}

func (s gapSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := s.Style.InheritFrom(defaults)
	for _, seg := range s.segments() {
		chart.Draw.LineSeries(r, canvasBox, xrange, yrange, style, seg)
	}
}

func (s gapSeries) segments() []chart.ContinuousSeries {
	var out []chart.ContinuousSeries
	var cur chart.ContinuousSeries
	for i, y := range s.YValues {
		if !model.IsFinite(y) {
			if len(cur.XValues) > 0 {
				out = append(out, cur)
				cur = chart.ContinuousSeries{}
			}
			continue
		}
		cur.XValues = append(cur.XValues, s.XValues[i])
		cur.YValues = append(cur.YValues, y)
	}
	if len(cur.XValues) > 0 {
		out = append(out, cur)
	}
	return out
}

// PNG renders data as a line chart image.
func PNG(w io.Writer, data model.ChartData, width, height int) error {
	if data.Empty() {
		return ErrNothingToDraw
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}

	n := len(data.Labels)
	xs := make([]float64, n)
	var ticks []chart.Tick
	for i := range xs {
		xs[i] = float64(i)
		if i%labelEvery == 0 || i == n-1 {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: data.Labels[i]})
		}
	}

	series := make([]chart.Series, 0, len(data.Datasets))
	for _, ds := range data.Datasets {
		col, err := ParseColor(ds.Color)
		if err != nil {
			col = chart.ColorBlue
		}
		series = append(series, gapSeries{chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: fit(ds.Data, n),
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
			},
		}})
	}

	xMax := float64(n - 1)
	if xMax < 1 {
		xMax = 1
	}
	ch := chart.Chart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: axisX, Ticks: ticks, Range: &chart.ContinuousRange{Min: 0, Max: xMax}},
		YAxis:      chart.YAxis{Name: axisY, Range: &chart.ContinuousRange{Min: data.YAxis.Min, Max: data.YAxis.Max}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering png: %w", err)
	}
	return nil
}

// fit copies values into a slice of length n, NaN-padded.
func fit(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(values) {
			out[i] = values[i]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
