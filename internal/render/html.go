package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"spotchart/internal/model"
)

// HTML renders data as a standalone interactive ECharts page.
func HTML(w io.Writer, data model.ChartData, width, height int) error {
	if data.Empty() {
		return ErrNothingToDraw
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: data.Title,
			Width:     fmt.Sprintf("%dpx", width),
			Height:    fmt.Sprintf("%dpx", height),
		}),
		charts.WithTitleOpts(opts.Title{Title: data.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: axisX}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisY, Min: data.YAxis.Min, Max: data.YAxis.Max}),
	)

	line.SetXAxis(data.Labels)
	for _, ds := range data.Datasets {
		line.AddSeries(ds.Label, lineData(ds.Data),
			charts.WithLineStyleOpts(opts.LineStyle{Color: ds.Color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
		)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

// lineData maps NaN to "-", which ECharts draws as a gap.
func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		if model.IsFinite(v) {
			out[i] = opts.LineData{Value: v}
		} else {
			out[i] = opts.LineData{Value: "-"}
		}
	}
	return out
}
