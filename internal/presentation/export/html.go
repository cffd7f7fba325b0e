package export

import (
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/presentation/formatter"
)

const (
	colorMain  = "#5470c6"
	colorBelow = "#3ba272"
	colorAbove = "#ee6666"
)

// HTMLExporter writes a standalone interactive echarts page.
type HTMLExporter struct{}

func (HTMLExporter) Name() string { return "html" }
func (HTMLExporter) Binary() bool { return false }

func (HTMLExporter) Export(w io.Writer, doc Document) error {
	r := doc.Result

	yType := "value"
	if r.Axis.Scale == model.ScaleLog {
		yType = "log"
	}

	var notes []string
	for _, n := range r.Notices {
		notes = append(notes, formatter.NoticeText(n))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: doc.title(),
			Width:     "100%",
			Height:    "520px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    doc.title(),
			Subtitle: strings.Join(notes, " | "),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(r.Warn.Enabled),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: r.Label.UnitText(),
			Type: yType,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
	)

	data := make([]opts.LineData, len(r.Series.Main))
	for i, p := range r.Series.Main {
		var v interface{}
		if x, ok := p.Value.Get(); ok {
			v = x
		}
		data[i] = opts.LineData{Value: []interface{}{p.TimestampMs, v}}
	}

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:       opts.Bool(r.Hints.Smooth),
			ConnectNulls: opts.Bool(r.Hints.ConnectNulls),
			ShowSymbol:   opts.Bool(false),
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorMain}),
	}
	if r.Hints.ShowArea {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
			Opacity: 0.2,
		}))
	}
	if r.Warn.Enabled {
		if r.Warn.Min != nil {
			seriesOpts = append(seriesOpts, charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
				Name: "min", YAxis: *r.Warn.Min,
			}))
		}
		if r.Warn.Max != nil {
			seriesOpts = append(seriesOpts, charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
				Name: "max", YAxis: *r.Warn.Max,
			}))
		}
	}
	line.AddSeries(r.Label.BaseName, data, seriesOpts...)

	if len(r.Series.BelowMin) > 0 || len(r.Series.AboveMax) > 0 {
		overlay := charts.NewScatter()
		overlay.AddSeries("Below min", scatterData(r.Series.BelowMin),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorBelow}))
		overlay.AddSeries("Above max", scatterData(r.Series.AboveMax),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorAbove}))
		line.Overlap(overlay)
	}

	return line.Render(w)
}

func scatterData(points []model.SamplePoint) []opts.ScatterData {
	out := make([]opts.ScatterData, 0, len(points))
	for _, p := range points {
		if v, ok := p.Value.Get(); ok {
			out = append(out, opts.ScatterData{Value: []interface{}{p.TimestampMs, v}})
		}
	}
	return out
}
