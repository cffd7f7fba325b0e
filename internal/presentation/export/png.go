package export

import (
	"io"
	"math"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/timestamp"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	pngWidth  = 1280
	pngHeight = 540
)

// PNGExporter renders a static chart. Smoothing is not available here; gaps
// and the log scale are.
type PNGExporter struct{}

func (PNGExporter) Name() string { return "png" }
func (PNGExporter) Binary() bool { return true }

func (PNGExporter) Export(w io.Writer, doc Document) error {
	r := doc.Result
	logScale := r.Axis.Scale == model.ScaleLog
	loc := doc.location()
	values := doc.values()

	// Log scale is drawn by plotting log10 of each value and labelling the
	// ticks with the original magnitude.
	project := func(v float64) float64 {
		if logScale {
			return math.Log10(v)
		}
		return v
	}

	mainColor := drawing.ColorFromHex(colorMain[1:])
	lineStyle := chart.Style{
		StrokeColor: mainColor,
		StrokeWidth: 1.5,
	}
	if r.Hints.ShowArea {
		lineStyle.FillColor = mainColor.WithAlpha(50)
	}

	var series []chart.Series
	for _, run := range splitRuns(r.Series.Main, r.Hints.ConnectNulls) {
		ts := chart.TimeSeries{Name: r.Label.BaseName, Style: lineStyle}
		for _, p := range run {
			ts.XValues = append(ts.XValues, time.UnixMilli(p.TimestampMs))
			ts.YValues = append(ts.YValues, project(p.Value.V))
		}
		if len(run) == 1 {
			ts.Style.DotWidth = 2
			ts.Style.DotColor = mainColor
		}
		series = append(series, ts)
	}

	series = appendOverlay(series, "Below min", r.Series.BelowMin, colorBelow, project)
	series = appendOverlay(series, "Above max", r.Series.AboveMax, colorAbove, project)

	start, end := time.UnixMilli(r.Series.Meta.Span.StartMs), time.UnixMilli(r.Series.Meta.Span.EndMs)
	if !end.After(start) {
		end = start.Add(time.Second)
	}

	lo, hi, ok := yBounds(r, project)
	if !ok {
		lo, hi = 0, 1
	}
	if r.Warn.Enabled {
		for _, b := range []*float64{r.Warn.Min, r.Warn.Max} {
			if b == nil || (logScale && *b <= 0) {
				continue
			}
			y := project(*b)
			lo, hi = math.Min(lo, y), math.Max(hi, y)
			series = append(series, chart.TimeSeries{
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("999999"),
					StrokeWidth:     1,
					StrokeDashArray: []float64{5, 5},
				},
				XValues: []time.Time{start, end},
				YValues: []float64{y, y},
			})
		}
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	lo, hi = lo-pad, hi+pad

	spanMs := r.Series.Meta.Span.DurationMs()
	ch := chart.Chart{
		Title:      doc.title(),
		Width:      pngWidth,
		Height:     pngHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{
				Min: float64(start.UnixNano()),
				Max: float64(end.UnixNano()),
			},
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				return timestamp.FormatTimeTick(int64(f)/int64(time.Millisecond), spanMs, loc)
			},
		},
		YAxis: chart.YAxis{
			Name:  r.Label.UnitText(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				if logScale {
					f = math.Pow(10, f)
				}
				return values.FormatValue(f, r.Label.Unit)
			},
		},
		Series: series,
	}

	// go-chart refuses to render without at least one series.
	if len(ch.Series) == 0 {
		ch.Series = []chart.Series{chart.TimeSeries{
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			XValues: []time.Time{start, end},
			YValues: []float64{lo, lo},
		}}
	}

	return ch.Render(chart.PNG, w)
}

// splitRuns breaks points into drawable runs of present values. With
// connectNulls the missing points are dropped and everything is one run.
func splitRuns(points []model.SamplePoint, connectNulls bool) [][]model.SamplePoint {
	var (
		runs    [][]model.SamplePoint
		current []model.SamplePoint
	)
	for _, p := range points {
		if !p.Value.Valid {
			if !connectNulls && len(current) > 0 {
				runs = append(runs, current)
				current = nil
			}
			continue
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

func appendOverlay(series []chart.Series, name string, points []model.SamplePoint, hex string, project func(float64) float64) []chart.Series {
	if len(points) == 0 {
		return series
	}
	col := drawing.ColorFromHex(hex[1:])
	ts := chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeWidth: 0,
			StrokeColor: drawing.ColorTransparent,
			DotWidth:    3,
			DotColor:    col,
		},
	}
	for _, p := range points {
		ts.XValues = append(ts.XValues, time.UnixMilli(p.TimestampMs))
		ts.YValues = append(ts.YValues, project(p.Value.V))
	}
	return append(series, ts)
}

func yBounds(r model.RenderResult, project func(float64) float64) (lo, hi float64, ok bool) {
	if !r.Series.Meta.Range.Valid {
		return 0, 0, false
	}
	return project(r.Series.Meta.Range.Min), project(r.Series.Meta.Range.Max), true
}
