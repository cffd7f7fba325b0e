package export

import (
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/threshold"
	"github.com/penwyp/go-hwlog-viewer/internal/core/timestamp"
)

// Document is everything an exporter needs to write one chart.
type Document struct {
	Result   model.RenderResult
	Locale   string
	Location *time.Location
}

// Row is one rendered point with its display strings and warning flags.
type Row struct {
	TimestampMs int64       `json:"t"`
	Time        string      `json:"time"`
	Value       model.Value `json:"v"`
	Formatted   string      `json:"formatted"`
	TimeValid   bool        `json:"timeValid"`
	BelowMin    bool        `json:"belowMin"`
	AboveMax    bool        `json:"aboveMax"`
}

func (d Document) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

func (d Document) values() *label.Formatter {
	return label.NewFormatter(d.Locale)
}

// Rows converts points using the document's locale, zone and warn config.
func (d Document) Rows(points []model.SamplePoint) []Row {
	f := d.values()
	unit := d.Result.Label.Unit
	loc := d.location()

	rows := make([]Row, len(points))
	for i, p := range points {
		below, above := threshold.Flags(p.Value, d.Result.Warn)
		rows[i] = Row{
			TimestampMs: p.TimestampMs,
			Time:        timestamp.FormatDateTimeForTooltip(p.TimestampMs, loc),
			Value:       p.Value,
			Formatted:   f.FormatReading(p.Value, unit),
			TimeValid:   p.TimeValid,
			BelowMin:    below,
			AboveMax:    above,
		}
	}
	return rows
}

func (d Document) title() string {
	if d.Result.Label.Raw != "" {
		return d.Result.Label.Raw
	}
	return d.Result.Label.BaseName
}

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
