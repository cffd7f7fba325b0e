package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/timestamp"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

// SummaryFormatter writes a plain text report of one render result.
type SummaryFormatter struct {
	w      io.Writer
	values *label.Formatter
	loc    *time.Location
}

func NewSummaryFormatter(w io.Writer, values *label.Formatter, loc *time.Location) *SummaryFormatter {
	return &SummaryFormatter{w: w, values: values, loc: loc}
}

func (f *SummaryFormatter) Format(result model.RenderResult) error {
	meta := result.Series.Meta
	unit := result.Label.Unit

	var b strings.Builder
	b.WriteString(util.Separator(60) + "\n")
	b.WriteString(result.Label.Raw + "\n")
	b.WriteString(util.Separator(60) + "\n\n")

	line := func(name, value string) {
		fmt.Fprintf(&b, "%-16s %s\n", name+":", value)
	}

	line("Sensor", result.Label.BaseName)
	line("Unit", orDash(result.Label.UnitText()))
	line("Points", fmt.Sprintf("%s source, %s rendered",
		util.FormatCount(meta.SourcePointCount), util.FormatCount(len(result.Series.Main))))
	line("Valid", util.FormatCount(meta.ValidCount))
	line("Missing", util.FormatCount(meta.MissingCount))
	line("Invalid time", util.FormatCount(meta.InvalidTimeCount))
	line("Non-monotonic", util.FormatCount(meta.NonMonotonicCount))

	if meta.Range.Valid {
		line("Min", f.values.FormatValueWithUnit(meta.Range.Min, unit))
		line("Max", f.values.FormatValueWithUnit(meta.Range.Max, unit))
	} else {
		line("Range", label.NoValue)
	}

	if meta.SourcePointCount > 0 {
		span := meta.Span.DurationMs()
		line("From", timestamp.FormatDateTimeForTooltip(meta.Span.StartMs, f.loc))
		line("To", timestamp.FormatDateTimeForTooltip(meta.Span.EndMs, f.loc))
		line("Duration", util.FormatDuration(time.Duration(span)*time.Millisecond))
		line("Ticks", fmt.Sprintf("%s … %s",
			timestamp.FormatTimeTick(meta.Span.StartMs, span, f.loc),
			timestamp.FormatTimeTick(meta.Span.EndMs, span, f.loc)))
	}

	axis := string(result.Axis.Scale)
	if result.HasNotice(model.NoticeAxisFallback) {
		axis += " (log requested)"
	}
	line("Y axis", axis)
	line("Sampling", fmt.Sprintf("%s, %s points", result.Sampling.Mode, util.FormatCount(result.Sampling.TargetPointCount)))

	if result.Warn.Enabled {
		line("Warn min", f.bound(result.Warn.Min, unit))
		line("Warn max", f.bound(result.Warn.Max, unit))
		line("Below min", util.FormatCount(len(result.Series.BelowMin)))
		line("Above max", util.FormatCount(len(result.Series.AboveMax)))
	}

	if len(result.Notices) > 0 {
		b.WriteString("\nNotices:\n")
		for _, n := range result.Notices {
			b.WriteString("  ! " + NoticeText(n) + "\n")
		}
	}

	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f *SummaryFormatter) bound(v *float64, unit *string) string {
	if v == nil {
		return label.NoValue
	}
	return f.values.FormatValueWithUnit(*v, unit)
}

// NoticeText renders a notice as a short English sentence.
func NoticeText(n model.Notice) string {
	switch n.Kind {
	case model.NoticeUnparseableTimestamp:
		return fmt.Sprintf("%d rows have an unreadable date or time", n.Count)
	case model.NoticeUnparseableValue:
		return fmt.Sprintf("%d cells are not numbers", n.Count)
	case model.NoticeNonMonotonicTime:
		return fmt.Sprintf("time goes backwards %d times", n.Count)
	case model.NoticeAxisFallback:
		return "log scale needs positive values, using linear"
	case model.NoticeNoValidValues:
		return "no valid values"
	}
	return string(n.Kind)
}

func orDash(s string) string {
	if s == "" {
		return label.NoValue
	}
	return s
}
