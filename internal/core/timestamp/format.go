package timestamp

import (
	"time"
)

// MultiDaySpan is the span from which tick labels include the date.
const MultiDaySpan = 36 * time.Hour

const (
	tooltipLayout   = "2006-01-02 15:04:05.000"
	tickLayout      = "15:04"
	tickLayoutDated = "01-02 15:04"
)

// FormatDateTimeForTooltip renders ms as "YYYY-MM-DD HH:MM:SS.mmm" in loc.
func FormatDateTimeForTooltip(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(orLocal(loc)).Format(tooltipLayout)
}

// FormatTimeTick renders an axis label, adding the date when the chart spans
// at least 36 hours.
func FormatTimeTick(ms, spanMs int64, loc *time.Location) string {
	t := time.UnixMilli(ms).In(orLocal(loc))
	if spanMs >= MultiDaySpan.Milliseconds() {
		return t.Format(tickLayoutDated)
	}
	return t.Format(tickLayout)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
