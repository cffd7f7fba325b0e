package model

// ValueRange is the min/max of the present readings of a series.
type ValueRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Valid bool    `json:"valid"`
}

// Include widens the range with v.
func (r *ValueRange) Include(v float64) {
	if !r.Valid {
		r.Min, r.Max, r.Valid = v, v, true
		return
	}
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
}

// TimeSpan covers the resolved timestamps of a series.
type TimeSpan struct {
	StartMs int64 `json:"startMs"`
	EndMs   int64 `json:"endMs"`
}

// DurationMs returns the span length in milliseconds.
func (s TimeSpan) DurationMs() int64 {
	return s.EndMs - s.StartMs
}

type RenderMeta struct {
	ValidCount        int        `json:"validCount"`
	MissingCount      int        `json:"missingCount"`
	InvalidTimeCount  int        `json:"invalidTimeCount"`
	NonMonotonicCount int        `json:"nonMonotonicCount"`
	SourcePointCount  int        `json:"sourcePointCount"`
	Range             ValueRange `json:"range"`
	Span              TimeSpan   `json:"span"`
}

// RenderSeries is derived from a SensorSeries and the chart preferences. It is
// never persisted. BelowMin and AboveMax are overlays; Main always keeps every point.
type RenderSeries struct {
	Main     []SamplePoint `json:"main"`
	BelowMin []SamplePoint `json:"belowMin"`
	AboveMax []SamplePoint `json:"aboveMax"`
	Meta     RenderMeta    `json:"meta"`
}

// RenderHints are passed through to the renderer untouched.
type RenderHints struct {
	Smooth       bool `json:"smooth"`
	ShowArea     bool `json:"showArea"`
	ConnectNulls bool `json:"connectNulls"`
}

// NoticeKind names a non-fatal condition the caller should surface.
type NoticeKind string

const (
	NoticeUnparseableTimestamp NoticeKind = "unparseable_timestamp"
	NoticeUnparseableValue     NoticeKind = "unparseable_value"
	NoticeNonMonotonicTime     NoticeKind = "non_monotonic_time"
	NoticeAxisFallback         NoticeKind = "axis_fallback"
	NoticeNoValidValues        NoticeKind = "no_valid_values"
)

// Notice carries a condition kind and the number of affected points.
type Notice struct {
	Kind  NoticeKind `json:"kind"`
	Count int        `json:"count,omitempty"`
}

// RenderResult is the complete payload for one chart.
type RenderResult struct {
	Label    SensorLabelMeta `json:"label"`
	Series   RenderSeries    `json:"series"`
	Axis     AxisPlan        `json:"axis"`
	Sampling SamplingConfig  `json:"sampling"`
	Warn     WarnConfig      `json:"warn"`
	Hints    RenderHints     `json:"hints"`
	Notices  []Notice        `json:"notices"`
}

// HasNotice reports whether a notice of the given kind is present.
func (r RenderResult) HasNotice(kind NoticeKind) bool {
	for _, n := range r.Notices {
		if n.Kind == kind {
			return true
		}
	}
	return false
}
