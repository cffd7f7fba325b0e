package pipeline

import (
	"github.com/penwyp/go-hwlog-viewer/internal/core/axis"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/sampling"
	"github.com/penwyp/go-hwlog-viewer/internal/core/threshold"
)

// Render derives the chart payload for one series. It does not modify series.
// The axis plan and the counters cover the full series; only Main and the
// overlays are downsampled.
func Render(series model.SensorSeries, stats model.BuildStats, prefs model.ChartPrefs) model.RenderResult {
	cfg := prefs.Sampling
	if cfg.TargetPointCount <= 0 {
		cfg.TargetPointCount = model.DefaultTargetPointCount
	}
	if cfg.Mode == "" {
		cfg.Mode = model.SamplingAuto
	}

	reduced := sampling.Reduce(series.Points, cfg)
	classified := threshold.Classify(reduced, prefs.Warn)
	plan := axis.Plan(series.Points, prefs.Axis.Scale)
	meta := describe(series.Points, stats)

	return model.RenderResult{
		Label: series.Label(),
		Series: model.RenderSeries{
			Main:     classified.Main,
			BelowMin: classified.BelowMin,
			AboveMax: classified.AboveMax,
			Meta:     meta,
		},
		Axis:     plan,
		Sampling: cfg,
		Warn:     prefs.Warn,
		Hints: model.RenderHints{
			Smooth:       prefs.Smooth,
			ShowArea:     prefs.ShowArea,
			ConnectNulls: prefs.ConnectNulls,
		},
		Notices: notices(meta, stats, plan),
	}
}

func describe(points []model.SamplePoint, stats model.BuildStats) model.RenderMeta {
	meta := model.RenderMeta{
		InvalidTimeCount:  stats.InvalidTimeCount,
		NonMonotonicCount: stats.NonMonotonicCount,
		SourcePointCount:  len(points),
	}

	haveSpan := false
	for _, p := range points {
		if v, ok := p.Value.Get(); ok {
			meta.ValidCount++
			meta.Range.Include(v)
		} else {
			meta.MissingCount++
		}

		if !p.TimeValid {
			continue
		}
		if !haveSpan {
			meta.Span = model.TimeSpan{StartMs: p.TimestampMs, EndMs: p.TimestampMs}
			haveSpan = true
			continue
		}
		meta.Span.StartMs = min(meta.Span.StartMs, p.TimestampMs)
		meta.Span.EndMs = max(meta.Span.EndMs, p.TimestampMs)
	}
	return meta
}

func notices(meta model.RenderMeta, stats model.BuildStats, plan model.AxisPlan) []model.Notice {
	out := []model.Notice{}
	if stats.InvalidTimeCount > 0 {
		out = append(out, model.Notice{Kind: model.NoticeUnparseableTimestamp, Count: stats.InvalidTimeCount})
	}
	if stats.UnparseableValues > 0 {
		out = append(out, model.Notice{Kind: model.NoticeUnparseableValue, Count: stats.UnparseableValues})
	}
	if stats.NonMonotonicCount > 0 {
		out = append(out, model.Notice{Kind: model.NoticeNonMonotonicTime, Count: stats.NonMonotonicCount})
	}
	if plan.FallbackApplied {
		out = append(out, model.Notice{Kind: model.NoticeAxisFallback})
	}
	if meta.ValidCount == 0 {
		out = append(out, model.Notice{Kind: model.NoticeNoValidValues})
	}
	return out
}
