package axis

import (
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

// Plan decides the scale actually applied. A log request falls back to linear
// when any present value is <= 0; a series with no present values is linear
// without a fallback.
func Plan(points []model.SamplePoint, requested model.AxisScale) model.AxisPlan {
	if requested != model.ScaleLog {
		return model.AxisPlan{Scale: model.ScaleLinear}
	}

	present := 0
	for _, p := range points {
		v, ok := p.Value.Get()
		if !ok {
			continue
		}
		if v <= 0 {
			return model.AxisPlan{Scale: model.ScaleLinear, FallbackApplied: true}
		}
		present++
	}

	if present == 0 {
		return model.AxisPlan{Scale: model.ScaleLinear}
	}
	return model.AxisPlan{Scale: model.ScaleLog}
}
