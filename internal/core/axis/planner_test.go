package axis

import (
	"testing"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func pts(values ...model.Value) []model.SamplePoint {
	points := make([]model.SamplePoint, len(values))
	for i, v := range values {
		points[i] = model.SamplePoint{TimestampMs: int64(i), Value: v}
	}
	return points
}

func TestPlan(t *testing.T) {
	some := model.Some
	missing := model.Missing()

	tests := []struct {
		name      string
		points    []model.SamplePoint
		requested model.AxisScale
		expected  model.AxisPlan
	}{
		{name: "linear requested", points: pts(some(-1)), requested: model.ScaleLinear, expected: model.AxisPlan{Scale: model.ScaleLinear}},
		{name: "log with negative", points: pts(some(1), some(2), some(-1)), requested: model.ScaleLog, expected: model.AxisPlan{Scale: model.ScaleLinear, FallbackApplied: true}},
		{name: "log with zero", points: pts(some(0), some(2)), requested: model.ScaleLog, expected: model.AxisPlan{Scale: model.ScaleLinear, FallbackApplied: true}},
		{name: "log positive", points: pts(some(1), some(2), some(3)), requested: model.ScaleLog, expected: model.AxisPlan{Scale: model.ScaleLog}},
		{name: "log positive with gaps", points: pts(some(1), missing, some(3)), requested: model.ScaleLog, expected: model.AxisPlan{Scale: model.ScaleLog}},
		{name: "log empty", points: nil, requested: model.ScaleLog, expected: model.AxisPlan{Scale: model.ScaleLinear}},
		{name: "log all missing", points: pts(missing, missing), requested: model.ScaleLog, expected: model.AxisPlan{Scale: model.ScaleLinear}},
		{name: "unknown scale", points: pts(some(1)), requested: "sqrt", expected: model.AxisPlan{Scale: model.ScaleLinear}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Plan(tt.points, tt.requested))
		})
	}
}
