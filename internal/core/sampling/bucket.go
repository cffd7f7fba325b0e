package sampling

import (
	"math"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

// aggregateFunc folds the present values of one bucket. It is never called
// with an empty slice.
type aggregateFunc func(values []float64) float64

// Bucket splits the time span into equal-width buckets and emits one point per
// bucket at its midpoint.
type Bucket struct {
	baseStrategy
	aggregate aggregateFunc
}

func NewAverage() *Bucket {
	return &Bucket{
		baseStrategy: baseStrategy{mode: model.SamplingAverage, description: "mean of each equal-width time bucket"},
		aggregate:    mean,
	}
}

func NewMax() *Bucket {
	return &Bucket{
		baseStrategy: baseStrategy{mode: model.SamplingMax, description: "maximum of each equal-width time bucket"},
		aggregate:    maximum,
	}
}

func NewMin() *Bucket {
	return &Bucket{
		baseStrategy: baseStrategy{mode: model.SamplingMin, description: "minimum of each equal-width time bucket"},
		aggregate:    minimum,
	}
}

func (s *Bucket) Reduce(points []model.SamplePoint, target int) []model.SamplePoint {
	if len(points) == 0 || target >= len(points) {
		return points
	}

	lo, hi := points[0].TimestampMs, points[0].TimestampMs
	for _, p := range points[1:] {
		lo = min(lo, p.TimestampMs)
		hi = max(hi, p.TimestampMs)
	}

	span := hi - lo
	if span == 0 {
		return []model.SamplePoint{s.emit(lo, values(points))}
	}

	width := float64(span) / float64(target)
	buckets := make([][]float64, target)
	for _, p := range points {
		idx := int(float64(p.TimestampMs-lo) / width)
		if idx >= target {
			idx = target - 1
		}
		if v, ok := p.Value.Get(); ok {
			buckets[idx] = append(buckets[idx], v)
		}
	}

	out := make([]model.SamplePoint, target)
	for b := range buckets {
		mid := lo + int64(math.Round((float64(b)+0.5)*width))
		out[b] = s.emit(mid, buckets[b])
	}
	return out
}

func (s *Bucket) emit(ts int64, vals []float64) model.SamplePoint {
	p := model.SamplePoint{TimestampMs: ts, TimeValid: true}
	if len(vals) > 0 {
		p.Value = model.Some(s.aggregate(vals))
	}
	return p
}

func values(points []model.SamplePoint) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		if v, ok := p.Value.Get(); ok {
			out = append(out, v)
		}
	}
	return out
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func maximum(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = max(m, v)
	}
	return m
}

func minimum(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = min(m, v)
	}
	return m
}
