package sampling

import (
	"math"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

// LTTB implements Largest-Triangle-Three-Buckets over equal point-count buckets.
type LTTB struct {
	baseStrategy
}

func NewLTTB() *LTTB {
	return &LTTB{
		baseStrategy: baseStrategy{
			mode:        model.SamplingLTTB,
			description: "keeps the visually significant point of each equal-count bucket",
		},
	}
}

type anchor struct {
	x, y float64
}

func (s *LTTB) Reduce(points []model.SamplePoint, target int) []model.SamplePoint {
	n := len(points)
	if target >= n {
		return points
	}
	switch target {
	case 1:
		return []model.SamplePoint{points[0]}
	case 2:
		return []model.SamplePoint{points[0], points[n-1]}
	}

	// x values relative to the first timestamp keep float precision
	origin := points[0].TimestampMs
	x := func(i int) float64 { return float64(points[i].TimestampMs - origin) }

	out := make([]model.SamplePoint, 0, target)
	out = append(out, points[0])

	var (
		prev     anchor
		havePrev bool
	)
	if v, ok := points[0].Value.Get(); ok {
		prev, havePrev = anchor{x: 0, y: v}, true
	}

	every := float64(n-2) / float64(target-2)
	for b := 0; b < target-2; b++ {
		start := int(math.Floor(float64(b)*every)) + 1
		end := int(math.Floor(float64(b+1)*every)) + 1
		if end > n-1 {
			end = n - 1
		}

		nextStart := end
		nextEnd := int(math.Floor(float64(b+2)*every)) + 1
		if b == target-3 || nextEnd > n {
			nextStart, nextEnd = n-1, n
		}

		avgX, avgY, ok := bucketAverage(points, nextStart, nextEnd, x)
		if !ok {
			avgX = (x(nextStart) + x(nextEnd-1)) / 2
			avgY = prev.y
		}

		a := prev
		if !havePrev {
			a = anchor{x: x(start), y: avgY}
		}

		best := -1
		bestArea := -1.0
		for i := start; i < end; i++ {
			v, valid := points[i].Value.Get()
			if !valid {
				continue
			}
			area := math.Abs((a.x-avgX)*(v-a.y)-(a.x-x(i))*(avgY-a.y)) * 0.5
			if area > bestArea {
				best, bestArea = i, area
			}
		}

		if best < 0 {
			mid := points[start+(end-start-1)/2]
			out = append(out, model.SamplePoint{TimestampMs: mid.TimestampMs, Value: model.Missing(), TimeValid: mid.TimeValid})
			continue
		}

		out = append(out, points[best])
		prev, havePrev = anchor{x: x(best), y: points[best].Value.V}, true
	}

	return append(out, points[n-1])
}

func bucketAverage(points []model.SamplePoint, start, end int, x func(int) float64) (float64, float64, bool) {
	var sumX, sumY float64
	count := 0
	for i := start; i < end; i++ {
		v, ok := points[i].Value.Get()
		if !ok {
			continue
		}
		sumX += x(i)
		sumY += v
		count++
	}
	if count == 0 {
		return 0, 0, false
	}
	return sumX / float64(count), sumY / float64(count), true
}
