package threshold

import (
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

// Classification is the main line plus the two warning overlays. Main always
// holds every input point.
type Classification struct {
	Main     []model.SamplePoint
	BelowMin []model.SamplePoint
	AboveMax []model.SamplePoint
}

// Classify copies present values strictly below Min into BelowMin and strictly
// above Max into AboveMax. Values equal to a bound are not flagged.
func Classify(points []model.SamplePoint, cfg model.WarnConfig) Classification {
	c := Classification{
		Main:     points,
		BelowMin: []model.SamplePoint{},
		AboveMax: []model.SamplePoint{},
	}
	if !cfg.Enabled || (cfg.Min == nil && cfg.Max == nil) {
		return c
	}

	for _, p := range points {
		below, above := Flags(p.Value, cfg)
		if below {
			c.BelowMin = append(c.BelowMin, p)
		}
		if above {
			c.AboveMax = append(c.AboveMax, p)
		}
	}
	return c
}

// Flags reports which bounds v violates. Missing values violate none.
func Flags(v model.Value, cfg model.WarnConfig) (below, above bool) {
	x, ok := v.Get()
	if !ok || !cfg.Enabled {
		return false, false
	}
	return cfg.Min != nil && x < *cfg.Min, cfg.Max != nil && x > *cfg.Max
}
