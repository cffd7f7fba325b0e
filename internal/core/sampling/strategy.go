package sampling

import (
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

// Strategy reduces a series to at most target points. Implementations are only
// called with len(points) > target and target >= 1.
type Strategy interface {
	// Mode returns the sampling mode this strategy implements
	Mode() model.SamplingMode

	// Description returns a human-readable description of the strategy
	Description() string

	Reduce(points []model.SamplePoint, target int) []model.SamplePoint
}

// baseStrategy provides the name and description shared by all strategies
type baseStrategy struct {
	mode        model.SamplingMode
	description string
}

func (s baseStrategy) Mode() model.SamplingMode {
	return s.mode
}

func (s baseStrategy) Description() string {
	return s.description
}
