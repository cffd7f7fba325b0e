package sampling

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

// Registry maps sampling modes to strategies
type Registry struct {
	strategies map[model.SamplingMode]Strategy
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[model.SamplingMode]Strategy),
	}
}

// NewDefaultRegistry creates a registry holding the built-in strategies
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewLTTB())
	r.Register(NewAverage())
	r.Register(NewMax())
	r.Register(NewMin())
	return r
}

// Register adds a strategy, replacing any strategy registered for the same mode
func (r *Registry) Register(strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[strategy.Mode()]; exists {
		util.LogDebugf("sampling: replaced strategy '%s'", strategy.Mode())
	}
	r.strategies[strategy.Mode()] = strategy
}

// Get returns the strategy for a mode
func (r *Registry) Get(mode model.SamplingMode) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[mode]
	return s, ok
}

// Modes returns the registered modes in name order
func (r *Registry) Modes() []model.SamplingMode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modes := make([]model.SamplingMode, 0, len(r.strategies))
	for m := range r.strategies {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Reduce applies the configured mode. Input at or below the budget, and any
// input under mode "none", is returned unchanged.
func (r *Registry) Reduce(points []model.SamplePoint, cfg model.SamplingConfig) []model.SamplePoint {
	target := cfg.TargetPointCount
	if target <= 0 {
		target = model.DefaultTargetPointCount
	}

	mode := cfg.Mode
	if mode == model.SamplingNone || len(points) <= target {
		return points
	}
	if mode == model.SamplingAuto || mode == "" {
		mode = model.SamplingLTTB
	}

	strategy, ok := r.Get(mode)
	if !ok {
		util.LogWarnf("sampling: unknown mode '%s', falling back to %s", cfg.Mode, model.SamplingLTTB)
		if strategy, ok = r.Get(model.SamplingLTTB); !ok {
			return points
		}
	}

	out := strategy.Reduce(points, target)
	util.LogDebugf("sampling: %s reduced %d points to %d (target %d)", strategy.Mode(), len(points), len(out), target)
	return out
}

// Summary describes the registered strategies
func (r *Registry) Summary() string {
	var b strings.Builder
	modes := r.Modes()
	fmt.Fprintf(&b, "%d sampling strategies registered\n", len(modes))
	for _, m := range modes {
		s, _ := r.Get(m)
		fmt.Fprintf(&b, "  - %s: %s\n", m, s.Description())
	}
	return b.String()
}

var defaultRegistry = NewDefaultRegistry()

// Reduce runs the built-in strategies.
func Reduce(points []model.SamplePoint, cfg model.SamplingConfig) []model.SamplePoint {
	return defaultRegistry.Reduce(points, cfg)
}
