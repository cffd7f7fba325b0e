package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

const fileVersion = 1

// filePrefs is the on-disk layout.
type filePrefs struct {
	Version        int       `json:"version"`
	Smooth         bool      `json:"smooth"`
	ShowArea       bool      `json:"showArea"`
	ConnectNulls   bool      `json:"connectNulls"`
	Sampling       string    `json:"sampling"`
	SamplingPoints int       `json:"samplingPoints"`
	YAxisScale     string    `json:"yAxisScale"`
	Warn           warnPrefs `json:"warn"`
	Locale         string    `json:"locale"`
}

type warnPrefs struct {
	Enabled bool     `json:"enabled"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

// Store persists chart preferences as JSON. Nothing is written unless Save or
// Reset is called.
type Store struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.go-hwlog-viewer/prefs.json, or a path in the working
// directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".go-hwlog-viewer", "prefs.json")
	}
	return filepath.Join(home, ".go-hwlog-viewer", "prefs.json")
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored preferences. A missing or unreadable file yields the
// defaults, and each key is applied only when it has the expected type and a
// known value.
func (s *Store) Load() model.ChartPrefs {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.DefaultChartPrefs()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			util.LogWarnf("prefs: failed to read %s: %v", s.path, err)
		}
		return p
	}

	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil || raw == nil {
		util.LogWarnf("prefs: ignoring unreadable %s", s.path)
		return p
	}
	return apply(p, raw)
}

func apply(p model.ChartPrefs, raw map[string]interface{}) model.ChartPrefs {
	if v, ok := raw["smooth"].(bool); ok {
		p.Smooth = v
	}
	if v, ok := raw["showArea"].(bool); ok {
		p.ShowArea = v
	}
	if v, ok := raw["connectNulls"].(bool); ok {
		p.ConnectNulls = v
	}
	if v, ok := raw["sampling"].(string); ok {
		if mode, err := model.ParseSamplingMode(v); err == nil {
			p.Sampling.Mode = mode
		}
	}
	if v, ok := raw["samplingPoints"].(float64); ok && v >= 1 && v == float64(int(v)) {
		p.Sampling.TargetPointCount = int(v)
	}
	if v, ok := raw["yAxisScale"].(string); ok {
		if scale, err := model.ParseAxisScale(v); err == nil {
			p.Axis.Scale = scale
		}
	}
	if v, ok := raw["locale"].(string); ok && v != "" {
		p.Locale = label.NormalizeLocale(v)
	}
	if w, ok := raw["warn"].(map[string]interface{}); ok {
		if v, ok := w["enabled"].(bool); ok {
			p.Warn.Enabled = v
		}
		if v, ok := w["min"].(float64); ok {
			p.Warn.Min = model.Float64Ptr(v)
		}
		if v, ok := w["max"].(float64); ok {
			p.Warn.Max = model.Float64Ptr(v)
		}
	}
	return p
}

// Save writes p atomically.
func (s *Store) Save(p model.ChartPrefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := filePrefs{
		Version:        fileVersion,
		Smooth:         p.Smooth,
		ShowArea:       p.ShowArea,
		ConnectNulls:   p.ConnectNulls,
		Sampling:       string(p.Sampling.Mode),
		SamplingPoints: p.Sampling.TargetPointCount,
		YAxisScale:     string(p.Axis.Scale),
		Warn:           warnPrefs{Enabled: p.Warn.Enabled, Min: p.Warn.Min, Max: p.Warn.Max},
		Locale:         p.Locale,
	}
	data, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save prefs: %w", err)
	}

	util.LogDebugf("prefs saved to %s", s.path)
	return nil
}

// Reset stores and returns the defaults.
func (s *Store) Reset() (model.ChartPrefs, error) {
	p := model.DefaultChartPrefs()
	return p, s.Save(p)
}

// Keys lists the names accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type setter func(p *model.ChartPrefs, value string) error

var setters = map[string]setter{
	"smooth":       boolSetter(func(p *model.ChartPrefs, v bool) { p.Smooth = v }),
	"showArea":     boolSetter(func(p *model.ChartPrefs, v bool) { p.ShowArea = v }),
	"connectNulls": boolSetter(func(p *model.ChartPrefs, v bool) { p.ConnectNulls = v }),
	"warn.enabled": boolSetter(func(p *model.ChartPrefs, v bool) { p.Warn.Enabled = v }),
	"sampling": func(p *model.ChartPrefs, value string) error {
		mode, err := model.ParseSamplingMode(value)
		if err != nil {
			return err
		}
		p.Sampling.Mode = mode
		return nil
	},
	"samplingPoints": func(p *model.ChartPrefs, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("samplingPoints must be a positive integer, got '%s'", value)
		}
		p.Sampling.TargetPointCount = n
		return nil
	},
	"yAxisScale": func(p *model.ChartPrefs, value string) error {
		scale, err := model.ParseAxisScale(value)
		if err != nil {
			return err
		}
		p.Axis.Scale = scale
		return nil
	},
	"warn.min": boundSetter(func(p *model.ChartPrefs, v *float64) { p.Warn.Min = v }),
	"warn.max": boundSetter(func(p *model.ChartPrefs, v *float64) { p.Warn.Max = v }),
	"locale": func(p *model.ChartPrefs, value string) error {
		p.Locale = label.NormalizeLocale(value)
		return nil
	},
}

func boolSetter(set func(*model.ChartPrefs, bool)) setter {
	return func(p *model.ChartPrefs, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false, got '%s'", value)
		}
		set(p, b)
		return nil
	}
}

// boundSetter accepts a number, or "null"/"" to clear the bound.
func boundSetter(set func(*model.ChartPrefs, *float64)) setter {
	return func(p *model.ChartPrefs, value string) error {
		if value == "" || strings.EqualFold(value, "null") {
			set(p, nil)
			return nil
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("expected a number or null, got '%s'", value)
		}
		set(p, model.Float64Ptr(f))
		return nil
	}
}

// Set returns a copy of p with one "key=value" assignment applied.
func Set(p model.ChartPrefs, assignment string) (model.ChartPrefs, error) {
	key, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return p, fmt.Errorf("invalid assignment '%s': expected key=value", assignment)
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)

	set, known := setters[key]
	if !known {
		return p, fmt.Errorf("unknown preference '%s': must be one of %s", key, strings.Join(Keys(), ", "))
	}

	next := p.Clone()
	if err := set(&next, value); err != nil {
		return p, fmt.Errorf("%s: %w", key, err)
	}
	return next, nil
}
