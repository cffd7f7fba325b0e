package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SamplingMode selects the downsampling algorithm.
type SamplingMode string

const (
	SamplingAuto    SamplingMode = "auto"
	SamplingNone    SamplingMode = "none"
	SamplingLTTB    SamplingMode = "lttb"
	SamplingAverage SamplingMode = "average"
	SamplingMax     SamplingMode = "max"
	SamplingMin     SamplingMode = "min"
)

// DefaultTargetPointCount is the point budget used when none is configured.
const DefaultTargetPointCount = 2000

// SamplingModes lists the recognized modes in display order.
var SamplingModes = []SamplingMode{
	SamplingAuto, SamplingNone, SamplingLTTB, SamplingAverage, SamplingMax, SamplingMin,
}

// ParseSamplingMode validates a mode name.
func ParseSamplingMode(s string) (SamplingMode, error) {
	mode := SamplingMode(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range SamplingModes {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid sampling mode '%s': must be one of auto, none, lttb, average, max, min", s)
}

type SamplingConfig struct {
	Mode             SamplingMode `json:"mode"`
	TargetPointCount int          `json:"targetPointCount"`
}

// WarnConfig holds the warning thresholds. A nil bound is inactive.
type WarnConfig struct {
	Enabled bool     `json:"enabled"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

// AxisScale is the Y-axis scale type.
type AxisScale string

const (
	ScaleLinear AxisScale = "linear"
	ScaleLog    AxisScale = "log"
)

// ParseAxisScale validates a scale name.
func ParseAxisScale(s string) (AxisScale, error) {
	switch AxisScale(strings.ToLower(strings.TrimSpace(s))) {
	case ScaleLinear:
		return ScaleLinear, nil
	case ScaleLog:
		return ScaleLog, nil
	}
	return "", fmt.Errorf("invalid y-axis scale '%s': must be either 'linear' or 'log'", s)
}

type AxisConfig struct {
	Scale AxisScale `json:"scale"`
}

// AxisPlan is the scale actually applied for a series.
type AxisPlan struct {
	Scale           AxisScale `json:"scale"`
	FallbackApplied bool      `json:"fallbackApplied"`
}

// Float64Ptr is a helper for optional thresholds.
func Float64Ptr(v float64) *float64 {
	return &v
}

// ChartPrefs is the complete chart configuration passed into every render. It
// is a value: changing a preference produces a new ChartPrefs, and persisting
// it is a separate, explicit step.
type ChartPrefs struct {
	Smooth       bool           `json:"smooth"`
	ShowArea     bool           `json:"showArea"`
	ConnectNulls bool           `json:"connectNulls"`
	Sampling     SamplingConfig `json:"sampling"`
	Axis         AxisConfig     `json:"yAxis"`
	Warn         WarnConfig     `json:"warn"`
	Locale       string         `json:"locale"`
}

// DefaultChartPrefs returns the preferences used when nothing is stored.
func DefaultChartPrefs() ChartPrefs {
	return ChartPrefs{
		Smooth:       false,
		ShowArea:     true,
		ConnectNulls: false,
		Sampling:     SamplingConfig{Mode: SamplingAuto, TargetPointCount: DefaultTargetPointCount},
		Axis:         AxisConfig{Scale: ScaleLinear},
		Warn:         WarnConfig{Enabled: false},
		Locale:       "en-US",
	}
}

// Clone returns a copy that shares no pointers with p.
func (p ChartPrefs) Clone() ChartPrefs {
	c := p
	if p.Warn.Min != nil {
		c.Warn.Min = Float64Ptr(*p.Warn.Min)
	}
	if p.Warn.Max != nil {
		c.Warn.Max = Float64Ptr(*p.Warn.Max)
	}
	return c
}

// Key returns a stable string identifying every field of p.
func (p ChartPrefs) Key() string {
	return fmt.Sprintf("smooth=%t;area=%t;nulls=%t;sampling=%s/%d;scale=%s;warn=%t/%s/%s;locale=%s",
		p.Smooth, p.ShowArea, p.ConnectNulls,
		p.Sampling.Mode, p.Sampling.TargetPointCount,
		p.Axis.Scale,
		p.Warn.Enabled, optionalKey(p.Warn.Min), optionalKey(p.Warn.Max),
		p.Locale)
}

func optionalKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
