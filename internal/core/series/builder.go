package series

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/timestamp"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

var (
	// ErrUnrecognizedField is returned when no row carries a value for the requested column.
	ErrUnrecognizedField = errors.New("unrecognized field")
	// ErrEmptyDataset is returned when there are no rows at all.
	ErrEmptyDataset = errors.New("dataset has no rows")
)

// Builder turns raw rows into a SensorSeries for one column.
type Builder struct {
	resolver *timestamp.Resolver
}

// NewBuilder creates a builder. A nil resolver resolves times in time.Local.
func NewBuilder(resolver *timestamp.Resolver) *Builder {
	if resolver == nil {
		resolver = timestamp.NewResolver(nil)
	}
	return &Builder{resolver: resolver}
}

// Build produces one point per row. Rows whose date/time cannot be resolved keep
// their slot with a missing value and the previous resolved timestamp.
func (b *Builder) Build(rows []model.RawRow, fieldKey string) (model.SensorSeries, model.BuildStats, error) {
	stats := model.BuildStats{Rows: len(rows)}
	if len(rows) == 0 {
		return model.SensorSeries{}, stats, ErrEmptyDataset
	}
	if !hasField(rows, fieldKey) {
		return model.SensorSeries{}, stats, fmt.Errorf("%w: %q", ErrUnrecognizedField, fieldKey)
	}

	meta := label.ParseSensorLabel(fieldKey)
	points := make([]model.SamplePoint, len(rows))

	var (
		lastTs     int64
		haveLastTs bool
		pending    []int // leading rows without a resolvable timestamp
	)

	for i, row := range rows {
		ts, ok := b.resolver.Resolve(row.Date, row.Time)
		if !ok {
			stats.InvalidTimeCount++
			points[i] = model.SamplePoint{TimestampMs: lastTs, Value: model.Missing()}
			if !haveLastTs {
				pending = append(pending, i)
			}
			continue
		}

		if haveLastTs && ts < lastTs {
			stats.NonMonotonicCount++
		}
		if !haveLastTs {
			for _, idx := range pending {
				points[idx].TimestampMs = ts
			}
			pending = nil
		}
		lastTs, haveLastTs = ts, true

		points[i] = model.SamplePoint{
			TimestampMs: ts,
			Value:       parseCell(row.Fields[fieldKey], &stats),
			TimeValid:   true,
		}
	}

	if stats.InvalidTimeCount > 0 || stats.NonMonotonicCount > 0 {
		util.LogDebugf("series %q: %d rows, %d invalid times, %d non-monotonic",
			fieldKey, stats.Rows, stats.InvalidTimeCount, stats.NonMonotonicCount)
	}

	return model.SensorSeries{
		FieldKey: fieldKey,
		BaseName: meta.BaseName,
		Unit:     meta.Unit,
		Points:   points,
	}, stats, nil
}

// parseCell reads a numeric cell. Blank and non-numeric cells are missing.
func parseCell(cell string, stats *model.BuildStats) model.Value {
	text := strings.TrimSpace(cell)
	if text == "" {
		stats.BlankValues++
		return model.Missing()
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		stats.UnparseableValues++
		return model.Missing()
	}
	return model.Some(v)
}

func hasField(rows []model.RawRow, fieldKey string) bool {
	for _, row := range rows {
		if cell, ok := row.Fields[fieldKey]; ok && strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

// ParseValue reads a single cell the way Build does.
func ParseValue(cell string) model.Value {
	var stats model.BuildStats
	return parseCell(cell, &stats)
}
