package series

import (
	"testing"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/timestamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cpuTemp = "CPU Temperature [°C]"

func row(date, clock, value string) model.RawRow {
	return model.RawRow{Date: date, Time: clock, Fields: map[string]string{cpuTemp: value}}
}

func newTestBuilder() *Builder {
	return NewBuilder(timestamp.NewResolver(time.UTC))
}

func ms(hh, mm, ss int) int64 {
	return time.Date(2025, 3, 22, hh, mm, ss, 0, time.UTC).UnixMilli()
}

func TestBuildParsesValuesAndMetadata(t *testing.T) {
	rows := []model.RawRow{
		row("22.3.2025", "10:00:00", "45.5"),
		row("22.3.2025", "10:00:01", " 46 "),
		row("22.3.2025", "10:00:02", "n/a"),
		row("22.3.2025", "10:00:03", ""),
		row("22.3.2025", "10:00:04", "NaN"),
	}

	s, stats, err := newTestBuilder().Build(rows, cpuTemp)
	require.NoError(t, err)

	assert.Equal(t, cpuTemp, s.FieldKey)
	assert.Equal(t, "CPU Temperature", s.BaseName)
	require.NotNil(t, s.Unit)
	assert.Equal(t, "°C", *s.Unit)

	require.Len(t, s.Points, 5)
	assert.Equal(t, model.Some(45.5), s.Points[0].Value)
	assert.Equal(t, model.Some(46), s.Points[1].Value)
	assert.False(t, s.Points[2].Value.Valid)
	assert.False(t, s.Points[3].Value.Valid)
	assert.False(t, s.Points[4].Value.Valid)
	assert.Equal(t, ms(10, 0, 4), s.Points[4].TimestampMs)

	assert.Equal(t, model.BuildStats{Rows: 5, UnparseableValues: 2, BlankValues: 1}, stats)
}

func TestBuildInvalidTimeKeepsSlot(t *testing.T) {
	rows := []model.RawRow{
		row("garbage", "10:00:00", "1"),
		row("22.3.2025", "10:00:01", "2"),
		row("22.3.2025", "25:00:00", "3"),
		row("22.3.2025", "10:00:03", "4"),
	}

	s, stats, err := newTestBuilder().Build(rows, cpuTemp)
	require.NoError(t, err)
	require.Len(t, s.Points, 4)

	assert.Equal(t, 2, stats.InvalidTimeCount)

	// leading invalid row is back-filled from the first resolved timestamp
	assert.Equal(t, ms(10, 0, 1), s.Points[0].TimestampMs)
	assert.False(t, s.Points[0].TimeValid)
	assert.False(t, s.Points[0].Value.Valid)

	assert.Equal(t, ms(10, 0, 1), s.Points[2].TimestampMs)
	assert.False(t, s.Points[2].TimeValid)
	assert.False(t, s.Points[2].Value.Valid)

	assert.True(t, s.Points[3].TimeValid)
	assert.Equal(t, model.Some(4), s.Points[3].Value)
}

func TestBuildAllTimesInvalid(t *testing.T) {
	rows := []model.RawRow{
		row("", "", "1"),
		row("x", "y", "2"),
	}

	s, stats, err := newTestBuilder().Build(rows, cpuTemp)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.InvalidTimeCount)
	for _, p := range s.Points {
		assert.Equal(t, int64(0), p.TimestampMs)
		assert.False(t, p.Value.Valid)
	}
}

func TestBuildSurfacesNonMonotonicTime(t *testing.T) {
	rows := []model.RawRow{
		row("22.3.2025", "10:00:02", "1"),
		row("22.3.2025", "10:00:01", "2"),
		row("22.3.2025", "10:00:01", "3"),
		row("22.3.2025", "10:00:03", "4"),
	}

	s, stats, err := newTestBuilder().Build(rows, cpuTemp)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NonMonotonicCount)

	// row order is preserved, duplicates are not merged
	assert.Equal(t, []int64{ms(10, 0, 2), ms(10, 0, 1), ms(10, 0, 1), ms(10, 0, 3)}, timestamps(s.Points))
}

func TestBuildErrors(t *testing.T) {
	b := newTestBuilder()

	_, _, err := b.Build(nil, cpuTemp)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	rows := []model.RawRow{row("22.3.2025", "10:00:00", "1")}
	_, _, err = b.Build(rows, "GPU Load [%]")
	assert.ErrorIs(t, err, ErrUnrecognizedField)
	assert.Contains(t, err.Error(), "GPU Load [%]")

	blank := []model.RawRow{row("22.3.2025", "10:00:00", "  ")}
	_, _, err = b.Build(blank, cpuTemp)
	assert.ErrorIs(t, err, ErrUnrecognizedField)
}

func TestNewBuilderDefaultsResolver(t *testing.T) {
	b := NewBuilder(nil)
	require.NotNil(t, b.resolver)
	assert.Equal(t, time.Local, b.resolver.Location())
}

func timestamps(points []model.SamplePoint) []int64 {
	out := make([]int64, len(points))
	for i, p := range points {
		out[i] = p.TimestampMs
	}
	return out
}
