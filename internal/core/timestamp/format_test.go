package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeTick(t *testing.T) {
	ms := time.Date(2025, 3, 22, 9, 5, 30, 0, time.UTC).UnixMilli()

	tests := []struct {
		name     string
		span     time.Duration
		expected string
	}{
		{name: "short span", span: time.Hour, expected: "09:05"},
		{name: "just under 36h", span: 36*time.Hour - time.Millisecond, expected: "09:05"},
		{name: "exactly 36h", span: 36 * time.Hour, expected: "03-22 09:05"},
		{name: "several days", span: 72 * time.Hour, expected: "03-22 09:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimeTick(ms, tt.span.Milliseconds(), time.UTC))
		})
	}
}

func TestFormatDateTimeForTooltip(t *testing.T) {
	ms := time.Date(2025, 1, 2, 3, 4, 5, 6*int(time.Millisecond), time.UTC).UnixMilli()
	assert.Equal(t, "2025-01-02 03:04:05.006", FormatDateTimeForTooltip(ms, time.UTC))
}
