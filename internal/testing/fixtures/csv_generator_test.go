package fixtures

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/data/reader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLogRoundTripsThroughReader(t *testing.T) {
	g := NewTestDataGenerator(t.TempDir())
	spec := LogSpec{
		Start:   time.Date(2025, 3, 22, 21, 36, 0, 0, time.UTC),
		Rows:    10,
		Sensors: DefaultSensors(),
		Footer:  true,
		BOM:     true,
	}

	path, err := g.GenerateLog("log.csv", spec)
	require.NoError(t, err)

	ds, err := reader.ReadFile(path, reader.Options{})
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 10)
	assert.Len(t, ds.SensorFields, len(spec.Sensors))
	assert.Equal(t, "22.3.2025", ds.Rows[0].Date)
	assert.Equal(t, "21:36:02.000", ds.Rows[1].Time)
	assert.Equal(t, "87.3", ds.Rows[1].Fields["Total CPU Usage [%]"])
}

func TestGenerateLogBadTimeRows(t *testing.T) {
	g := NewTestDataGenerator(t.TempDir())
	path, err := g.GenerateLog("bad.csv", LogSpec{
		Start:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Rows:        3,
		Sensors:     []Sensor{Constant("Fan [RPM]", "1200")},
		BadTimeRows: []int{1},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "??:??")
}

func TestAppendRows(t *testing.T) {
	g := NewTestDataGenerator(t.TempDir())
	spec := LogSpec{
		Start:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Rows:    2,
		Sensors: []Sensor{Ramp("Power [W]", 10, 1)},
	}
	path, err := g.GenerateLog("grow.csv", spec)
	require.NoError(t, err)
	require.NoError(t, g.AppendRows(path, spec, 2, 3))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[5], "1.1.2025,00:00:08.000,14"))
}
