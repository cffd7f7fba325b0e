package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sensor describes one generated column. Value returns the cell text for row i.
type Sensor struct {
	Header string
	Value  func(i int) string
}

// LogSpec controls the shape of a generated HWiNFO log.
type LogSpec struct {
	Start    time.Time
	Interval time.Duration
	Rows     int
	Sensors  []Sensor
	// Footer appends the repeated header and device name rows HWiNFO writes on close.
	Footer bool
	// BOM prefixes the file with a UTF-8 byte order mark.
	BOM bool
	// BadTimeRows lists rows whose Time cell is replaced with garbage.
	BadTimeRows []int
}

// TestDataGenerator writes HWiNFO style CSV logs for tests.
type TestDataGenerator struct {
	baseDir string
}

func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{baseDir: baseDir}
}

// Constant returns a sensor whose every cell is value.
func Constant(header, value string) Sensor {
	return Sensor{Header: header, Value: func(int) string { return value }}
}

// Ramp returns a sensor counting up from start by step.
func Ramp(header string, start, step float64) Sensor {
	return Sensor{Header: header, Value: func(i int) string {
		return fmt.Sprintf("%g", start+step*float64(i))
	}}
}

// Cycle returns a sensor repeating values.
func Cycle(header string, values ...string) Sensor {
	return Sensor{Header: header, Value: func(i int) string { return values[i%len(values)] }}
}

// DefaultSensors is a small mixed set resembling a real capture.
func DefaultSensors() []Sensor {
	return []Sensor{
		Cycle("Total CPU Usage [%]", "12.5", "87.3", "45.0", "3.2"),
		Ramp("CPU Package Power [W]", 35, 0.5),
		Cycle("CPU Package [°C]", "54", "61", "72", "68"),
		Cycle("Core VID [V]", "1.215", "1.302", "1.250"),
		Ramp("下载总计 [MB]", 100, 2),
		Constant("Page File Usage [%]", ""),
	}
}

// GenerateLog writes name under the base directory and returns its path.
func (g *TestDataGenerator) GenerateLog(name string, spec LogSpec) (string, error) {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", err
	}
	if spec.Interval == 0 {
		spec.Interval = 2 * time.Second
	}

	bad := make(map[int]bool, len(spec.BadTimeRows))
	for _, i := range spec.BadTimeRows {
		bad[i] = true
	}

	var b strings.Builder
	if spec.BOM {
		b.WriteString("\ufeff")
	}

	headers := []string{"Date", "Time"}
	for _, s := range spec.Sensors {
		headers = append(headers, quote(s.Header))
	}
	writeRow(&b, headers)

	for i := 0; i < spec.Rows; i++ {
		ts := spec.Start.Add(time.Duration(i) * spec.Interval)
		timeText := ts.Format("15:04:05.000")
		if bad[i] {
			timeText = "??:??"
		}
		row := []string{formatDate(ts), timeText}
		for _, s := range spec.Sensors {
			row = append(row, quote(s.Value(i)))
		}
		writeRow(&b, row)
	}

	if spec.Footer {
		writeRow(&b, headers)
		footer := []string{"", ""}
		for range spec.Sensors {
			footer = append(footer, "CPU [#0]: AMD Ryzen")
		}
		writeRow(&b, footer)
	}

	path := filepath.Join(g.baseDir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// AppendRows appends rows continuing the timeline of spec, starting at row offset.
func (g *TestDataGenerator) AppendRows(path string, spec LogSpec, offset, count int) error {
	if spec.Interval == 0 {
		spec.Interval = 2 * time.Second
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	var b strings.Builder
	for i := offset; i < offset+count; i++ {
		ts := spec.Start.Add(time.Duration(i) * spec.Interval)
		row := []string{formatDate(ts), ts.Format("15:04:05.000")}
		for _, s := range spec.Sensors {
			row = append(row, quote(s.Value(i)))
		}
		writeRow(&b, row)
	}
	_, err = f.WriteString(b.String())
	return err
}

// HWiNFO writes day first dates without padding, e.g. 22.3.2025.
func formatDate(ts time.Time) string {
	return fmt.Sprintf("%d.%d.%d", ts.Day(), int(ts.Month()), ts.Year())
}

func quote(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString(strings.Join(cells, ","))
	b.WriteString(",\r\n")
}
