package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

const (
	dateHeader = "date"
	timeHeader = "time"
	bom        = "\ufeff"
)

var (
	ErrMissingDateTimeColumns = errors.New("csv has no Date and Time columns")
	ErrEmptyFile              = errors.New("csv file is empty")
)

// Options control how a log file is decoded.
type Options struct {
	Encoding string
}

// Dataset is a parsed log file. Rows are never modified after reading.
type Dataset struct {
	Path         string
	Headers      []string
	SensorFields []string
	Rows         []model.RawRow
}

// HasField reports whether header names a sensor column.
func (d *Dataset) HasField(header string) bool {
	for _, f := range d.SensorFields {
		if f == header {
			return true
		}
	}
	return false
}

// ReadFile opens and parses a log file.
func ReadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	ds, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ds.Path = path
	util.LogDebugf("read %s: %d rows, %d sensor fields", path, len(ds.Rows), len(ds.SensorFields))
	return ds, nil
}

// Read parses a HWiNFO style CSV. Reading stops at the footer, which starts
// with a repeat of the header row.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header = normalizeRecord(header)
	headers := uniqueHeaders(header)

	dateIdx, timeIdx := -1, -1
	for i, h := range headers {
		switch strings.ToLower(h) {
		case dateHeader:
			if dateIdx < 0 {
				dateIdx = i
			}
		case timeHeader:
			if timeIdx < 0 {
				timeIdx = i
			}
		}
	}
	if dateIdx < 0 || timeIdx < 0 {
		return nil, ErrMissingDateTimeColumns
	}

	ds := &Dataset{Headers: headers}
	for i, h := range headers {
		if i == dateIdx || i == timeIdx || h == "" {
			continue
		}
		ds.SensorFields = append(ds.SensorFields, h)
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		record = normalizeRecord(record)

		if isBlank(record) {
			continue
		}
		if dateIdx < len(record) && record[dateIdx] == headers[dateIdx] {
			util.LogDebugf("footer reached at line %d", line)
			break
		}

		row := model.RawRow{
			Date:   cell(record, dateIdx),
			Time:   cell(record, timeIdx),
			Fields: make(map[string]string, len(ds.SensorFields)),
		}
		for i, h := range headers {
			if i == dateIdx || i == timeIdx || h == "" || i >= len(record) {
				continue
			}
			row.Fields[h] = record[i]
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// FixLastColumn cleans the trailing field of a record: surrounding whitespace,
// a stray BOM and a dangling closing quote are removed.
func FixLastColumn(field string) string {
	s := strings.TrimSpace(field)
	s = strings.TrimPrefix(s, bom)
	if strings.HasSuffix(s, `"`) && !strings.HasPrefix(s, `"`) {
		s = s[:len(s)-1]
	}
	return s
}

func normalizeRecord(record []string) []string {
	for i := range record {
		record[i] = strings.TrimSpace(strings.TrimPrefix(record[i], bom))
	}
	if n := len(record); n > 0 {
		record[n-1] = FixLastColumn(record[n-1])
	}
	return record
}

// uniqueHeaders numbers repeated names from 2 on. The number goes before a
// trailing unit bracket so "Core Clock [MHz]" repeats as "Core Clock #2 [MHz]".
func uniqueHeaders(header []string) []string {
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		seen[h]++
		if h == "" || seen[h] == 1 {
			out[i] = h
			continue
		}
		name := numbered(h, seen[h])
		for taken[name] {
			seen[h]++
			name = numbered(h, seen[h])
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

func numbered(h string, n int) string {
	if i := strings.LastIndex(h, "["); i > 0 && strings.HasSuffix(h, "]") {
		return fmt.Sprintf("%s #%d %s", strings.TrimSpace(h[:i]), n, h[i:])
	}
	return fmt.Sprintf("%s #%d", h, n)
}

func cell(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

func isBlank(record []string) bool {
	for _, f := range record {
		if f != "" {
			return false
		}
	}
	return true
}
