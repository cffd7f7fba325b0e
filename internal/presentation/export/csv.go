package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVExporter writes the main series, one row per rendered point.
type CSVExporter struct{}

func (CSVExporter) Name() string { return "csv" }
func (CSVExporter) Binary() bool { return false }

func (CSVExporter) Export(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp_ms", "time", "value", "formatted", "time_valid", "below_min", "above_max"}); err != nil {
		return err
	}

	for _, r := range doc.Rows(doc.Result.Series.Main) {
		value := ""
		if v, ok := r.Value.Get(); ok {
			value = strconv.FormatFloat(v, 'f', -1, 64)
		}
		record := []string{
			strconv.FormatInt(r.TimestampMs, 10),
			r.Time,
			value,
			r.Formatted,
			strconv.FormatBool(r.TimeValid),
			strconv.FormatBool(r.BelowMin),
			strconv.FormatBool(r.AboveMax),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
