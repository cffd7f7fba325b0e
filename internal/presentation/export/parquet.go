package export

import (
	"io"

	"github.com/parquet-go/parquet-go"
)

// ParquetRow is the column layout of the parquet export.
type ParquetRow struct {
	TimestampMs int64    `parquet:"timestamp_ms"`
	Value       *float64 `parquet:"value,optional"`
	TimeValid   bool     `parquet:"time_valid"`
	BelowMin    bool     `parquet:"below_min"`
	AboveMax    bool     `parquet:"above_max"`
}

// ParquetExporter writes the main series as a single row group.
type ParquetExporter struct{}

func (ParquetExporter) Name() string { return "parquet" }
func (ParquetExporter) Binary() bool { return true }

func (ParquetExporter) Export(w io.Writer, doc Document) error {
	rows := doc.Rows(doc.Result.Series.Main)
	out := make([]ParquetRow, len(rows))
	for i, r := range rows {
		out[i] = ParquetRow{
			TimestampMs: r.TimestampMs,
			TimeValid:   r.TimeValid,
			BelowMin:    r.BelowMin,
			AboveMax:    r.AboveMax,
		}
		if v, ok := r.Value.Get(); ok {
			out[i].Value = &v
		}
	}

	pw := parquet.NewGenericWriter[ParquetRow](w)
	if _, err := pw.Write(out); err != nil {
		_ = pw.Close()
		return err
	}
	return pw.Close()
}
