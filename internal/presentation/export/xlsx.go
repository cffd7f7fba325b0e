package export

import (
	"fmt"
	"io"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSeries   = "Series"
	sheetBelowMin = "Below Min"
	sheetAboveMax = "Above Max"
	sheetInfo     = "Info"
)

// XLSXExporter writes a workbook with the main series, the two warning
// overlays and an info sheet.
type XLSXExporter struct{}

func (XLSXExporter) Name() string { return "xlsx" }
func (XLSXExporter) Binary() bool { return true }

func (XLSXExporter) Export(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSeries); err != nil {
		return err
	}
	for _, name := range []string{sheetBelowMin, sheetAboveMax, sheetInfo} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	series := doc.Result.Series
	if err := writePointSheet(f, sheetSeries, doc, series.Main); err != nil {
		return err
	}
	if err := writePointSheet(f, sheetBelowMin, doc, series.BelowMin); err != nil {
		return err
	}
	if err := writePointSheet(f, sheetAboveMax, doc, series.AboveMax); err != nil {
		return err
	}
	if err := writeInfoSheet(f, doc); err != nil {
		return err
	}

	return f.Write(w)
}

func writePointSheet(f *excelize.File, sheet string, doc Document, points []model.SamplePoint) error {
	header := []interface{}{"Time", "Timestamp (ms)", "Value", "Formatted"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range doc.Rows(points) {
		var value interface{}
		if v, ok := r.Value.Get(); ok {
			value = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Time, r.TimestampMs, value, r.Formatted}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func writeInfoSheet(f *excelize.File, doc Document) error {
	r := doc.Result
	meta := r.Series.Meta
	values := doc.values()

	rangeText := "-"
	if meta.Range.Valid {
		rangeText = values.FormatValueWithUnit(meta.Range.Min, r.Label.Unit) + " .. " +
			values.FormatValueWithUnit(meta.Range.Max, r.Label.Unit)
	}

	info := [][]interface{}{
		{"Field", r.Label.Raw},
		{"Sensor", r.Label.BaseName},
		{"Unit", r.Label.UnitText()},
		{"Source points", meta.SourcePointCount},
		{"Rendered points", len(r.Series.Main)},
		{"Valid", meta.ValidCount},
		{"Missing", meta.MissingCount},
		{"Invalid time", meta.InvalidTimeCount},
		{"Non-monotonic", meta.NonMonotonicCount},
		{"Range", rangeText},
		{"Y axis", string(r.Axis.Scale)},
		{"Axis fallback", r.Axis.FallbackApplied},
		{"Sampling", string(r.Sampling.Mode)},
		{"Target points", r.Sampling.TargetPointCount},
		{"Duration", util.FormatDuration(msDuration(meta.Span.DurationMs()))},
	}
	for i, row := range info {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetInfo, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
