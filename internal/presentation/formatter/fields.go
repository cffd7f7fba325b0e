package formatter

import (
	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/core/series"
	"github.com/penwyp/go-hwlog-viewer/internal/data/groups"
	"github.com/penwyp/go-hwlog-viewer/internal/data/reader"
)

// BuildFieldRows lists the sensor columns of ds in header order. When group is
// not empty only columns inside that group are kept.
func BuildFieldRows(ds *reader.Dataset, classifier *groups.Classifier, group string) []FieldRow {
	rows := make([]FieldRow, 0, len(ds.SensorFields))
	for i, field := range ds.SensorFields {
		if group != "" && !classifier.InGroup(field, group) {
			continue
		}

		row := FieldRow{
			Index: i + 1,
			Group: classifier.GroupName(field),
			Label: label.ParseSensorLabel(field),
		}
		for _, raw := range ds.Rows {
			cell, ok := raw.Fields[field]
			if !ok {
				continue
			}
			if v := series.ParseValue(cell); v.Valid {
				row.ValidCount++
				row.Last = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}
