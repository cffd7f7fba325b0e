package formatter

import (
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

// FieldRow describes one sensor column of a loaded log.
type FieldRow struct {
	Index      int
	Group      string
	Label      model.SensorLabelMeta
	ValidCount int
	Last       model.Value
}
