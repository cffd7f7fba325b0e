package label

import (
	"regexp"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

// Only the last trailing "[...]" group is the unit.
var unitPattern = regexp.MustCompile(`^(.*?)(?:\s*\[([^\]]*)\])\s*$`)

// ParseSensorLabel splits a header like "下载总计 [MB]" into base name and unit.
// An empty bracket pair yields no unit.
func ParseSensorLabel(raw string) model.SensorLabelMeta {
	trimmed := strings.TrimSpace(raw)

	m := unitPattern.FindStringSubmatch(raw)
	if m == nil {
		return model.SensorLabelMeta{Raw: raw, BaseName: trimmed}
	}

	meta := model.SensorLabelMeta{Raw: raw, BaseName: strings.TrimSpace(m[1])}
	if meta.BaseName == "" {
		meta.BaseName = trimmed
	}
	if unit := strings.TrimSpace(m[2]); unit != "" {
		meta.Unit = &unit
	}
	return meta
}
