package model

import (
	"math"
	"strconv"
)

// RawRow is one CSV data row as handed over by the reader.
type RawRow struct {
	Date   string
	Time   string
	Fields map[string]string
}

// SensorLabelMeta is the metadata derived from a column header such as "CPU Temperature [°C]".
type SensorLabelMeta struct {
	Raw      string  `json:"raw"`
	BaseName string  `json:"baseName"`
	Unit     *string `json:"unit"`
}

// UnitText returns the unit or an empty string when there is none.
func (m SensorLabelMeta) UnitText() string {
	if m.Unit == nil {
		return ""
	}
	return *m.Unit
}

// Value is a reading that may be missing. A missing value is never aggregated.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a present reading.
func Some(v float64) Value {
	return Value{V: v, Valid: true}
}

// Missing returns an absent reading.
func Missing() Value {
	return Value{}
}

// Get returns the reading and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.V, v.Valid
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.V, 'g', -1, 64), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// SamplePoint is one slot of a series. TimeValid is false when the row's
// date/time text could not be resolved and the timestamp was carried over.
type SamplePoint struct {
	TimestampMs int64 `json:"t"`
	Value       Value `json:"v"`
	TimeValid   bool  `json:"timeValid"`
}

// SensorSeries holds the points of one sensor column in row order.
type SensorSeries struct {
	FieldKey string        `json:"fieldKey"`
	BaseName string        `json:"baseName"`
	Unit     *string       `json:"unit"`
	Points   []SamplePoint `json:"points"`
}

// Label returns the metadata of the series' column.
func (s SensorSeries) Label() SensorLabelMeta {
	return SensorLabelMeta{Raw: s.FieldKey, BaseName: s.BaseName, Unit: s.Unit}
}

// BuildStats are the counters gathered while building a series.
type BuildStats struct {
	Rows              int `json:"rows"`
	InvalidTimeCount  int `json:"invalidTimeCount"`
	UnparseableValues int `json:"unparseableValues"`
	BlankValues       int `json:"blankValues"`
	NonMonotonicCount int `json:"nonMonotonicCount"`
}
