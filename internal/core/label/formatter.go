package label

import (
	"math"
	"regexp"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NoValue is shown for missing or non-finite readings.
const NoValue = "-"

var (
	byteUnitPattern = regexp.MustCompile(`(?i)^(B|KB|KiB|MB|MiB|GB|GiB|TB|TiB)$`)
	gigaUnitPattern = regexp.MustCompile(`(?i)^(GB|GiB)$`)
	rateUnitPattern = regexp.MustCompile(`(?i)/(s|sec)$`)
)

// FormatRule fixes the precision and grouping used for a unit.
type FormatRule struct {
	MaxFractionDigits int
	Grouping          bool
}

// PickRule returns the display rule for a unit; unknown units fall back to a
// magnitude based rule derived from value.
func PickRule(unit string, value float64) FormatRule {
	unit = strings.TrimSpace(unit)

	switch unit {
	case "%":
		return FormatRule{MaxFractionDigits: 1}
	case "℃", "°C", "°F":
		return FormatRule{MaxFractionDigits: 1}
	case "V", "A":
		return FormatRule{MaxFractionDigits: 3}
	case "W":
		return FormatRule{MaxFractionDigits: 1, Grouping: true}
	case "RPM", "MHz", "kHz":
		return FormatRule{MaxFractionDigits: 0, Grouping: true}
	case "GHz":
		return FormatRule{MaxFractionDigits: 1, Grouping: true}
	}

	if byteUnitPattern.MatchString(unit) {
		if gigaUnitPattern.MatchString(unit) {
			return FormatRule{MaxFractionDigits: 1, Grouping: true}
		}
		return FormatRule{MaxFractionDigits: 0, Grouping: true}
	}
	if rateUnitPattern.MatchString(unit) {
		return FormatRule{MaxFractionDigits: 1, Grouping: true}
	}

	abs := math.Abs(value)
	switch {
	case abs == 0:
		return FormatRule{MaxFractionDigits: 0, Grouping: true}
	case abs < 10:
		return FormatRule{MaxFractionDigits: 2, Grouping: true}
	case abs < 100:
		return FormatRule{MaxFractionDigits: 1, Grouping: true}
	default:
		return FormatRule{MaxFractionDigits: 0, Grouping: true}
	}
}

// Formatter formats sensor readings for one locale.
type Formatter struct {
	locale  string
	printer *message.Printer
}

// NewFormatter creates a formatter for the given locale tag (normalized first).
func NewFormatter(locale string) *Formatter {
	normalized := NormalizeLocale(locale)
	return &Formatter{
		locale:  normalized,
		printer: message.NewPrinter(language.Make(normalized)),
	}
}

// Locale returns the normalized locale tag.
func (f *Formatter) Locale() string {
	return f.locale
}

// FormatValue formats v with the rule for unit.
func (f *Formatter) FormatValue(v float64, unit *string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoValue
	}
	rule := PickRule(unitText(unit), v)
	v = roundHalfAway(v, rule.MaxFractionDigits)

	opts := []number.Option{
		number.MinFractionDigits(0),
		number.MaxFractionDigits(rule.MaxFractionDigits),
	}
	if !rule.Grouping {
		opts = append(opts, number.NoSeparator())
	}
	return f.printer.Sprint(number.Decimal(v, opts...))
}

// FormatValueWithUnit appends the unit; "%", "℃" and degree units are attached
// without a space.
func (f *Formatter) FormatValueWithUnit(v float64, unit *string) string {
	text := f.FormatValue(v, unit)
	if text == NoValue {
		return NoValue
	}

	u := strings.TrimSpace(unitText(unit))
	if u == "" {
		return text
	}
	if u == "%" || u == "℃" || strings.HasPrefix(u, "°") {
		return text + u
	}
	return text + " " + u
}

// FormatReading is FormatValueWithUnit for an optional reading.
func (f *Formatter) FormatReading(v model.Value, unit *string) string {
	if !v.Valid {
		return NoValue
	}
	return f.FormatValueWithUnit(v.V, unit)
}

// roundHalfAway rounds to digits decimals with ties away from zero; the
// printer alone would round ties to even.
func roundHalfAway(v float64, digits int) float64 {
	p := math.Pow10(digits)
	scaled := v * p
	if math.Abs(scaled) >= 1<<52 {
		return v
	}
	r := math.Round(scaled) / p
	if r == 0 {
		return 0
	}
	return r
}

func unitText(unit *string) string {
	if unit == nil {
		return ""
	}
	return *unit
}
