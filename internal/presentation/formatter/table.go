package formatter

import (
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

const (
	colIndex = iota
	colGroup
	colSensor
	colUnit
	colValid
	colLast
)

// Columns that may be shrunk, in order, and how narrow they may get.
var shrinkable = []struct {
	col int
	min int
}{
	{colSensor, 12},
	{colGroup, 6},
}

// TableFormatter prints the sensor field list as a box table.
type TableFormatter struct {
	w        io.Writer
	maxWidth int
	values   *label.Formatter
	headers  []string
}

// NewTableFormatter writes to w, keeping lines within maxWidth cells when
// maxWidth is positive.
func NewTableFormatter(w io.Writer, maxWidth int, values *label.Formatter) *TableFormatter {
	return &TableFormatter{
		w:        w,
		maxWidth: maxWidth,
		values:   values,
		headers:  []string{"#", "Group", "Sensor", "Unit", "Valid", "Last"},
	}
}

func (f *TableFormatter) Format(rows []FieldRow) error {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = f.rowCells(r)
	}
	widths := f.calculateColumnWidths(cells)

	var b strings.Builder
	f.writeBorder(&b, widths, "top")
	f.writeRow(&b, f.headers, widths)
	f.writeBorder(&b, widths, "middle")
	for _, c := range cells {
		f.writeRow(&b, c, widths)
	}
	f.writeBorder(&b, widths, "bottom")
	b.WriteString(strconv.Itoa(len(rows)) + " fields\n")

	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f *TableFormatter) rowCells(r FieldRow) []string {
	unit := label.NoValue
	if r.Label.Unit != nil {
		unit = *r.Label.Unit
	}
	return []string{
		strconv.Itoa(r.Index),
		r.Group,
		r.Label.BaseName,
		unit,
		util.FormatCount(r.ValidCount),
		f.values.FormatReading(r.Last, r.Label.Unit),
	}
}

func (f *TableFormatter) calculateColumnWidths(cells [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, h := range f.headers {
		widths[i] = util.GetDisplayWidth(h)
	}
	for _, row := range cells {
		for i, v := range row {
			widths[i] = max(widths[i], util.GetDisplayWidth(v))
		}
	}

	if f.maxWidth <= 0 {
		return widths
	}

	// Each column adds two padding cells and one border.
	total := 1
	for _, w := range widths {
		total += w + 3
	}
	for _, s := range shrinkable {
		if total <= f.maxWidth {
			break
		}
		cut := min(total-f.maxWidth, widths[s.col]-s.min)
		if cut > 0 {
			widths[s.col] -= cut
			total -= cut
		}
	}
	return widths
}

func (f *TableFormatter) writeBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, w := range widths {
		b.WriteString(strings.Repeat("─", w+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right + "\n")
}

func (f *TableFormatter) writeRow(b *strings.Builder, values []string, widths []int) {
	b.WriteString("│")
	for i, v := range values {
		v = util.TruncateToWidth(v, widths[i])
		switch i {
		case colIndex, colValid, colLast:
			b.WriteString(" " + util.PadLeft(v, widths[i]) + " │")
		default:
			b.WriteString(" " + util.PadRight(v, widths[i]) + " │")
		}
	}
	b.WriteString("\n")
}
