package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// GetDisplayWidth returns the terminal cell width of text; CJK runes take two cells.
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateToWidth cuts text to width cells, marking the cut with "…".
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}

// PadRight fills text with spaces up to width cells.
func PadRight(text string, width int) string {
	return runewidth.FillRight(text, width)
}

// PadLeft right-aligns text within width cells.
func PadLeft(text string, width int) string {
	return runewidth.FillLeft(text, width)
}

// Separator returns a horizontal rule of width cells.
func Separator(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("─", width)
}
