package formatter

import (
	"os"

	"github.com/penwyp/go-hwlog-viewer/internal/util"
	"golang.org/x/term"
)

const (
	fallbackWidth = 100
	minWidth      = 40
)

// TerminalWidth returns the width of the terminal on stdout, or a fallback
// when stdout is not a terminal.
func TerminalWidth() int {
	return widthOf(int(os.Stdout.Fd()))
}

func widthOf(fd int) int {
	if !term.IsTerminal(fd) {
		return fallbackWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w < minWidth {
		util.LogDebugf("terminal width unavailable (%v), using %d", err, fallbackWidth)
		return fallbackWidth
	}
	return w
}
