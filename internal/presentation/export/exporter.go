package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Exporter writes a Document in one output format.
type Exporter interface {
	Name() string
	// Binary formats cannot be written to a terminal.
	Binary() bool
	Export(w io.Writer, doc Document) error
}

var exporters = map[string]Exporter{}

func register(e Exporter) {
	exporters[e.Name()] = e
}

func init() {
	register(JSONExporter{})
	register(CSVExporter{})
	register(XLSXExporter{})
	register(ParquetExporter{})
	register(HTMLExporter{})
	register(PNGExporter{})
}

// ForFormat looks up an exporter by name, case-insensitively.
func ForFormat(name string) (Exporter, error) {
	e, ok := exporters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown export format '%s': must be one of %s", name, strings.Join(Formats(), ", "))
	}
	return e, nil
}

// Formats lists the registered format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
