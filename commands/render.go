package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/pipeline"
	"github.com/penwyp/go-hwlog-viewer/internal/core/series"
	"github.com/penwyp/go-hwlog-viewer/internal/core/timestamp"
	"github.com/penwyp/go-hwlog-viewer/internal/data/cache"
	"github.com/penwyp/go-hwlog-viewer/internal/data/reader"
	"github.com/penwyp/go-hwlog-viewer/internal/presentation/export"
	"github.com/penwyp/go-hwlog-viewer/internal/presentation/formatter"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
	"github.com/spf13/cobra"
)

const formatSummary = "summary"

type renderRequest struct {
	path  string
	field string
	prefs model.ChartPrefs
}

// renderer loads datasets through the cache and memoizes render results per
// dataset version, field and preferences.
type renderer struct {
	cache   *cache.DatasetCache
	memo    *pipeline.Memo
	builder *series.Builder
}

func newRenderer() *renderer {
	loc := util.GetTimeProvider().Location()
	return &renderer{
		cache:   cache.NewDatasetCache(),
		memo:    pipeline.NewMemo(pipeline.DefaultMemoSize),
		builder: series.NewBuilder(timestamp.NewResolver(loc)),
	}
}

func (r *renderer) render(req renderRequest) (model.RenderResult, error) {
	entry, hit, err := r.cache.Load(req.path, reader.Options{Encoding: encoding})
	if err != nil {
		return model.RenderResult{}, err
	}

	fieldKey, err := resolveField(entry.Dataset, req.field)
	if err != nil {
		return model.RenderResult{}, err
	}

	key := pipeline.NewMemoKey(entry.Version, fieldKey, req.prefs)
	if pruned := r.memo.Prune(entry.Version); pruned > 0 {
		util.LogDebugf("dropped %d results of older dataset versions", pruned)
	}

	result, err := r.memo.GetOrCompute(key, func() (model.RenderResult, error) {
		s, stats, err := r.builder.Build(entry.Dataset.Rows, fieldKey)
		if err != nil {
			return model.RenderResult{}, err
		}
		return pipeline.Render(s, stats, req.prefs), nil
	})
	if err != nil {
		return model.RenderResult{}, err
	}

	util.LogDebugf("rendered %q from %s (%s, cache hit %t, v%d): %d of %d points",
		fieldKey, req.path, util.FormatBytes(entry.Info.Size), hit, entry.Version,
		len(result.Series.Main), result.Series.Meta.SourcePointCount)
	return result, nil
}

// duplicateNumber matches the " #2" the reader appends to repeated base names.
var duplicateNumber = regexp.MustCompile(`\s+#\d+$`)

// resolveField finds the column for name: an exact header first, then a
// unique case-insensitive match on the header or its base name. A base name
// also matches its numbered repeats, so "Core Clock" is ambiguous when the log
// has both "Core Clock [MHz]" and "Core Clock #2 [MHz]".
func resolveField(ds *reader.Dataset, name string) (string, error) {
	if ds.HasField(name) {
		return name, nil
	}

	want := strings.ToLower(strings.TrimSpace(name))
	var matches []string
	for _, f := range ds.SensorFields {
		base := strings.ToLower(label.ParseSensorLabel(f).BaseName)
		if strings.ToLower(f) == want || base == want || duplicateNumber.ReplaceAllString(base, "") == want {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: %q (use the fields command to list columns)", series.ErrUnrecognizedField, name)
	}
	return "", fmt.Errorf("field %q is ambiguous: %s", name, strings.Join(matches, ", "))
}

// writeResult writes the result in the selected format to --out or stdout.
func writeResult(cmd *cobra.Command, result model.RenderResult, p model.ChartPrefs) error {
	format := strings.ToLower(strings.TrimSpace(outputFormat))
	loc := util.GetTimeProvider().Location()

	write := func(w io.Writer) error {
		if format == formatSummary {
			return formatter.NewSummaryFormatter(w, label.NewFormatter(p.Locale), loc).Format(result)
		}
		exporter, err := export.ForFormat(format)
		if err != nil {
			return err
		}
		return exporter.Export(w, export.Document{Result: result, Locale: p.Locale, Location: loc})
	}

	if format != formatSummary {
		exporter, err := export.ForFormat(format)
		if err != nil {
			return err
		}
		if exporter.Binary() && outPath == "" {
			return fmt.Errorf("output format '%s' is binary: use --out to choose a file", format)
		}
	}

	if outPath == "" {
		return write(cmd.OutOrStdout())
	}
	return writeFileAtomic(expandPath(outPath), write)
}

// writeFileAtomic writes to a temp file and renames it over path.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	werr := write(f)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
