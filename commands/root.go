package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/data/prefs"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Input related
	prefsPath string
	encoding  string
	timezone  string
	locale    string

	// Series selection and output
	field        string
	outputFormat string
	outPath      string
	savePrefs    bool

	// Chart preference overrides
	samplingMode string
	samplePoints int
	yScale       string
	warnMin      float64
	warnMax      float64
	noWarn       bool
	connectNulls bool
	smooth       bool
	showArea     bool

	rootCmd = &cobra.Command{
		Use:   "go-hwlog-viewer <file.csv> --field <header> [flags]",
		Short: "HWiNFO sensor log viewer",
		Long: `go-hwlog-viewer reads HWiNFO CSV sensor logs and renders one sensor column as a chart.

Timestamps are resolved from the Date and Time columns, values are downsampled to a
point budget, and readings outside the warning bounds are flagged.

Examples:
  go-hwlog-viewer log.csv --field "CPU Package Power [W]"                  # Text summary
  go-hwlog-viewer log.csv --field "CPU Package [°C]" -o html --out cpu.html
  go-hwlog-viewer log.csv --field "Core VID [V]" --sampling max --points 500 -o png --out vid.png
  go-hwlog-viewer log.csv --field "下载总计 [MB]" --y-scale log --warn-max 4096
  go-hwlog-viewer log.csv --field "Total CPU Usage [%]" --smooth --save-prefs`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}
)

func init() {
	// Shared by every subcommand
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging to the console")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "",
		"Preferences file (default ~/.go-hwlog-viewer/prefs.json)")
	rootCmd.PersistentFlags().StringVar(&encoding, "encoding", "utf-8",
		"Log file encoding (utf-8, gbk, windows-1252, utf-16)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone the log was written in (e.g., Asia/Shanghai, UTC)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "",
		"Number format locale (zh-CN, en-US); overrides the saved preference")

	addRenderFlags(rootCmd)
}

// addRenderFlags registers the flags shared by the render and watch commands.
func addRenderFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&field, "field", "f", "",
		"Sensor column to render (exact header, or a unique name match)")
	flags.StringVarP(&outputFormat, "output", "o", "summary",
		"Output format (summary, json, csv, xlsx, parquet, html, png)")
	flags.StringVar(&outPath, "out", "",
		"Output file (stdout if empty; required for xlsx, parquet and png)")
	flags.BoolVar(&savePrefs, "save-prefs", false,
		"Persist the chart preference flags given on this run")

	flags.StringVar(&samplingMode, "sampling", string(model.SamplingAuto),
		"Downsampling mode (auto, none, lttb, average, max, min)")
	flags.IntVar(&samplePoints, "points", model.DefaultTargetPointCount,
		"Target point count after downsampling")
	flags.StringVar(&yScale, "y-scale", string(model.ScaleLinear),
		"Y axis scale (linear, log)")
	flags.Float64Var(&warnMin, "warn-min", 0,
		"Flag readings below this value (enables warnings)")
	flags.Float64Var(&warnMax, "warn-max", 0,
		"Flag readings above this value (enables warnings)")
	flags.BoolVar(&noWarn, "no-warn", false,
		"Disable warning bounds")
	flags.BoolVar(&connectNulls, "connect-nulls", false,
		"Draw the line across missing readings")
	flags.BoolVar(&smooth, "smooth", false,
		"Smooth the line (html only)")
	flags.BoolVar(&showArea, "area", true,
		"Fill the area under the line")

	_ = cmd.MarkFlagRequired("field")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := setupRuntime(); err != nil {
		return err
	}
	defer util.CloseLogger()

	store := prefs.NewStore(expandPath(prefsPath))
	p, err := resolvePrefs(cmd, store)
	if err != nil {
		return err
	}

	req := renderRequest{
		path:  expandPath(args[0]),
		field: field,
		prefs: p,
	}
	result, err := newRenderer().render(req)
	if err != nil {
		return err
	}

	if err := writeResult(cmd, result, p); err != nil {
		return err
	}

	if savePrefs {
		if err := store.Save(p); err != nil {
			return err
		}
		util.LogInfof("preferences saved to %s", store.Path())
	}
	return nil
}

// setupRuntime initializes logging and the timezone shared by all commands.
func setupRuntime() error {
	if debug {
		logFile := util.DefaultLogFile()
		if err := ensureDir(filepath.Dir(logFile)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		if err := util.InitLogger(util.LoggerOptions{
			Level:   "debug",
			File:    logFile,
			Console: true,
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	if err := util.InitializeTimeProvider(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}
	return nil
}

// resolvePrefs loads the stored preferences and applies the flags that were
// given explicitly on this command line.
func resolvePrefs(cmd *cobra.Command, store *prefs.Store) (model.ChartPrefs, error) {
	p := store.Load()
	flags := cmd.Flags()

	var assignments []string
	if flags.Changed("smooth") {
		assignments = append(assignments, fmt.Sprintf("smooth=%t", smooth))
	}
	if flags.Changed("area") {
		assignments = append(assignments, fmt.Sprintf("showArea=%t", showArea))
	}
	if flags.Changed("connect-nulls") {
		assignments = append(assignments, fmt.Sprintf("connectNulls=%t", connectNulls))
	}
	if flags.Changed("sampling") {
		assignments = append(assignments, "sampling="+samplingMode)
	}
	if flags.Changed("points") {
		assignments = append(assignments, fmt.Sprintf("samplingPoints=%d", samplePoints))
	}
	if flags.Changed("y-scale") {
		assignments = append(assignments, "yAxisScale="+yScale)
	}
	if flags.Changed("warn-min") {
		assignments = append(assignments, fmt.Sprintf("warn.min=%g", warnMin), "warn.enabled=true")
	}
	if flags.Changed("warn-max") {
		assignments = append(assignments, fmt.Sprintf("warn.max=%g", warnMax), "warn.enabled=true")
	}
	if noWarn {
		assignments = append(assignments, "warn.enabled=false")
	}
	if locale != "" {
		assignments = append(assignments, "locale="+locale)
	}

	for _, a := range assignments {
		next, err := prefs.Set(p, a)
		if err != nil {
			return p, err
		}
		p = next
	}
	return p, nil
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
