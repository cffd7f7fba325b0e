package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/core/label"
	"github.com/penwyp/go-hwlog-viewer/internal/data/groups"
	"github.com/penwyp/go-hwlog-viewer/internal/data/prefs"
	"github.com/penwyp/go-hwlog-viewer/internal/data/reader"
	"github.com/penwyp/go-hwlog-viewer/internal/data/watcher"
	"github.com/penwyp/go-hwlog-viewer/internal/presentation/formatter"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
	"github.com/spf13/cobra"
)

var (
	fieldsGroup      string
	fieldsGroupsFile string
	fieldsWidth      int
	fieldsWatch      bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <file.csv>",
	Short: "List the sensor columns of a log",
	Long: `Lists every sensor column with its group, base name, unit, number of readable
values and the last reading.

Groups come from a YAML file (--groups) or the built-in CPU/GPU/Memory/Storage/
Network/Power/Fans rules. With --watch the list is printed again whenever the
log or the groups file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)

	fieldsCmd.Flags().StringVarP(&fieldsGroup, "group", "g", "",
		"Only list fields in this group (e.g., CPU, CPU/Temperatures, Other)")
	fieldsCmd.Flags().StringVar(&fieldsGroupsFile, "groups", "",
		"YAML sensor group rules file")
	fieldsCmd.Flags().IntVar(&fieldsWidth, "width", 0,
		"Table width (default: terminal width)")
	fieldsCmd.Flags().BoolVarP(&fieldsWatch, "watch", "w", false,
		"Print the list again when the log or the groups file changes")
}

func runFields(cmd *cobra.Command, args []string) error {
	if err := setupRuntime(); err != nil {
		return err
	}
	defer util.CloseLogger()

	path := expandPath(args[0])
	groupsPath := expandPath(fieldsGroupsFile)
	if !fieldsWatch {
		return listFields(cmd, path, groupsPath)
	}

	ctx, stop := signalContext()
	defer stop()
	return watchFields(ctx, cmd, path, groupsPath, watcher.DefaultDebounce)
}

// listFields prints the field table for path. groupsPath may be empty.
func listFields(cmd *cobra.Command, path, groupsPath string) error {
	ds, err := reader.ReadFile(path, reader.Options{Encoding: encoding})
	if err != nil {
		return err
	}

	cfg := groups.Default()
	if groupsPath != "" {
		if cfg, err = groups.Load(groupsPath); err != nil {
			return err
		}
	}
	classifier := groups.NewClassifier(cfg)

	loc := locale
	if loc == "" {
		loc = prefs.NewStore(expandPath(prefsPath)).Load().Locale
	}

	width := fieldsWidth
	if width <= 0 {
		width = formatter.TerminalWidth()
	}

	rows := formatter.BuildFieldRows(ds, classifier, fieldsGroup)
	return formatter.NewTableFormatter(cmd.OutOrStdout(), width, label.NewFormatter(loc)).Format(rows)
}

// watchFields lists the fields once and again after each change to the log or
// the groups file, until ctx is done. Errors after the first listing are
// reported and the previous list stays on screen.
func watchFields(ctx context.Context, cmd *cobra.Command, path, groupsPath string, debounce time.Duration) error {
	paths := []string{path}
	if groupsPath != "" {
		paths = append(paths, groupsPath)
	}

	fw, err := watcher.NewFileWatcher(paths, debounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer fw.Close()
	go fw.Run(ctx)

	if err := listFields(cmd, path, groupsPath); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			util.LogDebugf("fields input changed: %s (%s)", ev.Path, ev.Op)
			if err := listFields(cmd, path, groupsPath); err != nil {
				util.LogWarnf("listing fields after change failed: %v", err)
				fmt.Fprintf(cmd.ErrOrStderr(), "fields failed: %v\n", err)
			}
		}
	}
}
