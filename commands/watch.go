package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/pipeline"
	"github.com/penwyp/go-hwlog-viewer/internal/data/prefs"
	"github.com/penwyp/go-hwlog-viewer/internal/data/watcher"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file.csv> --field <header> [flags]",
	Short: "Re-render a sensor chart whenever the log changes",
	Long: `Renders the chart once, then again each time HWiNFO appends to the log,
until interrupted with Ctrl+C.

Renders may overlap while the log is growing quickly; only the newest one is
written, so an older result never replaces a newer chart.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addRenderFlags(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"Quiet period after a write before re-rendering")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := setupRuntime(); err != nil {
		return err
	}
	defer util.CloseLogger()

	store := prefs.NewStore(expandPath(prefsPath))
	p, err := resolvePrefs(cmd, store)
	if err != nil {
		return err
	}
	if savePrefs {
		if err := store.Save(p); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	return watchFile(ctx, cmd, expandPath(args[0]), p, watchDebounce, nil)
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// watchFile renders path once and then after every change until ctx is done.
// applied is called with each result that was written.
func watchFile(ctx context.Context, cmd *cobra.Command, path string, p model.ChartPrefs,
	debounce time.Duration, applied func(pipeline.Token, model.RenderResult)) error {

	r := newRenderer()
	tracker := pipeline.NewRequestTracker()

	output := func(token pipeline.Token, result model.RenderResult) {
		tracker.Apply(token, func() {
			if err := writeResult(cmd, result, p); err != nil {
				util.LogErrorf("failed to write chart: %v", err)
				fmt.Fprintf(cmd.ErrOrStderr(), "write failed: %v\n", err)
				return
			}
			if outPath != "" {
				meta := result.Series.Meta
				fmt.Fprintf(cmd.ErrOrStderr(), "updated %s: %s points, last reading %s\n",
					outPath, util.FormatCount(meta.SourcePointCount),
					util.GetTimeProvider().FormatMillis(meta.Span.EndMs, "15:04:05"))
			}
			if applied != nil {
				applied(token, result)
			}
		})
	}

	fw, err := watcher.NewFileWatcher([]string{path}, debounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer fw.Close()
	go fw.Run(ctx)

	// The first render is synchronous; its error ends the command.
	first := tracker.Next()
	result, err := r.render(renderRequest{path: path, field: field, prefs: p})
	if err != nil {
		return err
	}
	output(first, result)

	util.LogInfof("watching %s", path)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			util.LogDebugf("log changed: %s (%s)", ev.Path, ev.Op)
			r.cache.Invalidate(ev.Path)

			token := tracker.Next()
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !tracker.IsCurrent(token) {
					tracker.Fail(token)
					return
				}
				result, err := r.render(renderRequest{path: path, field: field, prefs: p})
				if err != nil {
					util.LogWarnf("render after change failed: %v", err)
					fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
					if tracker.Fail(token) {
						util.LogInfof("kept the previous render of %s", path)
					}
					return
				}
				output(token, result)
			}()
		}
	}
}
