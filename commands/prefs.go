package commands

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-hwlog-viewer/internal/core/sampling"
	"github.com/penwyp/go-hwlog-viewer/internal/data/prefs"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change the saved chart preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved preferences as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := prefs.NewStore(expandPath(prefsPath))
		data, err := sonic.MarshalIndent(store.Load(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", store.Path(), data)
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := prefs.NewStore(expandPath(prefsPath))
		if _, err := store.Reset(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Preferences reset (%s)\n", store.Path())
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change one or more preferences and save them",
	Long: `Applies each key=value assignment in order and saves the result.
Nothing is saved when any assignment is invalid.

Keys: smooth, showArea, connectNulls, sampling, samplingPoints, yAxisScale,
warn.enabled, warn.min, warn.max (null clears a bound), locale`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrefsSet,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsShowCmd, prefsResetCmd, prefsSetCmd)

	prefsSetCmd.Long += "\n\n" + sampling.NewDefaultRegistry().Summary()
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	store := prefs.NewStore(expandPath(prefsPath))
	p := store.Load()
	for _, a := range args {
		next, err := prefs.Set(p, a)
		if err != nil {
			return err
		}
		p = next
	}
	if err := store.Save(p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d change(s) to %s\n", len(args), store.Path())
	return nil
}
