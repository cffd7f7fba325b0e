package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/core/pipeline"
	"github.com/penwyp/go-hwlog-viewer/internal/core/series"
	"github.com/penwyp/go-hwlog-viewer/internal/data/prefs"
	"github.com/penwyp/go-hwlog-viewer/internal/data/reader"
	"github.com/penwyp/go-hwlog-viewer/internal/testing/fixtures"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const powerField = "CPU Package Power [W]"

func resetFlags() {
	commands := []*cobra.Command{rootCmd, fieldsCmd, watchCmd, prefsCmd, prefsShowCmd, prefsSetCmd, prefsResetCmd}
	for _, c := range commands {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

type testEnv struct {
	dir       string
	logPath   string
	prefsPath string
	spec      fixtures.LogSpec
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	spec := fixtures.LogSpec{
		Start:   time.Date(2025, 3, 22, 21, 0, 0, 0, time.UTC),
		Rows:    10,
		Sensors: fixtures.DefaultSensors(),
		Footer:  true,
	}
	path, err := fixtures.NewTestDataGenerator(dir).GenerateLog("log.csv", spec)
	require.NoError(t, err)
	return testEnv{dir: dir, logPath: path, prefsPath: filepath.Join(dir, "prefs.json"), spec: spec}
}

func (e testEnv) args(extra ...string) []string {
	return append([]string{e.logPath, "--timezone", "UTC", "--prefs", e.prefsPath}, extra...)
}

func TestRenderSummary(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, env.args("--field", powerField)...)
	require.NoError(t, err)
	assert.Contains(t, out, powerField)
	assert.Contains(t, out, "10 source, 10 rendered")
	assert.Contains(t, out, "2025-03-22 21:00:00.000")
	assert.Contains(t, out, "35 W")
}

func TestRenderResolvesBaseName(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, env.args("--field", "cpu package power")...)
	require.NoError(t, err)
	assert.Contains(t, out, powerField)
}

func TestRenderUnknownField(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, env.args("--field", "Nope")...)
	assert.ErrorIs(t, err, series.ErrUnrecognizedField)
}

func TestRenderEmptyColumnIsUnrecognized(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, env.args("--field", "Page File Usage [%]")...)
	assert.ErrorIs(t, err, series.ErrUnrecognizedField)
}

func TestRenderMissingFile(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "none.csv"), "--field", powerField, "--prefs", filepath.Join(t.TempDir(), "p.json"))
	assert.Error(t, err)
}

func TestRenderBinaryNeedsOut(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, env.args("--field", powerField, "-o", "png")...)
	assert.ErrorContains(t, err, "use --out")
}

func TestRenderUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, env.args("--field", powerField, "-o", "pdf")...)
	assert.ErrorContains(t, err, "unknown export format")
}

func TestRenderJSONToStdout(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, env.args("--field", powerField, "-o", "json", "--warn-max", "38", "--points", "5", "--sampling", "max")...)
	require.NoError(t, err)

	var doc struct {
		Result model.RenderResult `json:"result"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Result.Series.Main, 5)
	assert.Equal(t, model.SamplingMax, doc.Result.Sampling.Mode)
	assert.True(t, doc.Result.Warn.Enabled)
	assert.NotEmpty(t, doc.Result.Series.AboveMax)
}

func TestRenderWritesFiles(t *testing.T) {
	for _, format := range []string{"png", "xlsx", "parquet", "html", "csv"} {
		t.Run(format, func(t *testing.T) {
			env := newTestEnv(t)
			out := filepath.Join(env.dir, "out", "chart."+format)

			_, err := execute(t, env.args("--field", powerField, "-o", format, "--out", out)...)
			require.NoError(t, err)

			info, err := os.Stat(out)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))

			_, err = os.Stat(out + ".tmp")
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestRenderSavePrefs(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, env.args("--field", powerField, "--smooth", "--y-scale", "log", "--save-prefs")...)
	require.NoError(t, err)

	saved := prefs.NewStore(env.prefsPath).Load()
	assert.True(t, saved.Smooth)
	assert.Equal(t, model.ScaleLog, saved.Axis.Scale)

	// Saved preferences apply when the flags are not given again.
	out, err := execute(t, env.args("--field", powerField, "-o", "json")...)
	require.NoError(t, err)
	var doc struct {
		Result model.RenderResult `json:"result"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(out), &doc))
	assert.True(t, doc.Result.Hints.Smooth)
	assert.Equal(t, model.ScaleLog, doc.Result.Axis.Scale)
}

func TestRenderDoesNotSaveWithoutFlag(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, env.args("--field", powerField, "--smooth")...)
	require.NoError(t, err)

	_, err = os.Stat(env.prefsPath)
	assert.True(t, os.IsNotExist(err))
}

func TestResolvePrefs(t *testing.T) {
	store := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.json"))
	lo := 5.0
	base := model.DefaultChartPrefs()
	base.Warn = model.WarnConfig{Enabled: true, Min: &lo}
	require.NoError(t, store.Save(base))

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, p model.ChartPrefs)
	}{
		{
			name: "no flags keeps stored values",
			args: nil,
			check: func(t *testing.T, p model.ChartPrefs) {
				assert.Equal(t, base.Key(), p.Key())
			},
		},
		{
			name: "warn max keeps stored min",
			args: []string{"--warn-max", "90"},
			check: func(t *testing.T, p model.ChartPrefs) {
				require.NotNil(t, p.Warn.Min)
				require.NotNil(t, p.Warn.Max)
				assert.Equal(t, 5.0, *p.Warn.Min)
				assert.Equal(t, 90.0, *p.Warn.Max)
				assert.True(t, p.Warn.Enabled)
			},
		},
		{
			name: "no-warn disables",
			args: []string{"--no-warn"},
			check: func(t *testing.T, p model.ChartPrefs) {
				assert.False(t, p.Warn.Enabled)
			},
		},
		{
			name: "area off and nulls on",
			args: []string{"--area=false", "--connect-nulls"},
			check: func(t *testing.T, p model.ChartPrefs) {
				assert.False(t, p.ShowArea)
				assert.True(t, p.ConnectNulls)
			},
		},
		{
			name: "locale normalized",
			args: []string{"--locale", "zh"},
			check: func(t *testing.T, p model.ChartPrefs) {
				assert.Equal(t, "zh-CN", p.Locale)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			require.NoError(t, rootCmd.ParseFlags(tt.args))
			p, err := resolvePrefs(rootCmd, store)
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestResolvePrefsRejectsBadValues(t *testing.T) {
	store := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.json"))

	resetFlags()
	require.NoError(t, rootCmd.ParseFlags([]string{"--sampling", "median"}))
	_, err := resolvePrefs(rootCmd, store)
	assert.ErrorContains(t, err, "invalid sampling mode")
}

func TestResolveField(t *testing.T) {
	ds := &reader.Dataset{SensorFields: []string{"Core Clock [MHz]", "Core Clock #2 [MHz]", "GPU Temp [°C]"}}

	tests := []struct {
		name     string
		input    string
		expected string
		err      string
	}{
		{name: "exact header", input: "GPU Temp [°C]", expected: "GPU Temp [°C]"},
		{name: "base name any case", input: "gpu temp", expected: "GPU Temp [°C]"},
		{name: "header any case", input: "core clock [mhz]", expected: "Core Clock [MHz]"},
		{name: "numbered header", input: "core clock #2 [mhz]", expected: "Core Clock #2 [MHz]"},
		{name: "numbered base name", input: "Core Clock #2", expected: "Core Clock #2 [MHz]"},
		{name: "base name shared with repeat", input: "core clock", err: "ambiguous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveField(ds, tt.input)
			if tt.err != "" {
				assert.ErrorContains(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := resolveField(ds, "fan")
	assert.ErrorIs(t, err, series.ErrUnrecognizedField)
}

func TestFieldsCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "fields", env.logPath, "--prefs", env.prefsPath, "--width", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "CPU Package Power")
	assert.Contains(t, out, "下载总计")
	assert.Contains(t, out, "6 fields")

	out, err = execute(t, "fields", env.logPath, "--prefs", env.prefsPath, "--group", "Network")
	require.NoError(t, err)
	assert.Contains(t, out, "下载总计")
	assert.Contains(t, out, "1 fields")
}

func TestFieldsCommandCustomGroups(t *testing.T) {
	env := newTestEnv(t)
	groupsFile := filepath.Join(env.dir, "groups.yaml")
	require.NoError(t, os.WriteFile(groupsFile, []byte("Thermals:\n  field_pattern: '\\[°C\\]$'\n"), 0644))

	out, err := execute(t, "fields", env.logPath, "--prefs", env.prefsPath, "--groups", groupsFile, "--group", "Thermals")
	require.NoError(t, err)
	assert.Contains(t, out, "CPU Package")
	assert.Contains(t, out, "1 fields")
}

// lockedBuffer is written by the watch loop while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFieldsReloadsGroups(t *testing.T) {
	env := newTestEnv(t)
	groupsFile := filepath.Join(env.dir, "groups.yaml")
	require.NoError(t, os.WriteFile(groupsFile, []byte("Thermals:\n  field_pattern: '\\[°C\\]$'\n"), 0644))

	resetFlags()
	prefsPath = env.prefsPath
	fieldsGroup = "Thermals"
	fieldsWidth = 120
	t.Cleanup(resetFlags)

	var out lockedBuffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- watchFields(ctx, cmd, env.logPath, groupsFile, 50*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1 fields")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(groupsFile, []byte("Thermals:\n  field_pattern: '(\\[°C\\]|\\[V\\])$'\n"), 0644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "2 fields")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "Core VID")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("fields watch did not stop")
	}
}

func TestWatchFieldsKeepsRunningOnBadGroups(t *testing.T) {
	env := newTestEnv(t)
	groupsFile := filepath.Join(env.dir, "groups.yaml")
	require.NoError(t, os.WriteFile(groupsFile, []byte("CPU:\n  field_pattern: '^CPU'\n"), 0644))

	resetFlags()
	prefsPath = env.prefsPath
	t.Cleanup(resetFlags)

	var out lockedBuffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- watchFields(ctx, cmd, env.logPath, groupsFile, 50*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "6 fields")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(groupsFile, []byte("CPU: [unclosed\n"), 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "fields failed")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("fields watch did not stop")
	}
}

func TestPrefsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	out, err := execute(t, "prefs", "set", "smooth=true", "warn.max=85", "--prefs", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 change(s)")

	p := prefs.NewStore(path).Load()
	assert.True(t, p.Smooth)
	require.NotNil(t, p.Warn.Max)
	assert.Equal(t, 85.0, *p.Warn.Max)

	out, err = execute(t, "prefs", "show", "--prefs", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"smooth": true`)

	_, err = execute(t, "prefs", "set", "smooth=false", "bogus=1", "--prefs", path)
	assert.ErrorContains(t, err, "unknown preference")
	assert.True(t, prefs.NewStore(path).Load().Smooth, "nothing saved on error")

	_, err = execute(t, "prefs", "reset", "--prefs", path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultChartPrefs().Key(), prefs.NewStore(path).Load().Key())
}

func TestPrefsSetHelpListsSamplingModes(t *testing.T) {
	out, err := execute(t, "prefs", "set", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "sampling strategies registered")
	assert.Contains(t, out, "lttb")
}

func TestWatchFileRerendersOnAppend(t *testing.T) {
	env := newTestEnv(t)
	// A log that is still being written has no footer yet.
	env.spec.Footer = false
	gen := fixtures.NewTestDataGenerator(env.dir)
	logPath, err := gen.GenerateLog("live.csv", env.spec)
	require.NoError(t, err)
	outFile := filepath.Join(env.dir, "chart.json")

	resetFlags()
	field = powerField
	outputFormat = "json"
	outPath = outFile
	t.Cleanup(resetFlags)

	results := make(chan model.RenderResult, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, rootCmd, logPath, model.DefaultChartPrefs(), 50*time.Millisecond,
			func(_ pipeline.Token, r model.RenderResult) { results <- r })
	}()

	select {
	case r := <-results:
		assert.Equal(t, 10, r.Series.Meta.SourcePointCount)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial render")
	}

	require.NoError(t, gen.AppendRows(logPath, env.spec, 10, 5))

	select {
	case r := <-results:
		assert.Equal(t, 15, r.Series.Meta.SourcePointCount)
	case <-time.After(5 * time.Second):
		t.Fatal("no render after append")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var doc struct {
		Result model.RenderResult `json:"result"`
	}
	require.NoError(t, sonic.Unmarshal(data, &doc))
	assert.Equal(t, 15, doc.Result.Series.Meta.SourcePointCount)
}

func TestWatchFileRejectsUnknownField(t *testing.T) {
	env := newTestEnv(t)

	resetFlags()
	field = "Nope"
	t.Cleanup(resetFlags)

	err := watchFile(context.Background(), rootCmd, env.logPath, model.DefaultChartPrefs(), 0, nil)
	assert.ErrorIs(t, err, series.ErrUnrecognizedField)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	abs, _ := filepath.Abs("relative/path")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "home directory expansion", input: "~/test/path", expected: filepath.Join(home, "test/path")},
		{name: "absolute path unchanged", input: "/absolute/path", expected: "/absolute/path"},
		{name: "relative path converted to absolute", input: "relative/path", expected: abs},
		{name: "empty stays empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandPath(tt.input))
		})
	}
}
