package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, paths []string, debounce time.Duration) (*FileWatcher, context.CancelFunc) {
	t.Helper()
	fw, err := NewFileWatcher(paths, debounce)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go fw.Run(ctx)
	t.Cleanup(func() {
		cancel()
		_ = fw.Close()
	})
	return fw, cancel
}

func TestNewFileWatcherRequiresPaths(t *testing.T) {
	_, err := NewFileWatcher(nil, 0)
	assert.Error(t, err)
}

func TestNewFileWatcherMissingDirectory(t *testing.T) {
	_, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nope", "log.csv")}, 0)
	assert.Error(t, err)
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Time\n"), 0644))

	fw, _ := startWatcher(t, []string{path}, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		require.NoError(t, err)
		_, err = f.WriteString("1.1.2025,00:00:00\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case ev := <-fw.Events():
		assert.Equal(t, path, ev.Path)
		assert.NotEmpty(t, ev.Op)
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}

	select {
	case ev := <-fw.Events():
		t.Fatalf("unexpected second event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Time\n"), 0644))

	fw, _ := startWatcher(t, []string{path}, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0644))

	select {
	case ev := <-fw.Events():
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherSeesReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	fw, _ := startWatcher(t, []string{path}, 20*time.Millisecond)

	tmp := filepath.Join(dir, "log.csv.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("b"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case ev := <-fw.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}
}

func TestRunClosesEventsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	fw, cancel := startWatcher(t, []string{path}, 0)
	cancel()

	select {
	case _, ok := <-fw.Events():
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("events channel not closed")
	}
}
