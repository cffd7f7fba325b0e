package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

// DefaultDebounce is the quiet period after the last write before an event is emitted.
const DefaultDebounce = 300 * time.Millisecond

// Event reports a change to one of the watched files.
type Event struct {
	Path string
	Op   string
}

// FileWatcher watches a set of files through their parent directories, so
// editors that replace a file by rename are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	events   chan Event

	mu      sync.Mutex
	pending map[string]string
	timer   *time.Timer
}

// NewFileWatcher watches paths. A debounce of zero uses DefaultDebounce.
func NewFileWatcher(paths []string, debounce time.Duration) (*FileWatcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  w,
		files:    make(map[string]struct{}, len(paths)),
		debounce: debounce,
		events:   make(chan Event, 16),
		pending:  make(map[string]string),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		fw.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return fw, nil
}

// Run forwards debounced events until ctx is done or the watcher is closed.
// The Events channel is closed when Run returns.
func (fw *FileWatcher) Run(ctx context.Context) {
	defer close(fw.events)
	defer fw.stopTimer()

	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			fw.schedule(event, fire)

		case <-fire:
			for _, ev := range fw.drain() {
				select {
				case fw.events <- ev:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File watch error: " + err.Error())
		}
	}
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := fw.files[abs]
	return ok
}

func (fw *FileWatcher) schedule(event fsnotify.Event, fire chan<- struct{}) {
	abs, _ := filepath.Abs(event.Name)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.pending[abs] = event.Op.String()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (fw *FileWatcher) drain() []Event {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	out := make([]Event, 0, len(fw.pending))
	for path, op := range fw.pending {
		out = append(out, Event{Path: path, Op: op})
	}
	fw.pending = make(map[string]string)
	return out
}

func (fw *FileWatcher) stopTimer() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
}

func (fw *FileWatcher) Events() <-chan Event {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
