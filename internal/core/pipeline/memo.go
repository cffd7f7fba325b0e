package pipeline

import (
	"sync"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

// DefaultMemoSize bounds the number of cached render results.
const DefaultMemoSize = 64

// MemoKey identifies a render result. Results are pure functions of the key.
type MemoKey struct {
	DatasetVersion uint64
	FieldKey       string
	PrefsKey       string
}

// NewMemoKey builds the key for a render request.
func NewMemoKey(datasetVersion uint64, fieldKey string, prefs model.ChartPrefs) MemoKey {
	return MemoKey{DatasetVersion: datasetVersion, FieldKey: fieldKey, PrefsKey: prefs.Key()}
}

type memoEntry struct {
	result       model.RenderResult
	lastAccessed int64
}

// Memo caches render results, evicting the least recently used entry when full.
type Memo struct {
	mu       sync.Mutex
	entries  map[MemoKey]*memoEntry
	capacity int
	now      func() time.Time
}

func NewMemo(capacity int) *Memo {
	if capacity <= 0 {
		capacity = DefaultMemoSize
	}
	return &Memo{
		entries:  make(map[MemoKey]*memoEntry),
		capacity: capacity,
		now:      time.Now,
	}
}

func (m *Memo) Get(key MemoKey) (model.RenderResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return model.RenderResult{}, false
	}
	entry.lastAccessed = m.now().UnixNano()
	return entry.result, true
}

func (m *Memo) Set(key MemoKey, result model.RenderResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		m.evictOldest()
	}
	m.entries[key] = &memoEntry{result: result, lastAccessed: m.now().UnixNano()}
}

// GetOrCompute returns the cached result for key or computes and stores it.
// A failed computation is not stored.
func (m *Memo) GetOrCompute(key MemoKey, compute func() (model.RenderResult, error)) (model.RenderResult, error) {
	if result, ok := m.Get(key); ok {
		util.LogDebugf("memo hit: %s (dataset v%d)", key.FieldKey, key.DatasetVersion)
		return result, nil
	}
	result, err := compute()
	if err != nil {
		return model.RenderResult{}, err
	}
	m.Set(key, result)
	return result, nil
}

// Prune drops every entry that belongs to another dataset version.
func (m *Memo) Prune(keepVersion uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if key.DatasetVersion != keepVersion {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// caller holds mu
func (m *Memo) evictOldest() {
	var (
		oldestKey MemoKey
		oldest    int64
		found     bool
	)
	for key, entry := range m.entries {
		if !found || entry.lastAccessed < oldest {
			oldestKey, oldest, found = key, entry.lastAccessed, true
		}
	}
	if found {
		delete(m.entries, oldestKey)
	}
}
