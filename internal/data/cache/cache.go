package cache

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/penwyp/go-hwlog-viewer/internal/data/reader"
	"github.com/penwyp/go-hwlog-viewer/internal/util"
)

type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonError
	MissReasonInode
	MissReasonSize
	MissReasonModTime
	MissReasonFingerprint
	MissReasonNoFingerprint
	MissReasonNotFound
	MissReasonEncoding
)

func (r CacheMissReason) String() string {
	switch r {
	case MissReasonNone:
		return "none"
	case MissReasonError:
		return "error"
	case MissReasonInode:
		return "inode"
	case MissReasonSize:
		return "size"
	case MissReasonModTime:
		return "modtime"
	case MissReasonFingerprint:
		return "fingerprint"
	case MissReasonNoFingerprint:
		return "no fingerprint"
	case MissReasonNotFound:
		return "not found"
	case MissReasonEncoding:
		return "encoding"
	}
	return "unknown"
}

// Files untouched for this long skip the fingerprint check.
const fingerprintMaxAge = 48 * time.Hour

// Entry is one parsed log file together with the file state it was read from.
type Entry struct {
	Dataset     *reader.Dataset
	Encoding    string
	Info        util.FileInfo
	Fingerprint string
	Version     uint64
}

type CacheResult struct {
	Entry      *Entry
	Found      bool
	MissReason CacheMissReason
}

// DatasetCache keeps parsed log files in memory. An entry is served only while
// the file on disk still matches it.
type DatasetCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	version uint64
	now     func() time.Time
}

func NewDatasetCache() *DatasetCache {
	return &DatasetCache{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Get returns the cached dataset for path if the file is unchanged. Stale
// entries are dropped.
func (c *DatasetCache) Get(path, encoding string) CacheResult {
	key := cacheKey(path)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return CacheResult{MissReason: MissReasonNotFound}
	}
	if entry.Encoding != encoding {
		return CacheResult{MissReason: MissReasonEncoding}
	}

	if reason := c.validate(key, entry); reason != MissReasonNone {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return CacheResult{MissReason: reason}
	}
	return CacheResult{Entry: entry, Found: true}
}

func (c *DatasetCache) validate(path string, entry *Entry) CacheMissReason {
	current, err := util.GetFileInfo(path)
	if err != nil {
		util.LogDebugf("Cache validation failed for %s: %v", path, err)
		return MissReasonError
	}

	if current.Inode != entry.Info.Inode {
		util.LogDebugf("Cache invalidated for %s: inode changed (cached: %d, current: %d)", path, entry.Info.Inode, current.Inode)
		return MissReasonInode
	}
	if current.Size != entry.Info.Size {
		util.LogDebugf("Cache invalidated for %s: size changed (cached: %d, current: %d)", path, entry.Info.Size, current.Size)
		return MissReasonSize
	}
	if current.ModTime != entry.Info.ModTime {
		util.LogDebugf("Cache invalidated for %s: modtime changed", path)
		return MissReasonModTime
	}

	if c.now().Sub(time.Unix(0, current.ModTime)) > fingerprintMaxAge {
		return MissReasonNone
	}

	if entry.Fingerprint == "" {
		return MissReasonNoFingerprint
	}
	fingerprint, err := util.CalculateFileFingerprint(path)
	if err != nil {
		util.LogDebugf("Cache invalidated for %s: unable to calculate fingerprint: %v", path, err)
		return MissReasonNoFingerprint
	}
	if fingerprint != entry.Fingerprint {
		util.LogDebugf("Cache invalidated for %s: fingerprint mismatch (cached: %s, current: %s)", path, entry.Fingerprint, fingerprint)
		return MissReasonFingerprint
	}
	return MissReasonNone
}

// Set stores ds for path and bumps the cache version.
func (c *DatasetCache) Set(path, encoding string, ds *reader.Dataset) (*Entry, error) {
	key := cacheKey(path)

	info, err := util.GetFileInfo(key)
	if err != nil {
		return nil, err
	}
	fingerprint, err := util.CalculateFileFingerprint(key)
	if err != nil {
		util.LogDebugf("no fingerprint for %s: %v", key, err)
		fingerprint = ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	entry := &Entry{
		Dataset:     ds,
		Encoding:    encoding,
		Info:        *info,
		Fingerprint: fingerprint,
		Version:     c.version,
	}
	c.entries[key] = entry
	return entry, nil
}

// Load returns the cached dataset or reads the file and caches it. The bool
// reports a cache hit.
func (c *DatasetCache) Load(path string, opts reader.Options) (*Entry, bool, error) {
	result := c.Get(path, opts.Encoding)
	if result.Found {
		util.LogDebugf("dataset cache hit: %s (v%d)", path, result.Entry.Version)
		return result.Entry, true, nil
	}
	util.LogDebugf("dataset cache miss: %s (%s)", path, result.MissReason)

	ds, err := reader.ReadFile(path, opts)
	if err != nil {
		return nil, false, err
	}
	entry, err := c.Set(path, opts.Encoding, ds)
	if err != nil {
		return nil, false, fmt.Errorf("failed to cache %s: %w", path, err)
	}
	return entry, false, nil
}

// Invalidate drops the entry for path.
func (c *DatasetCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(path))
}

func (c *DatasetCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Version increases every time a dataset is stored.
func (c *DatasetCache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *DatasetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
