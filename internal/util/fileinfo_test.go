package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Time\n"), 0644))

	info, err := GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)
	assert.NotZero(t, info.Inode)
	assert.NotZero(t, info.ModTime)

	_, err = GetFileInfo(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestGetFileInfoMatchesStat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Time\n"), 0644))
	mtime := time.Date(2025, 3, 22, 21, 0, 0, 123456789, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	info, err := GetFileInfo(path)
	require.NoError(t, err)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, st.ModTime().UnixNano(), info.ModTime)
	assert.Equal(t, mtime.Unix(), info.ModTime/int64(time.Second))
}

func TestGetFileInfoInodeChangesOnReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))
	before, err := GetFileInfo(path)
	require.NoError(t, err)

	next := filepath.Join(dir, "log.csv.new")
	require.NoError(t, os.WriteFile(next, []byte("b\n"), 0644))
	require.NoError(t, os.Rename(next, path))

	after, err := GetFileInfo(path)
	require.NoError(t, err)
	assert.NotEqual(t, before.Inode, after.Inode)
}

func TestCalculateFileFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")

	small := []byte("Date,Time,CPU [%]\n1.1.2025,00:00:00,5\n")
	require.NoError(t, os.WriteFile(path, small, 0644))
	first, err := CalculateFileFingerprint(path)
	require.NoError(t, err)

	again, err := CalculateFileFingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// append past both windows
	big := append([]byte{}, small...)
	for len(big) < 3*fingerprintWindow {
		big = append(big, []byte("1.1.2025,00:00:01,6\n")...)
	}
	require.NoError(t, os.WriteFile(path, big, 0644))
	grown, err := CalculateFileFingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, grown)

	// same size, different tail
	big[len(big)-2] = '7'
	require.NoError(t, os.WriteFile(path, big, 0644))
	changed, err := CalculateFileFingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, grown, changed)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	fp, err := CalculateFileFingerprint(empty)
	require.NoError(t, err)
	assert.Equal(t, "00000000-0", fp)
}
