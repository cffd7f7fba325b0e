package util

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileInfo identifies one version of a file on disk.
type FileInfo struct {
	ModTime int64  // modification time, unix nanoseconds
	Size    int64  // size in bytes
	Inode   uint64 // changes when the file is replaced rather than appended to
}

// GetFileInfo stats path. Supported on Linux and macOS.
func GetFileInfo(path string) (*FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &FileInfo{
		ModTime: fi.ModTime().UnixNano(),
		Size:    fi.Size(),
		Inode:   uint64(st.Ino),
	}, nil
}
