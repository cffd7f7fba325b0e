package util

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

const fingerprintWindow = 2048

// CalculateFileFingerprint hashes the first and last 2KB of a file. Logs are
// appended to at the end, while a rewritten header changes the start.
func CalculateFileFingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}
	size := stat.Size()

	h := crc32.NewIEEE()
	headSize := min(size, fingerprintWindow)
	if _, err := io.CopyN(h, file, headSize); err != nil {
		return "", err
	}

	if size > fingerprintWindow {
		tailSize := min(size-headSize, fingerprintWindow)
		if _, err := file.Seek(-tailSize, io.SeekEnd); err != nil {
			return "", err
		}
		if _, err := io.CopyN(h, file, tailSize); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%08x-%d", h.Sum32(), size), nil
}
