// Package download implements the Bitcasa download engine: the size probe,
// the chunk writer, the per-file retry loop, and directory batches that
// resume from a persisted completion record.
package download

import (
	"os"
)

// IsComplete returns the size of localName if it exists as a regular file
// of exactly expectedSize bytes, and 0 otherwise. A missing or unreadable
// file is simply not complete.
//
// An empty remote file is never reported complete, since 0 doubles as "not
// present"; re-fetching it costs nothing.
func IsComplete(localName string, expectedSize int64) int64 {
	info, err := os.Stat(localName)
	if err != nil || !info.Mode().IsRegular() {
		return 0
	}
	if info.Size() != expectedSize {
		return 0
	}
	return info.Size()
}
