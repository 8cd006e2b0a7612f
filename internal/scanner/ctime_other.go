//go:build !linux

package scanner

import "os"

// changeTime falls back to the modification time on platforms without a
// portable inode change time.
func changeTime(_ os.FileInfo, fallback int64) int64 {
	return fallback
}
