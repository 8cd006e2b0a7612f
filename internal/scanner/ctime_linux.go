//go:build linux

package scanner

import (
	"os"
	"syscall"
)

// changeTime returns the inode change time when the platform exposes it.
func changeTime(info os.FileInfo, fallback int64) int64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return st.Ctim.Sec
	}
	return fallback
}
