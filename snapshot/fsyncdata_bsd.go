//go:build freebsd || netbsd || openbsd

package snapshot

import (
	"golang.org/x/sys/unix"
)

// Fdatasync falls back to fsync, which every BSD provides.
func Fdatasync(fd uintptr) error {
	return unix.Fsync(int(fd))
}
