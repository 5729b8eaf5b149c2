//go:build linux

package snapshot

import (
	"golang.org/x/sys/unix"
)

// Fdatasync flushes file data to stable storage without forcing a metadata update.
func Fdatasync(fd uintptr) error {
	return unix.Fdatasync(int(fd))
}
