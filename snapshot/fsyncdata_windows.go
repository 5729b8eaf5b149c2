//go:build windows

package snapshot

import (
	"golang.org/x/sys/windows"
)

// Fdatasync flushes the file buffers of the handle to disk.
func Fdatasync(fd uintptr) error {
	return windows.FlushFileBuffers(windows.Handle(fd))
}
