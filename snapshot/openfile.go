//go:build darwin || linux || freebsd || netbsd || openbsd

package snapshot

import (
	"os"
	"syscall"
)

// OpenFile opens a file with the specified name and flags, returning a file handle.
func OpenFile(name string, flags int, perm uint32) (uintptr, error) {
	fd, err := syscall.Open(name, flags|syscall.O_CLOEXEC, perm)
	if err != nil {
		return 0, err
	}
	return uintptr(fd), nil
}

// NewFileFromFd creates a new os.File from a file descriptor handle and a name.
func NewFileFromFd(handle uintptr, name string) *os.File {
	return os.NewFile(handle, name)
}
