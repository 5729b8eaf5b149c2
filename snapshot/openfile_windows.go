//go:build windows

package snapshot

import (
	"os"

	"golang.org/x/sys/windows"
)

// OpenFile opens a file with the specified name and flags, returning a file handle.
// Snapshots are written once front to back, so the handle is opened for sequential access.
func OpenFile(name string, flags int, perm uint32) (uintptr, error) {
	var access uint32
	var creation uint32

	switch flags & (windows.O_RDONLY | windows.O_WRONLY | windows.O_RDWR) {
	case windows.O_WRONLY:
		access = windows.GENERIC_WRITE
	case windows.O_RDWR:
		access = windows.GENERIC_READ | windows.GENERIC_WRITE
	default:
		access = windows.GENERIC_READ
	}

	hasCreate := flags&windows.O_CREAT != 0
	hasTrunc := flags&windows.O_TRUNC != 0
	hasExcl := flags&windows.O_EXCL != 0

	switch {
	case hasCreate && hasExcl:
		creation = windows.CREATE_NEW
	case hasCreate && hasTrunc:
		creation = windows.CREATE_ALWAYS
	case hasCreate:
		creation = windows.OPEN_ALWAYS
	case hasTrunc:
		creation = windows.TRUNCATE_EXISTING
	default:
		creation = windows.OPEN_EXISTING
	}

	attrs := uint32(windows.FILE_FLAG_SEQUENTIAL_SCAN)
	if perm&0200 == 0 {
		attrs |= windows.FILE_ATTRIBUTE_READONLY
	}

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}

	handle, err := windows.CreateFile(
		namePtr,
		access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		creation,
		attrs,
		0,
	)
	if err != nil {
		return 0, err
	}

	return uintptr(handle), nil
}

// NewFileFromFd creates a new os.File from a file descriptor handle and a name.
func NewFileFromFd(handle uintptr, name string) *os.File {
	return os.NewFile(handle, name)
}
