//go:build linux

package datafile

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// allocate reserves size bytes of disk for f so later page writes cannot fail
// for lack of space. Filesystems without fallocate get a sparse file.
func allocate(f *os.File, size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return f.Truncate(size)
	}
	return err
}

// syncFile flushes file data, skipping metadata that is not needed to read
// it back.
func syncFile(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
