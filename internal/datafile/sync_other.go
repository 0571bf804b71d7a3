//go:build !linux

package datafile

import "os"

func allocate(f *os.File, size int64) error {
	return f.Truncate(size)
}

func syncFile(f *os.File) error {
	return f.Sync()
}
