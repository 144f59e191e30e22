// sync_linux.go
//go:build linux

package bufpool

import (
	"os"

	"golang.org/x/sys/unix"
)

// fdatasync flushes file data without forcing a metadata-only update.
func fdatasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
