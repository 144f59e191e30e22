// sync_other.go
//go:build !linux

package bufpool

import "os"

func fdatasync(f *os.File) error {
	return f.Sync()
}
