//go:build unix

package store

import "golang.org/x/sys/unix"

// hostPageSize reports the host's memory page size, used only to log a
// hint when BlockSize isn't a multiple of it. Grounded on the teacher's
// diskfs_darwin.go build-tag split for platform-specific sizing queries.
func hostPageSize() int {
	return unix.Getpagesize()
}
