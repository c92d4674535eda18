//go:build unix

package serialization

import (
	"os"
	"syscall"
)

// mmapFile maps the whole file read-only and shared.
func mmapFile(f *os.File, size int64) ([]byte, error) {
	//nolint:gosec // G115: size is checked against FixedHeaderSize and the descriptor fits in int
	return syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
}

func munmapFile(data []byte) error {
	return syscall.Munmap(data)
}
