//go:build unix

package physmem

import (
	"errors"

	"golang.org/x/sys/unix"
)

func mapMemory(size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return data, unmapMemory, nil
}

func unmapMemory(data []byte) error {
	if data == nil {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
