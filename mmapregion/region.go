//go:build unix

// Package mmapregion backs a tinyalloc.Heap's managed region with a real
// anonymous mmap, for the bare-metal-adjacent case where no language
// runtime heap should be trusted to back the region a Heap carves blocks
// from.
package mmapregion

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Region owns an anonymously-mapped span of memory.
type Region struct {
	bytes []byte
}

// New maps size bytes of anonymous, read-write memory. size is rounded up
// to the system page size by the kernel; the caller sees exactly size
// bytes.
func New(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmapregion: size must be positive, got %d", size)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmapregion: mmap failed: %w", err)
	}
	return &Region{bytes: b}, nil
}

// Bytes returns the mapped region, suitable as the region argument to
// tinyalloc.New. The slice is valid until Close.
func (r *Region) Bytes() []byte {
	return r.bytes
}

// Close unmaps the region. The Region and any slice derived from Bytes
// must not be used afterward.
func (r *Region) Close() error {
	if r.bytes == nil {
		return nil
	}
	err := unix.Munmap(r.bytes)
	r.bytes = nil
	return err
}
