// Package wasmregion adapts a WASM guest's linear memory into the
// contiguous byte region a tinyalloc.Heap carves blocks from — the
// "embedded VM" freestanding environment named in the allocator's purpose
// statement, where no host operating-system allocator is reachable from
// inside the guest.
package wasmregion

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Memory is the narrow slice of github.com/tetratelabs/wazero's api.Memory
// this package actually needs. Defining it locally rather than importing
// api.Memory directly means any value with this shape — wazero's real
// runtime memory, or a test fake — satisfies it without an explicit
// assertion.
type Memory interface {
	Size() uint32
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

const pageSize = 65536

// FromAPIMemory adapts a real wazero-hosted module's linear memory into the
// narrow Memory interface this package depends on. wazero's api.Memory
// satisfies Memory structurally; this function both documents that and
// forces the compiler to check it, so a wazero upgrade that changes the
// method set fails the build here instead of at a call site deep inside a
// host application.
func FromAPIMemory(mem api.Memory) Memory {
	return mem
}

// Region mirrors a WASM guest's linear memory as a Go []byte-like view by
// eagerly materializing it: Snapshot copies the guest's current memory out
// for a Heap to manage, and Flush writes a region back, staging through
// wazero's Read/Write. Read returns a view of guest memory, so Snapshot
// copies it out; the Heap's region is not aliased to guest memory.
type Region struct {
	mem Memory
}

// New wraps mem for snapshot/flush access. basePages reserves the first
// basePages*65536 bytes of guest memory (e.g. for the guest's own static
// data) so the managed region starts after them.
func New(mem Memory, basePages uint32) (*Region, uint32, error) {
	total := mem.Size()
	if basePages > total {
		return nil, 0, fmt.Errorf("wasmregion: base %d pages exceeds guest memory of %d pages", basePages, total)
	}
	return &Region{mem: mem}, basePages * pageSize, nil
}

// Grow requests additional guest memory, returning the base offset (in
// bytes) of the newly available region, or ok=false if the guest refused
// to grow.
func (r *Region) Grow(deltaPages uint32) (baseOffset uint32, ok bool) {
	prev, ok := r.mem.Grow(deltaPages)
	if !ok {
		return 0, false
	}
	return prev * pageSize, true
}

// Snapshot copies byteCount bytes starting at offset out of guest memory.
func (r *Region) Snapshot(offset, byteCount uint32) ([]byte, error) {
	buf, ok := r.mem.Read(offset, byteCount)
	if !ok {
		return nil, fmt.Errorf("wasmregion: read [%d, %d) out of bounds", offset, offset+byteCount)
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// Flush writes data back into guest memory starting at offset.
func (r *Region) Flush(offset uint32, data []byte) error {
	if !r.mem.Write(offset, data) {
		return fmt.Errorf("wasmregion: write [%d, %d) out of bounds", offset, offset+uint32(len(data)))
	}
	return nil
}

// Bytes returns a region of size bytes starting at offset, snapshotted from
// guest memory, suitable as the region argument to tinyalloc.New. Mutations
// to the returned slice are local to the host; call Flush to publish them
// back into the guest.
func (r *Region) Bytes(offset, size uint32) ([]byte, error) {
	return r.Snapshot(offset, size)
}
