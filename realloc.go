package tinyalloc

import (
	"github.com/nanoheap/tinyalloc/internal/boundscheck"
	"github.com/nanoheap/tinyalloc/internal/descriptor"
	"github.com/nanoheap/tinyalloc/internal/memops"
)

// SizeOf returns the actual block size (after rounding and splitting, not
// the originally requested size) for a live allocation, or 0 if p is not
// live.
func (h *Heap) SizeOf(p Ptr) uint64 {
	addr, ok := ptrToAddr(p)
	if !ok {
		return 0
	}
	hnd, _ := h.used.Find(addr)
	if hnd == descriptor.None {
		return 0
	}
	return h.pool.At(hnd).Size
}

// Bytes returns the payload slice backing a live allocation, sized to its
// actual block size. This is a Go-native convenience the spec's
// language-neutral interface has no equivalent for: callers need some way
// to read and write through p without reaching past the region's bounds.
func (h *Heap) Bytes(p Ptr) ([]byte, bool) {
	addr, ok := ptrToAddr(p)
	if !ok {
		return nil, false
	}
	hnd, _ := h.used.Find(addr)
	if hnd == descriptor.None {
		return nil, false
	}
	b := h.pool.At(hnd)
	return h.region[b.Addr : b.Addr+b.Size], true
}

// ZeroAllocate allocates count*size bytes, checking the product does not
// overflow, and zeroes the entire allocated block (including any unsplit
// internal slack) before returning.
func (h *Heap) ZeroAllocate(count, size uint64) (Ptr, bool) {
	h.lastErr = nil

	if boundscheck.MulOverflows(count, size) {
		h.setErr(&Error{Kind: KindOutOfMemory})
		return Null, false
	}

	p, ok := h.Allocate(count * size)
	if !ok {
		return Null, false
	}
	if buf, ok := h.Bytes(p); ok {
		memops.Zero(buf, h.cfg.wordWise)
	}
	return p, true
}

// Reallocate resizes the allocation at p to n bytes.
//
//   - A Null p falls through to Allocate.
//   - A zero n frees p and returns Null.
//   - A shrink whose reduction is at most the split threshold returns p
//     unchanged.
//   - Otherwise a new block is allocated, min(old, n) bytes are copied, the
//     old block is freed, and the new pointer is returned. If the new
//     allocation fails, the old block is left intact and (Null, false) is
//     returned.
//
// There is deliberately no in-place grow by coalescing with a forward
// neighbour: growth always migrates.
func (h *Heap) Reallocate(p Ptr, n uint64) (Ptr, bool) {
	h.lastErr = nil

	if p == Null {
		return h.Allocate(n)
	}
	if n == 0 {
		h.Free(p)
		return Null, true
	}

	oldSize := h.SizeOf(p)
	if oldSize == 0 {
		h.setErr(&Error{Kind: KindInvalidFree})
		return Null, false
	}

	if n <= oldSize && oldSize-n <= h.cfg.splitThreshold {
		return p, true
	}

	newP, ok := h.Allocate(n)
	if !ok {
		return Null, false
	}

	// Stage the payload through a pooled scratch buffer rather than
	// copying directly between the two region slices, the same
	// read-then-write-elsewhere shape the reference allocator's
	// migrate-on-grow path uses when the source and destination are not
	// known to be addressable as a single slice.
	oldBuf, _ := h.Bytes(p)
	staged := memops.GetScratch(len(oldBuf))
	memops.Copy(staged, oldBuf, h.cfg.wordWise)

	newBuf, _ := h.Bytes(newP)
	memops.Copy(newBuf, staged, h.cfg.wordWise)
	memops.PutScratch(staged)

	h.Free(p)
	return newP, true
}
