package tinyalloc

import (
	"github.com/nanoheap/tinyalloc/internal/boundscheck"
	"github.com/nanoheap/tinyalloc/internal/descriptor"
)

// normalizeSize rounds n up to the next multiple of alignment, substituting
// alignment for a zero-size request so every allocation gets a unique,
// non-empty address. Reports ok=false on overflow.
func normalizeSize(n, alignment uint64) (size uint64, ok bool) {
	if n == 0 {
		return alignment, true
	}
	return boundscheck.AlignUp(n, alignment)
}

// isTopBlock classifies a free candidate as the top block: its end address
// equals top, and there is enough headroom below limit to grow it to n.
// The headroom check is the safer of the two historical readings named in
// the design notes, so top-block extension never crosses limit.
func (h *Heap) isTopBlock(b *descriptor.Block, n uint64) bool {
	end := b.Addr + b.Size
	if end != h.top {
		return false
	}
	return boundscheck.WithinRegion(b.Addr, n, 0, h.limit)
}

// Allocate returns a pointer to a region of at least n bytes, aligned to
// the configured alignment, disjoint from every other live allocation. It
// returns (Null, false) on OutOfMemory.
func (h *Heap) Allocate(n uint64) (Ptr, bool) {
	h.lastErr = nil

	size, ok := normalizeSize(n, h.cfg.alignment)
	if !ok {
		h.setErr(&Error{Kind: KindOutOfMemory})
		return Null, false
	}

	if hnd, prev, isTop := h.findCandidate(size); hnd != descriptor.None {
		h.free.Unlink(hnd, prev)
		b := h.pool.At(hnd)

		if isTop {
			b.Size = size
			h.top = b.Addr + size
			h.trace(TagResizeTopBlock, b.Addr)
		} else if h.cfg.split {
			h.maybeSplit(b, size)
		}

		h.used.Prepend(hnd)
		h.trace(TagNewSize, size)
		return addrToPtr(b.Addr), true
	}

	return h.allocateFromTop(size)
}

// findCandidate walks the free list for the first block matching first-fit
// acceptance: either it is the top block, or its size is >= the requested
// size. Returns the matched handle, its predecessor, and whether it was
// accepted as a top block.
func (h *Heap) findCandidate(size uint64) (hnd, prev descriptor.Handle, isTop bool) {
	hnd, prev = h.free.Find(func(b *descriptor.Block) bool {
		return h.isTopBlock(b, size) || b.Size >= size
	})
	if hnd == descriptor.None {
		return descriptor.None, descriptor.None, false
	}
	isTop = h.isTopBlock(h.pool.At(hnd), size)
	return hnd, prev, isTop
}

// maybeSplit carves the excess tail of an oversized candidate block into a
// fresh free descriptor, when the excess meets the split threshold and a
// fresh descriptor is available. Otherwise the excess remains internal
// slack of b.
func (h *Heap) maybeSplit(b *descriptor.Block, size uint64) {
	if b.Size <= size {
		return
	}
	excess := b.Size - size
	if excess < h.cfg.splitThreshold {
		return
	}
	tail := h.claimFresh()
	if tail == descriptor.None {
		return
	}
	tailAddr := b.Addr + size
	b.Size = size
	t := h.pool.At(tail)
	t.Addr = tailAddr
	t.Size = excess
	h.insertFree(tail)
	h.trace(TagSplit, tailAddr)
}

// allocateFromTop is the fallback path: carve directly from the top
// watermark when no free-list candidate was accepted.
func (h *Heap) allocateFromTop(size uint64) (Ptr, bool) {
	if !boundscheck.WithinRegion(h.top, size, 0, h.limit) {
		h.setErr(&Error{Kind: KindOutOfMemory})
		return Null, false
	}
	hnd := h.claimFresh()
	if hnd == descriptor.None {
		h.setErr(&Error{Kind: KindOutOfMemory})
		return Null, false
	}
	b := h.pool.At(hnd)
	b.Addr = h.top
	b.Size = size
	h.used.Prepend(hnd)
	h.trace(TagNewTail, b.Addr)
	h.top += size
	return addrToPtr(b.Addr), true
}
