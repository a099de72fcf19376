package tinyalloc

import "github.com/nanoheap/tinyalloc/internal/descriptor"

// Free marks p's allocation free, coalescing it with address-neighbours,
// and returns true on success. It returns false when p is Null or does not
// label a live allocation; double-free is reported as failure, not a fatal
// condition.
func (h *Heap) Free(p Ptr) bool {
	h.lastErr = nil

	addr, ok := ptrToAddr(p)
	if !ok {
		h.setErr(&Error{Kind: KindNullPointer})
		return false
	}

	hnd, prev := h.used.Find(addr)
	if hnd == descriptor.None {
		h.setErr(&Error{Kind: KindInvalidFree, Addr: addr})
		return false
	}

	h.used.Unlink(hnd, prev)
	h.trace(TagInsert, addr)
	h.insertFree(hnd)

	if h.cfg.coalesce {
		if h.free.Compact(h.releaseFresh) > 0 {
			h.trace(TagMerge, addr)
		}
	}

	return true
}
