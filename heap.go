// Package tinyalloc implements a tiny general-purpose heap allocator over a
// caller-supplied, contiguous byte region: a fixed-capacity pool of block
// descriptors threaded into three lists (free, used, fresh) backing an
// address-ordered, coalescing, first-fit allocator.
//
// A Heap is not safe for concurrent use; every operation must be serialized
// externally, exactly as the allocator it implements is specified to be
// single-actor.
package tinyalloc

import (
	"github.com/nanoheap/tinyalloc/internal/boundscheck"
	"github.com/nanoheap/tinyalloc/internal/descriptor"
	"github.com/nanoheap/tinyalloc/internal/freelist"
	"github.com/nanoheap/tinyalloc/internal/usedlist"
)

// Ptr is an opaque address into a Heap's region. The zero value, Null,
// never labels a live allocation; Allocate/Reallocate return it on failure
// and Free(Null) always fails.
//
// Ptr deliberately is not a Go pointer: it carries no provenance over the
// region slice and must be translated back to an offset before any byte
// access, keeping every access within the bounds the region slice itself
// already guarantees.
type Ptr uint64

// Null is the pointer value representing "no allocation".
const Null Ptr = 0

// Heap manages a caller-supplied byte region, carving it into blocks on
// demand. The descriptor pool backing the free/used/fresh lists is owned by
// the Heap itself rather than inlined into region, the one place this
// implementation diverges from the reference design's inline layout (see
// the design notes on descriptor/region decoupling); the external contract
// — three lists, a top watermark, max_blocks capacity — is unchanged.
type Heap struct {
	region []byte
	limit  uint64 // exclusive end, == uint64(len(region))
	top    uint64 // smallest address in region never handed out

	pool       *descriptor.Pool
	free       *freelist.List
	used       *usedlist.List
	fresh      descriptor.Handle // head of the fresh (unclaimed) list
	freshCount int
	cfg        Config

	lastErr error
}

// New initializes a Heap over region with the given fixed descriptor
// capacity. region must already be addressable and writeable for its full
// length; the Heap never resizes it.
func New(region []byte, maxBlocks int, opts ...Option) (*Heap, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !boundscheck.IsPowerOfTwo(cfg.alignment) {
		return nil, &Error{Kind: KindOutOfMemory}
	}

	pool, freshHead := descriptor.NewPool(maxBlocks)
	h := &Heap{
		region:     region,
		limit:      uint64(len(region)),
		top:        0,
		pool:       pool,
		free:       freelist.New(pool),
		used:       usedlist.New(pool),
		fresh:      freshHead,
		freshCount: maxBlocks,
		cfg:        cfg,
	}
	return h, nil
}

// claimFresh pops a descriptor off the fresh list, or returns
// descriptor.None if none remain.
func (h *Heap) claimFresh() descriptor.Handle {
	hnd := h.fresh
	if hnd == descriptor.None {
		return descriptor.None
	}
	h.fresh = h.pool.At(hnd).Next
	h.freshCount--
	return hnd
}

// releaseFresh returns a descriptor to the fresh list, clearing its
// payload: the free -> fresh transition the coalescer runs for every
// descriptor it absorbs.
func (h *Heap) releaseFresh(hnd descriptor.Handle) {
	addr := h.pool.At(hnd).Addr
	h.pool.Reset(hnd)
	h.pool.At(hnd).Next = h.fresh
	h.fresh = hnd
	h.freshCount++
	h.trace(TagRelease, addr)
}

// insertFree adds hnd to the free list, respecting the coalesce policy: an
// address-sorted splice when coalescing is enabled, or an unconditional
// head-insert (LIFO) when it is disabled, per WithoutCoalescing's contract.
func (h *Heap) insertFree(hnd descriptor.Handle) {
	if h.cfg.coalesce {
		h.free.InsertSorted(hnd)
	} else {
		h.free.PrependHead(hnd)
	}
}

func (h *Heap) trace(tag Tag, value uint64) {
	if h.cfg.trace != nil {
		h.cfg.trace(tag, value)
	}
}

func (h *Heap) setErr(err *Error) {
	h.lastErr = err
}

// LastError returns the structured reason the most recent failing
// operation returned false/Null, or nil if the most recent operation
// succeeded. This is the per-Heap analogue of the optional errno-like
// global named in the allocator's error handling design — a package-level
// global would be wrong for an explicitly single-actor, possibly
// multiply-instantiated allocator.
func (h *Heap) LastError() error {
	return h.lastErr
}

// addrToPtr converts an internal 0-based region offset to the external Ptr
// representation, reserving Ptr(0) for Null.
func addrToPtr(addr uint64) Ptr {
	return Ptr(addr + 1)
}

// ptrToAddr converts an external Ptr back to a region offset, reporting ok
// = false for Null.
func ptrToAddr(p Ptr) (addr uint64, ok bool) {
	if p == Null {
		return 0, false
	}
	return uint64(p) - 1, true
}

// CountFree returns the number of descriptors currently on the free list.
func (h *Heap) CountFree() int { return h.free.Count }

// CountUsed returns the number of descriptors currently on the used list.
func (h *Heap) CountUsed() int { return h.used.Count }

// CountFresh returns the number of descriptors currently unclaimed.
func (h *Heap) CountFresh() int { return h.freshCount }

// Check reports whether the three list cardinalities sum to max_blocks,
// the allocator's fundamental sum-law invariant.
func (h *Heap) Check() bool {
	return h.free.Count+h.used.Count+h.CountFresh() == h.pool.Cap()
}
