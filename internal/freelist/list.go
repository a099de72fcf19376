// Package freelist implements the address-sorted, coalescing free list of
// block descriptors described by the allocator's data model: insertion
// keeps the list strictly ordered by address, and compaction absorbs
// adjacent free regions into a single descriptor.
package freelist

import "github.com/nanoheap/tinyalloc/internal/descriptor"

// List is the address-sorted singly-linked free list. It holds no state of
// its own beyond the head handle and a running count; descriptor storage
// lives in the shared Pool.
type List struct {
	pool  *descriptor.Pool
	Head  descriptor.Handle
	Count int
}

// New returns an empty free list backed by pool.
func New(pool *descriptor.Pool) *List {
	return &List{pool: pool, Head: descriptor.None}
}

// InsertSorted splices h into the list so addresses remain strictly
// ascending, per §4.4: walk maintaining prev, stop at the first entry whose
// addr is >= the inserted block's addr, splice between prev and that entry.
func (l *List) InsertSorted(h descriptor.Handle) {
	addr := l.pool.At(h).Addr

	if l.Head == descriptor.None || l.pool.At(l.Head).Addr >= addr {
		l.pool.At(h).Next = l.Head
		l.Head = h
		l.Count++
		return
	}

	prev := l.Head
	for {
		next := l.pool.At(prev).Next
		if next == descriptor.None || l.pool.At(next).Addr >= addr {
			break
		}
		prev = next
	}
	l.pool.At(h).Next = l.pool.At(prev).Next
	l.pool.At(prev).Next = h
	l.Count++
}

// PrependHead splices h onto the head of the list unconditionally, without
// regard to address order. This is the insertion mode used when coalescing
// is disabled: the reference allocator's non-coalescing build (tinyalloc.c's
// `#else` branch of insert_block) makes the free list LIFO instead of
// address-sorted.
func (l *List) PrependHead(h descriptor.Handle) {
	l.pool.At(h).Next = l.Head
	l.Head = h
	l.Count++
}

// Find returns the first handle satisfying pred along with its predecessor
// (descriptor.None if it is the head), implementing first-fit tie-breaking:
// the first candidate matching pred wins.
func (l *List) Find(pred func(*descriptor.Block) bool) (h, prev descriptor.Handle) {
	prev = descriptor.None
	for cur := l.Head; cur != descriptor.None; cur = l.pool.At(cur).Next {
		if pred(l.pool.At(cur)) {
			return cur, prev
		}
		prev = cur
	}
	return descriptor.None, descriptor.None
}

// Unlink removes the node at h, given its predecessor prev (descriptor.None
// if h is the current head). The caller obtains (h, prev) from Find.
func (l *List) Unlink(h, prev descriptor.Handle) {
	next := l.pool.At(h).Next
	if prev == descriptor.None {
		l.Head = next
	} else {
		l.pool.At(prev).Next = next
	}
	l.Count--
}

// Compact performs the coalescing pass specified in §4.5: scanning from the
// head, each block absorbs every immediately adjacent successor, and every
// absorbed descriptor is handed to release (the caller pushes it back onto
// the fresh list). Returns the number of absorptions performed.
func (l *List) Compact(release func(descriptor.Handle)) int {
	absorbed := 0
	cur := l.Head
	for cur != descriptor.None {
		b := l.pool.At(cur)
		end := b.Addr + b.Size
		next := b.Next
		merged := false
		for next != descriptor.None {
			nb := l.pool.At(next)
			if end != nb.Addr {
				break
			}
			end += nb.Size
			absorb := next
			next = nb.Next
			release(absorb)
			l.Count--
			absorbed++
			merged = true
		}
		if merged {
			b.Size = end - b.Addr
			b.Next = next
		}
		cur = next
	}
	return absorbed
}
