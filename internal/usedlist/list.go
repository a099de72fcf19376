// Package usedlist implements the unordered list of live allocations: O(U)
// lookup by address, matching the allocator's cost-bound contract (a map
// would give O(1) lookup but is deliberately not used here — see the used
// descriptor's ordering contract in the allocator's data model).
package usedlist

import "github.com/nanoheap/tinyalloc/internal/descriptor"

// List is the unordered singly-linked used list.
type List struct {
	pool  *descriptor.Pool
	Head  descriptor.Handle
	Count int
}

// New returns an empty used list backed by pool.
func New(pool *descriptor.Pool) *List {
	return &List{pool: pool, Head: descriptor.None}
}

// Prepend adds h to the head of the used list. New allocations always enter
// here, per §4.2/§4.1's "prepend to the used list" language.
func (l *List) Prepend(h descriptor.Handle) {
	l.pool.At(h).Next = l.Head
	l.Head = h
	l.Count++
}

// Find walks the list for the descriptor labeling addr, returning it along
// with its predecessor (descriptor.None if it is the head), or
// (descriptor.None, descriptor.None) if addr is not live.
func (l *List) Find(addr uint64) (h, prev descriptor.Handle) {
	prev = descriptor.None
	for cur := l.Head; cur != descriptor.None; cur = l.pool.At(cur).Next {
		if l.pool.At(cur).Addr == addr {
			return cur, prev
		}
		prev = cur
	}
	return descriptor.None, descriptor.None
}

// Unlink removes the node at h given its predecessor prev (descriptor.None
// if h is the current head).
func (l *List) Unlink(h, prev descriptor.Handle) {
	next := l.pool.At(h).Next
	if prev == descriptor.None {
		l.Head = next
	} else {
		l.pool.At(prev).Next = next
	}
	l.Count--
}
