package tinyalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T, maxBlocks int, opts ...Option) *Heap {
	t.Helper()
	region := make([]byte, 4096)
	h, err := New(region, maxBlocks, opts...)
	require.NoError(t, err)
	return h
}

// Scenario 1: init + sanity.
func TestInitSanity(t *testing.T) {
	h := newTestHeap(t, 4)
	assert.Equal(t, 0, h.CountFree())
	assert.Equal(t, 0, h.CountUsed())
	assert.Equal(t, 4, h.CountFresh())
	assert.True(t, h.Check())
}

// Scenario 2: single allocation.
func TestSingleAllocation(t *testing.T) {
	h := newTestHeap(t, 4)
	p1, ok := h.Allocate(24)
	require.True(t, ok)
	assert.NotEqual(t, Null, p1)

	addr, _ := ptrToAddr(p1)
	assert.Equal(t, uint64(0), addr%8)
	assert.Equal(t, 1, h.CountUsed())
	assert.Equal(t, 3, h.CountFresh())
	assert.Equal(t, uint64(24), h.SizeOf(p1))
}

// Scenario 3: allocate-free-reallocate top.
func TestAllocateFreeReallocateTop(t *testing.T) {
	h := newTestHeap(t, 4)
	p1, ok := h.Allocate(24)
	require.True(t, ok)

	ok = h.Free(p1)
	require.True(t, ok)
	assert.Equal(t, 1, h.CountFree())
	assert.Equal(t, 0, h.CountUsed())
	assert.Equal(t, 3, h.CountFresh())

	p2, ok := h.Allocate(16)
	require.True(t, ok)
	assert.Equal(t, p1, p2, "top-block resize should hand back the same address")
	assert.Equal(t, uint64(16), h.SizeOf(p2))
	assert.Equal(t, 0, h.CountFree())
	assert.Equal(t, 1, h.CountUsed())
	assert.Equal(t, 3, h.CountFresh())
}

// Scenario 4: splitting.
func TestSplitting(t *testing.T) {
	h := newTestHeap(t, 4, WithSplitThreshold(16))
	p1, ok := h.Allocate(64)
	require.True(t, ok)
	p2, ok := h.Allocate(8)
	require.True(t, ok)
	_ = p2

	require.True(t, h.Free(p1))

	p3, ok := h.Allocate(16)
	require.True(t, ok)
	assert.Equal(t, p1, p3)

	assert.Equal(t, 1, h.CountFree())
	assert.Equal(t, 2, h.CountUsed())
	assert.Equal(t, 1, h.CountFresh())
}

// Scenario 5: coalescing.
func TestCoalescing(t *testing.T) {
	h := newTestHeap(t, 4)
	a, ok := h.Allocate(16)
	require.True(t, ok)
	b, ok := h.Allocate(16)
	require.True(t, ok)
	c, ok := h.Allocate(16)
	require.True(t, ok)

	require.True(t, h.Free(a))
	require.True(t, h.Free(c))
	require.True(t, h.Free(b))

	assert.Equal(t, 1, h.CountFree())
	assert.Equal(t, 0, h.CountUsed())
	assert.Equal(t, 3, h.CountFresh())
}

// Scenario 6: OOM and recovery.
func TestOOMAndRecovery(t *testing.T) {
	region := make([]byte, 64)
	h, err := New(region, 2)
	require.NoError(t, err)

	p1, ok := h.Allocate(16)
	require.True(t, ok)
	p2, ok := h.Allocate(16)
	require.True(t, ok)

	_, ok = h.Allocate(16)
	assert.False(t, ok)
	assert.True(t, h.Check())

	require.True(t, h.Free(p1))
	p3, ok := h.Allocate(16)
	assert.True(t, ok)
	_ = p2
	_ = p3
}

func TestFreeNullFails(t *testing.T) {
	h := newTestHeap(t, 4)
	assert.False(t, h.Free(Null))
	assert.ErrorIs(t, h.LastError(), ErrNullPointer)
}

func TestFreeUnknownPointerFails(t *testing.T) {
	h := newTestHeap(t, 4)
	p, ok := h.Allocate(16)
	require.True(t, ok)
	require.True(t, h.Free(p))

	assert.False(t, h.Free(p), "double free must fail, not corrupt state")
	assert.ErrorIs(t, h.LastError(), ErrInvalidFree)
}

func TestIdempotentFreeSequence(t *testing.T) {
	h := newTestHeap(t, 4)
	p, ok := h.Allocate(16)
	require.True(t, ok)

	assert.True(t, h.Free(p))
	assert.False(t, h.Free(p))
}

func TestZeroAllocateZeroesEntireBlock(t *testing.T) {
	h := newTestHeap(t, 4)
	p, ok := h.ZeroAllocate(8, 4)
	require.True(t, ok)

	buf, ok := h.Bytes(p)
	require.True(t, ok)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestZeroAllocateOverflow(t *testing.T) {
	h := newTestHeap(t, 4)
	_, ok := h.ZeroAllocate(1<<63, 1<<63)
	assert.False(t, ok)
	assert.ErrorIs(t, h.LastError(), ErrOutOfMemory)
}

func TestReallocateNullFallsThroughToAllocate(t *testing.T) {
	h := newTestHeap(t, 4)
	p, ok := h.Reallocate(Null, 32)
	require.True(t, ok)
	assert.Equal(t, uint64(32), h.SizeOf(p))
}

func TestReallocateZeroFreesAndReturnsNull(t *testing.T) {
	h := newTestHeap(t, 4)
	p, ok := h.Allocate(32)
	require.True(t, ok)

	np, ok := h.Reallocate(p, 0)
	require.True(t, ok)
	assert.Equal(t, Null, np)
	assert.Equal(t, 0, h.CountUsed())
}

func TestReallocateShrinkBelowThresholdKeepsPointer(t *testing.T) {
	h := newTestHeap(t, 4, WithSplitThreshold(16))
	p, ok := h.Allocate(64)
	require.True(t, ok)

	p2, ok := h.Reallocate(p, 56)
	require.True(t, ok)
	assert.Equal(t, p, p2)
}

func TestReallocateGrowMigratesAndPreservesContent(t *testing.T) {
	h := newTestHeap(t, 4)
	p, ok := h.Allocate(16)
	require.True(t, ok)

	buf, _ := h.Bytes(p)
	copy(buf, []byte("hello world12345"))

	p2, ok := h.Reallocate(p, 64)
	require.True(t, ok)

	newBuf, _ := h.Bytes(p2)
	assert.Equal(t, []byte("hello world12345"), newBuf[:16])
}

func TestSizeOfUnknownPointerIsZero(t *testing.T) {
	h := newTestHeap(t, 4)
	assert.Equal(t, uint64(0), h.SizeOf(Null))
	assert.Equal(t, uint64(0), h.SizeOf(Ptr(12345)))
}

func TestCheckAfterManyOperations(t *testing.T) {
	h := newTestHeap(t, 8)
	var ptrs []Ptr
	for i := 0; i < 5; i++ {
		p, ok := h.Allocate(uint64(8 * (i + 1)))
		require.True(t, ok)
		ptrs = append(ptrs, p)
	}
	for _, p := range ptrs {
		require.True(t, h.Free(p))
	}
	assert.True(t, h.Check())
	assert.Equal(t, 7, h.CountFresh())
}

func TestAllocateZeroSizeSubstitutesAlignment(t *testing.T) {
	h := newTestHeap(t, 4, WithAlignment(8))
	p, ok := h.Allocate(0)
	require.True(t, ok)
	assert.Equal(t, uint64(8), h.SizeOf(p))
}

func TestWithoutSplittingNeverCarvesExcess(t *testing.T) {
	h := newTestHeap(t, 4, WithoutSplitting(), WithSplitThreshold(1))
	p1, ok := h.Allocate(64)
	require.True(t, ok)
	_, ok = h.Allocate(8) // advances top past p1 so p1 is not a top block
	require.True(t, ok)
	require.True(t, h.Free(p1))

	p2, ok := h.Allocate(8)
	require.True(t, ok)
	assert.Equal(t, p1, p2)
	assert.Equal(t, uint64(64), h.SizeOf(p2), "excess must remain internal slack")
	assert.Equal(t, 0, h.CountFree())
}

func TestWithoutCoalescingLeavesAdjacentFreeBlocksSeparate(t *testing.T) {
	h := newTestHeap(t, 4, WithoutCoalescing())
	a, ok := h.Allocate(16)
	require.True(t, ok)
	b, ok := h.Allocate(16)
	require.True(t, ok)

	require.True(t, h.Free(a))
	require.True(t, h.Free(b))

	assert.Equal(t, 2, h.CountFree())
}

// The free list must become LIFO, not merely stay unmerged, when coalescing
// is disabled (spec.md §6's "free list becomes LIFO" policy toggle, and
// tinyalloc.c's non-coalescing insert_block variant, which always
// head-inserts rather than splicing in address order).
func TestWithoutCoalescingInsertsAtFreeListHead(t *testing.T) {
	h := newTestHeap(t, 6, WithoutCoalescing())
	a, ok := h.Allocate(16)
	require.True(t, ok)
	_, ok = h.Allocate(16) // b
	require.True(t, ok)
	c, ok := h.Allocate(16)
	require.True(t, ok)
	_, ok = h.Allocate(16) // d, advances top past c so neither a nor c is a top block
	require.True(t, ok)

	require.True(t, h.Free(a))
	require.True(t, h.Free(c))

	// a has the lower address; an address-sorted list would hand it back
	// first. A LIFO list hands back the most recently freed block, c,
	// instead.
	next, ok := h.Allocate(16)
	require.True(t, ok)
	assert.Equal(t, c, next, "coalesce-disabled free list must be LIFO (most recently freed first)")
}

func TestTraceHookReceivesTransitions(t *testing.T) {
	var tags []Tag
	h := newTestHeap(t, 4, WithTrace(func(tag Tag, value uint64) {
		tags = append(tags, tag)
	}))

	p, ok := h.Allocate(16)
	require.True(t, ok)
	require.True(t, h.Free(p))

	assert.Contains(t, tags, TagNewTail)
	assert.Contains(t, tags, TagInsert)
}

func TestWordWiseMemOpsZeroAllocate(t *testing.T) {
	h := newTestHeap(t, 4, WithWordWiseMemOps())
	p, ok := h.ZeroAllocate(4, 4)
	require.True(t, ok)

	buf, _ := h.Bytes(p)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}
