// Package boundscheck provides the overflow-safe arithmetic and alignment
// validation the allocator core needs at the boundary of the managed
// region: every size normalization and top-block extension must reject
// wraparound before it corrupts a descriptor.
package boundscheck

import "math"

// AddOverflows reports whether a+b would exceed the representable range of
// uint64.
func AddOverflows(a, b uint64) bool {
	return a > math.MaxUint64-b
}

// MulOverflows reports whether a*b would exceed the representable range of
// uint64. a==0 or b==0 never overflows.
func MulOverflows(a, b uint64) bool {
	if a == 0 || b == 0 {
		return false
	}
	return a > math.MaxUint64/b
}

// IsPowerOfTwo reports whether n is a power of two. Zero is not a power of
// two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignUp rounds n up to the next multiple of alignment, which must be a
// power of two. Reports overflow via ok=false instead of wrapping.
func AlignUp(n, alignment uint64) (result uint64, ok bool) {
	mask := alignment - 1
	if AddOverflows(n, mask) {
		return 0, false
	}
	return (n + mask) &^ mask, true
}

// WithinRegion reports whether [addr, addr+size) lies within [lo, hi),
// guarding the addition against overflow first.
func WithinRegion(addr, size, lo, hi uint64) bool {
	if AddOverflows(addr, size) {
		return false
	}
	end := addr + size
	return addr >= lo && end <= hi
}
