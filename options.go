package tinyalloc

// Config holds the allocator's init-time parameters and policy toggles,
// all of which are treated as immutable once New returns.
type Config struct {
	splitThreshold uint64
	alignment      uint64
	coalesce       bool
	split          bool
	wordWise       bool
	trace          TraceFunc
}

// DefaultConfig mirrors the reference allocator's defaults: 8-byte
// alignment, a 16-byte split threshold, coalescing and splitting both
// enabled, and the runtime's optimized copy/clear path.
func DefaultConfig() Config {
	return Config{
		splitThreshold: 16,
		alignment:      8,
		coalesce:       true,
		split:          true,
	}
}

// Option configures a Heap at construction time.
type Option func(*Config)

// WithSplitThreshold sets the minimum excess required to split on
// allocation, which is also the largest reduction a shrinking reallocate
// keeps in place.
func WithSplitThreshold(n uint64) Option {
	return func(c *Config) { c.splitThreshold = n }
}

// WithAlignment sets the power-of-two alignment used for both size
// rounding and address alignment.
func WithAlignment(n uint64) Option {
	return func(c *Config) { c.alignment = n }
}

// WithoutCoalescing disables the compaction pass; the free list becomes
// LIFO and invariants 3 and 4 (address ordering, no adjacent free blocks)
// no longer hold.
func WithoutCoalescing() Option {
	return func(c *Config) { c.coalesce = false }
}

// WithoutSplitting disables splitting excess from an oversized candidate
// block; the excess remains internal slack of the returned allocation.
func WithoutSplitting() Option {
	return func(c *Config) { c.split = false }
}

// WithWordWiseMemOps selects the word-at-a-time clear/copy fallback instead
// of the Go runtime's optimized builtins, for parity with environments that
// lack standard-library memcpy/memset.
func WithWordWiseMemOps() Option {
	return func(c *Config) { c.wordWise = true }
}

// WithTrace installs a debug trace hook invoked at significant descriptor
// transitions.
func WithTrace(fn TraceFunc) Option {
	return func(c *Config) { c.trace = fn }
}
