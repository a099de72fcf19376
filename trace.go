package tinyalloc

// Tag identifies the kind of transition a TraceFunc is notified about. The
// tag strings match the reference allocator's debug sink verbatim so a test
// harness keyed on them works unmodified.
type Tag string

const (
	TagInsert         Tag = "insert"
	TagNewHead        Tag = "new head"
	TagNewTail        Tag = "new tail"
	TagRelease        Tag = "release"
	TagMerge          Tag = "merge"
	TagNewSize        Tag = "new size"
	TagResizeTopBlock Tag = "resize top block"
	TagSplit          Tag = "split"
)

// TraceFunc receives a (tag, value) pair at each significant descriptor
// transition. value is the address or size most relevant to tag; trace is
// purely diagnostic and never influences allocator behavior.
type TraceFunc func(tag Tag, value uint64)
