package memops

import "sync"

// sizedPool is one size class of the scratch pool.
type sizedPool struct {
	size int
	pool sync.Pool
}

// bufferPool buckets scratch buffers into power-of-two size classes, the
// same shape as the teacher's AdvancedMemoryPool: a fixed ladder of
// sync.Pool instances keyed by class, picked by the smallest class that
// satisfies a request.
type bufferPool struct {
	classes []*sizedPool
}

var classSizes = []int{64, 256, 1024, 4096, 16384, 65536}

func newBufferPool() *bufferPool {
	bp := &bufferPool{classes: make([]*sizedPool, len(classSizes))}
	for i, sz := range classSizes {
		sz := sz
		bp.classes[i] = &sizedPool{
			size: sz,
			pool: sync.Pool{New: func() any { return make([]byte, sz) }},
		}
	}
	return bp
}

func (bp *bufferPool) findClass(n int) *sizedPool {
	for _, c := range bp.classes {
		if c.size >= n {
			return c
		}
	}
	return nil
}

// Get returns a buffer of at least n bytes, from a pooled class when n fits
// one, or a freshly allocated slice otherwise.
func (bp *bufferPool) Get(n int) []byte {
	if c := bp.findClass(n); c != nil {
		buf := c.pool.Get().([]byte)
		return buf[:n]
	}
	return make([]byte, n)
}

// Put returns a buffer obtained from Get to its size class, if it matches
// one; oversized buffers are simply dropped for GC to reclaim.
func (bp *bufferPool) Put(buf []byte) {
	c := bp.findClass(cap(buf))
	if c == nil || c.size != cap(buf) {
		return
	}
	c.pool.Put(buf[:cap(buf)])
}
