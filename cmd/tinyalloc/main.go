// Command tinyalloc is a small demonstration driver for the tinyalloc
// library: it carves a fixed-size in-process byte region, performs a
// handful of allocate/free operations, and reports the resulting list
// cardinalities.
package main

import (
	"flag"
	"log"

	"github.com/nanoheap/tinyalloc"
)

func main() {
	regionSize := flag.Int("region-size", 4096, "size in bytes of the managed region")
	maxBlocks := flag.Int("max-blocks", 64, "fixed descriptor pool capacity")
	alignment := flag.Uint64("alignment", 8, "allocation alignment, must be a power of two")
	verbose := flag.Bool("verbose", false, "print the allocator's debug trace")
	flag.Parse()

	region := make([]byte, *regionSize)
	opts := []tinyalloc.Option{tinyalloc.WithAlignment(*alignment)}
	if *verbose {
		opts = append(opts, tinyalloc.WithTrace(func(tag tinyalloc.Tag, value uint64) {
			log.Printf("trace: %-20s 0x%x", tag, value)
		}))
	}

	h, err := tinyalloc.New(region, *maxBlocks, opts...)
	if err != nil {
		log.Fatalf("tinyalloc: init failed: %v", err)
	}

	log.Printf("init: free=%d used=%d fresh=%d check=%t",
		h.CountFree(), h.CountUsed(), h.CountFresh(), h.Check())

	p1, ok := h.Allocate(64)
	if !ok {
		log.Fatalf("tinyalloc: allocate(64) failed: %v", h.LastError())
	}
	log.Printf("allocate(64) -> ptr=%d size=%d", p1, h.SizeOf(p1))

	p2, ok := h.ZeroAllocate(8, 4)
	if !ok {
		log.Fatalf("tinyalloc: zero_allocate(8,4) failed: %v", h.LastError())
	}
	log.Printf("zero_allocate(8,4) -> ptr=%d size=%d", p2, h.SizeOf(p2))

	if !h.Free(p1) {
		log.Fatalf("tinyalloc: free(p1) failed: %v", h.LastError())
	}

	p3, ok := h.Reallocate(p2, 128)
	if !ok {
		log.Fatalf("tinyalloc: reallocate failed: %v", h.LastError())
	}
	log.Printf("reallocate(p2, 128) -> ptr=%d size=%d", p3, h.SizeOf(p3))

	log.Printf("final: free=%d used=%d fresh=%d check=%t",
		h.CountFree(), h.CountUsed(), h.CountFresh(), h.Check())
}
