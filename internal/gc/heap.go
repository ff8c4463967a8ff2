package gc

import (
	"fmt"
	"unsafe"
)

// heapRegion describes one contiguous range obtained from the OS. Regions
// never move, shrink or unregister; the sweeper's outer loop depends on the
// table being a complete, append-only enumeration of managed memory.
type heapRegion struct {
	slot    *header // first header of the region
	size    uintptr // payload bytes registered for the region
	backing []byte  // pins the underlying mapping for the region's lifetime
}

func (r *heapRegion) base() uintptr { return addr(r.slot) }

// limit is the address one past the region's header chain, equal to the
// physical successor of its last block.
func (r *heapRegion) limit() uintptr { return r.base() + headerSize + r.size }

func (r *heapRegion) contains(p uintptr) bool {
	return p >= r.base() && p < r.limit()
}

// blockFor walks the region's header chain and returns the block whose
// payload range contains p, or nil when p addresses a header or slack.
func (r *heapRegion) blockFor(p uintptr) *header {
	end := r.limit()
	for h := r.slot; addr(h) < end; h = h.next() {
		if uintptr(h.payload()) <= p && p < addr(h.next()) {
			return h
		}
	}
	return nil
}

// addHeap requests one region from the OS, aligns it, publishes its sole
// header as a self-looped free block and registers it in the region table.
// A full table aborts; OS refusal is returned for Alloc to swallow.
func (c *Collector) addHeap(size uintptr) (*header, error) {
	if len(c.heaps) >= c.cfg.HeapLimit {
		panic(fmt.Sprintf("gc: heap table full (%d regions)", c.cfg.HeapLimit))
	}

	if size < c.cfg.Grain {
		size = c.cfg.Grain
	}
	size = alignUp(size, ptrSize)

	// Over-request by one pointer plus one header so the aligned region
	// still holds size payload bytes behind its header.
	raw, backing, err := osReserve(size + ptrSize + headerSize)
	if err != nil {
		return nil, &HeapError{Code: ErrOutOfMemory, Requested: size, Err: err}
	}

	h := (*header)(unsafe.Pointer(alignUp(raw, ptrSize)))
	h.flags = 0
	h.size = size
	h.nextFree = h

	c.heaps = append(c.heaps, heapRegion{slot: h, size: size, backing: backing})
	c.stats.Regions++
	c.stats.RegionBytes += uint64(size)
	c.tracef("region %d added: %#x..%#x (%d bytes)", len(c.heaps), addr(h), addr(h)+headerSize+size, size)

	return h, nil
}

// grow acquires a fresh region and publishes it to the free ring by freeing
// its payload, then hands back the updated cursor.
func (c *Collector) grow(size uintptr) (*header, error) {
	h, err := c.addHeap(size)
	if err != nil {
		return nil, err
	}
	c.Free(h.payload())
	return c.freeList, nil
}

// regionOf resolves the region containing p, consulting the hit cache before
// scanning the table linearly. A miss that resolves updates the cache.
func (c *Collector) regionOf(p uintptr) *heapRegion {
	if hc := c.hitCache; hc != nil && hc.contains(p) {
		return hc
	}
	for i := range c.heaps {
		if c.heaps[i].contains(p) {
			c.hitCache = &c.heaps[i]
			return &c.heaps[i]
		}
	}
	return nil
}
