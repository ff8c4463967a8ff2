package gc

import "fmt"

// checkHeap validates the structural invariants of the region table and the
// free ring. It is wired behind gcAsserts in the mutation paths and called
// directly by the property tests after every operation.
//
// Checked invariants:
//  1. every region's header chain is a complete, aligned partition whose
//     header+payload sizes sum to one header plus the registered region size;
//  2. no block carries a mark bit outside an active collection;
//  3. no two physically adjacent blocks are both free;
//  4. the free list is a single cycle threading exactly the free blocks;
//  5. the hit cache, when set, points into the region table.
func (c *Collector) checkHeap() error {
	freeBlocks := make(map[*header]bool)

	for i := range c.heaps {
		r := &c.heaps[i]
		var sum uintptr
		prevFree := false

		for h := r.slot; addr(h) < r.limit(); h = h.next() {
			if addr(h)%ptrSize != 0 {
				return fmt.Errorf("gc: region %d: misaligned header %#x", i, addr(h))
			}
			if h.size%ptrSize != 0 {
				return fmt.Errorf("gc: region %d: unaligned block size %d at %#x", i, h.size, addr(h))
			}
			if addr(h.next()) > r.limit() {
				return fmt.Errorf("gc: region %d: block at %#x overruns region", i, addr(h))
			}
			sum += headerSize + h.size

			if h.allocated() {
				if h.marked() && !c.collecting {
					return fmt.Errorf("gc: region %d: mark bit set outside collection at %#x", i, addr(h))
				}
				prevFree = false
				continue
			}
			if h.marked() {
				return fmt.Errorf("gc: region %d: mark bit on free block at %#x", i, addr(h))
			}
			if prevFree {
				return fmt.Errorf("gc: region %d: adjacent free blocks at %#x", i, addr(h))
			}
			prevFree = true
			freeBlocks[h] = true
		}

		if sum != headerSize+r.size {
			return fmt.Errorf("gc: region %d: chain sums to %d bytes, want %d", i, sum, headerSize+r.size)
		}
	}

	if c.freeList == nil {
		if len(freeBlocks) != 0 {
			return fmt.Errorf("gc: no free list but %d free blocks in regions", len(freeBlocks))
		}
	} else {
		n := 0
		h := c.freeList
		for {
			if !freeBlocks[h] {
				return fmt.Errorf("gc: ring member %#x is not a free block of any region", addr(h))
			}
			n++
			if n > len(freeBlocks) {
				return fmt.Errorf("gc: free ring does not close after %d links", n)
			}
			h = h.nextFree
			if h == c.freeList {
				break
			}
		}
		if n != len(freeBlocks) {
			return fmt.Errorf("gc: ring threads %d blocks, regions hold %d free blocks", n, len(freeBlocks))
		}
	}

	if hc := c.hitCache; hc != nil {
		found := false
		for i := range c.heaps {
			if hc == &c.heaps[i] {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("gc: hit cache points outside the region table")
		}
	}

	return nil
}

// freeBytes sums the payload sizes of every free block across all regions.
func (c *Collector) freeBytes() uintptr {
	var total uintptr
	for i := range c.heaps {
		r := &c.heaps[i]
		for h := r.slot; addr(h) < r.limit(); h = h.next() {
			if !h.allocated() {
				total += h.size
			}
		}
	}
	return total
}
