package gc

import "unsafe"

// Alloc returns a pointer-aligned payload of at least size bytes, or nil.
// The free ring is searched first-fit from the rotating cursor; a full
// revolution without a fit triggers one collection cycle, and a second
// revolution falls through to growing the heap. Alloc returns nil only on a
// zero-size request or when both collection and growth fail to produce a fit.
func (c *Collector) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	asize := alignUp(size, ptrSize)

	if c.freeList == nil {
		h, err := c.addHeap(c.cfg.Grain)
		if err != nil {
			return nil
		}
		c.freeList = h
	}

	collected := false
	prev := c.freeList
	p := prev.nextFree
	for {
		if p.size >= asize+headerSize {
			if p.size == asize+headerSize {
				// Exact fit: unlink p from the ring. Taking the ring's
				// last block leaves the heap with no free list until the
				// next free or growth reseeds it.
				if p.nextFree == p {
					c.freeList = nil
				} else {
					prev.nextFree = p.nextFree
					c.freeList = prev
				}
			} else {
				// Split: carve the allocated block off the high end so the
				// ring needs no pointer surgery, only a size decrement.
				p.size -= asize + headerSize
				p = p.next()
				p.size = asize
				c.freeList = prev
			}
			p.flags = flagAlloc
			c.stats.AllocCount++
			c.stats.BytesAllocated += uint64(asize)
			return p.payload()
		}

		if p == c.freeList {
			// One full revolution without a fit.
			if !collected {
				c.Collect()
				collected = true
			} else if _, err := c.grow(asize + 2*headerSize); err != nil {
				return nil
			}
			// Both collection and growth may have rewritten the ring;
			// restart the revolution from the current cursor.
			prev = c.freeList
			p = prev.nextFree
			continue
		}

		prev, p = p, p.nextFree
	}
}

// Free returns the block owning ptr to the ring, coalescing with physically
// adjacent free neighbors on both sides. ptr must have been returned by
// Alloc on this collector and not freed since; anything else is undefined.
func (c *Collector) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	target := headerOf(ptr)
	if c.cfg.ZeroOnFree {
		memclr(target.payload(), target.size)
	}

	if c.freeList == nil {
		// Ring was emptied by an exact-fit allocation; reseed it.
		target.nextFree = target
		target.flags = 0
		c.freeList = target
		c.stats.FreeCount++
		return
	}

	// Locate the free block hit with hit < target < hit.nextFree in address
	// order. The wrap-around block (hit >= hit.nextFree) admits any target
	// beyond either side of the ring's address boundary; a single self-looped
	// block is its own wrap-around and terminates the search immediately.
	hit := c.freeList
	for !(addr(target) > addr(hit) && addr(target) < addr(hit.nextFree)) {
		if addr(hit) >= addr(hit.nextFree) &&
			(addr(target) > addr(hit) || addr(target) < addr(hit.nextFree)) {
			break
		}
		hit = hit.nextFree
	}

	if target.next() == hit.nextFree {
		// Right neighbor is free: absorb it into target.
		target.size += hit.nextFree.size + headerSize
		target.nextFree = hit.nextFree.nextFree
	} else {
		target.nextFree = hit.nextFree
	}

	if hit.next() == target {
		// Left neighbor is free: absorb target into hit.
		hit.size += target.size + headerSize
		hit.nextFree = target.nextFree
	} else {
		hit.nextFree = target
	}

	c.freeList = hit
	target.flags = 0
	c.stats.FreeCount++

	if gcAsserts {
		if err := c.checkHeap(); err != nil {
			panic(err)
		}
	}
}
