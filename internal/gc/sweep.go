package gc

// Collect runs one full mark/sweep cycle: register snapshot first (so
// register-only pointers are spilled into scannable memory), then the stack
// range, then the registered root ranges, then the sweep. Collections are
// uninterruptible and never fail.
func (c *Collector) Collect() {
	c.stats.Collections++
	c.collecting = true
	defer func() { c.collecting = false }()

	c.markRegisters()
	c.markStack()
	c.markRootRanges()

	c.sweep()

	if gcAsserts {
		if err := c.checkHeap(); err != nil {
			panic(err)
		}
	}
}

// sweep walks every region's header chain in address order. Marked blocks
// survive with their mark cleared; unmarked allocated blocks return to the
// ring. Free blocks are skipped. The walk is safe because each chain is a
// complete partition of its region, and a block freed mid-walk only ever
// absorbs neighbors the walk has not yet committed to.
func (c *Collector) sweep() {
	for i := range c.heaps {
		r := &c.heaps[i]
		end := r.limit()
		for h := r.slot; addr(h) < end; h = h.next() {
			if !h.allocated() {
				continue
			}
			if h.marked() {
				c.tracef("mark unset %#x", addr(h))
				h.flags &^= flagMark
				continue
			}
			c.tracef("sweep free %#x (%d bytes)", addr(h), h.size)
			c.stats.SweptBlocks++
			c.Free(h.payload())
		}
	}
}
