package gc

import "unsafe"

// The mark engine is conservative: any word that happens to address an
// allocated payload pins that block. False positives are tolerated; false
// negatives are forbidden. Words are read untyped through an explicit
// unsafe boundary so that pointers parked in integer-typed slots still
// count as roots.

// markWord resolves w against the managed heap and, when it lands inside an
// allocated payload, marks the block and recurses over the block's own
// payload words. A set mark bit terminates the recursion and breaks cycles.
func (c *Collector) markWord(w uintptr) {
	r := c.regionOf(w)
	if r == nil {
		return
	}
	h := r.blockFor(w)
	if h == nil {
		return
	}
	if !h.allocated() {
		// Free blocks are not roots, however plausible the address.
		return
	}
	if h.marked() {
		return
	}

	h.flags |= flagMark
	c.tracef("mark %#x header %#x", w, addr(h))

	c.markRange(uintptr(h.payload()), addr(h.next()))
}

// markRange scans every pointer-aligned word in [start, end). The last
// partial word of a payload, if any, is not read.
func (c *Collector) markRange(start, end uintptr) {
	for p := start; p+ptrSize <= end; p += ptrSize {
		c.markWord(*(*uintptr)(unsafe.Pointer(p)))
	}
}
