package gc

import (
	"fmt"
	"unsafe"
)

// rootRange is an externally registered address range scanned on every
// collection. The table is append-only; there is no unregister.
type rootRange struct {
	start uintptr
	end   uintptr
}

// Init records the outermost scannable stack frame. It must be called from
// the goroutine that will perform all subsequent collector operations,
// before any of them, and the caller's frame must enclose every frame that
// can hold live pointers at collection time.
//
//go:noinline
func (c *Collector) Init() {
	var anchor uintptr
	c.stackStart = uintptr(unsafe.Pointer(&anchor))
}

// currentStackTop probes the innermost frame address at the moment of the
// call. Kept out of line so the probe sits in its own frame below every
// caller-held pointer.
//
//go:noinline
func currentStackTop() uintptr {
	var probe uintptr
	return uintptr(unsafe.Pointer(&probe))
}

// RegisterRoot adds [start, end) to the scanned root ranges. A full table
// aborts: the limit is a contract constant, not a transient condition.
func (c *Collector) RegisterRoot(start, end uintptr) {
	if end <= start {
		return
	}
	if len(c.rootRanges) >= c.cfg.RootLimit {
		panic(fmt.Sprintf("gc: root range table full (%d ranges)", c.cfg.RootLimit))
	}
	c.rootRanges = append(c.rootRanges, rootRange{start: start, end: end})
}

// markRegisters spills the callee-saved register file into a stack buffer
// and treats every slot as a candidate root. The snapshot must happen before
// the stack probe: a register may hold the only copy of a pointer, and the
// dump forces it into scannable memory.
func (c *Collector) markRegisters() {
	var regs registerFile
	dumpRegisters(&regs)
	for _, w := range regs {
		c.markWord(w)
	}
}

// maxStackScan bounds the scanned stack window. A window beyond this means
// the goroutine stack was moved by the Go runtime after Init recorded its
// bound; reading across the gap could touch unmapped memory.
const maxStackScan = 1 << 20

// markStack scans every pointer-aligned word between the frame recorded by
// Init and the innermost frame probed now. Taking min/max of the two bounds
// absorbs the direction of stack growth.
func (c *Collector) markStack() {
	if c.stackStart == 0 {
		// Init was never called; there is no sound stack range to scan.
		return
	}
	c.stackEnd = currentStackTop()

	lo, hi := c.stackStart, c.stackEnd
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo > maxStackScan {
		c.tracef("stack window %#x..%#x exceeds %d bytes, skipping stack roots", lo, hi, maxStackScan)
		return
	}
	c.markRange(alignUp(lo, ptrSize), hi)
}

// markRootRanges scans the registered external ranges.
func (c *Collector) markRootRanges() {
	for _, r := range c.rootRanges {
		c.markRange(alignUp(r.start, ptrSize), r.end)
	}
}
