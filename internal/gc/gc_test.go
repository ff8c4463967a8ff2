package gc

import (
	"strings"
	"testing"
	"unsafe"
)

// sink defeats dead-store elimination so locals holding managed pointers are
// forced into addressable stack slots.
var sink uintptr

// Conservative stack scanning makes retention tests sensitive to frame
// layout: the Init anchor must sit above every frame that holds a managed
// pointer at collection time. Each scenario therefore runs two calls deep
// below the frame that called Init, with a padded intermediate frame.

//go:noinline
func padFrame(fn func()) {
	var guard [32]uintptr
	sink = uintptr(unsafe.Pointer(&guard[0]))
	fn()
}

//go:noinline
func reachableScenario(c *Collector, t *testing.T) {
	p := c.Alloc(0x100)
	if p == nil {
		t.Fatal("allocation failed")
	}
	sink = uintptr(unsafe.Pointer(&p))

	c.Collect()

	h := headerOf(p)
	if !h.allocated() {
		t.Fatal("reachable block was swept")
	}
	if h.marked() {
		t.Error("mark bit must be clear after the cycle")
	}

	// The payload must still be writable memory owned by this block.
	*(*uintptr)(p) = 0xa5a5a5a5
}

func TestCollectReachable(t *testing.T) {
	c := New()
	c.Init()
	padFrame(func() { reachableScenario(c, t) })
}

//go:noinline
func churnGarbage(c *Collector, t *testing.T) {
	for i := 0; i < 64; i++ {
		if p := c.Alloc(0x80); p == nil {
			t.Fatal("allocation failed")
		}
	}
}

// clobberStack overwrites the dead frames left behind by churnGarbage so
// stale copies of discarded pointers cannot pin their blocks.
//
//go:noinline
func clobberStack() {
	var scrub [128]uintptr
	for i := range scrub {
		scrub[i] = 0
	}
	sink = uintptr(unsafe.Pointer(&scrub[0]))
}

//go:noinline
func garbageScenario(c *Collector, t *testing.T) {
	churnGarbage(c, t)
	clobberStack()

	before := c.Stats().SweptBlocks
	c.Collect()

	// Conservatism may pin a handful of blocks through leftover words, but
	// the bulk of the garbage must come back.
	if c.Stats().SweptBlocks == before {
		t.Error("collection reclaimed nothing")
	}
	if err := c.checkHeap(); err != nil {
		t.Fatal(err)
	}
}

func TestCollectReclaimsGarbage(t *testing.T) {
	c := New()
	c.Init()
	padFrame(func() { garbageScenario(c, t) })
}

//go:noinline
func loadScenario(c *Collector, t *testing.T) {
	var last unsafe.Pointer
	sink = uintptr(unsafe.Pointer(&last))

	for i := 0; i < 2000; i++ {
		last = c.Alloc(0x100)
		if last == nil {
			t.Fatalf("allocation %d failed", i)
		}
	}

	if !headerOf(last).allocated() {
		t.Fatal("most recent allocation is not live")
	}
}

func TestAllocLoad(t *testing.T) {
	c := New()
	c.Init()
	padFrame(func() { loadScenario(c, t) })

	if c.Stats().Collections == 0 {
		t.Error("ring exhaustion never triggered a collection")
	}
	if c.stackEnd == c.stackStart {
		t.Error("stack probe never ran")
	}
	if c.Stats().Regions >= HeapLimit {
		t.Errorf("region table exploded: %d regions", c.Stats().Regions)
	}
	mustCheck(t, c)
}

func TestRegisterRootRetention(t *testing.T) {
	c := New()

	// No Init: the stack is deliberately not a root source, so retention
	// is carried by the registered range alone.
	roots := make([]uintptr, 4)
	base := uintptr(unsafe.Pointer(&roots[0]))
	c.RegisterRoot(base, base+uintptr(len(roots))*ptrSize)

	p := c.Alloc(0x40)
	if p == nil {
		t.Fatal("allocation failed")
	}
	roots[0] = uintptr(p)

	c.Collect()

	if !headerOf(p).allocated() {
		t.Fatal("block referenced from a registered root was swept")
	}
	if roots[0] != uintptr(p) {
		t.Fatal("root buffer disturbed during collection")
	}
	mustCheck(t, c)
}

func TestRegisterRootBounds(t *testing.T) {
	t.Run("EmptyRangeIgnored", func(t *testing.T) {
		c := New()
		c.RegisterRoot(0x1000, 0x1000)
		if len(c.rootRanges) != 0 {
			t.Error("empty range should not be recorded")
		}
	})

	t.Run("TableFullAborts", func(t *testing.T) {
		c := New(WithRootLimit(1))
		buf := make([]uintptr, 2)
		base := uintptr(unsafe.Pointer(&buf[0]))
		c.RegisterRoot(base, base+ptrSize)

		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic when the root table overflows")
			}
			if !strings.Contains(r.(string), "root range table full") {
				t.Errorf("unexpected panic message: %v", r)
			}
		}()
		c.RegisterRoot(base+ptrSize, base+2*ptrSize)
	})
}

func TestCollectOnEmptyHeap(t *testing.T) {
	c := New()
	c.Collect()
	if got := c.Stats().Collections; got != 1 {
		t.Errorf("collections = %d, want 1", got)
	}
	mustCheck(t, c)
}

func TestDefaultCollector(t *testing.T) {
	Init()
	p := Alloc(0x20)
	if p == nil {
		t.Fatal("package-level allocation failed")
	}
	Free(p)
	Collect()

	st := Stats()
	if st.AllocCount == 0 || st.FreeCount == 0 || st.Collections == 0 {
		t.Errorf("default collector counters not updated: %+v", st)
	}
}
