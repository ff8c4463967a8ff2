package main

import (
	"fmt"
	"io"
	"os"
	"time"
	"unsafe"

	bytesize "github.com/inhies/go-bytesize"

	"github.com/orizon-lang/minigc/internal/gc"
)

const (
	colGreen = "\x1b[32m"
	colRed   = "\x1b[31m"
	colCyan  = "\x1b[36m"
	colDim   = "\x1b[2m"
	colOff   = "\x1b[0m"
)

// runAll executes every workload of cfg against one fresh collector. After
// each workload it prints the collector's cumulative counters and that
// workload's elapsed time; at the end it prints a heap summary.
func runAll(cfg *ScenarioConfig, trace bool, out io.Writer) error {
	var opts []gc.Option
	if cfg.Grain != "" {
		grain, err := parseSize(cfg.Grain)
		if err != nil {
			return err
		}
		opts = append(opts, gc.WithGrain(grain))
	}
	if trace || cfg.Trace {
		opts = append(opts, gc.WithTrace(os.Stderr))
	}

	c := gc.New(opts...)
	c.Init()

	for _, w := range cfg.Workloads {
		start := time.Now()
		if err := runWorkload(c, w); err != nil {
			fmt.Fprintf(out, "%sx%s %-16s %v\n", colRed, colOff, w.Name, err)
			return err
		}
		st := c.Stats()
		fmt.Fprintf(out, "%s✓%s %-16s %7d allocs  %4d collections  %6d swept  %s%v%s\n",
			colGreen, colOff, w.Name,
			st.AllocCount, st.Collections, st.SweptBlocks,
			colDim, time.Since(start).Round(time.Microsecond), colOff)
	}

	st := c.Stats()
	fmt.Fprintf(out, "%sheap%s %d regions, %s mapped, %s handed out in total\n",
		colCyan, colOff, st.Regions,
		bytesize.New(float64(st.RegionBytes)),
		bytesize.New(float64(st.BytesAllocated)))

	return nil
}

// runWorkload performs one allocation pattern. Retention is carried by a
// registered root range over a ring of the most recent payloads; the native
// stack is deliberately not relied upon for anything that must survive a
// collection.
func runWorkload(c *gc.Collector, w Workload) error {
	size, err := parseSize(w.Size)
	if err != nil {
		return err
	}

	retain := w.Retain
	if retain <= 0 {
		retain = 1
	}

	// The ring outlives this function only as a root range; once the next
	// workload runs, its words pin at worst a stale block or two. Root
	// ranges cannot be unregistered.
	ring := make([]uintptr, retain)
	base := uintptr(unsafe.Pointer(&ring[0]))
	c.RegisterRoot(base, base+uintptr(retain)*unsafe.Sizeof(base))

	for i := 0; i < w.Allocs; i++ {
		p := c.Alloc(size)
		if p == nil {
			return fmt.Errorf("allocation %d of %s failed", i, w.Size)
		}

		// Touch both ends of the payload.
		buf := unsafe.Slice((*byte)(p), size)
		buf[0] = byte(i)
		buf[len(buf)-1] = byte(i >> 8)

		ring[i%retain] = uintptr(p)

		if w.CollectEvery > 0 && (i+1)%w.CollectEvery == 0 {
			c.Collect()
		}
	}

	if w.FreeRetained {
		for i, a := range ring {
			if a != 0 {
				c.Free(unsafe.Pointer(a))
				ring[i] = 0
			}
		}
	}

	return nil
}
