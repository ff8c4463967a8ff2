// Package gc implements a conservative, tracing, mark-and-sweep garbage
// collector paired with a free-list heap allocator.
//
// Memory is acquired from the OS in coarse regions and carved into blocks,
// each prefixed by a header carrying both allocator bookkeeping and the
// collector's mark bit. Free blocks are threaded through a circular
// singly-linked ring searched first-fit with a rotating cursor. When a fit
// cannot be found the collector scans the register file and the native stack
// for anything that looks like a pointer into a managed block, marks the
// reachable graph, and sweeps everything else back onto the ring.
//
// The collector is strictly single-threaded: no operation may be invoked
// while another is in flight, and none of them are reentrant. Any adaptation
// to multiple mutator threads would require a redesign, not locking.
package gc

import (
	"io"
	"log"
	"unsafe"
)

// Compile-time limits forming the interface contract.
const (
	// TinyHeapSize is the minimum grain of a single OS region request.
	TinyHeapSize = 0x4000

	// HeapLimit bounds the region table. Exceeding it is a programming
	// error and aborts rather than degrading.
	HeapLimit = 10000

	// RootRangesLimit bounds the externally registered root-range table.
	RootRangesLimit = 1000
)

// when true, validate the heap invariants at the end of every Free and Collect
const gcAsserts = false

// Collector owns every piece of process-wide collector state: the region
// table, the free-list cursor, the region hit cache, the recorded stack
// bounds and the registered root ranges. All methods must be called from a
// single goroutine.
type Collector struct {
	cfg Config

	heaps    []heapRegion // region table; capacity fixed at construction
	hitCache *heapRegion  // most recently resolved region
	freeList *header      // rotating cursor into the free ring

	stackStart uintptr // recorded by Init
	stackEnd   uintptr // probed before each root scan

	rootRanges []rootRange

	collecting bool // true while a mark/sweep cycle is in flight

	trace *log.Logger // nil when tracing is off

	stats counters
}

// Config carries collector tuning. The zero value is not usable; obtain one
// through New and the Option helpers.
type Config struct {
	// Grain is the minimum region size requested from the OS.
	Grain uintptr

	// HeapLimit overrides the region-table capacity. Lowering it is only
	// useful in tests exercising the table-overflow abort.
	HeapLimit int

	// RootLimit overrides the root-range table capacity.
	RootLimit int

	// ZeroOnFree scrubs payload bytes when a block returns to the ring.
	ZeroOnFree bool

	// TraceWriter receives mark/sweep/region diagnostics when non-nil.
	TraceWriter io.Writer
}

// Option mutates a Config before the collector is built.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Grain:     TinyHeapSize,
		HeapLimit: HeapLimit,
		RootLimit: RootRangesLimit,
	}
}

// WithGrain sets the minimum OS region size. Values below pointer alignment
// granularity are rounded up on use.
func WithGrain(n uintptr) Option {
	return func(c *Config) { c.Grain = n }
}

// WithHeapLimit overrides the region-table capacity.
func WithHeapLimit(n int) Option {
	return func(c *Config) { c.HeapLimit = n }
}

// WithRootLimit overrides the root-range table capacity.
func WithRootLimit(n int) Option {
	return func(c *Config) { c.RootLimit = n }
}

// WithZeroOnFree scrubs freed payloads before they rejoin the ring.
func WithZeroOnFree(enabled bool) Option {
	return func(c *Config) { c.ZeroOnFree = enabled }
}

// WithTrace directs mark/sweep diagnostics to w.
func WithTrace(w io.Writer) Option {
	return func(c *Config) { c.TraceWriter = w }
}

// New builds a collector. The region table capacity is fixed here so that
// interior pointers into it (the hit cache) stay valid for the collector's
// lifetime.
func New(opts ...Option) *Collector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Collector{
		cfg:        cfg,
		heaps:      make([]heapRegion, 0, cfg.HeapLimit),
		rootRanges: make([]rootRange, 0, cfg.RootLimit),
	}
	if cfg.TraceWriter != nil {
		c.trace = log.New(cfg.TraceWriter, "minigc: ", 0)
	}

	return c
}

func (c *Collector) tracef(format string, args ...interface{}) {
	if c.trace != nil {
		c.trace.Printf(format, args...)
	}
}

// Process-wide default collector, built lazily on first use. Lazy so that
// importers paying for the fixed-capacity region table are only the ones
// that use the package-level entry points.
var defaultCollector *Collector

func std() *Collector {
	if defaultCollector == nil {
		defaultCollector = New()
	}
	return defaultCollector
}

// Init records the stack root on the default collector.
func Init() { std().Init() }

// Alloc allocates from the default collector.
func Alloc(size uintptr) unsafe.Pointer { return std().Alloc(size) }

// Free returns a block to the default collector's ring.
func Free(ptr unsafe.Pointer) { std().Free(ptr) }

// Collect forces a full mark/sweep cycle on the default collector.
func Collect() { std().Collect() }

// RegisterRoot registers an external root range on the default collector.
func RegisterRoot(start, end uintptr) { std().RegisterRoot(start, end) }

// Stats snapshots the default collector's counters.
func Stats() CollectorStats { return std().Stats() }
