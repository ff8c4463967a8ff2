package gc

// counters accumulates collector activity. Plain fields: the collector's
// contract is single-threaded, so no synchronization is carried.
type counters struct {
	AllocCount     uint64
	FreeCount      uint64
	BytesAllocated uint64
	Collections    uint64
	SweptBlocks    uint64
	Regions        int
	RegionBytes    uint64
}

// CollectorStats is a point-in-time snapshot of collector activity.
type CollectorStats struct {
	// AllocCount and FreeCount count successful Alloc returns and ring
	// insertions (explicit frees, sweeper reclamations and regions published
	// by growth).
	AllocCount uint64
	FreeCount  uint64

	// BytesAllocated is the sum of aligned payload sizes handed out.
	BytesAllocated uint64

	// Collections counts completed mark/sweep cycles; SweptBlocks counts
	// blocks the sweeper returned to the ring across all cycles.
	Collections uint64
	SweptBlocks uint64

	// Regions and RegionBytes describe the registered heap table.
	Regions     int
	RegionBytes uint64
}

// Stats snapshots the collector's counters.
func (c *Collector) Stats() CollectorStats {
	return CollectorStats{
		AllocCount:     c.stats.AllocCount,
		FreeCount:      c.stats.FreeCount,
		BytesAllocated: c.stats.BytesAllocated,
		Collections:    c.stats.Collections,
		SweptBlocks:    c.stats.SweptBlocks,
		Regions:        c.stats.Regions,
		RegionBytes:    c.stats.RegionBytes,
	}
}
