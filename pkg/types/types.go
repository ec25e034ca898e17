package types

// DefaultTargetFreePercent is the share of total memory that should be free once the freeze pass is done.
const DefaultTargetFreePercent = 70.0

// DefaultProcRoot is where the proc filesystem is normally mounted.
const DefaultProcRoot = "/proc"

// ProcessEntry records the resident footprint of one process at enumeration time.
type ProcessEntry struct {
	PID      int
	Comm     string
	RSSPages uint64
}

// MemoryStats holds the system-wide counters from meminfo, converted to bytes.
type MemoryStats struct {
	TotalBytes   uint64
	FreeBytes    uint64
	BuffersBytes uint64
	CachedBytes  uint64
	PageSize     uint64
}

// TotalPages returns the number of pages of physical memory.
func (s MemoryStats) TotalPages() uint64 {
	if s.PageSize == 0 {
		return 0
	}
	return s.TotalBytes / s.PageSize
}
