package snapshot

import "sort"

// Rank sorts the snapshot by resident pages, smallest first. Equal sizes are
// ordered by PID so a fixed input always produces the same order.
// Only the first call sorts; later calls are no-ops.
func (s *Snapshot) Rank() {
	if s.ranked {
		return
	}
	sort.Slice(s.entries, func(i, j int) bool {
		if s.entries[i].RSSPages == s.entries[j].RSSPages {
			return s.entries[i].PID < s.entries[j].PID
		}
		return s.entries[i].RSSPages < s.entries[j].RSSPages
	})
	s.ranked = true
}
