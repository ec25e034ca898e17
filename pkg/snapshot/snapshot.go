// Package snapshot holds the per-run list of processes and ranks it by resident memory.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/srodi/freezer/pkg/types"
)

// ErrDuplicatePID is returned by Build when the same PID is recorded twice.
var ErrDuplicatePID = errors.New("duplicate pid")

// Snapshot is an immutable set of process entries. It is ranked at most once.
type Snapshot struct {
	entries []types.ProcessEntry
	ranked  bool
}

// Build copies entries into a new snapshot.
func Build(entries []types.ProcessEntry) (*Snapshot, error) {
	seen := make(map[int]struct{}, len(entries))
	copied := make([]types.ProcessEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.PID]; ok {
			return nil, fmt.Errorf("pid %d: %w", e.PID, ErrDuplicatePID)
		}
		seen[e.PID] = struct{}{}
		copied = append(copied, e)
	}
	return &Snapshot{entries: copied}, nil
}

// Len returns the number of processes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Ranked reports whether Rank has been called.
func (s *Snapshot) Ranked() bool {
	return s.ranked
}

// Entries returns a copy of the entries in their current order.
func (s *Snapshot) Entries() []types.ProcessEntry {
	out := make([]types.ProcessEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Descending returns a copy of the entries with the largest resident set first.
// On a ranked snapshot this is the exact reverse of Entries.
func (s *Snapshot) Descending() []types.ProcessEntry {
	out := make([]types.ProcessEntry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}
