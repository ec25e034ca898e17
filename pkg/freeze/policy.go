// Package freeze decides which processes to suspend and sends them SIGSTOP.
//
// The walk is greedy: it trusts the resident sizes recorded at enumeration
// time and never re-measures memory between signals. A stopped process does
// not grow, so the recorded size is what the signal reclaims. Processes that
// exit or change size between enumeration and the walk are an accepted race.
package freeze

import (
	"errors"

	"github.com/srodi/freezer/pkg/snapshot"
	"github.com/srodi/freezer/pkg/types"
)

// DefaultTargetFreePercent mirrors types.DefaultTargetFreePercent for callers that only import freeze.
const DefaultTargetFreePercent = types.DefaultTargetFreePercent

var (
	// ErrProcessGone reports that the target exited before it could be stopped.
	ErrProcessGone = errors.New("process no longer exists")
	// ErrNotRanked is returned when a walk is attempted on an unranked snapshot.
	ErrNotRanked = errors.New("snapshot is not ranked")
)

// Policy holds the freeze target.
type Policy struct {
	// TargetFreePercent is the share of total memory that should be free or reclaimable afterwards.
	TargetFreePercent float64
	// Exclude lists PIDs that must never be stopped, such as the running process itself.
	Exclude []int
}

// Action records one process chosen by the walk.
type Action struct {
	Entry   types.ProcessEntry
	Percent float64
	Err     error
}

// Result summarizes a walk.
type Result struct {
	TakenPercent     float64
	InitialDeficit   float64
	RemainingDeficit float64
	Suspended        []Action
	Gone             []Action
	Failed           []Action
	// Exhausted is set when every candidate was visited and the deficit is still positive.
	Exhausted bool
	DryRun    bool
}

// Signaled returns the number of signals that were attempted.
func (r Result) Signaled() int {
	return len(r.Suspended) + len(r.Gone) + len(r.Failed)
}

// TakenPages approximates the pages that are neither free nor page/buffer cache.
func TakenPages(stats types.MemoryStats) uint64 {
	if stats.PageSize == 0 {
		return 0
	}
	reclaimable := stats.FreeBytes + stats.BuffersBytes + stats.CachedBytes
	if reclaimable >= stats.TotalBytes {
		return 0
	}
	return (stats.TotalBytes - reclaimable) / stats.PageSize
}

// PagesToPercent converts a page count into a percentage of total memory.
func PagesToPercent(pages uint64, stats types.MemoryStats) float64 {
	total := stats.TotalPages()
	if total == 0 {
		return 0
	}
	return 100 * float64(pages) / float64(total)
}

// TakenPercent is TakenPages as a percentage of total memory.
func TakenPercent(stats types.MemoryStats) float64 {
	return PagesToPercent(TakenPages(stats), stats)
}

// Deficit returns the percentage of total memory that still has to be reclaimed.
// A value <= 0 means the target is already met.
func (p Policy) Deficit(stats types.MemoryStats) float64 {
	return TakenPercent(stats) - (100 - p.TargetFreePercent)
}

// Plan runs the walk without signaling anything and reports what would be stopped.
func (p Policy) Plan(snap *snapshot.Snapshot, stats types.MemoryStats) (Result, error) {
	res, err := p.walk(snap, stats, nil)
	res.DryRun = true
	return res, err
}

func (p Policy) walk(snap *snapshot.Snapshot, stats types.MemoryStats, stop func(pid int) error) (Result, error) {
	if !snap.Ranked() {
		return Result{}, ErrNotRanked
	}

	res := Result{TakenPercent: TakenPercent(stats)}
	deficit := p.Deficit(stats)
	res.InitialDeficit = deficit
	res.RemainingDeficit = deficit
	if deficit <= 0 {
		return res, nil
	}

	excluded := make(map[int]struct{}, len(p.Exclude))
	for _, pid := range p.Exclude {
		excluded[pid] = struct{}{}
	}

	for _, entry := range snap.Descending() {
		if deficit <= 0 {
			break
		}
		if _, skip := excluded[entry.PID]; skip {
			continue
		}
		action := Action{Entry: entry, Percent: PagesToPercent(entry.RSSPages, stats)}
		if stop != nil {
			action.Err = stop(entry.PID)
		}
		// Every visited process counts toward the deficit, whether or not the signal landed.
		switch {
		case action.Err == nil:
			res.Suspended = append(res.Suspended, action)
		case errors.Is(action.Err, ErrProcessGone):
			res.Gone = append(res.Gone, action)
		default:
			res.Failed = append(res.Failed, action)
		}
		deficit -= action.Percent
	}

	res.RemainingDeficit = deficit
	res.Exhausted = deficit > 0
	return res, nil
}
