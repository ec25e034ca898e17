// Package runner wires the collectors, the ranker and the freezer into one pass.
package runner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/srodi/freezer/pkg/freeze"
	"github.com/srodi/freezer/pkg/snapshot"
	"github.com/srodi/freezer/pkg/types"
)

// ErrFatal marks errors that must abort the run with a non-zero exit status.
var ErrFatal = errors.New("fatal")

// MemoryReader reads system-wide memory counters.
type MemoryReader interface {
	PageSize() uint64
	TotalBytes() (uint64, error)
	ReadStats() (types.MemoryStats, error)
}

// ProcessCollector lists the processes eligible for suspension.
type ProcessCollector interface {
	Collect() ([]types.ProcessEntry, error)
}

// Runner performs one enumerate, rank, freeze pass.
type Runner struct {
	Memory    MemoryReader
	Processes ProcessCollector
	Freezer   *freeze.Freezer
	Logger    *zap.Logger
}

// Outcome is everything a caller needs to report on a finished pass.
type Outcome struct {
	Snapshot *snapshot.Snapshot
	Stats    types.MemoryStats
	Result   freeze.Result
}

// Run executes the pass. Every returned error wraps ErrFatal; per-process
// problems never surface here.
func (r *Runner) Run() (Outcome, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	total, err := r.Memory.TotalBytes()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: reading total memory: %w", ErrFatal, err)
	}
	pageSize := r.Memory.PageSize()
	if pageSize == 0 {
		return Outcome{}, fmt.Errorf("%w: system reported a zero page size", ErrFatal)
	}
	logger.Debug("memory layout", zap.Uint64("total_bytes", total), zap.Uint64("page_size", pageSize))

	entries, err := r.Processes.Collect()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: enumerating processes: %w", ErrFatal, err)
	}
	snap, err := snapshot.Build(entries)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: building snapshot: %w", ErrFatal, err)
	}
	snap.Rank()
	if desc := snap.Descending(); len(desc) > 0 {
		logger.Debug("snapshot ranked",
			zap.Int("processes", snap.Len()),
			zap.Int("largest_pid", desc[0].PID),
			zap.Uint64("largest_rss_pages", desc[0].RSSPages),
		)
	}

	// Free and cache counters drift, so they are read only now, right before the decision.
	stats, err := r.Memory.ReadStats()
	if err != nil {
		return Outcome{Snapshot: snap}, fmt.Errorf("%w: reading memory stats: %w", ErrFatal, err)
	}

	res, err := r.Freezer.Run(snap, stats)
	if err != nil {
		return Outcome{Snapshot: snap, Stats: stats}, fmt.Errorf("%w: freeze pass: %w", ErrFatal, err)
	}

	logger.Info("freeze pass complete",
		zap.Int("processes", snap.Len()),
		zap.Float64("taken_percent", res.TakenPercent),
		zap.Float64("deficit_percent", res.InitialDeficit),
		zap.Float64("remaining_deficit_percent", res.RemainingDeficit),
		zap.Int("stopped", len(res.Suspended)),
		zap.Int("gone", len(res.Gone)),
		zap.Int("failed", len(res.Failed)),
		zap.Bool("dry_run", res.DryRun),
	)
	return Outcome{Snapshot: snap, Stats: stats, Result: res}, nil
}
