package freeze

import (
	"go.uber.org/zap"

	"github.com/srodi/freezer/pkg/snapshot"
	"github.com/srodi/freezer/pkg/types"
)

// Signaler suspends a process.
type Signaler interface {
	Stop(pid int) error
}

// Freezer applies a Policy by signaling processes.
type Freezer struct {
	policy   Policy
	signaler Signaler
	logger   *zap.Logger
	dryRun   bool
}

// NewFreezer builds a Freezer. With dryRun set no signal is ever sent.
func NewFreezer(policy Policy, signaler Signaler, logger *zap.Logger, dryRun bool) *Freezer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Freezer{policy: policy, signaler: signaler, logger: logger, dryRun: dryRun}
}

// Policy returns the policy the freezer applies.
func (f *Freezer) Policy() Policy {
	return f.policy
}

// Run walks the ranked snapshot from the largest process down, stopping
// processes until the deficit computed from stats is covered. A failed
// signal never aborts the walk.
func (f *Freezer) Run(snap *snapshot.Snapshot, stats types.MemoryStats) (Result, error) {
	if f.dryRun || f.signaler == nil {
		res, err := f.policy.Plan(snap, stats)
		if err == nil {
			f.logger.Info("dry run: no signals sent",
				zap.Float64("deficit_percent", res.InitialDeficit),
				zap.Int("would_stop", len(res.Suspended)),
			)
		}
		return res, err
	}

	res, err := f.policy.walk(snap, stats, f.stop)
	if err != nil {
		return res, err
	}
	if res.InitialDeficit <= 0 {
		f.logger.Info("memory target already met",
			zap.Float64("taken_percent", res.TakenPercent),
			zap.Float64("target_free_percent", f.policy.TargetFreePercent),
		)
		return res, nil
	}
	if res.Exhausted {
		f.logger.Warn("ran out of processes before reaching target",
			zap.Float64("remaining_deficit_percent", res.RemainingDeficit),
			zap.Int("stopped", len(res.Suspended)),
		)
	}
	return res, nil
}

func (f *Freezer) stop(pid int) error {
	err := f.signaler.Stop(pid)
	if err != nil {
		f.logger.Warn("stop signal failed", zap.Int("pid", pid), zap.Error(err))
		return err
	}
	f.logger.Info("stopped process", zap.Int("pid", pid))
	return nil
}
