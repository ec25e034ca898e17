//go:build linux
// +build linux

package process

import (
	"fmt"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/srodi/freezer/pkg/types"
)

// statOwner allows tests to stub the ownership lookup that normally stats /proc/PID.
var statOwner = defaultStatOwner

func defaultStatOwner(path string) (uint32, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, err
	}
	return st.Uid, nil
}

// Collector enumerates the processes owned by a single user.
type Collector struct {
	fs     procfs.FS
	root   string
	uid    uint32
	logger *zap.Logger
}

// NewCollector opens the proc filesystem mounted at procRoot.
func NewCollector(procRoot string, uid uint32, logger *zap.Logger) (*Collector, error) {
	if procRoot == "" {
		procRoot = types.DefaultProcRoot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("opening proc filesystem at %s: %w", procRoot, err)
	}
	return &Collector{fs: fs, root: procRoot, uid: uid, logger: logger}, nil
}

// UID returns the user whose processes are collected.
func (c *Collector) UID() uint32 {
	return c.uid
}

// Collect returns one entry per process owned by the collector's user.
// Processes that disappear or cannot be parsed while being inspected are skipped.
func (c *Collector) Collect() ([]types.ProcessEntry, error) {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("listing processes in %s: %w", c.root, err)
	}

	entries := make([]types.ProcessEntry, 0, len(procs))
	for _, p := range procs {
		if p.PID <= 0 {
			continue
		}
		owner, err := statOwner(pidDir(c.root, p.PID))
		if err != nil {
			c.logger.Debug("skipping process: owner lookup failed", zap.Int("pid", p.PID), zap.Error(err))
			continue
		}
		if owner != c.uid {
			continue
		}
		stat, err := p.Stat()
		if err != nil {
			c.logger.Debug("skipping process: stat unreadable", zap.Int("pid", p.PID), zap.Error(err))
			continue
		}
		if stat.RSS < 0 {
			c.logger.Debug("skipping process: negative rss", zap.Int("pid", p.PID), zap.Int("rss", stat.RSS))
			continue
		}
		entries = append(entries, types.ProcessEntry{
			PID:      p.PID,
			Comm:     commOrFallback(p.PID, stat.Comm),
			RSSPages: uint64(stat.RSS),
		})
	}

	c.logger.Debug("enumerated processes",
		zap.Int("visible", len(procs)),
		zap.Int("owned", len(entries)),
		zap.Uint32("uid", c.uid),
	)
	return entries, nil
}
