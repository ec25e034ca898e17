//go:build !linux
// +build !linux

package process

import (
	"errors"

	"go.uber.org/zap"

	"github.com/srodi/freezer/pkg/types"
)

var errUnsupported = errors.New("process collector requires linux")

// Collector is a placeholder on non-Linux platforms.
type Collector struct{}

// NewCollector returns an error because the proc filesystem is only available on Linux.
func NewCollector(procRoot string, uid uint32, logger *zap.Logger) (*Collector, error) {
	return nil, errUnsupported
}

// UID returns zero on unsupported platforms.
func (c *Collector) UID() uint32 {
	return 0
}

// Collect always fails on unsupported platforms.
func (c *Collector) Collect() ([]types.ProcessEntry, error) {
	return nil, errUnsupported
}
