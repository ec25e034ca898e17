//go:build unix

package freeze

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// kill allows tests to stub signal delivery.
var kill = unix.Kill

type unixSignaler struct{}

// NewSignaler returns a Signaler that sends SIGSTOP.
func NewSignaler() Signaler {
	return unixSignaler{}
}

// Stop sends SIGSTOP to pid. Non-positive PIDs address process groups and are refused.
func (unixSignaler) Stop(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("refusing to signal pid %d", pid)
	}
	if err := kill(pid, unix.SIGSTOP); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("stopping pid %d: %w", pid, ErrProcessGone)
		}
		return fmt.Errorf("stopping pid %d: %w", pid, err)
	}
	return nil
}
