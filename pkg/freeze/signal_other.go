//go:build !unix

package freeze

import "errors"

var errUnsupported = errors.New("stop signals require a unix platform")

type unsupportedSignaler struct{}

// NewSignaler returns a Signaler that always fails on this platform.
func NewSignaler() Signaler {
	return unsupportedSignaler{}
}

// Stop always fails on unsupported platforms.
func (unsupportedSignaler) Stop(pid int) error {
	return errUnsupported
}
