package memory

import "golang.org/x/sys/unix"

// pageSizeFunc allows tests to stub the system page size.
var pageSizeFunc = unix.Getpagesize

// PageSize returns the system page size in bytes, or zero if the platform reports nonsense.
func PageSize() uint64 {
	ps := pageSizeFunc()
	if ps <= 0 {
		return 0
	}
	return uint64(ps)
}
