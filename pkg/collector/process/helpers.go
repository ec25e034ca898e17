package process

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

func pidDir(root string, pid int) string {
	return filepath.Join(root, strconv.Itoa(pid))
}

func commOrFallback(pid int, comm string) string {
	comm = strings.TrimSpace(comm)
	if comm == "" {
		return fmt.Sprintf("pid-%d", pid)
	}
	return comm
}
