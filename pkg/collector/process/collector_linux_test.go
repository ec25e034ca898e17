//go:build linux

package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"
)

func statLine(pid int, comm string, rss int) string {
	return fmt.Sprintf("%d (%s) S 1 %d %d 0 -1 4194304 82 0 0 0 0 0 0 0 20 0 1 0 28519 2703360 %d "+
		"18446744073709551615 94098936791040 94098936810921 140724023403328 0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0 "+
		"94098936826928 94098936828544 94098978377728 140724023411620 140724023411640 140724023411640 140724023414763 0\n",
		pid, comm, pid, pid, rss)
}

type fakeProc struct {
	pid  int
	stat string
}

func buildProcTree(t *testing.T, procs []fakeProc, extraDirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range procs {
		dir := filepath.Join(root, strconv.Itoa(p.pid))
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		if p.stat == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, "stat"), []byte(p.stat), 0o644); err != nil {
			t.Fatalf("writing stat for %d: %v", p.pid, err)
		}
	}
	for _, name := range extraDirs {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}
	return root
}

func sortedPIDs(t *testing.T, c *Collector) []int {
	t.Helper()
	entries, err := c.Collect()
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		pids = append(pids, e.PID)
	}
	sort.Ints(pids)
	return pids
}

func TestCollectReadsOwnedProcesses(t *testing.T) {
	root := buildProcTree(t, []fakeProc{
		{pid: 101, stat: statLine(101, "editor", 2500)},
		{pid: 202, stat: statLine(202, "browser", 90000)},
	}, "self", "net", "sys")

	c, err := NewCollector(root, uint32(unix.Getuid()), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	entries, err := c.Collect()
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	byPID := map[int]uint64{}
	comms := map[int]string{}
	for _, e := range entries {
		byPID[e.PID] = e.RSSPages
		comms[e.PID] = e.Comm
	}
	if byPID[101] != 2500 || byPID[202] != 90000 {
		t.Fatalf("unexpected rss values: %+v", byPID)
	}
	if comms[101] != "editor" || comms[202] != "browser" {
		t.Fatalf("unexpected comms: %+v", comms)
	}
}

func TestCollectFiltersByOwner(t *testing.T) {
	t.Cleanup(func() { statOwner = defaultStatOwner })

	root := buildProcTree(t, []fakeProc{
		{pid: 10, stat: statLine(10, "mine", 100)},
		{pid: 20, stat: statLine(20, "theirs", 5000)},
		{pid: 30, stat: statLine(30, "vanished", 7000)},
	})
	statOwner = func(path string) (uint32, error) {
		switch filepath.Base(path) {
		case "10":
			return 1000, nil
		case "20":
			return 0, nil
		default:
			return 0, errors.New("no such process")
		}
	}

	c, err := NewCollector(root, 1000, nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	entries, err := c.Collect()
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(entries) != 1 || entries[0].PID != 10 {
		t.Fatalf("expected only pid 10, got %+v", entries)
	}
	for _, e := range entries {
		owner, _ := statOwner(pidDir(root, e.PID))
		if owner != c.UID() {
			t.Fatalf("pid %d owned by %d leaked into snapshot", e.PID, owner)
		}
	}
}

func TestCollectSkipsUnreadableStats(t *testing.T) {
	root := buildProcTree(t, []fakeProc{
		{pid: 1, stat: statLine(1, "ok", 42)},
		{pid: 2},
		{pid: 3, stat: "garbage without parens"},
		{pid: 4, stat: "4 (short) S 1"},
		{pid: 5, stat: statLine(5, "negative", -3)},
	})

	c, err := NewCollector(root, uint32(unix.Getuid()), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	if pids := sortedPIDs(t, c); !reflect.DeepEqual(pids, []int{1}) {
		t.Fatalf("expected only pid 1 to survive, got %v", pids)
	}
}

func TestCollectIsRepeatable(t *testing.T) {
	root := buildProcTree(t, []fakeProc{
		{pid: 7, stat: statLine(7, "a", 10)},
		{pid: 8, stat: statLine(8, "b", 10)},
		{pid: 9, stat: statLine(9, "c", 30)},
	})

	c, err := NewCollector(root, uint32(unix.Getuid()), nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	first := sortedPIDs(t, c)
	second := sortedPIDs(t, c)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical enumerations, got %v and %v", first, second)
	}
}

func TestNewCollectorMissingRoot(t *testing.T) {
	if _, err := NewCollector(filepath.Join(t.TempDir(), "absent"), 0, nil); err == nil {
		t.Fatalf("expected error for missing proc root")
	}
}

func TestCollectFailsWhenRootVanishes(t *testing.T) {
	root := buildProcTree(t, nil)
	c, err := NewCollector(root, 0, nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("removing root: %v", err)
	}
	if _, err := c.Collect(); err == nil {
		t.Fatalf("expected listing error once the root is gone")
	}
}
