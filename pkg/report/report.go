package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/srodi/freezer/pkg/freeze"
	"github.com/srodi/freezer/pkg/snapshot"
	"github.com/srodi/freezer/pkg/types"
)

// Actions shown in the report table.
const (
	ActionStopped = "stopped"
	ActionPlanned = "planned"
	ActionGone    = "gone"
	ActionFailed  = "failed"
)

// Row describes one process in the report, largest first.
type Row struct {
	PID        int
	Comm       string
	RSSPages   uint64
	RSSMB      float64
	RSSPercent float64
	Action     string
}

// Summary carries the system-wide figures printed above the table.
type Summary struct {
	TotalBytes        uint64
	PageSize          uint64
	TargetFreePercent float64
	Result            freeze.Result
	Processes         int
}

// BuildRows merges the ranked snapshot with the outcome of the freeze walk.
func BuildRows(snap *snapshot.Snapshot, stats types.MemoryStats, res freeze.Result) []Row {
	actions := make(map[int]string, res.Signaled())
	stoppedLabel := ActionStopped
	if res.DryRun {
		stoppedLabel = ActionPlanned
	}
	for _, a := range res.Suspended {
		actions[a.Entry.PID] = stoppedLabel
	}
	for _, a := range res.Gone {
		actions[a.Entry.PID] = ActionGone
	}
	for _, a := range res.Failed {
		actions[a.Entry.PID] = ActionFailed
	}

	entries := snap.Descending()
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			PID:        e.PID,
			Comm:       e.Comm,
			RSSPages:   e.RSSPages,
			RSSMB:      float64(e.RSSPages*stats.PageSize) / (1024 * 1024),
			RSSPercent: freeze.PagesToPercent(e.RSSPages, stats),
			Action:     actions[e.PID],
		})
	}
	return rows
}

// Render writes the summary and up to limit rows. limit <= 0 prints every row,
// but rows with an action are always printed.
func Render(w io.Writer, summary Summary, rows []Row, limit int) error {
	res := summary.Result
	mode := "live"
	if res.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "Total memory: %d bytes | Page size: %d | Mode: %s\n", summary.TotalBytes, summary.PageSize, mode)
	fmt.Fprintf(w, "Taken: %.2f%% | Target free: %.2f%% | Deficit: %.2f%% -> %.2f%%\n",
		res.TakenPercent, summary.TargetFreePercent, res.InitialDeficit, res.RemainingDeficit)
	fmt.Fprintf(w, "Processes: %d | Stopped: %d | Gone: %d | Failed: %d\n",
		summary.Processes, len(res.Suspended), len(res.Gone), len(res.Failed))
	if res.Exhausted {
		fmt.Fprintln(w, "[!] Ran out of processes before the target was reached")
	}
	fmt.Fprintln(w)

	visible := VisibleRows(rows, limit)
	if len(visible) == 0 {
		fmt.Fprintln(w, "No owned processes found")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tCOMM\tRSS(pages)\tRSS(MB)\tMEM(%)\tACTION")
	for _, row := range visible {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f\t%.2f\t%s\n",
			row.PID, row.Comm, row.RSSPages, row.RSSMB, row.RSSPercent, row.Action)
	}
	return tw.Flush()
}

// VisibleRows returns the first limit rows plus any later row that carries an action.
func VisibleRows(rows []Row, limit int) []Row {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	visible := make([]Row, 0, limit)
	for i, row := range rows {
		if i < limit || row.Action != "" {
			visible = append(visible, row)
		}
	}
	return visible
}
