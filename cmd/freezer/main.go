//go:build linux

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/srodi/freezer/pkg/collector/memory"
	"github.com/srodi/freezer/pkg/collector/process"
	"github.com/srodi/freezer/pkg/config"
	"github.com/srodi/freezer/pkg/freeze"
	"github.com/srodi/freezer/pkg/logging"
	"github.com/srodi/freezer/pkg/metrics"
	"github.com/srodi/freezer/pkg/report"
	"github.com/srodi/freezer/pkg/runner"
	"github.com/srodi/freezer/pkg/ui"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "freezer: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var configPath string
	flagValues := config.Default()

	cmd := &cobra.Command{
		Use:   "freezer",
		Short: "Suspend the largest processes of the current user until enough memory is free",
		Long: `freezer inspects every process owned by the invoking user, ranks them by
resident memory and sends SIGSTOP to the largest ones until the requested
share of system memory is free. Stopped processes keep their state and can
be resumed later with SIGCONT.

It runs once and exits; schedule it from cron or a low-memory hook.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath, flagValues)
			if err != nil {
				return err
			}
			return run(cfg, stdout, isTerminal(stdout))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.Float64VarP(&flagValues.TargetFreePercent, "target-free", "t", flagValues.TargetFreePercent, "percentage of total memory that should be free afterwards")
	flags.StringVar(&flagValues.ProcRoot, "proc-root", flagValues.ProcRoot, "mount point of the proc filesystem")
	flags.BoolVarP(&flagValues.DryRun, "dry-run", "n", false, "show what would be stopped without sending signals")
	flags.BoolVarP(&flagValues.Report, "report", "r", false, "print a table of the processes and the decision")
	flags.IntVar(&flagValues.Top, "top", 0, "limit the report to the N largest processes (0 = all)")
	flags.StringVar(&flagValues.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics for the run to this file")
	flags.StringVar(&flagValues.LogLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $LOG_LEVEL or info")

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate(fmt.Sprintf("freezer version %s\n", version))
	return cmd
}

// resolveConfig layers defaults, the config file and explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, configPath string, flagValues config.Config) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("target-free") {
		cfg.TargetFreePercent = flagValues.TargetFreePercent
	}
	if flags.Changed("proc-root") {
		cfg.ProcRoot = flagValues.ProcRoot
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = flagValues.DryRun
	}
	if flags.Changed("report") {
		cfg.Report = flagValues.Report
	}
	if flags.Changed("top") {
		cfg.Top = flagValues.Top
	}
	if flags.Changed("metrics-textfile") {
		cfg.MetricsTextfile = flagValues.MetricsTextfile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagValues.LogLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = logging.LevelFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(cfg config.Config, stdout io.Writer, color bool) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	collector, err := process.NewCollector(cfg.ProcRoot, uint32(unix.Getuid()), logger)
	if err != nil {
		return err
	}

	policy := freeze.Policy{
		TargetFreePercent: cfg.TargetFreePercent,
		Exclude:           []int{os.Getpid()},
	}
	r := &runner.Runner{
		Memory:    memory.NewReader(cfg.ProcRoot),
		Processes: collector,
		Freezer:   freeze.NewFreezer(policy, freeze.NewSignaler(), logger, cfg.DryRun),
		Logger:    logger,
	}

	out, err := r.Run()
	if err != nil {
		return err
	}

	if cfg.MetricsTextfile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(out.Snapshot.Len(), cfg.TargetFreePercent, out.Result, time.Now())
		if err := rec.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("metrics textfile not written", zap.Error(err))
		}
	}

	if cfg.Report || cfg.DryRun {
		fmt.Fprint(stdout, ui.Header(color))
		summary := report.Summary{
			TotalBytes:        out.Stats.TotalBytes,
			PageSize:          out.Stats.PageSize,
			TargetFreePercent: cfg.TargetFreePercent,
			Result:            out.Result,
			Processes:         out.Snapshot.Len(),
		}
		if err := report.Render(stdout, summary, report.BuildRows(out.Snapshot, out.Stats, out.Result), cfg.Top); err != nil {
			logger.Warn("report not rendered", zap.Error(err))
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
