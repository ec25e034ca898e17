// Package metrics exposes the outcome of a run in the Prometheus text format
// so a node_exporter textfile collector can pick it up.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/srodi/freezer/pkg/freeze"
)

// Recorder owns a private registry holding the gauges of a single run.
type Recorder struct {
	registry *prometheus.Registry

	takenPercent     prometheus.Gauge
	targetPercent    prometheus.Gauge
	deficitPercent   *prometheus.GaugeVec
	processesScanned prometheus.Gauge
	processesStopped prometheus.Gauge
	processesGone    prometheus.Gauge
	signalFailures   prometheus.Gauge
	dryRun           prometheus.Gauge
	lastRun          prometheus.Gauge
}

// NewRecorder registers the run gauges on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		takenPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_memory_taken_percent",
			Help: "Percentage of total memory that is neither free nor cache at decision time",
		}),
		targetPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_target_free_percent",
			Help: "Configured percentage of total memory that should stay free",
		}),
		deficitPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "freezer_deficit_percent",
			Help: "Percentage of total memory still to reclaim, before and after the freeze pass",
		}, []string{"stage"}),
		processesScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_processes_scanned",
			Help: "Number of owned processes in the snapshot",
		}),
		processesStopped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_processes_stopped",
			Help: "Number of processes stopped (or selected, in a dry run)",
		}),
		processesGone: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_processes_gone",
			Help: "Number of selected processes that exited before they could be stopped",
		}),
		signalFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_signal_failures",
			Help: "Number of stop signals that could not be delivered",
		}),
		dryRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_dry_run",
			Help: "1 when the run only planned suspensions",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freezer_last_run_timestamp_seconds",
			Help: "Unix time at which the run finished",
		}),
	}
	r.registry.MustRegister(
		r.takenPercent,
		r.targetPercent,
		r.deficitPercent,
		r.processesScanned,
		r.processesStopped,
		r.processesGone,
		r.signalFailures,
		r.dryRun,
		r.lastRun,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records a finished run.
func (r *Recorder) Observe(scanned int, target float64, res freeze.Result, at time.Time) {
	r.takenPercent.Set(res.TakenPercent)
	r.targetPercent.Set(target)
	r.deficitPercent.WithLabelValues("initial").Set(res.InitialDeficit)
	r.deficitPercent.WithLabelValues("remaining").Set(res.RemainingDeficit)
	r.processesScanned.Set(float64(scanned))
	r.processesStopped.Set(float64(len(res.Suspended)))
	r.processesGone.Set(float64(len(res.Gone)))
	r.signalFailures.Set(float64(len(res.Failed)))
	if res.DryRun {
		r.dryRun.Set(1)
	} else {
		r.dryRun.Set(0)
	}
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes the gauges to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
