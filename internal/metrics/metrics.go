// Package metrics exports organize run statistics in the Prometheus text
// format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"shoebox/internal/organizer"
	"shoebox/internal/photo"
	"shoebox/internal/planner"
)

// File outcome label values.
const (
	OutcomeCategorized = "categorized"
	OutcomeSkipped     = "skipped"
	OutcomeError       = "error"
)

// RunMetrics holds the collectors for one shoebox invocation.
type RunMetrics struct {
	registry *prometheus.Registry

	filesTotal      *prometheus.CounterVec
	dateSourceTotal *prometheus.CounterVec
	placementsTotal *prometheus.CounterVec
	runDuration     prometheus.Gauge
	lastRun         prometheus.Gauge
}

// New builds a registry with every shoebox collector registered and all
// label combinations initialized to zero.
func New() *RunMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoebox",
			Name:      "files_total",
			Help:      "Files seen by the planner, by outcome.",
		},
		[]string{"outcome"},
	)
	dateSourceTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoebox",
			Name:      "date_source_total",
			Help:      "Categorized photos by the strategy that produced their date.",
		},
		[]string{"source"},
	)
	placementsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoebox",
			Name:      "placements_total",
			Help:      "Photos handled by the mover, by action.",
		},
		[]string{"action"},
	)
	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "shoebox",
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run, planning included.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "shoebox",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})

	registry.MustRegister(filesTotal, dateSourceTotal, placementsTotal, runDuration, lastRun)

	for _, outcome := range []string{OutcomeCategorized, OutcomeSkipped, OutcomeError} {
		filesTotal.WithLabelValues(outcome)
	}
	for _, source := range []photo.DateSource{photo.SourceMetadata, photo.SourceFilename, photo.SourceModTime} {
		dateSourceTotal.WithLabelValues(string(source))
	}
	for _, action := range organizer.Actions {
		placementsTotal.WithLabelValues(string(action))
	}

	return &RunMetrics{
		registry:        registry,
		filesTotal:      filesTotal,
		dateSourceTotal: dateSourceTotal,
		placementsTotal: placementsTotal,
		runDuration:     runDuration,
		lastRun:         lastRun,
	}
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePlan records planner statistics.
func (m *RunMetrics) ObservePlan(stats planner.Stats) {
	m.filesTotal.WithLabelValues(OutcomeCategorized).Add(float64(stats.Categorized))
	m.filesTotal.WithLabelValues(OutcomeSkipped).Add(float64(stats.Skipped))
	m.filesTotal.WithLabelValues(OutcomeError).Add(float64(stats.Errors))
	for source, count := range stats.BySource {
		m.dateSourceTotal.WithLabelValues(string(source)).Add(float64(count))
	}
}

// ObserveResult records mover counts.
func (m *RunMetrics) ObserveResult(result organizer.Result) {
	for _, action := range organizer.Actions {
		m.placementsTotal.WithLabelValues(string(action)).Add(float64(result.Count(action)))
	}
}

// ObserveRun records the run's wall time and completion timestamp.
func (m *RunMetrics) ObserveRun(duration time.Duration, finished time.Time) {
	m.runDuration.Set(duration.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path, creating its directory. An
// empty path is a no-op.
func (m *RunMetrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
