package testsupport

import (
	"path/filepath"
	"testing"

	"shoebox/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test:
// base/source, base/target, and base/state. Callers create the directories
// they need.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "source")
	cfgVal.Paths.TargetDir = filepath.Join(base, "target")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithGranularity sets the organize granularity.
func WithGranularity(value string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.Granularity = value
	}
}

// WithMove switches the transfer mode to move.
func WithMove() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.Mode = config.ModeMove
	}
}

// WithTargetInSource clears the target so photos are organized inside the
// source tree.
func WithTargetInSource() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.TargetDir = ""
	}
}

// WithJournalDisabled turns off the run journal.
func WithJournalDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// WithMetricsTextfile points metrics export at base/metrics/shoebox.prom.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "shoebox.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
