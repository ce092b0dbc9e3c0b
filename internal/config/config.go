package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"shoebox/internal/category"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories shoebox reads from and writes to.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	// TargetDir receives the category folders. Empty means SourceDir.
	TargetDir string `toml:"target_dir"`
	StateDir  string `toml:"state_dir"`
}

// Organize contains the grouping and placement settings.
type Organize struct {
	Granularity  string   `toml:"granularity"`
	YearAsParent bool     `toml:"year_as_parent"`
	Mode         string   `toml:"mode"`
	OnCollision  string   `toml:"on_collision"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	PreviewLimit int      `toml:"preview_limit"`
}

// Journal controls the run history database.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Metrics controls the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File additionally writes JSON logs to <state_dir>/shoebox.log.
	File bool `toml:"file"`
}

// Config encapsulates all configuration values for shoebox.
//
// Configuration sections:
//   - Paths: source, target, and state directories
//   - Organize: granularity, layout, transfer mode, and collision policy
//   - Journal: sqlite run history
//   - Metrics: Prometheus textfile export
//   - Logging: log format, level, and optional file output
type Config struct {
	Paths    Paths    `toml:"paths"`
	Organize Organize `toml:"organize"`
	Journal  Journal  `toml:"journal"`
	Metrics  Metrics  `toml:"metrics"`
	Logging  Logging  `toml:"logging"`
}

const (
	defaultConfigPath  = "~/.config/shoebox/config.toml"
	projectConfigName  = "shoebox.toml"
	journalFileName    = "journal.db"
	logFileName        = "shoebox.log"
	envSourceDir       = "SHOEBOX_SOURCE_DIR"
	envTargetDir       = "SHOEBOX_TARGET_DIR"
	defaultStateDir    = "~/.local/share/shoebox"
	defaultPreviewSize = 5
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// TargetRoot returns the directory category folders are created in.
func (c *Config) TargetRoot() string {
	if c.Paths.TargetDir != "" {
		return c.Paths.TargetDir
	}
	return c.Paths.SourceDir
}

// JournalPath returns the sqlite run journal location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, journalFileName)
}

// LogFilePath returns the JSON log location, or "" when file logging is off.
func (c *Config) LogFilePath() string {
	if !c.Logging.File || c.Paths.StateDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.StateDir, logFileName)
}

// GranularityValue returns the parsed grouping granularity.
func (c *Config) GranularityValue() category.Granularity {
	g, err := category.ParseGranularity(c.Organize.Granularity)
	if err != nil {
		return category.Yearly
	}
	return g
}

// MoveFiles reports whether organize moves rather than copies.
func (c *Config) MoveFiles() bool {
	return c.Organize.Mode == ModeMove
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
