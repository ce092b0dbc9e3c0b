package config

import (
	"fmt"
	"os"
	"strings"

	"shoebox/internal/category"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganize()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(envSourceDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.SourceDir = value
	}
	if value, ok := os.LookupEnv(envTargetDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.TargetDir = value
	}

	var err error
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.TargetDir, err = expandPath(strings.TrimSpace(c.Paths.TargetDir)); err != nil {
		return fmt.Errorf("paths.target_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganize() {
	c.Organize.Granularity = strings.TrimSpace(c.Organize.Granularity)
	if c.Organize.Granularity == "" {
		c.Organize.Granularity = string(category.Yearly)
	} else if g, err := category.ParseGranularity(c.Organize.Granularity); err == nil {
		c.Organize.Granularity = string(g)
	}

	c.Organize.Mode = strings.ToLower(strings.TrimSpace(c.Organize.Mode))
	if c.Organize.Mode == "" {
		c.Organize.Mode = ModeCopy
	}
	c.Organize.OnCollision = strings.ToLower(strings.TrimSpace(c.Organize.OnCollision))
	if c.Organize.OnCollision == "" {
		c.Organize.OnCollision = CollisionRename
	}

	dirs := c.Organize.ExcludeDirs[:0]
	for _, dir := range c.Organize.ExcludeDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	c.Organize.ExcludeDirs = dirs
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console", "text":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
