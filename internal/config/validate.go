package config

import (
	"errors"
	"fmt"

	"shoebox/internal/category"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if _, err := category.ParseGranularity(c.Organize.Granularity); err != nil {
		return fmt.Errorf("organize.granularity: %w", err)
	}
	switch c.Organize.Mode {
	case ModeCopy, ModeMove:
	default:
		return fmt.Errorf("organize.mode must be %q or %q, got %q", ModeCopy, ModeMove, c.Organize.Mode)
	}
	switch c.Organize.OnCollision {
	case CollisionRename, CollisionSkip, CollisionOverwrite:
	default:
		return fmt.Errorf("organize.on_collision must be one of rename, skip, overwrite; got %q", c.Organize.OnCollision)
	}
	if c.Organize.PreviewLimit < 0 {
		return errors.New("organize.preview_limit must be zero (list all) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}
