package config

import (
	"errors"
	"fmt"

	"titlemark/internal/markers"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCheck(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCheck() error {
	if c.Check.Workers < 1 {
		return errors.New("check.workers must be at least 1")
	}
	for _, name := range c.Check.DisabledMarkers {
		if _, err := markers.ParseKind(name); err != nil {
			return fmt.Errorf("check.disabled_markers: %w", err)
		}
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.KeepRuns < 0 {
		return errors.New("history.keep_runs must be zero (keep everything) or positive")
	}
	if c.History.Enabled && c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set when history.enabled is true")
	}
	return nil
}
