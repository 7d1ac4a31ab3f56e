package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateStability(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWatch() error {
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		return errors.New("paths.watch_dir must be set")
	}
	pattern := c.Watch.Pattern
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return fmt.Errorf("watch.pattern %q: %w", pattern, err)
	}
	return nil
}

func (c *Config) validateStability() error {
	if c.Stability.MaxAttempts < 1 {
		return errors.New("stability.max_attempts must be at least 1")
	}
	if c.Stability.RetryDelayMS < 0 {
		return errors.New("stability.retry_delay_ms must not be negative")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	switch c.Processing.Mode {
	case ProcessingModeCopy:
		if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
			return errors.New("paths.archive_dir must be set when processing.mode is copy")
		}
		if c.Paths.ArchiveDir == c.Paths.WatchDir {
			return errors.New("paths.archive_dir must differ from paths.watch_dir")
		}
	case ProcessingModeCommand:
		if len(c.Processing.Command) == 0 || strings.TrimSpace(c.Processing.Command[0]) == "" {
			return errors.New("processing.command must be set when processing.mode is command")
		}
	default:
		return fmt.Errorf("processing.mode %q is not supported (use copy or command)", c.Processing.Mode)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
