package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAssets(); err != nil {
		return err
	}
	if err := c.validateRecent(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAssets() error {
	if c.Assets.ThumbnailSize <= 0 {
		return errors.New("assets.thumbnail_size must be positive")
	}
	return nil
}

func (c *Config) validateRecent() error {
	if c.Recent.MaxEntries < 1 || c.Recent.MaxEntries > maxRecentEntries {
		return fmt.Errorf("recent.max_entries must be between 1 and %d", maxRecentEntries)
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
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
