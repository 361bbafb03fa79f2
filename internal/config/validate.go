package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !slices.Contains(ValidSources, c.Catalog.Source) {
		return fmt.Errorf("catalog.source must be one of %s, got %q", strings.Join(ValidSources, ", "), c.Catalog.Source)
	}
	if c.Catalog.Source == SourceDir && c.Catalog.Dir == "" {
		return fmt.Errorf("catalog.dir is required when catalog.source is %q", SourceDir)
	}
	if c.Catalog.Source == SourceSQLite && c.Catalog.DB == "" {
		return fmt.Errorf("catalog.db is required when catalog.source is %q", SourceSQLite)
	}
	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("engine.max_depth must not be negative, got %d", c.Engine.MaxDepth)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != LogFormatConsole && c.Log.Format != LogFormatJSON {
		return fmt.Errorf("log.format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.Log.Format)
	}
	if c.Harness.Workers < 1 {
		return fmt.Errorf("harness.workers must be at least 1, got %d", c.Harness.Workers)
	}
	return nil
}
