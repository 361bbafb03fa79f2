// Package logging builds the zerolog logger used by the CLI and engine.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/secdsl/internal/config"
)

// New returns a logger writing to w at the configured level. The console
// format is human readable; the json format writes one object per line.
func New(w io.Writer, cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	switch cfg.Format {
	case config.LogFormatJSON:
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
	case config.LogFormatConsole, "":
		out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// Verbose lowers the level to debug when verbose is set.
func Verbose(logger zerolog.Logger, verbose bool) zerolog.Logger {
	if verbose && logger.GetLevel() > zerolog.DebugLevel {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger
}
