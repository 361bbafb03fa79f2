// Package config loads secdsl configuration.
//
// Values are layered, lowest to highest precedence: built-in defaults, the
// YAML config file (secdsl.yaml), SECDSL_ environment variables, and
// explicitly set command-line flags.
package config

// Catalog sources.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceSQLite   = "sqlite"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Defaults.
const (
	DefaultSource    = SourceEmbedded
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatConsole
	DefaultWorkers   = 4
)

// ValidSources lists the accepted catalog.source values.
var ValidSources = []string{SourceEmbedded, SourceDir, SourceSQLite}

// Config holds all configuration options.
type Config struct {
	Catalog CatalogConfig `koanf:"catalog"`
	Engine  EngineConfig  `koanf:"engine"`
	Log     LogConfig     `koanf:"log"`
	Harness HarnessConfig `koanf:"harness"`
}

// CatalogConfig selects where lookup tables come from.
type CatalogConfig struct {
	Source string `koanf:"source"` // embedded, dir or sqlite
	Dir    string `koanf:"dir"`    // table files, for source=dir
	DB     string `koanf:"db"`     // database file, for source=sqlite
}

// EngineConfig tunes evaluation.
type EngineConfig struct {
	MaxDepth int `koanf:"max_depth"` // 0 = unlimited
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // console or json
}

// HarnessConfig configures scenario runs.
type HarnessConfig struct {
	Workers int `koanf:"workers"` // scenario files run in parallel
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{Source: DefaultSource},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Harness: HarnessConfig{Workers: DefaultWorkers},
	}
}
