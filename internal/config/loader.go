package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
// Nested keys are separated by a double underscore:
// SECDSL_CATALOG__SOURCE sets catalog.source.
const EnvPrefix = "SECDSL_"

// DefaultFiles are the config files looked for in the working directory
// when no explicit file is given.
var DefaultFiles = []string{"secdsl.yaml", "secdsl.yml"}

// FlagKeys maps command-line flag names to config keys. Flags not listed
// here are not configuration.
var FlagKeys = map[string]string{
	"catalog":     "catalog.source",
	"catalog-dir": "catalog.dir",
	"catalog-db":  "catalog.db",
	"max-depth":   "engine.max_depth",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"workers":     "harness.workers",
}

// Loaded is a loaded configuration and where it came from.
type Loaded struct {
	Config
	File string // config file used, "" if none
}

// findConfigFile finds the config file to use.
// Priority: explicit path > secdsl.yaml > secdsl.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, file, environment variables and
// flags. Precedence (highest to lowest): flags > env vars > config file >
// defaults. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Loaded, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"catalog.source":   DefaultSource,
		"catalog.dir":      "",
		"catalog.db":       "",
		"engine.max_depth": 0,
		"log.level":        DefaultLogLevel,
		"log.format":       DefaultLogFormat,
		"harness.workers":  DefaultWorkers,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables
	// Transform: SECDSL_CATALOG__SOURCE -> catalog.source
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only those explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Catalog.Source = strings.ToLower(cfg.Catalog.Source)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		if used != "" {
			return nil, fmt.Errorf("invalid configuration (%s): %w", used, err)
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Loaded{Config: cfg, File: used}, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}
