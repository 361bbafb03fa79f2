package cli

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/secdsl/internal/config"
	"github.com/roach88/secdsl/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config and Logger are filled in by the root command before any
	// subcommand runs. Commands built on their own fall back to defaults.
	Config *config.Config
	Logger *zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the secdsl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "secdsl",
		Short: "secdsl - security arithmetic DSL",
		Long: `Validate and evaluate JSON arithmetic documents over security attributes.

A document names a security by symbol and an expression tree whose leaves
are numbers or attribute names. Attribute values come from a catalog: the
embedded sample tables, a directory of table files, or a SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load(cmd)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default: ./secdsl.yaml if present)")

	// Configuration overrides, see config.FlagKeys
	flags.String("catalog", config.DefaultSource, "catalog source (embedded|dir|sqlite)")
	flags.String("catalog-dir", "", "table file directory for --catalog=dir")
	flags.String("catalog-db", "", "SQLite database for --catalog=sqlite")
	flags.Int("max-depth", 0, "maximum expression nesting, 0 for unlimited")
	flags.String("log-level", config.DefaultLogLevel, "log level (trace|debug|info|warn|error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (console|json)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load reads configuration and builds the logger for the running command.
func (o *RootOptions) load(cmd *cobra.Command) error {
	loaded, err := config.Load(o.ConfigFile, cmd.Flags())
	if err != nil {
		return o.formatter(cmd).commandError(ErrCodeConfig, "failed to load configuration", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), loaded.Log)
	if err != nil {
		return o.formatter(cmd).commandError(ErrCodeConfig, "failed to configure logging", err)
	}
	logger = logging.Verbose(logger, o.Verbose)

	o.Config = &loaded.Config
	o.Logger = &logger

	if loaded.File != "" {
		logger.Debug().Str("file", loaded.File).Msg("configuration loaded")
	}
	return nil
}

// settings returns the loaded configuration, or defaults when the command
// runs without the root command.
func (o *RootOptions) settings() config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return *o.Config
}

// logger returns the configured logger, or a disabled one.
func (o *RootOptions) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
