package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/secdsl/internal/catalog"
	"github.com/roach88/secdsl/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult reports what was written.
type ImportResult struct {
	Database   string `json:"database"`
	Source     string `json:"source"`
	Securities int    `json:"securities"`
	Attributes int    `json:"attributes"`
	Facts      int    `json:"facts"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import --db <path> [tables-dir]",
		Short: "Load table files into a SQLite catalog",
		Long: `Load catalog tables into a SQLite database, replacing its contents.

Tables come from a directory holding securities, attributes and facts
files (.json, .yaml or .yml), or from the embedded sample tables when no
directory is given. The database is created if it doesn't exist.

Example:
  secdsl import --db ./catalog.db
  secdsl import --db ./catalog.db ./tables
  secdsl run --catalog sqlite --catalog-db ./catalog.db doc.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runImport(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	var (
		tables catalog.Tables
		err    error
		source = "embedded sample"
	)
	if dir != "" {
		source = dir
		tables, err = catalog.LoadDir(dir)
	} else {
		tables, err = catalog.SampleTables()
	}
	if err != nil {
		return formatter.commandError(ErrCodeCatalog, "failed to load tables", err)
	}
	formatter.VerboseLog("Loaded %d securities, %d attributes, %d facts from %s",
		len(tables.Securities), len(tables.Attributes), len(tables.Facts), source)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.commandError(ErrCodeCatalog, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("error closing database")
		}
	}()

	if err := st.Import(cmd.Context(), tables); err != nil {
		return formatter.commandError(ErrCodeCatalog, "failed to import tables", err)
	}
	logger.Info().
		Str("db", opts.Database).
		Int("securities", len(tables.Securities)).
		Int("attributes", len(tables.Attributes)).
		Int("facts", len(tables.Facts)).
		Msg("catalog imported")

	result := ImportResult{
		Database:   opts.Database,
		Source:     source,
		Securities: len(tables.Securities),
		Attributes: len(tables.Attributes),
		Facts:      len(tables.Facts),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Imported %d securities, %d attributes, %d facts into %s\n",
		result.Securities, result.Attributes, result.Facts, result.Database)
	return nil
}
