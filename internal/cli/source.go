package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/secdsl/internal/catalog"
	"github.com/roach88/secdsl/internal/config"
	"github.com/roach88/secdsl/internal/store"
)

// openCatalog opens the catalog selected by cfg. The returned close
// function is never nil.
func openCatalog(cfg config.CatalogConfig) (catalog.Catalog, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case config.SourceDir:
		tables, err := catalog.LoadDir(cfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		return catalog.NewMemory(tables), noop, nil

	case config.SourceSQLite:
		st, err := store.OpenReadOnly(cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil

	case config.SourceEmbedded, "":
		m, err := catalog.Default()
		if err != nil {
			return nil, noop, err
		}
		return m, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// readInput reads a document from path, or from stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
