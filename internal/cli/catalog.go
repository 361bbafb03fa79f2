package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/secdsl/internal/catalog"
	"github.com/roach88/secdsl/internal/dsl"
)

// catalogTables lists the table names accepted by the catalog command.
var catalogTables = []string{catalog.TableSecurities, catalog.TableAttributes, catalog.TableFacts}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [securities|attributes|facts]",
		Short: "Print the active catalog tables",
		Long: `Print the tables of the configured catalog.

With no argument all three tables are printed. Facts are shown with the
security symbol and attribute name they join.

Example:
  secdsl catalog
  secdsl catalog facts --catalog dir --catalog-dir ./tables
  secdsl catalog --format json`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     catalogTables,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			only := ""
			if len(args) == 1 {
				only = args[0]
			}
			return runCatalog(rootOpts, only, cmd)
		},
	}

	return cmd
}

func runCatalog(opts *RootOptions, only string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if only != "" && !slices.Contains(catalogTables, only) {
		return formatter.commandError(ErrCodeGeneric, fmt.Sprintf("unknown table %q: must be one of %v", only, catalogTables), nil)
	}

	cfg := opts.settings()
	cat, closeCatalog, err := openCatalog(cfg.Catalog)
	if err != nil {
		return formatter.commandError(ErrCodeCatalog, "failed to open catalog", err)
	}
	defer closeCatalog()

	lister, ok := cat.(catalog.Lister)
	if !ok {
		return formatter.commandError(ErrCodeCatalog, "catalog cannot list its tables", nil)
	}
	tables, err := lister.Tables(cmd.Context())
	if err != nil {
		return formatter.commandError(ErrCodeCatalog, "failed to read catalog", err)
	}

	if formatter.Format == "json" {
		switch only {
		case catalog.TableSecurities:
			return formatter.Success(tables.Securities)
		case catalog.TableAttributes:
			return formatter.Success(tables.Attributes)
		case catalog.TableFacts:
			return formatter.Success(tables.Facts)
		default:
			return formatter.Success(tables)
		}
	}

	w := formatter.Writer
	if only == "" || only == catalog.TableSecurities {
		renderSecurities(w, tables.Securities)
	}
	if only == "" || only == catalog.TableAttributes {
		renderAttributes(w, tables.Attributes)
	}
	if only == "" || only == catalog.TableFacts {
		renderFacts(w, tables)
	}
	return nil
}

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(header)
	return t
}

func renderSecurities(w io.Writer, rows []catalog.Security) {
	t := newTable(w, "Securities", table.Row{"ID", "Symbol", "Name"})
	for _, s := range rows {
		t.AppendRow(table.Row{s.ID, s.Symbol, s.Name})
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func renderAttributes(w io.Writer, rows []catalog.Attribute) {
	t := newTable(w, "Attributes", table.Row{"ID", "Name", "Description"})
	for _, a := range rows {
		t.AppendRow(table.Row{a.ID, a.Name, a.Description})
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func renderFacts(w io.Writer, tables catalog.Tables) {
	symbols := make(map[int64]string, len(tables.Securities))
	for _, s := range slices.Backward(tables.Securities) {
		symbols[s.ID] = s.Symbol // first row wins
	}
	names := make(map[int64]string, len(tables.Attributes))
	for _, a := range slices.Backward(tables.Attributes) {
		names[a.ID] = a.Name
	}

	t := newTable(w, "Facts", table.Row{"Security", "Attribute", "Value"})
	for _, f := range tables.Facts {
		t.AppendRow(table.Row{
			labelOr(symbols, f.SecurityID),
			labelOr(names, f.AttributeID),
			dsl.FormatNumber(f.Value),
		})
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(tables.Facts))
}

// labelOr returns the label for id, or "#id" when no row has that id.
func labelOr(labels map[int64]string, id int64) string {
	if l, ok := labels[id]; ok {
		return l
	}
	return fmt.Sprintf("#%d", id)
}
