package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/secdsl/internal/dsl"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Attributes  []string `json:"attributes,omitempty"` // referenced attribute names, first use order
	Kind        string   `json:"kind,omitempty"`
	Field       string   `json:"field,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a document without evaluating it",
		Long: `Check a DSL document's structure without touching the catalog.

Reads the document from a file, or from stdin when the argument is "-".
Prints the first problem found, using the same message the run command
would report. For a valid document the attribute names it references are
listed in JSON output and with --verbose.

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - Command error (unreadable input, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	raw, err := readInput(cmd, path)
	if err != nil {
		return formatter.commandError(ErrCodeInput, "failed to read document", err)
	}
	formatter.VerboseLog("Read %d byte(s) from %s", len(raw), path)

	doc, err := dsl.Parse(raw)
	if err != nil {
		return outputValidationError(formatter, err)
	}

	fingerprint, err := dsl.Fingerprint(doc)
	if err != nil {
		return formatter.commandError(ErrCodeGeneric, "failed to fingerprint document", err)
	}

	attributes := uniqueNames(doc.Expression.References())

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Fingerprint: fingerprint, Attributes: attributes})
	}

	fmt.Fprintln(formatter.Writer, "✓ Document valid")
	formatter.VerboseLog("fingerprint: %s", fingerprint)
	if len(attributes) > 0 {
		formatter.VerboseLog("attributes: %s", strings.Join(attributes, ", "))
	}
	return nil
}

// uniqueNames drops repeated names, keeping the first occurrence.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// outputValidationError outputs a validation failure.
func outputValidationError(formatter *OutputFormatter, err error) error {
	var de *dsl.Error
	if !errors.As(err, &de) {
		de = dsl.NewUnexpectedError(err)
	}

	if formatter.Format == "json" {
		result := ValidationResult{
			Valid: false,
			Kind:  string(de.Kind),
			Field: de.Key,
		}
		if err := formatter.Failure(de.Code(), de.Message, result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", de.Code(), de.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return WrapExitError(ExitFailure, "validation failed", de)
}
