package cli

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/secdsl/internal/dsl"
	"github.com/roach88/secdsl/internal/engine"
)

// TraceIDGenerator produces the trace id attached to a run.
type TraceIDGenerator func() string

// NewTraceID returns a time-ordered UUIDv7 string, falling back to a random
// UUIDv4 if the clock source fails.
func NewTraceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// TraceIDs allows overriding the trace id generator (for testing).
	// If nil, defaults to NewTraceID.
	TraceIDs TraceIDGenerator
}

// RunResult is the JSON payload of a run.
type RunResult struct {
	// Value is a number, or "Infinity", "-Infinity" or "NaN" when the
	// result is not finite.
	Value       any    `json:"value,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file|->",
		Short: "Validate and evaluate a document",
		Long: `Validate a DSL document, then evaluate it against the configured catalog.

On success the value is printed. On failure the diagnostic message is
printed: the same text for the same failure every time.

Example:
  secdsl run doc.json
  echo '{"security":"ABC","expression":{"fn":"*","a":"sales","b":2}}' | secdsl run -
  secdsl run --catalog sqlite --catalog-db ./catalog.db doc.json --format json

Exit codes:
  0 - Document evaluated
  1 - Document invalid or evaluation failed
  2 - Command error (unreadable input, catalog unavailable, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocument(opts, args[0], cmd)
		},
	}

	return cmd
}

func runDocument(opts *RunOptions, path string, cmd *cobra.Command) error {
	gen := opts.TraceIDs
	if gen == nil {
		gen = NewTraceID
	}
	traceID := gen()

	formatter := opts.formatter(cmd)
	formatter.TraceID = traceID

	cfg := opts.settings()
	logger := opts.logger().With().Str("trace_id", traceID).Logger()

	raw, err := readInput(cmd, path)
	if err != nil {
		return formatter.commandError(ErrCodeInput, "failed to read document", err)
	}

	cat, closeCatalog, err := openCatalog(cfg.Catalog)
	if err != nil {
		return formatter.commandError(ErrCodeCatalog, "failed to open catalog", err)
	}
	defer func() {
		if closeErr := closeCatalog(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("error closing catalog")
		}
	}()
	logger.Debug().Str("source", cfg.Catalog.Source).Msg("catalog ready")

	eng := engine.New(cat,
		engine.WithLogger(logger),
		engine.WithMaxDepth(cfg.Engine.MaxDepth),
	)

	var (
		out         engine.Outcome
		fingerprint string
	)
	doc, err := dsl.Parse(raw)
	if err != nil {
		out = engine.Failed(err)
	} else {
		if fp, err := dsl.Fingerprint(doc); err == nil {
			fingerprint = fp
		}
		out = eng.RunDocument(cmd.Context(), doc)
	}

	if out.Success {
		if formatter.Format == "json" {
			return formatter.Success(RunResult{
				Value:       jsonNumber(out.Value),
				Fingerprint: fingerprint,
			})
		}
		formatter.VerboseLog("fingerprint: %s", fingerprint)
		return formatter.Success(dsl.FormatNumber(out.Value))
	}

	var de *dsl.Error
	if !errors.As(out.Err, &de) {
		de = dsl.NewUnexpectedError(out.Err)
	}
	err = formatter.Failure(de.Code(), out.Message, RunResult{
		Kind:        string(de.Kind),
		Fingerprint: fingerprint,
	})
	if err != nil {
		return err
	}
	return WrapExitError(ExitFailure, "evaluation failed", de)
}

// jsonNumber returns v, or its display string when encoding/json cannot
// represent it.
func jsonNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dsl.FormatNumber(v)
	}
	return v
}
