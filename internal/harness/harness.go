package harness

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/secdsl/internal/catalog"
	"github.com/roach88/secdsl/internal/dsl"
	"github.com/roach88/secdsl/internal/engine"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	catalog  catalog.Catalog
	logger   zerolog.Logger
	maxDepth int
}

// WithCatalog evaluates every scenario against c, ignoring the scenario's
// own catalog setting.
func WithCatalog(c catalog.Catalog) Option {
	return func(rc *runConfig) {
		rc.catalog = c
	}
}

// WithLogger sets the logger passed to the engine.
func WithLogger(logger zerolog.Logger) Option {
	return func(rc *runConfig) {
		rc.logger = logger
	}
}

// WithMaxDepth sets the engine's nesting limit.
func WithMaxDepth(n int) Option {
	return func(rc *runConfig) {
		rc.maxDepth = n
	}
}

func newRunConfig(opts []Option) *runConfig {
	rc := &runConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Resolve the catalog (option, scenario directory, or embedded sample)
// 2. Run each case through the engine in declaration order
// 3. Fingerprint every document that validates
// 4. Compare each outcome with its expect clause
//
// The returned error covers setup failures only; failed cases are reported
// in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	rc := newRunConfig(opts)

	cat, err := scenarioCatalog(scenario, rc)
	if err != nil {
		return nil, err
	}

	eng := engine.New(cat,
		engine.WithLogger(rc.logger.With().Str("scenario", scenario.Name).Logger()),
		engine.WithMaxDepth(rc.maxDepth),
	)

	result := NewResult(scenario.Name)
	for _, c := range scenario.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.AddCase(runCase(ctx, eng, c))
	}
	return result, nil
}

func scenarioCatalog(scenario *Scenario, rc *runConfig) (catalog.Catalog, error) {
	if rc.catalog != nil {
		return rc.catalog, nil
	}
	if scenario.Catalog != "" {
		tables, err := catalog.LoadDir(scenario.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		return catalog.NewMemory(tables), nil
	}
	m, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	return m, nil
}

func runCase(ctx context.Context, eng *engine.Engine, c Case) CaseResult {
	raw := []byte(c.Document)

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
		out = eng.RunDocument(ctx, doc)
	}

	cr := CaseResult{
		Name:        c.Name,
		Pass:        true,
		Outcome:     out,
		Fingerprint: fingerprint,
		Errors:      []string{},
	}
	for _, mismatch := range CheckOutcome(out, c.Expect) {
		cr.Pass = false
		cr.Errors = append(cr.Errors, mismatch.Error())
	}
	return cr
}
