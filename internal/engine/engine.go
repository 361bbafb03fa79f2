package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/secdsl/internal/catalog"
	"github.com/roach88/secdsl/internal/dsl"
)

// Engine evaluates DSL documents against a catalog.
//
// Thread-safety: Execute and Run may be called from any goroutine. The engine
// never mutates itself after construction.
type Engine struct {
	catalog  catalog.Catalog
	logger   zerolog.Logger
	maxDepth int // 0 means unlimited
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-evaluation debug events.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxDepth rejects documents nested deeper than n levels.
// Zero (the default) leaves depth bounded only by the input.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// New creates an Engine reading from c.
func New(c catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: c,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute evaluates doc and returns its numeric value.
//
// Errors are always *dsl.Error. On failure the returned value is 0. Panics
// raised while evaluating are recovered and reported as dsl.KindUnexpected.
func (e *Engine) Execute(ctx context.Context, doc *dsl.Document) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = 0, dsl.NewUnexpectedError(&PanicError{Value: r})
		}
		e.logEvaluation(doc, value, err)
	}()

	if doc == nil {
		return 0, dsl.NewUnexpectedError(errNilDocument)
	}
	if e.maxDepth > 0 {
		if depth := doc.Expression.Depth(); depth > e.maxDepth {
			return 0, dsl.NewUnexpectedError(&DepthExceededError{Depth: depth, Limit: e.maxDepth})
		}
	}

	security, lookupErr := e.catalog.SecurityBySymbol(ctx, doc.Security)
	if lookupErr != nil {
		return 0, lookupError(lookupErr, func() *dsl.Error {
			return dsl.NewUnknownSecurityError(doc.Security)
		})
	}

	v, evalErr := e.evalExpression(ctx, doc.Expression, security.ID)
	if evalErr != nil {
		return 0, evalErr
	}
	return v, nil
}

func (e *Engine) evalExpression(ctx context.Context, expr *dsl.Expression, securityID int64) (float64, error) {
	if expr == nil {
		return 0, dsl.NewUnexpectedError(errNilExpression)
	}

	a, err := e.evalOperand(ctx, expr.A, securityID)
	if err != nil {
		return 0, err
	}
	b, err := e.evalOperand(ctx, expr.B, securityID)
	if err != nil {
		return 0, err
	}

	v, err := expr.Fn.Apply(a, b)
	if err != nil {
		return 0, dsl.NewUnexpectedError(err)
	}
	return v, nil
}

func (e *Engine) evalOperand(ctx context.Context, op dsl.Operand, securityID int64) (float64, error) {
	switch v := op.(type) {
	case dsl.Literal:
		return float64(v), nil
	case dsl.Reference:
		return e.resolve(ctx, string(v), securityID)
	case *dsl.Expression:
		return e.evalExpression(ctx, v, securityID)
	default:
		return 0, dsl.NewUnexpectedError(fmt.Errorf("unsupported operand type: %T", op))
	}
}

// resolve looks up the value of the named attribute for the security.
func (e *Engine) resolve(ctx context.Context, name string, securityID int64) (float64, error) {
	attr, err := e.catalog.AttributeByName(ctx, name)
	if err != nil {
		return 0, lookupError(err, func() *dsl.Error {
			return dsl.NewUnknownAttributeError(name)
		})
	}

	fact, err := e.catalog.Fact(ctx, attr.ID, securityID)
	if err != nil {
		return 0, lookupError(err, func() *dsl.Error {
			return dsl.NewMissingFactError(name)
		})
	}
	return fact.Value, nil
}

func (e *Engine) logEvaluation(doc *dsl.Document, value float64, err error) {
	ev := e.logger.Debug()
	if !ev.Enabled() {
		return
	}
	if doc != nil {
		ev = ev.Str("security", doc.Security)
	}
	if err != nil {
		ev.Str("kind", string(dsl.KindOf(err))).AnErr("cause", unwrapCause(err)).Msg("evaluation failed")
		return
	}
	ev.Float64("value", value).Msg("evaluated")
}

func unwrapCause(err error) error {
	if de, ok := err.(*dsl.Error); ok && de.Err != nil {
		return de.Err
	}
	return nil
}
