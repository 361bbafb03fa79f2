package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/secdsl/internal/catalog"
	"github.com/roach88/secdsl/internal/dsl"
)

// PanicError carries a value recovered from a panic during evaluation.
// It is always wrapped in a dsl.KindUnexpected error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during evaluation: %v", e.Value)
}

// DepthExceededError is returned when a document nests deeper than the
// engine's configured limit. It is always wrapped in a dsl.KindUnexpected
// error.
type DepthExceededError struct {
	Depth int // Nesting depth of the document
	Limit int // Maximum allowed depth
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("expression depth %d exceeds limit %d", e.Depth, e.Limit)
}

var (
	errNilDocument   = errors.New("nil document")
	errNilExpression = errors.New("nil expression")
)

// lookupError maps a catalog miss to the given domain error and anything
// else to the catch-all.
func lookupError(err error, miss func() *dsl.Error) *dsl.Error {
	if errors.Is(err, catalog.ErrNotFound) {
		return miss()
	}
	return dsl.NewUnexpectedError(err)
}
