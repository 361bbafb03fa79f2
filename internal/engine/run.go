package engine

import (
	"context"
	"errors"

	"github.com/roach88/secdsl/internal/dsl"
)

// Outcome is the result of running raw document text.
//
// Success is true only when the document validated and evaluated. Message
// is empty on success and holds the diagnostic otherwise. Err is the
// underlying *dsl.Error for callers that need the kind.
type Outcome struct {
	Success bool
	Value   float64
	Message string
	Err     error
}

// Kind returns the failure kind, or "" on success.
func (o Outcome) Kind() dsl.Kind {
	return dsl.KindOf(o.Err)
}

// Run validates raw, then evaluates it. Execution only happens when
// validation succeeds.
func (e *Engine) Run(ctx context.Context, raw []byte) Outcome {
	doc, err := dsl.Parse(raw)
	if err != nil {
		return Failed(err)
	}
	return e.RunDocument(ctx, doc)
}

// RunDocument evaluates an already decoded document.
func (e *Engine) RunDocument(ctx context.Context, doc *dsl.Document) Outcome {
	v, err := e.Execute(ctx, doc)
	if err != nil {
		return Failed(err)
	}
	return Outcome{Success: true, Value: v}
}

// Failed builds the outcome for a document that failed validation or
// evaluation. Errors other than *dsl.Error are reported as unexpected.
func Failed(err error) Outcome {
	var de *dsl.Error
	if !errors.As(err, &de) {
		de = dsl.NewUnexpectedError(err)
	}
	return Outcome{Message: de.Message, Err: de}
}
