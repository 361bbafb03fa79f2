package harness

import (
	"fmt"
	"math"

	"github.com/roach88/secdsl/internal/dsl"
	"github.com/roach88/secdsl/internal/engine"
)

// MismatchError describes an outcome that did not meet its expect clause.
type MismatchError struct {
	Field    string // success, value, kind or message
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// CheckOutcome compares an outcome against an expect clause and returns
// every mismatch, in field order. An empty slice means the case passed.
func CheckOutcome(out engine.Outcome, expect Expect) []error {
	var errs []error

	if out.Success != expect.Success {
		errs = append(errs, &MismatchError{
			Field:    "success",
			Expected: fmt.Sprint(expect.Success),
			Actual:   fmt.Sprintf("%v (%s)", out.Success, describeOutcome(out)),
		})
		return errs
	}

	if expect.Success {
		if expect.Value != nil && !sameNumber(*expect.Value, out.Value) {
			errs = append(errs, &MismatchError{
				Field:    "value",
				Expected: dsl.FormatNumber(*expect.Value),
				Actual:   dsl.FormatNumber(out.Value),
			})
		}
		return errs
	}

	if expect.Kind != "" && string(out.Kind()) != expect.Kind {
		errs = append(errs, &MismatchError{
			Field:    "kind",
			Expected: expect.Kind,
			Actual:   string(out.Kind()),
		})
	}
	if expect.Message != "" && out.Message != expect.Message {
		errs = append(errs, &MismatchError{
			Field:    "message",
			Expected: fmt.Sprintf("%q", expect.Message),
			Actual:   fmt.Sprintf("%q", out.Message),
		})
	}
	return errs
}

// sameNumber compares exactly, treating NaN as equal to NaN.
func sameNumber(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}

func describeOutcome(out engine.Outcome) string {
	if out.Success {
		return "value " + dsl.FormatNumber(out.Value)
	}
	return fmt.Sprintf("%s %q", out.Kind(), out.Message)
}
