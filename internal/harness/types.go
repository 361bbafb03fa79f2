package harness

import (
	"github.com/roach88/secdsl/internal/engine"
)

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string

	// Pass is true when the outcome matched the expect clause.
	Pass bool

	// Outcome is what the engine produced.
	Outcome engine.Outcome

	// Fingerprint is the document fingerprint, empty when the document
	// did not validate.
	Fingerprint string

	// Errors lists expectation mismatches. Empty if Pass is true.
	Errors []string
}

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario string

	// Pass indicates overall success: true if every case passed.
	Pass bool

	Cases []CaseResult

	// Errors holds every case's mismatches, prefixed with the case name.
	Errors []string
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Cases:    []CaseResult{},
		Errors:   []string{},
	}
}

// AddCase records a case result, failing the scenario if the case failed.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
		for _, e := range c.Errors {
			r.Errors = append(r.Errors, c.Name+": "+e)
		}
	}
}

// Failed returns the number of failed cases.
func (r *Result) Failed() int {
	n := 0
	for _, c := range r.Cases {
		if !c.Pass {
			n++
		}
	}
	return n
}
