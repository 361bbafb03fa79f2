package harness

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/secdsl/internal/dsl"
)

// Snapshot captures the observable outcome of a scenario run.
// It is serialized with canonical JSON for deterministic comparison.
type Snapshot struct {
	Scenario string
	Cases    []CaseSnapshot
}

// CaseSnapshot is the recorded outcome of one case.
type CaseSnapshot struct {
	Name        string
	Fingerprint string
	Success     bool
	Value       float64
	Kind        dsl.Kind
	Message     string
}

// NewSnapshot builds a snapshot from a scenario result.
func NewSnapshot(result *Result) Snapshot {
	s := Snapshot{
		Scenario: result.Scenario,
		Cases:    make([]CaseSnapshot, len(result.Cases)),
	}
	for i, c := range result.Cases {
		cs := CaseSnapshot{
			Name:        c.Name,
			Fingerprint: c.Fingerprint,
			Success:     c.Outcome.Success,
		}
		if c.Outcome.Success {
			cs.Value = c.Outcome.Value
		} else {
			cs.Kind = c.Outcome.Kind()
			cs.Message = c.Outcome.Message
		}
		s.Cases[i] = cs
	}
	return s
}

// toValue converts a snapshot to a dsl value for canonical serialization.
// Non-finite values are recorded as their display strings since canonical
// JSON has no spelling for them.
func (s Snapshot) toValue() dsl.Value {
	cases := make(dsl.Array, len(s.Cases))
	for i, c := range s.Cases {
		obj := dsl.NewObject()
		obj.Set("name", dsl.String(c.Name))
		if c.Fingerprint != "" {
			obj.Set("fingerprint", dsl.String(c.Fingerprint))
		}
		obj.Set("success", dsl.Bool(c.Success))
		if c.Success {
			if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
				obj.Set("value", dsl.String(dsl.FormatNumber(c.Value)))
			} else {
				obj.Set("value", dsl.Number(c.Value))
			}
		} else {
			obj.Set("kind", dsl.String(string(c.Kind)))
			obj.Set("message", dsl.String(c.Message))
		}
		cases[i] = obj
	}

	root := dsl.NewObject()
	root.Set("scenario", dsl.String(s.Scenario))
	root.Set("cases", cases)
	return root
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(result *Result) ([]byte, error) {
	data, err := dsl.MarshalCanonical(NewSnapshot(result).toValue())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<name>.golden, where name is the file name without extension.
func GoldenPath(scenarioPath string) string {
	dir := filepath.Dir(scenarioPath)
	base := filepath.Base(scenarioPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the snapshot of result to path, creating the parent
// directory if needed.
func UpdateGolden(path string, result *Result) error {
	data, err := MarshalSnapshot(result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden compares the snapshot of result with the golden file at
// path. A missing golden file is an error; use UpdateGolden to create it.
func CompareGolden(path string, result *Result) error {
	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("golden file not found: %s (run with --update to create)", path)
		}
		return fmt.Errorf("failed to read golden file: %w", err)
	}

	actual, err := MarshalSnapshot(result)
	if err != nil {
		return err
	}

	if !bytes.Equal(bytes.TrimSpace(expected), actual) {
		return fmt.Errorf("snapshot differs from golden file %s\nexpected: %s\nactual:   %s", path, bytes.TrimSpace(expected), actual)
	}
	return nil
}

// AssertGolden compares a result against testdata/golden/<name>.golden.
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/<scenario name>.golden.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) error {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}
