package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/secdsl/internal/dsl"
)

// Scenario is a named list of documents with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Catalog is a directory of table files. Relative paths are resolved
	// against the scenario file location by LoadScenario. Empty means the
	// embedded sample catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Cases run in declaration order.
	Cases []Case `yaml:"cases"`
}

// Case is one document and its expected outcome.
type Case struct {
	Name     string `yaml:"name"`
	Document string `yaml:"document"`
	Expect   Expect `yaml:"expect"`
}

// Expect is the expected outcome of a case.
type Expect struct {
	Success bool     `yaml:"success"`
	Value   *float64 `yaml:"value,omitempty"`
	Kind    string   `yaml:"kind,omitempty"`
	Message string   `yaml:"message,omitempty"`
}

// knownKinds lists the kinds an expect clause may name.
var knownKinds = []dsl.Kind{
	dsl.KindInvalidJSON,
	dsl.KindSchema,
	dsl.KindUnknownSecurity,
	dsl.KindUnknownAttribute,
	dsl.KindMissingFact,
	dsl.KindUnexpected,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve catalog path relative to the scenario file BEFORE validation
	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); err != nil {
			return nil, fmt.Errorf("invalid scenario: catalog: %w", err)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		if err := validateExpect(i, &c.Expect); err != nil {
			return err
		}
	}

	return nil
}

// validateExpect validates a case's expect clause.
func validateExpect(index int, e *Expect) error {
	if e.Success {
		if e.Kind != "" || e.Message != "" {
			return fmt.Errorf("cases[%d].expect: kind and message only apply when success is false", index)
		}
		return nil
	}

	if e.Value != nil {
		return fmt.Errorf("cases[%d].expect: value only applies when success is true", index)
	}
	if e.Kind != "" && !isKnownKind(e.Kind) {
		names := make([]string, len(knownKinds))
		for i, k := range knownKinds {
			names[i] = string(k)
		}
		return fmt.Errorf("cases[%d].expect: unknown kind %q (want one of %s)", index, e.Kind, strings.Join(names, ", "))
	}
	return nil
}

func isKnownKind(kind string) bool {
	for _, k := range knownKinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}

// FindScenarioFiles finds all YAML scenario files under dir, sorted by
// path. filter is an optional glob matched against the file name without
// extension.
func FindScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}
