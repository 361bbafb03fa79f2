// Package harness runs DSL documents from scenario files and checks the
// outcomes.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	catalog: tables          # optional, directory of table files
//	cases:
//	  - name: sales_times_two
//	    document: '{"expression": {"fn": "*", "a": "sales", "b": 2}, "security": "ABC"}'
//	    expect:
//	      success: true
//	      value: 8
//	  - name: unknown_security
//	    document: '{"expression": {"fn": "+", "a": 1, "b": 2}, "security": "XYZ"}'
//	    expect:
//	      success: false
//	      kind: UNKNOWN_SECURITY
//	      message: "Security (XYZ) could not be found."
//
// Documents are kept as raw text so that invalid JSON and key order reach
// the validator unchanged. The catalog path is resolved relative to the
// scenario file; without one the embedded sample catalog is used.
//
// # Expectations
//
//   - success: required, true when the document must validate and evaluate
//   - value: expected result (success only); YAML .inf and .nan are accepted
//   - kind: expected failure kind (failure only)
//   - message: expected diagnostic, compared exactly (failure only)
//
// # Golden Files
//
// A scenario's outcomes, with each valid document's fingerprint, can be
// snapshotted as canonical JSON and compared against a golden file stored
// next to the scenario in golden/<file>.golden.
//
// # Concurrency
//
// Cases inside a scenario run in order. RunFiles runs scenario files in
// parallel with a bounded number of workers; files share nothing but the
// read-only catalog.
package harness
