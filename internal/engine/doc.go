// Package engine evaluates validated DSL documents against a catalog.
//
// Evaluation is a pure function of the document and the catalog contents:
// the engine holds no per-request state, so one Engine may serve any number
// of goroutines as long as its catalog is safe for concurrent readers.
//
// Evaluation order:
//  1. Resolve the document's security by exact symbol.
//  2. Walk the expression depth first, left operand before right.
//     A reference resolves the attribute by name, then the fact for
//     (attribute, security). A literal is used as-is.
//  3. Apply the node's operator. Division follows IEEE 754.
//
// The first failure stops evaluation. Lookup misses are reported with their
// own kinds; everything else (catalog I/O errors, cancelled contexts,
// malformed trees built in code, panics) is reported as dsl.KindUnexpected.
package engine
