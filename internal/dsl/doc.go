// Package dsl defines the security expression language: its document and
// expression types, the order-preserving JSON value model it is decoded
// from, the validator that gates untrusted input, and the error taxonomy
// shared with the evaluator.
//
// A document names a security and an arithmetic expression tree:
//
//	{"security": "ABC", "expression": {"fn": "*", "a": "sales", "b": 2}}
//
// Operands are literals (numbers), references (attribute names resolved per
// security) or nested expressions. The operator set is closed: + - * /.
//
// This package imports nothing internal. The engine and catalog packages
// build on it.
package dsl
