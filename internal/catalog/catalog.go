// Package catalog provides the read-only lookup tables a DSL document is
// evaluated against: securities, attributes and the facts joining them.
//
// Tables are loaded once and never mutated. Every Catalog implementation is
// safe for concurrent readers.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned (possibly wrapped) when a lookup key has no row.
var ErrNotFound = errors.New("not found")

// Security is a financial instrument, looked up by Symbol.
type Security struct {
	ID     int64  `json:"id" yaml:"id"`
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Attribute is a named numeric property, looked up by Name.
type Attribute struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Fact is the value of one attribute for one security.
type Fact struct {
	SecurityID  int64   `json:"security_id" yaml:"security_id"`
	AttributeID int64   `json:"attribute_id" yaml:"attribute_id"`
	Value       float64 `json:"value" yaml:"value"`
}

// Tables is the full content of a catalog.
type Tables struct {
	Securities []Security  `json:"securities"`
	Attributes []Attribute `json:"attributes"`
	Facts      []Fact      `json:"facts"`
}

// Catalog resolves the three lookups the evaluator needs.
// Misses return an error matching ErrNotFound.
type Catalog interface {
	SecurityBySymbol(ctx context.Context, symbol string) (Security, error)
	AttributeByName(ctx context.Context, name string) (Attribute, error)
	Fact(ctx context.Context, attributeID, securityID int64) (Fact, error)
}

// Lister is implemented by catalogs that can enumerate their tables.
type Lister interface {
	Tables(ctx context.Context) (Tables, error)
}
