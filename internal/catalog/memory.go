package catalog

import (
	"context"
	"fmt"
)

type factKey struct {
	attributeID int64
	securityID  int64
}

// Memory is an immutable in-memory catalog. Indexes are built once at
// construction; when a key appears more than once the first row wins.
type Memory struct {
	tables     Tables
	securities map[string]Security
	attributes map[string]Attribute
	facts      map[factKey]Fact
}

// NewMemory indexes a copy of t.
func NewMemory(t Tables) *Memory {
	m := &Memory{
		tables: Tables{
			Securities: append([]Security(nil), t.Securities...),
			Attributes: append([]Attribute(nil), t.Attributes...),
			Facts:      append([]Fact(nil), t.Facts...),
		},
		securities: make(map[string]Security, len(t.Securities)),
		attributes: make(map[string]Attribute, len(t.Attributes)),
		facts:      make(map[factKey]Fact, len(t.Facts)),
	}

	for _, s := range m.tables.Securities {
		if _, exists := m.securities[s.Symbol]; !exists {
			m.securities[s.Symbol] = s
		}
	}
	for _, a := range m.tables.Attributes {
		if _, exists := m.attributes[a.Name]; !exists {
			m.attributes[a.Name] = a
		}
	}
	for _, f := range m.tables.Facts {
		key := factKey{attributeID: f.AttributeID, securityID: f.SecurityID}
		if _, exists := m.facts[key]; !exists {
			m.facts[key] = f
		}
	}

	return m
}

// SecurityBySymbol implements Catalog.
func (m *Memory) SecurityBySymbol(ctx context.Context, symbol string) (Security, error) {
	if err := ctx.Err(); err != nil {
		return Security{}, err
	}
	s, ok := m.securities[symbol]
	if !ok {
		return Security{}, fmt.Errorf("security %q: %w", symbol, ErrNotFound)
	}
	return s, nil
}

// AttributeByName implements Catalog.
func (m *Memory) AttributeByName(ctx context.Context, name string) (Attribute, error) {
	if err := ctx.Err(); err != nil {
		return Attribute{}, err
	}
	a, ok := m.attributes[name]
	if !ok {
		return Attribute{}, fmt.Errorf("attribute %q: %w", name, ErrNotFound)
	}
	return a, nil
}

// Fact implements Catalog.
func (m *Memory) Fact(ctx context.Context, attributeID, securityID int64) (Fact, error) {
	if err := ctx.Err(); err != nil {
		return Fact{}, err
	}
	f, ok := m.facts[factKey{attributeID: attributeID, securityID: securityID}]
	if !ok {
		return Fact{}, fmt.Errorf("fact (attribute=%d, security=%d): %w", attributeID, securityID, ErrNotFound)
	}
	return f, nil
}

// Tables implements Lister. The returned slices are copies.
func (m *Memory) Tables(ctx context.Context) (Tables, error) {
	if err := ctx.Err(); err != nil {
		return Tables{}, err
	}
	return Tables{
		Securities: append([]Security(nil), m.tables.Securities...),
		Attributes: append([]Attribute(nil), m.tables.Attributes...),
		Facts:      append([]Fact(nil), m.tables.Facts...),
	}, nil
}

var (
	_ Catalog = (*Memory)(nil)
	_ Lister  = (*Memory)(nil)
)
