// Package testutil holds catalog doubles and document builders shared by
// package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/roach88/secdsl/internal/catalog"
)

// SampleCatalog returns the embedded sample catalog, failing the test if it
// cannot be loaded.
func SampleCatalog(t testing.TB) *catalog.Memory {
	t.Helper()
	m, err := catalog.Default()
	if err != nil {
		t.Fatalf("load sample catalog: %v", err)
	}
	return m
}

// Lookup is one recorded catalog call.
type Lookup struct {
	Method string
	Key    string
}

// RecordingCatalog wraps a Catalog and records every lookup in call order.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingCatalog struct {
	inner catalog.Catalog

	mu      sync.Mutex
	lookups []Lookup
}

// NewRecordingCatalog wraps inner.
func NewRecordingCatalog(inner catalog.Catalog) *RecordingCatalog {
	return &RecordingCatalog{inner: inner}
}

func (c *RecordingCatalog) record(method, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups = append(c.lookups, Lookup{Method: method, Key: key})
}

// Lookups returns a copy of the recorded calls.
func (c *RecordingCatalog) Lookups() []Lookup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Lookup(nil), c.lookups...)
}

// SecurityBySymbol implements catalog.Catalog.
func (c *RecordingCatalog) SecurityBySymbol(ctx context.Context, symbol string) (catalog.Security, error) {
	c.record("security", symbol)
	return c.inner.SecurityBySymbol(ctx, symbol)
}

// AttributeByName implements catalog.Catalog.
func (c *RecordingCatalog) AttributeByName(ctx context.Context, name string) (catalog.Attribute, error) {
	c.record("attribute", name)
	return c.inner.AttributeByName(ctx, name)
}

// Fact implements catalog.Catalog.
func (c *RecordingCatalog) Fact(ctx context.Context, attributeID, securityID int64) (catalog.Fact, error) {
	c.record("fact", fmt.Sprintf("%d/%d", attributeID, securityID))
	return c.inner.Fact(ctx, attributeID, securityID)
}

// FailingCatalog returns Err from every lookup.
type FailingCatalog struct {
	Err error
}

// SecurityBySymbol implements catalog.Catalog.
func (c FailingCatalog) SecurityBySymbol(context.Context, string) (catalog.Security, error) {
	return catalog.Security{}, c.Err
}

// AttributeByName implements catalog.Catalog.
func (c FailingCatalog) AttributeByName(context.Context, string) (catalog.Attribute, error) {
	return catalog.Attribute{}, c.Err
}

// Fact implements catalog.Catalog.
func (c FailingCatalog) Fact(context.Context, int64, int64) (catalog.Fact, error) {
	return catalog.Fact{}, c.Err
}

// PanickingCatalog resolves securities from Inner and panics on any other
// lookup.
type PanickingCatalog struct {
	Inner catalog.Catalog
}

// SecurityBySymbol implements catalog.Catalog.
func (c PanickingCatalog) SecurityBySymbol(ctx context.Context, symbol string) (catalog.Security, error) {
	return c.Inner.SecurityBySymbol(ctx, symbol)
}

// AttributeByName implements catalog.Catalog.
func (c PanickingCatalog) AttributeByName(context.Context, string) (catalog.Attribute, error) {
	panic("attribute lookup")
}

// Fact implements catalog.Catalog.
func (c PanickingCatalog) Fact(context.Context, int64, int64) (catalog.Fact, error) {
	panic("fact lookup")
}

var (
	_ catalog.Catalog = (*RecordingCatalog)(nil)
	_ catalog.Catalog = FailingCatalog{}
	_ catalog.Catalog = PanickingCatalog{}
)
