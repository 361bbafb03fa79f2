package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/secdsl/internal/catalog"
)

// ErrReadOnly is returned by Import on a store opened with OpenReadOnly.
var ErrReadOnly = errors.New("catalog database is open read-only")

// Import replaces the catalog contents with t in a single transaction.
// Row order is preserved so that duplicate keys keep resolving to the
// first row. On error nothing is changed.
func (s *Store) Import(ctx context.Context, t catalog.Tables) (err error) {
	if s.readOnly {
		return fmt.Errorf("import: %w", ErrReadOnly)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"securities", "attributes", "facts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("import: clear %s: %w", table, err)
		}
	}

	if err := insertRows(ctx, tx, `INSERT INTO securities (id, symbol, name) VALUES (?, ?, ?)`,
		t.Securities, func(sec catalog.Security) []any {
			return []any{sec.ID, sec.Symbol, sec.Name}
		}); err != nil {
		return fmt.Errorf("import securities: %w", err)
	}

	if err := insertRows(ctx, tx, `INSERT INTO attributes (id, name, description) VALUES (?, ?, ?)`,
		t.Attributes, func(attr catalog.Attribute) []any {
			return []any{attr.ID, attr.Name, attr.Description}
		}); err != nil {
		return fmt.Errorf("import attributes: %w", err)
	}

	if err := insertRows(ctx, tx, `INSERT INTO facts (security_id, attribute_id, value) VALUES (?, ?, ?)`,
		t.Facts, func(f catalog.Fact) []any {
			return []any{f.SecurityID, f.AttributeID, f.Value}
		}); err != nil {
		return fmt.Errorf("import facts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}
	return nil
}

func insertRows[T any](ctx context.Context, tx *sql.Tx, query string, rows []T, args func(T) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}
