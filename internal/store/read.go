package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/secdsl/internal/catalog"
)

// SecurityBySymbol implements catalog.Catalog.
func (s *Store) SecurityBySymbol(ctx context.Context, symbol string) (catalog.Security, error) {
	var sec catalog.Security
	err := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, name
		FROM securities
		WHERE symbol = ?
		ORDER BY rowid ASC
		LIMIT 1
	`, symbol).Scan(&sec.ID, &sec.Symbol, &sec.Name)
	if err != nil {
		return catalog.Security{}, lookupErr(err, fmt.Sprintf("security %q", symbol))
	}
	return sec, nil
}

// AttributeByName implements catalog.Catalog.
func (s *Store) AttributeByName(ctx context.Context, name string) (catalog.Attribute, error) {
	var attr catalog.Attribute
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description
		FROM attributes
		WHERE name = ?
		ORDER BY rowid ASC
		LIMIT 1
	`, name).Scan(&attr.ID, &attr.Name, &attr.Description)
	if err != nil {
		return catalog.Attribute{}, lookupErr(err, fmt.Sprintf("attribute %q", name))
	}
	return attr, nil
}

// Fact implements catalog.Catalog.
func (s *Store) Fact(ctx context.Context, attributeID, securityID int64) (catalog.Fact, error) {
	var f catalog.Fact
	err := s.db.QueryRowContext(ctx, `
		SELECT security_id, attribute_id, value
		FROM facts
		WHERE attribute_id = ? AND security_id = ?
		ORDER BY rowid ASC
		LIMIT 1
	`, attributeID, securityID).Scan(&f.SecurityID, &f.AttributeID, &f.Value)
	if err != nil {
		return catalog.Fact{}, lookupErr(err, fmt.Sprintf("fact (attribute=%d, security=%d)", attributeID, securityID))
	}
	return f, nil
}

// Tables implements catalog.Lister. Rows are returned in import order.
//
// Returns empty slices (not nil) for empty tables.
func (s *Store) Tables(ctx context.Context) (catalog.Tables, error) {
	securities, err := queryRows(ctx, s.db, `SELECT id, symbol, name FROM securities ORDER BY rowid ASC`,
		func(rows *sql.Rows) (catalog.Security, error) {
			var sec catalog.Security
			err := rows.Scan(&sec.ID, &sec.Symbol, &sec.Name)
			return sec, err
		})
	if err != nil {
		return catalog.Tables{}, fmt.Errorf("query securities: %w", err)
	}

	attributes, err := queryRows(ctx, s.db, `SELECT id, name, description FROM attributes ORDER BY rowid ASC`,
		func(rows *sql.Rows) (catalog.Attribute, error) {
			var attr catalog.Attribute
			err := rows.Scan(&attr.ID, &attr.Name, &attr.Description)
			return attr, err
		})
	if err != nil {
		return catalog.Tables{}, fmt.Errorf("query attributes: %w", err)
	}

	facts, err := queryRows(ctx, s.db, `SELECT security_id, attribute_id, value FROM facts ORDER BY rowid ASC`,
		func(rows *sql.Rows) (catalog.Fact, error) {
			var f catalog.Fact
			err := rows.Scan(&f.SecurityID, &f.AttributeID, &f.Value)
			return f, err
		})
	if err != nil {
		return catalog.Tables{}, fmt.Errorf("query facts: %w", err)
	}

	return catalog.Tables{Securities: securities, Attributes: attributes, Facts: facts}, nil
}

func queryRows[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}

// lookupErr maps sql.ErrNoRows to catalog.ErrNotFound.
func lookupErr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, catalog.ErrNotFound)
	}
	return fmt.Errorf("query %s: %w", what, err)
}

var (
	_ catalog.Catalog = (*Store)(nil)
	_ catalog.Lister  = (*Store)(nil)
)
