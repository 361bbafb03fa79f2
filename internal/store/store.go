package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added lookup indexes on symbol, name and (attribute_id, security_id)
const currentSchemaVersion = 1

// busyTimeoutMS bounds how long a lookup waits while an import holds the
// write lock.
const busyTimeoutMS = 5000

// Store is a catalog backed by a SQLite database.
type Store struct {
	db       *sql.DB
	readOnly bool
}

// Open creates or opens a catalog database for writing and brings its
// schema up to date. Import needs a store opened this way.
func Open(path string) (*Store, error) {
	// _txlock=immediate takes the write lock at BEGIN so two imports queue
	// on busy_timeout instead of failing on lock upgrade.
	db, err := open(path, "_txlock=immediate")
	if err != nil {
		return nil, err
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing catalog database for lookups only. The
// file must exist and must have been written by Import; nothing on disk is
// created or migrated.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog database: %w", err)
	}

	db, err := open(path, "mode=ro")
	if err != nil {
		return nil, err
	}

	if err := checkSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, readOnly: true}, nil
}

// open connects to path with the busy timeout on every pooled connection.
func open(path string, params string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&%s", uriPath.Replace(path), busyTimeoutMS, params)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sql.Open is lazy; surface a bad path here.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// uriPath escapes the characters that end or encode the path part of a
// SQLite URI filename.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	version, err := schemaVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the indexes backing the three catalog lookups.
// CREATE INDEX IF NOT EXISTS is a no-op when the index exists.
func migrateToV1(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_securities_symbol ON securities(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_attributes_name ON attributes(name)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_key ON facts(attribute_id, security_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

// checkSchema rejects a read-only database that Import has not brought to
// the current schema. A read-only store cannot migrate it.
func checkSchema(db *sql.DB) error {
	version, err := schemaVersion(db)
	if err != nil {
		return err
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("catalog database has schema version %d, want %d (run import to upgrade)",
			version, currentSchemaVersion)
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}
