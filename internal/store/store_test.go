package store

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/secdsl/internal/catalog"
)

// importSample writes the embedded sample tables to a new database at path.
func importSample(t *testing.T, path string) catalog.Tables {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	tables, err := catalog.SampleTables()
	require.NoError(t, err)
	require.NoError(t, s.Import(context.Background(), tables))
	require.NoError(t, s.Close())
	return tables
}

func TestOpen_NewDatabaseIsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.FileExists(t, path)

	got, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Tables{
		Securities: []catalog.Security{},
		Attributes: []catalog.Attribute{},
		Facts:      []catalog.Fact{},
	}, got)

	_, err = s.SecurityBySymbol(context.Background(), "ABC")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestOpen_KeepsImportedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	want := importSample(t, path)

	// Reopening for writing must not clear or duplicate the catalog.
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		got, err := s.Tables(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got, "open #%d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "catalog.db"))
	assert.Error(t, err)
}

func TestOpen_PathNeedingEscape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q?x#y%z.db")
	importSample(t, path)
	assert.FileExists(t, path)

	s, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer s.Close()

	sec, err := s.SecurityBySymbol(context.Background(), "CDE")
	require.NoError(t, err)
	assert.Equal(t, int64(3), sec.ID)
}

func TestOpenReadOnly_ServesLookups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	importSample(t, path)

	s, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	sec, err := s.SecurityBySymbol(ctx, "ABC")
	require.NoError(t, err)
	attr, err := s.AttributeByName(ctx, "sales")
	require.NoError(t, err)
	fact, err := s.Fact(ctx, attr.ID, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, fact.Value)
}

func TestOpenReadOnly_RejectsImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	want := importSample(t, path)

	s, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer s.Close()

	err = s.Import(context.Background(), catalog.Tables{})
	require.ErrorIs(t, err, ErrReadOnly)

	got, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpenReadOnly_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := OpenReadOnly(path)
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, fs.ErrNotExist, "read-only open must not create the file")
}

func TestOpenReadOnly_NotACatalog(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"not sqlite", "securities,attributes,facts\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".db")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := OpenReadOnly(path)
			assert.Error(t, err)
		})
	}
}

func TestOpenReadOnly_OutdatedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	writeV0Database(t, path)

	_, err := OpenReadOnly(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run import to upgrade")

	// Opening for writing migrates it, after which reads succeed.
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	sec, err := ro.SecurityBySymbol(context.Background(), "OLD")
	require.NoError(t, err)
	assert.Equal(t, int64(9), sec.ID)
}

func TestClose_Twice(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.NotPanics(t, func() { _ = s.Close() })
	assert.NoError(t, (&Store{}).Close())
}

// Migration tests

func TestMigration_UpgradeFromV0(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	writeV0Database(t, path)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := schemaVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)

	for table, idx := range map[string]string{
		"securities": "idx_securities_symbol",
		"attributes": "idx_attributes_name",
		"facts":      "idx_facts_key",
	} {
		assert.Contains(t, getTableIndexes(t, s.db, table), idx)
	}

	// Rows written before the migration survive it.
	sec, err := s.SecurityBySymbol(context.Background(), "OLD")
	require.NoError(t, err)
	assert.Equal(t, int64(9), sec.ID)
}

// writeV0Database simulates a catalog written before lookup indexes
// existed: schema applied, one row, user_version 0.
func writeV0Database(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO securities (id, symbol, name) VALUES (9, 'OLD', '')`)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	require.NoError(t, err)
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		indexes = append(indexes, name)
	}
	require.NoError(t, rows.Err())
	return indexes
}
