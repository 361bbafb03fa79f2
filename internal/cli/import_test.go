package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/secdsl/internal/config"
)

func runImportCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewImportCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestImportEmbeddedSample(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	out, err := runImportCmd(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "✓ Imported 3 securities, 6 attributes, 15 facts into "+dbPath+"\n", out)
	assert.FileExists(t, dbPath)
}

func TestImportFromDirJSON(t *testing.T) {
	dir := t.TempDir()
	tables := filepath.Join(dir, "tables")
	writeFile(t, tables, "securities.yaml", "- id: 1\n  symbol: XYZ\n")
	writeFile(t, tables, "attributes.json", `[{"id": 1, "name": "assets"}, {"id": 2, "name": "debt"}]`)
	writeFile(t, tables, "facts.json", `[{"security_id": 1, "attribute_id": 1, "value": 50}]`)
	dbPath := filepath.Join(dir, "catalog.db")

	out, err := runImportCmd(t, "json", "--db", dbPath, tables)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ImportResult{
		Database:   dbPath,
		Source:     tables,
		Securities: 1,
		Attributes: 2,
		Facts:      1,
	}, resp.Data)
}

func TestImportRequiresDB(t *testing.T) {
	_, err := runImportCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}

func TestImportBadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "securities.json", `[{"id": 1, "symbol": ""}]`)
	writeFile(t, dir, "attributes.json", `[]`)
	writeFile(t, dir, "facts.json", `[]`)

	out, err := runImportCmd(t, "text", "--db", filepath.Join(t.TempDir(), "catalog.db"), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E102]: failed to load tables")
}

// An imported database serves as the catalog for run.
func TestImportThenRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	_, err := runImportCmd(t, "text", "--db", dbPath)
	require.NoError(t, err)

	// Importing twice replaces rather than duplicates.
	_, err = runImportCmd(t, "text", "--db", dbPath)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Catalog = config.CatalogConfig{Source: config.SourceSQLite, DB: dbPath}

	buf, execute := newRunCmd(t, &RootOptions{Format: "text", Config: &cfg},
		`{"security": "BCD", "expression": {"fn": "/", "a": "price", "b": "eps"}}`, "-")
	require.NoError(t, execute())
	assert.Equal(t, "0.5\n", buf.String())

	out, err := runCatalogCmd(t, &RootOptions{Format: "text", Config: &cfg}, "securities")
	require.NoError(t, err)
	assert.Contains(t, out, "(3 rows)")
}
