package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSrc string

//go:embed data/*.json
var sampleData embed.FS

// Table file base names.
const (
	TableSecurities = "securities"
	TableAttributes = "attributes"
	TableFacts      = "facts"
)

// TableExtensions lists the accepted table file extensions, in lookup order.
var TableExtensions = []string{".json", ".yaml", ".yml"}

// schemaDefs maps a table to its CUE definition in schema.cue.
var schemaDefs = map[string]string{
	TableSecurities: "#Securities",
	TableAttributes: "#Attributes",
	TableFacts:      "#Facts",
}

// LoadError reports a table file that could not be read, parsed or
// checked against the schema.
type LoadError struct {
	Table   string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Table, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Table, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadDir reads the three tables from dir. Each table is a single file named
// after it (securities, attributes, facts) with a .json, .yaml or .yml
// extension holding a list of rows.
func LoadDir(dir string) (Tables, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Tables{}, fmt.Errorf("catalog directory: %w", err)
	}
	if !info.IsDir() {
		return Tables{}, fmt.Errorf("catalog directory: not a directory: %s", dir)
	}
	return LoadFS(os.DirFS(dir), dir)
}

// LoadFS reads the three tables from fsys. root is used only to build
// file names in diagnostics.
func LoadFS(fsys fs.FS, root string) (Tables, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Tables{}, fmt.Errorf("compile catalog schema: %w", err)
	}

	l := &loader{ctx: ctx, schema: schema, fsys: fsys, root: root}

	var (
		t   Tables
		err error
	)
	if t.Securities, err = loadTable[Security](l, TableSecurities); err != nil {
		return Tables{}, err
	}
	if t.Attributes, err = loadTable[Attribute](l, TableAttributes); err != nil {
		return Tables{}, err
	}
	if t.Facts, err = loadTable[Fact](l, TableFacts); err != nil {
		return Tables{}, err
	}
	return t, nil
}

var sampleTables = sync.OnceValues(func() (Tables, error) {
	sub, err := fs.Sub(sampleData, "data")
	if err != nil {
		return Tables{}, err
	}
	return LoadFS(sub, "embedded")
})

// SampleTables returns the embedded sample tables.
func SampleTables() (Tables, error) {
	return sampleTables()
}

// Default returns a memory catalog over the embedded sample tables.
func Default() (*Memory, error) {
	t, err := SampleTables()
	if err != nil {
		return nil, fmt.Errorf("load sample catalog: %w", err)
	}
	return NewMemory(t), nil
}

type loader struct {
	ctx    *cue.Context
	schema cue.Value
	fsys   fs.FS
	root   string
}

func loadTable[T any](l *loader, table string) ([]T, error) {
	name, err := l.find(table)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(l.root, name)

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, &LoadError{Table: table, Path: path, Message: "read failed", Err: err}
	}

	isJSON := filepath.Ext(name) == ".json"

	var value cue.Value
	if isJSON {
		expr, err := cuejson.Extract(path, data)
		if err != nil {
			return nil, cueLoadError(table, path, err)
		}
		value = l.ctx.BuildExpr(expr)
	} else {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &LoadError{Table: table, Path: path, Message: "invalid YAML", Err: err}
		}
		value = l.ctx.Encode(raw)
	}
	if err := value.Err(); err != nil {
		return nil, cueLoadError(table, path, err)
	}

	def := l.schema.LookupPath(cue.ParsePath(schemaDefs[table]))
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(table, path, err)
	}

	var rows []T
	if isJSON {
		err = json.Unmarshal(data, &rows)
	} else {
		err = yaml.Unmarshal(data, &rows)
	}
	if err != nil {
		return nil, &LoadError{Table: table, Path: path, Message: "decode rows", Err: err}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// find returns the first existing file for the table.
func (l *loader) find(table string) (string, error) {
	for _, ext := range TableExtensions {
		name := table + ext
		if _, err := fs.Stat(l.fsys, name); err == nil {
			return name, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", &LoadError{Table: table, Path: filepath.Join(l.root, name), Message: "stat failed", Err: err}
		}
	}
	return "", &LoadError{
		Table:   table,
		Path:    l.root,
		Message: fmt.Sprintf("no %s file found (tried %v)", table, TableExtensions),
		Err:     fs.ErrNotExist,
	}
}

// cueLoadError extracts position info from CUE errors. CUE errors may hold
// several; the first one with a position is reported.
func cueLoadError(table, path string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Table: table, Path: path, Message: err.Error(), Err: err}
	}

	first := errs[0]
	loadErr := &LoadError{Table: table, Path: path, Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
