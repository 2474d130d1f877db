// Package catalog compiles table schemas written in CUE into the
// catalog slice the rewrite passes consult: column nullability, row
// identity (OID) columns, and partition keys.
//
// A catalog file declares tables under a top-level `catalog` struct:
//
//	catalog: {
//		emp: {
//			partition_key: "region"
//			columns: {
//				id:     {type: "int", nullable: false, oid: true}
//				name:   {type: "string"}
//				region: {type: "string", nullable: false}
//			}
//		}
//	}
//
// `nullable` defaults to true; `oid` defaults to false.
package catalog

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Column is one attribute of a table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	OID      bool
}

// Table is one base table.
type Table struct {
	Name         string
	Columns      map[string]Column
	PartitionKey string
}

// Catalog is the compiled schema set. It satisfies rewrite.Schema.
type Catalog struct {
	Tables map[string]Table
}

// CompileError is a schema compilation failure with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile compiles a catalog from a CUE file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadString(string(data))
}

// LoadString compiles a catalog from CUE source text.
func LoadString(src string) (*Catalog, error) {
	v := cuecontext.New().CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	root := v.LookupPath(cue.ParsePath("catalog"))
	if !root.Exists() {
		return nil, &CompileError{Field: "catalog", Message: "top-level catalog struct is required", Pos: v.Pos()}
	}
	return Compile(root)
}

// Compile parses the `catalog` CUE struct into a Catalog.
func Compile(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	cat := &Catalog{Tables: make(map[string]Table)}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		table, err := compileTable(name, iter.Value())
		if err != nil {
			return nil, err
		}
		cat.Tables[name] = table
	}
	return cat, nil
}

func compileTable(name string, v cue.Value) (Table, error) {
	table := Table{Name: name, Columns: make(map[string]Column)}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return table, &CompileError{
			Field:   name + ".columns",
			Message: "at least one column is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := colsVal.Fields()
	if err != nil {
		return table, formatCUEError(err)
	}
	for iter.Next() {
		colName := iter.Selector().Unquoted()
		col, err := compileColumn(name, colName, iter.Value())
		if err != nil {
			return table, err
		}
		table.Columns[colName] = col
	}
	if len(table.Columns) == 0 {
		return table, &CompileError{
			Field:   name + ".columns",
			Message: "at least one column is required",
			Pos:     colsVal.Pos(),
		}
	}

	keyVal := v.LookupPath(cue.ParsePath("partition_key"))
	if keyVal.Exists() {
		key, err := keyVal.String()
		if err != nil {
			return table, formatCUEError(err)
		}
		if _, ok := table.Columns[key]; !ok {
			return table, &CompileError{
				Field:   name + ".partition_key",
				Message: fmt.Sprintf("partition key %q is not a column", key),
				Pos:     keyVal.Pos(),
			}
		}
		table.PartitionKey = key
	}
	return table, nil
}

func compileColumn(table, name string, v cue.Value) (Column, error) {
	col := Column{Name: name, Nullable: true}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return col, &CompileError{
			Field:   table + "." + name,
			Message: "type is required",
			Pos:     v.Pos(),
		}
	}
	typ, err := typeVal.String()
	if err != nil {
		return col, formatCUEError(err)
	}
	switch typ {
	case "int", "float", "string", "bool":
		col.Type = typ
	default:
		return col, &CompileError{
			Field:   table + "." + name,
			Message: fmt.Sprintf("unknown type %q", typ),
			Pos:     typeVal.Pos(),
		}
	}

	if nv := v.LookupPath(cue.ParsePath("nullable")); nv.Exists() {
		nullable, err := nv.Bool()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.Nullable = nullable
	}
	if ov := v.LookupPath(cue.ParsePath("oid")); ov.Exists() {
		oid, err := ov.Bool()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.OID = oid
	}
	return col, nil
}

// ColumnNullable reports whether the column can hold NULL. Unknown
// tables and columns report true, the conservative answer.
func (c *Catalog) ColumnNullable(table, column string) bool {
	t, ok := c.Tables[table]
	if !ok {
		return true
	}
	col, ok := t.Columns[column]
	if !ok {
		return true
	}
	return col.Nullable
}

// IsOIDColumn reports whether the column holds row identity.
func (c *Catalog) IsOIDColumn(table, column string) bool {
	t, ok := c.Tables[table]
	if !ok {
		return false
	}
	return t.Columns[column].OID
}

// ColumnDiscrete reports whether the column holds integers. Unknown
// tables and columns report false, the conservative answer.
func (c *Catalog) ColumnDiscrete(table, column string) bool {
	t, ok := c.Tables[table]
	if !ok {
		return false
	}
	return t.Columns[column].Type == "int"
}

// PartitionKey returns the partitioning column of a table, if any.
func (c *Catalog) PartitionKey(table string) (string, bool) {
	t, ok := c.Tables[table]
	if !ok || t.PartitionKey == "" {
		return "", false
	}
	return t.PartitionKey, true
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return first
}
