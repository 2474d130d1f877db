// Package verify checks rewrites against SQLite: it seeds an in-memory
// database from a catalog and fixture rows, runs the original and the
// rewritten statement, and requires identical result sets.
package verify

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sarge/internal/catalog"
)

// DB is an in-memory SQLite database used for one differential run.
type DB struct {
	db *sql.DB
}

// Open creates a fresh in-memory database. A single connection keeps the
// memory database alive for the DB's lifetime.
func Open() (*DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// case_sensitive_like matches the rewriter's byte-wise LIKE model;
	// without it SQLite folds ASCII case and the prefix rewrite would
	// not be equivalent.
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA case_sensitive_like = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

var sqliteTypes = map[string]string{
	"int":    "INTEGER",
	"float":  "REAL",
	"string": "TEXT",
	"bool":   "INTEGER",
}

// CreateTables creates one table per catalog entry. Column order is
// sorted so the DDL is deterministic.
func (d *DB) CreateTables(ctx context.Context, cat *catalog.Catalog) error {
	tables := make([]string, 0, len(cat.Tables))
	for name := range cat.Tables {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	for _, name := range tables {
		table := cat.Tables[name]
		cols := make([]string, 0, len(table.Columns))
		for col := range table.Columns {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		defs := make([]string, 0, len(cols))
		for _, col := range cols {
			c := table.Columns[col]
			def := fmt.Sprintf("%s %s", col, sqliteTypes[c.Type])
			if !c.Nullable {
				def += " NOT NULL"
			}
			defs = append(defs, def)
		}
		ddl := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
		if _, err := d.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}
	return nil
}

// Seed inserts fixture rows. Tables must exist in the catalog the
// database was created from.
func (d *DB) Seed(ctx context.Context, fx *Fixture) error {
	tables := make([]string, 0, len(fx.Rows))
	for name := range fx.Rows {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	for _, table := range tables {
		for i, row := range fx.Rows[table] {
			cols := make([]string, 0, len(row))
			for col := range row {
				cols = append(cols, col)
			}
			sort.Strings(cols)

			marks := make([]string, len(cols))
			args := make([]any, len(cols))
			for j, col := range cols {
				marks[j] = "?"
				args[j] = row[col]
			}
			ins := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				table, strings.Join(cols, ", "), strings.Join(marks, ", "))
			if _, err := d.db.ExecContext(ctx, ins, args...); err != nil {
				return fmt.Errorf("seed %s row %d: %w", table, i, err)
			}
		}
	}
	return nil
}

// query runs a statement and returns its rows normalized to sorted
// strings, one per row, so result sets compare as multisets.
func (d *DB) query(ctx context.Context, sqlText string, args []any) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, renderRow(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func renderRow(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		switch t := v.(type) {
		case nil:
			parts[i] = "NULL"
		case []byte:
			parts[i] = string(t)
		case float64:
			parts[i] = fmt.Sprintf("%g", t)
		default:
			parts[i] = fmt.Sprintf("%v", t)
		}
	}
	return strings.Join(parts, "|")
}
