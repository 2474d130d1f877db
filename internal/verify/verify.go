package verify

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/sarge/internal/catalog"
	"github.com/roach88/sarge/internal/rewrite"
	"github.com/roach88/sarge/internal/sqlgen"
	"github.com/roach88/sarge/internal/sqlir"
)

// Report is the outcome of one differential run.
type Report struct {
	OriginalSQL  string
	RewrittenSQL string
	// Original and Rewritten are the normalized result rows of each
	// statement, sorted.
	Original  []string
	Rewritten []string
	// Warnings carries the rewrite diagnostics (degraded passes).
	Warnings []string

	Equivalent bool
}

// Run rewrites the statement against the catalog, executes both versions
// on a database seeded from the fixture, and compares the result sets as
// multisets. The input statement is left untouched.
func Run(ctx context.Context, cat *catalog.Catalog, fx *Fixture, stmt *sqlir.Statement, hostVars []sqlir.Value) (*Report, error) {
	original := stmt.Clone()
	rewritten := stmt.Clone()

	rctx := rewrite.NewContext()
	rctx.Schema = cat
	rctx.HostVarCount = len(hostVars)
	if err := rewrite.Rewrite(rctx, rewritten); err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}

	origSQL, origArgs, err := (&sqlgen.Compiler{Params: hostVars}).Compile(original)
	if err != nil {
		return nil, fmt.Errorf("compile original: %w", err)
	}
	combined := make([]sqlir.Value, 0, len(hostVars)+len(rctx.AutoParams))
	combined = append(combined, hostVars...)
	combined = append(combined, rctx.AutoParams...)
	rwSQL, rwArgs, err := (&sqlgen.Compiler{Params: combined}).Compile(rewritten)
	if err != nil {
		return nil, fmt.Errorf("compile rewritten: %w", err)
	}

	db, err := Open()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if err := db.CreateTables(ctx, cat); err != nil {
		return nil, err
	}
	if fx != nil {
		if err := db.Seed(ctx, fx); err != nil {
			return nil, err
		}
	}

	origRows, err := db.query(ctx, origSQL, origArgs)
	if err != nil {
		return nil, fmt.Errorf("original: %w", err)
	}
	rwRows, err := db.query(ctx, rwSQL, rwArgs)
	if err != nil {
		return nil, fmt.Errorf("rewritten: %w", err)
	}

	return &Report{
		OriginalSQL:  origSQL,
		RewrittenSQL: rwSQL,
		Original:     origRows,
		Rewritten:    rwRows,
		Warnings:     rctx.Warnings,
		Equivalent:   slices.Equal(origRows, rwRows),
	}, nil
}
