package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// Trivial IS [NOT] NULL folding: on a column the catalog declares
// non-nullable, IS NULL is always false (the term drops out of its
// OR-group) and IS NOT NULL is always true (the whole clause drops).
// Columns that can be NULL-padded by an outer join, columns of derived
// tables, and statements compiled without a catalog are left alone.
func foldTrivialNullTests(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	if ctx.Schema == nil {
		return list, nil
	}
	out := make(sqlir.ClauseList, 0, len(list))
	for _, clause := range list {
		var terms []sqlir.Expr
		clauseTrue := false
		for _, term := range clause.Terms {
			switch classifyNullTest(ctx, stmt, term) {
			case nullTestFalse:
				continue // drop the term from its OR-group
			case nullTestTrue:
				clauseTrue = true
			}
			terms = append(terms, term)
		}
		if clauseTrue {
			continue // the clause is satisfied by every row
		}
		if len(terms) == 0 {
			// Every alternative was provably false.
			return falsifyLocation(list, clause.Location), nil
		}
		clause.Terms = terms
		out = append(out, clause)
	}
	return out, nil
}

type nullTestVerdict int

const (
	nullTestKeep nullTestVerdict = iota
	nullTestTrue
	nullTestFalse
)

func classifyNullTest(ctx *Context, stmt *sqlir.Statement, term sqlir.Expr) nullTestVerdict {
	cmp, ok := term.(*sqlir.Cmp)
	if !ok || (cmp.Op != sqlir.OpIsNull && cmp.Op != sqlir.OpIsNotNull) {
		return nullTestKeep
	}
	col, ok := sqlir.StripCast(cmp.Left).(*sqlir.ColRef)
	if !ok {
		return nullTestKeep
	}
	spec := stmt.Spec(col.Spec)
	if spec == nil || spec.IsDerived() {
		return nullTestKeep
	}
	if paddedSpec(stmt, spec) {
		return nullTestKeep
	}
	if ctx.Schema.ColumnNullable(spec.Table, col.Column) {
		return nullTestKeep
	}
	if cmp.Op == sqlir.OpIsNull {
		return nullTestFalse
	}
	return nullTestTrue
}

// paddedSpec reports whether the spec's columns can be NULL-padded: the
// spec is the outer-joined side itself, or some later spec right-outer
// joins against it.
func paddedSpec(stmt *sqlir.Statement, spec *sqlir.JoinSpec) bool {
	if spec.JoinType.IsOuter() {
		return true
	}
	seen := false
	for _, s := range stmt.Specs {
		if s == spec {
			seen = true
			continue
		}
		if seen && s.JoinType == sqlir.JoinRightOuter {
			return true
		}
	}
	return false
}
