package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// The HAVING mover runs first: a HAVING clause free of aggregates
// filters individual rows just as well before grouping as after it, and
// moving it to WHERE exposes the clause to every later pass (and to the
// index-driven access paths). When the statement groups, every column
// the clause references must be a grouping column; a clause over a
// non-grouped column has no per-row meaning and stays put.
func moveHavingClauses(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	if len(stmt.Having) == 0 {
		return list, nil
	}
	var keep sqlir.ClauseList
	for _, clause := range stmt.Having {
		if clauseHasAggregate(clause) || !clauseOverGroupCols(stmt, clause) {
			keep = append(keep, clause)
			continue
		}
		moved := clause
		moved.Location = sqlir.WhereLocation
		list = append(list, moved)
	}
	stmt.Having = keep
	return list, nil
}

func clauseHasAggregate(c sqlir.Clause) bool {
	for _, term := range c.Terms {
		if exprHasAggregate(term) {
			return true
		}
	}
	return false
}

func exprHasAggregate(e sqlir.Expr) bool {
	switch t := e.(type) {
	case *sqlir.Func:
		if sqlir.IsAggregate(t.Name) {
			return true
		}
		for _, arg := range t.Args {
			if exprHasAggregate(arg) {
				return true
			}
		}
	case *sqlir.Cast:
		return exprHasAggregate(t.Inner)
	case *sqlir.Cmp:
		if exprHasAggregate(t.Left) {
			return true
		}
		return t.Right != nil && exprHasAggregate(t.Right)
	case *sqlir.Between:
		if exprHasAggregate(t.Subject) {
			return true
		}
		if t.Lower != nil && exprHasAggregate(t.Lower) {
			return true
		}
		return t.Upper != nil && exprHasAggregate(t.Upper)
	case *sqlir.RangeOf:
		return exprHasAggregate(t.Subject)
	}
	return false
}

// clauseOverGroupCols reports whether every column the clause references
// is one of the statement's grouping columns. Ungrouped statements have
// no restriction.
func clauseOverGroupCols(stmt *sqlir.Statement, c sqlir.Clause) bool {
	if len(stmt.GroupBy) == 0 {
		return true
	}
	grouped := func(col *sqlir.ColRef) bool {
		for i := range stmt.GroupBy {
			if sqlir.SameColumn(&stmt.GroupBy[i], col) {
				return true
			}
		}
		return false
	}
	ok := true
	for _, term := range c.Terms {
		walkColumns(term, func(col *sqlir.ColRef) {
			if !grouped(col) {
				ok = false
			}
		})
	}
	return ok
}

// walkColumns visits every column reference in the expression, skipping
// subquery operands (their references belong to the nested scope).
func walkColumns(e sqlir.Expr, visit func(*sqlir.ColRef)) {
	switch t := e.(type) {
	case *sqlir.ColRef:
		visit(t)
	case *sqlir.Cast:
		walkColumns(t.Inner, visit)
	case *sqlir.Cmp:
		walkColumns(t.Left, visit)
		if t.Right != nil {
			walkColumns(t.Right, visit)
		}
	case *sqlir.Between:
		walkColumns(t.Subject, visit)
		if t.Lower != nil {
			walkColumns(t.Lower, visit)
		}
		if t.Upper != nil {
			walkColumns(t.Upper, visit)
		}
	case *sqlir.RangeOf:
		walkColumns(t.Subject, visit)
	case *sqlir.Func:
		for _, arg := range t.Args {
			walkColumns(arg, visit)
		}
	}
}
