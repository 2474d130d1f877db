package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// Join strength reduction.
//
// Outer-to-inner demotion: an outer join exists to keep NULL-padded rows
// alive. A WHERE-level clause whose every alternative requires a real
// (non-padded) value from the outer spec rejects those rows anyway, so
// the join is semantically inner and the cheaper inner-join plans become
// legal. A demotion cascades to an immediately-following chained RIGHT
// OUTER spec: its padding depended on the demoted join's result shape.
func demoteOuterJoins(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	for idx, spec := range stmt.Specs {
		if !spec.JoinType.IsOuter() {
			continue
		}
		if !hasNullRejectingWitness(list, spec.Location) {
			continue
		}
		spec.JoinType = sqlir.JoinInner
		for _, chained := range stmt.Specs[idx+1:] {
			if chained.JoinType != sqlir.JoinRightOuter {
				break
			}
			chained.JoinType = sqlir.JoinInner
		}
	}
	return list, nil
}

// hasNullRejectingWitness looks for a WHERE-level clause that a
// NULL-padded row of the spec cannot satisfy: every OR-alternative
// references the spec, none is an IS NULL test, and none contains a
// function that can turn NULL inputs into a non-NULL result.
func hasNullRejectingWitness(list sqlir.ClauseList, loc sqlir.SpecID) bool {
clauses:
	for _, clause := range list {
		if clause.Location != sqlir.WhereLocation || len(clause.Terms) == 0 {
			continue
		}
		for _, term := range clause.Terms {
			specs := make(map[sqlir.SpecID]bool)
			sqlir.ReferencedSpecs(term, specs)
			if !specs[loc] {
				continue clauses
			}
			if cmp, ok := term.(*sqlir.Cmp); ok && cmp.Op == sqlir.OpIsNull {
				continue clauses
			}
			if exprHasNullableProducer(term) {
				continue clauses
			}
		}
		return true
	}
	return false
}

func exprHasNullableProducer(e sqlir.Expr) bool {
	found := false
	var walk func(sqlir.Expr)
	walk = func(e sqlir.Expr) {
		switch t := e.(type) {
		case *sqlir.Func:
			if sqlir.IsNullableProducer(t.Name) {
				found = true
				return
			}
			for _, arg := range t.Args {
				walk(arg)
			}
		case *sqlir.Cast:
			walk(t.Inner)
		case *sqlir.Cmp:
			walk(t.Left)
			if t.Right != nil {
				walk(t.Right)
			}
		case *sqlir.Between:
			walk(t.Subject)
			if t.Lower != nil {
				walk(t.Lower)
			}
			if t.Upper != nil {
				walk(t.Upper)
			}
		case *sqlir.RangeOf:
			walk(t.Subject)
		}
	}
	walk(e)
	return found
}

// Explicit-to-implicit flattening: a contiguous run of explicit INNER
// specs with no outer join inside it pins a join order the plan search
// would otherwise be free to improve. Each such spec becomes an implicit
// (comma) join and its ON clauses become plain WHERE clauses. An
// explicit join-order hint disables the pass.
func flattenInnerJoins(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	if stmt.OrderedHint {
		return list, nil
	}
	for _, spec := range stmt.Specs {
		if spec.JoinType != sqlir.JoinInner {
			continue
		}
		if followsOuter(stmt, spec) {
			continue
		}
		spec.JoinType = sqlir.JoinNone
		for i := range list {
			if list[i].Location == spec.Location {
				list[i].Location = sqlir.WhereLocation
			}
		}
	}
	return list, nil
}

// followsOuter reports whether any earlier spec is outer-joined. An
// inner join downstream of an outer join must not be freed for
// reordering: pulling it ahead of the padding join changes which rows
// get padded.
func followsOuter(stmt *sqlir.Statement, spec *sqlir.JoinSpec) bool {
	for _, s := range stmt.Specs {
		if s == spec {
			return false
		}
		if s.JoinType.IsOuter() {
			return true
		}
	}
	return false
}
