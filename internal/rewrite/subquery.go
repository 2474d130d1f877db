package rewrite

import (
	"fmt"

	"github.com/roach88/sarge/internal/sqlir"
)

// Uncorrelated-subquery-to-join: a comparison against an uncorrelated
// single-column subquery forces a nested execution per candidate row.
// Appending the subquery as a derived-table FROM spec turns the nesting
// into a join the plan search can place freely. Quantified (SOME)
// comparisons first collapse the subquery to its extreme value:
//
//	attr >  SOME (S)  holds iff  attr >  MIN(S)
//	attr <  SOME (S)  holds iff  attr <  MAX(S)
//
// =SOME and IN become a plain equality join against the derived column.
// A NOMERGE hint disables the pass.
func rewriteSubqueries(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	if stmt.NoMergeHint {
		return list, nil
	}
	for i := range list {
		clause := &list[i]
		if clause.Location != sqlir.WhereLocation {
			continue
		}
		cmp, ok := clause.SingleTerm().(*sqlir.Cmp)
		if !ok || !subqueryJoinOp(cmp.Op) {
			continue
		}
		sub, ok := cmp.Right.(*sqlir.Subquery)
		if !ok || !mergeableSubquery(sub.Stmt) {
			continue
		}

		inner := sub.Stmt
		if cmp.Op.IsSome() && cmp.Op != sqlir.OpEqSome {
			if len(inner.GroupBy) > 0 || exprHasAggregate(inner.SelectList[0]) {
				continue
			}
			agg := "MIN"
			if cmp.Op == sqlir.OpLtSome || cmp.Op == sqlir.OpLeSome {
				agg = "MAX"
			}
			inner.SelectList[0] = &sqlir.Func{Name: agg, Args: []sqlir.Expr{inner.SelectList[0]}}
		}

		loc := stmt.NextLocation()
		stmt.Specs = append(stmt.Specs, &sqlir.JoinSpec{
			Location:       loc,
			Alias:          fmt.Sprintf("dt%d", loc),
			JoinType:       sqlir.JoinNone,
			Derived:        inner,
			DerivedColumns: []string{"c1"},
		})

		op := cmp.Op.SomeBase()
		if op == sqlir.OpIn {
			op = sqlir.OpEQ
		}
		clause.Terms[0] = &sqlir.Cmp{
			Op:    op,
			Left:  cmp.Left,
			Right: &sqlir.ColRef{Spec: loc, Column: "c1"},
		}
	}
	return list, nil
}

func subqueryJoinOp(op sqlir.CmpOp) bool {
	return op == sqlir.OpEQ || op == sqlir.OpIn || op.IsSome()
}

// mergeableSubquery accepts an uncorrelated single-column SELECT with no
// grouping machinery of its own. Anything else keeps its nested form.
func mergeableSubquery(s *sqlir.Statement) bool {
	if s == nil || s.Kind != sqlir.StmtSelect || len(s.SelectList) != 1 {
		return false
	}
	if len(s.Having) > 0 || len(s.GroupBy) > 0 {
		return false
	}
	for _, spec := range s.Specs {
		if spec.CorrelationLevel > 0 {
			return false
		}
	}
	return true
}

// OID-equality-to-derived-table: when a spec is pinned to a constant set
// of row identities and nothing else of that spec is referenced, the
// table scan is pure waste. The spec is replaced in place (same
// location, same alias) by a constant row source built from the set, and
// the pinning clause is dropped: the derived table already contains
// exactly those identities. References to the identity column keep
// resolving because the derived column reuses its name.
func rewriteOIDEqualities(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	if ctx.Schema == nil {
		return list, nil
	}
	for i := 0; i < len(list); i++ {
		clause := list[i]
		if clause.Location != sqlir.WhereLocation {
			continue
		}
		cmp, ok := clause.SingleTerm().(*sqlir.Cmp)
		if !ok || (cmp.Op != sqlir.OpEQ && cmp.Op != sqlir.OpIn) {
			continue
		}
		col, ok := sqlir.StripCast(cmp.Left).(*sqlir.ColRef)
		if !ok {
			continue
		}
		spec := stmt.Spec(col.Spec)
		if spec == nil || spec.IsDerived() || spec.JoinType.IsOuter() {
			continue
		}
		if !ctx.Schema.IsOIDColumn(spec.Table, col.Column) {
			continue
		}
		rows, ok := oidConstSet(cmp)
		if !ok {
			continue
		}
		if referencesOtherColumns(stmt, list, i, col) {
			continue
		}

		spec.Table = ""
		spec.Derived = &sqlir.Statement{
			Kind:      sqlir.StmtSelect,
			ValueRows: rows,
		}
		spec.DerivedColumns = []string{col.Column}
		list = append(list[:i], list[i+1:]...)
		i--
	}
	return list, nil
}

// oidConstSet extracts the pinned identity values: one for =, the set
// elements for IN. Placeholders and NULL disqualify.
func oidConstSet(cmp *sqlir.Cmp) ([]sqlir.Value, bool) {
	cnst, ok := cmp.Right.(*sqlir.Const)
	if !ok {
		return nil, false
	}
	if cmp.Op == sqlir.OpEQ {
		if val := usableConst(cmp.Right); val != nil {
			return []sqlir.Value{val}, true
		}
		return nil, false
	}
	set, ok := cnst.Val.(sqlir.Set)
	if !ok || len(set) == 0 {
		return nil, false
	}
	rows := make([]sqlir.Value, 0, len(set))
	for _, elem := range set {
		if sqlir.IsNull(elem) {
			return nil, false
		}
		if _, isParam := elem.(sqlir.ParamRef); isParam {
			return nil, false
		}
		rows = append(rows, elem)
	}
	return rows, true
}

// referencesOtherColumns reports whether any column of the spec other
// than the identity column is referenced anywhere in the statement
// (clauses besides the pinning one, select list, grouping, ordering).
func referencesOtherColumns(stmt *sqlir.Statement, list sqlir.ClauseList, pinIdx int, oid *sqlir.ColRef) bool {
	other := false
	check := func(col *sqlir.ColRef) {
		if col.Spec == oid.Spec && col.Column != oid.Column {
			other = true
		}
	}
	for i, clause := range list {
		if i == pinIdx {
			continue
		}
		for _, term := range clause.Terms {
			walkColumns(term, check)
		}
	}
	for _, e := range stmt.SelectList {
		walkColumns(e, check)
	}
	for _, clause := range stmt.Having {
		for _, term := range clause.Terms {
			walkColumns(term, check)
		}
	}
	for i := range stmt.GroupBy {
		check(&stmt.GroupBy[i])
	}
	for i := range stmt.OrderBy {
		check(&stmt.OrderBy[i].Col)
	}
	return other
}
