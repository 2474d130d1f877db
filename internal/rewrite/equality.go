package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// The equality-term reducer substitutes constants known from WHERE-level
// equalities (and from derived-table columns that are themselves
// constants) for every other occurrence of the bound attribute.
// Substituting can expose new sargable shapes, so the scan restarts from
// the top of the clause list after every hit.
//
// A two-table join predicate that references the bound attribute next to
// a different spec is not rewritten in place: it is copied with the
// substitution applied and the copy is tagged transitive, so the join
// term survives for the plan search while later passes skip the copy as
// a join predicate.

// constBinding is one attribute proven equal to a constant.
type constBinding struct {
	col *sqlir.ColRef
	val sqlir.Value
	// clauseIdx is the index of the defining clause, or -1 when the
	// binding comes from a derived-table column.
	clauseIdx int
}

func reduceEqualityTerms(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
restart:
	for {
		bindings := collectBindings(stmt, list)
		for _, b := range bindings {
			changed, out := applyBinding(stmt, list, b)
			if changed {
				list = out
				continue restart
			}
		}
		return list, nil
	}
}

// collectBindings finds every attr = const equality usable as a
// substitution source: single-term WHERE-location clauses in = or
// single-point RANGE form, plus constant columns of derived tables.
func collectBindings(stmt *sqlir.Statement, list sqlir.ClauseList) []constBinding {
	var out []constBinding
	for i, clause := range list {
		if clause.Location != sqlir.WhereLocation || clause.Transitive {
			continue
		}
		term := clause.SingleTerm()
		if term == nil {
			continue
		}
		col, val := equalityParts(term)
		if col == nil {
			continue
		}
		out = append(out, constBinding{col: col, val: val, clauseIdx: i})
	}
	for _, spec := range stmt.Specs {
		if !spec.IsDerived() || spec.Derived == nil {
			continue
		}
		for i, name := range spec.DerivedColumns {
			if i >= len(spec.Derived.SelectList) {
				break
			}
			cnst, ok := spec.Derived.SelectList[i].(*sqlir.Const)
			if !ok || sqlir.IsNull(cnst.Val) {
				continue
			}
			if _, isParam := cnst.Val.(sqlir.ParamRef); isParam {
				continue
			}
			out = append(out, constBinding{
				col:       &sqlir.ColRef{Spec: spec.Location, Column: name},
				val:       cnst.Val,
				clauseIdx: -1,
			})
		}
	}
	return out
}

// equalityParts decomposes attr = const (either operand order, the
// attribute possibly cast-wrapped) or a single-point RANGE node.
// NULL and placeholder constants are not substitution sources.
func equalityParts(term sqlir.Expr) (*sqlir.ColRef, sqlir.Value) {
	switch t := term.(type) {
	case *sqlir.Cmp:
		if t.Op != sqlir.OpEQ {
			return nil, nil
		}
		if col, ok := sqlir.StripCast(t.Left).(*sqlir.ColRef); ok {
			if val := usableConst(t.Right); val != nil {
				return col, val
			}
		}
		if col, ok := sqlir.StripCast(t.Right).(*sqlir.ColRef); ok {
			if val := usableConst(t.Left); val != nil {
				return col, val
			}
		}
	case *sqlir.RangeOf:
		if len(t.Ranges.Subs) != 1 || t.Ranges.Empty {
			return nil, nil
		}
		sub := t.Ranges.Subs[0]
		if sub.Kind != sqlir.KindEQ || sub.Lower.State != sqlir.Bounded {
			return nil, nil
		}
		if col, ok := sqlir.StripCast(t.Subject).(*sqlir.ColRef); ok {
			if _, isParam := sub.Lower.Val.(sqlir.ParamRef); !isParam {
				return col, sub.Lower.Val
			}
		}
	}
	return nil, nil
}

func usableConst(e sqlir.Expr) sqlir.Value {
	cnst, ok := e.(*sqlir.Const)
	if !ok || sqlir.IsNull(cnst.Val) {
		return nil
	}
	if _, isParam := cnst.Val.(sqlir.ParamRef); isParam {
		return nil
	}
	if _, isSet := cnst.Val.(sqlir.Set); isSet {
		return nil
	}
	return cnst.Val
}

// applyBinding substitutes one binding into the first clause (or select
// list entry) that still references the attribute. Returns whether
// anything changed.
func applyBinding(stmt *sqlir.Statement, list sqlir.ClauseList, b constBinding) (bool, sqlir.ClauseList) {
	repl := &sqlir.Const{Val: b.val}
	for i := range list {
		if i == b.clauseIdx {
			continue
		}
		clause := &list[i]
		if !clauseReferences(*clause, b.col) {
			continue
		}
		if isJoinPredicate(*clause, b.col) {
			if clause.Transitive {
				continue
			}
			cp := sqlir.CloneClause(*clause)
			cp.Transitive = true
			substituteClause(&cp, b.col, repl)
			if containsClause(list, cp) {
				continue
			}
			list = append(list, cp)
			return true, list
		}
		substituteClause(clause, b.col, repl)
		return true, list
	}
	for i, e := range stmt.SelectList {
		if replaced, changed := replaceColumn(e, b.col, repl); changed {
			stmt.SelectList[i] = replaced
			return true, list
		}
	}
	return false, list
}

// containsClause reports whether an identical clause (same location,
// same rendering) is already present; it keeps the transitive-copy step
// from manufacturing duplicates across restarts.
func containsClause(list sqlir.ClauseList, c sqlir.Clause) bool {
	want := c.String()
	for _, other := range list {
		if other.Location == c.Location && other.String() == want {
			return true
		}
	}
	return false
}

func clauseReferences(c sqlir.Clause, col *sqlir.ColRef) bool {
	for _, term := range c.Terms {
		if _, changed := replaceColumn(term, col, &sqlir.Const{Val: sqlir.Null{}}); changed {
			return true
		}
	}
	return false
}

// isJoinPredicate reports whether the clause is a single comparison
// between the bound attribute and a column of a different spec.
func isJoinPredicate(c sqlir.Clause, col *sqlir.ColRef) bool {
	term := c.SingleTerm()
	cmp, ok := term.(*sqlir.Cmp)
	if !ok || cmp.Right == nil {
		return false
	}
	left, lok := sqlir.StripCast(cmp.Left).(*sqlir.ColRef)
	right, rok := sqlir.StripCast(cmp.Right).(*sqlir.ColRef)
	if !lok || !rok {
		return false
	}
	if sqlir.SameColumn(left, col) {
		return right.Spec != col.Spec
	}
	if sqlir.SameColumn(right, col) {
		return left.Spec != col.Spec
	}
	return false
}

func substituteClause(c *sqlir.Clause, col *sqlir.ColRef, repl sqlir.Expr) {
	for i, term := range c.Terms {
		if replaced, changed := replaceColumn(term, col, repl); changed {
			c.Terms[i] = replaced
		}
	}
}

// replaceColumn rewrites every reference to col with a clone of repl,
// chasing through CAST wrappers. Subquery operands are left alone: their
// references belong to the nested scope.
func replaceColumn(e sqlir.Expr, col *sqlir.ColRef, repl sqlir.Expr) (sqlir.Expr, bool) {
	switch t := e.(type) {
	case *sqlir.ColRef:
		if sqlir.SameColumn(t, col) {
			return sqlir.CloneExpr(repl), true
		}
		return e, false
	case *sqlir.Cast:
		inner, changed := replaceColumn(t.Inner, col, repl)
		if !changed {
			return e, false
		}
		return &sqlir.Cast{Inner: inner, Type: t.Type}, true
	case *sqlir.Cmp:
		left, lc := replaceColumn(t.Left, col, repl)
		var right sqlir.Expr
		var rc bool
		if t.Right != nil {
			right, rc = replaceColumn(t.Right, col, repl)
		}
		if !lc && !rc {
			return e, false
		}
		return &sqlir.Cmp{Op: t.Op, Left: left, Right: right}, true
	case *sqlir.Between:
		subject, sc := replaceColumn(t.Subject, col, repl)
		lower, lc := t.Lower, false
		if t.Lower != nil {
			lower, lc = replaceColumn(t.Lower, col, repl)
		}
		upper, uc := t.Upper, false
		if t.Upper != nil {
			upper, uc = replaceColumn(t.Upper, col, repl)
		}
		if !sc && !lc && !uc {
			return e, false
		}
		return &sqlir.Between{Subject: subject, Lower: lower, Upper: upper, Kind: t.Kind}, true
	case *sqlir.RangeOf:
		subject, changed := replaceColumn(t.Subject, col, repl)
		if !changed {
			return e, false
		}
		return &sqlir.RangeOf{Subject: subject, Ranges: sqlir.CloneRange(t.Ranges)}, true
	case *sqlir.Func:
		args := make([]sqlir.Expr, len(t.Args))
		changed := false
		for i, a := range t.Args {
			na, c := replaceColumn(a, col, repl)
			args[i] = na
			changed = changed || c
		}
		if !changed {
			return e, false
		}
		return &sqlir.Func{Name: t.Name, Args: args}, true
	default:
		return e, false
	}
}
