package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// The sarg canonicalizer puts every comparison into attribute-first
// shape so downstream passes (pairer, range converter) can assume the
// attribute is the left operand. const OP attr flips to attr OP' const
// with the order-reversed operator. For attr OP attr the side referenced
// more often elsewhere in the OR-group goes left, which maximizes the
// chance of matching another term on the same attribute later.
func canonicalizeSargs(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	for ci := range list {
		clause := &list[ci]
		for ti, term := range clause.Terms {
			cmp, ok := term.(*sqlir.Cmp)
			if !ok || cmp.Right == nil {
				continue
			}
			leftCol, leftIsCol := sqlir.StripCast(cmp.Left).(*sqlir.ColRef)
			rightCol, rightIsCol := sqlir.StripCast(cmp.Right).(*sqlir.ColRef)

			switch {
			case !leftIsCol && rightIsCol:
				if !reversible(cmp.Op) {
					continue
				}
				clause.Terms[ti] = &sqlir.Cmp{
					Op:    cmp.Op.Reverse(),
					Left:  cmp.Right,
					Right: cmp.Left,
				}
			case leftIsCol && rightIsCol:
				if !reversible(cmp.Op) {
					continue
				}
				lc := groupReferences(*clause, ti, leftCol)
				rc := groupReferences(*clause, ti, rightCol)
				if rc > lc {
					clause.Terms[ti] = &sqlir.Cmp{
						Op:    cmp.Op.Reverse(),
						Left:  cmp.Right,
						Right: cmp.Left,
					}
				}
			}
		}
	}
	return list, nil
}

// reversible reports whether swapping operands with Reverse preserves
// meaning. LIKE, IN and the SOME family read left-to-right only.
func reversible(op sqlir.CmpOp) bool {
	switch op {
	case sqlir.OpEQ, sqlir.OpNE, sqlir.OpLT, sqlir.OpLE, sqlir.OpGT, sqlir.OpGE:
		return true
	}
	return false
}

// groupReferences counts how many of the clause's other terms restrict
// the given attribute.
func groupReferences(c sqlir.Clause, exclude int, col *sqlir.ColRef) int {
	n := 0
	for ti, term := range c.Terms {
		if ti == exclude {
			continue
		}
		if sqlir.SameColumn(sqlir.SargSubject(term), col) {
			n++
			continue
		}
		// Count right-operand references too: `10 < a` has not been
		// flipped yet when the tie-break runs on an earlier term.
		if cmp, ok := term.(*sqlir.Cmp); ok && cmp.Right != nil {
			if rc, ok := sqlir.StripCast(cmp.Right).(*sqlir.ColRef); ok && sqlir.SameColumn(rc, col) {
				n++
			}
		}
	}
	return n
}
