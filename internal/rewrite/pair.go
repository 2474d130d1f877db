package rewrite

import (
	"github.com/roach88/sarge/internal/rangeop"
	"github.com/roach88/sarge/internal/sqlir"
)

// The comparison pairer fuses a lower-bound term (>, >=) with an
// upper-bound term (<, <=) on the same attribute at the same location
// into one BETWEEN whose bound kind composes from the two operators.
// Only single-term clauses with constant operands fuse: an OR-group
// cannot be split and non-constant bounds cannot be validated.
//
// Provably inverted bounds (a > 10 AND a < 10) are unsatisfiable and
// fold to literal false under the per-location rule; on a column the
// catalog proves integer-valued, bounds with no integer between them
// (a > 1 AND a < 2) fold the same way. WHERE-level
// emptiness falsifies the whole list, ON-level emptiness falsifies only
// that join's clauses.
func pairComparisons(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	for i := 0; i < len(list); i++ {
		col, lowerOp, lowerVal, ok := constCompare(list[i], sqlir.OpGT, sqlir.OpGE)
		if !ok {
			continue
		}
		for j := 0; j < len(list); j++ {
			if j == i || list[j].Location != list[i].Location {
				continue
			}
			col2, upperOp, upperVal, ok := constCompare(list[j], sqlir.OpLT, sqlir.OpLE)
			if !ok || !sqlir.SameColumn(col, col2) {
				continue
			}

			kind := sqlir.ComposeKind(lowerOp == sqlir.OpGE, upperOp == sqlir.OpLE)
			sub := rangeop.SubRangeForBetween(kind, lowerVal, upperVal)
			empty, err := rangeop.EmptyInterval(
				rangeop.LowerEndpoint(sub), rangeop.UpperEndpoint(sub),
				columnDomain(ctx, stmt, col))
			if err != nil {
				ctx.Warnf("pair: %v", err)
				break
			}
			if empty {
				return falsifyLocation(list, list[i].Location), nil
			}

			fused := &sqlir.Between{
				Subject: firstSubject(list[i]),
				Lower:   &sqlir.Const{Val: lowerVal},
				Upper:   &sqlir.Const{Val: upperVal},
				Kind:    kind,
			}
			list[i].Terms = []sqlir.Expr{fused}
			list = append(list[:j], list[j+1:]...)
			if j < i {
				i--
			}
			break
		}
	}
	return list, nil
}

// constCompare matches a single-term clause of the form attr OP const
// where OP is one of the two given operators.
func constCompare(c sqlir.Clause, op1, op2 sqlir.CmpOp) (*sqlir.ColRef, sqlir.CmpOp, sqlir.Value, bool) {
	cmp, ok := c.SingleTerm().(*sqlir.Cmp)
	if !ok || (cmp.Op != op1 && cmp.Op != op2) {
		return nil, 0, nil, false
	}
	col, ok := sqlir.StripCast(cmp.Left).(*sqlir.ColRef)
	if !ok {
		return nil, 0, nil, false
	}
	val := usableConst(cmp.Right)
	if val == nil {
		return nil, 0, nil, false
	}
	return col, cmp.Op, val, true
}

func firstSubject(c sqlir.Clause) sqlir.Expr {
	switch t := c.Terms[0].(type) {
	case *sqlir.Cmp:
		return t.Left
	case *sqlir.Between:
		return t.Subject
	case *sqlir.RangeOf:
		return t.Subject
	default:
		return t
	}
}

// falsifyLocation applies the per-location unsatisfiability rule:
// location 0 replaces the entire list with one literal-false clause;
// location N removes only the clauses tagged N and prepends one
// literal-false clause tagged N, so an empty outer-join condition never
// falsifies the whole query.
func falsifyLocation(list sqlir.ClauseList, loc sqlir.SpecID) sqlir.ClauseList {
	if loc == sqlir.WhereLocation {
		return sqlir.ClauseList{sqlir.FalseClause(sqlir.WhereLocation)}
	}
	out := sqlir.ClauseList{sqlir.FalseClause(loc)}
	return append(out, list.WithoutLocation(loc)...)
}
