package rangeop

import "github.com/roach88/sarge/internal/sqlir"

// SubRangeForCompare maps a simple comparison on a constant into the
// equivalent one-predicate sub-range: = becomes the point range, the
// one-sided comparisons become half-open ranges toward infinity.
// Operators with no interval form (NE, LIKE, IS NULL, ...) report false.
func SubRangeForCompare(op sqlir.CmpOp, v sqlir.Value) (sqlir.SubRange, bool) {
	b := sqlir.BoundOf(v)
	switch op {
	case sqlir.OpEQ:
		return sqlir.SubRange{Lower: b, Upper: b, Kind: sqlir.KindEQ}, true
	case sqlir.OpLT:
		return sqlir.SubRange{Lower: sqlir.NoBound(), Upper: b, Kind: sqlir.KindInfLt}, true
	case sqlir.OpLE:
		return sqlir.SubRange{Lower: sqlir.NoBound(), Upper: b, Kind: sqlir.KindInfLe}, true
	case sqlir.OpGT:
		return sqlir.SubRange{Lower: b, Upper: sqlir.NoBound(), Kind: sqlir.KindGtInf}, true
	case sqlir.OpGE:
		return sqlir.SubRange{Lower: b, Upper: sqlir.NoBound(), Kind: sqlir.KindGeInf}, true
	default:
		return sqlir.SubRange{}, false
	}
}

// SubRangeForBetween maps a fused BETWEEN term with constant bounds into
// a sub-range. A nil bound expression side must match an unbounded kind.
func SubRangeForBetween(kind sqlir.BoundKind, lower, upper sqlir.Value) sqlir.SubRange {
	sub := sqlir.SubRange{Kind: kind}
	if kind.LowerUnbounded() {
		sub.Lower = sqlir.NoBound()
	} else {
		sub.Lower = sqlir.BoundOf(lower)
	}
	if kind.UpperUnbounded() {
		sub.Upper = sqlir.NoBound()
	} else {
		sub.Upper = sqlir.BoundOf(upper)
	}
	return sub
}
