package rewrite

import (
	"github.com/roach88/sarge/internal/rangeop"
	"github.com/roach88/sarge/internal/sqlir"
)

// The range converter collapses an OR-group of comparisons on one
// attribute into a single RANGE term, one sub-range per original
// predicate, then merges the sub-ranges so no two overlap or touch.
//
// Every term of the group must convert or the group is left alone: the
// OR cannot be split. A lone WHERE-level equality with no alternatives
// stays plain - it is already the best sarg shape and converting it
// would only cost the equality-specific access paths.
func convertRanges(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	for ci := range list {
		clause := &list[ci]
		if len(clause.Terms) == 0 {
			continue
		}
		if clause.Location == sqlir.WhereLocation && len(clause.Terms) == 1 {
			if cmp, ok := clause.Terms[0].(*sqlir.Cmp); ok && cmp.Op == sqlir.OpEQ {
				continue
			}
		}

		subject := sqlir.SargSubject(clause.Terms[0])
		if subject == nil {
			continue
		}
		subs := make([]sqlir.SubRange, 0, len(clause.Terms))
		convertible := true
		for _, term := range clause.Terms {
			if !sqlir.SameColumn(sqlir.SargSubject(term), subject) {
				convertible = false
				break
			}
			termSubs, ok := termSubRanges(term)
			if !ok {
				convertible = false
				break
			}
			subs = append(subs, termSubs...)
		}
		if !convertible {
			continue
		}

		merged, err := rangeop.Merge(sqlir.Range{Subs: subs}, columnDomain(ctx, stmt, subject))
		if err != nil {
			ctx.Warnf("range convert: %v", err)
			continue
		}
		clause.Terms = []sqlir.Expr{&sqlir.RangeOf{
			Subject: &sqlir.ColRef{Spec: subject.Spec, Column: subject.Column},
			Ranges:  merged,
		}}
	}
	return list, nil
}

// termSubRanges maps one predicate into its sub-ranges: a comparison
// into one, an IN-list into one point per element, a constant BETWEEN
// into one, an existing RANGE term passes through unchanged.
func termSubRanges(term sqlir.Expr) ([]sqlir.SubRange, bool) {
	switch t := term.(type) {
	case *sqlir.Cmp:
		if t.Op == sqlir.OpIn {
			cnst, ok := t.Right.(*sqlir.Const)
			if !ok {
				return nil, false
			}
			set, ok := cnst.Val.(sqlir.Set)
			if !ok {
				return nil, false
			}
			subs := make([]sqlir.SubRange, 0, len(set))
			for _, elem := range set {
				if _, isParam := elem.(sqlir.ParamRef); isParam {
					return nil, false
				}
				subs = append(subs, sqlir.Point(elem))
			}
			return subs, true
		}
		val := usableConst(t.Right)
		if val == nil {
			// An explicit NULL comparand is an always-false sub-range,
			// not a conversion failure.
			if cnst, ok := t.Right.(*sqlir.Const); ok && sqlir.IsNull(cnst.Val) {
				if _, ok := rangeop.SubRangeForCompare(t.Op, cnst.Val); ok {
					return []sqlir.SubRange{sqlir.Point(sqlir.Null{})}, true
				}
			}
			return nil, false
		}
		sub, ok := rangeop.SubRangeForCompare(t.Op, val)
		if !ok {
			return nil, false
		}
		return []sqlir.SubRange{sub}, true
	case *sqlir.Between:
		lower, upper := betweenConsts(t)
		if (t.Lower != nil && lower == nil) || (t.Upper != nil && upper == nil) {
			return nil, false
		}
		return []sqlir.SubRange{rangeop.SubRangeForBetween(t.Kind, lower, upper)}, true
	case *sqlir.RangeOf:
		if t.Ranges.Empty {
			// Preserve proven emptiness as an always-false point.
			return []sqlir.SubRange{sqlir.Point(sqlir.Null{})}, true
		}
		return t.Ranges.Subs, true
	default:
		return nil, false
	}
}

func betweenConsts(b *sqlir.Between) (lower, upper sqlir.Value) {
	if b.Lower != nil {
		lower = usableConst(b.Lower)
	}
	if b.Upper != nil {
		upper = usableConst(b.Upper)
	}
	return lower, upper
}
