package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// The auto-parameterizer replaces the literal operands of sarg terms
// with positional placeholders so statements differing only in their
// constants share one cached plan. It runs last: every earlier pass
// reasons over concrete values and a placeholder would blind it.
//
// Placeholders index the combined value array, host variables first,
// pulled-out literals after them. Exclusions: NULL literals (they encode
// proven emptiness, not a reusable constant), full-range sentinel
// sub-ranges, and partition-key sargs while pruning has not happened yet
// (the pruner needs the concrete value). The pass is a no-op when plan
// caching is off or the statement is flagged not preparable, and
// idempotent because a placeholder is not a literal.
func autoParameterize(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	if !ctx.PlanCache || ctx.CannotPrepare {
		return list, nil
	}
	for ci := range list {
		for _, term := range list[ci].Terms {
			subject := sqlir.SargSubject(term)
			if subject == nil {
				continue
			}
			if protectedPartitionKey(ctx, stmt, subject) {
				continue
			}
			switch t := term.(type) {
			case *sqlir.Cmp:
				if t.Op == sqlir.OpLike {
					continue // the pattern shape drove the rewrite decision
				}
				paramConst(ctx, t.Right)
			case *sqlir.Between:
				paramConst(ctx, t.Lower)
				paramConst(ctx, t.Upper)
			case *sqlir.RangeOf:
				for si := range t.Ranges.Subs {
					sub := &t.Ranges.Subs[si]
					if sub.Kind == sqlir.KindFull {
						continue
					}
					paramBound(ctx, &sub.Lower)
					if sub.Kind == sqlir.KindEQ {
						sub.Upper = sub.Lower // a point has one value
						continue
					}
					paramBound(ctx, &sub.Upper)
				}
			}
		}
	}
	return list, nil
}

// paramConst replaces one literal Const operand with a placeholder. A
// whole IN-set is pulled out as one set-valued parameter.
func paramConst(ctx *Context, e sqlir.Expr) {
	cnst, ok := e.(*sqlir.Const)
	if !ok || sqlir.IsNull(cnst.Val) {
		return
	}
	if _, isParam := cnst.Val.(sqlir.ParamRef); isParam {
		return
	}
	cnst.Val = ctx.NextParam(cnst.Val)
}

func paramBound(ctx *Context, b *sqlir.Bound) {
	if b.State != sqlir.Bounded || sqlir.IsNull(b.Val) {
		return
	}
	if _, isParam := b.Val.(sqlir.ParamRef); isParam {
		return
	}
	b.Val = ctx.NextParam(b.Val)
}

// protectedPartitionKey reports whether the sarg restricts a partition
// key that the pruner has not consumed yet.
func protectedPartitionKey(ctx *Context, stmt *sqlir.Statement, col *sqlir.ColRef) bool {
	if ctx.PartitionPruned || ctx.Schema == nil {
		return false
	}
	spec := stmt.Spec(col.Spec)
	if spec == nil || spec.IsDerived() {
		return false
	}
	key, ok := ctx.Schema.PartitionKey(spec.Table)
	return ok && key == col.Column
}
