package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// ORDER BY reduction: a sort column pinned to a single constant by a
// WHERE-level equality contributes nothing to the ordering, and a column
// repeated later in the list is already fully ordered by its first
// occurrence. Both kinds of item drop out, shortening the sort key. When
// the surviving items are an ascending prefix of GROUP BY, the grouping
// sort already delivers that order and the whole ORDER BY goes away.
func reduceOrderBy(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	if len(stmt.OrderBy) == 0 {
		return list, nil
	}
	pinned := pinnedColumns(list)
	seen := make(map[sqlir.ColRef]bool)
	out := stmt.OrderBy[:0]
	for _, item := range stmt.OrderBy {
		if pinned[item.Col] || seen[item.Col] {
			continue
		}
		seen[item.Col] = true
		out = append(out, item)
	}
	if groupingOrders(stmt.GroupBy, out) {
		out = out[:0]
	}
	stmt.OrderBy = out
	return list, nil
}

// groupingOrders reports whether the ORDER BY items are an ascending
// prefix of the GROUP BY columns.
func groupingOrders(groupBy []sqlir.ColRef, items []sqlir.OrderItem) bool {
	if len(groupBy) == 0 || len(items) == 0 || len(items) > len(groupBy) {
		return false
	}
	for i, item := range items {
		if item.Desc || item.Col != groupBy[i] {
			return false
		}
	}
	return true
}

// pinnedColumns collects every attribute a single-term WHERE-level
// clause fixes to one constant, in plain-equality or single-point RANGE
// form.
func pinnedColumns(list sqlir.ClauseList) map[sqlir.ColRef]bool {
	pinned := make(map[sqlir.ColRef]bool)
	for _, clause := range list {
		if clause.Location != sqlir.WhereLocation {
			continue
		}
		term := clause.SingleTerm()
		if term == nil {
			continue
		}
		if col, val := equalityParts(term); col != nil && val != nil {
			pinned[*col] = true
		}
	}
	return pinned
}
