package rewrite

import (
	"github.com/roach88/sarge/internal/rangeop"
	"github.com/roach88/sarge/internal/sqlir"
)

// The range intersector combines RANGE terms on the same attribute from
// distinct conjuncts of the same location into one. An intersection
// that comes up empty proves the conjunction unsatisfiable for that
// location and triggers the per-location falsification rule; emptiness
// inside an outer join's ON condition must never falsify sibling
// WHERE-level clauses.
func intersectRanges(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	for i := 0; i < len(list); i++ {
		first, ok := soleRange(list[i])
		if !ok {
			continue
		}
		for j := i + 1; j < len(list); j++ {
			if list[j].Location != list[i].Location {
				continue
			}
			next, ok := soleRange(list[j])
			if !ok || !sqlir.SameColumn(rangeSubject(first), rangeSubject(next)) {
				continue
			}
			intersected, err := rangeop.Intersect(first.Ranges, next.Ranges,
				columnDomain(ctx, stmt, rangeSubject(first)))
			if err != nil {
				ctx.Warnf("range intersect: %v", err)
				continue
			}
			first.Ranges = intersected
			list = append(list[:j], list[j+1:]...)
			j--
		}
	}

	// Falsify locations whose surviving range is empty.
	for i := 0; i < len(list); i++ {
		r, ok := soleRange(list[i])
		if !ok || !r.Ranges.Empty {
			continue
		}
		list = falsifyLocation(list, list[i].Location)
		i = -1 // restart: falsification reshapes the list
	}
	return list, nil
}

// soleRange matches a clause that is exactly one RANGE term.
func soleRange(c sqlir.Clause) (*sqlir.RangeOf, bool) {
	r, ok := c.SingleTerm().(*sqlir.RangeOf)
	return r, ok
}

func rangeSubject(r *sqlir.RangeOf) *sqlir.ColRef {
	col, _ := sqlir.StripCast(r.Subject).(*sqlir.ColRef)
	return col
}
