package rangeop

import "github.com/roach88/sarge/internal/sqlir"

// tighterLower picks the endpoint further right (the stricter lower
// bound); tighterUpper picks the one further left.
func tighterLower(a, b Endpoint, dom Domain) (Endpoint, error) {
	ord, err := CompareBounds(a, b, dom)
	if err != nil {
		return a, err
	}
	if ord >= Equal {
		return a, nil
	}
	return b, nil
}

func tighterUpper(a, b Endpoint, dom Domain) (Endpoint, error) {
	ord, err := CompareBounds(a, b, dom)
	if err != nil {
		return a, err
	}
	if ord <= Equal {
		return a, nil
	}
	return b, nil
}

// Intersect computes the intersection of two RANGE nodes over the same
// attribute. Both inputs must already be merged (sorted, disjoint);
// Merge establishes that. Sub-range pairs with no overlap contribute
// nothing; an empty result is reported through the Empty flag so the
// caller can apply its per-location unsatisfiability rule.
func Intersect(a, b sqlir.Range, dom Domain) (sqlir.Range, error) {
	if a.Empty || b.Empty {
		return sqlir.Range{Empty: true}, nil
	}
	out := sqlir.Range{}
	i, j := 0, 0
	for i < len(a.Subs) && j < len(b.Subs) {
		sa, sb := a.Subs[i], b.Subs[j]
		if sa.AlwaysFalse() {
			i++
			continue
		}
		if sb.AlwaysFalse() {
			j++
			continue
		}
		lower, err := tighterLower(LowerEndpoint(sa), LowerEndpoint(sb), dom)
		if err != nil {
			return out, err
		}
		upper, err := tighterUpper(UpperEndpoint(sa), UpperEndpoint(sb), dom)
		if err != nil {
			return out, err
		}
		empty, err := EmptyInterval(lower, upper, dom)
		if err != nil {
			return out, err
		}
		if !empty {
			sub, err := makeSubRange(lower, upper, dom)
			if err != nil {
				return out, err
			}
			out.Subs = append(out.Subs, sub)
		}
		// Advance past whichever sub-range ends first; past both on a
		// shared endpoint.
		ord, err := CompareBounds(UpperEndpoint(sa), UpperEndpoint(sb), dom)
		if err != nil {
			return out, err
		}
		if ord <= Equal {
			i++
		}
		if ord >= Equal {
			j++
		}
	}
	if len(out.Subs) == 0 {
		return sqlir.Range{Empty: true}, nil
	}
	return out, nil
}
