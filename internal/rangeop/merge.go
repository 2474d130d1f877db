package rangeop

import (
	"sort"

	"github.com/roach88/sarge/internal/sqlir"
)

// makeSubRange assembles a sub-range from two endpoints, deriving the
// bound kind from their states and closedness.
func makeSubRange(lower, upper Endpoint, dom Domain) (sqlir.SubRange, error) {
	lu := lower.Bound.State == sqlir.Unbounded
	uu := upper.Bound.State == sqlir.Unbounded
	switch {
	case lu && uu:
		return sqlir.SubRange{Lower: sqlir.NoBound(), Upper: sqlir.NoBound(), Kind: sqlir.KindFull}, nil
	case lu:
		kind := sqlir.KindInfLt
		if upper.Closed {
			kind = sqlir.KindInfLe
		}
		return sqlir.SubRange{Lower: sqlir.NoBound(), Upper: upper.Bound, Kind: kind}, nil
	case uu:
		kind := sqlir.KindGtInf
		if lower.Closed {
			kind = sqlir.KindGeInf
		}
		return sqlir.SubRange{Lower: lower.Bound, Upper: sqlir.NoBound(), Kind: kind}, nil
	}
	if lower.Closed && upper.Closed {
		ord, err := CompareBounds(lower, upper, dom)
		if err != nil {
			return sqlir.SubRange{}, err
		}
		if ord == Equal {
			return sqlir.SubRange{Lower: lower.Bound, Upper: upper.Bound, Kind: sqlir.KindEQ}, nil
		}
	}
	return sqlir.SubRange{
		Lower: lower.Bound,
		Upper: upper.Bound,
		Kind:  sqlir.ComposeKind(lower.Closed, upper.Closed),
	}, nil
}

// looserUpper picks the endpoint reaching further right.
func looserUpper(a, b Endpoint, dom Domain) (Endpoint, error) {
	ord, err := CompareBounds(a, b, dom)
	if err != nil {
		return a, err
	}
	if ord >= Equal {
		return a, nil
	}
	return b, nil
}

// Merge coalesces the sub-ranges of one RANGE node. Sub-ranges with a
// NULL bound are always false and contribute nothing. Overlapping or
// touching pairs collapse into one sub-range taking the looser of the
// two lower bounds and the looser of the two upper bounds. A merged
// sub-range whose lower bound ends up past its upper bound marks the
// entire range empty. Touching is judged in the attribute's domain:
// [1,5] and [6,9] coalesce only when the domain is discrete.
//
// Postcondition: the result's sub-ranges are sorted and pairwise
// neither overlapping nor adjacent.
func Merge(r sqlir.Range, dom Domain) (sqlir.Range, error) {
	if r.Empty {
		return r, nil
	}
	subs := make([]sqlir.SubRange, 0, len(r.Subs))
	for _, s := range r.Subs {
		if !s.AlwaysFalse() {
			subs = append(subs, s)
		}
	}
	if len(subs) == 0 {
		return sqlir.Range{Empty: true}, nil
	}

	var sortErr error
	sort.SliceStable(subs, func(i, j int) bool {
		ord, err := CompareBounds(LowerEndpoint(subs[i]), LowerEndpoint(subs[j]), dom)
		if err != nil {
			sortErr = err
			return false
		}
		return ord < Equal
	})
	if sortErr != nil {
		return r, sortErr
	}

	out := sqlir.Range{}
	curLower := LowerEndpoint(subs[0])
	curUpper := UpperEndpoint(subs[0])
	flush := func() error {
		empty, err := EmptyInterval(curLower, curUpper, dom)
		if err != nil {
			return err
		}
		if empty {
			out = sqlir.Range{Empty: true}
			return nil
		}
		sub, err := makeSubRange(curLower, curUpper, dom)
		if err != nil {
			return err
		}
		out.Subs = append(out.Subs, sub)
		return nil
	}

	for _, next := range subs[1:] {
		ord, err := CompareBounds(curUpper, LowerEndpoint(next), dom)
		if err != nil {
			return r, err
		}
		if ord == Less {
			// Genuine gap: the accumulated sub-range is final.
			if err := flush(); err != nil || out.Empty {
				return out, err
			}
			curLower = LowerEndpoint(next)
			curUpper = UpperEndpoint(next)
			continue
		}
		if curUpper, err = looserUpper(curUpper, UpperEndpoint(next), dom); err != nil {
			return r, err
		}
	}
	if err := flush(); err != nil {
		return out, err
	}
	return out, nil
}
