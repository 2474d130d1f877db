package rangeop

import (
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/sarge/internal/sqlir"
)

// Ordering is the result of comparing two endpoints. The Adjacent
// variants mean the endpoints touch with neither a gap nor an overlap
// between the intervals they delimit: merging across an adjacent pair
// loses nothing and an interval between an adjacent (lower, upper) pair
// is empty.
type Ordering int

const (
	Less Ordering = iota - 2
	LessAdjacent
	Equal
	GreaterAdjacent
	Greater
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case LessAdjacent:
		return "LessAdjacent"
	case Equal:
		return "Equal"
	case GreaterAdjacent:
		return "GreaterAdjacent"
	case Greater:
		return "Greater"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// Domain classifies the value domain of the attribute a range
// constrains. Integer endpoints one apart touch only on a discrete
// domain; on a continuous domain an integer bound is just a point on
// the real line, with values like 5.5 sitting between 5 and 6. Callers
// that cannot prove the domain pass Continuous: adjacency only enables
// extra coalescing, never correctness.
type Domain int

const (
	Continuous Domain = iota
	Discrete
)

// CompareError reports endpoints the total order is not defined for:
// NULL bounds and incompatible value kinds.
type CompareError struct {
	Reason string
}

func (e *CompareError) Error() string {
	return "bound compare: " + e.Reason
}

// stringCollator orders character strings. Und with no options gives a
// deterministic DUCET-based order independent of process locale.
var stringCollator = collate.New(language.Und)

// CompareValues is the total order over comparable scalar values. Int
// and Float compare numerically across kinds, Bool orders false before
// true, strings collate deterministically. NULL and Set values and any
// other cross-kind pair are errors.
func CompareValues(a, b sqlir.Value) (int, error) {
	switch av := a.(type) {
	case sqlir.Int:
		switch bv := b.(type) {
		case sqlir.Int:
			return cmpOrdered(int64(av), int64(bv)), nil
		case sqlir.Float:
			return cmpOrdered(float64(av), float64(bv)), nil
		}
	case sqlir.Float:
		switch bv := b.(type) {
		case sqlir.Int:
			return cmpOrdered(float64(av), float64(bv)), nil
		case sqlir.Float:
			return cmpOrdered(float64(av), float64(bv)), nil
		}
	case sqlir.String:
		if bv, ok := b.(sqlir.String); ok {
			return stringCollator.CompareString(string(av), string(bv)), nil
		}
	case sqlir.Bool:
		if bv, ok := b.(sqlir.Bool); ok {
			return cmpBool(bool(av), bool(bv)), nil
		}
	}
	return 0, &CompareError{
		Reason: fmt.Sprintf("incomparable kinds %T and %T", a, b),
	}
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Endpoint is one side of a sub-range prepared for comparison.
type Endpoint struct {
	Bound  sqlir.Bound
	Closed bool
	Upper  bool
}

// LowerEndpoint extracts the lower endpoint of a sub-range.
func LowerEndpoint(s sqlir.SubRange) Endpoint {
	return Endpoint{Bound: s.Lower, Closed: s.Kind.LowerClosed(), Upper: false}
}

// UpperEndpoint extracts the upper endpoint of a sub-range.
func UpperEndpoint(s sqlir.SubRange) Endpoint {
	return Endpoint{Bound: s.Upper, Closed: s.Kind.UpperClosed(), Upper: true}
}

// normalize rewrites an open integer endpoint to its closed equivalent:
// an open lower bound at v covers from v+1, an open upper bound at v
// covers up to v-1. Only a discrete domain admits this; continuous
// endpoints keep their openness as an infinitesimal offset.
func (e Endpoint) normalize(dom Domain) Endpoint {
	if dom != Discrete || e.Closed || e.Bound.State != sqlir.Bounded {
		return e
	}
	n, ok := e.Bound.Val.(sqlir.Int)
	if !ok {
		return e
	}
	if e.Upper {
		n--
	} else {
		n++
	}
	return Endpoint{Bound: sqlir.BoundOf(n), Closed: true, Upper: e.Upper}
}

// offset encodes openness of a continuous endpoint as an infinitesimal
// displacement from the bound value: an open lower bound sits just
// above it, an open upper bound just below.
func (e Endpoint) offset() int {
	if e.Closed {
		return 0
	}
	if e.Upper {
		return -1
	}
	return 1
}

// infinity rank: -1 for -infinity, +1 for +infinity, 0 for bounded.
func (e Endpoint) infRank() int {
	if e.Bound.State != sqlir.Unbounded {
		return 0
	}
	if e.Upper {
		return 1
	}
	return -1
}

// CompareBounds is the total order over endpoints, the six-outcome
// comparator every range operation is built on.
//
// Outcomes on bounded endpoints:
//   - Equal: both endpoints sit on the same point with the same
//     closedness.
//   - Less/GreaterAdjacent: the endpoints touch; the interval between
//     a lower endpoint and a GreaterAdjacent upper endpoint is empty,
//     and two sub-ranges whose facing endpoints are adjacent merge
//     without loss. On a discrete domain, integer endpoints one apart
//     (after closed-form normalization) are adjacent; otherwise
//     endpoints are adjacent only at the same value with differing
//     closedness.
//   - Less/Greater: a genuine gap or overlap.
//
// NULL-bounded endpoints have no place in the order; callers filter
// always-false sub-ranges first and a NULL bound here is an error.
func CompareBounds(a, b Endpoint, dom Domain) (Ordering, error) {
	if a.Bound.State == sqlir.NullBound || b.Bound.State == sqlir.NullBound {
		return Equal, &CompareError{Reason: "NULL bound is not ordered"}
	}
	ra, rb := a.infRank(), b.infRank()
	if ra != 0 || rb != 0 {
		switch {
		case ra < rb:
			return Less, nil
		case ra > rb:
			return Greater, nil
		default:
			return Equal, nil
		}
	}

	a, b = a.normalize(dom), b.normalize(dom)
	c, err := CompareValues(a.Bound.Val, b.Bound.Val)
	if err != nil {
		return Equal, err
	}

	// Discrete integer endpoints: adjacency is positions exactly one
	// apart.
	ai, aInt := a.Bound.Val.(sqlir.Int)
	bi, bInt := b.Bound.Val.(sqlir.Int)
	if dom == Discrete && aInt && bInt {
		switch {
		case ai+1 == bi:
			return LessAdjacent, nil
		case bi+1 == ai:
			return GreaterAdjacent, nil
		case c < 0:
			return Less, nil
		case c > 0:
			return Greater, nil
		default:
			return Equal, nil
		}
	}

	if c < 0 {
		return Less, nil
	}
	if c > 0 {
		return Greater, nil
	}
	// Same value: order by the infinitesimal openness offset. A
	// difference of one is adjacency, a difference of two is a
	// one-point gap.
	d := a.offset() - b.offset()
	switch {
	case d == 0:
		return Equal, nil
	case d == -1:
		return LessAdjacent, nil
	case d == 1:
		return GreaterAdjacent, nil
	case d < 0:
		return Less, nil
	default:
		return Greater, nil
	}
}

// EmptyInterval reports whether the interval delimited by a lower and an
// upper endpoint contains no value of the given domain.
func EmptyInterval(lower, upper Endpoint, dom Domain) (bool, error) {
	ord, err := CompareBounds(lower, upper, dom)
	if err != nil {
		return false, err
	}
	return ord == GreaterAdjacent || ord == Greater, nil
}
