package sqlir

import "fmt"

// BoundKind classifies the endpoints of a sub-range. The first half of
// the name describes the lower endpoint, the second half the upper one:
// GE/GT closed/open lower, LE/LT closed/open upper, INF unbounded.
// EQ is the single-point kind and Full is the synthetic everything-range
// sentinel that the auto-parameterizer must never parameterize.
type BoundKind int

const (
	KindEQ BoundKind = iota // point: lower = upper, both closed
	KindGeLe
	KindGeLt
	KindGtLe
	KindGtLt
	KindGeInf // lower bounded (closed), upper unbounded
	KindGtInf // lower bounded (open), upper unbounded
	KindInfLe // lower unbounded, upper bounded (closed)
	KindInfLt // lower unbounded, upper bounded (open)
	KindFull  // both unbounded
)

var boundKindNames = map[BoundKind]string{
	KindEQ:    "EQ",
	KindGeLe:  "GE_LE",
	KindGeLt:  "GE_LT",
	KindGtLe:  "GT_LE",
	KindGtLt:  "GT_LT",
	KindGeInf: "GE_INF",
	KindGtInf: "GT_INF",
	KindInfLe: "INF_LE",
	KindInfLt: "INF_LT",
	KindFull:  "FULL",
}

func (k BoundKind) String() string {
	if s, ok := boundKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("BoundKind(%d)", int(k))
}

// LowerClosed reports whether the lower endpoint includes its bound.
func (k BoundKind) LowerClosed() bool {
	switch k {
	case KindEQ, KindGeLe, KindGeLt, KindGeInf:
		return true
	}
	return false
}

// UpperClosed reports whether the upper endpoint includes its bound.
func (k BoundKind) UpperClosed() bool {
	switch k {
	case KindEQ, KindGeLe, KindGtLe, KindInfLe:
		return true
	}
	return false
}

// LowerUnbounded reports whether the lower endpoint is -infinity.
func (k BoundKind) LowerUnbounded() bool {
	switch k {
	case KindInfLe, KindInfLt, KindFull:
		return true
	}
	return false
}

// UpperUnbounded reports whether the upper endpoint is +infinity.
func (k BoundKind) UpperUnbounded() bool {
	switch k {
	case KindGeInf, KindGtInf, KindFull:
		return true
	}
	return false
}

// ComposeKind builds the two-sided kind from endpoint closedness.
func ComposeKind(lowerClosed, upperClosed bool) BoundKind {
	switch {
	case lowerClosed && upperClosed:
		return KindGeLe
	case lowerClosed && !upperClosed:
		return KindGeLt
	case !lowerClosed && upperClosed:
		return KindGtLe
	default:
		return KindGtLt
	}
}

// BoundState distinguishes the three meanings a sub-range endpoint can
// have. An Unbounded endpoint means +-infinity. A NullBound endpoint is
// an explicit NULL bound value and makes the sub-range always false; it
// is never the same thing as Unbounded.
type BoundState int

const (
	Bounded BoundState = iota
	Unbounded
	NullBound
)

// Bound is one endpoint of a sub-range.
type Bound struct {
	State BoundState
	Val   Value // meaningful only when State == Bounded
}

// BoundOf wraps a value as an endpoint, mapping the NULL literal to the
// NullBound state so it cannot be confused with an absent bound.
func BoundOf(v Value) Bound {
	if v == nil {
		return Bound{State: Unbounded}
	}
	if IsNull(v) {
		return Bound{State: NullBound}
	}
	return Bound{State: Bounded, Val: v}
}

// NoBound is the unbounded endpoint.
func NoBound() Bound { return Bound{State: Unbounded} }

func (b Bound) String() string {
	switch b.State {
	case Unbounded:
		return "inf"
	case NullBound:
		return "NULL"
	default:
		return ValueString(b.Val)
	}
}

// SubRange is one interval clause of a RANGE node.
type SubRange struct {
	Lower Bound
	Upper Bound
	Kind  BoundKind
}

// AlwaysFalse reports whether the sub-range can never accept a value:
// either endpoint being an explicit NULL bound makes it unsatisfiable.
func (s SubRange) AlwaysFalse() bool {
	return s.Lower.State == NullBound || s.Upper.State == NullBound
}

func (s SubRange) String() string {
	if s.Kind == KindEQ {
		return fmt.Sprintf("= %s", s.Lower)
	}
	return fmt.Sprintf("%s %s %s", s.Lower, s.Kind, s.Upper)
}

// Point builds the single-value sub-range for an equality.
func Point(v Value) SubRange {
	b := BoundOf(v)
	return SubRange{Lower: b, Upper: b, Kind: KindEQ}
}

// Range is the ordered sub-range list of a RANGE node. Empty is set when
// a merge or intersection proves the whole range unsatisfiable.
type Range struct {
	Subs  []SubRange
	Empty bool
}

func (r Range) String() string {
	if r.Empty {
		return "{empty}"
	}
	out := "{"
	for i, s := range r.Subs {
		if i > 0 {
			out += ", "
		}
		out += s.String()
	}
	return out + "}"
}
