package sqlir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a sealed interface representing a typed SQL literal.
// Only Null, Bool, Int, Float, String, and Set implement it.
//
// Set is the ordered element list of an IN predicate or a set-valued
// literal; it never nests.
type Value interface {
	value() // Sealed - only types in this package implement it
}

// Null represents the SQL NULL literal. It is distinct from an absent
// (unbounded) range endpoint: a NULL bound makes a sub-range always
// false, an absent bound means unbounded. See rangeop.Bound.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean literal.
type Bool bool

func (Bool) value() {}

// Int represents an integer literal. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point literal.
type Float float64

func (Float) value() {}

// String represents a character-string literal.
type String string

func (String) value() {}

// Set represents an ordered list of scalar values, as produced for
// IN (v1, v2, ...) predicates. Elements are never Set themselves.
type Set []Value

func (Set) value() {}

// ParamRef is a positional placeholder standing in for a value in the
// statement's combined host-variable/auto-parameter array. It can appear
// anywhere a literal can, including range bounds and IN sets, which is
// what lets the auto-parameterizer rewrite RANGE terms in place.
// Placeholders are opaque to the range algebra; the auto-parameterizer
// runs last, so no earlier pass ever sees one it created.
type ParamRef int

func (ParamRef) value() {}

// IsNull reports whether v is the NULL literal.
func IsNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}

// ValueString renders a value in SQL literal syntax. Strings are quoted
// with doubled embedded quotes; sets render as a parenthesized list.
func ValueString(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case Null:
		return "NULL"
	case Bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case String:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case ParamRef:
		return "?" + strconv.Itoa(int(val))
	case Set:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = ValueString(elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprintf("<unknown %T>", v)
	}
}

// ValuesEqual reports deterministic equality between two values.
// NULL never equals anything, including NULL. Int and Float compare
// numerically across kinds; all other cross-kind pairs are unequal.
func ValuesEqual(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return false
	}
	switch av := a.(type) {
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return float64(av) == float64(bv)
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Int:
			return float64(av) == float64(bv)
		case Float:
			return av == bv
		}
		return false
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case ParamRef:
		bv, ok := b.(ParamRef)
		return ok && av == bv
	case Set:
		bv, ok := b.(Set)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SortSet orders set elements ascending by kind then value so that
// fixture-loaded IN lists render deterministically. NULL sorts first.
func SortSet(s Set) {
	sort.SliceStable(s, func(i, j int) bool {
		return valueLess(s[i], s[j])
	})
}

func valueLess(a, b Value) bool {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		return ra < rb
	}
	switch av := a.(type) {
	case Int:
		if bv, ok := b.(Int); ok {
			return av < bv
		}
	case Float:
		if bv, ok := b.(Float); ok {
			return av < bv
		}
	case String:
		if bv, ok := b.(String); ok {
			return av < bv
		}
	case Bool:
		if bv, ok := b.(Bool); ok {
			return !bool(av) && bool(bv)
		}
	}
	return false
}

func valueRank(v Value) int {
	switch v.(type) {
	case Null:
		return 0
	case Bool:
		return 1
	case Int:
		return 2
	case Float:
		return 3
	case String:
		return 4
	case ParamRef:
		return 5
	default:
		return 6
	}
}
