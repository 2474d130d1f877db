package rangeop

import "github.com/roach88/sarge/internal/sqlir"

// Accepts reports whether the range admits the value. NULL is admitted
// by no range, and an empty range admits nothing. Used by the property
// tests to check intersection and merge against direct evaluation.
func Accepts(r sqlir.Range, v sqlir.Value) (bool, error) {
	if r.Empty || v == nil || sqlir.IsNull(v) {
		return false, nil
	}
	for _, sub := range r.Subs {
		ok, err := subAccepts(sub, v)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func subAccepts(s sqlir.SubRange, v sqlir.Value) (bool, error) {
	if s.AlwaysFalse() {
		return false, nil
	}
	if s.Lower.State == sqlir.Bounded {
		c, err := CompareValues(v, s.Lower.Val)
		if err != nil {
			return false, err
		}
		if c < 0 || (c == 0 && !s.Kind.LowerClosed()) {
			return false, nil
		}
	}
	if s.Upper.State == sqlir.Bounded {
		c, err := CompareValues(v, s.Upper.Val)
		if err != nil {
			return false, err
		}
		if c > 0 || (c == 0 && !s.Kind.UpperClosed()) {
			return false, nil
		}
	}
	return true, nil
}
