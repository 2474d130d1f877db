// Package eval is a three-valued predicate evaluator over bound rows.
// It exists for verification, not execution: the differential harness
// and the round-trip property tests use it to check that a rewritten
// condition accepts exactly the rows the original did.
package eval

import (
	"fmt"

	"github.com/roach88/sarge/internal/rangeop"
	"github.com/roach88/sarge/internal/sqlir"
)

// Tri is SQL's three-valued logic. Unknown propagates like NULL: AND
// takes the minimum, OR the maximum, and only True accepts a row.
type Tri int

const (
	False Tri = iota
	Unknown
	True
)

func (t Tri) String() string {
	switch t {
	case False:
		return "false"
	case Unknown:
		return "unknown"
	default:
		return "true"
	}
}

// Row binds one spec's column values.
type Row map[string]sqlir.Value

// Bindings binds a row per spec location. A missing column or spec reads
// as NULL, which matches outer-join padding.
type Bindings map[sqlir.SpecID]Row

// Evaluator resolves placeholders against the combined host-variable and
// auto-parameter array, so rewritten (parameterized) conditions evaluate
// against the same values the literals held.
type Evaluator struct {
	Params []sqlir.Value
}

// List evaluates a CNF clause list: the AND of its clauses.
func (ev *Evaluator) List(b Bindings, list sqlir.ClauseList) (Tri, error) {
	out := True
	for _, c := range list {
		t, err := ev.Clause(b, c)
		if err != nil {
			return Unknown, err
		}
		if t < out {
			out = t
		}
		if out == False {
			return False, nil
		}
	}
	return out, nil
}

// Clause evaluates one OR-group.
func (ev *Evaluator) Clause(b Bindings, c sqlir.Clause) (Tri, error) {
	out := False
	for _, term := range c.Terms {
		t, err := ev.Pred(b, term)
		if err != nil {
			return Unknown, err
		}
		if t > out {
			out = t
		}
		if out == True {
			return True, nil
		}
	}
	return out, nil
}

// Pred evaluates a predicate term.
func (ev *Evaluator) Pred(b Bindings, e sqlir.Expr) (Tri, error) {
	switch t := e.(type) {
	case *sqlir.BoolLit:
		if t.Val {
			return True, nil
		}
		return False, nil
	case *sqlir.Cmp:
		return ev.cmp(b, t)
	case *sqlir.Between:
		return ev.between(b, t)
	case *sqlir.RangeOf:
		return ev.rangeOf(b, t)
	default:
		return Unknown, fmt.Errorf("eval: %T is not a predicate", e)
	}
}

// Scalar evaluates a value-producing expression. Functions and
// subqueries are out of scope for the verifier.
func (ev *Evaluator) Scalar(b Bindings, e sqlir.Expr) (sqlir.Value, error) {
	switch t := e.(type) {
	case *sqlir.ColRef:
		row, ok := b[t.Spec]
		if !ok {
			return sqlir.Null{}, nil
		}
		v, ok := row[t.Column]
		if !ok {
			return sqlir.Null{}, nil
		}
		return ev.resolve(v), nil
	case *sqlir.Const:
		return ev.resolve(t.Val), nil
	case *sqlir.Cast:
		// The verifier evaluates over already-typed fixture values.
		return ev.Scalar(b, t.Inner)
	default:
		return nil, fmt.Errorf("eval: %T is not a scalar", e)
	}
}

func (ev *Evaluator) resolve(v sqlir.Value) sqlir.Value {
	p, ok := v.(sqlir.ParamRef)
	if !ok {
		return v
	}
	if int(p) < 0 || int(p) >= len(ev.Params) {
		return sqlir.Null{}
	}
	return ev.Params[int(p)]
}

func (ev *Evaluator) cmp(b Bindings, t *sqlir.Cmp) (Tri, error) {
	left, err := ev.Scalar(b, t.Left)
	if err != nil {
		return Unknown, err
	}

	switch t.Op {
	case sqlir.OpIsNull:
		if sqlir.IsNull(left) {
			return True, nil
		}
		return False, nil
	case sqlir.OpIsNotNull:
		if sqlir.IsNull(left) {
			return False, nil
		}
		return True, nil
	}

	right, err := ev.Scalar(b, t.Right)
	if err != nil {
		return Unknown, err
	}
	if sqlir.IsNull(left) || sqlir.IsNull(right) {
		return Unknown, nil
	}

	switch t.Op {
	case sqlir.OpIn:
		set, ok := right.(sqlir.Set)
		if !ok {
			return Unknown, fmt.Errorf("eval: IN needs a set operand, got %T", right)
		}
		return ev.inSet(left, set)
	case sqlir.OpLike:
		ls, lok := left.(sqlir.String)
		rs, rok := right.(sqlir.String)
		if !lok || !rok {
			return Unknown, fmt.Errorf("eval: LIKE needs string operands")
		}
		if likeMatch(string(ls), string(rs)) {
			return True, nil
		}
		return False, nil
	}

	c, err := rangeop.CompareValues(left, right)
	if err != nil {
		return Unknown, err
	}
	ok := false
	switch t.Op {
	case sqlir.OpEQ:
		ok = c == 0
	case sqlir.OpNE:
		ok = c != 0
	case sqlir.OpLT:
		ok = c < 0
	case sqlir.OpLE:
		ok = c <= 0
	case sqlir.OpGT:
		ok = c > 0
	case sqlir.OpGE:
		ok = c >= 0
	default:
		return Unknown, fmt.Errorf("eval: operator %s not supported", t.Op)
	}
	if ok {
		return True, nil
	}
	return False, nil
}

// inSet applies IN's NULL semantics: no match with a NULL element in the
// set is Unknown, not False.
func (ev *Evaluator) inSet(left sqlir.Value, set sqlir.Set) (Tri, error) {
	sawNull := false
	for _, elem := range set {
		elem = ev.resolve(elem)
		if sqlir.IsNull(elem) {
			sawNull = true
			continue
		}
		c, err := rangeop.CompareValues(left, elem)
		if err != nil {
			return Unknown, err
		}
		if c == 0 {
			return True, nil
		}
	}
	if sawNull {
		return Unknown, nil
	}
	return False, nil
}

func (ev *Evaluator) between(b Bindings, t *sqlir.Between) (Tri, error) {
	subject, err := ev.Scalar(b, t.Subject)
	if err != nil {
		return Unknown, err
	}
	if sqlir.IsNull(subject) {
		return Unknown, nil
	}

	if !t.Kind.LowerUnbounded() {
		lower, err := ev.Scalar(b, t.Lower)
		if err != nil {
			return Unknown, err
		}
		if sqlir.IsNull(lower) {
			return Unknown, nil
		}
		c, err := rangeop.CompareValues(subject, lower)
		if err != nil {
			return Unknown, err
		}
		if c < 0 || (c == 0 && !t.Kind.LowerClosed()) {
			return False, nil
		}
	}
	if !t.Kind.UpperUnbounded() {
		upper, err := ev.Scalar(b, t.Upper)
		if err != nil {
			return Unknown, err
		}
		if sqlir.IsNull(upper) {
			return Unknown, nil
		}
		c, err := rangeop.CompareValues(subject, upper)
		if err != nil {
			return Unknown, err
		}
		if c > 0 || (c == 0 && !t.Kind.UpperClosed()) {
			return False, nil
		}
	}
	return True, nil
}

func (ev *Evaluator) rangeOf(b Bindings, t *sqlir.RangeOf) (Tri, error) {
	subject, err := ev.Scalar(b, t.Subject)
	if err != nil {
		return Unknown, err
	}
	if sqlir.IsNull(subject) {
		return Unknown, nil
	}
	resolved := resolveRange(ev, t.Ranges)
	ok, err := rangeop.Accepts(resolved, subject)
	if err != nil {
		return Unknown, err
	}
	if ok {
		return True, nil
	}
	return False, nil
}

func resolveRange(ev *Evaluator, r sqlir.Range) sqlir.Range {
	out := sqlir.Range{Empty: r.Empty, Subs: make([]sqlir.SubRange, len(r.Subs))}
	for i, sub := range r.Subs {
		if sub.Lower.State == sqlir.Bounded {
			sub.Lower = sqlir.BoundOf(ev.resolve(sub.Lower.Val))
		}
		if sub.Upper.State == sqlir.Bounded {
			sub.Upper = sqlir.BoundOf(ev.resolve(sub.Upper.Val))
		}
		out.Subs[i] = sub
	}
	return out
}
