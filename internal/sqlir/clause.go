package sqlir

// WhereLocation is the location tag of plain WHERE clauses. FROM specs
// are tagged 1..N in list order.
const WhereLocation SpecID = 0

// Clause is one CNF conjunct: an OR-group of terms that all originate
// from the same location.
//
// Flags:
//   - Transitive: derived join term manufactured by the equality reducer;
//     later passes must not re-process it as a fresh join predicate.
//   - CopyPushed: synthetic clause that has served its purpose and is
//     dropped when the clause list is split back to its specs.
type Clause struct {
	Location   SpecID
	Transitive bool
	CopyPushed bool
	Terms      []Expr
}

// ClauseList is the AND of its clauses. The zero value is the empty
// (always true) condition.
type ClauseList []Clause

// NewClause builds a single-location clause from OR-linked terms.
func NewClause(loc SpecID, terms ...Expr) Clause {
	return Clause{Location: loc, Terms: terms}
}

// FalseClause builds the literal-false clause used when a location's
// conjunction is proven unsatisfiable.
func FalseClause(loc SpecID) Clause {
	return Clause{Location: loc, Terms: []Expr{&BoolLit{Val: false}}}
}

// IsFalse reports whether the clause is a lone literal-false term.
func (c Clause) IsFalse() bool {
	if len(c.Terms) != 1 {
		return false
	}
	lit, ok := c.Terms[0].(*BoolLit)
	return ok && !lit.Val
}

// SingleTerm returns the clause's only term, or nil if the clause has
// OR-alternatives.
func (c Clause) SingleTerm() Expr {
	if len(c.Terms) == 1 {
		return c.Terms[0]
	}
	return nil
}

// FilterLocation returns the clauses tagged with loc, preserving order.
func (l ClauseList) FilterLocation(loc SpecID) ClauseList {
	var out ClauseList
	for _, c := range l {
		if c.Location == loc {
			out = append(out, c)
		}
	}
	return out
}

// WithoutLocation returns the clauses not tagged with loc.
func (l ClauseList) WithoutLocation(loc SpecID) ClauseList {
	out := make(ClauseList, 0, len(l))
	for _, c := range l {
		if c.Location != loc {
			out = append(out, c)
		}
	}
	return out
}

// ReferencedSpecs collects the set of spec IDs referenced anywhere in
// the expression, chasing through casts, functions and fused terms.
// Subquery operands contribute nothing: their references belong to the
// nested statement's own scope.
func ReferencedSpecs(e Expr, into map[SpecID]bool) {
	switch t := e.(type) {
	case *ColRef:
		into[t.Spec] = true
	case *Cast:
		ReferencedSpecs(t.Inner, into)
	case *Cmp:
		ReferencedSpecs(t.Left, into)
		if t.Right != nil {
			ReferencedSpecs(t.Right, into)
		}
	case *Between:
		ReferencedSpecs(t.Subject, into)
		if t.Lower != nil {
			ReferencedSpecs(t.Lower, into)
		}
		if t.Upper != nil {
			ReferencedSpecs(t.Upper, into)
		}
	case *RangeOf:
		ReferencedSpecs(t.Subject, into)
	case *Func:
		for _, arg := range t.Args {
			ReferencedSpecs(arg, into)
		}
	case *Const, *Subquery, *BoolLit:
		// no spec references
	}
}

// ClauseSpecs collects the spec IDs referenced by any term of the clause.
func ClauseSpecs(c Clause) map[SpecID]bool {
	specs := make(map[SpecID]bool)
	for _, term := range c.Terms {
		ReferencedSpecs(term, specs)
	}
	return specs
}

// StripCast unwraps any chain of Cast wrappers.
func StripCast(e Expr) Expr {
	for {
		cast, ok := e.(*Cast)
		if !ok {
			return e
		}
		e = cast.Inner
	}
}

// SargSubject returns the attribute a term restricts, if the term is in
// sargable shape: a comparison, BETWEEN, or RANGE whose subject is a
// column reference (possibly cast-wrapped). Returns nil otherwise.
func SargSubject(term Expr) *ColRef {
	var subject Expr
	switch t := term.(type) {
	case *Cmp:
		subject = t.Left
	case *Between:
		subject = t.Subject
	case *RangeOf:
		subject = t.Subject
	default:
		return nil
	}
	col, ok := StripCast(subject).(*ColRef)
	if !ok {
		return nil
	}
	return col
}

// SameColumn reports whether two column references name the same
// attribute of the same spec.
func SameColumn(a, b *ColRef) bool {
	return a != nil && b != nil && a.Spec == b.Spec && a.Column == b.Column
}
