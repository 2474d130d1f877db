package sqlir

// CloneExpr deep-copies an expression tree. Values are immutable and
// shared; everything structural is copied so passes can rewrite a clone
// without aliasing the original (the statement arena owns both).
func CloneExpr(e Expr) Expr {
	switch t := e.(type) {
	case nil:
		return nil
	case *ColRef:
		cp := *t
		return &cp
	case *Const:
		cp := *t
		return &cp
	case *Cast:
		return &Cast{Inner: CloneExpr(t.Inner), Type: t.Type}
	case *Cmp:
		return &Cmp{Op: t.Op, Left: CloneExpr(t.Left), Right: CloneExpr(t.Right)}
	case *Between:
		return &Between{
			Subject: CloneExpr(t.Subject),
			Lower:   CloneExpr(t.Lower),
			Upper:   CloneExpr(t.Upper),
			Kind:    t.Kind,
		}
	case *RangeOf:
		return &RangeOf{Subject: CloneExpr(t.Subject), Ranges: CloneRange(t.Ranges)}
	case *Func:
		args := make([]Expr, len(t.Args))
		for i, a := range t.Args {
			args[i] = CloneExpr(a)
		}
		return &Func{Name: t.Name, Args: args}
	case *Subquery:
		return &Subquery{Stmt: t.Stmt.Clone()}
	case *BoolLit:
		cp := *t
		return &cp
	default:
		// Sealed interface: unreachable unless a variant was added
		// without updating this switch.
		panic("sqlir: CloneExpr: unknown expression variant")
	}
}

// CloneRange copies a Range's sub-range list.
func CloneRange(r Range) Range {
	subs := make([]SubRange, len(r.Subs))
	copy(subs, r.Subs)
	return Range{Subs: subs, Empty: r.Empty}
}

// CloneClause copies one clause and its terms.
func CloneClause(c Clause) Clause {
	terms := make([]Expr, len(c.Terms))
	for i, t := range c.Terms {
		terms[i] = CloneExpr(t)
	}
	return Clause{
		Location:   c.Location,
		Transitive: c.Transitive,
		CopyPushed: c.CopyPushed,
		Terms:      terms,
	}
}

// CloneList copies a clause list.
func CloneList(l ClauseList) ClauseList {
	if l == nil {
		return nil
	}
	out := make(ClauseList, len(l))
	for i, c := range l {
		out[i] = CloneClause(c)
	}
	return out
}

// Clone deep-copies a statement, including derived-table subtrees.
func (s *Statement) Clone() *Statement {
	if s == nil {
		return nil
	}
	cp := &Statement{
		Kind:        s.Kind,
		Where:       CloneList(s.Where),
		Having:      CloneList(s.Having),
		OrderedHint: s.OrderedHint,
		NoMergeHint: s.NoMergeHint,
	}
	cp.Specs = make([]*JoinSpec, len(s.Specs))
	for i, spec := range s.Specs {
		sc := &JoinSpec{
			Location:         spec.Location,
			Table:            spec.Table,
			Alias:            spec.Alias,
			JoinType:         spec.JoinType,
			On:               CloneList(spec.On),
			Derived:          spec.Derived.Clone(),
			CorrelationLevel: spec.CorrelationLevel,
		}
		sc.DerivedColumns = append([]string(nil), spec.DerivedColumns...)
		cp.Specs[i] = sc
	}
	cp.SelectList = make([]Expr, len(s.SelectList))
	for i, e := range s.SelectList {
		cp.SelectList[i] = CloneExpr(e)
	}
	cp.GroupBy = append([]ColRef(nil), s.GroupBy...)
	cp.OrderBy = append([]OrderItem(nil), s.OrderBy...)
	cp.ValueRows = append([]Value(nil), s.ValueRows...)
	return cp
}
