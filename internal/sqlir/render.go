package sqlir

import (
	"fmt"
	"strings"
)

// ExprString renders an expression in a deterministic SQL-ish syntax.
// Column references render as tN.column where N is the spec location.
// The output is stable across runs and is what the trace command and the
// golden tests compare against.
func ExprString(e Expr) string {
	switch t := e.(type) {
	case nil:
		return "<nil>"
	case *ColRef:
		return fmt.Sprintf("t%d.%s", t.Spec, t.Column)
	case *Const:
		return ValueString(t.Val)
	case *Cast:
		return fmt.Sprintf("CAST(%s AS %s)", ExprString(t.Inner), t.Type)
	case *Cmp:
		switch t.Op {
		case OpIsNull, OpIsNotNull:
			return fmt.Sprintf("%s %s", ExprString(t.Left), t.Op)
		default:
			return fmt.Sprintf("%s %s %s", ExprString(t.Left), t.Op, ExprString(t.Right))
		}
	case *Between:
		lower, upper := "inf", "inf"
		if t.Lower != nil {
			lower = ExprString(t.Lower)
		}
		if t.Upper != nil {
			upper = ExprString(t.Upper)
		}
		return fmt.Sprintf("%s BETWEEN %s %s %s", ExprString(t.Subject), lower, t.Kind, upper)
	case *RangeOf:
		return fmt.Sprintf("%s RANGE %s", ExprString(t.Subject), t.Ranges)
	case *Func:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = ExprString(a)
		}
		return fmt.Sprintf("%s(%s)", t.Name, strings.Join(args, ", "))
	case *Subquery:
		return "(" + t.Stmt.String() + ")"
	case *BoolLit:
		if t.Val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("<unknown %T>", e)
	}
}

// String renders a clause as its OR-joined terms with the location tag
// and flags.
func (c Clause) String() string {
	terms := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		terms[i] = ExprString(t)
	}
	s := strings.Join(terms, " OR ")
	if len(c.Terms) > 1 {
		s = "(" + s + ")"
	}
	var flags string
	if c.Transitive {
		flags += " [transitive]"
	}
	if c.CopyPushed {
		flags += " [copy-pushed]"
	}
	return fmt.Sprintf("@%d %s%s", c.Location, s, flags)
}

// String renders the clause list one conjunct per line.
func (l ClauseList) String() string {
	lines := make([]string, len(l))
	for i, c := range l {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

// String renders the statement structure: specs with join types and ON
// conditions, then WHERE/HAVING/GROUP BY/ORDER BY.
func (s *Statement) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Kind)
	if len(s.ValueRows) > 0 {
		rows := make([]string, len(s.ValueRows))
		for i, v := range s.ValueRows {
			rows[i] = ValueString(v)
		}
		fmt.Fprintf(&b, "  values %s\n", strings.Join(rows, ", "))
	}
	for _, spec := range s.Specs {
		name := spec.Table
		if spec.IsDerived() {
			name = "derived(" + strings.Join(spec.DerivedColumns, ", ") + ")"
		}
		fmt.Fprintf(&b, "  spec t%d %s %s", spec.Location, name, spec.JoinType)
		if spec.Alias != "" {
			fmt.Fprintf(&b, " AS %s", spec.Alias)
		}
		b.WriteByte('\n')
		for _, c := range spec.On {
			fmt.Fprintf(&b, "    on %s\n", c)
		}
		if spec.IsDerived() {
			for _, line := range strings.Split(spec.Derived.String(), "\n") {
				fmt.Fprintf(&b, "    | %s\n", line)
			}
		}
	}
	if len(s.SelectList) > 0 {
		cols := make([]string, len(s.SelectList))
		for i, e := range s.SelectList {
			cols[i] = ExprString(e)
		}
		fmt.Fprintf(&b, "  select %s\n", strings.Join(cols, ", "))
	}
	for _, c := range s.Where {
		fmt.Fprintf(&b, "  where %s\n", c)
	}
	for _, c := range s.Having {
		fmt.Fprintf(&b, "  having %s\n", c)
	}
	if len(s.GroupBy) > 0 {
		cols := make([]string, len(s.GroupBy))
		for i, g := range s.GroupBy {
			cols[i] = ExprString(&g)
		}
		fmt.Fprintf(&b, "  group by %s\n", strings.Join(cols, ", "))
	}
	if len(s.OrderBy) > 0 {
		cols := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			cols[i] = ExprString(&o.Col)
			if o.Desc {
				cols[i] += " DESC"
			}
		}
		fmt.Fprintf(&b, "  order by %s\n", strings.Join(cols, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
