// Package sqlgen renders a statement IR as parameterized SQLite SQL.
// The differential harness runs the rendered original and rewritten
// statements against the same seeded database; the CLI prints them.
//
// All values are parameterized, never interpolated. Placeholders in the
// IR resolve against the compile context's combined value array, so a
// rewritten (auto-parameterized) statement renders with the same
// argument values the literals held.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/sarge/internal/sqlir"
)

// Compiler renders statements. Params is the combined host-variable and
// auto-parameter array placeholders index into.
type Compiler struct {
	Params []sqlir.Value

	// aliases renames the select list when the statement renders as a
	// derived table whose spec names its projection.
	aliases []string
}

// Compile renders a SELECT statement. Returns the SQL text and the
// driver arguments in placeholder order.
func (c *Compiler) Compile(stmt *sqlir.Statement) (string, []any, error) {
	if stmt.Kind != sqlir.StmtSelect {
		return "", nil, fmt.Errorf("sqlgen: %s statements are not supported", stmt.Kind)
	}
	var b strings.Builder
	var args []any

	if len(stmt.ValueRows) > 0 {
		col := "c1"
		if len(stmt.SelectList) == 1 {
			if ref, ok := stmt.SelectList[0].(*sqlir.ColRef); ok {
				col = ref.Column
			}
		}
		return c.compileValueRows(stmt, col)
	}

	b.WriteString("SELECT ")
	if len(stmt.SelectList) == 0 {
		b.WriteString("*")
	} else {
		for i, e := range stmt.SelectList {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := c.expr(&b, &args, e); err != nil {
				return "", nil, err
			}
			if i < len(c.aliases) {
				b.WriteString(" AS ")
				b.WriteString(c.aliases[i])
			}
		}
	}

	if len(stmt.Specs) > 0 {
		b.WriteString(" FROM ")
		if err := c.fromList(&b, &args, stmt.Specs); err != nil {
			return "", nil, err
		}
	}

	if len(stmt.Where) > 0 {
		b.WriteString(" WHERE ")
		if err := c.clauses(&b, &args, stmt.Where); err != nil {
			return "", nil, err
		}
	}
	if len(stmt.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i := range stmt.GroupBy {
			if i > 0 {
				b.WriteString(", ")
			}
			c.colRef(&b, &stmt.GroupBy[i])
		}
	}
	if len(stmt.Having) > 0 {
		b.WriteString(" HAVING ")
		if err := c.clauses(&b, &args, stmt.Having); err != nil {
			return "", nil, err
		}
	}
	if len(stmt.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, item := range stmt.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			c.colRef(&b, &item.Col)
			if item.Desc {
				b.WriteString(" DESC")
			}
		}
	}
	return b.String(), args, nil
}

// compileValueRows renders a constant row source as a UNION ALL chain of
// single-value selects, the shape the OID rewrite synthesizes.
func (c *Compiler) compileValueRows(stmt *sqlir.Statement, col string) (string, []any, error) {
	var b strings.Builder
	var args []any
	for i, v := range stmt.ValueRows {
		if i > 0 {
			b.WriteString(" UNION ALL ")
		}
		b.WriteString("SELECT ? AS ")
		b.WriteString(col)
		arg, err := c.arg(v)
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
	}
	return b.String(), args, nil
}

func (c *Compiler) fromList(b *strings.Builder, args *[]any, specs []*sqlir.JoinSpec) error {
	for i, spec := range specs {
		if i > 0 {
			switch spec.JoinType {
			case sqlir.JoinNone:
				b.WriteString(", ")
			case sqlir.JoinInner:
				b.WriteString(" JOIN ")
			case sqlir.JoinLeftOuter:
				b.WriteString(" LEFT JOIN ")
			case sqlir.JoinRightOuter:
				b.WriteString(" RIGHT JOIN ")
			}
		}
		if err := c.fromSpec(b, args, spec); err != nil {
			return err
		}
		if i > 0 && spec.JoinType != sqlir.JoinNone {
			b.WriteString(" ON ")
			if len(spec.On) == 0 {
				b.WriteString("1")
			} else if err := c.clauses(b, args, spec.On); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Compiler) fromSpec(b *strings.Builder, args *[]any, spec *sqlir.JoinSpec) error {
	if spec.IsDerived() {
		inner := &Compiler{Params: c.Params}
		var sql string
		var innerArgs []any
		var err error
		if len(spec.Derived.ValueRows) > 0 && len(spec.DerivedColumns) == 1 {
			// Constant row source: the spec names its projection.
			sql, innerArgs, err = inner.compileValueRows(spec.Derived, spec.DerivedColumns[0])
		} else {
			inner.aliases = spec.DerivedColumns
			sql, innerArgs, err = inner.Compile(spec.Derived)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "(%s) AS t%d", sql, spec.Location)
		*args = append(*args, innerArgs...)
		return nil
	}
	fmt.Fprintf(b, "%s AS t%d", spec.Table, spec.Location)
	return nil
}

func (c *Compiler) clauses(b *strings.Builder, args *[]any, list sqlir.ClauseList) error {
	for i, clause := range list {
		if i > 0 {
			b.WriteString(" AND ")
		}
		if len(clause.Terms) > 1 {
			b.WriteString("(")
		}
		for ti, term := range clause.Terms {
			if ti > 0 {
				b.WriteString(" OR ")
			}
			if err := c.expr(b, args, term); err != nil {
				return err
			}
		}
		if len(clause.Terms) > 1 {
			b.WriteString(")")
		}
	}
	return nil
}

func (c *Compiler) expr(b *strings.Builder, args *[]any, e sqlir.Expr) error {
	switch t := e.(type) {
	case *sqlir.ColRef:
		c.colRef(b, t)
	case *sqlir.Const:
		return c.constVal(b, args, t.Val)
	case *sqlir.Cast:
		b.WriteString("CAST(")
		if err := c.expr(b, args, t.Inner); err != nil {
			return err
		}
		fmt.Fprintf(b, " AS %s)", t.Type)
	case *sqlir.Cmp:
		return c.cmp(b, args, t)
	case *sqlir.Between:
		return c.between(b, args, t)
	case *sqlir.RangeOf:
		return c.rangeOf(b, args, t)
	case *sqlir.Func:
		b.WriteString(t.Name)
		b.WriteString("(")
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := c.expr(b, args, arg); err != nil {
				return err
			}
		}
		b.WriteString(")")
	case *sqlir.Subquery:
		sql, innerArgs, err := (&Compiler{Params: c.Params}).Compile(t.Stmt)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "(%s)", sql)
		*args = append(*args, innerArgs...)
	case *sqlir.BoolLit:
		if t.Val {
			b.WriteString("1")
		} else {
			b.WriteString("0")
		}
	default:
		return fmt.Errorf("sqlgen: unsupported node %T", e)
	}
	return nil
}

func (c *Compiler) colRef(b *strings.Builder, ref *sqlir.ColRef) {
	if ref.Spec == 0 {
		b.WriteString(ref.Column)
		return
	}
	fmt.Fprintf(b, "t%d.%s", ref.Spec, ref.Column)
}

func (c *Compiler) cmp(b *strings.Builder, args *[]any, t *sqlir.Cmp) error {
	if t.Op.IsSome() {
		return fmt.Errorf("sqlgen: quantified comparison %s must be rewritten first", t.Op)
	}
	if err := c.expr(b, args, t.Left); err != nil {
		return err
	}
	switch t.Op {
	case sqlir.OpIsNull:
		b.WriteString(" IS NULL")
		return nil
	case sqlir.OpIsNotNull:
		b.WriteString(" IS NOT NULL")
		return nil
	case sqlir.OpIn:
		b.WriteString(" IN ")
		return c.inOperand(b, args, t.Right)
	}
	fmt.Fprintf(b, " %s ", t.Op)
	return c.expr(b, args, t.Right)
}

// inOperand expands a set literal (or set-valued placeholder) into a
// parenthesized placeholder list.
func (c *Compiler) inOperand(b *strings.Builder, args *[]any, e sqlir.Expr) error {
	if sub, ok := e.(*sqlir.Subquery); ok {
		return c.expr(b, args, sub)
	}
	cnst, ok := e.(*sqlir.Const)
	if !ok {
		return fmt.Errorf("sqlgen: IN needs a set or subquery operand, got %T", e)
	}
	val := cnst.Val
	if p, isParam := val.(sqlir.ParamRef); isParam {
		resolved, err := c.resolveParam(p)
		if err != nil {
			return err
		}
		val = resolved
	}
	set, ok := val.(sqlir.Set)
	if !ok {
		return fmt.Errorf("sqlgen: IN needs a set operand, got %T", val)
	}
	b.WriteString("(")
	for i, elem := range set {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		arg, err := c.arg(elem)
		if err != nil {
			return err
		}
		*args = append(*args, arg)
	}
	b.WriteString(")")
	return nil
}

func (c *Compiler) between(b *strings.Builder, args *[]any, t *sqlir.Between) error {
	var parts []func() error
	if !t.Kind.LowerUnbounded() {
		op := ">="
		if !t.Kind.LowerClosed() {
			op = ">"
		}
		parts = append(parts, func() error {
			if err := c.expr(b, args, t.Subject); err != nil {
				return err
			}
			fmt.Fprintf(b, " %s ", op)
			return c.expr(b, args, t.Lower)
		})
	}
	if !t.Kind.UpperUnbounded() {
		op := "<="
		if !t.Kind.UpperClosed() {
			op = "<"
		}
		parts = append(parts, func() error {
			if err := c.expr(b, args, t.Subject); err != nil {
				return err
			}
			fmt.Fprintf(b, " %s ", op)
			return c.expr(b, args, t.Upper)
		})
	}
	if len(parts) == 0 {
		b.WriteString("1")
		return nil
	}
	b.WriteString("(")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(" AND ")
		}
		if err := part(); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

func (c *Compiler) rangeOf(b *strings.Builder, args *[]any, t *sqlir.RangeOf) error {
	if t.Ranges.Empty || len(t.Ranges.Subs) == 0 {
		b.WriteString("0")
		return nil
	}
	if len(t.Ranges.Subs) > 1 {
		b.WriteString("(")
	}
	for i, sub := range t.Ranges.Subs {
		if i > 0 {
			b.WriteString(" OR ")
		}
		if err := c.subRange(b, args, t.Subject, sub); err != nil {
			return err
		}
	}
	if len(t.Ranges.Subs) > 1 {
		b.WriteString(")")
	}
	return nil
}

func (c *Compiler) subRange(b *strings.Builder, args *[]any, subject sqlir.Expr, sub sqlir.SubRange) error {
	if sub.AlwaysFalse() {
		b.WriteString("0")
		return nil
	}
	if sub.Kind == sqlir.KindEQ {
		b.WriteString("(")
		if err := c.expr(b, args, subject); err != nil {
			return err
		}
		b.WriteString(" = ?")
		arg, err := c.arg(sub.Lower.Val)
		if err != nil {
			return err
		}
		*args = append(*args, arg)
		b.WriteString(")")
		return nil
	}
	if sub.Kind == sqlir.KindFull {
		b.WriteString("(")
		if err := c.expr(b, args, subject); err != nil {
			return err
		}
		b.WriteString(" IS NOT NULL)")
		return nil
	}

	b.WriteString("(")
	wrote := false
	if !sub.Kind.LowerUnbounded() {
		op := ">="
		if !sub.Kind.LowerClosed() {
			op = ">"
		}
		if err := c.boundCond(b, args, subject, op, sub.Lower); err != nil {
			return err
		}
		wrote = true
	}
	if !sub.Kind.UpperUnbounded() {
		if wrote {
			b.WriteString(" AND ")
		}
		op := "<="
		if !sub.Kind.UpperClosed() {
			op = "<"
		}
		if err := c.boundCond(b, args, subject, op, sub.Upper); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

func (c *Compiler) boundCond(b *strings.Builder, args *[]any, subject sqlir.Expr, op string, bound sqlir.Bound) error {
	if err := c.expr(b, args, subject); err != nil {
		return err
	}
	fmt.Fprintf(b, " %s ?", op)
	arg, err := c.arg(bound.Val)
	if err != nil {
		return err
	}
	*args = append(*args, arg)
	return nil
}

func (c *Compiler) constVal(b *strings.Builder, args *[]any, v sqlir.Value) error {
	if sqlir.IsNull(v) {
		b.WriteString("NULL")
		return nil
	}
	b.WriteString("?")
	arg, err := c.arg(v)
	if err != nil {
		return err
	}
	*args = append(*args, arg)
	return nil
}

func (c *Compiler) resolveParam(p sqlir.ParamRef) (sqlir.Value, error) {
	if int(p) < 0 || int(p) >= len(c.Params) {
		return nil, fmt.Errorf("sqlgen: placeholder ?%d out of range (%d values)", int(p), len(c.Params))
	}
	return c.Params[int(p)], nil
}

// arg maps a value to its database/sql driver representation.
func (c *Compiler) arg(v sqlir.Value) (any, error) {
	if p, ok := v.(sqlir.ParamRef); ok {
		resolved, err := c.resolveParam(p)
		if err != nil {
			return nil, err
		}
		v = resolved
	}
	switch val := v.(type) {
	case sqlir.Null:
		return nil, nil
	case sqlir.Bool:
		return bool(val), nil
	case sqlir.Int:
		return int64(val), nil
	case sqlir.Float:
		return float64(val), nil
	case sqlir.String:
		return string(val), nil
	default:
		return nil, fmt.Errorf("sqlgen: value %T has no driver form", v)
	}
}
