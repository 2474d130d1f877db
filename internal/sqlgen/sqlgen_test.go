package sqlgen

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/sqlir"
)

func col(spec sqlir.SpecID, name string) *sqlir.ColRef {
	return &sqlir.ColRef{Spec: spec, Column: name}
}

func intc(n int64) *sqlir.Const { return &sqlir.Const{Val: sqlir.Int(n)} }

func selectFrom(table string, where ...sqlir.Clause) *sqlir.Statement {
	return &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: table, JoinType: sqlir.JoinNone},
		},
		SelectList: []sqlir.Expr{col(1, "name")},
		Where:      where,
	}
}

func TestCompile_SimpleComparison(t *testing.T) {
	stmt := selectFrom("emp",
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpGT, Left: col(1, "a"), Right: intc(3)}),
	)
	sql, args, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT t1.name FROM emp AS t1 WHERE t1.a > ?", sql)
	assert.Equal(t, []any{int64(3)}, args)
}

func TestCompile_OrGroupAndInSet(t *testing.T) {
	stmt := selectFrom("emp",
		sqlir.NewClause(0,
			&sqlir.Cmp{Op: sqlir.OpEQ, Left: col(1, "b"), Right: intc(1)},
			&sqlir.Cmp{Op: sqlir.OpIn, Left: col(1, "b"),
				Right: &sqlir.Const{Val: sqlir.Set{sqlir.Int(4), sqlir.Int(6)}}},
		),
	)
	sql, args, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t1.name FROM emp AS t1 WHERE (t1.b = ? OR t1.b IN (?, ?))", sql)
	assert.Equal(t, []any{int64(1), int64(4), int64(6)}, args)
}

func TestCompile_Between(t *testing.T) {
	stmt := selectFrom("emp",
		sqlir.NewClause(0, &sqlir.Between{
			Subject: col(1, "a"), Lower: intc(3), Upper: intc(9),
			Kind: sqlir.KindGtLe,
		}),
	)
	sql, args, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t1.name FROM emp AS t1 WHERE (t1.a > ? AND t1.a <= ?)", sql)
	assert.Equal(t, []any{int64(3), int64(9)}, args)
}

func TestCompile_RangeAlternatives(t *testing.T) {
	stmt := selectFrom("emp",
		sqlir.NewClause(0, &sqlir.RangeOf{
			Subject: col(1, "a"),
			Ranges: sqlir.Range{Subs: []sqlir.SubRange{
				{Kind: sqlir.KindEQ,
					Lower: sqlir.BoundOf(sqlir.Int(3)), Upper: sqlir.BoundOf(sqlir.Int(3))},
				{Kind: sqlir.KindGeInf,
					Lower: sqlir.BoundOf(sqlir.Int(10)), Upper: sqlir.NoBound()},
			}},
		}),
	)
	sql, args, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t1.name FROM emp AS t1 WHERE ((t1.a = ?) OR (t1.a >= ?))", sql)
	assert.Equal(t, []any{int64(3), int64(10)}, args)
}

func TestCompile_EmptyRangeIsFalse(t *testing.T) {
	stmt := selectFrom("emp",
		sqlir.NewClause(0, &sqlir.RangeOf{
			Subject: col(1, "a"), Ranges: sqlir.Range{Empty: true},
		}),
	)
	sql, _, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT t1.name FROM emp AS t1 WHERE 0", sql)
}

func TestCompile_PlaceholderResolution(t *testing.T) {
	stmt := selectFrom("emp",
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpEQ, Left: col(1, "a"),
			Right: &sqlir.Const{Val: sqlir.ParamRef(0)}}),
	)
	c := &Compiler{Params: []sqlir.Value{sqlir.Int(7)}}
	sql, args, err := c.Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT t1.name FROM emp AS t1 WHERE t1.a = ?", sql)
	assert.Equal(t, []any{int64(7)}, args)

	// Out of range is a compile error, not a silent NULL.
	_, _, err = (&Compiler{}).Compile(stmt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "?0")
}

func TestCompile_ValueRowsDerivedTable(t *testing.T) {
	stmt := &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: "emp", JoinType: sqlir.JoinNone},
			{Location: 2, JoinType: sqlir.JoinNone,
				Derived:        &sqlir.Statement{Kind: sqlir.StmtSelect, ValueRows: []sqlir.Value{sqlir.Int(42), sqlir.Int(43)}},
				DerivedColumns: []string{"id"}},
		},
		SelectList: []sqlir.Expr{col(1, "name")},
		Where: sqlir.ClauseList{
			sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpEQ, Left: col(1, "id"), Right: col(2, "id")}),
		},
	}
	sql, args, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t1.name FROM emp AS t1, (SELECT ? AS id UNION ALL SELECT ? AS id) AS t2 WHERE t1.id = t2.id",
		sql)
	assert.Equal(t, []any{int64(42), int64(43)}, args)
}

func TestCompile_DerivedSelectGetsColumnAliases(t *testing.T) {
	inner := &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: "dept", JoinType: sqlir.JoinNone},
		},
		SelectList: []sqlir.Expr{col(1, "id")},
	}
	stmt := &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: "emp", JoinType: sqlir.JoinNone},
			{Location: 2, JoinType: sqlir.JoinInner, Derived: inner,
				DerivedColumns: []string{"c1"},
				On: sqlir.ClauseList{sqlir.NewClause(2,
					&sqlir.Cmp{Op: sqlir.OpEQ, Left: col(1, "dept_id"), Right: col(2, "c1")})}},
		},
		SelectList: []sqlir.Expr{col(1, "name")},
	}
	sql, _, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t1.name FROM emp AS t1 JOIN (SELECT t1.id AS c1 FROM dept AS t1) AS t2 ON t1.dept_id = t2.c1",
		sql)
}

func TestCompile_GroupHavingOrder(t *testing.T) {
	stmt := &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: "emp", JoinType: sqlir.JoinNone},
		},
		SelectList: []sqlir.Expr{
			col(1, "dept"),
			&sqlir.Func{Name: "COUNT", Args: []sqlir.Expr{col(1, "id")}},
		},
		GroupBy: []sqlir.ColRef{{Spec: 1, Column: "dept"}},
		Having: sqlir.ClauseList{
			sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpGT,
				Left:  &sqlir.Func{Name: "COUNT", Args: []sqlir.Expr{col(1, "id")}},
				Right: intc(2)}),
		},
		OrderBy: []sqlir.OrderItem{
			{Col: sqlir.ColRef{Spec: 1, Column: "dept"}},
			{Col: sqlir.ColRef{Spec: 1, Column: "id"}, Desc: true},
		},
	}
	sql, args, err := (&Compiler{}).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t1.dept, COUNT(t1.id) FROM emp AS t1 GROUP BY t1.dept HAVING COUNT(t1.id) > ? ORDER BY t1.dept, t1.id DESC",
		sql)
	assert.Equal(t, []any{int64(2)}, args)
}

func TestCompile_Unsupported(t *testing.T) {
	_, _, err := (&Compiler{}).Compile(&sqlir.Statement{Kind: sqlir.StmtUpdate})
	require.Error(t, err)

	stmt := selectFrom("emp",
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpGtSome, Left: col(1, "a"),
			Right: &sqlir.Subquery{Stmt: selectFrom("dept")}}),
	)
	_, _, err = (&Compiler{}).Compile(stmt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantified")
}

func TestCompile_GoldenRewrittenJoin(t *testing.T) {
	stmt := &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: "emp", JoinType: sqlir.JoinNone},
			{Location: 2, Table: "dept", JoinType: sqlir.JoinLeftOuter,
				On: sqlir.ClauseList{sqlir.NewClause(2,
					&sqlir.Cmp{Op: sqlir.OpEQ, Left: col(1, "dept_id"), Right: col(2, "id")})}},
		},
		SelectList: []sqlir.Expr{col(1, "name"), col(2, "id")},
		Where: sqlir.ClauseList{
			sqlir.NewClause(0, &sqlir.RangeOf{
				Subject: col(1, "a"),
				Ranges: sqlir.Range{Subs: []sqlir.SubRange{
					{Kind: sqlir.KindGtLe,
						Lower: sqlir.Bound{State: sqlir.Bounded, Val: sqlir.ParamRef(0)},
						Upper: sqlir.Bound{State: sqlir.Bounded, Val: sqlir.ParamRef(1)}},
				}},
			}),
			sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpEQ, Left: col(1, "dept"),
				Right: &sqlir.Const{Val: sqlir.ParamRef(2)}}),
		},
		OrderBy: []sqlir.OrderItem{
			{Col: sqlir.ColRef{Spec: 1, Column: "name"}},
			{Col: sqlir.ColRef{Spec: 2, Column: "id"}, Desc: true},
		},
	}
	c := &Compiler{Params: []sqlir.Value{sqlir.Int(3), sqlir.Int(9), sqlir.Int(7)}}
	sql, args, err := c.Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(9), int64(7)}, args)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "rewritten_join", []byte(sql+"\n"))
}
