package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/sqlir"
)

func scalarSubquery(table, column string) *sqlir.Subquery {
	return &sqlir.Subquery{Stmt: &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: table, JoinType: sqlir.JoinNone},
		},
		SelectList: []sqlir.Expr{col(1, column)},
	}}
}

func TestSubqueryMerge_EqualityBecomesDerivedJoin(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), scalarSubquery("dept", "id"))),
	}

	out, err := rewriteSubqueries(NewContext(), stmt, list)
	require.NoError(t, err)

	require.Len(t, stmt.Specs, 2)
	derived := stmt.Specs[1]
	assert.True(t, derived.IsDerived())
	assert.Equal(t, []string{"c1"}, derived.DerivedColumns)
	assert.Equal(t, sqlir.SpecID(2), derived.Location)
	assert.Equal(t, "@0 t1.dept_id = t2.c1", out[0].String())
}

func TestSubqueryMerge_GtSomeWrapsMin(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpGtSome, col(1, "salary"), scalarSubquery("pay", "amount"))),
	}

	out, err := rewriteSubqueries(NewContext(), stmt, list)
	require.NoError(t, err)

	derived := stmt.Specs[1].Derived
	assert.Equal(t, "MIN(t1.amount)", sqlir.ExprString(derived.SelectList[0]))
	assert.Equal(t, "@0 t1.salary > t2.c1", out[0].String())
}

func TestSubqueryMerge_LeSomeWrapsMax(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpLeSome, col(1, "salary"), scalarSubquery("pay", "amount"))),
	}

	out, err := rewriteSubqueries(NewContext(), stmt, list)
	require.NoError(t, err)
	derived := stmt.Specs[1].Derived
	assert.Equal(t, "MAX(t1.amount)", sqlir.ExprString(derived.SelectList[0]))
	assert.Equal(t, "@0 t1.salary <= t2.c1", out[0].String())
}

func TestSubqueryMerge_EqSomeBecomesEquality(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEqSome, col(1, "dept_id"), scalarSubquery("dept", "id"))),
	}

	out, err := rewriteSubqueries(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Equal(t, "@0 t1.dept_id = t2.c1", out[0].String())
}

func TestSubqueryMerge_CorrelatedStaysNested(t *testing.T) {
	sub := scalarSubquery("dept", "id")
	sub.Stmt.Specs[0].CorrelationLevel = 1

	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), sub)),
	}

	_, err := rewriteSubqueries(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Len(t, stmt.Specs, 1)
}

func TestSubqueryMerge_NoMergeHintDisables(t *testing.T) {
	stmt := oneTable("emp")
	stmt.NoMergeHint = true
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), scalarSubquery("dept", "id"))),
	}

	_, err := rewriteSubqueries(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Len(t, stmt.Specs, 1)
}

func TestSubqueryMerge_GroupedSubqueryStaysNested(t *testing.T) {
	sub := scalarSubquery("dept", "id")
	sub.Stmt.GroupBy = []sqlir.ColRef{{Spec: 1, Column: "region"}}

	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), sub)),
	}

	_, err := rewriteSubqueries(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Len(t, stmt.Specs, 1)
}

func oidSchema() *testSchema {
	return &testSchema{oid: map[string]bool{"emp.rowid": true}}
}

func TestOIDRewrite_EqualityBecomesValueRowSource(t *testing.T) {
	stmt := oneTable("emp")
	stmt.SelectList = []sqlir.Expr{col(1, "rowid")}
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "rowid"), intc(42))),
	}

	out, err := rewriteOIDEqualities(schemaCtx(oidSchema()), stmt, list)
	require.NoError(t, err)

	assert.Empty(t, out, "the pinning clause is dropped")
	spec := stmt.Specs[0]
	require.True(t, spec.IsDerived())
	assert.Equal(t, sqlir.SpecID(1), spec.Location, "the spec is replaced in place")
	assert.Equal(t, []string{"rowid"}, spec.DerivedColumns)
	assert.Equal(t, []sqlir.Value{sqlir.Int(42)}, spec.Derived.ValueRows)
}

func TestOIDRewrite_InListBecomesMultiRowSource(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpIn, col(1, "rowid"),
			&sqlir.Const{Val: sqlir.Set{sqlir.Int(1), sqlir.Int(2), sqlir.Int(3)}})),
	}

	out, err := rewriteOIDEqualities(schemaCtx(oidSchema()), stmt, list)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Len(t, stmt.Specs[0].Derived.ValueRows, 3)
}

func TestOIDRewrite_OtherColumnReferenceBlocks(t *testing.T) {
	stmt := oneTable("emp")
	stmt.SelectList = []sqlir.Expr{col(1, "name")}
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "rowid"), intc(42))),
	}

	out, err := rewriteOIDEqualities(schemaCtx(oidSchema()), stmt, list)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.False(t, stmt.Specs[0].IsDerived())
}

func TestOIDRewrite_NonOIDColumnIsLeftAlone(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept"), intc(42))),
	}

	out, err := rewriteOIDEqualities(schemaCtx(oidSchema()), stmt, list)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.False(t, stmt.Specs[0].IsDerived())
}
