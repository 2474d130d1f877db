package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/catalog"
	"github.com/roach88/sarge/internal/sqlir"
)

const empCatalog = `
catalog: {
	emp: {
		columns: {
			id:   {type: "int", nullable: false, oid: true}
			a:    {type: "int"}
			b:    {type: "int"}
			s:    {type: "string"}
			name: {type: "string"}
		}
	}
}
`

const empFixture = `
rows:
  emp:
    - {id: 1, a: 5, b: 1, s: "abc", name: "hit1"}
    - {id: 2, a: 5, b: 4, s: "ab", name: "hit2"}
    - {id: 3, a: 3, b: 1, s: "abc", name: "low"}
    - {id: 4, a: 10, b: 1, s: "abc", name: "high"}
    - {id: 5, a: 5, b: 2, s: "abc", name: "wrong_b"}
    - {id: 6, a: 5, b: 1, s: "xyz", name: "wrong_s"}
    - {id: 7, a: 5, b: 1, s: null, name: "null_s"}
    - {id: 8, a: null, b: 1, s: "abc", name: "null_a"}
`

func loadEmp(t *testing.T) (*catalog.Catalog, *Fixture) {
	t.Helper()
	cat, err := catalog.LoadString(empCatalog)
	require.NoError(t, err)
	fx, err := LoadFixture([]byte(empFixture))
	require.NoError(t, err)
	return cat, fx
}

func col(name string) *sqlir.ColRef { return &sqlir.ColRef{Spec: 1, Column: name} }

func intc(n int64) *sqlir.Const { return &sqlir.Const{Val: sqlir.Int(n)} }

func empSelect(selectCol string, where ...sqlir.Clause) *sqlir.Statement {
	return &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: "emp", JoinType: sqlir.JoinNone},
		},
		SelectList: []sqlir.Expr{col(selectCol)},
		Where:      where,
	}
}

func TestRun_RangeInLikeEquivalent(t *testing.T) {
	cat, fx := loadEmp(t)
	stmt := empSelect("name",
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpGT, Left: col("a"), Right: intc(3)}),
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpLE, Left: col("a"), Right: intc(9)}),
		sqlir.NewClause(0,
			&sqlir.Cmp{Op: sqlir.OpEQ, Left: col("b"), Right: intc(1)},
			&sqlir.Cmp{Op: sqlir.OpIn, Left: col("b"),
				Right: &sqlir.Const{Val: sqlir.Set{sqlir.Int(4), sqlir.Int(6)}}},
		),
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpLike, Left: col("s"),
			Right: &sqlir.Const{Val: sqlir.String("ab%")}}),
	)

	report, err := Run(context.Background(), cat, fx, stmt, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.True(t, report.Equivalent,
		"original %v vs rewritten %v", report.Original, report.Rewritten)
	assert.Equal(t, []string{"hit1", "hit2"}, report.Original)

	// The rewrite changed the text, not the rows.
	assert.NotEqual(t, report.OriginalSQL, report.RewrittenSQL)
	assert.Contains(t, report.RewrittenSQL, "?")
}

func TestRun_OIDEqualityBecomesRowSource(t *testing.T) {
	cat, fx := loadEmp(t)
	stmt := empSelect("id",
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpEQ, Left: col("id"), Right: intc(2)}),
	)

	report, err := Run(context.Background(), cat, fx, stmt, nil)
	require.NoError(t, err)
	assert.True(t, report.Equivalent)
	assert.Equal(t, []string{"2"}, report.Original)
	assert.Contains(t, report.RewrittenSQL, "SELECT ? AS id",
		"expected a constant row source: %s", report.RewrittenSQL)
	assert.NotContains(t, report.RewrittenSQL, "FROM emp")
}

func TestRun_HostVariablesResolve(t *testing.T) {
	cat, fx := loadEmp(t)
	stmt := empSelect("name",
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpGT, Left: col("a"),
			Right: &sqlir.Const{Val: sqlir.ParamRef(0)}}),
	)

	report, err := Run(context.Background(), cat, fx, stmt,
		[]sqlir.Value{sqlir.Int(5)})
	require.NoError(t, err)
	assert.True(t, report.Equivalent)
	assert.Equal(t, []string{"high"}, report.Original)
}

func TestRun_InputStatementUntouched(t *testing.T) {
	cat, fx := loadEmp(t)
	stmt := empSelect("name",
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpGT, Left: col("a"), Right: intc(3)}),
		sqlir.NewClause(0, &sqlir.Cmp{Op: sqlir.OpLE, Left: col("a"), Right: intc(9)}),
	)

	_, err := Run(context.Background(), cat, fx, stmt, nil)
	require.NoError(t, err)
	require.Len(t, stmt.Where, 2, "caller's statement must not be rewritten")
	_, isCmp := stmt.Where[0].Terms[0].(*sqlir.Cmp)
	assert.True(t, isCmp)
}

func TestSeed_UnknownTableFails(t *testing.T) {
	cat, _ := loadEmp(t)
	db, err := Open()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.CreateTables(context.Background(), cat))

	fx := &Fixture{Rows: map[string][]map[string]any{
		"nope": {{"x": 1}},
	}}
	err = db.Seed(context.Background(), fx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestLoadFixture_BadYAML(t *testing.T) {
	_, err := LoadFixture([]byte("rows: [not a map"))
	require.Error(t, err)
}
