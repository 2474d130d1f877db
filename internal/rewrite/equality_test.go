package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/sqlir"
)

func TestEqualityReduce_SubstitutesIntoSiblingClause(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept"), intc(7))),
		where(cmpOf(sqlir.OpLT, col(1, "dept"), col(1, "rank"))),
	}

	out, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "@0 7 < t1.rank", out[1].String())
}

func TestEqualityReduce_SubstitutesThroughCast(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept"), intc(7))),
		where(cmpOf(sqlir.OpGT, col(1, "rank"), &sqlir.Cast{Inner: col(1, "dept"), Type: "FLOAT"})),
	}

	out, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Equal(t, "@0 t1.rank > CAST(7 AS FLOAT)", out[1].String())
}

func TestEqualityReduce_JoinPredicateGetsTransitiveCopy(t *testing.T) {
	stmt := twoTables("emp", "dept", sqlir.JoinNone)
	join := where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), col(2, "id")))
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), intc(7))),
		join,
	}

	out, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)
	require.Len(t, out, 3, "join predicate is copied, not replaced")

	assert.Equal(t, "@0 t1.dept_id = t2.id", out[1].String(), "original join term survives")
	copied := out[2]
	assert.True(t, copied.Transitive)
	assert.Equal(t, "@0 7 = t2.id [transitive]", copied.String())
}

func TestEqualityReduce_TransitiveCopyIsNotDuplicated(t *testing.T) {
	stmt := twoTables("emp", "dept", sqlir.JoinNone)
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), intc(7))),
		where(cmpOf(sqlir.OpEQ, col(1, "dept_id"), col(2, "id"))),
	}

	out, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)

	transitive := 0
	for _, c := range out {
		if c.Transitive {
			transitive++
		}
	}
	assert.Equal(t, 1, transitive)
}

func TestEqualityReduce_SinglePointRangeIsABinding(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(&sqlir.RangeOf{
			Subject: col(1, "dept"),
			Ranges:  sqlir.Range{Subs: []sqlir.SubRange{sqlir.Point(sqlir.Int(7))}},
		}),
		where(cmpOf(sqlir.OpLT, intc(3), col(1, "dept"))),
	}

	out, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Equal(t, "@0 3 < 7", out[1].String())
}

func TestEqualityReduce_SelectListIsRewritten(t *testing.T) {
	stmt := oneTable("emp")
	stmt.SelectList = []sqlir.Expr{col(1, "dept"), col(1, "name")}
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept"), intc(7))),
	}

	_, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Equal(t, "7", sqlir.ExprString(stmt.SelectList[0]))
	assert.Equal(t, "t1.name", sqlir.ExprString(stmt.SelectList[1]))
}

func TestEqualityReduce_DerivedConstantColumnBinds(t *testing.T) {
	stmt := oneTable("emp")
	stmt.Specs = append(stmt.Specs, &sqlir.JoinSpec{
		Location: 2,
		JoinType: sqlir.JoinNone,
		Derived: &sqlir.Statement{
			Kind:       sqlir.StmtSelect,
			SelectList: []sqlir.Expr{intc(42)},
		},
		DerivedColumns: []string{"c1"},
	})
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpGE, col(1, "rank"), col(2, "c1"))),
	}

	out, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)
	// The predicate joins two specs, so substitution produces a
	// transitive copy and keeps the join term.
	require.Len(t, out, 2)
	assert.Equal(t, "@0 t1.rank >= t2.c1", out[0].String())
	assert.Equal(t, "@0 t1.rank >= 42 [transitive]", out[1].String())
}

func TestEqualityReduce_NullAndParamAreNotBindings(t *testing.T) {
	stmt := oneTable("emp")
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "a"), &sqlir.Const{Val: sqlir.Null{}})),
		where(cmpOf(sqlir.OpEQ, col(1, "b"), &sqlir.Const{Val: sqlir.ParamRef(0)})),
		where(cmpOf(sqlir.OpLT, col(1, "a"), col(1, "b"))),
	}

	out, err := reduceEqualityTerms(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Equal(t, "@0 t1.a < t1.b", out[2].String())
}
