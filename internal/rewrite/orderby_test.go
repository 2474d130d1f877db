package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/sqlir"
)

func TestOrderByReduce_PinnedColumnDrops(t *testing.T) {
	stmt := oneTable("emp")
	stmt.OrderBy = []sqlir.OrderItem{
		{Col: sqlir.ColRef{Spec: 1, Column: "dept"}},
		{Col: sqlir.ColRef{Spec: 1, Column: "name"}},
	}
	list := sqlir.ClauseList{
		where(cmpOf(sqlir.OpEQ, col(1, "dept"), intc(7))),
	}

	_, err := reduceOrderBy(NewContext(), stmt, list)
	require.NoError(t, err)
	require.Len(t, stmt.OrderBy, 1)
	assert.Equal(t, "name", stmt.OrderBy[0].Col.Column)
}

func TestOrderByReduce_DuplicateColumnDrops(t *testing.T) {
	stmt := oneTable("emp")
	stmt.OrderBy = []sqlir.OrderItem{
		{Col: sqlir.ColRef{Spec: 1, Column: "a"}},
		{Col: sqlir.ColRef{Spec: 1, Column: "b"}},
		{Col: sqlir.ColRef{Spec: 1, Column: "a"}, Desc: true},
	}

	_, err := reduceOrderBy(NewContext(), stmt, sqlir.ClauseList{})
	require.NoError(t, err)
	require.Len(t, stmt.OrderBy, 2)
	assert.Equal(t, "a", stmt.OrderBy[0].Col.Column)
	assert.Equal(t, "b", stmt.OrderBy[1].Col.Column)
}

func TestOrderByReduce_OrGroupEqualityDoesNotPin(t *testing.T) {
	stmt := oneTable("emp")
	stmt.OrderBy = []sqlir.OrderItem{
		{Col: sqlir.ColRef{Spec: 1, Column: "dept"}},
	}
	list := sqlir.ClauseList{
		where(
			cmpOf(sqlir.OpEQ, col(1, "dept"), intc(7)),
			cmpOf(sqlir.OpEQ, col(1, "dept"), intc(9)),
		),
	}

	_, err := reduceOrderBy(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Len(t, stmt.OrderBy, 1, "two possible values still need the sort")
}

func TestOrderByReduce_GroupByPrefixDropsSort(t *testing.T) {
	stmt := oneTable("emp")
	stmt.GroupBy = []sqlir.ColRef{
		{Spec: 1, Column: "dept"},
		{Spec: 1, Column: "region"},
	}
	stmt.OrderBy = []sqlir.OrderItem{
		{Col: sqlir.ColRef{Spec: 1, Column: "dept"}},
	}

	_, err := reduceOrderBy(NewContext(), stmt, sqlir.ClauseList{})
	require.NoError(t, err)
	assert.Empty(t, stmt.OrderBy, "grouping already delivers this order")
}

func TestOrderByReduce_GroupByMismatchKeepsSort(t *testing.T) {
	stmt := oneTable("emp")
	stmt.GroupBy = []sqlir.ColRef{{Spec: 1, Column: "dept"}}

	// Descending never rides on the grouping sort.
	stmt.OrderBy = []sqlir.OrderItem{
		{Col: sqlir.ColRef{Spec: 1, Column: "dept"}, Desc: true},
	}
	_, err := reduceOrderBy(NewContext(), stmt, sqlir.ClauseList{})
	require.NoError(t, err)
	assert.Len(t, stmt.OrderBy, 1)

	// Neither does a column outside the grouping prefix.
	stmt.OrderBy = []sqlir.OrderItem{
		{Col: sqlir.ColRef{Spec: 1, Column: "name"}},
	}
	_, err = reduceOrderBy(NewContext(), stmt, sqlir.ClauseList{})
	require.NoError(t, err)
	assert.Len(t, stmt.OrderBy, 1)
}

func TestOrderByReduce_OnConditionEqualityDoesNotPin(t *testing.T) {
	stmt := twoTables("emp", "dept", sqlir.JoinLeftOuter)
	stmt.OrderBy = []sqlir.OrderItem{
		{Col: sqlir.ColRef{Spec: 2, Column: "region"}},
	}
	list := sqlir.ClauseList{
		at(2, cmpOf(sqlir.OpEQ, col(2, "region"), strc("west"))),
	}

	_, err := reduceOrderBy(NewContext(), stmt, list)
	require.NoError(t, err)
	assert.Len(t, stmt.OrderBy, 1, "padded rows are not pinned by the ON condition")
}
