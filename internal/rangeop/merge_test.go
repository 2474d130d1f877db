package rangeop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/sqlir"
)

func iv(kind sqlir.BoundKind, lower, upper int64) sqlir.SubRange {
	return SubRangeForBetween(kind, sqlir.Int(lower), sqlir.Int(upper))
}

func ranges(subs ...sqlir.SubRange) sqlir.Range {
	return sqlir.Range{Subs: subs}
}

func TestMerge_Overlapping(t *testing.T) {
	got, err := Merge(ranges(iv(sqlir.KindGeLe, 1, 5), iv(sqlir.KindGeLe, 3, 9)), Discrete)
	require.NoError(t, err)
	require.Len(t, got.Subs, 1)
	assert.Equal(t, "{1 GE_LE 9}", got.String())
}

func TestMerge_TouchingOpenClosed(t *testing.T) {
	// [1,5) and [5,9] share the boundary point with no gap.
	a := SubRangeForBetween(sqlir.KindGeLt, sqlir.Float(1), sqlir.Float(5))
	b := SubRangeForBetween(sqlir.KindGeLe, sqlir.Float(5), sqlir.Float(9))
	got, err := Merge(ranges(a, b), Continuous)
	require.NoError(t, err)
	require.Len(t, got.Subs, 1)
	assert.Equal(t, "{1 GE_LE 9}", got.String())
}

func TestMerge_IntegerAdjacency(t *testing.T) {
	// [1,5] and [6,9] merge: no integer fits between them.
	got, err := Merge(ranges(iv(sqlir.KindGeLe, 1, 5), iv(sqlir.KindGeLe, 6, 9)), Discrete)
	require.NoError(t, err)
	require.Len(t, got.Subs, 1)
	assert.Equal(t, "{1 GE_LE 9}", got.String())
}

func TestMerge_ContinuousDomainKeepsIntegerGap(t *testing.T) {
	// The same pair on a continuous domain must stay split: 5.5 lies
	// between the sub-ranges and a coalesced [1,9] would admit it.
	got, err := Merge(ranges(iv(sqlir.KindGeLe, 1, 5), iv(sqlir.KindGeLe, 6, 9)), Continuous)
	require.NoError(t, err)
	require.Len(t, got.Subs, 2)
	assert.Equal(t, "{1 GE_LE 5, 6 GE_LE 9}", got.String())

	ok, err := Accepts(got, sqlir.Float(5.5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMerge_DisjointStayDisjointAndSorted(t *testing.T) {
	got, err := Merge(ranges(iv(sqlir.KindGeLe, 7, 9), iv(sqlir.KindGeLe, 1, 2)), Discrete)
	require.NoError(t, err)
	require.Len(t, got.Subs, 2)
	assert.Equal(t, "{1 GE_LE 2, 7 GE_LE 9}", got.String())
}

func TestMerge_NullBoundSubRangesVanish(t *testing.T) {
	falseSub := sqlir.Point(sqlir.Null{})
	got, err := Merge(ranges(falseSub, iv(sqlir.KindGeLe, 1, 2)), Discrete)
	require.NoError(t, err)
	require.Len(t, got.Subs, 1)

	got, err = Merge(ranges(falseSub), Discrete)
	require.NoError(t, err)
	assert.True(t, got.Empty)
}

func TestMerge_EmptyIntervalMarksRangeEmpty(t *testing.T) {
	// (5,6) holds no integer.
	got, err := Merge(ranges(iv(sqlir.KindGtLt, 5, 6)), Discrete)
	require.NoError(t, err)
	assert.True(t, got.Empty)

	// It holds plenty of reals.
	got, err = Merge(ranges(iv(sqlir.KindGtLt, 5, 6)), Continuous)
	require.NoError(t, err)
	assert.False(t, got.Empty)
}

func TestMerge_UnboundedSides(t *testing.T) {
	lt := SubRangeForBetween(sqlir.KindInfLt, nil, sqlir.Int(10))
	ge := SubRangeForBetween(sqlir.KindGeInf, sqlir.Int(5), nil)
	got, err := Merge(ranges(lt, ge), Discrete)
	require.NoError(t, err)
	require.Len(t, got.Subs, 1)
	assert.Equal(t, sqlir.KindFull, got.Subs[0].Kind)
}

// Merging must never change which values the range admits, and the
// result must be pairwise disjoint and non-adjacent.
func TestMerge_PreservesMembership(t *testing.T) {
	input := ranges(
		iv(sqlir.KindGeLt, 1, 4),
		iv(sqlir.KindGtLe, 3, 8),
		sqlir.Point(sqlir.Int(12)),
		iv(sqlir.KindGeLe, 20, 25),
		iv(sqlir.KindGeLe, 24, 30),
	)
	for _, dom := range []Domain{Discrete, Continuous} {
		merged, err := Merge(input, dom)
		require.NoError(t, err)

		for v := int64(-2); v <= 35; v++ {
			want, err := Accepts(input, sqlir.Int(v))
			require.NoError(t, err)
			got, err := Accepts(merged, sqlir.Int(v))
			require.NoError(t, err)
			assert.Equalf(t, want, got, "membership diverged at %d", v)
		}

		for i := 0; i+1 < len(merged.Subs); i++ {
			ord, err := CompareBounds(UpperEndpoint(merged.Subs[i]), LowerEndpoint(merged.Subs[i+1]), dom)
			require.NoError(t, err)
			assert.Equal(t, Less, ord, "sub-ranges %d and %d overlap or touch", i, i+1)
		}
	}
}
