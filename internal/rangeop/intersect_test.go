package rangeop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/sqlir"
)

func TestIntersect_Overlap(t *testing.T) {
	got, err := Intersect(
		ranges(iv(sqlir.KindGeLe, 1, 10)),
		ranges(iv(sqlir.KindGeLe, 5, 20)),
		Discrete,
	)
	require.NoError(t, err)
	require.Len(t, got.Subs, 1)
	assert.Equal(t, "{5 GE_LE 10}", got.String())
}

func TestIntersect_SweepAcrossMultipleSubRanges(t *testing.T) {
	got, err := Intersect(
		ranges(iv(sqlir.KindGeLe, 1, 3), iv(sqlir.KindGeLe, 5, 9)),
		ranges(iv(sqlir.KindGeLe, 2, 6)),
		Discrete,
	)
	require.NoError(t, err)
	assert.Equal(t, "{2 GE_LE 3, 5 GE_LE 6}", got.String())
}

func TestIntersect_DisjointIsEmpty(t *testing.T) {
	got, err := Intersect(
		ranges(iv(sqlir.KindGeLe, 1, 3)),
		ranges(iv(sqlir.KindGeLe, 8, 9)),
		Discrete,
	)
	require.NoError(t, err)
	assert.True(t, got.Empty)
}

func TestIntersect_EmptyInputStaysEmpty(t *testing.T) {
	got, err := Intersect(sqlir.Range{Empty: true}, ranges(iv(sqlir.KindGeLe, 1, 3)), Discrete)
	require.NoError(t, err)
	assert.True(t, got.Empty)
}

func TestIntersect_OpennessTightens(t *testing.T) {
	// [5,10] with (5,10) keeps the open endpoints.
	got, err := Intersect(
		ranges(SubRangeForBetween(sqlir.KindGeLe, sqlir.Float(5), sqlir.Float(10))),
		ranges(SubRangeForBetween(sqlir.KindGtLt, sqlir.Float(5), sqlir.Float(10))),
		Continuous,
	)
	require.NoError(t, err)
	require.Len(t, got.Subs, 1)
	assert.Equal(t, sqlir.KindGtLt, got.Subs[0].Kind)
}

// A value is in the intersection exactly when both inputs admit it, and
// NULL is admitted by nothing.
func TestIntersect_MembershipProperty(t *testing.T) {
	a := ranges(iv(sqlir.KindGeLt, 0, 6), iv(sqlir.KindGeLe, 10, 15), sqlir.Point(sqlir.Int(20)))
	b := ranges(iv(sqlir.KindGtLe, 3, 12), iv(sqlir.KindGeLe, 19, 30))

	got, err := Intersect(a, b, Discrete)
	require.NoError(t, err)

	for v := int64(-1); v <= 32; v++ {
		inA, err := Accepts(a, sqlir.Int(v))
		require.NoError(t, err)
		inB, err := Accepts(b, sqlir.Int(v))
		require.NoError(t, err)
		inBoth, err := Accepts(got, sqlir.Int(v))
		require.NoError(t, err)
		assert.Equalf(t, inA && inB, inBoth, "membership diverged at %d", v)
	}

	inBoth, err := Accepts(got, sqlir.Null{})
	require.NoError(t, err)
	assert.False(t, inBoth, "NULL must never be admitted")
}
