package value

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualThreeValuedLogic(t *testing.T) {
	t.Run("NULL = NULL yields NULL, not true", func(t *testing.T) {
		_, isNull := Equal(NewNull(), NewNull())
		assert.True(t, isNull)
	})

	t.Run("NULL compared to any value yields NULL", func(t *testing.T) {
		_, isNull := Equal(NewNull(), NewInt64(1))
		assert.True(t, isNull)
	})

	t.Run("equal non-null values", func(t *testing.T) {
		eq, isNull := Equal(NewInt64(5), NewInt64(5))
		require.False(t, isNull)
		assert.True(t, eq)
	})
}

func TestFloatNaNRejected(t *testing.T) {
	_, err := NewFloat64(nan())
	assert.Error(t, err)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestDecimalEqualityIsExact(t *testing.T) {
	a, err := NewDecimalFromString("1.50")
	require.NoError(t, err)
	b, err := NewDecimalFromString("1.5")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cmp(b), "1.50 and 1.5 must compare equal exactly")
}

func TestNumericCoercionAcrossSubtypes(t *testing.T) {
	small := NewInt8(5)
	big := NewInt64(1000)
	c, err := Compare(small, big)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestHashableRejectsListAndMap(t *testing.T) {
	assert.False(t, NewList([]Value{NewInt64(1)}).Hashable())
	assert.False(t, NewMap(map[string]Value{"a": NewInt64(1)}).Hashable())
	assert.True(t, NewInt64(1).Hashable())
}

func TestStrictTotalOrder(t *testing.T) {
	vals := []Value{NewInt64(3), NewInt64(1), NewInt64(2)}
	sort.Slice(vals, func(i, j int) bool {
		c, _ := Compare(vals[i], vals[j])
		return c < 0
	})
	got := make([]int64, len(vals))
	for i, v := range vals {
		got[i], _ = v.Int64()
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
}

// TestStrictTotalOrderBeyondFloat64Mantissa guards spec §8.1 invariant 1 for
// Int64/Int128 values past 2^53, where float64 loses precision: two
// distinct integers in that range must never compare equal.
func TestStrictTotalOrderBeyondFloat64Mantissa(t *testing.T) {
	a := NewInt64(9007199254740993) // 2^53 + 1
	b := NewInt64(9007199254740992) // 2^53
	c, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, c, "9007199254740993 must compare greater than 9007199254740992")

	eq, isNull := Equal(a, b)
	require.False(t, isNull)
	assert.False(t, eq, "distinct large Int64 values must not compare equal")

	hi := NewInt128(Int128Val{Hi: 0, Lo: 9007199254740993})
	lo := NewInt128(Int128Val{Hi: 0, Lo: 9007199254740992})
	c, err = Compare(hi, lo)
	require.NoError(t, err)
	assert.Equal(t, 1, c, "Int128 values beyond 2^53 must compare exactly")

	u := NewUint64(18446744073709551615) // max uint64, far beyond 2^53
	u2 := NewUint64(18446744073709551614)
	c, err = Compare(u, u2)
	require.NoError(t, err)
	assert.Equal(t, 1, c, "large Uint64 values must compare exactly, not collapse via float64")
}
