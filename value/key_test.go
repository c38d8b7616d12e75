package value

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyEncodingIsOrderPreserving(t *testing.T) {
	pairs := [][2]Value{
		{NewInt64(-5), NewInt64(10)},
		{NewInt64(-100), NewInt64(-1)},
		{NewUint64(1), NewUint64(2)},
	}
	for _, p := range pairs {
		ka, err := NewKey(p[0])
		require.NoError(t, err)
		kb, err := NewKey(p[1])
		require.NoError(t, err)
		assert.True(t, ka.Less(kb), "%v should encode less than %v", p[0], p[1])
	}
}

func TestKeyEncodingRoundTripsOrderForDecimals(t *testing.T) {
	d1, _ := NewDecimalFromString("-3.5")
	d2, _ := NewDecimalFromString("-1.2")
	d3, _ := NewDecimalFromString("0")
	d4, _ := NewDecimalFromString("2.75")

	vals := []Value{NewDecimal(d4), NewDecimal(d1), NewDecimal(d3), NewDecimal(d2)}
	keys := make([]Key, len(vals))
	for i, v := range vals {
		k, err := NewKey(v)
		require.NoError(t, err)
		keys[i] = k
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	var order []string
	for _, k := range keys {
		d, _ := k.Value().DecimalVal()
		order = append(order, d.String())
	}
	assert.Equal(t, []string{"-3.5", "-1.2", "0", "2.75"}, order)
}

func TestKeyRejectsListAndMap(t *testing.T) {
	_, err := NewKey(NewList([]Value{NewInt64(1)}))
	assert.Error(t, err)

	_, err = NewKey(NewMap(map[string]Value{"a": NewInt64(1)}))
	assert.Error(t, err)
}

func TestKeyEqualityDelegatesToValueEquality(t *testing.T) {
	k1, err := NewKey(NewInt64(7))
	require.NoError(t, err)
	k2, err := NewKey(NewInt64(7))
	require.NoError(t, err)
	assert.True(t, k1.Equal(k2))
}

func TestCompositeKeyConcatenationPreservesColumnOrder(t *testing.T) {
	encodeComposite := func(vals ...Value) []byte {
		var out []byte
		for _, v := range vals {
			b, err := Encode(v)
			require.NoError(t, err)
			out = append(out, b...)
		}
		return out
	}

	a := encodeComposite(NewInt64(1), NewText("apple"))
	b := encodeComposite(NewInt64(1), NewText("banana"))
	assert.Less(t, string(a), string(b))

	c := encodeComposite(NewInt64(2), NewText("aardvark"))
	assert.Less(t, string(a), string(c))
}
