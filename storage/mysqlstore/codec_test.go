package mysqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/translate"
	"github.com/glue-sql/glue/value"
)

func TestValueRoundTripsThroughJSONCodec(t *testing.T) {
	f64, err := value.NewFloat64(3.5)
	require.NoError(t, err)

	cases := []value.Value{
		value.NewNull(),
		value.NewBool(true),
		value.NewInt64(-42),
		value.NewUint64(42),
		f64,
		value.NewText("hello ' world"),
		value.NewBytea([]byte{0xDE, 0xAD, 0xBE, 0xEF}),
	}
	for _, v := range cases {
		encoded, err := marshalValue(v)
		require.NoError(t, err)
		decoded, err := unmarshalValue(encoded)
		require.NoError(t, err)
		eq, isNull := value.Equal(v, decoded)
		if v.IsNull() {
			assert.True(t, isNull)
			continue
		}
		assert.True(t, eq, "value %v did not round-trip, got %v", v, decoded)
	}

	list := value.NewList([]value.Value{value.NewInt64(1), value.NewInt64(2)})
	encoded, err := marshalValue(list)
	require.NoError(t, err)
	decoded, err := unmarshalValue(encoded)
	require.NoError(t, err)
	items, ok := decoded.List()
	require.True(t, ok)
	require.Len(t, items, 2)
	n, _ := items[1].Int64()
	assert.Equal(t, int64(2), n)

	m := value.NewMap(map[string]value.Value{"a": value.NewText("b")})
	encoded, err = marshalValue(m)
	require.NoError(t, err)
	decoded, err = unmarshalValue(encoded)
	require.NoError(t, err)
	fields, ok := decoded.Map()
	require.True(t, ok)
	assert.Equal(t, "b", fields["a"].String())
}

func TestRowRoundTripsVecAndMapShapes(t *testing.T) {
	vec := schema.NewVecRow([]value.Value{value.NewInt64(1), value.NewText("x")})
	encoded, err := marshalRow(vec)
	require.NoError(t, err)
	decoded, err := unmarshalRow(encoded)
	require.NoError(t, err)
	assert.False(t, decoded.IsMap())
	assert.Equal(t, "x", decoded.Vec[1].String())

	m := schema.NewMapRow(map[string]value.Value{"k": value.NewInt64(9)})
	encoded, err = marshalRow(m)
	require.NoError(t, err)
	decoded, err = unmarshalRow(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.IsMap())
	assert.Equal(t, int64(9), func() int64 { n, _ := decoded.Map["k"].Int64(); return n }())
}

func TestSchemaRoundTripsColumnsAndPrimaryKey(t *testing.T) {
	sch := &schema.Schema{
		Table: "t",
		ColumnDefs: []schema.ColumnDef{
			{Name: "id", DataType: ast.TypeInt64, PrimaryKey: true},
			{Name: "label", DataType: ast.TypeText, Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKeyRef{ColumnIndexes: []int{0}},
	}
	cols, pk, fks, checks, err := marshalSchema(sch)
	require.NoError(t, err)

	got, err := unmarshalSchema("t", cols, pk, fks, checks, "", translate.New())
	require.NoError(t, err)
	assert.Equal(t, "t", got.Table)
	require.Len(t, got.ColumnDefs, 2)
	assert.Equal(t, ast.TypeText, got.ColumnDefs[1].DataType)
	require.NotNil(t, got.PrimaryKey)
	assert.Equal(t, []int{0}, got.PrimaryKey.ColumnIndexes)
}
