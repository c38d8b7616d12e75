package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/value"
)

func users() *Schema {
	return &Schema{
		Table: "users",
		ColumnDefs: []ColumnDef{
			{Name: "id", DataType: ast.TypeInt64, PrimaryKey: true},
			{Name: "name", DataType: ast.TypeText, Nullable: true},
		},
	}
}

func TestSchemaColumnLookupIsCaseInsensitive(t *testing.T) {
	s := users()
	assert.Equal(t, 1, s.ColumnIndex("NAME"))
	assert.Equal(t, -1, s.ColumnIndex("missing"))
	require.NotNil(t, s.Column("id"))
}

func TestSchemalessHasNoColumnDefs(t *testing.T) {
	s := &Schema{Table: "docs"}
	assert.True(t, s.Schemaless())
}

func TestValidateRejectsDuplicatePrimaryKeyDeclaration(t *testing.T) {
	s := users()
	s.PrimaryKey = &PrimaryKeyRef{ColumnIndexes: []int{0}}
	err := s.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsNullablePrimaryKeyColumn(t *testing.T) {
	s := &Schema{
		Table: "t",
		ColumnDefs: []ColumnDef{
			{Name: "id", DataType: ast.TypeInt64, Nullable: true},
		},
		PrimaryKey: &PrimaryKeyRef{ColumnIndexes: []int{0}},
	}
	err := s.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsUniqueOnListColumn(t *testing.T) {
	s := &Schema{
		Table: "t",
		ColumnDefs: []ColumnDef{
			{Name: "tags", DataType: ast.TypeList, Unique: true},
		},
	}
	err := s.Validate()
	assert.Error(t, err)
}

func TestValidatePassesForWellFormedSchema(t *testing.T) {
	assert.NoError(t, users().Validate())
}

func TestDataRowVecGet(t *testing.T) {
	s := users()
	row := NewVecRow([]value.Value{value.NewInt64(1), value.NewText("ann")})
	v, ok := row.Get(s, "name")
	require.True(t, ok)
	text, _ := v.Text()
	assert.Equal(t, "ann", text)
}

func TestDataRowMapGet(t *testing.T) {
	s := &Schema{Table: "docs"}
	row := NewMapRow(map[string]value.Value{"k": value.NewText("v")})
	v, ok := row.Get(s, "k")
	require.True(t, ok)
	text, _ := v.Text()
	assert.Equal(t, "v", text)
}
