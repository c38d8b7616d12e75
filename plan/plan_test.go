package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
	"github.com/glue-sql/glue/value"
)

type fakeStore struct {
	schemas map[string]*schema.Schema
}

func (f *fakeStore) FetchAllSchemas(ctx context.Context) ([]*schema.Schema, error) {
	out := make([]*schema.Schema, 0, len(f.schemas))
	for _, s := range f.schemas {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) FetchSchema(ctx context.Context, table string) (*schema.Schema, error) {
	return f.schemas[lower(table)], nil
}

func (f *fakeStore) FetchData(ctx context.Context, table string, key value.Key) (*schema.DataRow, error) {
	return nil, nil
}

func (f *fakeStore) ScanData(ctx context.Context, table string) (store.RowIterator, error) {
	return store.NewSliceIterator(nil), nil
}

func usersSchema() *schema.Schema {
	return &schema.Schema{
		Table: "users",
		ColumnDefs: []schema.ColumnDef{
			{Name: "id", DataType: ast.TypeInt64, PrimaryKey: true},
			{Name: "name", DataType: ast.TypeText, Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKeyRef{ColumnIndexes: []int{0}},
	}
}

func selectStatement(sel *ast.Select) ast.Statement {
	return ast.QueryStatement{Query: &ast.Query{Body: ast.SetExpr{Select: sel}}}
}

func TestMissingTableFails(t *testing.T) {
	fs := &fakeStore{schemas: map[string]*schema.Schema{}}
	sel := &ast.Select{
		Projection: []ast.SelectItem{{Wildcard: true}},
		From:       &ast.TableFactor{Name: "ghost"},
	}
	_, err := Plan(context.Background(), selectStatement(sel), fs)
	require.Error(t, err)
}

func TestPrimaryKeyEqualityAttachesIndexItem(t *testing.T) {
	fs := &fakeStore{schemas: map[string]*schema.Schema{"users": usersSchema()}}
	sel := &ast.Select{
		Projection: []ast.SelectItem{{Wildcard: true}},
		From:       &ast.TableFactor{Name: "users"},
		Where: ast.BinaryOp{
			Left:  ast.Ident{Name: "id"},
			Op:    ast.OpEq,
			Right: ast.Literal{Kind: ast.LitNumber, Text: "1"},
		},
	}
	_, err := Plan(context.Background(), selectStatement(sel), fs)
	require.NoError(t, err)
	require.NotNil(t, sel.From.Index)
	require.NotNil(t, sel.From.Index.PrimaryKey)
}

func TestAmbiguousColumnAcrossJoinFails(t *testing.T) {
	fs := &fakeStore{schemas: map[string]*schema.Schema{
		"users": usersSchema(),
		"orders": {
			Table: "orders",
			ColumnDefs: []schema.ColumnDef{
				{Name: "id", DataType: ast.TypeInt64},
				{Name: "user_id", DataType: ast.TypeInt64},
			},
		},
	}}
	sel := &ast.Select{
		Projection: []ast.SelectItem{{Expr: ast.Ident{Name: "id"}}},
		From:       &ast.TableFactor{Name: "users"},
		Joins: []ast.Join{
			{Kind: ast.InnerJoin, Table: ast.TableFactor{Name: "orders"}, On: ast.BinaryOp{
				Left: ast.CompoundIdent{Table: "users", Name: "id"}, Op: ast.OpEq,
				Right: ast.CompoundIdent{Table: "orders", Name: "user_id"},
			}},
		},
	}
	_, err := Plan(context.Background(), selectStatement(sel), fs)
	require.Error(t, err)
}

func TestHashJoinAttachedForEqualityOn(t *testing.T) {
	fs := &fakeStore{schemas: map[string]*schema.Schema{
		"users": usersSchema(),
		"orders": {
			Table: "orders",
			ColumnDefs: []schema.ColumnDef{
				{Name: "id", DataType: ast.TypeInt64},
				{Name: "user_id", DataType: ast.TypeInt64},
			},
		},
	}}
	sel := &ast.Select{
		Projection: []ast.SelectItem{{Expr: ast.CompoundIdent{Table: "users", Name: "id"}}},
		From:       &ast.TableFactor{Name: "users"},
		Joins: []ast.Join{
			{Kind: ast.InnerJoin, Table: ast.TableFactor{Name: "orders"}, On: ast.BinaryOp{
				Left: ast.CompoundIdent{Table: "users", Name: "id"}, Op: ast.OpEq,
				Right: ast.CompoundIdent{Table: "orders", Name: "user_id"},
			}},
		},
	}
	_, err := Plan(context.Background(), selectStatement(sel), fs)
	require.NoError(t, err)
	assert.True(t, sel.Joins[0].HashJoin)
}
