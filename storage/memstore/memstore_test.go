package memstore

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

func widgetsSchema() *schema.Schema {
	return &schema.Schema{
		Table: "widgets",
		ColumnDefs: []schema.ColumnDef{
			{Name: "id", DataType: ast.TypeInt64, PrimaryKey: true},
			{Name: "label", DataType: ast.TypeText, Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKeyRef{ColumnIndexes: []int{0}},
	}
}

func drain(t *testing.T, ctx context.Context, it store.RowIterator) []store.Row {
	t.Helper()
	defer it.Close()
	var out []store.Row
	for {
		r, ok, err := it.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out
}

func TestAppendDataAssignsOrderedAutoKeys(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("a")}),
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("b")}),
	}))

	it, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	rows := drain(t, ctx, it)
	require.Len(t, rows, 2)
	labelA, _ := rows[0].Data.Vec[1].Text()
	labelB, _ := rows[1].Data.Vec[1].Text()
	assert.Equal(t, "a", labelA)
	assert.Equal(t, "b", labelB)
}

func TestScanDataReturnsRowsInKeyOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	ids := []int64{30, 10, 20}
	var rows []store.Row
	for _, id := range ids {
		k, err := value.NewKey(value.NewInt64(id))
		require.NoError(t, err)
		rows = append(rows, store.Row{Key: k, Data: schema.NewVecRow([]value.Value{value.NewInt64(id), value.NewText("x")})})
	}
	require.NoError(t, s.InsertData(ctx, "widgets", rows))

	it, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	out := drain(t, ctx, it)
	require.Len(t, out, 3)
	var seen []int64
	for _, r := range out {
		id, _ := r.Data.Vec[0].Int64()
		seen = append(seen, id)
	}
	assert.Equal(t, []int64{10, 20, 30}, seen)
}

func TestFetchDataReturnsNilForMissingKeyButErrorsForMissingTable(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	k, err := value.NewKey(value.NewInt64(99))
	require.NoError(t, err)
	row, err := s.FetchData(ctx, "widgets", k)
	require.NoError(t, err)
	assert.Nil(t, row)

	_, err = s.FetchData(ctx, "ghost", k)
	require.Error(t, err)
}

func TestDeleteDataRemovesFromScanOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))
	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("a")}),
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("b")}),
	}))

	it, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	rows := drain(t, ctx, it)
	require.Len(t, rows, 2)

	require.NoError(t, s.DeleteData(ctx, "widgets", []value.Key{rows[0].Key}))

	it, err = s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	remaining := drain(t, ctx, it)
	require.Len(t, remaining, 1)
	assert.Equal(t, rows[1].Key.Bytes, remaining[0].Key.Bytes)
}

func TestAddAndDropColumnRewritesExistingRows(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))
	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("a")}),
	}))

	require.NoError(t, s.AddColumn(ctx, "widgets", schema.ColumnDef{Name: "qty", DataType: ast.TypeInt64, Nullable: true}))
	it, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	rows := drain(t, ctx, it)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Data.Vec, 3)
	assert.True(t, rows[0].Data.Vec[2].IsNull())

	require.NoError(t, s.DropColumn(ctx, "widgets", "label", false))
	it, err = s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	rows = drain(t, ctx, it)
	require.Len(t, rows[0].Data.Vec, 2)

	err = s.DropColumn(ctx, "widgets", "missing", false)
	require.Error(t, err)
	require.NoError(t, s.DropColumn(ctx, "widgets", "missing", true))
}

// TestBeginCommitRollbackStack exercises the clone-on-Begin,
// restore-on-Rollback snapshot stack (spec §9's Open Question on memory
// transaction isolation): nested Begin/Commit/Rollback must each operate
// on their own snapshot without leaking writes across levels that never
// committed.
func TestBeginCommitRollbackStack(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))
	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("base")}),
	}))

	wasAutocommit, err := s.Begin(ctx, true)
	require.NoError(t, err)
	assert.False(t, wasAutocommit)

	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("level1")}),
	}))

	wasAutocommit, err = s.Begin(ctx, false)
	require.NoError(t, err)
	assert.True(t, wasAutocommit)

	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("level2")}),
	}))
	it, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	require.Len(t, drain(t, ctx, it), 3)

	// Roll back the innermost level: level2's insert disappears, level1's
	// survives because the inner Begin's snapshot was taken after it.
	require.NoError(t, s.Rollback(ctx))
	it, err = s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	rows := drain(t, ctx, it)
	require.Len(t, rows, 2)

	require.NoError(t, s.Commit(ctx))
	it, err = s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	assert.Len(t, drain(t, ctx, it), 2)

	err = s.Commit(ctx)
	require.Error(t, err)
	err = s.Rollback(ctx)
	require.Error(t, err)
}

func TestRollbackDiscardsSchemaChangesToo(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	_, err := s.Begin(ctx, true)
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(ctx, &schema.Schema{Table: "scratch", ColumnDefs: []schema.ColumnDef{
		{Name: "id", DataType: ast.TypeInt64, PrimaryKey: true},
	}}))
	sch, err := s.FetchSchema(ctx, "scratch")
	require.NoError(t, err)
	require.NotNil(t, sch)

	require.NoError(t, s.Rollback(ctx))
	sch, err = s.FetchSchema(ctx, "scratch")
	require.NoError(t, err)
	assert.Nil(t, sch)
}

func TestCreateAndDropIndex(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	idx := schema.Index{Name: "by_label", Expr: ast.Ident{Name: "label"}}
	require.NoError(t, s.CreateIndex(ctx, "widgets", idx))

	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("b")}),
		schema.NewVecRow([]value.Value{value.NewInt64(0), value.NewText("a")}),
	}))

	it, err := s.ScanIndexedData(ctx, "widgets", "by_label", true, "", value.Value{})
	require.NoError(t, err)
	rows := drain(t, ctx, it)
	require.Len(t, rows, 2)
	first, _ := rows[0].Data.Vec[1].Text()
	second, _ := rows[1].Data.Vec[1].Text()
	assert.Equal(t, "a", first)
	assert.Equal(t, "b", second)

	require.NoError(t, s.DropIndex(ctx, "widgets", "by_label"))
	err = s.DropIndex(ctx, "widgets", "by_label")
	require.Error(t, err)
}

func TestScanIndexedDataAppliesComparisonBound(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))
	require.NoError(t, s.CreateIndex(ctx, "widgets", schema.Index{Name: "by_id", Expr: ast.Ident{Name: "id"}}))
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{
			schema.NewVecRow([]value.Value{value.NewInt64(id), value.NewText("x")}),
		}))
	}

	it, err := s.ScanIndexedData(ctx, "widgets", "by_id", true, ">", value.NewInt64(1))
	require.NoError(t, err)
	rows := drain(t, ctx, it)
	require.Len(t, rows, 2)
}

func TestRenameSchemaAndColumn(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	require.NoError(t, s.RenameColumn(ctx, "widgets", "label", "title"))
	sch, err := s.FetchSchema(ctx, "widgets")
	require.NoError(t, err)
	assert.Equal(t, "title", sch.ColumnDefs[1].Name)

	require.NoError(t, s.RenameSchema(ctx, "widgets", "gadgets"))
	sch, err = s.FetchSchema(ctx, "widgets")
	require.NoError(t, err)
	assert.Nil(t, sch)
	sch, err = s.FetchSchema(ctx, "gadgets")
	require.NoError(t, err)
	require.NotNil(t, sch)
}

func TestCustomFunctionRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	def := store.FunctionDef{Name: "double", Params: []string{"x"}, Body: "x * 2"}
	require.NoError(t, s.InsertFunction(ctx, def))

	got, err := s.FetchFunction(ctx, "double")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, def, *got)

	require.NoError(t, s.DeleteFunction(ctx, "double"))
	got, err = s.FetchFunction(ctx, "double")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchemaNamesSortedAlphabetically(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertSchema(ctx, &schema.Schema{Table: "zebra"}))
	require.NoError(t, s.InsertSchema(ctx, &schema.Schema{Table: "apple"}))

	names, err := s.SchemaNames(ctx)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "apple", names[0].Table)
	assert.Equal(t, "zebra", names[1].Table)
}
