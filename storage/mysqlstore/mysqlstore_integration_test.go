package mysqlstore

import (
	"context"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/value"
)

func setupMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("glue_test"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")
	return dsn
}

func TestStoreSchemaAndDataRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	dsn := setupMySQL(t)

	s, err := Open(ctx, Options{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	sch := &schema.Schema{
		Table: "accounts",
		ColumnDefs: []schema.ColumnDef{
			{Name: "id", DataType: ast.TypeInt64, PrimaryKey: true},
			{Name: "name", DataType: ast.TypeText, Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKeyRef{ColumnIndexes: []int{0}},
	}
	require.NoError(t, s.InsertSchema(ctx, sch))

	got, err := s.FetchSchema(ctx, "accounts")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "accounts", got.Table)
	assert.Len(t, got.ColumnDefs, 2)
	assert.Equal(t, "id", got.ColumnDefs[0].Name)

	row := schema.NewVecRow([]value.Value{value.NewInt64(1), value.NewText("alice")})
	require.NoError(t, s.AppendData(ctx, "accounts", []schema.DataRow{row}))

	iter, err := s.ScanData(ctx, "accounts")
	require.NoError(t, err)
	defer iter.Close()

	r, ok, err := iter.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	name, ok := r.Data.Get(got, "name")
	require.True(t, ok)
	assert.Equal(t, "alice", name.String())

	require.NoError(t, s.DeleteSchema(ctx, "accounts"))
	afterDelete, err := s.FetchSchema(ctx, "accounts")
	require.NoError(t, err)
	assert.Nil(t, afterDelete)
}

func TestStoreTransactionRollback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	dsn := setupMySQL(t)

	s, err := Open(ctx, Options{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	sch := &schema.Schema{Table: "widgets"}
	require.NoError(t, s.InsertSchema(ctx, sch))

	_, err = s.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, s.AppendData(ctx, "widgets", []schema.DataRow{schema.NewMapRow(map[string]value.Value{"n": value.NewInt64(1)})}))
	require.NoError(t, s.Rollback(ctx))

	iter, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	defer iter.Close()
	_, ok, err := iter.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "rolled-back insert must not be visible")
}
