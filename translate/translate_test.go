package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/ast"
)

func TestTranslateCreateTable(t *testing.T) {
	tr := New()
	stmts, err := tr.Parse(`CREATE TABLE users (id INT PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	ct, ok := stmts[0].(ast.CreateTableStatement)
	require.True(t, ok)
	assert.Equal(t, "users", ct.Table)
	require.Len(t, ct.Columns, 2)
	assert.Equal(t, []string{"id"}, ct.PrimaryKey)
	assert.False(t, ct.Columns[1].Nullable)
}

func TestTranslateSelectWithJoinAndWhere(t *testing.T) {
	tr := New()
	stmts, err := tr.Parse(`SELECT a.id, b.name FROM a JOIN b ON a.id = b.a_id WHERE a.id > 1 ORDER BY a.id DESC LIMIT 10`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	qs, ok := stmts[0].(ast.QueryStatement)
	require.True(t, ok)
	require.NotNil(t, qs.Query.Body.Select)
	require.Len(t, qs.Query.Body.Select.Joins, 1)
	assert.Equal(t, ast.InnerJoin, qs.Query.Body.Select.Joins[0].Kind)
	require.Len(t, qs.Query.OrderBy, 1)
	assert.False(t, qs.Query.OrderBy[0].Asc)
	assert.NotNil(t, qs.Query.Limit)
}

func TestTranslateInsertValues(t *testing.T) {
	tr := New()
	stmts, err := tr.Parse(`INSERT INTO users (id, name) VALUES (1, 'ann')`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	ins, ok := stmts[0].(ast.InsertStatement)
	require.True(t, ok)
	assert.Equal(t, "users", ins.Table)
	assert.Equal(t, []string{"id", "name"}, ins.Columns)
	require.Len(t, ins.Source.Values, 1)
	require.Len(t, ins.Source.Values[0], 2)
}

func TestTranslateUnsupportedFunctionArity(t *testing.T) {
	tr := New()
	_, err := tr.Parse(`SELECT UPPER(name, name) FROM users`)
	require.Error(t, err)
	var arityErr *FunctionArgsLengthNotMatching
	assert.ErrorAs(t, err, &arityErr)
}

func TestTranslateDropAndTransactionStatements(t *testing.T) {
	tr := New()
	stmts, err := tr.Parse(`DROP TABLE IF EXISTS users; BEGIN; COMMIT;`)
	require.NoError(t, err)
	require.Len(t, stmts, 3)

	drop, ok := stmts[0].(ast.DropTableStatement)
	require.True(t, ok)
	assert.True(t, drop.IfExists)
	assert.Equal(t, []string{"users"}, drop.Tables)

	_, ok = stmts[1].(ast.StartTransactionStatement)
	assert.True(t, ok)
	_, ok = stmts[2].(ast.CommitStatement)
	assert.True(t, ok)
}
