package glue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/executor"
	"github.com/glue-sql/glue/storage/memstore"
	"github.com/glue-sql/glue/value"
)

func TestExecuteCreateInsertSelect(t *testing.T) {
	g := NewMemory()
	ctx := context.Background()

	_, err := g.Execute(ctx, `CREATE TABLE users (id INT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	_, err = g.Execute(ctx, `INSERT INTO users (id, name) VALUES (1, 'alice')`)
	require.NoError(t, err)

	payloads, err := g.Execute(ctx, `SELECT id, name FROM users`)
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	sel, ok := payloads[0].(executor.SelectPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, sel.Labels)
	require.Len(t, sel.Rows, 1)
	assert.Equal(t, "alice", sel.Rows[0][1].String())
}

func TestExecuteWithParamsSubstitutesPositionalPlaceholders(t *testing.T) {
	g := NewMemory()
	ctx := context.Background()

	_, err := g.Execute(ctx, `CREATE TABLE widgets (id INT PRIMARY KEY, label TEXT)`)
	require.NoError(t, err)

	_, err = g.ExecuteWithParams(ctx, `INSERT INTO widgets (id, label) VALUES ($1, $2)`,
		[]value.Value{value.NewInt64(7), value.NewText("it's a widget")})
	require.NoError(t, err)

	payloads, err := g.Execute(ctx, `SELECT label FROM widgets WHERE id = 7`)
	require.NoError(t, err)
	sel := payloads[0].(executor.SelectPayload)
	require.Len(t, sel.Rows, 1)
	assert.Equal(t, "it's a widget", sel.Rows[0][0].String())
}

func TestPlanValidatesWithoutExecuting(t *testing.T) {
	g := NewMemory()
	ctx := context.Background()

	_, err := g.Execute(ctx, `CREATE TABLE items (id INT PRIMARY KEY)`)
	require.NoError(t, err)

	stmts, err := g.Plan(ctx, `SELECT id FROM items`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	_, err = g.Plan(ctx, `SELECT id FROM nonexistent`)
	assert.Error(t, err)
}

func TestExecuteStopsOnFirstError(t *testing.T) {
	g := NewMemory()
	ctx := context.Background()

	payloads, err := g.Execute(ctx, `CREATE TABLE a (id INT); SELECT id FROM missing_table`)
	require.Error(t, err)
	assert.Len(t, payloads, 1, "the successful CREATE TABLE should still be reported")
}

func TestNullOrderingConfigFlipsToNullsFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NullOrdering = "nulls_first"
	ms := memstore.New()
	g := New(ms, ms, cfg)
	assert.True(t, cfg.nullsFirst())
	assert.True(t, g.Config.nullsFirst())
}
