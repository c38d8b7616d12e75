package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/storage/memstore"
	"github.com/glue-sql/glue/translate"
	"github.com/glue-sql/glue/value"
)

func newTestExecutor() (*Executor, context.Context) {
	ms := memstore.New()
	return New(ms, ms), context.Background()
}

func mustExec(t *testing.T, e *Executor, ctx context.Context, tr *translate.Translator, sql string) []Payload {
	t.Helper()
	stmts, err := tr.Parse(sql)
	require.NoError(t, err)
	out := make([]Payload, len(stmts))
	for i, st := range stmts {
		p, err := e.Execute(ctx, st)
		require.NoErrorf(t, err, "executing %q", sql)
		out[i] = p
	}
	return out
}

func wantFloat(t *testing.T, v value.Value) float64 {
	t.Helper()
	f, ok := v.AsFloat64()
	require.Truef(t, ok, "value %v has no numeric representation", v)
	return f
}

// TestGroupByCollatesEqualTextLabels groups TEXT labels through the
// value.Key collation: the two rows labelled 'true' fold into one GROUP BY
// bucket and the 'false' row forms its own.
func TestGroupByCollatesEqualTextLabels(t *testing.T) {
	e, ctx := newTestExecutor()
	tr := translate.New()

	mustExec(t, e, ctx, tr, `CREATE TABLE t (id INT PRIMARY KEY, label TEXT)`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, label) VALUES (1, 'true')`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, label) VALUES (2, 'true')`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, label) VALUES (3, 'false')`)

	payloads := mustExec(t, e, ctx, tr, `SELECT label, COUNT(*) FROM t GROUP BY label`)
	sel := payloads[0].(SelectPayload)
	require.Len(t, sel.Rows, 2)

	counts := map[string]float64{}
	for _, row := range sel.Rows {
		counts[row[0].String()] = wantFloat(t, row[1])
	}
	assert.Equal(t, float64(2), counts["true"])
	assert.Equal(t, float64(1), counts["false"])
}

// listColumnTable registers a table with a LIST-typed column directly
// against the store, bypassing SQL column-type syntax (LIST/MAP are
// schema.ColumnDef.DataType values this engine supports internally; they
// are not MySQL-grammar column-type keywords the translator's parser
// accepts, so the schema is built the way plan_test.go builds its fixture
// schemas instead of going through CREATE TABLE text).
func listColumnTable(t *testing.T, ctx context.Context, ms *memstore.Store, table string) {
	t.Helper()
	require.NoError(t, ms.InsertSchema(ctx, &schema.Schema{
		Table: table,
		ColumnDefs: []schema.ColumnDef{
			{Name: "id", DataType: ast.TypeInt64, PrimaryKey: true},
			{Name: "tags", DataType: ast.TypeList, Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKeyRef{ColumnIndexes: []int{0}},
	}))
}

func selectStatement(sel *ast.Select) ast.Statement {
	return ast.QueryStatement{Query: &ast.Query{Body: ast.SetExpr{Select: sel}}}
}

// TestGroupByRejectsListColumn asserts spec §3.1(d): a statically-typed
// LIST/MAP column in GROUP BY position is rejected at plan time, not
// silently collapsed into one bucket.
func TestGroupByRejectsListColumn(t *testing.T) {
	ms := memstore.New()
	e := New(ms, ms)
	ctx := context.Background()
	listColumnTable(t, ctx, ms, "t")

	sel := &ast.Select{
		Projection: []ast.SelectItem{{Expr: ast.Ident{Name: "tags"}}},
		From:       &ast.TableFactor{Name: "t"},
		GroupBy:    []ast.Expr{ast.Ident{Name: "tags"}},
	}
	_, err := e.Execute(ctx, selectStatement(sel))
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.New(glueerr.Plan, "GroupByUnhashableValue", "")))
}

// TestDistinctRejectsListColumn mirrors the GROUP BY case for SELECT
// DISTINCT projections.
func TestDistinctRejectsListColumn(t *testing.T) {
	ms := memstore.New()
	e := New(ms, ms)
	ctx := context.Background()
	listColumnTable(t, ctx, ms, "t")

	sel := &ast.Select{
		Projection: []ast.SelectItem{{Expr: ast.Ident{Name: "tags"}}},
		From:       &ast.TableFactor{Name: "t"},
		Distinct:   true,
	}
	_, err := e.Execute(ctx, selectStatement(sel))
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.New(glueerr.Plan, "DistinctUnhashableValue", "")))
}

// TestDistinctRowsDistinguishesKindsThatStringifyTheSame exercises
// distinctRows directly: a Text("true") and a Bool(true) render the same
// string via Value.String() but must collate as two distinct rows.
func TestDistinctRowsDistinguishesKindsThatStringifyTheSame(t *testing.T) {
	rows := [][]value.Value{
		{value.NewText("true")},
		{value.NewBool(true)},
		{value.NewText("true")},
	}
	out, err := distinctRows(rows)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

// TestDistinctRowsRejectsUnhashableValue exercises distinctRows' runtime
// backstop directly: a List value reaching the collation key (as it would
// for a schemaless table, where the planner cannot know the column is a
// List statically) must error rather than silently collapse every row
// into one shared "<LIST>" bucket.
func TestDistinctRowsRejectsUnhashableValue(t *testing.T) {
	rows := [][]value.Value{
		{value.NewList([]value.Value{value.NewInt64(1)})},
		{value.NewList([]value.Value{value.NewInt64(2)})},
	}
	_, err := distinctRows(rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.UnhashableValue("")))
}

// TestHashJoinOnTextColumnsMatchesEqualValues exercises the join
// pipeline's hash-join path: two TEXT columns equal on 'true' match, and
// b's 'false' row has no partner.
func TestHashJoinOnTextColumnsMatchesEqualValues(t *testing.T) {
	e, ctx := newTestExecutor()
	tr := translate.New()

	mustExec(t, e, ctx, tr, `CREATE TABLE a (id INT PRIMARY KEY, k TEXT)`)
	mustExec(t, e, ctx, tr, `CREATE TABLE b (id INT PRIMARY KEY, k TEXT)`)
	mustExec(t, e, ctx, tr, `INSERT INTO a (id, k) VALUES (1, 'true')`)
	mustExec(t, e, ctx, tr, `INSERT INTO b (id, k) VALUES (1, 'true')`)
	mustExec(t, e, ctx, tr, `INSERT INTO b (id, k) VALUES (2, 'false')`)

	payloads := mustExec(t, e, ctx, tr, `SELECT a.id, b.id FROM a JOIN b ON a.k = b.k`)
	sel := payloads[0].(SelectPayload)
	require.Len(t, sel.Rows, 1)
	assert.Equal(t, float64(1), wantFloat(t, sel.Rows[0][0]))
	assert.Equal(t, float64(1), wantFloat(t, sel.Rows[0][1]))
}

// TestJoinOnListColumnRejectedAtPlanTime asserts that an equality JOIN ON
// a statically-typed LIST column is rejected at plan time (spec §3.1(d)),
// the same as GROUP BY/DISTINCT, rather than falling through to a
// hash-join that would silently merge every row.
func TestJoinOnListColumnRejectedAtPlanTime(t *testing.T) {
	ms := memstore.New()
	e := New(ms, ms)
	ctx := context.Background()
	listColumnTable(t, ctx, ms, "a")
	listColumnTable(t, ctx, ms, "b")

	sel := &ast.Select{
		Projection: []ast.SelectItem{{Expr: ast.CompoundIdent{Table: "a", Name: "id"}}},
		From:       &ast.TableFactor{Name: "a"},
		Joins: []ast.Join{{
			Kind:  ast.InnerJoin,
			Table: ast.TableFactor{Name: "b"},
			On: ast.BinaryOp{
				Left:  ast.CompoundIdent{Table: "a", Name: "tags"},
				Op:    ast.OpEq,
				Right: ast.CompoundIdent{Table: "b", Name: "tags"},
			},
		}},
	}
	_, err := e.Execute(ctx, selectStatement(sel))
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.New(glueerr.Plan, "JoinKeyUnhashableValue", "")))
}

// TestDistinctAggregateCollapsesEqualTextValues exercises
// eval.distinctFilter through COUNT(DISTINCT ...): two rows with the same
// TEXT value collapse to one, so 'true' and 'false' count 2.
func TestDistinctAggregateCollapsesEqualTextValues(t *testing.T) {
	e, ctx := newTestExecutor()
	tr := translate.New()

	mustExec(t, e, ctx, tr, `CREATE TABLE t (id INT PRIMARY KEY, label TEXT)`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, label) VALUES (1, 'true')`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, label) VALUES (2, 'true')`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, label) VALUES (3, 'false')`)

	payloads := mustExec(t, e, ctx, tr, `SELECT COUNT(DISTINCT label) FROM t`)
	sel := payloads[0].(SelectPayload)
	require.Len(t, sel.Rows, 1)
	assert.Equal(t, float64(2), wantFloat(t, sel.Rows[0][0]))
}

func TestOrderByAndLimitOverGroupedRows(t *testing.T) {
	e, ctx := newTestExecutor()
	tr := translate.New()

	mustExec(t, e, ctx, tr, `CREATE TABLE sales (id INT PRIMARY KEY, region TEXT, amount INT)`)
	mustExec(t, e, ctx, tr, `INSERT INTO sales (id, region, amount) VALUES (1, 'east', 10)`)
	mustExec(t, e, ctx, tr, `INSERT INTO sales (id, region, amount) VALUES (2, 'east', 5)`)
	mustExec(t, e, ctx, tr, `INSERT INTO sales (id, region, amount) VALUES (3, 'west', 20)`)

	payloads := mustExec(t, e, ctx, tr,
		`SELECT region, SUM(amount) FROM sales GROUP BY region ORDER BY region DESC LIMIT 1`)
	sel := payloads[0].(SelectPayload)
	require.Len(t, sel.Rows, 1)
	assert.Equal(t, "west", sel.Rows[0][0].String())
	assert.Equal(t, float64(20), wantFloat(t, sel.Rows[0][1]))
}

func TestSelectDistinctOverIntProjection(t *testing.T) {
	e, ctx := newTestExecutor()
	tr := translate.New()

	mustExec(t, e, ctx, tr, `CREATE TABLE t (id INT PRIMARY KEY, n INT)`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, n) VALUES (1, 5)`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, n) VALUES (2, 5)`)
	mustExec(t, e, ctx, tr, `INSERT INTO t (id, n) VALUES (3, 6)`)

	payloads := mustExec(t, e, ctx, tr, `SELECT DISTINCT n FROM t`)
	sel := payloads[0].(SelectPayload)
	assert.Len(t, sel.Rows, 2)
}
