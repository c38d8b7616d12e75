package executor

import (
	"context"
	"sort"
	"strings"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/eval"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/internal/glog"
	"github.com/glue-sql/glue/plan"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
	"github.com/glue-sql/glue/value"
)

// row is one tuple flowing through the Select pipeline: the per-table
// rows joined so far, keyed by table alias (or name when unaliased).
type row struct {
	tables map[string]schema.DataRow
}

func (e *Executor) execSelect(ctx context.Context, q *ast.Query) (Payload, error) {
	rows, labels, schemaless, err := e.runQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	if schemaless {
		maps := make([]map[string]value.Value, len(rows))
		for i, r := range rows {
			m := map[string]value.Value{}
			for j, label := range labels {
				m[label] = r[j]
			}
			maps[i] = m
		}
		return SelectMapPayload{Rows: maps}, nil
	}
	return SelectPayload{Labels: labels, Rows: rows}, nil
}

// runQuery executes q fully and returns its rows as value tuples plus
// column labels; it also serves as the eval.Subquery callback so nested
// subqueries reuse the exact same pipeline (spec §4.3's "current storage
// snapshot" wording).
func (e *Executor) runQuery(ctx context.Context, q *ast.Query) ([][]value.Value, []string, bool, error) {
	if q.Body.Select == nil {
		return e.runValues(q.Body.Values)
	}
	sel := q.Body.Select
	var sm plan.SchemaMap
	if sel.From != nil || len(sel.Joins) > 0 {
		stmt := ast.QueryStatement{Query: &ast.Query{Body: ast.SetExpr{Select: sel}}}
		m, err := plan.Plan(ctx, stmt, e.Store)
		if err != nil {
			return nil, nil, false, err
		}
		sm = m
	}

	rows, err := e.fetchAndJoin(ctx, sel, sm)
	if err != nil {
		return nil, nil, false, err
	}

	rows, err = e.filterRows(rows, sel.Where, sm)
	if err != nil {
		return nil, nil, false, err
	}

	groups, groupCtxs, err := e.groupRows(rows, sel, sm)
	if err != nil {
		return nil, nil, false, err
	}

	groups, groupCtxs, err = e.filterHaving(groups, groupCtxs, sel.Having)
	if err != nil {
		return nil, nil, false, err
	}

	projected, labels, schemaless, err := e.projectRows(ctx, groups, groupCtxs, sel, sm)
	if err != nil {
		return nil, nil, false, err
	}

	if sel.Distinct {
		projected, err = distinctRows(projected)
		if err != nil {
			return nil, nil, false, err
		}
	}

	if len(q.OrderBy) > 0 {
		orderCtxs := groupCtxs
		if groups != nil {
			orderCtxs = make([]*eval.RowContext, len(groups))
			for i, b := range groups {
				orderCtxs[i] = b.ctx
			}
		}
		projected, err = e.orderRows(projected, orderCtxs, q.OrderBy)
		if err != nil {
			return nil, nil, false, err
		}
	}

	projected, err = e.applyOffsetLimit(projected, q.Offset, q.Limit)
	if err != nil {
		return nil, nil, false, err
	}

	return projected, labels, schemaless, nil
}

func (e *Executor) runValues(values [][]ast.Expr) ([][]value.Value, []string, bool, error) {
	ev := eval.New(nil, nil)
	rows := make([][]value.Value, len(values))
	var width int
	if len(values) > 0 {
		width = len(values[0])
	}
	labels := make([]string, width)
	for i := range labels {
		labels[i] = "column" + itoa(i+1)
	}
	for i, r := range values {
		vals := make([]value.Value, len(r))
		for j, expr := range r {
			v, err := ev.Eval(expr)
			if err != nil {
				return nil, nil, false, err
			}
			vals[j] = v
		}
		rows[i] = vals
	}
	return rows, labels, false, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

// fetchAndJoin resolves sel.From's fetch strategy and then folds in each
// Join, nested-loop by default or hash-joined when the planner set
// HashJoin (spec §4.5 "fetch"/"join").
func (e *Executor) fetchAndJoin(ctx context.Context, sel *ast.Select, sm plan.SchemaMap) ([]row, error) {
	if sel.From == nil {
		return []row{{tables: map[string]schema.DataRow{}}}, nil
	}
	base, err := e.fetchTable(ctx, sel.From, sm)
	if err != nil {
		return nil, err
	}

	for _, j := range sel.Joins {
		right, err := e.fetchTable(ctx, &j.Table, sm)
		if err != nil {
			return nil, err
		}
		base, err = joinRows(base, right, j, sm)
		if err != nil {
			return nil, err
		}
	}
	return base, nil
}

func tableAlias(tf *ast.TableFactor) string {
	if tf.Alias != "" {
		return tf.Alias
	}
	return tf.Name
}

func (e *Executor) fetchTable(ctx context.Context, tf *ast.TableFactor, sm plan.SchemaMap) ([]row, error) {
	alias := tableAlias(tf)

	if tf.Derived != nil {
		vals, labels, _, err := e.runQuery(ctx, tf.Derived)
		if err != nil {
			return nil, err
		}
		rows := make([]row, len(vals))
		for i, v := range vals {
			m := map[string]value.Value{}
			for j, label := range labels {
				m[label] = v[j]
			}
			rows[i] = row{tables: map[string]schema.DataRow{alias: schema.NewMapRow(m)}}
		}
		return rows, nil
	}

	var iter store.RowIterator
	var err error
	fullScan := false
	if tf.Index != nil && tf.Index.PrimaryKey != nil {
		ev := eval.New(nil, nil)
		v, evalErr := ev.Eval(tf.Index.PrimaryKey.Value)
		if evalErr != nil {
			return nil, evalErr
		}
		key, keyErr := value.NewKey(v)
		if keyErr != nil {
			return nil, keyErr
		}
		data, fetchErr := e.Store.FetchData(ctx, tf.Name, key)
		if fetchErr != nil {
			return nil, fetchErr
		}
		if data == nil {
			return nil, nil
		}
		return []row{{tables: map[string]schema.DataRow{alias: *data}}}, nil
	} else if tf.Index != nil && tf.Index.Secondary != nil {
		idxStore, ok := e.Store.(store.Index)
		if !ok {
			return nil, glueerr.New(glueerr.Fetch, "IndexNotSupported", "back-end does not support indexed scans")
		}
		ev := eval.New(nil, nil)
		v, evalErr := ev.Eval(tf.Index.Secondary.Value)
		if evalErr != nil {
			return nil, evalErr
		}
		iter, err = idxStore.ScanIndexedData(ctx, tf.Name, tf.Index.Secondary.Name, tf.Index.Secondary.Asc, opName(tf.Index.Secondary.Cmp), v)
	} else {
		iter, err = e.Store.ScanData(ctx, tf.Name)
		fullScan = true
	}
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []row
	for {
		r, ok, nextErr := iter.Next(ctx)
		if nextErr != nil {
			return nil, nextErr
		}
		if !ok {
			break
		}
		out = append(out, row{tables: map[string]schema.DataRow{alias: r.Data}})
	}
	if fullScan && len(out) > slowScanThreshold {
		glog.SlowScan(tf.Name, len(out))
	}
	return out, nil
}

// slowScanThreshold is the row count above which a full table scan (no
// primary-key or index directive attached) is logged (spec §4.5's "SELECT
// ... LIMIT 1 over huge tables" concern made observable via glog).
const slowScanThreshold = 10000

func opName(op ast.BinaryOperator) string {
	switch op {
	case ast.OpEq:
		return "="
	case ast.OpLt:
		return "<"
	case ast.OpLtEq:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGtEq:
		return ">="
	default:
		return ""
	}
}

func joinRows(left, right []row, j ast.Join, sm plan.SchemaMap) ([]row, error) {
	if j.HashJoin {
		if out, ok := hashJoinRows(left, right, j, sm); ok {
			return out, nil
		}
	}
	return nestedLoopJoin(left, right, j, sm)
}

func nestedLoopJoin(left, right []row, j ast.Join, sm plan.SchemaMap) ([]row, error) {
	var out []row
	for _, l := range left {
		matched := false
		for _, r := range right {
			combined := mergeRows(l, r)
			ctx := buildRowContext(combined, sm)
			ev := eval.New(ctx, nil)
			ok, isNull, err := ev.EvalBool(j.On)
			if err != nil {
				return nil, err
			}
			if !isNull && ok {
				matched = true
				out = append(out, combined)
			}
		}
		if !matched && j.Kind == ast.LeftJoin {
			out = append(out, l)
		}
	}
	return out, nil
}

// hashJoinRows builds an index over right keyed by whichever side of the
// equality resolves against it, then probes with each left row — the
// strategy planHashJoins' directive asks for. It falls back (ok=false) if
// the equality's orientation can't be determined from a sample right row.
func hashJoinRows(left, right []row, j ast.Join, sm plan.SchemaMap) ([]row, bool) {
	b, ok := j.On.(ast.BinaryOp)
	if !ok || len(right) == 0 {
		return nil, false
	}
	var rightExpr, leftExpr ast.Expr
	if _, ok := evalQuiet(b.Right, right[0], sm); ok {
		rightExpr, leftExpr = b.Right, b.Left
	} else if _, ok := evalQuiet(b.Left, right[0], sm); ok {
		rightExpr, leftExpr = b.Left, b.Right
	} else {
		return nil, false
	}

	// Collate on value.Key's Kind-tagged byte encoding, not Value.String()
	// (spec §3.1(d): List/Map may not serve as a join key; NewKey also
	// distinguishes Kinds that stringify the same, e.g. Text("true") vs
	// Bool(true)). A List/Map join key makes the hash strategy unusable
	// outright — fall back to the nested-loop join, whose per-pair eval
	// already rejects the comparison correctly.
	index := map[string][]row{}
	for _, r := range right {
		v, ok := evalQuiet(rightExpr, r, sm)
		if !ok {
			continue
		}
		k, err := value.NewKey(v)
		if err != nil {
			return nil, false
		}
		index[string(k.Bytes)] = append(index[string(k.Bytes)], r)
	}

	var out []row
	for _, l := range left {
		matched := false
		if lv, ok := evalQuiet(leftExpr, l, sm); ok {
			lk, err := value.NewKey(lv)
			if err != nil {
				return nil, false
			}
			for _, r := range index[string(lk.Bytes)] {
				out = append(out, mergeRows(l, r))
				matched = true
			}
		}
		if !matched && j.Kind == ast.LeftJoin {
			out = append(out, l)
		}
	}
	return out, true
}

func evalQuiet(expr ast.Expr, r row, sm plan.SchemaMap) (value.Value, bool) {
	ctx := buildRowContext(r, sm)
	ev := eval.New(ctx, nil)
	v, err := ev.Eval(expr)
	if err != nil {
		return value.Value{}, false
	}
	return v, true
}

func mergeRows(l, r row) row {
	merged := map[string]schema.DataRow{}
	for k, v := range l.tables {
		merged[k] = v
	}
	for k, v := range r.tables {
		merged[k] = v
	}
	return row{tables: merged}
}

func buildRowContext(r row, sm plan.SchemaMap) *eval.RowContext {
	ctx := eval.NewRowContext()
	for alias, data := range r.tables {
		cols := rowColumns(alias, data, sm)
		ctx.Bind(alias, cols)
	}
	return ctx
}

func rowColumns(alias string, data schema.DataRow, sm plan.SchemaMap) map[string]value.Value {
	if data.IsMap() {
		return data.Map
	}
	sch := sm[strings.ToLower(alias)]
	cols := map[string]value.Value{}
	if sch == nil {
		return cols
	}
	for i, c := range sch.ColumnDefs {
		if i < len(data.Vec) {
			cols[c.Name] = data.Vec[i]
		}
	}
	return cols
}

func (e *Executor) filterRows(rows []row, where ast.Expr, sm plan.SchemaMap) ([]row, error) {
	if where == nil {
		return rows, nil
	}
	var out []row
	for _, r := range rows {
		ctx := buildRowContext(r, sm)
		ev := eval.New(ctx, e.subqueryRunner(sm))
		ok, isNull, err := ev.EvalBool(where)
		if err != nil {
			return nil, err
		}
		if !isNull && ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (e *Executor) subqueryRunner(sm plan.SchemaMap) eval.Subquery {
	return func(q *ast.Query) ([][]value.Value, error) {
		vals, _, _, err := e.runQuery(context.Background(), q)
		return vals, err
	}
}

// distinctRows de-duplicates on value.Key's Kind-tagged byte encoding
// (spec §3.1(d): a List/Map projection column cannot serve as a DISTINCT
// key and is rejected, rather than silently collapsing every row into one
// bucket the way Value.String()'s "<LIST>"/"<MAP>" placeholder would).
func distinctRows(rows [][]value.Value) ([][]value.Value, error) {
	seen := map[string]bool{}
	var out [][]value.Value
	for _, r := range rows {
		var sb strings.Builder
		for _, v := range r {
			k, err := value.NewKey(v)
			if err != nil {
				return nil, glueerr.UnhashableValue("SELECT DISTINCT")
			}
			sb.Write(k.Bytes)
			sb.WriteByte(0)
		}
		key := sb.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out, nil
}

func (e *Executor) orderRows(rows [][]value.Value, ctxs []*eval.RowContext, orderBy []ast.OrderByExpr) ([][]value.Value, error) {
	type indexed struct {
		row []value.Value
		ctx *eval.RowContext
	}
	items := make([]indexed, len(rows))
	for i, r := range rows {
		var c *eval.RowContext
		if i < len(ctxs) {
			c = ctxs[i]
		}
		items[i] = indexed{row: r, ctx: c}
	}
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		for _, ob := range orderBy {
			vi, err := evalOrderKey(items[i].ctx, ob.Expr)
			if err != nil {
				sortErr = err
				return false
			}
			vj, err := evalOrderKey(items[j].ctx, ob.Expr)
			if err != nil {
				sortErr = err
				return false
			}
			less, eq := compareNulls(vi, vj, ob.Asc, e.NullsFirst)
			if eq {
				continue
			}
			return less
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	out := make([][]value.Value, len(items))
	for i, it := range items {
		out[i] = it.row
	}
	return out, nil
}

func evalOrderKey(ctx *eval.RowContext, expr ast.Expr) (value.Value, error) {
	ev := eval.New(ctx, nil)
	return ev.Eval(expr)
}

// compareNulls implements spec §4.5's ORDER BY NULL policy. The default
// (nullsFirst=false) is "Nulls last for ASC, first for DESC"; when
// nullsFirst is set (spec §9's Open Question config knob), Nulls always
// sort first regardless of direction.
func compareNulls(a, b value.Value, asc bool, nullsFirst bool) (less bool, eq bool) {
	if a.IsNull() && b.IsNull() {
		return false, true
	}
	if nullsFirst {
		if a.IsNull() {
			return true, false
		}
		if b.IsNull() {
			return false, false
		}
	} else {
		if a.IsNull() {
			return !asc, false
		}
		if b.IsNull() {
			return asc, false
		}
	}
	cmp, err := value.Compare(a, b)
	if err != nil {
		return false, true
	}
	if cmp == 0 {
		return false, true
	}
	if asc {
		return cmp < 0, false
	}
	return cmp > 0, false
}

func (e *Executor) applyOffsetLimit(rows [][]value.Value, offset, limit ast.Expr) ([][]value.Value, error) {
	ev := eval.New(nil, nil)
	if offset != nil {
		v, err := ev.Eval(offset)
		if err != nil {
			return nil, err
		}
		n, _ := v.Int64()
		if int(n) < len(rows) {
			rows = rows[n:]
		} else {
			rows = nil
		}
	}
	if limit != nil {
		v, err := ev.Eval(limit)
		if err != nil {
			return nil, err
		}
		n, _ := v.Int64()
		if int(n) < len(rows) {
			rows = rows[:n]
		}
	}
	return rows, nil
}
