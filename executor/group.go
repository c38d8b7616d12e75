package executor

import (
	"context"
	"strconv"
	"strings"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/eval"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/plan"
	"github.com/glue-sql/glue/value"
)

// groupBucket is one GROUP BY bucket: the representative row context used to
// evaluate non-aggregated projection/HAVING expressions, plus one
// Accumulator per aggregate call appearing in the projection or HAVING.
type groupBucket struct {
	ctx   *eval.RowContext
	accs  map[string]eval.Accumulator
	count int
}

// hasAggregates reports whether the select has any aggregate calls, in
// projection or HAVING, which forces implicit grouping into one bucket
// even without an explicit GROUP BY.
func hasAggregates(sel *ast.Select) bool {
	for _, item := range sel.Projection {
		if item.Expr != nil && containsAggCall(item.Expr) {
			return true
		}
	}
	return sel.Having != nil && containsAggCall(sel.Having)
}

func containsAggCall(expr ast.Expr) bool {
	found := false
	walkExpr(expr, func(e ast.Expr) {
		if _, ok := e.(ast.AggregateCall); ok {
			found = true
		}
	})
	return found
}

// walkExpr visits expr and every sub-expression reachable through the
// closed Expr variants that can nest other expressions.
func walkExpr(expr ast.Expr, visit func(ast.Expr)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch e := expr.(type) {
	case ast.Nested:
		walkExpr(e.Inner, visit)
	case ast.UnaryOp:
		walkExpr(e.Expr, visit)
	case ast.BinaryOp:
		walkExpr(e.Left, visit)
		walkExpr(e.Right, visit)
	case ast.Between:
		walkExpr(e.Expr, visit)
		walkExpr(e.Low, visit)
		walkExpr(e.High, visit)
	case ast.InList:
		walkExpr(e.Expr, visit)
		for _, it := range e.List {
			walkExpr(it, visit)
		}
	case ast.Like:
		walkExpr(e.Expr, visit)
		walkExpr(e.Pattern, visit)
	case ast.Case:
		if e.Operand != nil {
			walkExpr(*e.Operand, visit)
		}
		for _, w := range e.Whens {
			walkExpr(w.When, visit)
			walkExpr(w.Then, visit)
		}
		walkExpr(e.Else, visit)
	case ast.Cast:
		walkExpr(e.Expr, visit)
	case ast.Extract:
		walkExpr(e.Expr, visit)
	case ast.FuncCall:
		for _, a := range e.Args {
			walkExpr(a, visit)
		}
	case ast.AggregateCall:
		walkExpr(e.Arg, visit)
	}
}

// groupKeyFor builds a bucket key from exprs evaluated against ctx. It
// collates on value.Key's Kind-tagged byte encoding rather than
// Value.String() (spec §3.1(d) "List and Map may not serve as group-by
// keys"; String() also loses the Kind tag for ordinary scalars, letting a
// Text and a Bool that render the same string collide).
func groupKeyFor(exprs []ast.Expr, ctx *eval.RowContext) (string, error) {
	ev := eval.New(ctx, nil)
	var sb strings.Builder
	for _, expr := range exprs {
		v, err := ev.Eval(expr)
		if err != nil {
			return "", err
		}
		k, err := value.NewKey(v)
		if err != nil {
			return "", glueerr.UnhashableValue("GROUP BY")
		}
		sb.Write(k.Bytes)
		sb.WriteByte(0)
	}
	return sb.String(), nil
}

// groupRows accumulates rows into buckets keyed by GroupBy, or a single
// implicit bucket when the projection/HAVING carries aggregates but no
// explicit GROUP BY (spec §4.5 "group_by").
func (e *Executor) groupRows(rows []row, sel *ast.Select, sm plan.SchemaMap) ([]*groupBucket, []*eval.RowContext, error) {
	if len(sel.GroupBy) == 0 && !hasAggregates(sel) {
		ctxs := make([]*eval.RowContext, len(rows))
		for i, r := range rows {
			ctxs[i] = buildRowContext(r, sm)
		}
		return nil, ctxs, nil
	}

	aggCalls := collectAggCalls(sel)
	order := []string{}
	buckets := map[string]*groupBucket{}

	for _, r := range rows {
		ctx := buildRowContext(r, sm)
		key, err := groupKeyFor(sel.GroupBy, ctx)
		if err != nil {
			return nil, nil, err
		}
		b, ok := buckets[key]
		if !ok {
			b = &groupBucket{ctx: ctx, accs: map[string]eval.Accumulator{}}
			for label, call := range aggCalls {
				b.accs[label] = eval.NewAccumulator(call.Agg, call.Arg == nil, call.Distinct)
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.count++
		ev := eval.New(ctx, e.subqueryRunner(sm))
		for label, call := range aggCalls {
			var v value.Value
			if call.Arg != nil {
				var err error
				v, err = ev.Eval(call.Arg)
				if err != nil {
					return nil, nil, err
				}
			}
			if err := b.accs[label].Accumulate(v); err != nil {
				return nil, nil, err
			}
		}
	}

	if len(order) == 0 && len(sel.GroupBy) == 0 {
		b := &groupBucket{ctx: eval.NewRowContext(), accs: map[string]eval.Accumulator{}}
		for label, call := range aggCalls {
			b.accs[label] = eval.NewAccumulator(call.Agg, call.Arg == nil, call.Distinct)
		}
		buckets[""] = b
		order = append(order, "")
	}

	out := make([]*groupBucket, len(order))
	for i, key := range order {
		out[i] = buckets[key]
	}
	return out, nil, nil
}

// collectAggCalls assigns a stable label to every distinct AggregateCall
// found in the projection or HAVING, by its literal structure.
func collectAggCalls(sel *ast.Select) map[string]ast.AggregateCall {
	out := map[string]ast.AggregateCall{}
	record := func(e ast.Expr) {
		walkExpr(e, func(inner ast.Expr) {
			if call, ok := inner.(ast.AggregateCall); ok {
				out[aggLabel(call)] = call
			}
		})
	}
	for _, item := range sel.Projection {
		record(item.Expr)
	}
	record(sel.Having)
	return out
}

func aggLabel(call ast.AggregateCall) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(call.Agg)))
	if call.Distinct {
		sb.WriteString("!distinct")
	}
	sb.WriteString(exprKey(call.Arg))
	return sb.String()
}

func exprKey(expr ast.Expr) string {
	switch e := expr.(type) {
	case nil:
		return "*"
	case ast.Ident:
		return "id:" + strings.ToLower(e.Name)
	case ast.CompoundIdent:
		return "cid:" + strings.ToLower(e.Table) + "." + strings.ToLower(e.Name)
	default:
		return "expr"
	}
}

func (e *Executor) filterHaving(groups []*groupBucket, ctxs []*eval.RowContext, having ast.Expr) ([]*groupBucket, []*eval.RowContext, error) {
	if having == nil {
		return groups, ctxs, nil
	}
	if groups == nil {
		var out []*eval.RowContext
		for _, c := range ctxs {
			ev := eval.New(c, nil)
			ok, isNull, err := ev.EvalBool(having)
			if err != nil {
				return nil, nil, err
			}
			if !isNull && ok {
				out = append(out, c)
			}
		}
		return nil, out, nil
	}
	var out []*groupBucket
	for _, b := range groups {
		ev := eval.New(withAggregateResults(b), nil)
		ok, isNull, err := ev.EvalBool(having)
		if err != nil {
			return nil, nil, err
		}
		if !isNull && ok {
			out = append(out, b)
		}
	}
	return out, nil, nil
}

// withAggregateResults returns the bucket's representative row context
// for HAVING. Aggregate results are substituted only for top-level
// aggregate projection items (in evalProjection); HAVING sees just the
// representative row's columns, and an aggregate call inside HAVING fails
// with AggregateOutsideGroupContext.
func withAggregateResults(b *groupBucket) *eval.RowContext {
	return b.ctx
}

func (e *Executor) projectRows(ctx context.Context, groups []*groupBucket, ctxs []*eval.RowContext, sel *ast.Select, sm plan.SchemaMap) ([][]value.Value, []string, bool, error) {
	labels := projectionLabels(sel, sm)
	schemaless := false
	if sel.From != nil {
		if sch := sm[strings.ToLower(sel.From.Name)]; sch != nil {
			schemaless = sch.Schemaless()
		}
	}

	if groups != nil {
		out := make([][]value.Value, 0, len(groups))
		for _, b := range groups {
			vals, err := e.evalProjection(sel, b.ctx, b.accs, sm)
			if err != nil {
				return nil, nil, false, err
			}
			out = append(out, vals)
		}
		return out, labels, schemaless, nil
	}

	out := make([][]value.Value, 0, len(ctxs))
	for _, c := range ctxs {
		vals, err := e.evalProjection(sel, c, nil, sm)
		if err != nil {
			return nil, nil, false, err
		}
		out = append(out, vals)
	}
	return out, labels, schemaless, nil
}

// tableOrderFromSelect returns FROM/JOIN table aliases in clause order,
// the basis for deterministic wildcard expansion.
func tableOrderFromSelect(sel *ast.Select) []string {
	var out []string
	if sel.From != nil {
		out = append(out, tableAlias(sel.From))
	}
	for _, j := range sel.Joins {
		out = append(out, tableAlias(&j.Table))
	}
	return out
}

func schemaColumnNames(alias string, sm plan.SchemaMap) []string {
	sch := sm[strings.ToLower(alias)]
	if sch == nil {
		return nil
	}
	names := make([]string, len(sch.ColumnDefs))
	for i, c := range sch.ColumnDefs {
		names[i] = c.Name
	}
	return names
}

func (e *Executor) evalProjection(sel *ast.Select, ctx *eval.RowContext, accs map[string]eval.Accumulator, sm plan.SchemaMap) ([]value.Value, error) {
	var out []value.Value
	for _, item := range sel.Projection {
		if item.Wildcard {
			vals, err := wildcardValues(item.Qualify, sel, sm, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
			continue
		}
		if call, ok := item.Expr.(ast.AggregateCall); ok && accs != nil {
			v, err := accs[aggLabel(call)].Result()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			continue
		}
		ev := eval.New(ctx, nil)
		v, err := ev.Eval(item.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func wildcardValues(qualify string, sel *ast.Select, sm plan.SchemaMap, ctx *eval.RowContext) ([]value.Value, error) {
	aliases := tableOrderFromSelect(sel)
	if qualify != "" {
		aliases = []string{qualify}
	}
	var out []value.Value
	for _, alias := range aliases {
		names := schemaColumnNames(alias, sm)
		if names == nil {
			names = ctx.ColumnNames(alias)
		}
		for _, name := range names {
			v, err := ctx.ResolveQualified(alias, name)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func projectionLabels(sel *ast.Select, sm plan.SchemaMap) []string {
	var labels []string
	for i, item := range sel.Projection {
		switch {
		case item.Wildcard:
			aliases := tableOrderFromSelect(sel)
			if item.Qualify != "" {
				aliases = []string{item.Qualify}
			}
			for _, alias := range aliases {
				names := schemaColumnNames(alias, sm)
				if names == nil {
					labels = append(labels, "*")
					continue
				}
				labels = append(labels, names...)
			}
		case item.Alias != "":
			labels = append(labels, item.Alias)
		default:
			if id, ok := item.Expr.(ast.Ident); ok {
				labels = append(labels, id.Name)
			} else if cid, ok := item.Expr.(ast.CompoundIdent); ok {
				labels = append(labels, cid.Name)
			} else {
				labels = append(labels, "column"+itoa(i+1))
			}
		}
	}
	return labels
}
