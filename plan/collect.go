package plan

import "github.com/glue-sql/glue/ast"

// collectTableNames scans st for every referenced table name, including
// tables nested in derived tables and subqueries (spec §4.4 item 1).
func collectTableNames(st ast.Statement) []string {
	var names []string
	add := func(n string) {
		if n == "" {
			return
		}
		for _, existing := range names {
			if existing == n {
				return
			}
		}
		names = append(names, n)
	}

	switch s := st.(type) {
	case ast.QueryStatement:
		collectQuery(s.Query, add)
	case ast.InsertStatement:
		add(s.Table)
		if s.Source.Select != nil {
			collectQuery(s.Source.Select, add)
		}
	case ast.UpdateStatement:
		add(s.Table)
		collectExprTables(s.Where, add)
		for _, asg := range s.Assignments {
			collectExprTables(asg.Value, add)
		}
	case ast.DeleteStatement:
		add(s.Table)
		collectExprTables(s.Where, add)
	case ast.AlterTableStatement:
		add(s.Table)
	case ast.DropTableStatement:
		for _, t := range s.Tables {
			add(t)
		}
	case ast.CreateIndexStatement:
		add(s.Table)
	case ast.DropIndexStatement:
		add(s.Table)
	case ast.ShowColumnsStatement:
		add(s.Table)
	case ast.ExplainTableStatement:
		add(s.Table)
	}
	return names
}

func collectQuery(q *ast.Query, add func(string)) {
	if q == nil {
		return
	}
	if sel := q.Body.Select; sel != nil {
		collectSelect(sel, add)
	}
	for _, row := range q.Body.Values {
		for _, e := range row {
			collectExprTables(e, add)
		}
	}
	for _, ob := range q.OrderBy {
		collectExprTables(ob.Expr, add)
	}
	collectExprTables(q.Limit, add)
	collectExprTables(q.Offset, add)
}

func collectSelect(sel *ast.Select, add func(string)) {
	if sel == nil {
		return
	}
	for _, item := range sel.Projection {
		collectExprTables(item.Expr, add)
	}
	collectTableFactor(sel.From, add)
	for _, j := range sel.Joins {
		collectTableFactor(&j.Table, add)
		collectExprTables(j.On, add)
	}
	collectExprTables(sel.Where, add)
	for _, e := range sel.GroupBy {
		collectExprTables(e, add)
	}
	collectExprTables(sel.Having, add)
}

func collectTableFactor(tf *ast.TableFactor, add func(string)) {
	if tf == nil {
		return
	}
	add(tf.Name)
	if tf.Derived != nil {
		collectQuery(tf.Derived, add)
	}
	collectExprTables(tf.Series, add)
}

// collectExprTables walks expr for nested subqueries, the only place a
// new table name can appear inside an expression tree.
func collectExprTables(expr ast.Expr, add func(string)) {
	switch x := expr.(type) {
	case nil:
	case ast.Nested:
		collectExprTables(x.Inner, add)
	case ast.UnaryOp:
		collectExprTables(x.Expr, add)
	case ast.BinaryOp:
		collectExprTables(x.Left, add)
		collectExprTables(x.Right, add)
	case ast.Between:
		collectExprTables(x.Expr, add)
		collectExprTables(x.Low, add)
		collectExprTables(x.High, add)
	case ast.InList:
		collectExprTables(x.Expr, add)
		for _, e := range x.List {
			collectExprTables(e, add)
		}
	case ast.InSubquery:
		collectExprTables(x.Expr, add)
		collectQuery(x.Subquery, add)
	case ast.Like:
		collectExprTables(x.Expr, add)
		collectExprTables(x.Pattern, add)
	case ast.Case:
		if x.Operand != nil {
			collectExprTables(*x.Operand, add)
		}
		for _, w := range x.Whens {
			collectExprTables(w.When, add)
			collectExprTables(w.Then, add)
		}
		collectExprTables(x.Else, add)
	case ast.Cast:
		collectExprTables(x.Expr, add)
	case ast.Extract:
		collectExprTables(x.Expr, add)
	case ast.Subquery:
		collectQuery(x.Query, add)
	case ast.Exists:
		collectQuery(x.Query, add)
	case ast.FuncCall:
		for _, a := range x.Args {
			collectExprTables(a, add)
		}
	case ast.AggregateCall:
		collectExprTables(x.Arg, add)
	}
}
