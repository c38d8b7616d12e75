package translate

import (
	"fmt"

	tidbast "github.com/pingcap/tidb/pkg/parser/ast"

	"github.com/glue-sql/glue/ast"
)

func (t *Translator) convertSelectStmt(s *tidbast.SelectStmt) (*ast.Query, error) {
	if s == nil {
		return nil, &UnsupportedStatement{Kind: "empty SELECT body"}
	}
	sel := &ast.Select{Distinct: s.Distinct}

	if s.Fields != nil {
		for _, f := range s.Fields.Fields {
			item, err := t.convertSelectField(f)
			if err != nil {
				return nil, err
			}
			sel.Projection = append(sel.Projection, item)
		}
	}

	if s.From != nil && s.From.TableRefs != nil {
		factor, joins, err := t.flattenJoin(s.From.TableRefs)
		if err != nil {
			return nil, err
		}
		sel.From = &factor
		sel.Joins = joins
	}

	if s.Where != nil {
		where, err := t.convertExpr(s.Where)
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}

	if s.GroupBy != nil {
		for _, item := range s.GroupBy.Items {
			e, err := t.convertExpr(item.Expr)
			if err != nil {
				return nil, err
			}
			sel.GroupBy = append(sel.GroupBy, e)
		}
	}

	if s.Having != nil && s.Having.Expr != nil {
		having, err := t.convertExpr(s.Having.Expr)
		if err != nil {
			return nil, err
		}
		sel.Having = having
	}

	q := &ast.Query{Body: ast.SetExpr{Select: sel}}

	if s.OrderBy != nil {
		for _, item := range s.OrderBy.Items {
			e, err := t.convertExpr(item.Expr)
			if err != nil {
				return nil, err
			}
			q.OrderBy = append(q.OrderBy, ast.OrderByExpr{Expr: e, Asc: !item.Desc})
		}
	}

	if s.Limit != nil {
		if s.Limit.Count != nil {
			lim, err := t.convertExpr(s.Limit.Count)
			if err != nil {
				return nil, err
			}
			q.Limit = lim
		}
		if s.Limit.Offset != nil {
			off, err := t.convertExpr(s.Limit.Offset)
			if err != nil {
				return nil, err
			}
			q.Offset = off
		}
	}

	return q, nil
}

func (t *Translator) convertSelectField(f *tidbast.SelectField) (ast.SelectItem, error) {
	if f.WildCard != nil {
		return ast.SelectItem{Wildcard: true, Qualify: f.WildCard.Table.O}, nil
	}
	e, err := t.convertExpr(f.Expr)
	if err != nil {
		return ast.SelectItem{}, err
	}
	return ast.SelectItem{Expr: e, Alias: f.AsName.O}, nil
}

// flattenJoin turns the parser's left-deep binary Join tree into this
// engine's flat base-table + []Join shape (spec §4.1: TableFactor plus an
// ordered Joins list, not a tree), since the executor's nested-loop/hash
// join pipeline (spec §4.5) consumes joins one at a time in source order.
func (t *Translator) flattenJoin(j *tidbast.Join) (ast.TableFactor, []ast.Join, error) {
	if j.Right == nil {
		factor, err := t.convertTableRefNode(j.Left)
		return factor, nil, err
	}

	var left ast.TableFactor
	var joins []ast.Join
	var err error
	if sub, ok := j.Left.(*tidbast.Join); ok {
		left, joins, err = t.flattenJoin(sub)
	} else {
		left, err = t.convertTableRefNode(j.Left)
	}
	if err != nil {
		return ast.TableFactor{}, nil, err
	}

	right, err := t.convertTableRefNode(j.Right)
	if err != nil {
		return ast.TableFactor{}, nil, err
	}

	kind := ast.InnerJoin
	if j.Tp == tidbast.LeftJoin {
		kind = ast.LeftJoin
	}
	var on ast.Expr
	if j.On != nil && j.On.Expr != nil {
		on, err = t.convertExpr(j.On.Expr)
		if err != nil {
			return ast.TableFactor{}, nil, err
		}
	}
	joins = append(joins, ast.Join{Kind: kind, Table: right, On: on})
	return left, joins, nil
}

func (t *Translator) convertTableRefNode(n tidbast.ResultSetNode) (ast.TableFactor, error) {
	switch src := n.(type) {
	case *tidbast.TableSource:
		return t.convertTableSourceInner(src)
	case *tidbast.TableName:
		return ast.TableFactor{Name: src.Name.O}, nil
	case *tidbast.Join:
		factor, joins, err := t.flattenJoin(src)
		if len(joins) > 0 {
			return ast.TableFactor{}, &UnsupportedStatement{Kind: "nested JOIN as a single table factor"}
		}
		return factor, err
	default:
		return ast.TableFactor{}, &UnsupportedStatement{Kind: fmt.Sprintf("FROM-clause item %T", n)}
	}
}

func (t *Translator) convertTableSourceInner(ts *tidbast.TableSource) (ast.TableFactor, error) {
	alias := ts.AsName.O
	switch src := ts.Source.(type) {
	case *tidbast.TableName:
		return ast.TableFactor{Name: src.Name.O, Alias: alias}, nil
	case *tidbast.SelectStmt:
		q, err := t.convertSelectStmt(src)
		if err != nil {
			return ast.TableFactor{}, err
		}
		return ast.TableFactor{Derived: q, Alias: alias}, nil
	default:
		return ast.TableFactor{}, &UnsupportedStatement{Kind: fmt.Sprintf("table source %T", src)}
	}
}

func singleTableName(refs *tidbast.TableRefsClause) (string, error) {
	if refs == nil || refs.TableRefs == nil {
		return "", &UnsupportedStatement{Kind: "missing table reference"}
	}
	j := refs.TableRefs
	var n tidbast.ResultSetNode = j
	if j.Right == nil {
		n = j.Left
	}
	switch src := n.(type) {
	case *tidbast.TableSource:
		if tn, ok := src.Source.(*tidbast.TableName); ok {
			return tn.Name.O, nil
		}
	case *tidbast.TableName:
		return src.Name.O, nil
	}
	return "", &UnsupportedStatement{Kind: "multi-table INSERT/UPDATE/DELETE target"}
}

func (t *Translator) convertInsertStmt(s *tidbast.InsertStmt) (ast.Statement, error) {
	table, err := singleTableName(s.Table)
	if err != nil {
		return nil, err
	}
	columns := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		columns[i] = c.Name.O
	}

	var source ast.InsertSource
	if len(s.Lists) > 0 {
		source.Values = make([][]ast.Expr, len(s.Lists))
		for i, row := range s.Lists {
			vals := make([]ast.Expr, len(row))
			for j, v := range row {
				e, err := t.convertExpr(v)
				if err != nil {
					return nil, err
				}
				vals[j] = e
			}
			source.Values[i] = vals
		}
	} else if s.Select != nil {
		sel, ok := s.Select.(*tidbast.SelectStmt)
		if !ok {
			return nil, &UnsupportedStatement{Kind: "INSERT ... SELECT with set operation"}
		}
		q, err := t.convertSelectStmt(sel)
		if err != nil {
			return nil, err
		}
		source.Select = q
	}

	return ast.InsertStatement{Table: table, Columns: columns, Source: source}, nil
}

func (t *Translator) convertUpdateStmt(s *tidbast.UpdateStmt) (ast.Statement, error) {
	table, err := singleTableName(s.TableRefs)
	if err != nil {
		return nil, err
	}
	assignments := make([]ast.Assignment, len(s.List))
	for i, a := range s.List {
		val, err := t.convertExpr(a.Expr)
		if err != nil {
			return nil, err
		}
		assignments[i] = ast.Assignment{Column: a.Column.Name.O, Value: val}
	}
	var where ast.Expr
	if s.Where != nil {
		where, err = t.convertExpr(s.Where)
		if err != nil {
			return nil, err
		}
	}
	return ast.UpdateStatement{Table: table, Assignments: assignments, Where: where}, nil
}

func (t *Translator) convertDeleteStmt(s *tidbast.DeleteStmt) (ast.Statement, error) {
	table, err := singleTableName(s.TableRefs)
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if s.Where != nil {
		where, err = t.convertExpr(s.Where)
		if err != nil {
			return nil, err
		}
	}
	return ast.DeleteStatement{Table: table, Where: where}, nil
}
