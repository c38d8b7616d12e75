package eval

import (
	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

// evalScalarSubquery implements spec §4.3: "a scalar subquery yielding
// more than one row fails".
func (e *Evaluator) evalScalarSubquery(s ast.Subquery) (value.Value, error) {
	rows, err := e.runSubquery(s.Query)
	if err != nil {
		return value.Value{}, err
	}
	if len(rows) == 0 {
		return value.NewNull(), nil
	}
	if len(rows) > 1 {
		return value.Value{}, glueerr.New(glueerr.Evaluate, "ScalarSubqueryCardinality", "scalar subquery returned more than one row")
	}
	if len(rows[0]) != 1 {
		return value.Value{}, glueerr.New(glueerr.Evaluate, "ScalarSubqueryCardinality", "scalar subquery must project exactly one column")
	}
	return rows[0][0], nil
}

// evalExists implements "EXISTS never fails for cardinality" (spec §4.3).
func (e *Evaluator) evalExists(ex ast.Exists) (value.Value, error) {
	rows, err := e.runSubquery(ex.Query)
	if err != nil {
		return value.Value{}, err
	}
	result := len(rows) > 0
	if ex.Negate {
		result = !result
	}
	return value.NewBool(result), nil
}

// evalInSubquery implements "IN (subquery) requires a single-column
// projection" (spec §4.3).
func (e *Evaluator) evalInSubquery(in ast.InSubquery) (value.Value, error) {
	v, err := e.Eval(in.Expr)
	if err != nil {
		return value.Value{}, err
	}
	rows, err := e.runSubquery(in.Subquery)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() {
		return value.NewNull(), nil
	}
	sawNull := false
	for _, row := range rows {
		if len(row) != 1 {
			return value.Value{}, glueerr.New(glueerr.Evaluate, "SubqueryColumnCount", "IN (subquery) requires a single-column projection")
		}
		if row[0].IsNull() {
			sawNull = true
			continue
		}
		eq, isNull := value.Equal(v, row[0])
		if isNull {
			sawNull = true
			continue
		}
		if eq {
			return value.NewBool(!in.Negate), nil
		}
	}
	if sawNull {
		return value.NewNull(), nil
	}
	return value.NewBool(in.Negate), nil
}

func (e *Evaluator) runSubquery(q *ast.Query) ([][]value.Value, error) {
	if e.Subquery == nil {
		return nil, glueerr.New(glueerr.Evaluate, "NoSubqueryRunner", "subquery evaluation requires an executor-backed runner")
	}
	return e.Subquery(q)
}
