package translate

import (
	"fmt"
	"strings"

	tidbast "github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"
	"github.com/pingcap/tidb/pkg/types"

	"github.com/glue-sql/glue/ast"
)

var binaryOps = map[opcode.Op]ast.BinaryOperator{
	opcode.Plus:      ast.OpAdd,
	opcode.Minus:     ast.OpSub,
	opcode.Mul:       ast.OpMul,
	opcode.Div:       ast.OpDiv,
	opcode.Mod:       ast.OpMod,
	opcode.EQ:        ast.OpEq,
	opcode.NE:        ast.OpNotEq,
	opcode.LT:        ast.OpLt,
	opcode.GT:        ast.OpGt,
	opcode.LE:        ast.OpLtEq,
	opcode.GE:        ast.OpGtEq,
	opcode.LogicAnd:  ast.OpAnd,
	opcode.LogicOr:   ast.OpOr,
	opcode.LogicXor:  ast.OpXor,
	opcode.And:       ast.OpBitAnd,
	opcode.Or:        ast.OpBitOr,
	opcode.Xor:       ast.OpBitXor,
	opcode.LeftShift: ast.OpShiftLeft,
	opcode.RightShift: ast.OpShiftRight,
}

var unaryOps = map[opcode.Op]ast.UnaryOperator{
	opcode.Not:    ast.UnaryNot,
	opcode.Minus:  ast.UnaryNeg,
	opcode.BitNeg: ast.UnaryBitNot,
}

func (t *Translator) convertExpr(n tidbast.ExprNode) (ast.Expr, error) {
	switch e := n.(type) {
	case nil:
		return nil, nil
	case *tidbast.ColumnNameExpr:
		if e.Name.Table.O != "" {
			return ast.CompoundIdent{Table: e.Name.Table.O, Name: e.Name.Name.O}, nil
		}
		return ast.Ident{Name: e.Name.Name.O}, nil
	case *driver.ValueExpr:
		return convertValueExpr(e)
	case *tidbast.ParenthesesExpr:
		inner, err := t.convertExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		return ast.Nested{Inner: inner}, nil
	case *tidbast.BinaryOperationExpr:
		return t.convertBinaryOp(e)
	case *tidbast.UnaryOperationExpr:
		return t.convertUnaryOp(e)
	case *tidbast.IsNullExpr:
		return t.convertIsNull(e)
	case *tidbast.IsTruthExpr:
		return t.convertIsTruth(e)
	case *tidbast.BetweenExpr:
		return t.convertBetween(e)
	case *tidbast.PatternInExpr:
		return t.convertPatternIn(e)
	case *tidbast.PatternLikeOrIlikeExpr:
		return t.convertLike(e)
	case *tidbast.SubqueryExpr:
		q, err := t.convertSelectStmt(asSelect(e.Query))
		if err != nil {
			return nil, err
		}
		return ast.Subquery{Query: q}, nil
	case *tidbast.ExistsSubqueryExpr:
		sub, ok := e.Sel.(*tidbast.SubqueryExpr)
		if !ok {
			return nil, &UnsupportedExpr{Kind: "EXISTS of non-subquery"}
		}
		q, err := t.convertSelectStmt(asSelect(sub.Query))
		if err != nil {
			return nil, err
		}
		return ast.Exists{Query: q, Negate: e.Not}, nil
	case *tidbast.CaseExpr:
		return t.convertCase(e)
	case *tidbast.FuncCallExpr:
		return t.convertFuncCall(e)
	case *tidbast.AggregateFuncExpr:
		return t.convertAggregate(e)
	case *tidbast.FuncCastExpr:
		return t.convertCast(e)
	case *tidbast.ColumnName:
		return ast.Ident{Name: e.Name.O}, nil
	default:
		return nil, &UnsupportedExpr{Kind: fmt.Sprintf("%T", n)}
	}
}

// asSelect narrows a ResultSetNode subquery body to the SelectStmt this
// engine's Query model supports (spec §4.1 Non-goals on set operations).
func asSelect(n tidbast.ResultSetNode) *tidbast.SelectStmt {
	if sel, ok := n.(*tidbast.SelectStmt); ok {
		return sel
	}
	return nil
}

func convertValueExpr(e *driver.ValueExpr) (ast.Expr, error) {
	d := e.Datum
	if d.IsNull() {
		return ast.Literal{Kind: ast.LitNull}, nil
	}
	switch d.Kind() {
	case types.KindInt64, types.KindUint64, types.KindFloat32, types.KindFloat64, types.KindMysqlDecimal:
		s, err := d.ToString()
		if err != nil {
			return nil, fmt.Errorf("numeric literal: %w", err)
		}
		return ast.Literal{Kind: ast.LitNumber, Text: s}, nil
	case types.KindString, types.KindBytes:
		return ast.Literal{Kind: ast.LitString, Text: d.GetString()}, nil
	default:
		s, err := d.ToString()
		if err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		return ast.Literal{Kind: ast.LitString, Text: s}, nil
	}
}

func (t *Translator) convertBinaryOp(e *tidbast.BinaryOperationExpr) (ast.Expr, error) {
	op, ok := binaryOps[e.Op]
	if !ok {
		return nil, &UnsupportedOperator{Op: e.Op.String()}
	}
	l, err := t.convertExpr(e.L)
	if err != nil {
		return nil, err
	}
	r, err := t.convertExpr(e.R)
	if err != nil {
		return nil, err
	}
	return ast.BinaryOp{Left: l, Op: op, Right: r}, nil
}

func (t *Translator) convertUnaryOp(e *tidbast.UnaryOperationExpr) (ast.Expr, error) {
	op, ok := unaryOps[e.Op]
	if !ok {
		return nil, &UnsupportedOperator{Op: e.Op.String()}
	}
	inner, err := t.convertExpr(e.V)
	if err != nil {
		return nil, err
	}
	return ast.UnaryOp{Op: op, Expr: inner}, nil
}

func (t *Translator) convertIsNull(e *tidbast.IsNullExpr) (ast.Expr, error) {
	inner, err := t.convertExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	op := ast.OpEq
	if e.Not {
		op = ast.OpNotEq
	}
	return ast.BinaryOp{Left: inner, Op: op, Right: ast.Literal{Kind: ast.LitNull}}, nil
}

func (t *Translator) convertIsTruth(e *tidbast.IsTruthExpr) (ast.Expr, error) {
	inner, err := t.convertExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	want := e.True != 0
	if e.Not {
		want = !want
	}
	return ast.BinaryOp{Left: inner, Op: ast.OpEq, Right: ast.Literal{Kind: ast.LitBool, Bool: want}}, nil
}

func (t *Translator) convertBetween(e *tidbast.BetweenExpr) (ast.Expr, error) {
	expr, err := t.convertExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	lo, err := t.convertExpr(e.Left)
	if err != nil {
		return nil, err
	}
	hi, err := t.convertExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return ast.Between{Expr: expr, Low: lo, High: hi, Negate: e.Not}, nil
}

func (t *Translator) convertPatternIn(e *tidbast.PatternInExpr) (ast.Expr, error) {
	expr, err := t.convertExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	if e.Sel != nil {
		sub, ok := e.Sel.(*tidbast.SubqueryExpr)
		if !ok {
			return nil, &UnsupportedExpr{Kind: "IN of non-subquery"}
		}
		q, err := t.convertSelectStmt(asSelect(sub.Query))
		if err != nil {
			return nil, err
		}
		return ast.InSubquery{Expr: expr, Subquery: q, Negate: e.Not}, nil
	}
	list := make([]ast.Expr, len(e.List))
	for i, item := range e.List {
		list[i], err = t.convertExpr(item)
		if err != nil {
			return nil, err
		}
	}
	return ast.InList{Expr: expr, List: list, Negate: e.Not}, nil
}

func (t *Translator) convertLike(e *tidbast.PatternLikeOrIlikeExpr) (ast.Expr, error) {
	expr, err := t.convertExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	pat, err := t.convertExpr(e.Pattern)
	if err != nil {
		return nil, err
	}
	return ast.Like{Expr: expr, Pattern: pat, Negate: e.Not, CI: !e.IsLike}, nil
}

func (t *Translator) convertCase(e *tidbast.CaseExpr) (ast.Expr, error) {
	var operand *ast.Expr
	if e.Value != nil {
		v, err := t.convertExpr(e.Value)
		if err != nil {
			return nil, err
		}
		operand = &v
	}
	whens := make([]ast.WhenClause, len(e.WhenClauses))
	for i, w := range e.WhenClauses {
		cond, err := t.convertExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		res, err := t.convertExpr(w.Result)
		if err != nil {
			return nil, err
		}
		whens[i] = ast.WhenClause{When: cond, Then: res}
	}
	var elseExpr ast.Expr
	if e.ElseClause != nil {
		var err error
		elseExpr, err = t.convertExpr(e.ElseClause)
		if err != nil {
			return nil, err
		}
	}
	return ast.Case{Operand: operand, Whens: whens, Else: elseExpr}, nil
}

func (t *Translator) convertFuncCall(e *tidbast.FuncCallExpr) (ast.Expr, error) {
	name := strings.ToUpper(e.FnName.O)
	fn, ok := ast.LookupFunction(name)
	if !ok {
		return nil, &UnsupportedExpr{Kind: "function " + name}
	}
	args := make([]ast.Expr, len(e.Args))
	for i, a := range e.Args {
		conv, err := t.convertExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = conv
	}
	arity := fn.Arity()
	if len(args) < arity.Min || len(args) > arity.Max {
		return nil, &FunctionArgsLengthNotMatching{Name: name, Got: len(args), Min: arity.Min, Max: arity.Max}
	}
	return ast.FuncCall{Func: fn, Args: args}, nil
}

func (t *Translator) convertAggregate(e *tidbast.AggregateFuncExpr) (ast.Expr, error) {
	name := strings.ToUpper(e.F)
	agg, ok := ast.LookupAggregate(name)
	if !ok {
		return nil, &UnsupportedExpr{Kind: "aggregate " + name}
	}
	var arg ast.Expr
	if len(e.Args) > 0 {
		var err error
		arg, err = t.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
	}
	return ast.AggregateCall{Agg: agg, Arg: arg, Distinct: e.Distinct}, nil
}

func (t *Translator) convertCast(e *tidbast.FuncCastExpr) (ast.Expr, error) {
	inner, err := t.convertExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	dt, err := lookupFieldType(e.Tp)
	if err != nil {
		return nil, err
	}
	return ast.Cast{Expr: inner, DataType: dt}, nil
}
