package eval

import (
	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

func (e *Evaluator) evalBinary(b ast.BinaryOp) (value.Value, error) {
	switch b.Op {
	case ast.OpAnd:
		return e.evalLogical(b, true)
	case ast.OpOr:
		return e.evalLogical(b, false)
	}

	l, err := e.Eval(b.Left)
	if err != nil {
		return value.Value{}, err
	}
	r, err := e.Eval(b.Right)
	if err != nil {
		return value.Value{}, err
	}

	switch b.Op {
	case ast.OpAdd:
		return arithWrap(value.Add(l, r))
	case ast.OpSub:
		return arithWrap(value.Sub(l, r))
	case ast.OpMul:
		return arithWrap(value.Mul(l, r))
	case ast.OpDiv:
		return arithWrap(value.Div(l, r))
	case ast.OpMod:
		return arithWrap(value.Mod(l, r))
	case ast.OpConcat:
		return evalConcat(l, r)
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq:
		return evalComparison(l, r, b.Op)
	case ast.OpXor:
		return evalBoolXor(l, r)
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShiftLeft, ast.OpShiftRight:
		return evalBitwise(l, r, b.Op)
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "UnsupportedOperator", "unsupported binary operator")
	}
}

// evalLogical implements three-valued AND/OR (spec §4.3): a Null operand
// only forces a Null result when the other operand cannot already decide
// it (False for AND, True for OR short-circuits to a definite result).
func (e *Evaluator) evalLogical(b ast.BinaryOp, isAnd bool) (value.Value, error) {
	l, err := e.Eval(b.Left)
	if err != nil {
		return value.Value{}, err
	}
	if !l.IsNull() {
		lb, ok := l.Bool()
		if !ok {
			return value.Value{}, glueerr.BooleanRequired()
		}
		if isAnd && !lb {
			return value.NewBool(false), nil
		}
		if !isAnd && lb {
			return value.NewBool(true), nil
		}
	}

	r, err := e.Eval(b.Right)
	if err != nil {
		return value.Value{}, err
	}
	if !r.IsNull() {
		rb, ok := r.Bool()
		if !ok {
			return value.Value{}, glueerr.BooleanRequired()
		}
		if isAnd && !rb {
			return value.NewBool(false), nil
		}
		if !isAnd && rb {
			return value.NewBool(true), nil
		}
	}

	if l.IsNull() || r.IsNull() {
		return value.NewNull(), nil
	}
	lb, _ := l.Bool()
	rb, _ := r.Bool()
	if isAnd {
		return value.NewBool(lb && rb), nil
	}
	return value.NewBool(lb || rb), nil
}

func evalBoolXor(l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.NewNull(), nil
	}
	lb, ok1 := l.Bool()
	rb, ok2 := r.Bool()
	if !ok1 || !ok2 {
		return value.Value{}, glueerr.BooleanRequired()
	}
	return value.NewBool(lb != rb), nil
}

func evalConcat(l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.NewNull(), nil
	}
	ls, ok1 := l.Text()
	rs, ok2 := r.Text()
	if !ok1 || !ok2 {
		return value.Value{}, glueerr.FunctionRequiresKindValue("||", "Text")
	}
	return value.NewText(ls + rs), nil
}

func evalComparison(l, r value.Value, op ast.BinaryOperator) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.NewNull(), nil
	}
	if op == ast.OpEq || op == ast.OpNotEq {
		eq, isNull := value.Equal(l, r)
		if isNull {
			return value.NewNull(), nil
		}
		if op == ast.OpNotEq {
			eq = !eq
		}
		return value.NewBool(eq), nil
	}

	cmp, err := value.Compare(l, r)
	if err != nil {
		return value.Value{}, glueerr.CrossTypeComparisonRejected(l.Kind.String(), r.Kind.String())
	}
	switch op {
	case ast.OpLt:
		return value.NewBool(cmp < 0), nil
	case ast.OpGt:
		return value.NewBool(cmp > 0), nil
	case ast.OpLtEq:
		return value.NewBool(cmp <= 0), nil
	case ast.OpGtEq:
		return value.NewBool(cmp >= 0), nil
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "UnsupportedOperator", "unsupported comparison operator")
	}
}

func evalBitwise(l, r value.Value, op ast.BinaryOperator) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.NewNull(), nil
	}
	li, ok1 := l.Int64()
	ri, ok2 := r.Int64()
	if !ok1 || !ok2 {
		return value.Value{}, glueerr.FunctionRequiresKindValue("bitwise operator", "Integer")
	}
	switch op {
	case ast.OpBitAnd:
		return value.NewInt64(li & ri), nil
	case ast.OpBitOr:
		return value.NewInt64(li | ri), nil
	case ast.OpBitXor:
		return value.NewInt64(li ^ ri), nil
	case ast.OpShiftLeft:
		return value.NewInt64(li << uint(ri)), nil
	case ast.OpShiftRight:
		return value.NewInt64(li >> uint(ri)), nil
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "UnsupportedOperator", "unsupported bitwise operator")
	}
}

func (e *Evaluator) evalBetween(b ast.Between) (value.Value, error) {
	v, err := e.Eval(b.Expr)
	if err != nil {
		return value.Value{}, err
	}
	lo, err := e.Eval(b.Low)
	if err != nil {
		return value.Value{}, err
	}
	hi, err := e.Eval(b.High)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return value.NewNull(), nil
	}
	geLo, err := evalComparison(v, lo, ast.OpGtEq)
	if err != nil {
		return value.Value{}, err
	}
	leHi, err := evalComparison(v, hi, ast.OpLtEq)
	if err != nil {
		return value.Value{}, err
	}
	geb, _ := geLo.Bool()
	leb, _ := leHi.Bool()
	result := geb && leb
	if b.Negate {
		result = !result
	}
	return value.NewBool(result), nil
}

func (e *Evaluator) evalInList(in ast.InList) (value.Value, error) {
	v, err := e.Eval(in.Expr)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() {
		return value.NewNull(), nil
	}
	sawNull := false
	for _, item := range in.List {
		iv, err := e.Eval(item)
		if err != nil {
			return value.Value{}, err
		}
		if iv.IsNull() {
			sawNull = true
			continue
		}
		eq, isNull := value.Equal(v, iv)
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
