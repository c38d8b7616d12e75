package eval

import (
	"fmt"
	"strings"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

// Subquery evaluates a *ast.Query against the current storage snapshot
// and is supplied by the executor (which alone knows how to run a full
// Select pipeline); Evaluator only needs the result back as rows of
// Values, per spec §4.3's "current storage snapshot" wording.
type Subquery func(q *ast.Query) ([][]value.Value, error)

// Evaluator evaluates ast.Expr trees to value.Value. A nil RowContext
// puts it in stateless mode (spec §4.3): only constant expressions,
// literals, and functions with no column reference may be evaluated.
type Evaluator struct {
	Ctx      *RowContext
	Subquery Subquery
}

func New(ctx *RowContext, sub Subquery) *Evaluator {
	return &Evaluator{Ctx: ctx, Subquery: sub}
}

func (e *Evaluator) Eval(expr ast.Expr) (value.Value, error) {
	switch x := expr.(type) {
	case nil:
		return value.NewNull(), nil
	case ast.Literal:
		return e.evalLiteral(x)
	case ast.TypedString:
		return e.evalTypedString(x)
	case ast.Ident:
		if e.Ctx == nil {
			return value.Value{}, glueerr.New(glueerr.Evaluate, "NoRowContext", "identifier %q requires a row context", x.Name)
		}
		return e.Ctx.Resolve(x.Name)
	case ast.CompoundIdent:
		if e.Ctx == nil {
			return value.Value{}, glueerr.New(glueerr.Evaluate, "NoRowContext", "identifier %q requires a row context", x.Name)
		}
		return e.Ctx.ResolveQualified(x.Table, x.Name)
	case ast.Nested:
		return e.Eval(x.Inner)
	case ast.UnaryOp:
		return e.evalUnary(x)
	case ast.BinaryOp:
		return e.evalBinary(x)
	case ast.Between:
		return e.evalBetween(x)
	case ast.InList:
		return e.evalInList(x)
	case ast.InSubquery:
		return e.evalInSubquery(x)
	case ast.Like:
		return e.evalLike(x)
	case ast.Case:
		return e.evalCase(x)
	case ast.Cast:
		return e.evalCast(x)
	case ast.Extract:
		return e.evalExtract(x)
	case ast.Subquery:
		return e.evalScalarSubquery(x)
	case ast.Exists:
		return e.evalExists(x)
	case ast.FuncCall:
		return e.evalFuncCall(x)
	case ast.AggregateCall:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "AggregateOutsideGroupContext", "aggregate functions require a grouped context")
	default:
		return value.Value{}, fmt.Errorf("eval: unhandled expr %T", expr)
	}
}

// EvalBool evaluates expr and interprets the three-valued result as a
// predicate: true, false, or null (spec §4.3 "comparisons return a
// three-valued result"). A non-boolean, non-null result is an error.
func (e *Evaluator) EvalBool(expr ast.Expr) (result bool, isNull bool, err error) {
	v, err := e.Eval(expr)
	if err != nil {
		return false, false, err
	}
	if v.IsNull() {
		return false, true, nil
	}
	b, ok := v.Bool()
	if !ok {
		return false, false, glueerr.BooleanRequired()
	}
	return b, false, nil
}

func (e *Evaluator) evalLiteral(lit ast.Literal) (value.Value, error) {
	switch lit.Kind {
	case ast.LitNull:
		return value.NewNull(), nil
	case ast.LitBool:
		return value.NewBool(lit.Bool), nil
	case ast.LitString:
		return value.NewText(lit.Text), nil
	case ast.LitBytea:
		return value.NewBytea([]byte(lit.Text)), nil
	case ast.LitNumber:
		return parseNumberLiteral(lit.Text)
	default:
		return value.Value{}, fmt.Errorf("eval: unknown literal kind %d", lit.Kind)
	}
}

// parseNumberLiteral canonicalizes a numeric literal's decimal text into
// an Int64 (when it fits and has no fractional part) or a Decimal
// otherwise, the widest-by-default representation the planner/executor
// then narrow via assignment coercion.
func parseNumberLiteral(text string) (value.Value, error) {
	if !strings.ContainsAny(text, ".eE") {
		var i int64
		if _, err := fmt.Sscanf(text, "%d", &i); err == nil {
			return value.NewInt64(i), nil
		}
	}
	d, err := value.NewDecimalFromString(text)
	if err != nil {
		return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "invalid numeric literal %q", text)
	}
	return value.NewDecimal(d), nil
}

func (e *Evaluator) evalTypedString(ts ast.TypedString) (value.Value, error) {
	return Cast(value.NewText(ts.Text), ts.DataType)
}

func (e *Evaluator) evalUnary(u ast.UnaryOp) (value.Value, error) {
	v, err := e.Eval(u.Expr)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() {
		return value.NewNull(), nil
	}
	switch u.Op {
	case ast.UnaryNot:
		b, ok := v.Bool()
		if !ok {
			return value.Value{}, glueerr.BooleanRequired()
		}
		return value.NewBool(!b), nil
	case ast.UnaryNeg:
		zero := value.NewInt64(0)
		return arithWrap(value.Sub(zero, v))
	case ast.UnaryBitNot:
		i, ok := v.Int64()
		if !ok {
			return value.Value{}, glueerr.FunctionRequiresKindValue("unary ~", "Integer")
		}
		return value.NewInt64(^i), nil
	default:
		return value.Value{}, fmt.Errorf("eval: unknown unary operator")
	}
}

func arithWrap(v value.Value, err error) (value.Value, error) {
	if err == nil {
		return v, nil
	}
	switch {
	case err == value.ErrOverflow:
		return value.Value{}, glueerr.BinaryOperationOverflow("arithmetic")
	case err == value.ErrDivByZero:
		return value.Value{}, glueerr.InvalidDivisorZero()
	default:
		return value.Value{}, glueerr.Wrap(glueerr.Evaluate, "ArithmeticError", err, "arithmetic failed")
	}
}
