package eval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

func numLit(text string) ast.Expr { return ast.Literal{Kind: ast.LitNumber, Text: text} }
func strLit(s string) ast.Expr    { return ast.Literal{Kind: ast.LitString, Text: s} }
func boolLit(b bool) ast.Expr     { return ast.Literal{Kind: ast.LitBool, Bool: b} }
func nullLit() ast.Expr           { return ast.Literal{Kind: ast.LitNull} }

func TestArithmeticOverflow(t *testing.T) {
	e := New(nil, nil)
	expr := ast.BinaryOp{
		Left:  ast.Literal{Kind: ast.LitNumber, Text: "9223372036854775807"},
		Op:    ast.OpAdd,
		Right: numLit("1"),
	}
	_, err := e.Eval(expr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.BinaryOperationOverflow("arithmetic")))
}

func TestDivisionByZero(t *testing.T) {
	e := New(nil, nil)
	expr := ast.BinaryOp{Left: numLit("1"), Op: ast.OpDiv, Right: numLit("0")}
	_, err := e.Eval(expr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.InvalidDivisorZero()))
}

func TestThreeValuedAnd(t *testing.T) {
	e := New(nil, nil)

	// FALSE AND NULL => FALSE (determining false operand short-circuits).
	v, err := e.Eval(ast.BinaryOp{Left: boolLit(false), Op: ast.OpAnd, Right: nullLit()})
	require.NoError(t, err)
	b, ok := v.Bool()
	require.True(t, ok)
	assert.False(t, b)

	// TRUE AND NULL => NULL.
	v, err = e.Eval(ast.BinaryOp{Left: boolLit(true), Op: ast.OpAnd, Right: nullLit()})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestThreeValuedOr(t *testing.T) {
	e := New(nil, nil)

	// TRUE OR NULL => TRUE.
	v, err := e.Eval(ast.BinaryOp{Left: boolLit(true), Op: ast.OpOr, Right: nullLit()})
	require.NoError(t, err)
	b, ok := v.Bool()
	require.True(t, ok)
	assert.True(t, b)

	// FALSE OR NULL => NULL.
	v, err = e.Eval(ast.BinaryOp{Left: boolLit(false), Op: ast.OpOr, Right: nullLit()})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestComparisonNullPropagation(t *testing.T) {
	e := New(nil, nil)
	v, err := e.Eval(ast.BinaryOp{Left: numLit("1"), Op: ast.OpEq, Right: nullLit()})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestCrossTypeComparisonRejected(t *testing.T) {
	e := New(nil, nil)
	_, err := e.Eval(ast.BinaryOp{Left: numLit("1"), Op: ast.OpLt, Right: strLit("a")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.CrossTypeComparisonRejected("", "")))
}

func TestLikeWithWildcardsAndEscape(t *testing.T) {
	e := New(nil, nil)
	tests := []struct {
		subject, pattern string
		want             bool
	}{
		{"hello", "h%", true},
		{"hello", "h_llo", true},
		{"hello", "he__o", true},
		{"100%", "100\\%", true},
		{"100x", "100\\%", false},
	}
	for _, tc := range tests {
		v, err := e.Eval(ast.Like{Expr: strLit(tc.subject), Pattern: strLit(tc.pattern)})
		require.NoError(t, err)
		b, _ := v.Bool()
		assert.Equal(t, tc.want, b, "%q LIKE %q", tc.subject, tc.pattern)
	}
}

func TestILikeCaseInsensitive(t *testing.T) {
	e := New(nil, nil)
	v, err := e.Eval(ast.Like{Expr: strLit("HELLO"), Pattern: strLit("hell_"), CI: true})
	require.NoError(t, err)
	b, _ := v.Bool()
	assert.True(t, b)
}

func TestCastTextToInt(t *testing.T) {
	v, err := Cast(value.NewText("42"), ast.TypeInt64)
	require.NoError(t, err)
	i, ok := v.Int64()
	require.True(t, ok)
	assert.EqualValues(t, 42, i)
}

func TestCastNullPassesThrough(t *testing.T) {
	v, err := Cast(value.NewNull(), ast.TypeInt64)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestExtractYearFromDateTypedString(t *testing.T) {
	e := New(nil, nil)
	v, err := e.Eval(ast.Extract{
		Field: ast.ExtractYear,
		Expr:  ast.TypedString{DataType: ast.TypeDate, Text: "2024-03-15"},
	})
	require.NoError(t, err)
	y, ok := v.Int64()
	require.True(t, ok)
	assert.EqualValues(t, 2024, y)
}

func TestCaseSearchedForm(t *testing.T) {
	e := New(nil, nil)
	c := ast.Case{
		Whens: []ast.WhenClause{
			{When: boolLit(false), Then: strLit("no")},
			{When: boolLit(true), Then: strLit("yes")},
		},
		Else: strLit("else"),
	}
	v, err := e.Eval(c)
	require.NoError(t, err)
	s, _ := v.Text()
	assert.Equal(t, "yes", s)
}

func TestCaseFallsThroughToElse(t *testing.T) {
	e := New(nil, nil)
	c := ast.Case{
		Whens: []ast.WhenClause{
			{When: boolLit(false), Then: strLit("no")},
		},
		Else: strLit("else"),
	}
	v, err := e.Eval(c)
	require.NoError(t, err)
	s, _ := v.Text()
	assert.Equal(t, "else", s)
}

func TestScalarSubqueryCardinalityViolation(t *testing.T) {
	sub := func(q *ast.Query) ([][]value.Value, error) {
		return [][]value.Value{{value.NewInt64(1)}, {value.NewInt64(2)}}, nil
	}
	e := New(nil, sub)
	_, err := e.Eval(ast.Subquery{Query: &ast.Query{}})
	require.Error(t, err)
}

func TestScalarSubqueryEmptyYieldsNull(t *testing.T) {
	sub := func(q *ast.Query) ([][]value.Value, error) { return nil, nil }
	e := New(nil, sub)
	v, err := e.Eval(ast.Subquery{Query: &ast.Query{}})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestExistsNeverFailsOnCardinality(t *testing.T) {
	sub := func(q *ast.Query) ([][]value.Value, error) {
		return [][]value.Value{{value.NewInt64(1)}, {value.NewInt64(2)}}, nil
	}
	e := New(nil, sub)
	v, err := e.Eval(ast.Exists{Query: &ast.Query{}})
	require.NoError(t, err)
	b, _ := v.Bool()
	assert.True(t, b)
}

func TestInSubqueryRequiresSingleColumn(t *testing.T) {
	sub := func(q *ast.Query) ([][]value.Value, error) {
		return [][]value.Value{{value.NewInt64(1), value.NewInt64(2)}}, nil
	}
	e := New(nil, sub)
	_, err := e.Eval(ast.InSubquery{Expr: numLit("1"), Subquery: &ast.Query{}})
	require.Error(t, err)
}

func TestRowContextAmbiguousUnqualifiedName(t *testing.T) {
	ctx := NewRowContext()
	ctx.Bind("a", map[string]value.Value{"id": value.NewInt64(1)})
	ctx.Bind("b", map[string]value.Value{"id": value.NewInt64(2)})
	_, err := ctx.Resolve("id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, glueerr.ColumnReferenceAmbiguous("id")))

	v, err := ctx.ResolveQualified("a", "id")
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.EqualValues(t, 1, i)
}

func TestFunctionDispatchUpperAndConcat(t *testing.T) {
	e := New(nil, nil)
	v, err := e.Eval(ast.FuncCall{Func: ast.FuncUpper, Args: []ast.Expr{strLit("abc")}})
	require.NoError(t, err)
	s, _ := v.Text()
	assert.Equal(t, "ABC", s)

	v, err = e.Eval(ast.FuncCall{Func: ast.FuncConcat, Args: []ast.Expr{strLit("ab"), strLit("cd")}})
	require.NoError(t, err)
	s, _ = v.Text()
	assert.Equal(t, "abcd", s)
}

func TestFunctionRequiresKindValueError(t *testing.T) {
	e := New(nil, nil)
	_, err := e.Eval(ast.FuncCall{Func: ast.FuncUpper, Args: []ast.Expr{numLit("1")}})
	require.Error(t, err)
	var ge *glueerr.Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, glueerr.Evaluate, ge.Kind)
}

func TestLpadRpad(t *testing.T) {
	e := New(nil, nil)
	v, err := e.Eval(ast.FuncCall{Func: ast.FuncLpad, Args: []ast.Expr{strLit("5"), numLit("3"), strLit("0")}})
	require.NoError(t, err)
	s, _ := v.Text()
	assert.Equal(t, "005", s)

	v, err = e.Eval(ast.FuncCall{Func: ast.FuncRpad, Args: []ast.Expr{strLit("5"), numLit("3"), strLit("0")}})
	require.NoError(t, err)
	s, _ = v.Text()
	assert.Equal(t, "500", s)
}

func TestAggregateCallRejectedInEval(t *testing.T) {
	e := New(nil, nil)
	_, err := e.Eval(ast.AggregateCall{Agg: ast.AggCount})
	require.Error(t, err)
}

func TestCountStarNeverNull(t *testing.T) {
	acc := NewAccumulator(ast.AggCount, true, false)
	require.NoError(t, acc.Accumulate(value.NewNull()))
	require.NoError(t, acc.Accumulate(value.NewInt64(1)))
	v, err := acc.Result()
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.EqualValues(t, 2, i)
}

func TestCountExprSkipsNulls(t *testing.T) {
	acc := NewAccumulator(ast.AggCount, false, false)
	require.NoError(t, acc.Accumulate(value.NewNull()))
	require.NoError(t, acc.Accumulate(value.NewInt64(1)))
	v, err := acc.Result()
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.EqualValues(t, 1, i)
}

func TestSumAllNullGroupReturnsNull(t *testing.T) {
	acc := NewAccumulator(ast.AggSum, false, false)
	require.NoError(t, acc.Accumulate(value.NewNull()))
	require.NoError(t, acc.Accumulate(value.NewNull()))
	v, err := acc.Result()
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestSumAccumulates(t *testing.T) {
	acc := NewAccumulator(ast.AggSum, false, false)
	require.NoError(t, acc.Accumulate(value.NewInt64(2)))
	require.NoError(t, acc.Accumulate(value.NewInt64(3)))
	v, err := acc.Result()
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.EqualValues(t, 5, i)
}

func TestDistinctCount(t *testing.T) {
	acc := NewAccumulator(ast.AggCount, false, true)
	require.NoError(t, acc.Accumulate(value.NewInt64(1)))
	require.NoError(t, acc.Accumulate(value.NewInt64(1)))
	require.NoError(t, acc.Accumulate(value.NewInt64(2)))
	v, err := acc.Result()
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.EqualValues(t, 2, i)
}

func TestMinMax(t *testing.T) {
	minAcc := NewAccumulator(ast.AggMin, false, false)
	maxAcc := NewAccumulator(ast.AggMax, false, false)
	for _, n := range []int64{5, 1, 3} {
		require.NoError(t, minAcc.Accumulate(value.NewInt64(n)))
		require.NoError(t, maxAcc.Accumulate(value.NewInt64(n)))
	}
	minV, _ := minAcc.Result()
	maxV, _ := maxAcc.Result()
	mn, _ := minV.Int64()
	mx, _ := maxV.Int64()
	assert.EqualValues(t, 1, mn)
	assert.EqualValues(t, 5, mx)
}
