package eval

import (
	"math"
	"strings"
	"time"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

// evalFuncCall dispatches on the Function variant (spec §4.3): arity was
// already checked by the translator against ast.Function.Arity(), so each
// case here only enforces its per-argument type coercion rule.
func (e *Evaluator) evalFuncCall(f ast.FuncCall) (value.Value, error) {
	args := make([]value.Value, len(f.Args))
	for i, a := range f.Args {
		v, err := e.Eval(a)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	switch f.Func {
	case ast.FuncUpper:
		return textFunc(args, f.Func.Name(), strings.ToUpper)
	case ast.FuncLower:
		return textFunc(args, f.Func.Name(), strings.ToLower)
	case ast.FuncTrim:
		return textFunc(args, f.Func.Name(), strings.TrimSpace)
	case ast.FuncLtrim:
		return textFunc(args, f.Func.Name(), func(s string) string { return strings.TrimLeft(s, " ") })
	case ast.FuncRtrim:
		return textFunc(args, f.Func.Name(), func(s string) string { return strings.TrimRight(s, " ") })
	case ast.FuncReverse:
		return textFunc(args, f.Func.Name(), reverseString)
	case ast.FuncLength:
		return evalLength(args)
	case ast.FuncSubstr:
		return evalSubstr(args)
	case ast.FuncRepeat:
		return evalRepeat(args)
	case ast.FuncConcat:
		return evalConcatFunc(args)
	case ast.FuncAbs:
		return evalAbs(args)
	case ast.FuncRound:
		return evalRound(args)
	case ast.FuncFloor:
		return numericFunc(args, f.Func.Name(), math.Floor)
	case ast.FuncCeil:
		return numericFunc(args, f.Func.Name(), math.Ceil)
	case ast.FuncPow:
		return evalPow(args)
	case ast.FuncSqrt:
		return numericFunc(args, f.Func.Name(), math.Sqrt)
	case ast.FuncMod:
		return evalFuncMod(args)
	case ast.FuncNow:
		return evalNow()
	case ast.FuncCoalesce:
		return evalCoalesce(args)
	case ast.FuncIfNull:
		return evalIfNull(args)
	case ast.FuncGenerateUuid:
		return value.NewUuid(value.NewUuidV4()), nil
	case ast.FuncLpad:
		return evalPad(args, true)
	case ast.FuncRpad:
		return evalPad(args, false)
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "UnsupportedFunction", "unsupported function %s", f.Func.Name())
	}
}

func anyNull(args []value.Value) bool {
	for _, a := range args {
		if a.IsNull() {
			return true
		}
	}
	return false
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func textFunc(args []value.Value, name string, f func(string) string) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	s, ok := args[0].Text()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue(name, "Text")
	}
	return value.NewText(f(s)), nil
}

func numericFunc(args []value.Value, name string, f func(float64) float64) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	if !args[0].IsNumeric() {
		return value.Value{}, glueerr.FunctionRequiresKindValue(name, "numeric")
	}
	n, _ := args[0].AsFloat64()
	return value.NewFloat64(f(n))
}

func evalLength(args []value.Value) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	s, ok := args[0].Text()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue("LENGTH", "Text")
	}
	return value.NewInt64(int64(len([]rune(s)))), nil
}

func evalSubstr(args []value.Value) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	s, ok := args[0].Text()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue("SUBSTR", "Text")
	}
	start, ok := args[1].Int64()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue("SUBSTR", "Integer")
	}
	r := []rune(s)
	idx := int(start) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(r) {
		idx = len(r)
	}
	end := len(r)
	if len(args) == 3 {
		length, ok := args[2].Int64()
		if !ok {
			return value.Value{}, glueerr.FunctionRequiresKindValue("SUBSTR", "Integer")
		}
		end = idx + int(length)
		if end > len(r) {
			end = len(r)
		}
		if end < idx {
			end = idx
		}
	}
	return value.NewText(string(r[idx:end])), nil
}

func evalRepeat(args []value.Value) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	s, ok := args[0].Text()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue("REPEAT", "Text")
	}
	n, ok := args[1].Int64()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue("REPEAT", "Integer")
	}
	if n < 0 {
		n = 0
	}
	return value.NewText(strings.Repeat(s, int(n))), nil
}

func evalConcatFunc(args []value.Value) (value.Value, error) {
	var sb strings.Builder
	for _, a := range args {
		if a.IsNull() {
			return value.NewNull(), nil
		}
		s, ok := a.Text()
		if !ok {
			return value.Value{}, glueerr.FunctionRequiresKindValue("CONCAT", "Text")
		}
		sb.WriteString(s)
	}
	return value.NewText(sb.String()), nil
}

func evalAbs(args []value.Value) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	v := args[0]
	if !v.IsNumeric() {
		return value.Value{}, glueerr.FunctionRequiresKindValue("ABS", "numeric")
	}
	if d, ok := v.DecimalVal(); ok {
		if d.Cmp(zeroDecimal()) < 0 {
			return value.NewDecimal(d.Neg()), nil
		}
		return v, nil
	}
	f, _ := v.AsFloat64()
	return value.NewFloat64(math.Abs(f))
}

func zeroDecimal() value.Decimal {
	d, _ := value.NewDecimalFromString("0")
	return d
}

func evalRound(args []value.Value) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	if !args[0].IsNumeric() {
		return value.Value{}, glueerr.FunctionRequiresKindValue("ROUND", "numeric")
	}
	n, _ := args[0].AsFloat64()
	places := 0
	if len(args) == 2 {
		p, ok := args[1].Int64()
		if !ok {
			return value.Value{}, glueerr.FunctionRequiresKindValue("ROUND", "Integer")
		}
		places = int(p)
	}
	scale := math.Pow(10, float64(places))
	return value.NewFloat64(math.Round(n*scale) / scale)
}

func evalPow(args []value.Value) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	if !args[0].IsNumeric() || !args[1].IsNumeric() {
		return value.Value{}, glueerr.FunctionRequiresKindValue("POW", "numeric")
	}
	base, _ := args[0].AsFloat64()
	exp, _ := args[1].AsFloat64()
	return value.NewFloat64(math.Pow(base, exp))
}

func evalFuncMod(args []value.Value) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	return arithWrap(value.Mod(args[0], args[1]))
}

func evalNow() (value.Value, error) {
	now := time.Now().UTC()
	return value.NewTimestamp(value.Timestamp{
		Date: value.Date{Year: now.Year(), Month: int(now.Month()), Day: now.Day()},
		Time: value.Time{Microseconds: int64(now.Hour())*3_600_000_000 + int64(now.Minute())*60_000_000 + int64(now.Second())*1_000_000 + int64(now.Nanosecond())/1000},
	}), nil
}

func evalCoalesce(args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return value.NewNull(), nil
}

func evalIfNull(args []value.Value) (value.Value, error) {
	if !args[0].IsNull() {
		return args[0], nil
	}
	return args[1], nil
}

func evalPad(args []value.Value, left bool) (value.Value, error) {
	if anyNull(args) {
		return value.NewNull(), nil
	}
	s, ok := args[0].Text()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue("LPAD/RPAD", "Text")
	}
	length, ok := args[1].Int64()
	if !ok {
		return value.Value{}, glueerr.FunctionRequiresKindValue("LPAD/RPAD", "Integer")
	}
	pad := " "
	if len(args) == 3 {
		p, ok := args[2].Text()
		if !ok {
			return value.Value{}, glueerr.FunctionRequiresKindValue("LPAD/RPAD", "Text")
		}
		pad = p
	}
	r := []rune(s)
	target := int(length)
	if target <= len(r) {
		if target < 0 {
			target = 0
		}
		if left {
			return value.NewText(string(r[len(r)-target:])), nil
		}
		return value.NewText(string(r[:target])), nil
	}
	if pad == "" {
		return value.NewText(s), nil
	}
	padRunes := []rune(pad)
	need := target - len(r)
	var fill strings.Builder
	for fill.Len() == 0 || len([]rune(fill.String())) < need {
		fill.WriteString(pad)
	}
	padStr := string([]rune(fill.String())[:need])
	_ = padRunes
	if left {
		return value.NewText(padStr + s), nil
	}
	return value.NewText(s + padStr), nil
}
