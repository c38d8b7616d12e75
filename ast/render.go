package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Render renders an Expr back to a textual SQL-ish form. It is not a
// faithful re-parseable serializer of the full AST (derived tables and
// subqueries render as "(...)"), but is sufficient for the three places the
// engine needs expression text: a CREATE FUNCTION body persisted through
// store.FunctionDef (spec §6.2/§4.6), EXPLAIN's default/constraint text
// columns (spec §6.3), and mysqlstore's persisted column defaults and
// CHECK expressions.
func Render(e Expr) string {
	if e == nil {
		return ""
	}
	switch x := e.(type) {
	case Ident:
		return x.Name
	case CompoundIdent:
		return x.Table + "." + x.Name
	case Wildcard:
		if x.Qualify == "" {
			return "*"
		}
		return x.Qualify + ".*"
	case Literal:
		switch x.Kind {
		case LitNull:
			return "NULL"
		case LitBool:
			return strconv.FormatBool(x.Bool)
		case LitString:
			return "'" + strings.ReplaceAll(x.Text, "'", "''") + "'"
		case LitBytea:
			return "X'" + x.Text + "'"
		default:
			return x.Text
		}
	case TypedString:
		return x.DataType.String() + " '" + x.Text + "'"
	case Nested:
		return "(" + Render(x.Inner) + ")"
	case UnaryOp:
		return unaryOpText(x.Op) + Render(x.Expr)
	case BinaryOp:
		return Render(x.Left) + " " + binaryOpText(x.Op) + " " + Render(x.Right)
	case InList:
		parts := make([]string, len(x.List))
		for i, item := range x.List {
			parts[i] = Render(item)
		}
		not := ""
		if x.Negate {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sIN (%s)", Render(x.Expr), not, strings.Join(parts, ", "))
	case InSubquery:
		not := ""
		if x.Negate {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sIN (...)", Render(x.Expr), not)
	case Between:
		not := ""
		if x.Negate {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sBETWEEN %s AND %s", Render(x.Expr), not, Render(x.Low), Render(x.High))
	case Like:
		not, op := "", "LIKE"
		if x.Negate {
			not = "NOT "
		}
		if x.CI {
			op = "ILIKE"
		}
		return fmt.Sprintf("%s %s%s %s", Render(x.Expr), not, op, Render(x.Pattern))
	case Case:
		var b strings.Builder
		b.WriteString("CASE ")
		if x.Operand != nil {
			b.WriteString(Render(*x.Operand))
			b.WriteByte(' ')
		}
		for _, w := range x.Whens {
			fmt.Fprintf(&b, "WHEN %s THEN %s ", Render(w.When), Render(w.Then))
		}
		if x.Else != nil {
			fmt.Fprintf(&b, "ELSE %s ", Render(x.Else))
		}
		b.WriteString("END")
		return b.String()
	case Cast:
		return fmt.Sprintf("CAST(%s AS %s)", Render(x.Expr), x.DataType.String())
	case Extract:
		return fmt.Sprintf("EXTRACT(%s FROM %s)", extractFieldText(x.Field), Render(x.Expr))
	case Subquery:
		return "(...)"
	case Exists:
		not := ""
		if x.Negate {
			not = "NOT "
		}
		return not + "EXISTS (...)"
	case FuncCall:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = Render(a)
		}
		return fmt.Sprintf("%s(%s)", x.Func.Name(), strings.Join(parts, ", "))
	case AggregateCall:
		arg := "*"
		if x.Arg != nil {
			arg = Render(x.Arg)
			if x.Distinct {
				arg = "DISTINCT " + arg
			}
		}
		return fmt.Sprintf("%s(%s)", x.Agg.Name(), arg)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func unaryOpText(op UnaryOperator) string {
	switch op {
	case UnaryNot:
		return "NOT "
	case UnaryNeg:
		return "-"
	case UnaryBitNot:
		return "~"
	default:
		return "?"
	}
}

func binaryOpText(op BinaryOperator) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpConcat:
		return "||"
	case OpEq:
		return "="
	case OpNotEq:
		return "<>"
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLtEq:
		return "<="
	case OpGtEq:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpXor:
		return "XOR"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShiftLeft:
		return "<<"
	case OpShiftRight:
		return ">>"
	default:
		return "?"
	}
}

func extractFieldText(f ExtractField) string {
	switch f {
	case ExtractYear:
		return "YEAR"
	case ExtractMonth:
		return "MONTH"
	case ExtractDay:
		return "DAY"
	case ExtractHour:
		return "HOUR"
	case ExtractMinute:
		return "MINUTE"
	case ExtractSecond:
		return "SECOND"
	default:
		return "?"
	}
}
