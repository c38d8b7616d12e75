package eval

import (
	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/value"
)

func (e *Evaluator) evalCase(c ast.Case) (value.Value, error) {
	var operand value.Value
	hasOperand := c.Operand != nil
	if hasOperand {
		v, err := e.Eval(*c.Operand)
		if err != nil {
			return value.Value{}, err
		}
		operand = v
	}

	for _, w := range c.Whens {
		if hasOperand {
			cmp, err := e.Eval(w.When)
			if err != nil {
				return value.Value{}, err
			}
			if operand.IsNull() || cmp.IsNull() {
				continue
			}
			eq, isNull := value.Equal(operand, cmp)
			if isNull || !eq {
				continue
			}
			return e.Eval(w.Then)
		}
		ok, isNull, err := e.EvalBool(w.When)
		if err != nil {
			return value.Value{}, err
		}
		if isNull || !ok {
			continue
		}
		return e.Eval(w.Then)
	}
	if c.Else != nil {
		return e.Eval(c.Else)
	}
	return value.NewNull(), nil
}
