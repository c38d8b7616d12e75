package eval

import (
	"strings"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

func (e *Evaluator) evalLike(l ast.Like) (value.Value, error) {
	subj, err := e.Eval(l.Expr)
	if err != nil {
		return value.Value{}, err
	}
	pat, err := e.Eval(l.Pattern)
	if err != nil {
		return value.Value{}, err
	}
	if subj.IsNull() || pat.IsNull() {
		return value.NewNull(), nil
	}
	s, ok1 := subj.Text()
	p, ok2 := pat.Text()
	if !ok1 || !ok2 {
		return value.Value{}, glueerr.FunctionRequiresKindValue("LIKE", "Text")
	}
	if l.CI {
		s = strings.ToLower(s)
		p = strings.ToLower(p)
	}
	matched := likeMatch(s, p)
	if l.Negate {
		matched = !matched
	}
	return value.NewBool(matched), nil
}

// likeMatch implements SQL LIKE semantics (spec §4.3): '%' matches any
// run (including empty), '_' matches exactly one character, and '\' is a
// literal escape for the following character.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	var memo = map[[2]int]bool{}
	var match func(si, pi int) bool
	match = func(si, pi int) bool {
		key := [2]int{si, pi}
		if v, ok := memo[key]; ok {
			return v
		}
		var result bool
		switch {
		case pi == len(p):
			result = si == len(s)
		case p[pi] == '%':
			result = match(si, pi+1)
			for i := si; !result && i < len(s); i++ {
				result = match(i+1, pi+1)
			}
		case p[pi] == '\\' && pi+1 < len(p):
			result = si < len(s) && s[si] == p[pi+1] && match(si+1, pi+2)
		case p[pi] == '_':
			result = si < len(s) && match(si+1, pi+1)
		default:
			result = si < len(s) && s[si] == p[pi] && match(si+1, pi+1)
		}
		memo[key] = result
		return result
	}
	return match(0, 0)
}
