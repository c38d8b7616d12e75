package plan

import "github.com/glue-sql/glue/ast"

// planHashJoins rewrites inner joins whose ON predicate is a plain
// equality between two column references into a hash-join directive
// (spec §4.4 item 5); outer-join semantics (LEFT JOIN's unmatched-row
// emission) are unaffected by this directive, only the matching strategy.
func planHashJoins(sel *ast.Select) {
	for i := range sel.Joins {
		j := &sel.Joins[i]
		if j.Kind != ast.InnerJoin {
			continue
		}
		b, ok := j.On.(ast.BinaryOp)
		if !ok || b.Op != ast.OpEq {
			continue
		}
		_, leftOk := identName(b.Left)
		_, rightOk := identName(b.Right)
		if leftOk && rightOk {
			j.HashJoin = true
		}
	}
}
