package plan

import (
	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
)

// planIndexItem attaches a primary-key point-fetch directive to sel.From
// when WHERE contains a top-level "pk = constant" conjunct (spec §4.4
// item 3). Composite primary keys and "pk IN (...)" are left to a full
// scan: IndexItem.PrimaryKeyHit carries a single Value, so only the
// single-column equality form is represented (see DESIGN.md's plan
// package notes).
func planIndexItem(sel *ast.Select, sm SchemaMap) {
	if sel.From == nil || sel.Where == nil {
		return
	}
	sch, ok := sm[lower(sel.From.Name)]
	if !ok || sch.Schemaless() || sch.PrimaryKey == nil || sch.PrimaryKey.Composite() {
		return
	}
	pkCol := sch.PrimaryKeyColumnNames()[0]
	if v := findEquality(sel.Where, pkCol); v != nil {
		sel.From.Index = &ast.IndexItem{PrimaryKey: &ast.PrimaryKeyHit{Value: v}}
	}
}

// planSecondaryIndex attaches a NonClusteredHit when a WHERE conjunct
// compares an indexed column against a constant under a supported
// operator (spec §4.4 item 4).
func planSecondaryIndex(sel *ast.Select, sm SchemaMap, _ store.Index) {
	if sel.From == nil || sel.Where == nil || sel.From.Index != nil {
		return
	}
	sch, ok := sm[lower(sel.From.Name)]
	if !ok {
		return
	}
	for _, idx := range sch.Indexes {
		name := indexColumnName(idx)
		if name == "" {
			continue
		}
		if cmp, v := findComparison(sel.Where, name); v != nil {
			sel.From.Index = &ast.IndexItem{Secondary: &ast.NonClusteredHit{
				Name: idx.Name, Asc: idx.Asc, Cmp: cmp, Value: v,
			}}
			return
		}
	}
}

func indexColumnName(idx schema.Index) string {
	switch e := idx.Expr.(type) {
	case ast.Ident:
		return e.Name
	case ast.CompoundIdent:
		return e.Name
	default:
		return ""
	}
}

// findEquality returns the constant side of a top-level "col = const"
// conjunct naming col, walking only through AND so it never crosses an OR
// (which would make the predicate non-exhaustive for a point fetch).
func findEquality(where ast.Expr, col string) ast.Expr {
	if cmp, v := findComparisonIn(where, col, true); cmp == ast.OpEq {
		return v
	}
	return nil
}

func findComparison(where ast.Expr, col string) (ast.BinaryOperator, ast.Expr) {
	return findComparisonIn(where, col, false)
}

// findComparisonIn walks top-level AND conjuncts of where looking for
// "col <op> const" or "const <op> col"; onlyEq restricts the search to
// equality (used for primary-key point fetches).
func findComparisonIn(where ast.Expr, col string, onlyEq bool) (ast.BinaryOperator, ast.Expr) {
	if where == nil {
		return 0, nil
	}
	if b, ok := where.(ast.BinaryOp); ok && b.Op == ast.OpAnd {
		if op, v := findComparisonIn(b.Left, col, onlyEq); v != nil {
			return op, v
		}
		return findComparisonIn(b.Right, col, onlyEq)
	}
	b, ok := where.(ast.BinaryOp)
	if !ok || !isComparisonOp(b.Op) {
		return 0, nil
	}
	if onlyEq && b.Op != ast.OpEq {
		return 0, nil
	}
	if name, ok := identName(b.Left); ok && name == col && isConstant(b.Right) {
		return b.Op, b.Right
	}
	if name, ok := identName(b.Right); ok && name == col && isConstant(b.Left) {
		return flipComparison(b.Op), b.Left
	}
	return 0, nil
}

func identName(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case ast.Ident:
		return v.Name, true
	case ast.CompoundIdent:
		return v.Name, true
	default:
		return "", false
	}
}

func isConstant(e ast.Expr) bool {
	switch e.(type) {
	case ast.Literal, ast.TypedString:
		return true
	default:
		return false
	}
}

func isComparisonOp(op ast.BinaryOperator) bool {
	switch op {
	case ast.OpEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return true
	default:
		return false
	}
}

func flipComparison(op ast.BinaryOperator) ast.BinaryOperator {
	switch op {
	case ast.OpLt:
		return ast.OpGt
	case ast.OpGt:
		return ast.OpLt
	case ast.OpLtEq:
		return ast.OpGtEq
	case ast.OpGtEq:
		return ast.OpLtEq
	default:
		return op
	}
}
