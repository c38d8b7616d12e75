package plan

import (
	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
)

// refSet tracks visible column names the same way eval.RowContext does at
// evaluation time, but over names only (no Values exist yet at plan time).
type refSet struct {
	byUnqualified map[string]bool
	ambiguous     map[string]bool
	byQualified   map[string]map[string]bool
	schemaless    map[string]bool // per-table: true if the table accepts any column name

	// declared types, used only to statically reject List/Map values from
	// GROUP BY/DISTINCT/JOIN-key position per spec §3.1(d). Absence of an
	// entry means the type is not statically known (schemaless table, or
	// an expression more complex than a bare column reference); such
	// expressions are not rejected here and instead rely on the executor's
	// key-encoding fallback to surface the error at execution time.
	unqualifiedTypes map[string]ast.DataType
	qualifiedTypes   map[string]map[string]ast.DataType
}

func newRefSet() *refSet {
	return &refSet{
		byUnqualified:    map[string]bool{},
		ambiguous:        map[string]bool{},
		byQualified:      map[string]map[string]bool{},
		schemaless:       map[string]bool{},
		unqualifiedTypes: map[string]ast.DataType{},
		qualifiedTypes:   map[string]map[string]ast.DataType{},
	}
}

func (r *refSet) bind(table string, sch *schemaLike) {
	cols := map[string]bool{}
	if sch.schemaless {
		r.schemaless[lower(table)] = true
	}
	for _, c := range sch.columns {
		cols[lower(c)] = true
	}
	if table != "" {
		r.byQualified[lower(table)] = cols
		r.qualifiedTypes[lower(table)] = sch.types
	}
	for name := range cols {
		if r.byUnqualified[name] {
			r.ambiguous[name] = true
		}
		r.byUnqualified[name] = true
	}
	for name, dt := range sch.types {
		r.unqualifiedTypes[name] = dt
	}
}

// schemaLike is the minimal shape refs.go needs from a schema.Schema,
// kept separate to avoid a plan->schema field-shape coupling beyond names.
type schemaLike struct {
	schemaless bool
	columns    []string
	types      map[string]ast.DataType // lower-cased column name -> declared type
}

func schemaLikeOf(sm SchemaMap, table string) *schemaLike {
	sch, ok := sm[lower(table)]
	if !ok {
		return &schemaLike{schemaless: true}
	}
	if sch.Schemaless() {
		return &schemaLike{schemaless: true}
	}
	names := make([]string, len(sch.ColumnDefs))
	types := make(map[string]ast.DataType, len(sch.ColumnDefs))
	for i, c := range sch.ColumnDefs {
		names[i] = c.Name
		types[lower(c.Name)] = c.DataType
	}
	return &schemaLike{columns: names, types: types}
}

// unhashableDataType reports whether a declared column type can never
// serve as a GROUP BY/DISTINCT/JOIN-key value (spec §3.1(d): List and Map
// may not serve as group-by keys, unique keys, or index keys).
func unhashableDataType(dt ast.DataType) bool {
	return dt == ast.TypeList || dt == ast.TypeMap
}

// declaredType statically resolves the declared type of a bare column
// reference or a CAST target, returning ok=false when e is anything else
// (a literal, a function call, an arithmetic expression, ...) — those
// never produce a List/Map Value, and container-typed columns reached
// through a schemaless table are left to the executor's runtime check.
func (r *refSet) declaredType(e ast.Expr) (ast.DataType, bool) {
	switch v := e.(type) {
	case ast.Ident:
		dt, ok := r.unqualifiedTypes[lower(v.Name)]
		return dt, ok
	case ast.CompoundIdent:
		cols, ok := r.qualifiedTypes[lower(v.Table)]
		if !ok {
			return 0, false
		}
		dt, ok := cols[lower(v.Name)]
		return dt, ok
	case ast.Cast:
		return v.DataType, true
	case ast.Nested:
		return r.declaredType(v.Inner)
	default:
		return 0, false
	}
}

// rejectUnhashable returns a Plan error if e statically resolves to a
// List or Map value (spec §3.1(d)), per the named SQL position.
func (r *refSet) rejectUnhashable(e ast.Expr, code, position string) error {
	dt, ok := r.declaredType(e)
	if !ok || !unhashableDataType(dt) {
		return nil
	}
	return glueerr.New(glueerr.Plan, code, "LIST/MAP value cannot be used in %s position", position)
}

func (r *refSet) resolveUnqualified(name string) error {
	key := lower(name)
	if len(r.schemaless) > 0 {
		// A schemaless table in scope accepts any unqualified reference.
		return nil
	}
	if r.ambiguous[key] {
		return glueerr.ColumnReferenceAmbiguous(name)
	}
	if !r.byUnqualified[key] {
		return glueerr.ColumnNotFound("", name)
	}
	return nil
}

func (r *refSet) resolveQualified(table, name string) error {
	cols, ok := r.byQualified[lower(table)]
	if !ok {
		return glueerr.TableNotFound(table)
	}
	if r.schemaless[lower(table)] {
		return nil
	}
	if !cols[lower(name)] {
		return glueerr.ColumnNotFound(table, name)
	}
	return nil
}

// validateReferences resolves every column reference in st against sm,
// rejects aggregates inside WHERE, and checks GROUP BY/projection
// agreement (spec §4.4 item 2).
func validateReferences(st ast.Statement, sm SchemaMap) error {
	sel := selectOf(st)
	if sel == nil {
		return nil
	}

	r := newRefSet()
	if sel.From != nil {
		table := sel.From.Alias
		if table == "" {
			table = sel.From.Name
		}
		r.bind(table, schemaLikeOf(sm, sel.From.Name))
	}
	for _, j := range sel.Joins {
		table := j.Table.Alias
		if table == "" {
			table = j.Table.Name
		}
		r.bind(table, schemaLikeOf(sm, j.Table.Name))
	}

	if containsAggregateExpr(sel.Where) {
		return glueerr.New(glueerr.Plan, "AggregateInWhere", "aggregate functions are not allowed in WHERE")
	}
	if err := validateExprRefs(sel.Where, r); err != nil {
		return err
	}
	for _, item := range sel.Projection {
		if err := validateExprRefs(item.Expr, r); err != nil {
			return err
		}
	}
	if err := validateExprRefs(sel.Having, r); err != nil {
		return err
	}

	if len(sel.GroupBy) > 0 {
		for _, item := range sel.Projection {
			if item.Wildcard || item.Expr == nil {
				continue
			}
			if containsAggregateExpr(item.Expr) {
				continue
			}
			if !exprInList(item.Expr, sel.GroupBy) {
				return glueerr.New(glueerr.Plan, "GroupByMismatch", "projection expression must appear in GROUP BY")
			}
		}
		for _, g := range sel.GroupBy {
			if err := r.rejectUnhashable(g, "GroupByUnhashableValue", "GROUP BY"); err != nil {
				return err
			}
		}
	}

	if sel.Distinct {
		for _, item := range sel.Projection {
			if item.Wildcard || item.Expr == nil {
				continue
			}
			if err := r.rejectUnhashable(item.Expr, "DistinctUnhashableValue", "SELECT DISTINCT"); err != nil {
				return err
			}
		}
	}

	for _, j := range sel.Joins {
		b, ok := j.On.(ast.BinaryOp)
		if !ok || b.Op != ast.OpEq {
			continue
		}
		if err := r.rejectUnhashable(b.Left, "JoinKeyUnhashableValue", "JOIN ON"); err != nil {
			return err
		}
		if err := r.rejectUnhashable(b.Right, "JoinKeyUnhashableValue", "JOIN ON"); err != nil {
			return err
		}
	}
	return nil
}

func exprInList(e ast.Expr, list []ast.Expr) bool {
	for _, g := range list {
		if ast.Equal(e, g) {
			return true
		}
	}
	return false
}

func containsAggregateExpr(e ast.Expr) bool {
	found := false
	var walk func(ast.Expr)
	walk = func(x ast.Expr) {
		if found || x == nil {
			return
		}
		switch v := x.(type) {
		case ast.AggregateCall:
			found = true
		case ast.Nested:
			walk(v.Inner)
		case ast.UnaryOp:
			walk(v.Expr)
		case ast.BinaryOp:
			walk(v.Left)
			walk(v.Right)
		case ast.Between:
			walk(v.Expr)
			walk(v.Low)
			walk(v.High)
		case ast.InList:
			walk(v.Expr)
			for _, e := range v.List {
				walk(e)
			}
		case ast.Like:
			walk(v.Expr)
			walk(v.Pattern)
		case ast.Case:
			if v.Operand != nil {
				walk(*v.Operand)
			}
			for _, w := range v.Whens {
				walk(w.When)
				walk(w.Then)
			}
			walk(v.Else)
		case ast.Cast:
			walk(v.Expr)
		case ast.Extract:
			walk(v.Expr)
		case ast.FuncCall:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return found
}

func validateExprRefs(e ast.Expr, r *refSet) error {
	var err error
	var walk func(ast.Expr)
	walk = func(x ast.Expr) {
		if err != nil || x == nil {
			return
		}
		switch v := x.(type) {
		case ast.Ident:
			err = r.resolveUnqualified(v.Name)
		case ast.CompoundIdent:
			err = r.resolveQualified(v.Table, v.Name)
		case ast.Nested:
			walk(v.Inner)
		case ast.UnaryOp:
			walk(v.Expr)
		case ast.BinaryOp:
			walk(v.Left)
			walk(v.Right)
		case ast.Between:
			walk(v.Expr)
			walk(v.Low)
			walk(v.High)
		case ast.InList:
			walk(v.Expr)
			for _, e := range v.List {
				walk(e)
			}
		case ast.Like:
			walk(v.Expr)
			walk(v.Pattern)
		case ast.Case:
			if v.Operand != nil {
				walk(*v.Operand)
			}
			for _, w := range v.Whens {
				walk(w.When)
				walk(w.Then)
			}
			walk(v.Else)
		case ast.Cast:
			walk(v.Expr)
		case ast.Extract:
			walk(v.Expr)
		case ast.FuncCall:
			for _, a := range v.Args {
				walk(a)
			}
		case ast.AggregateCall:
			walk(v.Arg)
		}
	}
	walk(e)
	return err
}
