package executor

import (
	"context"
	"sort"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/dict"
	"github.com/glue-sql/glue/eval"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
)

// execShowTables surfaces dict.Tables' table names directly (spec §4.8:
// "SHOW TABLES ... direct non-SELECT surfaces of the same information").
func (e *Executor) execShowTables(ctx context.Context) (Payload, error) {
	schemas, err := e.Store.FetchAllSchemas(ctx)
	if err != nil {
		return nil, err
	}
	rows := dict.Tables(schemas, e.schemaMeta(ctx))
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Table
	}
	sort.Strings(names)
	return ShowTablesPayload{Tables: names}, nil
}

// execShowColumns renders (name, data_type) pairs for SHOW COLUMNS FROM t
// (spec §6.3).
func (e *Executor) execShowColumns(ctx context.Context, table string) (Payload, error) {
	sch, err := e.Store.FetchSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, glueerr.TableNotFound(table)
	}
	cols := dict.Columns(sch)
	out := make([]ColumnInfo, len(cols))
	for i, c := range cols {
		out[i] = ColumnInfo{Name: c.Name, DataType: c.DataType}
	}
	return ShowColumnsPayload{Columns: out}, nil
}

// execExplainTable renders the richer per-column view spec §6.3 names:
// name, type, nullability, constraints text, default text, comment.
func (e *Executor) execExplainTable(ctx context.Context, table string) (Payload, error) {
	sch, err := e.Store.FetchSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, glueerr.TableNotFound(table)
	}
	out := make([]ExplainColumn, len(sch.ColumnDefs))
	for i, c := range sch.ColumnDefs {
		out[i] = ExplainColumn{
			Name:        c.Name,
			DataType:    c.DataType.String(),
			Nullable:    c.Nullable,
			Constraints: constraintsText(sch, c),
			Default:     defaultText(c),
			Comment:     c.Comment,
		}
	}
	return ExplainTablePayload{Columns: out}, nil
}

func constraintsText(sch *schema.Schema, c schema.ColumnDef) string {
	var parts []string
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if c.Unique && !c.PrimaryKey {
		parts = append(parts, "UNIQUE")
	}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	for _, fk := range sch.ForeignKeys {
		for _, col := range fk.Columns {
			if col == c.Name {
				parts = append(parts, "FOREIGN KEY -> "+fk.ReferencedTable)
			}
		}
	}
	for _, chk := range sch.Checks {
		parts = append(parts, "CHECK ("+ast.Render(chk.Expr)+")")
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

func defaultText(c schema.ColumnDef) string {
	if c.Default == nil {
		return ""
	}
	ev := eval.New(nil, nil)
	v, err := ev.Eval(c.Default)
	if err != nil {
		return ast.Render(c.Default)
	}
	return v.String()
}

// execShowVariable reads one entry from e.Variables, the engine
// configuration surface SPEC_FULL.md's "Supplemented from original_source"
// section adds (original source's SHOW VARIABLE <name>, never elaborated
// by the distilled spec's prose even though it lists the ShowVariable
// Payload variant).
func (e *Executor) execShowVariable(name string) (Payload, error) {
	if v, ok := e.Variables[name]; ok {
		return ShowVariablePayload{Value: v}, nil
	}
	return nil, glueerr.New(glueerr.Execute, "VariableNotFound", "no such variable %q", name)
}

// execCreateFunction persists a user-defined function definition through
// the optional CustomFunctionMut capability (spec §4.6/§6.2). Back-ends
// without the capability reject CREATE FUNCTION outright, mirroring how
// AlterTable's absence is detected elsewhere in this package.
func (e *Executor) execCreateFunction(ctx context.Context, s ast.CreateFunctionStatement) (Payload, error) {
	fn, ok := e.Mut.(store.CustomFunctionMut)
	if !ok {
		return nil, glueerr.New(glueerr.Execute, "CustomFunctionNotSupported", "back-end does not support user-defined functions")
	}
	def := store.FunctionDef{Name: s.Name, Params: s.Params, Body: ast.Render(s.Body)}
	if err := fn.InsertFunction(ctx, def); err != nil {
		return nil, err
	}
	return CreateFunctionPayload{}, nil
}

func (e *Executor) execDropFunction(ctx context.Context, s ast.DropFunctionStatement) (Payload, error) {
	fn, ok := e.Mut.(store.CustomFunctionMut)
	if !ok {
		return nil, glueerr.New(glueerr.Execute, "CustomFunctionNotSupported", "back-end does not support user-defined functions")
	}
	ro, hasRead := e.Store.(store.CustomFunction)
	if hasRead {
		existing, err := ro.FetchFunction(ctx, s.Name)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if s.IfExists {
				return DropFunctionPayload{}, nil
			}
			return nil, glueerr.New(glueerr.Execute, "FunctionNotFound", "function %q not found", s.Name)
		}
	}
	if err := fn.DeleteFunction(ctx, s.Name); err != nil {
		return nil, err
	}
	return DropFunctionPayload{}, nil
}

// schemaMeta best-effort fetches store.Metadata enrichment; callers treat
// a nil/empty map as "no metadata available" (spec §4.6: Metadata is
// optional).
func (e *Executor) schemaMeta(ctx context.Context) map[string]store.SchemaMeta {
	meta, ok := e.Store.(store.Metadata)
	if !ok {
		return nil
	}
	names, err := meta.SchemaNames(ctx)
	if err != nil {
		return nil
	}
	out := make(map[string]store.SchemaMeta, len(names))
	for _, n := range names {
		out[n.Table] = n
	}
	return out
}
