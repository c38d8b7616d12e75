package executor

import (
	"context"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/eval"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/internal/glog"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
	"github.com/glue-sql/glue/value"
)

func defaultValue(col schema.ColumnDef) (value.Value, error) {
	if col.Default != nil {
		ev := eval.New(nil, nil)
		return ev.Eval(col.Default)
	}
	return value.NewNull(), nil
}

func (e *Executor) execCreateTable(ctx context.Context, s ast.CreateTableStatement) (Payload, error) {
	existing, err := e.Store.FetchSchema(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if s.IfNotExists {
			return CreatePayload{}, nil
		}
		return nil, glueerr.New(glueerr.Execute, "TableAlreadyExists", "table %q already exists", s.Table)
	}

	sch := &schema.Schema{Table: s.Table, EngineHint: s.EngineHint}
	if s.Columns != nil {
		sch.ColumnDefs = make([]schema.ColumnDef, len(s.Columns))
		for i, c := range s.Columns {
			sch.ColumnDefs[i] = schema.ColumnDef{
				Name:       c.Name,
				DataType:   c.DataType,
				Nullable:   c.Nullable,
				Default:    c.Default,
				Unique:     c.Unique,
				PrimaryKey: c.PrimaryKey,
				Comment:    c.Comment,
			}
		}
	}
	if len(s.PrimaryKey) > 0 {
		idxs := make([]int, len(s.PrimaryKey))
		for i, name := range s.PrimaryKey {
			idxs[i] = sch.ColumnIndex(name)
		}
		sch.PrimaryKey = &schema.PrimaryKeyRef{ColumnIndexes: idxs}
		for _, idx := range idxs {
			if idx >= 0 {
				sch.ColumnDefs[idx].PrimaryKey = true
			}
		}
	}
	for _, fk := range s.ForeignKeys {
		sch.ForeignKeys = append(sch.ForeignKeys, schema.ForeignKey{
			Name: fk.Name, Columns: fk.Columns,
			ReferencedTable: fk.ReferencedTable, ReferencedColumns: fk.ReferencedColumns,
		})
	}
	for _, ck := range s.Checks {
		sch.Checks = append(sch.Checks, schema.CheckConstraint{Name: ck.Name, Expr: ck.Expr})
	}

	if err := e.Mut.InsertSchema(ctx, sch); err != nil {
		return nil, err
	}
	return CreatePayload{}, nil
}

func (e *Executor) execDropTable(ctx context.Context, s ast.DropTableStatement) (Payload, error) {
	count := 0
	for _, table := range s.Tables {
		existing, err := e.Store.FetchSchema(ctx, table)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if s.IfExists {
				continue
			}
			return nil, glueerr.TableNotFound(table)
		}
		if err := e.Mut.DeleteSchema(ctx, table); err != nil {
			return nil, err
		}
		count++
	}
	return DropTablePayload{Count: count}, nil
}

// execAlterTable prefers the back-end's AlterTable capability; lacking
// it, it performs the synthetic rewrite spec §4.5 describes: read every
// row, transform it to the new shape, and write it into the new schema
// (grounded on the teacher's per-operation-kind migration rendering
// style — migration.go's one-function-per-op switch — generalized from
// SQL-text rendering to an in-memory row transform since this engine has
// no intermediate SQL to emit).
func (e *Executor) execAlterTable(ctx context.Context, s ast.AlterTableStatement) (Payload, error) {
	if alt, ok := e.Store.(store.AlterTable); ok {
		return e.execAlterTableCapable(ctx, s, alt)
	}
	return e.execAlterTableSynthetic(ctx, s)
}

func (e *Executor) execAlterTableCapable(ctx context.Context, s ast.AlterTableStatement, alt store.AlterTable) (Payload, error) {
	switch s.Op {
	case ast.AlterRenameTable:
		if err := alt.RenameSchema(ctx, s.Table, s.NewTableName); err != nil {
			return nil, err
		}
	case ast.AlterRenameColumn:
		if err := alt.RenameColumn(ctx, s.Table, s.OldColumn, s.NewColumn); err != nil {
			return nil, err
		}
	case ast.AlterAddColumn:
		col := schema.ColumnDef{
			Name: s.AddColumn.Name, DataType: s.AddColumn.DataType,
			Nullable: s.AddColumn.Nullable, Default: s.AddColumn.Default,
			Unique: s.AddColumn.Unique, PrimaryKey: s.AddColumn.PrimaryKey, Comment: s.AddColumn.Comment,
		}
		if err := alt.AddColumn(ctx, s.Table, col); err != nil {
			return nil, err
		}
	case ast.AlterDropColumn:
		if err := alt.DropColumn(ctx, s.Table, s.OldColumn, s.IfExists); err != nil {
			return nil, err
		}
	default:
		return nil, glueerr.UnsupportedAlterOperation(s.Op.String())
	}
	return AlterTablePayload{}, nil
}

func (e *Executor) execAlterTableSynthetic(ctx context.Context, s ast.AlterTableStatement) (Payload, error) {
	sch, err := e.Store.FetchSchema(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, glueerr.TableNotFound(s.Table)
	}

	newSch := cloneSchema(sch)
	var transform func(schema.DataRow) schema.DataRow

	switch s.Op {
	case ast.AlterRenameTable:
		newSch.Table = s.NewTableName
		transform = func(r schema.DataRow) schema.DataRow { return r }
	case ast.AlterRenameColumn:
		if i := newSch.ColumnIndex(s.OldColumn); i >= 0 {
			newSch.ColumnDefs[i].Name = s.NewColumn
		}
		transform = func(r schema.DataRow) schema.DataRow { return r }
	case ast.AlterAddColumn:
		col := schema.ColumnDef{
			Name: s.AddColumn.Name, DataType: s.AddColumn.DataType,
			Nullable: s.AddColumn.Nullable, Default: s.AddColumn.Default,
			Unique: s.AddColumn.Unique, PrimaryKey: s.AddColumn.PrimaryKey, Comment: s.AddColumn.Comment,
		}
		newSch.ColumnDefs = append(newSch.ColumnDefs, col)
		defVal, err := defaultValue(col)
		if err != nil {
			return nil, err
		}
		transform = func(r schema.DataRow) schema.DataRow {
			nv := append([]value.Value(nil), r.Vec...)
			nv = append(nv, defVal)
			return schema.NewVecRow(nv)
		}
	case ast.AlterDropColumn:
		idx := newSch.ColumnIndex(s.OldColumn)
		if idx < 0 {
			if s.IfExists {
				return AlterTablePayload{}, nil
			}
			return nil, glueerr.New(glueerr.Execute, "ColumnNotFound", "column %q not found", s.OldColumn)
		}
		newSch.ColumnDefs = append(newSch.ColumnDefs[:idx], newSch.ColumnDefs[idx+1:]...)
		transform = func(r schema.DataRow) schema.DataRow {
			nv := append(append([]value.Value(nil), r.Vec[:idx]...), r.Vec[idx+1:]...)
			return schema.NewVecRow(nv)
		}
	default:
		return nil, glueerr.UnsupportedAlterOperation(s.Op.String())
	}

	glog.SyntheticRewrite(s.Table, s.Op.String())

	iter, err := e.Store.ScanData(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var rows []store.Row
	for {
		r, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rows = append(rows, store.Row{Key: r.Key, Data: transform(r.Data)})
	}

	if err := e.Mut.DeleteSchema(ctx, s.Table); err != nil {
		return nil, err
	}
	if err := e.Mut.InsertSchema(ctx, newSch); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		if err := e.Mut.InsertData(ctx, newSch.Table, rows); err != nil {
			return nil, err
		}
	}
	return AlterTablePayload{}, nil
}

func cloneSchema(s *schema.Schema) *schema.Schema {
	cp := *s
	cp.ColumnDefs = append([]schema.ColumnDef(nil), s.ColumnDefs...)
	cp.Indexes = append([]schema.Index(nil), s.Indexes...)
	cp.ForeignKeys = append([]schema.ForeignKey(nil), s.ForeignKeys...)
	cp.Checks = append([]schema.CheckConstraint(nil), s.Checks...)
	return &cp
}

func (e *Executor) execCreateIndex(ctx context.Context, s ast.CreateIndexStatement) (Payload, error) {
	idxStore, ok := e.Store.(store.IndexMut)
	if !ok {
		return nil, glueerr.New(glueerr.Execute, "IndexNotSupported", "back-end does not support indexes")
	}
	idx := schema.Index{Name: s.Name, Expr: s.Expr, Asc: true}
	if err := idxStore.CreateIndex(ctx, s.Table, idx); err != nil {
		return nil, err
	}
	return CreateIndexPayload{}, nil
}

func (e *Executor) execDropIndex(ctx context.Context, s ast.DropIndexStatement) (Payload, error) {
	idxStore, ok := e.Store.(store.IndexMut)
	if !ok {
		return nil, glueerr.DropTypeNotSupported("index")
	}
	if err := idxStore.DropIndex(ctx, s.Table, s.Name); err != nil {
		return nil, err
	}
	return DropIndexPayload{}, nil
}
