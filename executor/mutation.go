package executor

import (
	"context"
	"strings"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/eval"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/plan"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
	"github.com/glue-sql/glue/value"
)

// execInsert fills defaults, validates NOT NULL/UNIQUE, then dispatches
// to insert_data (explicit single-column-PK keys) or append_data
// (auto-assigned keys, spec §4.5). Composite primary keys fall back to
// append_data — value.Key offers no exported constructor for a
// caller-built composite byte key, the same limitation plan/index.go
// already documents for PrimaryKeyHit planning.
func (e *Executor) execInsert(ctx context.Context, s ast.InsertStatement) (Payload, error) {
	sch, err := e.Store.FetchSchema(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, glueerr.TableNotFound(s.Table)
	}

	values, err := e.insertSourceRows(ctx, s.Source)
	if err != nil {
		return nil, err
	}

	if sch.Schemaless() {
		cols := s.Columns
		rows := make([]schema.DataRow, len(values))
		for i, vals := range values {
			m := map[string]value.Value{}
			for j, v := range vals {
				if j < len(cols) {
					m[cols[j]] = v
				}
			}
			rows[i] = schema.NewMapRow(m)
		}
		if err := e.Mut.AppendData(ctx, s.Table, rows); err != nil {
			return nil, err
		}
		return InsertPayload{Count: len(rows)}, nil
	}

	cols := s.Columns
	if len(cols) == 0 {
		cols = make([]string, len(sch.ColumnDefs))
		for i, c := range sch.ColumnDefs {
			cols[i] = c.Name
		}
	}

	var explicit []store.Row
	var auto []schema.DataRow
	for _, vals := range values {
		vec, err := fillRow(sch, cols, vals)
		if err != nil {
			return nil, err
		}
		if err := checkNotNull(sch, vec); err != nil {
			return nil, err
		}
		if err := e.checkUnique(ctx, sch, vec); err != nil {
			return nil, err
		}
		if sch.PrimaryKey != nil && !sch.PrimaryKey.Composite() {
			idx := sch.PrimaryKey.ColumnIndexes[0]
			key, err := value.NewKey(vec[idx])
			if err != nil {
				return nil, err
			}
			explicit = append(explicit, store.Row{Key: key, Data: schema.NewVecRow(vec)})
		} else {
			auto = append(auto, schema.NewVecRow(vec))
		}
	}
	if len(explicit) > 0 {
		if err := e.Mut.InsertData(ctx, s.Table, explicit); err != nil {
			return nil, err
		}
	}
	if len(auto) > 0 {
		if err := e.Mut.AppendData(ctx, s.Table, auto); err != nil {
			return nil, err
		}
	}
	return InsertPayload{Count: len(explicit) + len(auto)}, nil
}

func (e *Executor) insertSourceRows(ctx context.Context, src ast.InsertSource) ([][]value.Value, error) {
	if src.Select != nil {
		vals, _, _, err := e.runQuery(ctx, src.Select)
		return vals, err
	}
	ev := eval.New(nil, nil)
	out := make([][]value.Value, len(src.Values))
	for i, r := range src.Values {
		row := make([]value.Value, len(r))
		for j, expr := range r {
			v, err := ev.Eval(expr)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

// fillRow expands a values tuple given under cols into the schema's full
// declared column order, evaluating each column's Default for any column
// missing from cols.
func fillRow(sch *schema.Schema, cols []string, vals []value.Value) ([]value.Value, error) {
	byName := map[string]value.Value{}
	for i, c := range cols {
		if i < len(vals) {
			byName[c] = vals[i]
		}
	}
	out := make([]value.Value, len(sch.ColumnDefs))
	for i, c := range sch.ColumnDefs {
		if v, ok := byName[c.Name]; ok {
			out[i] = v
			continue
		}
		if c.Default != nil {
			ev := eval.New(nil, nil)
			v, err := ev.Eval(c.Default)
			if err != nil {
				return nil, err
			}
			out[i] = v
			continue
		}
		out[i] = value.NewNull()
	}
	return out, nil
}

func checkNotNull(sch *schema.Schema, vec []value.Value) error {
	for i, c := range sch.ColumnDefs {
		if !c.Nullable && vec[i].IsNull() {
			return glueerr.NotNullViolation(c.Name)
		}
	}
	return nil
}

// checkUnique scans existing rows for a conflict on any UNIQUE or
// primary-key column. Full-scan uniqueness checking mirrors the
// teacher's lack of any live index to consult (internal/apply issues raw
// ALTER TABLE ADD UNIQUE and lets MySQL enforce it); here the engine must
// enforce it itself since a back-end may have no Index capability.
func (e *Executor) checkUnique(ctx context.Context, sch *schema.Schema, vec []value.Value) error {
	type col struct {
		name string
		pk   bool
	}
	uniqueCols := map[int]col{}
	for i, c := range sch.ColumnDefs {
		if c.Unique || c.PrimaryKey {
			uniqueCols[i] = col{name: c.Name, pk: c.PrimaryKey}
		}
	}
	if len(uniqueCols) == 0 {
		return nil
	}
	iter, err := e.Store.ScanData(ctx, sch.Table)
	if err != nil {
		return err
	}
	defer iter.Close()
	for {
		r, ok, err := iter.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		for i, c := range uniqueCols {
			if i >= len(r.Data.Vec) {
				continue
			}
			eq, isNull := value.Equal(vec[i], r.Data.Vec[i])
			if !isNull && eq {
				if c.pk {
					return glueerr.DuplicateEntryOnPrimaryKey(c.name)
				}
				return glueerr.UniqueViolation(c.name)
			}
		}
	}
	return nil
}

// execUpdate re-evaluates each assignment per matching old row and
// overwrites via insert_data under the unchanged key (spec §4.5: primary
// key columns may not be updated).
func (e *Executor) execUpdate(ctx context.Context, s ast.UpdateStatement) (Payload, error) {
	sch, err := e.Store.FetchSchema(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, glueerr.TableNotFound(s.Table)
	}
	sm := plan.SchemaMap{strings.ToLower(s.Table): sch}
	for _, a := range s.Assignments {
		if col := sch.Column(a.Column); col != nil && col.PrimaryKey {
			return nil, glueerr.New(glueerr.Update, "PrimaryKeyUpdateRejected", "cannot update primary key column %s", a.Column)
		}
	}

	iter, err := e.Store.ScanData(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var toWrite []store.Row
	count := 0
	for {
		r, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ctx2 := buildRowContext(row{tables: map[string]schema.DataRow{s.Table: r.Data}}, sm)
		if s.Where != nil {
			ev := eval.New(ctx2, nil)
			match, isNull, err := ev.EvalBool(s.Where)
			if err != nil {
				return nil, err
			}
			if isNull || !match {
				continue
			}
		}
		newData := r.Data.Clone()
		ev := eval.New(ctx2, nil)
		for _, a := range s.Assignments {
			v, err := ev.Eval(a.Value)
			if err != nil {
				return nil, err
			}
			if newData.IsMap() {
				newData.Map[a.Column] = v
			} else if idx := sch.ColumnIndex(a.Column); idx >= 0 {
				newData.Vec[idx] = v
			}
		}
		if !newData.IsMap() {
			if err := checkNotNull(sch, newData.Vec); err != nil {
				return nil, err
			}
		}
		toWrite = append(toWrite, store.Row{Key: r.Key, Data: newData})
		count++
	}
	if len(toWrite) > 0 {
		if err := e.Mut.InsertData(ctx, s.Table, toWrite); err != nil {
			return nil, err
		}
	}
	return UpdatePayload{Count: count}, nil
}

// execDelete materialises the filtered key set before calling
// delete_data, since the iterator is invalidated by mutation mid-scan.
func (e *Executor) execDelete(ctx context.Context, s ast.DeleteStatement) (Payload, error) {
	sch, err := e.Store.FetchSchema(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, glueerr.TableNotFound(s.Table)
	}
	sm := plan.SchemaMap{strings.ToLower(s.Table): sch}
	iter, err := e.Store.ScanData(ctx, s.Table)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys []value.Key
	for {
		r, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if s.Where != nil {
			ctx2 := buildRowContext(row{tables: map[string]schema.DataRow{s.Table: r.Data}}, sm)
			ev := eval.New(ctx2, nil)
			match, isNull, err := ev.EvalBool(s.Where)
			if err != nil {
				return nil, err
			}
			if isNull || !match {
				continue
			}
		}
		keys = append(keys, r.Key)
	}
	if len(keys) > 0 {
		if err := e.Mut.DeleteData(ctx, s.Table, keys); err != nil {
			return nil, err
		}
	}
	return DeletePayload{Count: len(keys)}, nil
}
