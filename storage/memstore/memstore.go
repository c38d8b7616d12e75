// Package memstore is the engine's in-memory reference storage back-end,
// implementing every capability in package store (spec §4.6) over plain
// Go maps guarded by a single mutex. It exists to prove
// storage-agnosticism end to end and to serve as the default back-end for
// tests and the Glue façade's zero-config constructor.
//
// Grounded on spec §9's Open Question ("memory: snapshot via clone") —
// transactions clone the whole in-memory state on Begin and restore it on
// Rollback, the simplest faithful reading of "document your choice" for
// an in-process map. This is snapshot isolation at session granularity,
// not MVCC: concurrent sessions sharing one *Store serialize on mu for
// the duration of any call (spec §5 "Shared-resource policy").
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
	"github.com/glue-sql/glue/value"
)

type table struct {
	schema  *schema.Schema
	rows    map[string]store.Row // keyBytes(string) -> row
	order   []string             // keyBytes ascending, kept sorted
	autoSeq int64
}

func (t *table) clone() *table {
	cp := &table{schema: cloneSchema(t.schema), autoSeq: t.autoSeq}
	cp.rows = make(map[string]store.Row, len(t.rows))
	for k, r := range t.rows {
		cp.rows[k] = store.Row{Key: r.Key, Data: r.Data.Clone()}
	}
	cp.order = append([]string(nil), t.order...)
	return cp
}

func cloneSchema(s *schema.Schema) *schema.Schema {
	if s == nil {
		return nil
	}
	cp := *s
	cp.ColumnDefs = append([]schema.ColumnDef(nil), s.ColumnDefs...)
	cp.Indexes = append([]schema.Index(nil), s.Indexes...)
	cp.ForeignKeys = append([]schema.ForeignKey(nil), s.ForeignKeys...)
	cp.Checks = append([]schema.CheckConstraint(nil), s.Checks...)
	return &cp
}

type state struct {
	tables    map[string]*table
	functions map[string]store.FunctionDef
	createdAt map[string]string
	updatedAt map[string]string
}

func newState() *state {
	return &state{
		tables:    map[string]*table{},
		functions: map[string]store.FunctionDef{},
		createdAt: map[string]string{},
		updatedAt: map[string]string{},
	}
}

func (s *state) clone() *state {
	cp := newState()
	for name, t := range s.tables {
		cp.tables[name] = t.clone()
	}
	for name, f := range s.functions {
		cp.functions[name] = f
	}
	for k, v := range s.createdAt {
		cp.createdAt[k] = v
	}
	for k, v := range s.updatedAt {
		cp.updatedAt[k] = v
	}
	return cp
}

// Store is the in-memory back-end. Now() supplies the RFC3339 timestamp
// recorded for store.Metadata; it defaults to a fixed zero value so the
// package has no wall-clock dependency of its own, and callers that want
// real timestamps inject Now.
type Store struct {
	mu    sync.Mutex
	cur   *state
	stack []*state

	Now func() string
}

func New() *Store {
	return &Store{cur: newState()}
}

func (s *Store) now() string {
	if s.Now != nil {
		return s.Now()
	}
	return ""
}

// --- store.Store ---

func (s *Store) FetchAllSchemas(ctx context.Context) ([]*schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.cur.tables))
	for n := range s.cur.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*schema.Schema, len(names))
	for i, n := range names {
		out[i] = s.cur.tables[n].schema
	}
	return out, nil
}

func (s *Store) FetchSchema(ctx context.Context, table string) (*schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(table)]
	if !ok {
		return nil, nil
	}
	return t.schema, nil
}

func (s *Store) FetchData(ctx context.Context, tableName string, key value.Key) (*schema.DataRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		return nil, glueerr.TableNotFound(tableName)
	}
	r, ok := t.rows[string(key.Bytes)]
	if !ok {
		return nil, nil
	}
	d := r.Data.Clone()
	return &d, nil
}

func (s *Store) ScanData(ctx context.Context, tableName string) (store.RowIterator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		return nil, glueerr.TableNotFound(tableName)
	}
	rows := make([]store.Row, 0, len(t.order))
	for _, k := range t.order {
		r := t.rows[k]
		rows = append(rows, store.Row{Key: r.Key, Data: r.Data.Clone()})
	}
	return store.NewSliceIterator(rows), nil
}

// --- store.StoreMut ---

func (s *Store) InsertSchema(ctx context.Context, sch *schema.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := lower(sch.Table)
	s.cur.tables[name] = &table{schema: cloneSchema(sch), rows: map[string]store.Row{}}
	now := s.now()
	s.cur.createdAt[name] = now
	s.cur.updatedAt[name] = now
	return nil
}

func (s *Store) DeleteSchema(ctx context.Context, tableName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := lower(tableName)
	if _, ok := s.cur.tables[name]; !ok {
		return glueerr.TableNotFound(tableName)
	}
	delete(s.cur.tables, name)
	delete(s.cur.createdAt, name)
	delete(s.cur.updatedAt, name)
	return nil
}

func (s *Store) AppendData(ctx context.Context, tableName string, rows []schema.DataRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := lower(tableName)
	t, ok := s.cur.tables[name]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	for _, row := range rows {
		t.autoSeq++
		key, err := value.NewKey(value.NewInt64(t.autoSeq))
		if err != nil {
			return err
		}
		s.putLocked(t, store.Row{Key: key, Data: row.Clone()})
	}
	s.cur.updatedAt[name] = s.now()
	return nil
}

func (s *Store) InsertData(ctx context.Context, tableName string, rows []store.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := lower(tableName)
	t, ok := s.cur.tables[name]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	for _, r := range rows {
		s.putLocked(t, store.Row{Key: r.Key, Data: r.Data.Clone()})
	}
	s.cur.updatedAt[name] = s.now()
	return nil
}

func (s *Store) DeleteData(ctx context.Context, tableName string, keys []value.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := lower(tableName)
	t, ok := s.cur.tables[name]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	for _, k := range keys {
		s.deleteLocked(t, k)
	}
	s.cur.updatedAt[name] = s.now()
	return nil
}

func (s *Store) putLocked(t *table, r store.Row) {
	key := string(r.Key.Bytes)
	if _, exists := t.rows[key]; !exists {
		i := sort.SearchStrings(t.order, key)
		t.order = append(t.order, "")
		copy(t.order[i+1:], t.order[i:])
		t.order[i] = key
	}
	t.rows[key] = r
}

func (s *Store) deleteLocked(t *table, k value.Key) {
	key := string(k.Bytes)
	if _, ok := t.rows[key]; !ok {
		return
	}
	delete(t.rows, key)
	i := sort.SearchStrings(t.order, key)
	if i < len(t.order) && t.order[i] == key {
		t.order = append(t.order[:i], t.order[i+1:]...)
	}
}

// --- store.AlterTable ---

func (s *Store) RenameSchema(ctx context.Context, tableName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := lower(tableName)
	t, ok := s.cur.tables[name]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	t.schema.Table = newName
	delete(s.cur.tables, name)
	s.cur.tables[lower(newName)] = t
	return nil
}

func (s *Store) RenameColumn(ctx context.Context, tableName, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	i := t.schema.ColumnIndex(oldName)
	if i < 0 {
		return glueerr.ColumnNotFound(tableName, oldName)
	}
	t.schema.ColumnDefs[i].Name = newName
	return nil
}

func (s *Store) AddColumn(ctx context.Context, tableName string, col schema.ColumnDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	t.schema.ColumnDefs = append(t.schema.ColumnDefs, col)
	for key, r := range t.rows {
		r.Data.Vec = append(r.Data.Vec, value.NewNull())
		t.rows[key] = r
	}
	return nil
}

func (s *Store) DropColumn(ctx context.Context, tableName, column string, ifExists bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	i := t.schema.ColumnIndex(column)
	if i < 0 {
		if ifExists {
			return nil
		}
		return glueerr.ColumnNotFound(tableName, column)
	}
	t.schema.ColumnDefs = append(t.schema.ColumnDefs[:i], t.schema.ColumnDefs[i+1:]...)
	for key, r := range t.rows {
		r.Data.Vec = append(r.Data.Vec[:i], r.Data.Vec[i+1:]...)
		t.rows[key] = r
	}
	return nil
}

// --- store.Index / store.IndexMut ---
//
// memstore has no persistent index structure; ScanIndexedData evaluates
// the index expression against every row (a linear scan), sorts by it,
// and applies the bound — still a correct implementation of the
// capability's contract, just not an accelerated one (spec §4.6's
// "executor falls back to scan+filter" note describes back-ends with no
// Index capability at all; memstore instead offers a naive-but-real one
// so the planner's secondary-index path (plan/index.go) has something to
// exercise end to end).

func (s *Store) ScanIndexedData(ctx context.Context, tableName, indexName string, asc bool, cmpOp string, cmpValue value.Value) (store.RowIterator, error) {
	s.mu.Lock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		s.mu.Unlock()
		return nil, glueerr.TableNotFound(tableName)
	}
	idx := t.schema.FindIndex(indexName)
	if idx == nil {
		s.mu.Unlock()
		return nil, glueerr.New(glueerr.Storage, "IndexNotFound", "index %q not found on %q", indexName, tableName)
	}
	rows := make([]store.Row, 0, len(t.order))
	for _, k := range t.order {
		rows = append(rows, t.rows[k])
	}
	sch := t.schema
	s.mu.Unlock()

	type keyed struct {
		row store.Row
		v   value.Value
	}
	items := make([]keyed, 0, len(rows))
	for _, r := range rows {
		v, err := evalIndexExpr(idx, sch, r.Data)
		if err != nil {
			continue
		}
		if cmpOp != "" {
			keep, err := indexBoundHolds(v, cmpOp, cmpValue)
			if err != nil || !keep {
				continue
			}
		}
		items = append(items, keyed{row: store.Row{Key: r.Key, Data: r.Data.Clone()}, v: v})
	}
	sort.SliceStable(items, func(i, j int) bool {
		cmp, err := value.Compare(items[i].v, items[j].v)
		if err != nil {
			return false
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
	out := make([]store.Row, len(items))
	for i, it := range items {
		out[i] = it.row
	}
	return store.NewSliceIterator(out), nil
}

func (s *Store) CreateIndex(ctx context.Context, tableName string, idx schema.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	t.schema.Indexes = append(t.schema.Indexes, idx)
	return nil
}

func (s *Store) DropIndex(ctx context.Context, tableName, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.cur.tables[lower(tableName)]
	if !ok {
		return glueerr.TableNotFound(tableName)
	}
	for i, idx := range t.schema.Indexes {
		if idx.Name == name {
			t.schema.Indexes = append(t.schema.Indexes[:i], t.schema.Indexes[i+1:]...)
			return nil
		}
	}
	return glueerr.New(glueerr.Storage, "IndexNotFound", "index %q not found on %q", name, tableName)
}

// --- store.Transaction ---

func (s *Store) Begin(ctx context.Context, autocommit bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAutocommit := len(s.stack) > 0
	s.stack = append(s.stack, s.cur.clone())
	return wasAutocommit, nil
}

func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return glueerr.New(glueerr.Storage, "NoActiveTransaction", "commit with no active transaction")
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

func (s *Store) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return glueerr.New(glueerr.Storage, "NoActiveTransaction", "rollback with no active transaction")
	}
	s.cur = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// --- store.Metadata ---

func (s *Store) SchemaNames(ctx context.Context) ([]store.SchemaMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.SchemaMeta, 0, len(s.cur.tables))
	for name, t := range s.cur.tables {
		out = append(out, store.SchemaMeta{
			Table:     t.schema.Table,
			CreatedAt: s.cur.createdAt[name],
			UpdatedAt: s.cur.updatedAt[name],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out, nil
}

// --- store.CustomFunction / store.CustomFunctionMut ---

func (s *Store) FetchFunction(ctx context.Context, name string) (*store.FunctionDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.cur.functions[name]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (s *Store) InsertFunction(ctx context.Context, def store.FunctionDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.functions[def.Name] = def
	return nil
}

func (s *Store) DeleteFunction(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cur.functions, name)
	return nil
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func evalIndexExpr(idx *schema.Index, sch *schema.Schema, row schema.DataRow) (value.Value, error) {
	if ident, ok := idx.Expr.(ast.Ident); ok {
		if v, found := row.Get(sch, ident.Name); found {
			return v, nil
		}
	}
	return value.Value{}, glueerr.New(glueerr.Storage, "IndexExprUnsupported", "memstore only indexes plain column expressions")
}

func indexBoundHolds(v value.Value, cmpOp string, bound value.Value) (bool, error) {
	cmp, err := value.Compare(v, bound)
	if err != nil {
		return false, err
	}
	switch cmpOp {
	case "=":
		return cmp == 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, glueerr.New(glueerr.Storage, "UnsupportedComparison", "unsupported index comparison %q", cmpOp)
	}
}
