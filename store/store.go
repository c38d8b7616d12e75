// Package store declares the storage capability contracts (spec §4.6) a
// back-end implements against the executor. Grounded on
// _examples/mstgnz-sdc/interfaces/database.go's QueryExecutor /
// TransactionManager / ConnectionManager / SchemaManager split — the
// clearest capability-interface precedent in the pack, since the teacher
// itself drives database/sql directly in internal/apply with no storage
// abstraction layer. Every method takes a context.Context and returns a
// plain error; the executor feature-detects optional capabilities with a
// type assertion against the concrete back-end value.
package store

import (
	"context"

	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/value"
)

// Row pairs a storage key with its data, the unit scan_data/fetch_data
// deal in (spec §4.6).
type Row struct {
	Key  value.Key
	Data schema.DataRow
}

// Store is the read-only capability every back-end must implement.
type Store interface {
	FetchAllSchemas(ctx context.Context) ([]*schema.Schema, error)
	FetchSchema(ctx context.Context, table string) (*schema.Schema, error)
	FetchData(ctx context.Context, table string, key value.Key) (*schema.DataRow, error)
	// ScanData streams rows in strictly ascending key order (spec §5
	// "Ordering"). Implementations that cannot stream may build the full
	// slice and return an in-memory iterator.
	ScanData(ctx context.Context, table string) (RowIterator, error)
}

// RowIterator is a minimal pull-based cursor so back-ends can avoid
// materialising an entire table (spec §4.5 "not materialised until limit
// or a terminal consumer demands it").
type RowIterator interface {
	Next(ctx context.Context) (Row, bool, error)
	Close() error
}

// StoreMut is the write capability every back-end must implement.
type StoreMut interface {
	InsertSchema(ctx context.Context, s *schema.Schema) error
	DeleteSchema(ctx context.Context, table string) error
	// AppendData auto-assigns keys for rows with no declared primary key.
	AppendData(ctx context.Context, table string, rows []schema.DataRow) error
	// InsertData writes rows under explicit keys, overwriting existing ones.
	InsertData(ctx context.Context, table string, rows []Row) error
	DeleteData(ctx context.Context, table string, keys []value.Key) error
}

// AlterTable is optional; its absence triggers the executor's synthetic
// rewrite path (spec §4.5).
type AlterTable interface {
	RenameSchema(ctx context.Context, table, newName string) error
	RenameColumn(ctx context.Context, table, oldName, newName string) error
	AddColumn(ctx context.Context, table string, col schema.ColumnDef) error
	DropColumn(ctx context.Context, table, column string, ifExists bool) error
}

// Index is the optional read side of secondary-index support.
type Index interface {
	// ScanIndexedData scans in the index's order, optionally bounded by a
	// comparison against value (cmpOp is one of ast.OpEq/OpLt/OpLtEq/
	// OpGt/OpGtEq; an empty cmpOp string means an unbounded ordered scan).
	ScanIndexedData(ctx context.Context, table, index string, asc bool, cmpOp string, cmpValue value.Value) (RowIterator, error)
}

// IndexMut is the optional write side of secondary-index support.
type IndexMut interface {
	CreateIndex(ctx context.Context, table string, idx schema.Index) error
	DropIndex(ctx context.Context, table, name string) error
}

// Transaction is optional; its absence disables user BEGIN (spec §4.7).
type Transaction interface {
	Begin(ctx context.Context, autocommit bool) (wasAutocommit bool, err error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SchemaMeta is per-table metadata powering the dictionary (spec §4.8).
type SchemaMeta struct {
	Table     string
	CreatedAt string // RFC3339, empty if unknown
	UpdatedAt string
}

// Metadata is optional; it powers GLUE_TABLES/GLUE_OBJECTS enrichment.
type Metadata interface {
	SchemaNames(ctx context.Context) ([]SchemaMeta, error)
}

// CustomFunction is the optional read side of user-defined functions.
type CustomFunction interface {
	FetchFunction(ctx context.Context, name string) (*FunctionDef, error)
}

// CustomFunctionMut is the optional write side of user-defined functions.
type CustomFunctionMut interface {
	InsertFunction(ctx context.Context, def FunctionDef) error
	DeleteFunction(ctx context.Context, name string) error
}

// FunctionDef is a user-defined scalar function's persisted definition
// (spec §6.2 CREATE FUNCTION/DROP FUNCTION).
type FunctionDef struct {
	Name   string
	Params []string
	Body   string // rendered SQL expression text, re-parsed on each call
}
