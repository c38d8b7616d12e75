// Package schema holds the engine's table metadata model: Schema,
// ColumnDef, and the index/foreign-key/check-constraint shapes every
// storage capability contract (package store) and the planner/executor
// consult. Adapted directly from the teacher's internal/core schema
// model — same field-grouping and FindX helper style — rewired from a
// dialect-rendering surface to the engine's DDL-lifecycle one (spec §3.3).
package schema

import (
	"strings"

	"github.com/glue-sql/glue/ast"
)

// Schema names a table and holds everything the planner and executor need
// to resolve references, pick indexes, and validate mutations.
type Schema struct {
	Table string

	// ColumnDefs is nil for a schemaless table (spec §3.3: "None =
	// schemaless, where rows are free Map values").
	ColumnDefs []ColumnDef

	Indexes     []Index
	PrimaryKey  *PrimaryKeyRef
	ForeignKeys []ForeignKey
	Checks      []CheckConstraint

	// EngineHint is an opaque string composite back-ends may interpret
	// (e.g. a storage-engine name); the engine itself never inspects it.
	EngineHint string
}

// PrimaryKeyRef names the primary key as either a single column (by
// index into ColumnDefs) or, for composite keys, an ordered list of
// column indexes (spec §9: "Key construction from a multi-column primary
// key concatenates the byte-encoded columns in declared order").
type PrimaryKeyRef struct {
	ColumnIndexes []int
}

func (p *PrimaryKeyRef) Composite() bool { return p != nil && len(p.ColumnIndexes) > 1 }

// ColumnDef describes one column of a schema-carrying table.
type ColumnDef struct {
	Name       string
	DataType   ast.DataType
	Nullable   bool
	Default    ast.Expr // evaluable in an empty row context; may be nil
	Unique     bool
	PrimaryKey bool
	Comment    string
}

// Index is a declared secondary index: an expression over one or more
// columns that a storage back-end implementing the Index capability may
// maintain and the planner may pick for a scan (spec §4.4 item 4).
type Index struct {
	Name string
	Expr ast.Expr
	// Asc is the index's native iteration order (true = ascending); the
	// planner copies it unchanged into its scan directive.
	Asc bool
}

type ForeignKey struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
}

type CheckConstraint struct {
	Name string
	Expr ast.Expr
}

// Schemaless reports whether rows of this table are free Map values
// rather than positional Vec rows (spec §3.3/§9).
func (s *Schema) Schemaless() bool { return len(s.ColumnDefs) == 0 }

// ColumnIndex returns the position of name in ColumnDefs, case-insensitive
// (SQL identifiers are conventionally case-insensitive in this engine),
// or -1 if the schema has no such column.
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.ColumnDefs {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func (s *Schema) Column(name string) *ColumnDef {
	if i := s.ColumnIndex(name); i >= 0 {
		return &s.ColumnDefs[i]
	}
	return nil
}

// PrimaryKeyColumnNames resolves PrimaryKey.ColumnIndexes back to names,
// in declared key order.
func (s *Schema) PrimaryKeyColumnNames() []string {
	if s.PrimaryKey == nil {
		return nil
	}
	names := make([]string, len(s.PrimaryKey.ColumnIndexes))
	for i, idx := range s.PrimaryKey.ColumnIndexes {
		names[i] = s.ColumnDefs[idx].Name
	}
	return names
}

func (s *Schema) FindIndex(name string) *Index {
	for i := range s.Indexes {
		if strings.EqualFold(s.Indexes[i].Name, name) {
			return &s.Indexes[i]
		}
	}
	return nil
}
