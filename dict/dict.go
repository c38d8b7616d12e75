// Package dict renders the engine's system dictionary (spec §4.8):
// GLUE_TABLES, GLUE_OBJECTS, GLUE_INDEXES, and GLUE_TABLE_COLUMNS, plus
// the SHOW TABLES/SHOW COLUMNS/EXPLAIN surfaces built directly on the
// same schema data. Grounded on the teacher's internal/output package's
// row-rendering-from-struct style (sql.go/json.go iterate a Migration's
// fields into rows); here the source struct is schema.Schema rather than
// a migration plan.
package dict

import (
	"sort"

	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
)

// TableRow is one row of GLUE_TABLES.
type TableRow struct {
	Table      string
	ColumnCount int
	Schemaless bool
	CreatedAt  string
	UpdatedAt  string
}

// Tables renders GLUE_TABLES, sorted by name for deterministic output.
// meta is optional per-table timestamp metadata from a store.Metadata
// implementation; nil entries leave CreatedAt/UpdatedAt empty.
func Tables(schemas []*schema.Schema, meta map[string]store.SchemaMeta) []TableRow {
	out := make([]TableRow, 0, len(schemas))
	for _, s := range schemas {
		row := TableRow{Table: s.Table, ColumnCount: len(s.ColumnDefs), Schemaless: s.Schemaless()}
		if m, ok := meta[s.Table]; ok {
			row.CreatedAt, row.UpdatedAt = m.CreatedAt, m.UpdatedAt
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}

// ObjectRow is one row of GLUE_OBJECTS: every named object (table, index,
// or foreign key) the dictionary knows about, for a single flat listing.
type ObjectRow struct {
	Table      string
	ObjectType string // "TABLE", "INDEX", "FOREIGN KEY"
	Name       string
}

func Objects(schemas []*schema.Schema) []ObjectRow {
	var out []ObjectRow
	for _, s := range schemas {
		out = append(out, ObjectRow{Table: s.Table, ObjectType: "TABLE", Name: s.Table})
		for _, idx := range s.Indexes {
			out = append(out, ObjectRow{Table: s.Table, ObjectType: "INDEX", Name: idx.Name})
		}
		for _, fk := range s.ForeignKeys {
			out = append(out, ObjectRow{Table: s.Table, ObjectType: "FOREIGN KEY", Name: fk.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IndexRow is one row of GLUE_INDEXES.
type IndexRow struct {
	Table string
	Name  string
	Asc   bool
}

func Indexes(schemas []*schema.Schema) []IndexRow {
	var out []IndexRow
	for _, s := range schemas {
		for _, idx := range s.Indexes {
			out = append(out, IndexRow{Table: s.Table, Name: idx.Name, Asc: idx.Asc})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ColumnRow is one row of GLUE_TABLE_COLUMNS and the basis for SHOW
// COLUMNS FROM t (EXPLAIN t reads the schema's ColumnDefs directly).
type ColumnRow struct {
	Table      string
	Name       string
	DataType   string
	Nullable   bool
	PrimaryKey bool
	Unique     bool
	Comment    string
}

func Columns(s *schema.Schema) []ColumnRow {
	out := make([]ColumnRow, len(s.ColumnDefs))
	for i, c := range s.ColumnDefs {
		out[i] = ColumnRow{
			Table: s.Table, Name: c.Name, DataType: c.DataType.String(),
			Nullable: c.Nullable, PrimaryKey: c.PrimaryKey, Unique: c.Unique, Comment: c.Comment,
		}
	}
	return out
}

func AllColumns(schemas []*schema.Schema) []ColumnRow {
	var out []ColumnRow
	for _, s := range schemas {
		out = append(out, Columns(s)...)
	}
	return out
}
