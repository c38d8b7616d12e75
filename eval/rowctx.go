// Package eval implements the engine's two evaluation modes (spec §4.3):
// stateless (no row context, used for DEFAULT expressions and constant
// folding) and context-bound (a row context mapping unqualified and
// table-qualified names to Values). Function/aggregate dispatch tables
// below mirror the teacher's per-constant switch style in
// parseTableOptions (internal/parser/mysql/parser.go), generalized from
// table-option enums to this engine's closed Function/Aggregate enums.
package eval

import (
	"sort"
	"strings"

	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

// RowContext is the environment mapping names to Values during
// context-bound evaluation (spec GLOSSARY "Row context"). It is built
// fresh per row by the executor and never retained across rows — the
// row it refers to is borrowed, not owned (spec §9).
type RowContext struct {
	// byUnqualified holds one entry per column name visible without a
	// table qualifier; ambiguous names are recorded but resolving them
	// fails with ColumnReferenceAmbiguous.
	byUnqualified map[string]value.Value
	ambiguous     map[string]bool
	byQualified   map[string]map[string]value.Value
}

func NewRowContext() *RowContext {
	return &RowContext{
		byUnqualified: map[string]value.Value{},
		ambiguous:     map[string]bool{},
		byQualified:   map[string]map[string]value.Value{},
	}
}

// Bind adds one table's columns to the context. table may be "" for a
// schemaless or unaliased single-table query, in which case only the
// unqualified form is registered.
func (c *RowContext) Bind(table string, columns map[string]value.Value) {
	if table != "" {
		c.byQualified[strings.ToLower(table)] = columns
	}
	for name, v := range columns {
		key := strings.ToLower(name)
		if _, exists := c.byUnqualified[key]; exists {
			c.ambiguous[key] = true
		}
		c.byUnqualified[key] = v
	}
}

func (c *RowContext) Resolve(name string) (value.Value, error) {
	key := strings.ToLower(name)
	if c.ambiguous[key] {
		return value.Value{}, glueerr.ColumnReferenceAmbiguous(name)
	}
	v, ok := c.byUnqualified[key]
	if !ok {
		return value.Value{}, glueerr.ColumnNotFound("", name)
	}
	return v, nil
}

// ColumnNames returns table's bound column names in sorted order, for
// wildcard expansion over schemaless rows where no ColumnDef order
// exists to follow instead.
func (c *RowContext) ColumnNames(table string) []string {
	cols, ok := c.byQualified[strings.ToLower(table)]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(cols))
	for k := range cols {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (c *RowContext) ResolveQualified(table, name string) (value.Value, error) {
	cols, ok := c.byQualified[strings.ToLower(table)]
	if !ok {
		return value.Value{}, glueerr.TableNotFound(table)
	}
	v, ok := cols[strings.ToLower(name)]
	if !ok {
		return value.Value{}, glueerr.ColumnNotFound(table, name)
	}
	return v, nil
}
