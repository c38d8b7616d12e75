// Package plan builds the schema map, validates column references, and
// rewrites a Statement's index/join directives before execution (spec
// §4.4). Grounded on internal/diff/diff_table.go's by-name map
// construction with collision tracking (mapColumnsByName), repurposed
// from comparing two schema versions to resolving every table a
// statement references against the live store.
package plan

import (
	"context"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
)

// SchemaMap is every table's Schema, keyed by lower-cased table name, as
// referenced anywhere in a single statement.
type SchemaMap map[string]*schema.Schema

// Plan validates st against s and rewrites its FROM/JOIN directives in
// place (TableFactor.Index, Join.HashJoin), returning the SchemaMap the
// executor needs to interpret schemaless-vs-schema-carrying rows. Plan
// never mutates storage and is deterministic given (s, st) (spec §4.4).
func Plan(ctx context.Context, st ast.Statement, s store.Store) (SchemaMap, error) {
	names := collectTableNames(st)
	sm := SchemaMap{}
	for _, n := range names {
		sch, err := s.FetchSchema(ctx, n)
		if err != nil {
			return nil, err
		}
		if sch == nil {
			return nil, glueerr.TableNotFound(n)
		}
		sm[lower(n)] = sch
	}

	if err := validateReferences(st, sm); err != nil {
		return nil, err
	}

	idx, hasIndex := s.(store.Index)
	if sel := selectOf(st); sel != nil {
		planIndexItem(sel, sm)
		if hasIndex {
			planSecondaryIndex(sel, sm, idx)
		}
		planHashJoins(sel)
	}

	return sm, nil
}

func selectOf(st ast.Statement) *ast.Select {
	switch s := st.(type) {
	case ast.QueryStatement:
		return selectOfQuery(s.Query)
	default:
		return nil
	}
}

func selectOfQuery(q *ast.Query) *ast.Select {
	if q == nil {
		return nil
	}
	return q.Body.Select
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
