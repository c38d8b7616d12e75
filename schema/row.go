package schema

import "github.com/glue-sql/glue/value"

// DataRow is one stored row, in one of two shapes depending on whether its
// table is schemaless (spec §3.4): Vec holds positional values aligned
// with a Schema's ColumnDefs; Map holds free-form column->value pairs for
// a schemaless table. Exactly one of Vec/Map is set.
type DataRow struct {
	Vec []value.Value
	Map map[string]value.Value
}

func NewVecRow(vals []value.Value) DataRow {
	return DataRow{Vec: append([]value.Value(nil), vals...)}
}

func NewMapRow(m map[string]value.Value) DataRow {
	cp := make(map[string]value.Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return DataRow{Map: cp}
}

func (r DataRow) IsMap() bool { return r.Map != nil }

// Get resolves a column by name against either shape: for Vec rows, name
// is looked up in s's ColumnDefs; for Map rows, it's a direct key lookup.
func (r DataRow) Get(s *Schema, name string) (value.Value, bool) {
	if r.IsMap() {
		v, ok := r.Map[name]
		return v, ok
	}
	i := s.ColumnIndex(name)
	if i < 0 || i >= len(r.Vec) {
		return value.Value{}, false
	}
	return r.Vec[i], true
}

// Clone deep-copies a row so callers may mutate the result without
// aliasing stored data (spec §5).
func (r DataRow) Clone() DataRow {
	if r.IsMap() {
		cp := make(map[string]value.Value, len(r.Map))
		for k, v := range r.Map {
			cp[k] = v.Clone()
		}
		return DataRow{Map: cp}
	}
	cp := make([]value.Value, len(r.Vec))
	for i, v := range r.Vec {
		cp[i] = v.Clone()
	}
	return DataRow{Vec: cp}
}
