// Package rowconv converts an executor.Payload's rows into a slice of
// caller-defined structs, the row-conversion facility spec §2/§GLOSSARY
// names but spec.md's body never details. Grounded on
// original_source/core/src/executor's FromGlueRow-style per-field mapping
// (see _examples/original_source/_INDEX.md), translated from that
// language's derive-macro into Go reflection over a `glue:"column_name"`
// struct tag, the idiomatic Go stand-in for a derive macro the teacher's
// own stack has no equivalent of.
package rowconv

import (
	"fmt"
	"reflect"

	"github.com/glue-sql/glue/executor"
	"github.com/glue-sql/glue/value"
)

// Into converts payload's rows into a []T, matching each column to a
// field of T by its `glue:"..."` tag, falling back to a case-insensitive
// field-name match when the tag is absent. T must be a struct type (or a
// pointer to one is not accepted; callers range over the result instead).
func Into[T any](payload executor.Payload) ([]T, error) {
	labels, rows, err := rowsOf(payload)
	if err != nil {
		return nil, err
	}

	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("rowconv: %T is not a struct type", zero)
	}
	fields := fieldsByColumn(rt)

	out := make([]T, len(rows))
	for i, row := range rows {
		rv := reflect.New(rt).Elem()
		for j, label := range labels {
			fi, ok := fields[label]
			if !ok {
				fi, ok = fields[lowerASCII(label)]
			}
			if !ok {
				continue
			}
			if j >= len(row) {
				continue
			}
			if err := setField(rv.Field(fi), row[j]); err != nil {
				return nil, fmt.Errorf("rowconv: row %d column %q: %w", i, label, err)
			}
		}
		out[i] = rv.Interface().(T)
	}
	return out, nil
}

// rowsOf normalises SelectPayload and SelectMapPayload into a common
// (labels, rows) shape; any other Payload has no rows to convert.
func rowsOf(payload executor.Payload) ([]string, [][]value.Value, error) {
	switch p := payload.(type) {
	case executor.SelectPayload:
		return p.Labels, p.Rows, nil
	case executor.SelectMapPayload:
		labelSet := map[string]bool{}
		var labels []string
		for _, r := range p.Rows {
			for k := range r {
				if !labelSet[k] {
					labelSet[k] = true
					labels = append(labels, k)
				}
			}
		}
		rows := make([][]value.Value, len(p.Rows))
		for i, r := range p.Rows {
			row := make([]value.Value, len(labels))
			for j, l := range labels {
				row[j] = r[l]
			}
			rows[i] = row
		}
		return labels, rows, nil
	default:
		return nil, nil, fmt.Errorf("rowconv: payload %T carries no rows", payload)
	}
}

func fieldsByColumn(rt reflect.Type) map[string]int {
	out := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("glue")
		if name == "" {
			name = lowerASCII(f.Name)
		}
		out[name] = i
	}
	return out
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// setField assigns v into dst, coercing the Value's native representation
// to dst's Go kind. Null values leave dst at its zero value unless dst is
// a pointer, in which case it is left nil.
func setField(dst reflect.Value, v value.Value) error {
	if v.IsNull() {
		return nil
	}
	if dst.Kind() == reflect.Ptr {
		elem := reflect.New(dst.Type().Elem())
		if err := setField(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(v.String())
	case reflect.Bool:
		b, ok := v.Bool()
		if !ok {
			return fmt.Errorf("value %v is not a BOOLEAN", v)
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.Int64()
		if !ok {
			u, uok := v.Uint64()
			if !uok {
				return fmt.Errorf("value %v is not an integer", v)
			}
			n = int64(u)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, ok := v.Uint64()
		if !ok {
			n, nok := v.Int64()
			if !nok {
				return fmt.Errorf("value %v is not an integer", v)
			}
			u = uint64(n)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, ok := v.Float()
		if !ok {
			return fmt.Errorf("value %v is not a FLOAT", v)
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("rowconv: unsupported destination kind %s", dst.Kind())
	}
	return nil
}
