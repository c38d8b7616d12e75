package mysqlstore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/value"
)

// valueDTO is the on-the-wire shape a value.Value round-trips through for
// persistence. Every Kind's native accessor is exhausted into whichever
// of these fields applies; encoding/json is stdlib rather than a
// pack-sourced dependency because no example repo in the pack serialises
// an arbitrary typed-value union to a relational column — DESIGN.md
// records this as a justified stdlib use.
type valueDTO struct {
	Kind  string     `json:"k"`
	Bool  *bool      `json:"b,omitempty"`
	Int   *int64     `json:"i,omitempty"`
	Uint  *uint64    `json:"u,omitempty"`
	Float *float64   `json:"f,omitempty"`
	Text  *string    `json:"t,omitempty"`
	List  []valueDTO `json:"l,omitempty"`
	Map   map[string]valueDTO `json:"m,omitempty"`
}

func kindName(k value.Kind) string {
	names := [...]string{
		"null", "bool", "int8", "int16", "int32", "int64", "int128",
		"uint8", "uint16", "uint32", "uint64", "uint128",
		"float32", "float64", "decimal", "text", "bytea", "inet",
		"date", "time", "timestamp", "interval", "uuid", "point", "list", "map",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "null"
}

func encodeValue(v value.Value) (valueDTO, error) {
	switch v.Kind {
	case value.Null:
		return valueDTO{Kind: "null"}, nil
	case value.Bool:
		b, _ := v.Bool()
		return valueDTO{Kind: "bool", Bool: &b}, nil
	case value.Int8, value.Int16, value.Int32, value.Int64:
		n, _ := v.Int64()
		return valueDTO{Kind: kindName(v.Kind), Int: &n}, nil
	case value.Int128:
		n, _ := v.Int128()
		return valueDTO{Kind: "int128", Text: strPtr(fmt.Sprintf("%d:%d", n.Hi, n.Lo))}, nil
	case value.Uint8, value.Uint16, value.Uint32, value.Uint64:
		n, _ := v.Uint64()
		return valueDTO{Kind: kindName(v.Kind), Uint: &n}, nil
	case value.Uint128:
		n, _ := v.Uint128()
		return valueDTO{Kind: "uint128", Text: strPtr(fmt.Sprintf("%d:%d", n.Hi, n.Lo))}, nil
	case value.Float32, value.Float64:
		f, _ := v.Float()
		return valueDTO{Kind: kindName(v.Kind), Float: &f}, nil
	case value.DecimalKind:
		d, _ := v.DecimalVal()
		return valueDTO{Kind: "decimal", Text: strPtr(d.String())}, nil
	case value.Text:
		s, _ := v.Text()
		return valueDTO{Kind: "text", Text: &s}, nil
	case value.Bytea:
		b, _ := v.Bytea()
		return valueDTO{Kind: "bytea", Text: strPtr(fmt.Sprintf("%x", b))}, nil
	case value.Inet:
		i, _ := v.InetVal()
		v4 := "v6"
		if i.V4 {
			v4 = "v4"
		}
		return valueDTO{Kind: "inet", Text: strPtr(fmt.Sprintf("%x:%s", i.Addr[:], v4))}, nil
	case value.Date:
		d, _ := v.DateVal()
		return valueDTO{Kind: "date", Text: strPtr(d.String())}, nil
	case value.Time:
		t, _ := v.TimeVal()
		return valueDTO{Kind: "time", Text: strPtr(t.String())}, nil
	case value.Timestamp:
		ts, _ := v.TimestampVal()
		return valueDTO{Kind: "timestamp", Text: strPtr(ts.Date.String() + " " + ts.Time.String())}, nil
	case value.IntervalKind:
		iv, _ := v.IntervalVal()
		return valueDTO{Kind: "interval", Text: strPtr(fmt.Sprintf("%d:%d", iv.Months, iv.Microseconds))}, nil
	case value.UuidKind:
		u, _ := v.UuidVal()
		return valueDTO{Kind: "uuid", Text: strPtr(u.String())}, nil
	case value.PointKind:
		p, _ := v.PointVal()
		return valueDTO{Kind: "point", Text: strPtr(fmt.Sprintf("%v:%v", p.X, p.Y))}, nil
	case value.ListKind:
		items, _ := v.List()
		out := make([]valueDTO, len(items))
		for i, it := range items {
			d, err := encodeValue(it)
			if err != nil {
				return valueDTO{}, err
			}
			out[i] = d
		}
		return valueDTO{Kind: "list", List: out}, nil
	case value.MapKind:
		m, _ := v.Map()
		out := make(map[string]valueDTO, len(m))
		for k, it := range m {
			d, err := encodeValue(it)
			if err != nil {
				return valueDTO{}, err
			}
			out[k] = d
		}
		return valueDTO{Kind: "map", Map: out}, nil
	default:
		return valueDTO{}, fmt.Errorf("mysqlstore: unsupported value kind %v", v.Kind)
	}
}

func strPtr(s string) *string { return &s }

func decodeValue(d valueDTO) (value.Value, error) {
	switch d.Kind {
	case "null":
		return value.NewNull(), nil
	case "bool":
		return value.NewBool(*d.Bool), nil
	case "int8":
		return value.NewInt8(int8(*d.Int)), nil
	case "int16":
		return value.NewInt16(int16(*d.Int)), nil
	case "int32":
		return value.NewInt32(int32(*d.Int)), nil
	case "int64":
		return value.NewInt64(*d.Int), nil
	case "uint8":
		return value.NewUint8(uint8(*d.Uint)), nil
	case "uint16":
		return value.NewUint16(uint16(*d.Uint)), nil
	case "uint32":
		return value.NewUint32(uint32(*d.Uint)), nil
	case "uint64":
		return value.NewUint64(*d.Uint), nil
	case "int128":
		var hi int64
		var lo uint64
		if _, err := fmt.Sscanf(*d.Text, "%d:%d", &hi, &lo); err != nil {
			return value.Value{}, err
		}
		return value.NewInt128(value.Int128Val{Hi: hi, Lo: lo}), nil
	case "uint128":
		var hi, lo uint64
		if _, err := fmt.Sscanf(*d.Text, "%d:%d", &hi, &lo); err != nil {
			return value.Value{}, err
		}
		return value.NewUint128(value.Uint128Val{Hi: hi, Lo: lo}), nil
	case "interval":
		var months int32
		var us int64
		if _, err := fmt.Sscanf(*d.Text, "%d:%d", &months, &us); err != nil {
			return value.Value{}, err
		}
		return value.NewInterval(value.Interval{Months: months, Microseconds: us}), nil
	case "point":
		var x, y float64
		if _, err := fmt.Sscanf(*d.Text, "%v:%v", &x, &y); err != nil {
			return value.Value{}, err
		}
		return value.NewPoint(value.Point{X: x, Y: y}), nil
	case "inet":
		parts := strings.SplitN(*d.Text, ":", 2)
		if len(parts) != 2 {
			return value.Value{}, fmt.Errorf("mysqlstore: malformed inet encoding %q", *d.Text)
		}
		raw, err := hex.DecodeString(parts[0])
		if err != nil {
			return value.Value{}, err
		}
		var addr [16]byte
		copy(addr[:], raw)
		return value.NewInet(value.Inet{Addr: addr, V4: parts[1] == "v4"}), nil
	case "float32":
		return value.NewFloat32(float32(*d.Float))
	case "float64":
		return value.NewFloat64(*d.Float)
	case "decimal":
		dec, err := value.NewDecimalFromString(*d.Text)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDecimal(dec), nil
	case "text":
		return value.NewText(*d.Text), nil
	case "bytea":
		b, err := hex.DecodeString(*d.Text)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBytea(b), nil
	case "date":
		dt, err := value.ParseDate(*d.Text)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDate(dt), nil
	case "time":
		t, err := value.ParseTime(*d.Text)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTime(t), nil
	case "timestamp":
		ts, err := value.ParseTimestamp(*d.Text)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTimestamp(ts), nil
	case "uuid":
		u, err := value.ParseUuid(*d.Text)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewUuid(u), nil
	case "list":
		items := make([]value.Value, len(d.List))
		for i, it := range d.List {
			v, err := decodeValue(it)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.NewList(items), nil
	case "map":
		m := make(map[string]value.Value, len(d.Map))
		for k, it := range d.Map {
			v, err := decodeValue(it)
			if err != nil {
				return value.Value{}, err
			}
			m[k] = v
		}
		return value.NewMap(m), nil
	default:
		return value.Value{}, fmt.Errorf("mysqlstore: unsupported encoded kind %q", d.Kind)
	}
}

func marshalRow(r schema.DataRow) (string, error) {
	if r.IsMap() {
		dtos := make(map[string]valueDTO, len(r.Map))
		for k, v := range r.Map {
			d, err := encodeValue(v)
			if err != nil {
				return "", err
			}
			dtos[k] = d
		}
		b, err := json.Marshal(struct {
			Map map[string]valueDTO `json:"map"`
		}{Map: dtos})
		return string(b), err
	}
	dtos := make([]valueDTO, len(r.Vec))
	for i, v := range r.Vec {
		d, err := encodeValue(v)
		if err != nil {
			return "", err
		}
		dtos[i] = d
	}
	b, err := json.Marshal(struct {
		Vec []valueDTO `json:"vec"`
	}{Vec: dtos})
	return string(b), err
}

func unmarshalRow(s string) (schema.DataRow, error) {
	var probe struct {
		Vec []valueDTO          `json:"vec"`
		Map map[string]valueDTO `json:"map"`
	}
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return schema.DataRow{}, err
	}
	if probe.Map != nil {
		m := make(map[string]value.Value, len(probe.Map))
		for k, d := range probe.Map {
			v, err := decodeValue(d)
			if err != nil {
				return schema.DataRow{}, err
			}
			m[k] = v
		}
		return schema.NewMapRow(m), nil
	}
	vec := make([]value.Value, len(probe.Vec))
	for i, d := range probe.Vec {
		v, err := decodeValue(d)
		if err != nil {
			return schema.DataRow{}, err
		}
		vec[i] = v
	}
	return schema.NewVecRow(vec), nil
}

func marshalValue(v value.Value) (string, error) {
	d, err := encodeValue(v)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(d)
	return string(b), err
}

func unmarshalValue(s string) (value.Value, error) {
	var d valueDTO
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return value.Value{}, err
	}
	return decodeValue(d)
}
