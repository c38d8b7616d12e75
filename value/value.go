// Package value implements the engine's typed scalar model: the Value
// tagged union, three-valued comparison, and the numeric widening rules
// every other package (eval, executor, key) builds on.
package value

import (
	"fmt"
	"math"
)

// Kind discriminates the variant held by a Value. It is a closed
// enumeration: adding a variant means adding a Kind constant, a case in
// every switch below, and an arm in eval's function/comparison tables.
type Kind int

const (
	Null Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Int128
	Uint8
	Uint16
	Uint32
	Uint64
	Uint128
	Float32
	Float64
	DecimalKind
	Text
	Bytea
	Inet
	Date
	Time
	Timestamp
	IntervalKind
	UuidKind
	PointKind
	ListKind
	MapKind
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "NULL"
	case Bool:
		return "BOOLEAN"
	case Int8, Int16, Int32, Int64, Int128:
		return "INT"
	case Uint8, Uint16, Uint32, Uint64, Uint128:
		return "UINT"
	case Float32, Float64:
		return "FLOAT"
	case DecimalKind:
		return "DECIMAL"
	case Text:
		return "TEXT"
	case Bytea:
		return "BYTEA"
	case Inet:
		return "INET"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMP"
	case IntervalKind:
		return "INTERVAL"
	case UuidKind:
		return "UUID"
	case PointKind:
		return "POINT"
	case ListKind:
		return "LIST"
	case MapKind:
		return "MAP"
	default:
		return "UNKNOWN"
	}
}

// Value is the engine's typed scalar. Exactly one of the typed fields is
// meaningful for a given Kind; the rest are zero. This mirrors the
// teacher's preference for an explicit discriminator field over an
// interface{} payload (see core.Constraint's Type/fields split).
type Value struct {
	Kind Kind

	boolVal bool
	i64     int64
	i128    Int128Val
	u64     uint64
	u128    Uint128Val
	f64     float64
	dec     Decimal
	text    string
	bytes   []byte
	inet    Inet
	date    Date
	time    Time
	ts      Timestamp
	iv      Interval
	uuid    Uuid
	point   Point
	list    []Value
	m       map[string]Value
}

// Int128Val and Uint128Val hold 128-bit integers as two 64-bit halves
// (high, low); Go has no native int128.
type Int128Val struct {
	Hi int64
	Lo uint64
}

type Uint128Val struct {
	Hi uint64
	Lo uint64
}

func NewNull() Value                  { return Value{Kind: Null} }
func NewBool(b bool) Value            { return Value{Kind: Bool, boolVal: b} }
func NewInt8(v int8) Value            { return Value{Kind: Int8, i64: int64(v)} }
func NewInt16(v int16) Value          { return Value{Kind: Int16, i64: int64(v)} }
func NewInt32(v int32) Value          { return Value{Kind: Int32, i64: int64(v)} }
func NewInt64(v int64) Value          { return Value{Kind: Int64, i64: v} }
func NewInt128(v Int128Val) Value     { return Value{Kind: Int128, i128: v} }
func NewUint8(v uint8) Value          { return Value{Kind: Uint8, u64: uint64(v)} }
func NewUint16(v uint16) Value        { return Value{Kind: Uint16, u64: uint64(v)} }
func NewUint32(v uint32) Value        { return Value{Kind: Uint32, u64: uint64(v)} }
func NewUint64(v uint64) Value        { return Value{Kind: Uint64, u64: v} }
func NewUint128(v Uint128Val) Value   { return Value{Kind: Uint128, u128: v} }
func NewText(s string) Value          { return Value{Kind: Text, text: s} }
func NewBytea(b []byte) Value         { return Value{Kind: Bytea, bytes: append([]byte(nil), b...)} }
func NewInet(i Inet) Value            { return Value{Kind: Inet, inet: i} }
func NewDate(d Date) Value            { return Value{Kind: Date, date: d} }
func NewTime(t Time) Value            { return Value{Kind: Time, time: t} }
func NewTimestamp(t Timestamp) Value  { return Value{Kind: Timestamp, ts: t} }
func NewInterval(iv Interval) Value   { return Value{Kind: IntervalKind, iv: iv} }
func NewUuid(u Uuid) Value            { return Value{Kind: UuidKind, uuid: u} }
func NewPoint(p Point) Value          { return Value{Kind: PointKind, point: p} }

// NewFloat32 rejects NaN at construction, per spec invariant (b): "Float
// NaN is not a valid Value."
func NewFloat32(f float32) (Value, error) {
	if math.IsNaN(float64(f)) {
		return Value{}, fmt.Errorf("value: NaN is not a valid Float32")
	}
	return Value{Kind: Float32, f64: float64(f)}, nil
}

func NewFloat64(f float64) (Value, error) {
	if math.IsNaN(f) {
		return Value{}, fmt.Errorf("value: NaN is not a valid Float64")
	}
	return Value{Kind: Float64, f64: f}, nil
}

func NewDecimal(d Decimal) Value { return Value{Kind: DecimalKind, dec: d} }

// NewList copies items without checking them; a Float element can never
// hold NaN, since NewFloat32/NewFloat64 already reject it.
func NewList(items []Value) Value {
	return Value{Kind: ListKind, list: append([]Value(nil), items...)}
}

func NewMap(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{Kind: MapKind, m: cp}
}

func (v Value) IsNull() bool { return v.Kind == Null }

func (v Value) Bool() (bool, bool)          { return v.boolVal, v.Kind == Bool }
func (v Value) Int64() (int64, bool)        { return v.i64, isSignedInt(v.Kind) }
func (v Value) Uint64() (uint64, bool)      { return v.u64, isUnsignedInt(v.Kind) }
func (v Value) Int128() (Int128Val, bool)   { return v.i128, v.Kind == Int128 }
func (v Value) Uint128() (Uint128Val, bool) { return v.u128, v.Kind == Uint128 }
func (v Value) Float() (float64, bool)      { return v.f64, v.Kind == Float32 || v.Kind == Float64 }
func (v Value) DecimalVal() (Decimal, bool) { return v.dec, v.Kind == DecimalKind }
func (v Value) Text() (string, bool)        { return v.text, v.Kind == Text }
func (v Value) Bytea() ([]byte, bool)       { return v.bytes, v.Kind == Bytea }
func (v Value) InetVal() (Inet, bool)       { return v.inet, v.Kind == Inet }
func (v Value) DateVal() (Date, bool)       { return v.date, v.Kind == Date }
func (v Value) TimeVal() (Time, bool)       { return v.time, v.Kind == Time }
func (v Value) TimestampVal() (Timestamp, bool) {
	return v.ts, v.Kind == Timestamp
}
func (v Value) IntervalVal() (Interval, bool) { return v.iv, v.Kind == IntervalKind }
func (v Value) UuidVal() (Uuid, bool)         { return v.uuid, v.Kind == UuidKind }
func (v Value) PointVal() (Point, bool)       { return v.point, v.Kind == PointKind }
func (v Value) List() ([]Value, bool)         { return v.list, v.Kind == ListKind }
func (v Value) Map() (map[string]Value, bool) { return v.m, v.Kind == MapKind }

func isSignedInt(k Kind) bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

func isUnsignedInt(k Kind) bool {
	switch k {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the Kind participates in arithmetic widening.
func (v Value) IsNumeric() bool {
	switch v.Kind {
	case Int8, Int16, Int32, Int64, Int128, Uint8, Uint16, Uint32, Uint64, Uint128, Float32, Float64, DecimalKind:
		return true
	default:
		return false
	}
}

// Hashable reports whether the Value may serve as a group-by key, a
// unique-constraint value, or an index key. Spec §3.1(d): List and Map may
// not serve these roles.
func (v Value) Hashable() bool {
	return v.Kind != ListKind && v.Kind != MapKind
}

func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Bool:
		return fmt.Sprintf("%v", v.boolVal)
	case Int8, Int16, Int32, Int64:
		return fmt.Sprintf("%d", v.i64)
	case Uint8, Uint16, Uint32, Uint64:
		return fmt.Sprintf("%d", v.u64)
	case Float32, Float64:
		return fmt.Sprintf("%v", v.f64)
	case DecimalKind:
		return v.dec.String()
	case Text:
		return v.text
	case Bytea:
		return fmt.Sprintf("%x", v.bytes)
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

// Clone deep-copies container kinds so a caller's mutation never aliases
// into storage (spec §5: "List/Map values are copied on read").
func (v Value) Clone() Value {
	switch v.Kind {
	case ListKind:
		cp := make([]Value, len(v.list))
		for i, it := range v.list {
			cp[i] = it.Clone()
		}
		v.list = cp
	case MapKind:
		cp := make(map[string]Value, len(v.m))
		for k, it := range v.m {
			cp[k] = it.Clone()
		}
		v.m = cp
	case Bytea:
		v.bytes = append([]byte(nil), v.bytes...)
	}
	return v
}
