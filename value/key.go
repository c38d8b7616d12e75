package value

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
)

// Key is the storage-level primary key: a total-order byte-encoded
// projection of a Value subset (everything except List, Map, and NaN
// floats — spec §3.2). Key equality delegates to Value equality.
type Key struct {
	Bytes []byte
	val   Value
}

// tag orders kinds into comparison groups so that, within a single-column
// key, encode(a) <= encode(b) iff a <= b for a, b of the same group
// (integers of one signedness, Decimal and Float, Text, ...). An integer
// and a Decimal/Float are encoded under different tags and do not order
// numerically against each other. Composite
// (multi-column) keys concatenate per-column encodings, which only need to
// be internally order-preserving — the tag byte does not need to impose a
// cross-kind order beyond that.
type tag byte

const (
	tagNull tag = iota
	tagBoolFalse
	tagBoolTrue
	tagInt
	tagDecimal
	tagText
	tagBytea
	tagDate
	tagTime
	tagTimestamp
	tagInterval
	tagUuid
	tagInet
	tagPoint
)

// NewKey builds a Key from a Value, rejecting List, Map, and NaN floats
// per spec §3.2 and the "reject primary keys containing Float, List, or
// Map" rule in spec §9 — Float itself is allowed in a Key (only NaN,
// already unconstructible, is excluded); List/Map are rejected here.
func NewKey(v Value) (Key, error) {
	if v.Kind == ListKind || v.Kind == MapKind {
		return Key{}, fmt.Errorf("value: %s cannot be used as a key", v.Kind)
	}
	b, err := Encode(v)
	if err != nil {
		return Key{}, err
	}
	return Key{Bytes: b, val: v}, nil
}

func (k Key) Value() Value { return k.val }

// Equal delegates to Value equality on the key's value, per spec §3.2.
// NewKey accepts Null, and a Null key is equal to no key, itself included.
func (k Key) Equal(o Key) bool {
	eq, isNull := Equal(k.val, o.val)
	return !isNull && eq
}

func (k Key) Less(o Key) bool {
	n := len(k.Bytes)
	if len(o.Bytes) < n {
		n = len(o.Bytes)
	}
	for i := 0; i < n; i++ {
		if k.Bytes[i] != o.Bytes[i] {
			return k.Bytes[i] < o.Bytes[i]
		}
	}
	return len(k.Bytes) < len(o.Bytes)
}

// Encode produces the order-preserving byte encoding for a single Value.
// Callers building a composite (multi-column) primary key concatenate
// Encode results in declared column order, per spec §3.2/§9.
func Encode(v Value) ([]byte, error) {
	switch v.Kind {
	case Null:
		return []byte{byte(tagNull)}, nil
	case Bool:
		b, _ := v.Bool()
		if b {
			return []byte{byte(tagBoolTrue)}, nil
		}
		return []byte{byte(tagBoolFalse)}, nil
	case Int8, Int16, Int32, Int64, Int128, Uint8, Uint16, Uint32, Uint64, Uint128:
		return encodeInt(v)
	case Float32, Float64:
		f, _ := v.AsFloat64()
		return encodeFloatAsDecimal(f), nil
	case DecimalKind:
		d, _ := v.DecimalVal()
		return encodeDecimal(d), nil
	case Text:
		s, _ := v.Text()
		return lengthPrefixed(byte(tagText), []byte(s)), nil
	case Bytea:
		b, _ := v.Bytea()
		return lengthPrefixed(byte(tagBytea), b), nil
	case Date:
		d, _ := v.DateVal()
		buf := make([]byte, 9)
		buf[0] = byte(tagDate)
		binary.BigEndian.PutUint32(buf[1:], flipSign32(int32(d.Year)))
		buf[5] = byte(d.Month)
		buf[6] = byte(d.Day)
		return buf[:7], nil
	case Time:
		t, _ := v.TimeVal()
		buf := make([]byte, 9)
		buf[0] = byte(tagTime)
		binary.BigEndian.PutUint64(buf[1:], flipSign64(t.Microseconds))
		return buf, nil
	case Timestamp:
		ts, _ := v.TimestampVal()
		dBytes, _ := Encode(NewDate(ts.Date))
		tBytes, _ := Encode(NewTime(ts.Time))
		out := []byte{byte(tagTimestamp)}
		out = append(out, dBytes[1:]...)
		out = append(out, tBytes[1:]...)
		return out, nil
	case IntervalKind:
		iv, _ := v.IntervalVal()
		buf := make([]byte, 13)
		buf[0] = byte(tagInterval)
		binary.BigEndian.PutUint32(buf[1:], flipSign32(iv.Months))
		binary.BigEndian.PutUint64(buf[5:], flipSign64(iv.Microseconds))
		return buf, nil
	case UuidKind:
		u, _ := v.UuidVal()
		return append([]byte{byte(tagUuid)}, u.Bytes()...), nil
	case Inet:
		i, _ := v.InetVal()
		return append([]byte{byte(tagInet)}, i.Addr[:]...), nil
	case PointKind:
		p, _ := v.PointVal()
		buf := make([]byte, 17)
		buf[0] = byte(tagPoint)
		binary.BigEndian.PutUint64(buf[1:], flipFloatSign(p.X))
		binary.BigEndian.PutUint64(buf[9:], flipFloatSign(p.Y))
		return buf, nil
	default:
		return nil, fmt.Errorf("value: %s cannot be key-encoded", v.Kind)
	}
}

func lengthPrefixed(t byte, b []byte) []byte {
	out := make([]byte, 0, 5+len(b))
	out = append(out, t)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	out = append(out, lenBuf[:]...)
	out = append(out, b...)
	return out
}

// encodeInt normalises every integer width to a 16-byte big-endian form,
// so that, per spec §3.2, integer keys of differing declared widths still
// compare correctly byte-for-byte. Signed kinds are biased by 2^127 and
// unsigned kinds are not, so a signed and an unsigned key do not order
// against each other.
func encodeInt(v Value) ([]byte, error) {
	big128 := to128Big(v)
	signed := isSignedInt(v.Kind) || v.Kind == Int128
	buf := make([]byte, 17)
	buf[0] = byte(tagInt)
	bias := new(big.Int).Lsh(big.NewInt(1), 127)
	var biased *big.Int
	if signed {
		biased = new(big.Int).Add(big128, bias)
	} else {
		biased = big128
	}
	b := biased.Bytes()
	if len(b) > 16 {
		return nil, ErrOverflow
	}
	copy(buf[1+16-len(b):], b)
	return buf, nil
}

func encodeDecimal(d Decimal) []byte {
	const canonicalScale = 30
	scale := d.Scale
	unscaled := d.Unscaled
	if unscaled == nil {
		unscaled = big.NewInt(0)
	}
	if scale < canonicalScale {
		unscaled = new(big.Int).Mul(unscaled, pow10(canonicalScale-scale))
	} else if scale > canonicalScale {
		unscaled = new(big.Int).Quo(unscaled, pow10(scale-canonicalScale))
	}

	sign := unscaled.Sign()
	mag := new(big.Int).Abs(unscaled).Bytes()
	body := lengthPrefixed(byte(tagDecimal), mag)
	if sign < 0 {
		// Invert the length+magnitude bytes so larger magnitudes (more
		// negative values) sort first, preserving total order across signs.
		inverted := make([]byte, len(body))
		for i, b := range body {
			inverted[i] = ^b
		}
		inverted[0] = byte(tagDecimal) - 1
		return inverted
	}
	if sign == 0 {
		body[0] = byte(tagDecimal)
		return body
	}
	body[0] = byte(tagDecimal) + 1
	return body
}

func encodeFloatAsDecimal(f float64) []byte {
	d, _ := NewDecimalFromString(fmt.Sprintf("%.17g", f))
	return encodeDecimal(d)
}

func flipSign32(v int32) uint32 {
	return uint32(v) ^ 0x8000_0000
}

func flipSign64(v int64) uint64 {
	return uint64(v) ^ 0x8000_0000_0000_0000
}

// flipFloatSign maps a float64's IEEE-754 bits into an order-preserving
// unsigned form (sign-magnitude -> biased two's-complement-like ordering).
func flipFloatSign(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&0x8000_0000_0000_0000 != 0 {
		return ^bits
	}
	return bits | 0x8000_0000_0000_0000
}
