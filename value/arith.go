package value

import (
	"fmt"
	"math"
)

// ErrOverflow and ErrDivByZero are the sentinel causes wrapped by eval's
// BinaryOperationOverflow / InvalidDivisorZero error kinds (spec §4.3).
var (
	ErrOverflow  = fmt.Errorf("value: arithmetic overflow")
	ErrDivByZero = fmt.Errorf("value: division by zero")
)

// Add, Sub, Mul, Div, Mod implement spec §4.3's binary arithmetic contract:
// widen to the widest participating numeric type, fail on overflow
// (integers) or division by zero, never wrap silently.
func Add(a, b Value) (Value, error) { return arith(a, b, opAdd) }
func Sub(a, b Value) (Value, error) { return arith(a, b, opSub) }
func Mul(a, b Value) (Value, error) { return arith(a, b, opMul) }
func Div(a, b Value) (Value, error) { return arith(a, b, opDiv) }
func Mod(a, b Value) (Value, error) { return arith(a, b, opMod) }

type arithOp int

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
	opMod
)

func arith(a, b Value, op arithOp) (Value, error) {
	if a.IsNull() || b.IsNull() {
		return NewNull(), nil
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, fmt.Errorf("value: arithmetic requires numeric operands, got %s and %s", a.Kind, b.Kind)
	}

	widest := WidestNumeric(a.Kind, b.Kind)
	switch widest {
	case Float32, Float64:
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return floatArith(af, bf, widest, op)
	case DecimalKind:
		return decimalArith(toDecimal(a), toDecimal(b), op)
	default:
		return intArith(a, b, widest, op)
	}
}

func toDecimal(v Value) Decimal {
	if d, ok := v.DecimalVal(); ok {
		return d
	}
	f, _ := v.AsFloat64()
	d, _ := NewDecimalFromString(fmt.Sprintf("%v", f))
	return d
}

func floatArith(a, b float64, kind Kind, op arithOp) (Value, error) {
	var r float64
	switch op {
	case opAdd:
		r = a + b
	case opSub:
		r = a - b
	case opMul:
		r = a * b
	case opDiv:
		if b == 0 {
			return Value{}, ErrDivByZero
		}
		r = a / b
	case opMod:
		if b == 0 {
			return Value{}, ErrDivByZero
		}
		r = math.Mod(a, b)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Value{}, ErrOverflow
	}
	if kind == Float32 {
		return NewFloat32(float32(r))
	}
	return NewFloat64(r)
}

func decimalArith(a, b Decimal, op arithOp) (Value, error) {
	switch op {
	case opAdd:
		return NewDecimal(a.Add(b)), nil
	case opSub:
		return NewDecimal(a.Sub(b)), nil
	case opMul:
		return NewDecimal(a.Mul(b)), nil
	case opDiv:
		q, ok := a.Div(b)
		if !ok {
			return Value{}, ErrDivByZero
		}
		return NewDecimal(q), nil
	case opMod:
		if b.IsZero() {
			return Value{}, ErrDivByZero
		}
		q, _ := a.Div(b)
		whole, _ := NewDecimalFromString(q.String())
		return NewDecimal(a.Sub(whole.Mul(b))), nil
	}
	return Value{}, fmt.Errorf("value: unsupported decimal operation")
}

// intArith performs overflow-checked 64-bit integer arithmetic for
// signed/unsigned kinds up to Int64/Uint64, and delegates Int128/Uint128
// to intArith128 (math/big) since Go lacks native 128-bit integers. An
// operand that does not fit the widest kind's 64-bit range (e.g. a
// negative value against an unsigned widest kind) is an overflow.
func intArith(a, b Value, widest Kind, op arithOp) (Value, error) {
	switch widest {
	case Int128, Uint128:
		return intArith128(a, b, widest, op)
	}

	ab, bb := to128Big(a), to128Big(b)
	if (op == opDiv || op == opMod) && bb.Sign() == 0 {
		return Value{}, ErrDivByZero
	}
	signed := isSignedInt(widest) || widest == Int64
	if signed {
		if !ab.IsInt64() || !bb.IsInt64() {
			return Value{}, ErrOverflow
		}
		r, ok := checkedInt64(ab.Int64(), bb.Int64(), op)
		if !ok {
			return Value{}, ErrOverflow
		}
		return narrowInt(r, widest)
	}
	if !ab.IsUint64() || !bb.IsUint64() {
		return Value{}, ErrOverflow
	}
	r, ok := checkedUint64(ab.Uint64(), bb.Uint64(), op)
	if !ok {
		return Value{}, ErrOverflow
	}
	return narrowUint(r, widest)
}

func checkedInt64(a, b int64, op arithOp) (int64, bool) {
	switch op {
	case opAdd:
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return 0, false
		}
		return r, true
	case opSub:
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return 0, false
		}
		return r, true
	case opMul:
		if a == 0 || b == 0 {
			return 0, true
		}
		r := a * b
		if r/b != a {
			return 0, false
		}
		return r, true
	case opDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case opMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	}
	return 0, false
}

func checkedUint64(a, b uint64, op arithOp) (uint64, bool) {
	switch op {
	case opAdd:
		r := a + b
		if r < a {
			return 0, false
		}
		return r, true
	case opSub:
		if b > a {
			return 0, false
		}
		return a - b, true
	case opMul:
		if a == 0 || b == 0 {
			return 0, true
		}
		r := a * b
		if r/b != a {
			return 0, false
		}
		return r, true
	case opDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case opMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	}
	return 0, false
}

func narrowInt(r int64, kind Kind) (Value, error) {
	switch kind {
	case Int8:
		if r < math.MinInt8 || r > math.MaxInt8 {
			return Value{}, ErrOverflow
		}
		return NewInt8(int8(r)), nil
	case Int16:
		if r < math.MinInt16 || r > math.MaxInt16 {
			return Value{}, ErrOverflow
		}
		return NewInt16(int16(r)), nil
	case Int32:
		if r < math.MinInt32 || r > math.MaxInt32 {
			return Value{}, ErrOverflow
		}
		return NewInt32(int32(r)), nil
	default:
		return NewInt64(r), nil
	}
}

func narrowUint(r uint64, kind Kind) (Value, error) {
	switch kind {
	case Uint8:
		if r > math.MaxUint8 {
			return Value{}, ErrOverflow
		}
		return NewUint8(uint8(r)), nil
	case Uint16:
		if r > math.MaxUint16 {
			return Value{}, ErrOverflow
		}
		return NewUint16(uint16(r)), nil
	case Uint32:
		if r > math.MaxUint32 {
			return Value{}, ErrOverflow
		}
		return NewUint32(uint32(r)), nil
	default:
		return NewUint64(r), nil
	}
}

// intArith128 handles the 128-bit widths via big.Int, since Go has no
// native 128-bit integer; correctness over micro-optimisation here, the
// 128-bit path is rare.
func intArith128(a, b Value, widest Kind, op arithOp) (Value, error) {
	ab := to128Big(a)
	bb := to128Big(b)
	var r = new(bigIntLike)
	switch op {
	case opAdd:
		r.Add(ab, bb)
	case opSub:
		r.Sub(ab, bb)
	case opMul:
		r.Mul(ab, bb)
	case opDiv:
		if bb.Sign() == 0 {
			return Value{}, ErrDivByZero
		}
		r.Quo(ab, bb)
	case opMod:
		if bb.Sign() == 0 {
			return Value{}, ErrDivByZero
		}
		r.Rem(ab, bb)
	}
	if widest == Int128 {
		v, ok := r.toInt128()
		if !ok {
			return Value{}, ErrOverflow
		}
		return NewInt128(v), nil
	}
	v, ok := r.toUint128()
	if !ok {
		return Value{}, ErrOverflow
	}
	return NewUint128(v), nil
}
