package value

import "math"

// widenRank orders numeric kinds from narrowest to widest so that mixed
// arithmetic coerces to the widest participating type, per spec §4.3
// ("mixed numeric types widen per a total table before operating").
// Grounded on original_source's binary_op/*.rs per-width dispatch, folded
// into a single rank table in the teacher's per-constant-switch style.
func widenRank(k Kind) int {
	switch k {
	case Int8, Uint8:
		return 0
	case Int16, Uint16:
		return 1
	case Int32, Uint32:
		return 2
	case Int64, Uint64:
		return 3
	case Int128, Uint128:
		return 4
	case Float32:
		return 5
	case Float64:
		return 6
	case DecimalKind:
		return 7
	default:
		return -1
	}
}

// WidestNumeric returns the Kind that a and b should both be coerced to
// before a binary arithmetic or comparison operation.
func WidestNumeric(a, b Kind) Kind {
	ra, rb := widenRank(a), widenRank(b)
	if ra < 0 || rb < 0 {
		return Null
	}
	if ra >= rb {
		return a
	}
	return b
}

// AsFloat64 widens any numeric Value to a float64, used for comparisons
// and functions that do not need exactness (spec's coercion rule).
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case Int8, Int16, Int32, Int64:
		return float64(v.i64), true
	case Int128:
		return float64(v.i128.Hi)*math.Pow(2, 64) + float64(v.i128.Lo), true
	case Uint8, Uint16, Uint32, Uint64:
		return float64(v.u64), true
	case Uint128:
		return float64(v.u128.Hi)*math.Pow(2, 64) + float64(v.u128.Lo), true
	case Float32, Float64:
		return v.f64, true
	case DecimalKind:
		return v.dec.Float64(), true
	default:
		return 0, false
	}
}
