package value

import "fmt"

// Equal implements spec §3.1(a)/§8.1 property 1: Null compared to anything
// (including Null) is not true or false — the caller must check isNull
// before trusting result. Two Null-free values of incompatible kinds
// return (false, false): Compare's error is not passed on.
func Equal(a, b Value) (result bool, isNull bool) {
	if a.IsNull() || b.IsNull() {
		return false, true
	}
	c, err := Compare(a, b)
	if err != nil {
		return false, false
	}
	return c == 0, false
}

// Compare implements the strict total order over Null-free, compatible
// Values required by spec §8.1 property 1, and the cross-subtype numeric
// ordering required by §3.1(b). Returns an error for incomparable kinds
// (e.g. Text vs Bool) or for List/Map operands (spec §3.1(d)).
func Compare(a, b Value) (int, error) {
	if a.IsNull() || b.IsNull() {
		return 0, fmt.Errorf("value: cannot order NULL")
	}
	if a.IsNumeric() && b.IsNumeric() {
		return compareNumeric(a, b), nil
	}
	if a.Kind != b.Kind {
		return 0, fmt.Errorf("value: cannot compare %s with %s", a.Kind, b.Kind)
	}
	switch a.Kind {
	case Bool:
		av, _ := a.Bool()
		bv, _ := b.Bool()
		return boolCmp(av, bv), nil
	case Text:
		av, _ := a.Text()
		bv, _ := b.Text()
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case Bytea:
		av, _ := a.Bytea()
		bv, _ := b.Bytea()
		return bytesCmp(av, bv), nil
	case Date:
		av, _ := a.DateVal()
		bv, _ := b.DateVal()
		return av.Cmp(bv), nil
	case Time:
		av, _ := a.TimeVal()
		bv, _ := b.TimeVal()
		return av.Cmp(bv), nil
	case Timestamp:
		av, _ := a.TimestampVal()
		bv, _ := b.TimestampVal()
		return av.Cmp(bv), nil
	case IntervalKind:
		av, _ := a.IntervalVal()
		bv, _ := b.IntervalVal()
		return av.Cmp(bv), nil
	case UuidKind:
		av, _ := a.UuidVal()
		bv, _ := b.UuidVal()
		return av.Cmp(bv), nil
	case PointKind:
		av, _ := a.PointVal()
		bv, _ := b.PointVal()
		return av.Cmp(bv), nil
	case Inet:
		av, _ := a.InetVal()
		bv, _ := b.InetVal()
		return av.Cmp(bv), nil
	default:
		return 0, fmt.Errorf("value: %s is not an orderable kind", a.Kind)
	}
}

// compareNumeric orders two numeric Values per spec §3.1(b)/§8.1 invariant
// 1. Decimal participants compare exactly via big.Int; a Float32/Float64
// participant forces a float64 comparison (float is inherently inexact, so
// nothing is lost); otherwise both operands are integers of some width and
// signedness, compared exactly via 128-bit big.Int so values beyond
// float64's 53-bit mantissa (e.g. adjacent Int64/Int128 values above 2^53)
// never collapse to equal.
func compareNumeric(a, b Value) int {
	widest := WidestNumeric(a.Kind, b.Kind)
	if widest == DecimalKind {
		return toDecimal(a).Cmp(toDecimal(b))
	}
	if isFloatKind(a.Kind) || isFloatKind(b.Kind) {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return to128Big(a).Cmp(to128Big(b))
}

func isFloatKind(k Kind) bool {
	return k == Float32 || k == Float64
}

func boolCmp(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func bytesCmp(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
