package value

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimal is an arbitrary-precision fixed-point number: unscaled * 10^-scale.
// Equality and ordering are exact, never approximate, per spec §3.1(c).
//
// Grounded on original_source's bigdecimal_ext.rs / decimal.rs: no example
// repo in the pack vendors a decimal library, so this wraps math/big.Int
// directly rather than hand-rolling string-based decimal arithmetic.
type Decimal struct {
	Unscaled *big.Int
	Scale    int32
}

// NewDecimalFromString parses a canonical "[-]digits[.digits]" literal into
// its exact unscaled*10^-scale representation — no binary-float
// intermediate, so equality stays exact per spec §3.1(c).
func NewDecimalFromString(s string) (Decimal, error) {
	neg := false
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	} else if strings.HasPrefix(t, "+") {
		t = t[1:]
	}

	intPart, fracPart := t, ""
	if i := strings.IndexByte(t, '.'); i >= 0 {
		intPart, fracPart = t[:i], t[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	digits := intPart + fracPart
	if digits == "" || !isAllDigits(digits) {
		return Decimal{}, fmt.Errorf("value: %q is not a valid decimal literal", s)
	}

	u, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("value: %q is not a valid decimal literal", s)
	}
	if neg {
		u.Neg(u)
	}
	return Decimal{Unscaled: u, Scale: int32(len(fracPart))}, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// align returns (a, b) rescaled to the larger of the two scales.
func align(a, b Decimal) (*big.Int, *big.Int, int32) {
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	au := new(big.Int).Mul(a.Unscaled, pow10(scale-a.Scale))
	bu := new(big.Int).Mul(b.Unscaled, pow10(scale-b.Scale))
	return au, bu, scale
}

func (d Decimal) Cmp(o Decimal) int {
	au, bu, _ := align(d, o)
	return au.Cmp(bu)
}

func (d Decimal) Add(o Decimal) Decimal {
	au, bu, scale := align(d, o)
	return Decimal{Unscaled: new(big.Int).Add(au, bu), Scale: scale}
}

func (d Decimal) Sub(o Decimal) Decimal {
	au, bu, scale := align(d, o)
	return Decimal{Unscaled: new(big.Int).Sub(au, bu), Scale: scale}
}

func (d Decimal) Mul(o Decimal) Decimal {
	return Decimal{Unscaled: new(big.Int).Mul(d.Unscaled, o.Unscaled), Scale: d.Scale + o.Scale}
}

// Div returns the quotient truncated to d.Scale+18 fractional digits, or
// ok=false if o is zero (surfaced by eval as InvalidDivisorZero).
func (d Decimal) Div(o Decimal) (Decimal, bool) {
	if o.Unscaled.Sign() == 0 {
		return Decimal{}, false
	}
	const extra = 18
	scale := d.Scale + extra
	num := new(big.Int).Mul(d.Unscaled, pow10(scale-d.Scale+o.Scale))
	q := new(big.Int).Quo(num, o.Unscaled)
	return Decimal{Unscaled: q, Scale: scale}, true
}

func (d Decimal) IsZero() bool { return d.Unscaled == nil || d.Unscaled.Sign() == 0 }

// Float64 widens the decimal to a float64 for use in non-exact contexts
// (e.g. comparisons against a Float operand).
func (d Decimal) Float64() float64 {
	if d.Unscaled == nil {
		return 0
	}
	f := new(big.Float).SetInt(d.Unscaled)
	scale := new(big.Float).SetInt(pow10(d.Scale))
	q := new(big.Float).Quo(f, scale)
	out, _ := q.Float64()
	return out
}

func (d Decimal) Neg() Decimal {
	return Decimal{Unscaled: new(big.Int).Neg(d.Unscaled), Scale: d.Scale}
}

// String renders the "integer.fraction" form with exactly Scale fractional
// digits (trailing zeros are kept, so "1.50" stays "1.50"); a zero scale
// renders no fractional part.
func (d Decimal) String() string {
	if d.Unscaled == nil {
		return "0"
	}
	neg := d.Unscaled.Sign() < 0
	abs := new(big.Int).Abs(d.Unscaled)
	s := abs.String()
	scale := int(d.Scale)
	if scale <= 0 {
		if neg {
			return "-" + s
		}
		return s
	}
	for len(s) <= scale {
		s = "0" + s
	}
	intPart := s[:len(s)-scale]
	fracPart := s[len(s)-scale:]
	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// Bytes returns a sign byte (0 negative, 1 positive, 2 zero) followed by
// the unscaled magnitude. It is not order-preserving; key encoding goes
// through encodeDecimal in key.go instead.
func (d Decimal) Bytes() []byte {
	sign := byte(1)
	if d.Unscaled.Sign() < 0 {
		sign = 0
	} else if d.Unscaled.Sign() == 0 {
		sign = 2
	}
	return append([]byte{sign}, d.Unscaled.Bytes()...)
}
