package value

import "math/big"

// bigIntLike is a thin wrapper so arith.go can treat 128-bit arithmetic
// uniformly via math/big without importing it directly in that file's
// otherwise int64/uint64-shaped logic.
type bigIntLike struct {
	big.Int
}

func to128Big(v Value) *big.Int {
	if i, ok := v.Int128(); ok {
		return int128ToBig(i)
	}
	if u, ok := v.Uint128(); ok {
		return uint128ToBig(u)
	}
	if i64, ok := v.Int64(); ok {
		return big.NewInt(i64)
	}
	if u64, ok := v.Uint64(); ok {
		return new(big.Int).SetUint64(u64)
	}
	return new(big.Int)
}

func int128ToBig(v Int128Val) *big.Int {
	hi := big.NewInt(v.Hi)
	lo := new(big.Int).SetUint64(v.Lo)
	out := new(big.Int).Lsh(hi, 64)
	return out.Add(out, lo)
}

func uint128ToBig(v Uint128Val) *big.Int {
	hi := new(big.Int).SetUint64(v.Hi)
	lo := new(big.Int).SetUint64(v.Lo)
	out := new(big.Int).Lsh(hi, 64)
	return out.Add(out, lo)
}

var (
	minInt128 = func() *big.Int { return new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)) }()
	maxInt128 = func() *big.Int { return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)) }()
	maxUint128 = func() *big.Int { return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)) }()
)

func (b *bigIntLike) toInt128() (Int128Val, bool) {
	if b.Int.Cmp(minInt128) < 0 || b.Int.Cmp(maxInt128) > 0 {
		return Int128Val{}, false
	}
	abs := new(big.Int).Abs(&b.Int)
	lo := new(big.Int).And(abs, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(abs, 64)
	v := Int128Val{Hi: hi.Int64(), Lo: lo.Uint64()}
	if b.Int.Sign() < 0 {
		// two's-complement negate across the two halves
		v.Lo = ^v.Lo + 1
		carry := int64(0)
		if v.Lo == 0 {
			carry = 1
		}
		v.Hi = ^v.Hi + carry
	}
	return v, true
}

func (b *bigIntLike) toUint128() (Uint128Val, bool) {
	if b.Int.Sign() < 0 || b.Int.Cmp(maxUint128) > 0 {
		return Uint128Val{}, false
	}
	lo := new(big.Int).And(&b.Int, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(&b.Int, 64)
	return Uint128Val{Hi: hi.Uint64(), Lo: lo.Uint64()}, true
}
