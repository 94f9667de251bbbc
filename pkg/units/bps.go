// Package units holds pure helpers for basis-point fee arithmetic, exact
// amount scaling and decimal/base-unit conversion. All functions are
// stateless and never touch floating point.
package units

import "math/big"

// BpsDenominator is the full basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// Bps returns floor(value * bps / 10000). The floor is deliberate: fee
// rounding never favors the fee recipient.
func Bps(value *big.Int, bps int64) *big.Int {
	out := new(big.Int).Mul(value, big.NewInt(bps))

	return out.Div(out, big.NewInt(BpsDenominator))
}

// Scale returns floor(value * num / den). den must be non-zero.
func Scale(value, num, den *big.Int) *big.Int {
	out := new(big.Int).Mul(value, num)

	return out.Div(out, den)
}

// ScaleCeil returns ceil(value * num / den). The native exchange rounds
// the payment side toward the maker's favor; everything else floors.
func ScaleCeil(value, num, den *big.Int) *big.Int {
	prod := new(big.Int).Mul(value, num)
	quo, rem := new(big.Int).QuoRem(prod, den, new(big.Int))

	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}

	return quo
}

// ScaleExact reports whether value * num divides den without remainder,
// and returns the quotient. Used where a protocol forbids lossy fills.
func ScaleExact(value, num, den *big.Int) (*big.Int, bool) {
	prod := new(big.Int).Mul(value, num)
	quo, rem := new(big.Int).QuoRem(prod, den, new(big.Int))

	return quo, rem.Sign() == 0
}

// ReduceFraction divides num and den by their greatest common divisor.
func ReduceFraction(num, den *big.Int) (*big.Int, *big.Int) {
	gcd := new(big.Int).GCD(nil, nil, num, den)
	if gcd.Sign() == 0 {
		return new(big.Int).Set(num), new(big.Int).Set(den)
	}

	return new(big.Int).Div(num, gcd), new(big.Int).Div(den, gcd)
}
