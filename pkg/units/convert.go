package units

import (
	"fmt"
	"math/big"
	"strings"
)

// ToBaseUnits parses a display decimal string ("1.5") into integer base
// units for an asset with the given number of decimals.
func ToBaseUnits(display string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("negative decimals: %d", decimals)
	}

	display = strings.TrimSpace(display)

	neg := strings.HasPrefix(display, "-")
	display = strings.TrimPrefix(display, "-")

	whole, frac, _ := strings.Cut(display, ".")
	if whole == "" {
		whole = "0"
	}

	if len(frac) > decimals {
		return nil, fmt.Errorf("value %q has more than %d decimal places", display, decimals)
	}

	frac += strings.Repeat("0", decimals-len(frac))

	out, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal value %q", display)
	}

	if neg {
		out.Neg(out)
	}

	return out, nil
}

// FromBaseUnits renders integer base units as a display decimal string,
// trimming trailing zeros from the fractional part.
func FromBaseUnits(value *big.Int, decimals int) string {
	if decimals <= 0 {
		return value.String()
	}

	abs := new(big.Int).Abs(value)
	digits := abs.String()

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	split := len(digits) - decimals
	whole, frac := digits[:split], digits[split:]

	frac = strings.TrimRight(frac, "0")

	out := whole
	if frac != "" {
		out = whole + "." + frac
	}

	if value.Sign() < 0 {
		out = "-" + out
	}

	return out
}
