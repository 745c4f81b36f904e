package numeric

import (
	"math"
	"math/big"
	"strings"
)

// This package carries the arbitrary-precision arithmetic used for literal
// parsing and static-expression folding.  Values that fit in a signed 64-bit
// word also travel as machine integers; anything wider stays a big.Int for
// the life of the compilation.

// StripUnderscores removes the digit separators Ada permits inside numeric
// literals (RM 2.4): `1_000_000` scans as `1000000`.
func StripUnderscores(text string) string {
	if !strings.ContainsRune(text, '_') {
		return text
	}
	return strings.ReplaceAll(text, "_", "")
}

// ParseDecimalInt parses a base-10 integer literal of any length
func ParseDecimalInt(text string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(StripUnderscores(text), 10)
	return v, ok
}

// ParseReal parses a decimal real literal (fraction and optional exponent)
// into both a float64 and an arbitrary-precision payload
func ParseReal(text string) (float64, *big.Float, bool) {
	f, _, err := big.ParseFloat(StripUnderscores(text), 10, 128, big.ToNearestEven)
	if err != nil {
		return 0, nil, false
	}
	d, _ := f.Float64()
	return d, f, true
}

// DigitValue returns the numeric value of an extended digit (0-9, a-f) or -1
// when the byte is not a digit at all
func DigitValue(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}

// ParseBasedInt accumulates the digits of a based literal (`16#FF#`) into a
// 64-bit value.  Overflow wraps silently: based literals name machine
// representations and are not routed through the big path.
func ParseBasedInt(base int, digits string) (int64, bool) {
	var acc uint64
	for i := 0; i < len(digits); i++ {
		if digits[i] == '_' {
			continue
		}
		d := DigitValue(digits[i])
		if d < 0 || d >= base {
			return 0, false
		}
		acc = acc*uint64(base) + uint64(d)
	}
	return int64(acc), true
}

// ParseBasedReal evaluates a based real literal.  The integer and fractional
// digit strings are interpreted in the written base and the exponent scales
// by that same base (RM 2.4.2): `2#1.0#E3` is 1.0 * 2**3.
func ParseBasedReal(base int, intDigits, fracDigits string, exp int) (float64, bool) {
	var value float64
	for i := 0; i < len(intDigits); i++ {
		if intDigits[i] == '_' {
			continue
		}
		d := DigitValue(intDigits[i])
		if d < 0 || d >= base {
			return 0, false
		}
		value = value*float64(base) + float64(d)
	}

	scale := 1.0
	for i := 0; i < len(fracDigits); i++ {
		if fracDigits[i] == '_' {
			continue
		}
		d := DigitValue(fracDigits[i])
		if d < 0 || d >= base {
			return 0, false
		}
		scale /= float64(base)
		value += float64(d) * scale
	}

	return value * math.Pow(float64(base), float64(exp)), true
}

// FitsInt64 reports whether v fits the machine-width literal field and, if
// so, its value
func FitsInt64(v *big.Int) (int64, bool) {
	if v.IsInt64() {
		return v.Int64(), true
	}
	return 0, false
}
