package numeric

import "math/big"

// Folding arithmetic over static integer expressions.  Every operation
// allocates a fresh result; operands are never mutated since bound values
// alias them freely.

func Add(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }
func Sub(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
func Mul(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }
func Neg(a *big.Int) *big.Int    { return new(big.Int).Neg(a) }
func Abs(a *big.Int) *big.Int    { return new(big.Int).Abs(a) }

// Div performs Ada integer division: truncation toward zero (RM 4.5.5)
func Div(a, b *big.Int) (*big.Int, bool) {
	if b.Sign() == 0 {
		return nil, false
	}
	return new(big.Int).Quo(a, b), true
}

// Rem yields the remainder of truncating division; its sign follows the
// dividend
func Rem(a, b *big.Int) (*big.Int, bool) {
	if b.Sign() == 0 {
		return nil, false
	}
	return new(big.Int).Rem(a, b), true
}

// Mod yields the mathematical modulus; its sign follows the divisor
func Mod(a, b *big.Int) (*big.Int, bool) {
	if b.Sign() == 0 {
		return nil, false
	}

	m := new(big.Int).Mod(a, b) // Euclidean: 0 <= m < |b|
	if m.Sign() != 0 && b.Sign() < 0 {
		m.Add(m, b)
	}
	return m, true
}

// Pow raises a to a non-negative integer power
func Pow(a *big.Int, exp *big.Int) (*big.Int, bool) {
	if exp.Sign() < 0 || !exp.IsInt64() {
		return nil, false
	}
	return new(big.Int).Exp(a, exp, nil), true
}

// Cmp wraps big.Int comparison for the folder's relational operators
func Cmp(a, b *big.Int) int { return a.Cmp(b) }

// FromInt64 lifts a machine integer into the big domain
func FromInt64(v int64) *big.Int { return big.NewInt(v) }
