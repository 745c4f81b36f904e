package walk

import (
	"math/big"

	"adac/common"
	"adac/numeric"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Static-expression evaluation.  Expressions built from literals, named
// numbers, enumeration literals, and static operators fold to values; the
// results feed subtype bounds and case-choice checking.

// FoldInt evaluates a static integer expression
func FoldInt(n *syntax.Node) (*big.Int, bool) {
	if n == nil {
		return nil, false
	}

	switch n.Kind {
	case syntax.NIntLit:
		if n.Tok.BigValue != nil {
			return n.Tok.BigValue, true
		}
		return numeric.FromInt64(n.Tok.IntValue), true

	case syntax.NCharLit:
		return numeric.FromInt64(n.Tok.IntValue), true

	case syntax.NIdentifier, syntax.NSelected:
		return foldSymbol(n.Sym)

	case syntax.NQualified:
		return FoldInt(n.Right)

	case syntax.NUnary:
		v, ok := FoldInt(n.Left)
		if !ok {
			return nil, false
		}
		switch n.Tok.Kind {
		case syntax.PLUS:
			return v, true
		case syntax.MINUS:
			return numeric.Neg(v), true
		case syntax.ABS:
			return numeric.Abs(v), true
		}
		return nil, false

	case syntax.NBinary:
		a, okA := FoldInt(n.Left)
		b, okB := FoldInt(n.Right)
		if !okA || !okB {
			return nil, false
		}
		switch n.Tok.Kind {
		case syntax.PLUS:
			return numeric.Add(a, b), true
		case syntax.MINUS:
			return numeric.Sub(a, b), true
		case syntax.STAR:
			return numeric.Mul(a, b), true
		case syntax.DIVIDE:
			return numeric.Div(a, b)
		case syntax.MOD:
			return numeric.Mod(a, b)
		case syntax.REM:
			return numeric.Rem(a, b)
		case syntax.EXPON:
			return numeric.Pow(a, b)
		}
		return nil, false

	case syntax.NAttribute:
		return foldAttribute(n)
	}

	return nil, false
}

// foldSymbol folds named numbers, static constants, and enumeration literals
func foldSymbol(sym *sem.Symbol) (*big.Int, bool) {
	if sym == nil {
		return nil, false
	}

	switch sym.Kind {
	case sem.SymConstant:
		if init, ok := sym.Body.(*syntax.Node); ok {
			return FoldInt(init)
		}

	case sem.SymLiteral:
		// an enumeration literal's value is its position in the type's
		// literal vector
		if sym.Type != nil {
			folded := common.FoldName(sym.Name)
			for i, lit := range sym.Type.Root().Literals {
				if lit == folded {
					return numeric.FromInt64(int64(i)), true
				}
			}
		}
	}

	return nil, false
}

// foldAttribute folds T'First, T'Last, T'Size, and T'Pos forms with static
// prefixes
func foldAttribute(n *syntax.Node) (*big.Int, bool) {
	sym := n.Left.Sym
	if sym == nil || sym.Type == nil {
		return nil, false
	}
	t := sym.Type

	switch common.FoldName(n.Name) {
	case "first":
		if t.Low.Kind == typing.BoundInt {
			return t.Low.Int, true
		}
	case "last":
		if t.High.Kind == typing.BoundInt {
			return t.High.Int, true
		}
	case "size":
		if t.Frozen {
			return numeric.FromInt64(int64(t.Size)), true
		}
	}

	return nil, false
}

// FoldFloat evaluates a static real expression; static integer operands
// coerce (universal integer mixing into a real context)
func FoldFloat(n *syntax.Node) (float64, bool) {
	if n == nil {
		return 0, false
	}

	switch n.Kind {
	case syntax.NRealLit:
		return n.Tok.FloatValue, true

	case syntax.NIntLit:
		if n.Tok.BigValue != nil {
			f, _ := new(big.Float).SetInt(n.Tok.BigValue).Float64()
			return f, true
		}
		return float64(n.Tok.IntValue), true

	case syntax.NIdentifier, syntax.NSelected:
		if n.Sym != nil && n.Sym.Kind == sem.SymConstant {
			if init, ok := n.Sym.Body.(*syntax.Node); ok {
				return FoldFloat(init)
			}
		}

	case syntax.NQualified:
		return FoldFloat(n.Right)

	case syntax.NUnary:
		v, ok := FoldFloat(n.Left)
		if !ok {
			return 0, false
		}
		switch n.Tok.Kind {
		case syntax.PLUS:
			return v, true
		case syntax.MINUS:
			return -v, true
		case syntax.ABS:
			if v < 0 {
				return -v, true
			}
			return v, true
		}

	case syntax.NBinary:
		a, okA := FoldFloat(n.Left)
		b, okB := FoldFloat(n.Right)
		if !okA || !okB {
			return 0, false
		}
		switch n.Tok.Kind {
		case syntax.PLUS:
			return a + b, true
		case syntax.MINUS:
			return a - b, true
		case syntax.STAR:
			return a * b, true
		case syntax.DIVIDE:
			if b == 0 {
				return 0, false
			}
			return a / b, true
		}
	}

	return 0, false
}

// evalBound folds an expression into a bound value, deferring to run time
// when the expression is not static
func evalBound(n *syntax.Node, real bool) typing.Bound {
	if n == nil {
		return typing.Bound{}
	}

	if real {
		if v, ok := FoldFloat(n); ok {
			return typing.FloatBound(v)
		}
	} else {
		if v, ok := FoldInt(n); ok {
			return typing.BigBound(v)
		}
	}

	return typing.ExprBound(n)
}
