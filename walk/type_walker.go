package walk

import (
	"adac/common"
	"adac/numeric"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Type resolution: type marks, subtype indications with constraints, and the
// construction of descriptors from type-definition nodes.

// resolveTypeMark resolves a name that must denote a type
func (w *Walker) resolveTypeMark(n *syntax.Node) *typing.Type {
	if n == nil {
		return w.errType()
	}

	if n.Kind == syntax.NSubtypeInd {
		return w.resolveSubtypeInd(n)
	}

	t := w.walkExpr(n, nil)
	sym := n.Sym
	if sym == nil || sym.Kind != sem.SymType && sym.Kind != sem.SymSubtype {
		if sym != nil {
			w.errorType(n.Pos, "'"+nodeText(n)+"' is not a type")
		}
		return w.errType()
	}

	return t
}

// resolveSubtypeInd resolves `Mark [constraint]`, producing either the named
// type itself or an anonymous constrained view of it
func (w *Walker) resolveSubtypeInd(n *syntax.Node) *typing.Type {
	if n == nil {
		return w.errType()
	}
	if n.Kind != syntax.NSubtypeInd {
		return w.resolveTypeMark(n)
	}

	base := w.resolveTypeMark(n.Left)
	if n.Right == nil {
		n.TypeOf = base
		return base
	}

	t := w.applyConstraint(base, n.Right)
	n.TypeOf = t
	return t
}

// applyConstraint clones a view of the base type narrowed by the constraint
func (w *Walker) applyConstraint(base *typing.Type, cons *syntax.Node) *typing.Type {
	switch cons.Kind {
	case syntax.NRangeCons:
		return w.applyRangeConstraint(base, cons.Left)

	case syntax.NIndexCons:
		return w.applyIndexConstraint(base, cons)

	case syntax.NDigitsCons, syntax.NDeltaCons:
		if !typing.IsReal(base.Root()) {
			w.errorType(cons.Pos, "accuracy constraint on a non-real type")
			return base
		}
		w.walkExpr(cons.Left, w.Types.UniversalInt)
		sub := base.Clone("")
		sub.Base = base
		if cons.Right != nil {
			return w.applyRangeConstraint(sub, cons.Right)
		}
		return sub
	}

	w.errorType(cons.Pos, "malformed constraint")
	return base
}

// applyRangeConstraint narrows scalar bounds; the range node may be a
// low..high pair or an attribute (`T range A'Range`)
func (w *Walker) applyRangeConstraint(base *typing.Type, rng *syntax.Node) *typing.Type {
	root := base.Root()
	if !typing.IsScalar(root) {
		w.errorType(rng.Pos, "range constraint on a non-scalar type")
		return base
	}

	sub := base.Clone("")
	sub.Base = base
	real := typing.IsReal(root)

	if rng.Kind == syntax.NRange {
		w.walkExpr(rng, base)
		sub.Low = evalBound(rng.Left, real)
		sub.High = evalBound(rng.Right, real)
		w.checkStaticRange(rng, sub, base)
	} else {
		// attribute form; bounds resolve at emission
		w.walkExpr(rng, nil)
		sub.Low = typing.ExprBound(rng)
		sub.High = typing.ExprBound(rng)
	}

	// narrowing resets the stored layout so freezing recomputes the width
	sub.Size, sub.Align = 0, 0
	if real {
		sub.Size, sub.Align = base.Size, base.Align
	}
	return sub
}

// checkStaticRange reports a static bound that escapes the base type
func (w *Walker) checkStaticRange(rng *syntax.Node, sub, base *typing.Type) {
	low, okL := sub.Low.StaticInt()
	high, okH := sub.High.StaticInt()
	if !okL || !okH || low > high {
		return // null or dynamic ranges are fine
	}

	baseLow, okBL := base.Low.StaticInt()
	baseHigh, okBH := base.High.StaticInt()
	if okBL && low < baseLow || okBH && high > baseHigh {
		w.errorConstraint(rng.Pos, "range violates the bounds of '"+base.Name+"'")
	}
}

// applyIndexConstraint constrains an unconstrained array (or supplies
// discriminant values to a record, which are resolved and carried as-is)
func (w *Walker) applyIndexConstraint(base *typing.Type, cons *syntax.Node) *typing.Type {
	root := base.Root()

	if root.Kind == typing.KindRecord {
		for _, assoc := range cons.List {
			w.walkExpr(assoc.Right, nil)
		}
		return base
	}

	if !typing.IsArrayLike(root) {
		w.errorType(cons.Pos, "index constraint on a non-array type")
		return base
	}
	if !root.Unconstrained {
		w.errorType(cons.Pos, "'"+base.Name+"' is already constrained")
		return base
	}
	if len(cons.List) != len(root.Indexes) {
		w.errorConstraint(cons.Pos, "wrong number of index constraints")
		return base
	}

	sub := base.Clone("")
	sub.Base = base
	sub.Unconstrained = false
	sub.Indexes = make([]*typing.Type, len(root.Indexes))
	sub.Size = 0

	for i, assoc := range cons.List {
		sub.Indexes[i] = w.indexSubtype(assoc.Right, root.Indexes[i])
	}

	return sub
}

// indexSubtype builds the index type of one constrained dimension
func (w *Walker) indexSubtype(rng *syntax.Node, base *typing.Type) *typing.Type {
	if rng == nil {
		return base
	}

	if rng.Kind == syntax.NRange {
		return w.applyRangeConstraint(base, rng)
	}

	// a type mark used as a range (`Vector (Positive)`)
	t := w.walkExpr(rng, nil)
	if sym := rng.Sym; sym != nil && (sym.Kind == sem.SymType || sym.Kind == sem.SymSubtype) {
		return t
	}

	w.errorType(rng.Pos, "index constraint must be a discrete range")
	return base
}

// -----------------------------------------------------------------------------
// type definitions

// buildTypeDef fills a pre-allocated descriptor from a definition node.  The
// descriptor is created by the caller (and possibly pre-published as an
// incomplete type) so that self-referencing structures resolve.
func (w *Walker) buildTypeDef(t *typing.Type, def *syntax.Node) {
	switch def.Kind {
	case syntax.NEnumDef:
		w.buildEnumDef(t, def)

	case syntax.NIntDef:
		t.Kind = typing.KindInteger
		if def.Left != nil {
			w.walkExpr(def.Left, nil)
			if def.Left.Kind == syntax.NRange {
				t.Low = evalBound(def.Left.Left, false)
				t.High = evalBound(def.Left.Right, false)
			}
		}

	case syntax.NModDef:
		t.Kind = typing.KindModular
		w.walkExpr(def.Left, w.Types.UniversalInt)
		if v, ok := FoldInt(def.Left); ok {
			if v.Sign() <= 0 {
				w.errorConstraint(def.Pos, "modulus must be positive")
				t.Modulus = 1
			} else {
				t.Modulus = v.Uint64() // 2**64 wraps to 0; WidthForModulus reads 0 as the full word
			}
		} else {
			w.errorConstraint(def.Pos, "modulus must be static")
			t.Modulus = 1
		}
		t.Low = typing.IntBound(0)
		t.High = typing.BigBound(numeric.Sub(numeric.FromInt64(0).SetUint64(t.Modulus), numeric.FromInt64(1)))

	case syntax.NFloatDef:
		t.Kind = typing.KindFloat
		w.walkExpr(def.Left, w.Types.UniversalInt)
		if def.Right != nil && def.Right.Kind == syntax.NRange {
			w.walkExpr(def.Right, nil)
			t.Low = evalBound(def.Right.Left, true)
			t.High = evalBound(def.Right.Right, true)
		}

	case syntax.NFixedDef:
		t.Kind = typing.KindFixed
		w.walkExpr(def.Left, nil)
		if def.Right != nil && def.Right.Kind == syntax.NRange {
			w.walkExpr(def.Right, nil)
			t.Low = evalBound(def.Right.Left, true)
			t.High = evalBound(def.Right.Right, true)
		}

	case syntax.NArrayDef:
		w.buildArrayDef(t, def)

	case syntax.NRecordDef:
		w.buildRecordDef(t, def, nil)

	case syntax.NAccessDef:
		t.Kind = typing.KindAccess
		t.Size, t.Align = 8, 8
		t.Designated = w.resolveSubtypeInd(def.Left)

	case syntax.NDerivedDef:
		parent := w.resolveSubtypeInd(def.Left)
		derived := parent.Clone(t.Name)
		*t = *derived
		t.Base = t
		t.Parent = parent

	case syntax.NPrivateDef:
		if def.Flag {
			t.Kind = typing.KindLimitedPrivate
			t.Limited = true
		} else {
			t.Kind = typing.KindPrivate
		}

	case syntax.NIncompleteDef:
		t.Kind = typing.KindIncomplete

	default:
		w.errorType(def.Pos, "malformed type definition")
	}
}

func (w *Walker) buildEnumDef(t *typing.Type, def *syntax.Node) {
	t.Kind = typing.KindEnum
	for _, lit := range def.List {
		name := lit.Name
		if lit.Kind == syntax.NCharLit {
			t.Kind = typing.KindCharacter // character-bearing enumeration
		}
		t.Literals = append(t.Literals, common.FoldName(name))

		litSym := w.Mgr.Define(&sem.Symbol{
			Name: name,
			Kind: sem.SymLiteral,
			Pos:  lit.Pos,
			Type: t,
		})
		lit.Sym = litSym
		lit.TypeOf = t
	}
	t.Low = typing.IntBound(0)
	t.High = typing.IntBound(int64(len(t.Literals)) - 1)
}

func (w *Walker) buildArrayDef(t *typing.Type, def *syntax.Node) {
	t.Kind = typing.KindArray
	t.Unconstrained = def.Flag

	for _, spec := range def.List {
		if spec.Flag {
			// box form: the mark alone is the index type
			t.Indexes = append(t.Indexes, w.resolveTypeMark(spec.Left))
			continue
		}
		if def.Flag {
			w.errorType(spec.Pos, "cannot mix box and fixed index forms")
		}

		idx := w.Types.Integer
		switch spec.Left.Kind {
		case syntax.NRange:
			lt := w.walkExpr(spec.Left.Left, nil)
			w.walkExpr(spec.Left.Right, lt)
			base := w.Types.Integer
			if !typing.IsUniversal(lt) && typing.IsDiscrete(lt.Root()) {
				base = lt
			}
			sub := base.Clone("")
			sub.Base = base
			sub.Low = evalBound(spec.Left.Left, false)
			sub.High = evalBound(spec.Left.Right, false)
			sub.Size, sub.Align = 0, 0
			idx = sub
		case syntax.NSubtypeInd:
			idx = w.resolveSubtypeInd(spec.Left)
		default:
			idx = w.resolveTypeMark(spec.Left)
		}
		t.Indexes = append(t.Indexes, idx)
	}

	t.Elem = w.resolveSubtypeInd(def.Right)
	if t.Elem.Root().Kind == typing.KindCharacter {
		t.Kind = typing.KindString
	}
}

// buildRecordDef flattens components (variant components included) into the
// descriptor's field vector
func (w *Walker) buildRecordDef(t *typing.Type, def *syntax.Node, discriminants []*syntax.Node) {
	t.Kind = typing.KindRecord

	for _, d := range discriminants {
		w.addComponents(t, d, true)
	}
	for _, comp := range def.List {
		w.addComponents(t, comp, false)
	}

	if def.Right != nil {
		t.HasVariants = true
		for _, variant := range def.Right.List {
			for _, choice := range variant.List {
				if choice.Kind != syntax.NOthers {
					w.walkExpr(choice, nil)
				}
			}
			for _, comp := range variant.Decls {
				w.addComponents(t, comp, false)
			}
		}
	}
}

func (w *Walker) addComponents(t *typing.Type, comp *syntax.Node, discriminant bool) {
	if comp.Kind != syntax.NComponentDecl {
		return
	}

	ct := w.resolveSubtypeInd(comp.Left)
	if comp.Right != nil {
		w.walkExpr(comp.Right, ct)
	}

	for _, name := range comp.Names {
		if findField(t, name.Name) != nil {
			w.errorName(name.Pos, "duplicate component '"+name.Name+"'")
			continue
		}
		t.Fields = append(t.Fields, &typing.Field{
			Name:         name.Name,
			Type:         ct,
			Default:      comp.Right,
			Discriminant: discriminant,
		})
	}
}
