package walk

import (
	"adac/common"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// walkExpr resolves an expression node, annotating it with a type (and a
// symbol where one applies) and returning the type.  The expected type guides
// aggregates, null literals, and overload selection; nil means no context.
// Resolution failures annotate with the error-recovery type and continue.
func (w *Walker) walkExpr(n *syntax.Node, expected *typing.Type) *typing.Type {
	if n == nil {
		return w.errType()
	}

	t := w.walkExprInner(n, expected)
	if t == nil {
		t = w.errType()
	}
	n.TypeOf = t
	return t
}

func (w *Walker) walkExprInner(n *syntax.Node, expected *typing.Type) *typing.Type {
	switch n.Kind {
	case syntax.NIntLit:
		return w.Types.UniversalInt

	case syntax.NRealLit:
		return w.Types.UniversalReal

	case syntax.NCharLit:
		// a character literal can belong to any character-bearing enumeration;
		// the predefined Character wins unless context says otherwise
		if expected != nil && expected.Root().Kind == typing.KindEnum {
			return expected
		}
		return w.Types.Character

	case syntax.NStringLit:
		if expected != nil && typing.IsArrayLike(expected.Root()) {
			return expected
		}
		return w.Types.String

	case syntax.NNullLit:
		if expected != nil && expected.Root().Kind == typing.KindAccess {
			return expected
		}
		return w.anonymousAccess(nil)

	case syntax.NIdentifier:
		return w.resolveIdentifier(n, expected)

	case syntax.NSelected:
		return w.resolveSelected(n, expected)

	case syntax.NAttribute:
		return w.resolveAttribute(n)

	case syntax.NApply:
		return w.walkApply(n, expected, false)

	case syntax.NDeref:
		prefix := w.walkExpr(n.Left, nil)
		if prefix.Root().Kind != typing.KindAccess {
			w.errorType(n.Pos, "'.all' requires an access value")
			return nil
		}
		return prefix.Root().Designated

	case syntax.NQualified:
		mark := w.resolveTypeMark(n.Left)
		w.walkExpr(n.Right, mark)
		return mark

	case syntax.NAllocator:
		return w.walkAllocator(n, expected)

	case syntax.NAggregate:
		return w.walkAggregate(n, expected)

	case syntax.NBinary:
		return w.walkBinary(n)

	case syntax.NShortCircuit:
		w.requireBoolean(n.Left)
		w.requireBoolean(n.Right)
		return w.Types.Boolean

	case syntax.NUnary:
		return w.walkUnary(n)

	case syntax.NMembership:
		w.walkExpr(n.Left, nil)
		w.walkExpr(n.Right, nil)
		return w.Types.Boolean

	case syntax.NRange:
		lt := w.walkExpr(n.Left, expected)
		rt := w.walkExpr(n.Right, expected)
		if !typing.Compatible(lt, rt) {
			w.errorType(n.Pos, "range bounds have incompatible types")
		}
		if typing.IsUniversal(lt) {
			return rt
		}
		return lt

	case syntax.NSubtypeInd:
		// a constrained mark used where an expression is expected (membership
		// against `Mark range low .. high`)
		return w.resolveSubtypeInd(n)
	}

	w.errorType(n.Pos, "construct cannot be used as an expression")
	return nil
}

// requireBoolean walks a condition and checks it resolves to Boolean
func (w *Walker) requireBoolean(n *syntax.Node) {
	t := w.walkExpr(n, w.Types.Boolean)
	if !typing.IsBoolean(t.Root()) && !typing.IsUniversal(t) {
		w.errorType(n.Pos, "expected a boolean expression, found '"+t.Name+"'")
	}
}

// anonymousAccess builds an unnamed access descriptor for allocators and null
// literals without context
func (w *Walker) anonymousAccess(designated *typing.Type) *typing.Type {
	t := typing.NewType(typing.KindAccess, "")
	t.Designated = designated
	t.Size, t.Align = 8, 8
	return t
}

// -----------------------------------------------------------------------------
// names

// resolveIdentifier binds a plain name.  Overloaded parameterless functions
// are selected by the expected type; everything else resolves to the nearest
// visible homonym.
func (w *Walker) resolveIdentifier(n *syntax.Node, expected *typing.Type) *typing.Type {
	candidates := w.Mgr.LookupAll(n.Name)
	if len(candidates) == 0 {
		msg := "undefined name '" + n.Name + "'"
		if hint := w.suggest(n.Name); hint != "" {
			msg += "; did you mean '" + hint + "'?"
		}
		w.errorName(n.Pos, msg)
		return nil
	}

	sym := candidates[0]
	if sym.IsSubprogram() && len(candidates) > 1 {
		if picked := w.pickParameterless(candidates, expected); picked != nil {
			sym = picked
		}
	}

	n.Sym = sym
	return w.symbolValueType(n, sym)
}

// pickParameterless selects among overloaded names used without arguments
func (w *Walker) pickParameterless(candidates []*sem.Symbol, expected *typing.Type) *sem.Symbol {
	var viable []*sem.Symbol
	for _, c := range candidates {
		if !c.IsSubprogram() || len(c.Params) > 0 {
			continue
		}
		if expected != nil && c.ReturnType != nil && !typing.Compatible(c.ReturnType, expected) {
			continue
		}
		viable = append(viable, c)
	}
	if len(viable) > 0 {
		return viable[0]
	}
	return nil
}

// symbolValueType yields the type a symbol denotes when it appears in an
// expression
func (w *Walker) symbolValueType(n *syntax.Node, sym *sem.Symbol) *typing.Type {
	switch sym.Kind {
	case sem.SymVariable, sem.SymConstant, sem.SymParam,
		sem.SymComponent, sem.SymDiscriminant, sem.SymLiteral:
		return sym.Type

	case sem.SymType, sem.SymSubtype:
		// a type mark; meaningful as an apply/attribute prefix or in
		// membership tests
		return sym.Type

	case sem.SymFunction:
		// a parameterless call
		return sym.ReturnType

	case sem.SymProcedure, sem.SymEntry:
		w.errorType(n.Pos, "'"+sym.Name+"' does not return a value")
		return nil

	case sem.SymPackage:
		return w.packageType(sym)

	case sem.SymException:
		w.errorType(n.Pos, "exception '"+sym.Name+"' cannot be used as a value")
		return nil
	}

	return sym.Type
}

// packageType is the shared descriptor marking package prefixes
func (w *Walker) packageType(sym *sem.Symbol) *typing.Type {
	if sym.Type == nil {
		sym.Type = typing.NewType(typing.KindPackage, sym.Name)
	}
	return sym.Type
}

// resolveSelected binds `prefix.name`: a package export when the prefix is a
// package, a component when the prefix is (an access to) a record value
func (w *Walker) resolveSelected(n *syntax.Node, expected *typing.Type) *typing.Type {
	prefixType := w.walkExpr(n.Left, nil)

	if sym := n.Left.Sym; sym != nil && sym.Kind == sem.SymPackage {
		export := findExport(sym, n.Name)
		if export == nil {
			w.errorName(n.Pos, "package '"+sym.Name+"' has no visible '"+n.Name+"'")
			return nil
		}
		n.Sym = export
		return w.symbolValueType(n, export)
	}

	rec := prefixType.Root()
	if rec.Kind == typing.KindAccess && rec.Designated != nil {
		// implicit dereference
		rec = rec.Designated.Root()
	}

	if rec.Kind == typing.KindRecord {
		for _, f := range rec.Fields {
			if common.NamesEqual(f.Name, n.Name) {
				return f.Type
			}
		}
		w.errorName(n.Pos, "record type '"+prefixType.Name+"' has no component '"+n.Name+"'")
		return nil
	}

	w.errorType(n.Pos, "prefix of '."+n.Name+"' is neither a package nor a record")
	return nil
}

// findExport probes a package's export vector, following overload chains
func findExport(pkg *sem.Symbol, name string) *sem.Symbol {
	for _, e := range pkg.Exports {
		if common.NamesEqual(e.Name, name) {
			return e
		}
	}
	return nil
}

// exportOverloads collects every exported homonym for overloaded calls
// through a package prefix
func exportOverloads(pkg *sem.Symbol, name string) []*sem.Symbol {
	var out []*sem.Symbol
	for _, e := range pkg.Exports {
		if common.NamesEqual(e.Name, name) {
			out = append(out, e.Overloads()...)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// attributes

// resolveAttribute types `prefix'Designator`.  Attributes taking an argument
// (`Pos`, `Val`, ...) arrive wrapped in an apply node and are finished there.
func (w *Walker) resolveAttribute(n *syntax.Node) *typing.Type {
	prefixType := w.walkExpr(n.Left, nil)
	root := prefixType.Root()

	switch common.FoldName(n.Name) {
	case "first", "last":
		if typing.IsArrayLike(root) {
			if len(root.Indexes) > 0 {
				return root.Indexes[0]
			}
			return w.Types.Integer
		}
		if typing.IsScalar(root) {
			return prefixType
		}

	case "range":
		if typing.IsArrayLike(root) {
			if len(root.Indexes) > 0 {
				return root.Indexes[0]
			}
			return w.Types.Integer
		}
		if typing.IsDiscrete(root) {
			return prefixType
		}

	case "length", "size", "alignment", "pos", "address", "width", "storage_size":
		return w.Types.UniversalInt

	case "val", "succ", "pred", "value":
		return prefixType

	case "image":
		return w.Types.String

	default:
		w.errorName(n.Pos, "unknown attribute '"+n.Name+"'")
		return nil
	}

	w.errorType(n.Pos, "attribute '"+n.Name+"' is not defined for '"+prefixType.Name+"'")
	return nil
}

// -----------------------------------------------------------------------------
// apply

// walkApply disambiguates the uniform `prefix(args)` node by the prefix's
// resolved meaning: a subprogram call, an array indexing or slice, a type
// conversion, or an argument-taking attribute.
func (w *Walker) walkApply(n *syntax.Node, expected *typing.Type, asStatement bool) *typing.Type {
	// attribute functions: T'Pos(X) and friends
	if n.Left.Kind == syntax.NAttribute {
		return w.walkAttributeCall(n)
	}

	// overloadable prefixes go through candidate collection before any
	// binding commits
	if candidates := w.callCandidates(n.Left); len(candidates) > 0 {
		return w.walkCall(n, candidates, expected, asStatement)
	}

	prefixType := w.walkExpr(n.Left, nil)
	sym := n.Left.Sym

	if sym != nil && (sym.Kind == sem.SymType || sym.Kind == sem.SymSubtype) {
		return w.walkConversion(n, sym.Type)
	}

	root := prefixType.Root()
	if root.Kind == typing.KindAccess && root.Designated != nil && typing.IsArrayLike(root.Designated.Root()) {
		// implicit dereference before indexing
		root = root.Designated.Root()
	}
	if typing.IsArrayLike(root) {
		return w.walkIndexing(n, prefixType, root)
	}

	w.errorType(n.Pos, "'"+nodeText(n.Left)+"' cannot be applied to arguments")
	return nil
}

// callCandidates collects the overload chain a call prefix denotes, or nil
// when the prefix is not a subprogram name
func (w *Walker) callCandidates(prefix *syntax.Node) []*sem.Symbol {
	switch prefix.Kind {
	case syntax.NIdentifier:
		cands := w.Mgr.LookupAll(prefix.Name)
		if len(cands) > 0 && cands[0].IsSubprogram() {
			return cands
		}

	case syntax.NSelected:
		w.walkExpr(prefix.Left, nil)
		if pkg := prefix.Left.Sym; pkg != nil && pkg.Kind == sem.SymPackage {
			cands := exportOverloads(pkg, prefix.Name)
			if len(cands) > 0 && cands[0].IsSubprogram() {
				return cands
			}
		}
	}
	return nil
}

// walkConversion types `Mark(expr)` as a conversion to the named type
func (w *Walker) walkConversion(n *syntax.Node, target *typing.Type) *typing.Type {
	if len(n.List) != 1 || len(n.List[0].List) > 0 {
		w.errorType(n.Pos, "type conversion takes exactly one argument")
		return target
	}

	operand := n.List[0].Right
	from := w.walkExpr(operand, nil)

	ok := typing.Compatible(from, target) ||
		typing.IsNumeric(from.Root()) && typing.IsNumeric(target.Root()) ||
		typing.IsArrayLike(from.Root()) && typing.IsArrayLike(target.Root())
	if !ok {
		w.errorType(n.Pos, "cannot convert '"+from.Name+"' to '"+target.Name+"'")
	}

	return target
}

// walkIndexing types `A(I)`, `A(I, J)`, and the slice form `A(lo .. hi)`
func (w *Walker) walkIndexing(n *syntax.Node, arrayType, root *typing.Type) *typing.Type {
	// slice: a single discrete-range argument
	if len(n.List) == 1 && n.List[0].Right != nil && n.List[0].Right.Kind == syntax.NRange {
		idx := w.Types.Integer
		if len(root.Indexes) > 0 {
			idx = root.Indexes[0]
		}
		w.walkExpr(n.List[0].Right, idx)
		return arrayType
	}

	if len(n.List) != len(root.Indexes) {
		w.errorType(n.Pos, "wrong number of index expressions")
	}

	for i, assoc := range n.List {
		if len(assoc.List) > 0 {
			w.errorType(assoc.Pos, "index expressions cannot be named")
			continue
		}
		idx := w.Types.Integer
		if i < len(root.Indexes) {
			idx = root.Indexes[i]
		}
		at := w.walkExpr(assoc.Right, idx)
		if !typing.Compatible(at, idx) {
			w.errorType(assoc.Pos, "index expression has the wrong type")
		}
	}

	return root.Elem
}

// walkAttributeCall finishes the argument-taking attributes
func (w *Walker) walkAttributeCall(n *syntax.Node) *typing.Type {
	attr := n.Left
	prefixType := w.walkExpr(attr.Left, nil)

	if len(n.List) != 1 || n.List[0].Right == nil {
		w.errorType(n.Pos, "attribute '"+attr.Name+"' takes exactly one argument")
		attr.TypeOf = prefixType
		return prefixType
	}
	arg := n.List[0].Right

	var result *typing.Type
	switch common.FoldName(attr.Name) {
	case "pos":
		w.walkExpr(arg, prefixType)
		result = w.Types.UniversalInt
	case "val":
		w.walkExpr(arg, w.Types.Integer)
		result = prefixType
	case "succ", "pred":
		w.walkExpr(arg, prefixType)
		result = prefixType
	case "image":
		w.walkExpr(arg, prefixType)
		result = w.Types.String
	case "value":
		w.walkExpr(arg, w.Types.String)
		result = prefixType
	case "first", "last", "length", "range":
		// dimension selector on a multi-dimensional array
		w.walkExpr(arg, w.Types.UniversalInt)
		result = w.resolveAttribute(attr)
	default:
		w.errorName(n.Pos, "attribute '"+attr.Name+"' does not take arguments")
		result = prefixType
	}

	attr.TypeOf = result
	return result
}

// -----------------------------------------------------------------------------
// allocators and aggregates

// walkAllocator types `new Mark` and `new Mark'(init)`
func (w *Walker) walkAllocator(n *syntax.Node, expected *typing.Type) *typing.Type {
	designated := w.resolveSubtypeInd(n.Left)

	// allocating an object of the type freezes it
	w.Types.Freeze(designated)

	if n.Right != nil {
		w.walkExpr(n.Right, designated)
	}

	if expected != nil && expected.Root().Kind == typing.KindAccess {
		des := expected.Root().Designated
		if des == nil || typing.Compatible(des, designated) {
			return expected
		}
	}

	return w.anonymousAccess(designated)
}

// walkAggregate types a composite literal against its context type
func (w *Walker) walkAggregate(n *syntax.Node, expected *typing.Type) *typing.Type {
	if expected == nil {
		w.errorType(n.Pos, "aggregate requires a typed context")
		return nil
	}

	root := expected.Root()
	switch {
	case root.Kind == typing.KindRecord:
		w.walkRecordAggregate(n, root)
	case typing.IsArrayLike(root):
		w.walkArrayAggregate(n, root)
	default:
		w.errorType(n.Pos, "'"+expected.Name+"' is not a composite type")
		return nil
	}

	return expected
}

func (w *Walker) walkRecordAggregate(n *syntax.Node, rec *typing.Type) {
	filled := make(map[string]bool)
	positional := 0
	sawNamed := false

	for _, assoc := range n.List {
		if len(assoc.List) == 0 {
			if sawNamed {
				w.errorType(assoc.Pos, "positional association after a named one")
			}
			if positional >= len(rec.Fields) {
				w.errorType(assoc.Pos, "too many components in record aggregate")
				w.walkExpr(assoc.Right, nil)
				continue
			}
			f := rec.Fields[positional]
			filled[f.Name] = true
			positional++
			w.walkExpr(assoc.Right, f.Type)
			continue
		}

		sawNamed = true
		for _, choice := range assoc.List {
			if choice.Kind == syntax.NOthers {
				// remaining components must share a type for `others`
				var share *typing.Type
				for _, f := range rec.Fields {
					if !filled[f.Name] {
						share = f.Type
						filled[f.Name] = true
					}
				}
				w.walkExpr(assoc.Right, share)
				continue
			}
			if choice.Kind != syntax.NIdentifier {
				w.errorType(choice.Pos, "record aggregate choices must be component names")
				continue
			}
			f := findField(rec, choice.Name)
			if f == nil {
				w.errorName(choice.Pos, "no component '"+choice.Name+"' in '"+rec.Name+"'")
				continue
			}
			if filled[f.Name] {
				w.errorType(choice.Pos, "component '"+f.Name+"' given twice")
			}
			filled[f.Name] = true
			w.walkExpr(assoc.Right, f.Type)
		}
	}
}

func findField(rec *typing.Type, name string) *typing.Field {
	for _, f := range rec.Fields {
		if common.NamesEqual(f.Name, name) {
			return f
		}
	}
	return nil
}

func (w *Walker) walkArrayAggregate(n *syntax.Node, arr *typing.Type) {
	idx := w.Types.Integer
	if len(arr.Indexes) > 0 {
		idx = arr.Indexes[0]
	}

	for _, assoc := range n.List {
		for _, choice := range assoc.List {
			if choice.Kind == syntax.NOthers {
				continue
			}
			ct := w.walkExpr(choice, idx)
			if !typing.Compatible(ct, idx) {
				w.errorType(choice.Pos, "aggregate choice has the wrong index type")
			}
		}
		w.walkExpr(assoc.Right, arr.Elem)
	}
}

// -----------------------------------------------------------------------------
// operators

// operator category requirements by token kind
func (w *Walker) walkBinary(n *syntax.Node) *typing.Type {
	lt := w.walkExpr(n.Left, nil)
	rt := w.walkExpr(n.Right, nil)
	lr, rr := lt.Root(), rt.Root()

	switch n.Tok.Kind {
	case syntax.PLUS, syntax.MINUS, syntax.STAR, syntax.DIVIDE:
		if !typing.IsNumeric(lr) || !typing.IsNumeric(rr) {
			w.errorType(n.Pos, "'"+n.Tok.Value+"' requires numeric operands")
			return nil
		}
		if !typing.Compatible(lt, rt) {
			w.errorType(n.Pos, "operands of '"+n.Tok.Value+"' have incompatible types")
		}
		return pickSpecific(lt, rt)

	case syntax.MOD, syntax.REM:
		if !typing.IsIntegerLike(lr) || !typing.IsIntegerLike(rr) {
			w.errorType(n.Pos, "'"+n.Tok.Value+"' requires integer operands")
			return nil
		}
		return pickSpecific(lt, rt)

	case syntax.EXPON:
		if !typing.IsNumeric(lr) || !typing.IsIntegerLike(rr) {
			w.errorType(n.Pos, "'**' requires a numeric base and an integer exponent")
			return nil
		}
		return lt

	case syntax.AMP:
		switch {
		case typing.IsArrayLike(lr):
			return lt
		case typing.IsArrayLike(rr):
			return rt
		default:
			// character & character builds a string
			return w.Types.String
		}

	case syntax.EQ, syntax.NEQ:
		if typing.IsLimited(lr) || typing.IsLimited(rr) {
			w.errorType(n.Pos, "equality is not defined for limited types")
		} else if !typing.Compatible(lt, rt) {
			w.errorType(n.Pos, "operands of '"+n.Tok.Value+"' have incompatible types")
		}
		return w.Types.Boolean

	case syntax.LT, syntax.LTEQ, syntax.GT, syntax.GTEQ:
		scalarOrString := func(t *typing.Type) bool {
			return typing.IsScalar(t) || typing.IsArrayLike(t) && t.Elem != nil && typing.IsDiscrete(t.Elem.Root())
		}
		if !scalarOrString(lr) || !scalarOrString(rr) {
			w.errorType(n.Pos, "'"+n.Tok.Value+"' requires scalar or discrete-array operands")
		} else if !typing.Compatible(lt, rt) {
			w.errorType(n.Pos, "operands of '"+n.Tok.Value+"' have incompatible types")
		}
		return w.Types.Boolean

	case syntax.AND, syntax.OR, syntax.XOR:
		if !typing.IsBoolean(lr) || !typing.IsBoolean(rr) {
			w.errorType(n.Pos, "'"+n.Tok.Value+"' requires boolean operands")
		}
		return w.Types.Boolean
	}

	w.errorType(n.Pos, "unknown binary operator")
	return nil
}

func (w *Walker) walkUnary(n *syntax.Node) *typing.Type {
	t := w.walkExpr(n.Left, nil)
	root := t.Root()

	switch n.Tok.Kind {
	case syntax.PLUS, syntax.MINUS, syntax.ABS:
		if !typing.IsNumeric(root) {
			w.errorType(n.Pos, "'"+n.Tok.Value+"' requires a numeric operand")
			return nil
		}
		return t

	case syntax.NOT:
		if !typing.IsBoolean(root) {
			w.errorType(n.Pos, "'not' requires a boolean operand")
		}
		return w.Types.Boolean
	}

	w.errorType(n.Pos, "unknown unary operator")
	return nil
}

// pickSpecific prefers the non-universal side of a mixed operand pair
func pickSpecific(a, b *typing.Type) *typing.Type {
	if typing.IsUniversal(a) && !typing.IsUniversal(b) {
		return b
	}
	return a
}
