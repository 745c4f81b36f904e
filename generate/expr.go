package generate

import (
	"fmt"

	"adac/common"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
	"adac/walk"
)

// Expression emission.  genExpr returns an operand in the computation
// representation of the node's resolved type; genAddr returns the address of
// an object-denoting name.

func (g *Generator) genExpr(n *syntax.Node) string {
	if n == nil {
		return "0"
	}

	// static scalar expressions fold to literals
	if n.TypeOf != nil {
		r := n.TypeOf.Root()
		if typing.IsDiscrete(r) && n.Kind != syntax.NIntLit {
			if v, ok := walk.FoldInt(n); ok && v.IsInt64() {
				return fmt.Sprintf("%d", v.Int64())
			}
		}
		if typing.IsReal(r) && n.Kind != syntax.NRealLit {
			if v, ok := walk.FoldFloat(n); ok {
				return formatFloat(v)
			}
		}
	}

	switch n.Kind {
	case syntax.NIntLit:
		if n.Tok.BigValue != nil {
			return n.Tok.BigValue.String()
		}
		return fmt.Sprintf("%d", n.Tok.IntValue)

	case syntax.NRealLit:
		return formatFloat(n.Tok.FloatValue)

	case syntax.NCharLit:
		return fmt.Sprintf("%d", n.Tok.IntValue)

	case syntax.NStringLit:
		return g.genStringLiteral(n)

	case syntax.NNullLit:
		return "null"

	case syntax.NIdentifier:
		return g.genName(n)

	case syntax.NSelected:
		if n.Sym == nil {
			// record component
			return g.load(g.fieldAddr(n), n.TypeOf)
		}
		return g.genName(n)

	case syntax.NApply:
		return g.genApply(n)

	case syntax.NDeref:
		p := g.genExpr(n.Left)
		g.accessCheck(p, n.Left)
		return g.load(p, n.TypeOf)

	case syntax.NQualified:
		return g.genExpr(n.Right)

	case syntax.NAttribute:
		return g.genAttribute(n)

	case syntax.NAllocator:
		return g.genAllocator(n)

	case syntax.NAggregate:
		addr := g.alloca(g.temp()+".agg", memType(n.TypeOf))
		g.genAggregateInto(addr, n)
		if isFat(n.TypeOf) {
			return g.load(addr, n.TypeOf)
		}
		return addr

	case syntax.NBinary:
		return g.genBinary(n)

	case syntax.NUnary:
		return g.genUnary(n)

	case syntax.NShortCircuit:
		return g.genShortCircuit(n)

	case syntax.NMembership:
		return g.genMembership(n)
	}

	// parse-error placeholder
	g.emit("; unsupported expression form, zero substituted")
	return "0"
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%e", v)
}

// genName loads the value of an object-denoting name; enumeration literals
// and parameterless function calls resolve through their symbols
func (g *Generator) genName(n *syntax.Node) string {
	sym := n.Sym
	if sym == nil {
		return "0"
	}

	switch sym.Kind {
	case sem.SymLiteral:
		return fmt.Sprintf("%d", literalPosition(sym))

	case sem.SymFunction:
		// parameterless call bound directly to a name
		return g.genCall(n, sym, nil)

	case sem.SymConstant, sem.SymVariable, sem.SymParam,
		sem.SymComponent, sem.SymDiscriminant:
		addr := g.genAddr(n)
		return g.load(addr, n.TypeOf)
	}
	return "0"
}

// literalPosition is the enumeration literal's position number
func literalPosition(sym *sem.Symbol) int {
	if sym.Type == nil {
		return 0
	}
	root := sym.Type.Root()
	for i, name := range root.Literals {
		if name == common.FoldName(sym.Name) {
			return i
		}
	}
	return 0
}

// genStringLiteral interns the bytes and wraps them in a fat pointer with
// bounds 1..length
func (g *Generator) genStringLiteral(n *syntax.Node) string {
	data := n.Tok.StrValue
	global := g.internString(data)
	return g.makeFat(global, "1", fmt.Sprintf("%d", len(data)))
}

// -----------------------------------------------------------------------------
// addressing

// genAddr returns a ptr operand for an object-denoting name
func (g *Generator) genAddr(n *syntax.Node) string {
	switch n.Kind {
	case syntax.NIdentifier:
		return g.symbolAddr(n.Sym)

	case syntax.NSelected:
		if n.Sym == nil {
			return g.fieldAddr(n)
		}
		// package-qualified object
		return g.symbolAddr(n.Sym)

	case syntax.NApply:
		return g.indexAddr(n)

	case syntax.NDeref:
		p := g.genExpr(n.Left)
		g.accessCheck(p, n.Left)
		return p

	case syntax.NQualified:
		return g.genAddr(n.Right)

	case syntax.NStringLit:
		return g.internString(n.Tok.StrValue)

	case syntax.NAggregate:
		addr := g.alloca(g.temp()+".agg", memType(n.TypeOf))
		g.genAggregateInto(addr, n)
		return addr
	}

	g.emit("; unsupported name form, null address substituted")
	return "null"
}

// symbolAddr produces the address of a symbol's storage
func (g *Generator) symbolAddr(sym *sem.Symbol) string {
	if sym == nil {
		return "null"
	}

	if isGlobalObject(sym) {
		return "@" + Mangle(sym)
	}

	slot := g.slotAddr(sym)
	if g.fn != nil && g.fn.indirect(sym) {
		p := g.temp()
		g.emit("%s = load ptr, ptr %s", p, slot)
		return p
	}
	return slot
}

// slotAddr is the raw address of the symbol's local slot: a frame GEP when
// the owning subprogram carries a frame, a named alloca otherwise
func (g *Generator) slotAddr(sym *sem.Symbol) string {
	fn := g.fn
	if fn == nil {
		return "@" + Mangle(sym)
	}

	localDepth := fn.sym.NestingLevel + 1
	if sym.NestingLevel < localDepth {
		// uplevel access into the caller's frame
		p := g.temp()
		g.emit("%s = getelementptr i8, ptr %%__chain, i64 %d", p, sym.FrameOffset)
		return p
	}

	if fn.hasFrame {
		p := g.temp()
		g.emit("%s = getelementptr i8, ptr %%__frame, i64 %d", p, sym.FrameOffset)
		return p
	}
	return localName(sym)
}

func localName(sym *sem.Symbol) string {
	return fmt.Sprintf("%%%s_S%d", escapeName(common.FoldName(sym.Name)), sym.UniqueID)
}

// isGlobalObject reports whether the symbol's storage is module-level: no
// enclosing subprogram anywhere on its scope chain
func isGlobalObject(sym *sem.Symbol) bool {
	for s := sym.DefScope; s != nil; s = s.Parent {
		if s.Owner != nil && s.Owner.IsSubprogram() {
			return false
		}
	}
	return true
}

// indirect reports whether the symbol's slot stores an address instead of a
// value (by-reference parameters)
func (f *funcState) indirect(sym *sem.Symbol) bool {
	return f.indirectParams[sym]
}

// fieldAddr computes a record component address: prefix address plus the
// component's byte offset
func (g *Generator) fieldAddr(n *syntax.Node) string {
	prefixType := n.Left.TypeOf.Root()

	var base string
	if prefixType.Kind == typing.KindAccess {
		// implicit dereference: the prefix value is the record's address
		base = g.genExpr(n.Left)
		prefixType = prefixType.Designated.Root()
	} else {
		base = g.genAddr(n.Left)
	}

	offset := 0
	for _, f := range prefixType.Fields {
		if common.NamesEqual(f.Name, n.Name) {
			offset = f.Offset
		}
	}

	p := g.temp()
	g.emit("%s = getelementptr i8, ptr %s, i64 %d", p, base, offset)
	return p
}

// indexAddr computes an element address, adjusting the subscript by the
// array's low bound and scaling by the element stride
func (g *Generator) indexAddr(n *syntax.Node) string {
	at := n.Left.TypeOf
	root := at.Root()
	if root.Kind == typing.KindAccess {
		at = root.Designated
		root = at.Root()
	}

	if isFat(at) {
		fat := g.genExpr(n.Left)
		data := g.fatField(fat, 0)
		low := g.fatField(fat, 1)

		idx := g.genExpr(assocValue(n.List[0]))
		rel := g.temp()
		g.emit("%s = sub i64 %s, %s", rel, idx, low)
		off := g.temp()
		g.emit("%s = mul i64 %s, %d", off, rel, elemStride(at))

		p := g.temp()
		g.emit("%s = getelementptr i8, ptr %s, i64 %s", p, data, off)
		return p
	}

	data := g.genAddr(n.Left)
	indexes := at.Indexes
	if len(indexes) == 0 {
		indexes = root.Indexes
	}

	// row-major linearization: fold each subscript into the running index,
	// scaling by the span of the dimension it enters
	linear := ""
	for k, subscript := range n.List {
		lo, span := int64(0), int64(1)
		if k < len(indexes) {
			if l, h, ok := staticBounds(indexes[k]); ok {
				lo, span = l, h-l+1
			}
		}

		idx := g.genExpr(assocValue(subscript))
		rel := g.temp()
		g.emit("%s = sub i64 %s, %d", rel, idx, lo)

		if linear == "" {
			linear = rel
			continue
		}
		scaled := g.temp()
		g.emit("%s = mul i64 %s, %d", scaled, linear, span)
		sum := g.temp()
		g.emit("%s = add i64 %s, %s", sum, scaled, rel)
		linear = sum
	}

	off := g.temp()
	g.emit("%s = mul i64 %s, %d", off, linear, elemStride(at))

	p := g.temp()
	g.emit("%s = getelementptr i8, ptr %s, i64 %s", p, data, off)
	return p
}

func assocValue(n *syntax.Node) *syntax.Node {
	if n.Kind == syntax.NAssociation {
		return n.Right
	}
	return n
}

// -----------------------------------------------------------------------------
// fat pointers

// makeFat builds a fat pointer value from a data pointer and bounds
func (g *Generator) makeFat(data, low, high string) string {
	a := g.temp()
	g.emit("%s = insertvalue %%fat undef, ptr %s, 0", a, data)
	b := g.temp()
	g.emit("%s = insertvalue %%fat %s, i64 %s, 1, 0", b, a, low)
	c := g.temp()
	g.emit("%s = insertvalue %%fat %s, i64 %s, 1, 1", c, b, high)
	return c
}

// fatField extracts data (0), low (1), or high (2) from a fat pointer
func (g *Generator) fatField(fat string, field int) string {
	v := g.temp()
	switch field {
	case 0:
		g.emit("%s = extractvalue %%fat %s, 0", v, fat)
	case 1:
		g.emit("%s = extractvalue %%fat %s, 1, 0", v, fat)
	default:
		g.emit("%s = extractvalue %%fat %s, 1, 1", v, fat)
	}
	return v
}

// fatLength computes high - low + 1, clamped at zero
func (g *Generator) fatLength(fat string) string {
	low := g.fatField(fat, 1)
	high := g.fatField(fat, 2)
	d := g.temp()
	g.emit("%s = sub i64 %s, %s", d, high, low)
	l := g.temp()
	g.emit("%s = add i64 %s, 1", l, d)
	neg := g.temp()
	g.emit("%s = icmp slt i64 %s, 0", neg, l)
	c := g.temp()
	g.emit("%s = select i1 %s, i64 0, i64 %s", c, neg, l)
	return c
}

// asFat coerces an array-valued expression to the fat representation; a
// constrained array gains its descriptor bounds as literals
func (g *Generator) asFat(n *syntax.Node) string {
	t := n.TypeOf
	if isFat(t) {
		return g.genExpr(n)
	}

	addr := g.genAddr(n)
	lo, hi := int64(1), int64(0)
	if root := t.Root(); len(root.Indexes) > 0 {
		if l, h, ok := staticBounds(root.Indexes[0]); ok {
			lo, hi = l, h
		}
	}
	return g.makeFat(addr, fmt.Sprintf("%d", lo), fmt.Sprintf("%d", hi))
}

// -----------------------------------------------------------------------------
// applications

// genApply dispatches a resolved apply node: call, conversion, or indexing
func (g *Generator) genApply(n *syntax.Node) string {
	if n.Sym != nil && n.Sym.IsSubprogram() {
		return g.genCall(n, n.Sym, n.List)
	}

	if n.Left.Sym != nil &&
		(n.Left.Sym.Kind == sem.SymType || n.Left.Sym.Kind == sem.SymSubtype) {
		return g.genConversion(n)
	}

	if len(n.List) == 1 && assocValue(n.List[0]).Kind == syntax.NRange {
		return g.genSlice(n)
	}

	addr := g.indexAddr(n)
	return g.load(addr, n.TypeOf)
}

// genConversion narrows or widens between numeric representations; array
// conversions re-wrap the operand
func (g *Generator) genConversion(n *syntax.Node) string {
	arg := assocValue(n.List[0])
	v := g.genExpr(arg)

	from := arg.TypeOf.Root()
	to := n.TypeOf.Root()

	switch {
	case typing.IsReal(from) && typing.IsIntegerLike(to):
		t := g.temp()
		g.emit("%s = fptosi double %s to i64", t, v)
		return t
	case typing.IsIntegerLike(from) && typing.IsReal(to):
		t := g.temp()
		g.emit("%s = sitofp i64 %s to double", t, v)
		return t
	}
	// same representation family; width adjustment happens at the store
	return v
}

// genSlice produces a fat pointer into the sliced array
func (g *Generator) genSlice(n *syntax.Node) string {
	rng := assocValue(n.List[0])
	low := g.genExpr(rng.Left)
	high := g.genExpr(rng.Right)

	at := n.Left.TypeOf
	var data, baseLow string
	if isFat(at) {
		fat := g.genExpr(n.Left)
		data = g.fatField(fat, 0)
		baseLow = g.fatField(fat, 1)
	} else {
		data = g.genAddr(n.Left)
		lo := int64(1)
		if root := at.Root(); len(root.Indexes) > 0 {
			if l, _, ok := staticBounds(root.Indexes[0]); ok {
				lo = l
			}
		}
		baseLow = fmt.Sprintf("%d", lo)
	}

	rel := g.temp()
	g.emit("%s = sub i64 %s, %s", rel, low, baseLow)
	off := g.temp()
	g.emit("%s = mul i64 %s, %d", off, rel, elemStride(at))
	p := g.temp()
	g.emit("%s = getelementptr i8, ptr %s, i64 %s", p, data, off)

	return g.makeFat(p, low, high)
}

// genCall emits a subprogram call.  Actuals map to parameters positionally
// then by name; missing trailing parameters take their defaults.  A nested
// callee receives the caller's frame as a leading argument.
func (g *Generator) genCall(n *syntax.Node, callee *sem.Symbol, assocs []*syntax.Node) string {
	if callee.IsImported {
		g.imports[Mangle(callee)] = callee
	}
	actuals := bindActuals(callee, assocs)

	var args []string
	if calleeIsNested(callee) {
		args = append(args, "ptr "+g.framePointer())
	}
	if isBuildInPlace(callee) {
		// stack allocation form, no task master or finalization chain
		buf := g.alloca(g.temp()+".bip", memType(callee.ReturnType))
		args = append(args, "i64 0", "ptr "+buf, "ptr null", "ptr null")
	}

	for i, p := range callee.Params {
		actual := actuals[i]
		if actual == nil {
			if d, ok := p.Default.(*syntax.Node); ok && d != nil {
				args = append(args, g.argFor(d, p))
				continue
			}
			args = append(args, valType(p.Type)+" 0")
			continue
		}
		args = append(args, g.argFor(actual, p))
	}

	callArgs := ""
	for i, a := range args {
		if i > 0 {
			callArgs += ", "
		}
		callArgs += a
	}

	if callee.ReturnType == nil {
		g.emit("call void @%s(%s)", Mangle(callee), callArgs)
		return ""
	}

	ret := g.temp()
	g.emit("%s = call %s @%s(%s)", ret, returnIRType(callee.ReturnType), Mangle(callee), callArgs)
	return ret
}

// argFor renders one actual in the parameter's passing representation
func (g *Generator) argFor(actual *syntax.Node, p *sem.Param) string {
	if paramIndirect(p) {
		return "ptr " + g.genAddr(actual)
	}
	if isFat(p.Type) {
		if actual.TypeOf != nil && typing.IsArrayLike(actual.TypeOf.Root()) && !isFat(actual.TypeOf) {
			return "%fat " + g.asFat(actual)
		}
		return "%fat " + g.genExpr(actual)
	}
	return valType(p.Type) + " " + g.genExpr(actual)
}

// bindActuals pairs associations with parameter slots
func bindActuals(callee *sem.Symbol, assocs []*syntax.Node) []*syntax.Node {
	actuals := make([]*syntax.Node, len(callee.Params))
	pos := 0
	for _, a := range assocs {
		value := assocValue(a)
		if a.Kind == syntax.NAssociation && len(a.List) == 1 && a.List[0].Kind == syntax.NIdentifier {
			for i, p := range callee.Params {
				if common.NamesEqual(p.Name, a.List[0].Name) {
					actuals[i] = value
				}
			}
			continue
		}
		if pos < len(actuals) {
			actuals[pos] = value
			pos++
		}
	}
	return actuals
}

// calleeIsNested reports whether the callee lives inside another subprogram
func calleeIsNested(callee *sem.Symbol) bool {
	for p := callee.Parent; p != nil; p = p.Parent {
		if p.IsSubprogram() {
			return true
		}
	}
	return false
}

// framePointer is the frame argument to hand a nested callee
func (g *Generator) framePointer() string {
	switch {
	case g.fn == nil:
		return "null"
	case g.fn.hasFrame:
		return "%__frame"
	case g.fn.nested:
		return "%__chain"
	}
	return "null"
}

// returnIRType is the callee-side return representation
func returnIRType(t *typing.Type) string {
	if isByRef(t) {
		return "ptr"
	}
	return valType(t)
}
