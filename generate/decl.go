package generate

import (
	"fmt"
	"strings"

	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Declaration emission: functions, local and global objects, packages, and
// the implicit equality functions of frozen composites.

// genFunction emits one subprogram body.  Nested bodies found in the
// declarative part are queued and emitted after this function closes.
func (g *Generator) genFunction(sym *sem.Symbol, n *syntax.Node, nested bool) {
	if sym == nil || sym.IsImported {
		return
	}

	outer := g.fn
	g.fn = &funcState{
		sym:            sym,
		hasFrame:       sym.HasNested,
		nested:         nested,
		indirectParams: map[*sem.Symbol]bool{},
	}

	var params []string
	if nested {
		params = append(params, "ptr %__chain")
	}
	if isBuildInPlace(sym) {
		// limited results build in caller-provided storage
		params = append(params,
			"i64 %__bip_alloc", "ptr %__bip_access", "ptr %__bip_master", "ptr %__bip_chain")
	}
	for i, p := range sym.Params {
		params = append(params, fmt.Sprintf("%s %%arg%d", paramIRType(p), i))
	}

	retType := "void"
	if sym.ReturnType != nil {
		retType = returnIRType(sym.ReturnType)
	}

	if g.fn.hasFrame {
		frameSize := 8
		if sym.InnerScope != nil && sym.InnerScope.FrameSize > frameSize {
			frameSize = sym.InnerScope.FrameSize
		}
		g.alloca("%__frame", fmt.Sprintf("[%d x i8]", frameSize))
	}

	for i, p := range sym.Params {
		g.bindParam(p, fmt.Sprintf("%%arg%d", i))
	}

	g.genLocalDecls(n.Decls)

	if len(n.Handlers) > 0 {
		g.genProtected(nil, n.List, n.Handlers)
	} else {
		g.genStatements(n.List)
	}

	if !g.fn.terminated {
		switch retType {
		case "void":
			g.emit("ret void")
		case "double":
			g.emit("ret double 0.0")
		case "ptr":
			g.emit("ret ptr null")
		case "%fat":
			g.emit("ret %%fat zeroinitializer")
		default:
			g.emit("ret %s 0", retType)
		}
	}

	fmt.Fprintf(&g.code, "define %s @%s(%s) {\nentry:\n", retType, Mangle(sym), strings.Join(params, ", "))
	g.fn.head.WriteTo(&g.code)
	g.fn.body.WriteTo(&g.code)
	g.code.WriteString("}\n\n")

	g.fn = outer
	if outer == nil {
		g.flushDeferred()
	}
}

// paramIRType is the caller/callee passing representation of a parameter:
// out and in out modes and by-reference composites travel as pointers
func paramIRType(p *sem.Param) string {
	if paramIndirect(p) {
		return "ptr"
	}
	return valType(p.Type)
}

func paramIndirect(p *sem.Param) bool {
	return p.Mode != sem.ParamIn || isByRef(p.Type)
}

// isBuildInPlace reports whether a function's limited result is constructed
// in storage the caller provides
func isBuildInPlace(sym *sem.Symbol) bool {
	return sym.ReturnType != nil && typing.IsLimited(sym.ReturnType.Root())
}

// bindParam gives a parameter its slot and stores the incoming value
func (g *Generator) bindParam(p *sem.Param, incoming string) {
	psym := p.Sym
	if psym == nil {
		return
	}

	indirect := paramIndirect(p)
	if indirect {
		g.fn.indirectParams[psym] = true
	}

	slotType := memType(p.Type)
	if indirect {
		slotType = "ptr"
	}

	var slot string
	if g.fn.hasFrame {
		slot = g.temp()
		g.emit("%s = getelementptr i8, ptr %%__frame, i64 %d", slot, psym.FrameOffset)
	} else {
		slot = g.alloca(localName(psym), slotType)
	}

	if indirect {
		g.emit("store ptr %s, ptr %s", incoming, slot)
		return
	}
	g.store(incoming, slot, p.Type)
}

// genLocalDecls emits storage and initialization for a declarative part
func (g *Generator) genLocalDecls(decls []*syntax.Node) {
	for _, d := range decls {
		switch d.Kind {
		case syntax.NObjectDecl:
			g.genLocalObject(d)

		case syntax.NSubpBody:
			if d.Sym != nil {
				g.deferred = append(g.deferred, deferredBody{
					sym:    d.Sym,
					node:   d,
					nested: true,
				})
			}

		case syntax.NRenamesDecl:
			g.genLocalRenames(d)

		case syntax.NPackageDecl:
			// local package: objects join the enclosing frame and
			// subprogram bodies defer like any other nested body
			g.genLocalDecls(d.List)
			g.genLocalDecls(d.Decls)

		case syntax.NPackageBody:
			g.genLocalDecls(d.Decls)
			// the body's begin part runs when the declaration elaborates
			g.genStatements(d.List)

		case syntax.NInstanceDecl:
			g.genInstance(d)
		}
	}
}

// genLocalObject reserves storage per declared name and runs initializers
func (g *Generator) genLocalObject(n *syntax.Node) {
	t := n.TypeOf

	for _, name := range n.Names {
		sym := name.Sym
		if sym == nil {
			continue
		}
		slot := g.declareLocal(sym, t)

		if n.Right != nil {
			g.storeInto(slot, n.Right, t)
		}
	}
}

// declareLocal reserves a slot for a symbol and returns its address
func (g *Generator) declareLocal(sym *sem.Symbol, t *typing.Type) string {
	if g.fn.hasFrame {
		slot := g.temp()
		g.emit("%s = getelementptr i8, ptr %%__frame, i64 %d", slot, sym.FrameOffset)
		return slot
	}
	return g.alloca(localName(sym), memType(t))
}

// genLocalRenames stores the renamed object's address in an indirect slot so
// every use of the alias resolves through it
func (g *Generator) genLocalRenames(n *syntax.Node) {
	if n.Left == nil || len(n.Names) == 0 {
		return
	}
	sym := n.Names[0].Sym
	if sym == nil || !sym.IsObject() {
		return // subprogram and exception renames need no storage
	}

	addr := g.genAddr(n.Left)
	var slot string
	if g.fn.hasFrame {
		slot = g.temp()
		g.emit("%s = getelementptr i8, ptr %%__frame, i64 %d", slot, sym.FrameOffset)
	} else {
		slot = g.alloca(localName(sym), "ptr")
	}
	g.emit("store ptr %s, ptr %s", addr, slot)
	g.fn.indirectParams[sym] = true
}

// genInstance emits the expanded bodies of a generic instantiation
func (g *Generator) genInstance(n *syntax.Node) {
	inst := n.Sym
	if inst == nil {
		return
	}

	if inst.IsSubprogram() {
		if body, ok := inst.Body.(*syntax.Node); ok && body != nil && body.Kind == syntax.NSubpBody {
			g.deferred = append(g.deferred, deferredBody{sym: inst, node: body, nested: g.fn != nil})
		}
		return
	}

	// package instance: emit every expanded subprogram body
	if body, ok := inst.Body.(*syntax.Node); ok && body != nil {
		for _, d := range body.Decls {
			if d.Kind == syntax.NSubpBody && d.Sym != nil {
				g.deferred = append(g.deferred, deferredBody{sym: d.Sym, node: d, nested: g.fn != nil})
			}
		}
	}
}

// -----------------------------------------------------------------------------
// packages at library level

// genPackageDecl emits globals for package-spec objects and an elaboration
// function holding their initializers
func (g *Generator) genPackageDecl(n *syntax.Node) {
	sym := n.Sym
	var inits []*syntax.Node

	emitObjects := func(decls []*syntax.Node) {
		for _, d := range decls {
			switch d.Kind {
			case syntax.NObjectDecl:
				g.genGlobalObject(d)
				if d.Right != nil {
					inits = append(inits, d)
				}
			case syntax.NSubpBody:
				g.genFunction(d.Sym, d, false)
			case syntax.NInstanceDecl:
				g.genInstance(d)
			}
		}
	}

	emitObjects(n.List)
	emitObjects(n.Decls)

	if len(inits) > 0 && sym != nil {
		g.genElaboration(sym, inits, nil)
	}
}

// genPackageBody emits the body's subprograms, its object globals, and an
// elaboration function for initializers plus the begin-part statements
func (g *Generator) genPackageBody(n *syntax.Node) {
	sym := n.Sym
	var inits []*syntax.Node

	for _, d := range n.Decls {
		switch d.Kind {
		case syntax.NObjectDecl:
			g.genGlobalObject(d)
			if d.Right != nil {
				inits = append(inits, d)
			}
		case syntax.NSubpBody:
			g.genFunction(d.Sym, d, false)
		case syntax.NInstanceDecl:
			g.genInstance(d)
		}
	}

	if (len(inits) > 0 || len(n.List) > 0) && sym != nil {
		g.genElaboration(sym, inits, n.List)
	}
}

// genGlobalObject defines one zero-initialized module global per name
func (g *Generator) genGlobalObject(n *syntax.Node) {
	for _, name := range n.Names {
		if name.Sym == nil {
			continue
		}
		fmt.Fprintf(&g.globals, "@%s = global %s zeroinitializer\n",
			Mangle(name.Sym), memType(n.TypeOf))
	}
}

// genElaboration wraps package initializers and begin-part statements into
// one void function run before main
func (g *Generator) genElaboration(pkg *sem.Symbol, inits []*syntax.Node, stmts []*syntax.Node) {
	outer := g.fn
	g.fn = &funcState{sym: pkg, indirectParams: map[*sem.Symbol]bool{}}

	for _, d := range inits {
		for _, name := range d.Names {
			if name.Sym == nil {
				continue
			}
			g.storeInto("@"+Mangle(name.Sym), d.Right, d.TypeOf)
		}
	}
	g.genStatements(stmts)

	if !g.fn.terminated {
		g.emit("ret void")
	}

	fmt.Fprintf(&g.code, "define void @__elab.%s() {\nentry:\n", Mangle(pkg))
	g.fn.head.WriteTo(&g.code)
	g.fn.body.WriteTo(&g.code)
	g.code.WriteString("}\n\n")

	g.fn = outer
}

// -----------------------------------------------------------------------------
// implicit equality

// genEquality defines the comparison function registered when a composite
// type froze: field-by-field for records, memcmp for constrained arrays
func (g *Generator) genEquality(t *typing.Type) {
	if t.EqName == "" {
		return
	}

	outer := g.fn
	g.fn = &funcState{indirectParams: map[*sem.Symbol]bool{}}

	if t.Kind == typing.KindRecord {
		acc := "true"
		for _, f := range t.Fields {
			fa := g.temp()
			g.emit("%s = getelementptr i8, ptr %%a, i64 %d", fa, f.Offset)
			fb := g.temp()
			g.emit("%s = getelementptr i8, ptr %%b, i64 %d", fb, f.Offset)

			var c string
			fr := f.Type.Root()
			switch {
			case fr.EqName != "":
				c = g.temp()
				g.emit("%s = call i1 @%s(ptr %s, ptr %s)", c, fr.EqName, fa, fb)
			case typing.IsComposite(fr):
				r := g.temp()
				g.emit("%s = call i32 @memcmp(ptr %s, ptr %s, i64 %d)", r, fa, fb, f.Type.Size)
				c = g.temp()
				g.emit("%s = icmp eq i32 %s, 0", c, r)
			case typing.IsReal(fr):
				va := g.temp()
				g.emit("%s = load double, ptr %s", va, fa)
				vb := g.temp()
				g.emit("%s = load double, ptr %s", vb, fb)
				c = g.temp()
				g.emit("%s = fcmp oeq double %s, %s", c, va, vb)
			default:
				va := g.load(fa, f.Type)
				vb := g.load(fb, f.Type)
				c = g.temp()
				g.emit("%s = icmp eq i64 %s, %s", c, va, vb)
			}

			next := g.temp()
			g.emit("%s = and i1 %s, %s", next, acc, c)
			acc = next
		}
		g.emit("ret i1 %s", acc)
	} else {
		r := g.temp()
		g.emit("%s = call i32 @memcmp(ptr %%a, ptr %%b, i64 %d)", r, t.Size)
		c := g.temp()
		g.emit("%s = icmp eq i32 %s, 0", c, r)
		g.emit("ret i1 %s", c)
	}

	fmt.Fprintf(&g.code, "define i1 @%s(ptr %%a, ptr %%b) {\nentry:\n", t.EqName)
	g.fn.head.WriteTo(&g.code)
	g.fn.body.WriteTo(&g.code)
	g.code.WriteString("}\n\n")

	g.fn = outer
}
