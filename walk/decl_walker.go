package walk

import (
	"adac/common"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Declaration resolution.

// walkDeclarativePart resolves a declaration sequence and freezes every type
// declared in it when the end of the part is reached (RM 13.14)
func (w *Walker) walkDeclarativePart(decls []*syntax.Node) {
	for _, d := range decls {
		w.walkDecl(d)
	}
	w.freezeScopeTypes()
}

func (w *Walker) walkDecl(n *syntax.Node) {
	switch n.Kind {
	case syntax.NObjectDecl:
		w.walkObjectDecl(n)
	case syntax.NNumberDecl:
		w.walkNumberDecl(n)
	case syntax.NTypeDecl:
		w.walkTypeDecl(n)
	case syntax.NSubtypeDecl:
		w.walkSubtypeDecl(n)
	case syntax.NSubpDecl:
		w.walkSubpDecl(n)
	case syntax.NSubpBody:
		w.walkSubpBody(n)
	case syntax.NPackageDecl:
		w.walkPackageDecl(n)
	case syntax.NPackageBody:
		w.walkPackageBody(n)
	case syntax.NExceptionDecl:
		w.walkExceptionDecl(n)
	case syntax.NRenamesDecl:
		w.walkRenamesDecl(n)
	case syntax.NUseClause:
		w.walkUseClause(n)
	case syntax.NPragmaNode:
		w.walkPragma(n)
	case syntax.NGenericDecl:
		w.walkGenericDecl(n)
	case syntax.NInstanceDecl:
		w.walkInstanceDecl(n)
	case syntax.NTaskDecl, syntax.NTaskBody:
		w.walkTaskDecl(n)
	case syntax.NEntryDecl:
		w.walkEntryDecl(n)
	case syntax.NRepClause:
		w.walkRepClause(n)
	case syntax.NSeparateStub:
		w.walkSeparateStub(n)
	case syntax.NSeparateBody:
		w.walkSeparateBody(n)
	case syntax.NWithClause:
		w.walkWithClause(n)
	}
}

// walkObjectDecl declares one symbol per name with the resolved subtype;
// declaring an object freezes its type
func (w *Walker) walkObjectDecl(n *syntax.Node) {
	var t *typing.Type
	if n.Left != nil && n.Left.Kind == syntax.NArrayDef {
		// anonymous array subtype
		t = typing.NewType(typing.KindArray, "")
		w.buildArrayDef(t, n.Left)
		n.Left.TypeOf = t
	} else {
		t = w.resolveSubtypeInd(n.Left)
	}

	w.Types.Freeze(t)

	if n.Right != nil {
		vt := w.walkExpr(n.Right, t)
		if !typing.Compatible(vt, t) {
			w.errorType(n.Right.Pos, "initializer has the wrong type for '"+t.Name+"'")
		}
	} else if typing.IsLimited(t.Root()) && n.Flag {
		w.errorType(n.Pos, "constant of a limited type must be initialized")
	}

	kind := sem.SymVariable
	if n.Flag {
		kind = sem.SymConstant
	}

	for _, name := range n.Names {
		sym := w.Mgr.Define(&sem.Symbol{
			Name:   name.Name,
			Kind:   kind,
			Pos:    name.Pos,
			Type:   t,
			Body:   n.Right,
			Parent: w.Mgr.Top.Owner,
		})
		name.Sym = sym
		name.TypeOf = t
	}
	n.TypeOf = t
}

// walkNumberDecl declares named numbers; the value stays universal
func (w *Walker) walkNumberDecl(n *syntax.Node) {
	vt := w.walkExpr(n.Right, nil)
	if !typing.IsUniversal(vt) {
		w.errorType(n.Right.Pos, "named number must be a static universal expression")
	}
	if _, okI := FoldInt(n.Right); !okI {
		if _, okF := FoldFloat(n.Right); !okF {
			w.errorType(n.Right.Pos, "named number must be static")
		}
	}

	for _, name := range n.Names {
		sym := w.Mgr.Define(&sem.Symbol{
			Name: name.Name,
			Kind: sem.SymConstant,
			Pos:  name.Pos,
			Type: vt,
			Body: n.Right,
		})
		name.Sym = sym
	}
}

// walkTypeDecl creates a type symbol and builds its descriptor.  Completing
// an earlier incomplete or private view mutates the published descriptor in
// place so access types already pointing at it see the completion.
func (w *Walker) walkTypeDecl(n *syntax.Node) {
	var t *typing.Type
	var sym *sem.Symbol

	if prior := w.Mgr.Top.Find(n.Name); prior != nil && prior.Kind == sem.SymType &&
		prior.Type != nil && isDeferredView(prior.Type) {
		sym = prior
		t = prior.Type
	} else {
		t = typing.NewType(0, common.FoldName(n.Name))
		t.Kind = typing.KindIncomplete
		sym = w.Mgr.Define(&sem.Symbol{
			Name: n.Name,
			Kind: sem.SymType,
			Pos:  n.Pos,
			Type: t,
		})
		t.Decl = sym
	}

	n.Sym = sym
	n.TypeOf = t

	if n.Left == nil {
		return
	}

	if n.Left.Kind == syntax.NRecordDef {
		t.Kind = typing.KindRecord
		w.buildRecordDef(t, n.Left, n.List)
	} else {
		if len(n.List) > 0 {
			w.errorType(n.Pos, "discriminants require a record type")
		}
		w.buildTypeDef(t, n.Left)
	}
}

// isDeferredView reports whether a descriptor is awaiting its full
// declaration
func isDeferredView(t *typing.Type) bool {
	switch t.Kind {
	case typing.KindIncomplete, typing.KindPrivate, typing.KindLimitedPrivate:
		return !t.Frozen
	}
	return false
}

func (w *Walker) walkSubtypeDecl(n *syntax.Node) {
	base := w.resolveSubtypeInd(n.Left)
	sub := base.Clone(common.FoldName(n.Name))
	if sub.Base == sub {
		sub.Base = base
	}

	sym := w.Mgr.Define(&sem.Symbol{
		Name: n.Name,
		Kind: sem.SymSubtype,
		Pos:  n.Pos,
		Type: sub,
	})
	sub.Decl = sym
	n.Sym = sym
	n.TypeOf = sub
}

// -----------------------------------------------------------------------------
// subprograms

// buildSubprogramSymbol materializes a symbol from a spec node, expanding
// multi-name parameter specs into one entry per name
func (w *Walker) buildSubprogramSymbol(spec *syntax.Node) *sem.Symbol {
	kind := sem.SymProcedure
	if spec.Flag {
		kind = sem.SymFunction
	}

	sym := &sem.Symbol{
		Name:   spec.Name,
		Kind:   kind,
		Pos:    spec.Pos,
		Parent: w.Mgr.Top.Owner,
	}

	for _, ps := range spec.List {
		pt := w.resolveSubtypeInd(ps.Left)
		if ps.Right != nil {
			w.walkExpr(ps.Right, pt)
		}
		mode := paramMode(ps.Mode)
		for _, name := range ps.Names {
			sym.Params = append(sym.Params, &sem.Param{
				Name:    name.Name,
				Type:    pt,
				Mode:    mode,
				Default: ps.Right,
			})
		}
	}

	if spec.Flag {
		sym.ReturnType = w.resolveTypeMark(spec.Right)
	}

	spec.Sym = sym
	return sym
}

func paramMode(mode int) int {
	switch mode {
	case syntax.ModeOut:
		return sem.ParamOut
	case syntax.ModeInOut:
		return sem.ParamInOut
	}
	return sem.ParamIn
}

func (w *Walker) walkSubpDecl(n *syntax.Node) {
	sym := w.buildSubprogramSymbol(n.Left)
	w.Mgr.Define(sym)
	n.Sym = sym
}

// walkSubpBody resolves a body: it reuses the declared symbol when a spec
// with the same profile precedes it, pushes the subprogram scope, declares
// parameters, resolves declarations and statements, and freezes at the end
// of the declarative part.
func (w *Walker) walkSubpBody(n *syntax.Node) {
	// the proper body of a generic subprogram is a template; it resolves per
	// instantiation, not here
	if gsym := w.genericForName(n.Left.Name); gsym != nil {
		gsym.Expanded = n
		n.Sym = gsym
		return
	}

	sym := w.buildSubprogramSymbol(n.Left)

	if prior := w.findPriorSpec(sym); prior != nil {
		prior.Body = n
		sym = prior
		n.Left.Sym = sym
	} else {
		sym.Body = n
		w.Mgr.Define(sym)
	}
	n.Sym = sym

	if outer := w.enclosingSubprogram(); outer != nil {
		outer.HasNested = true
	}

	w.subprograms = append(w.subprograms, sym)
	w.Mgr.Push(sym)

	for _, p := range sym.Params {
		psym := w.Mgr.Define(&sem.Symbol{
			Name: p.Name,
			Kind: sem.SymParam,
			Type: p.Type,
		})
		p.Sym = psym
	}

	w.walkDeclarativePart(n.Decls)
	w.walkStatements(n.List)
	w.walkHandlers(n.Handlers)

	w.Mgr.Pop()
	w.subprograms = w.subprograms[:len(w.subprograms)-1]
}

// findPriorSpec locates a body-less declaration with a matching profile in
// the current scope's overload chain
func (w *Walker) findPriorSpec(sym *sem.Symbol) *sem.Symbol {
	head := w.Mgr.Top.Find(sym.Name)
	if head == nil {
		return nil
	}
	for _, cand := range head.Overloads() {
		if cand.Kind != sym.Kind || cand.Body != nil {
			continue
		}
		if profilesMatch(cand, sym) {
			return cand
		}
	}
	return nil
}

func profilesMatch(a, b *sem.Symbol) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Type.Root() != b.Params[i].Type.Root() {
			return false
		}
	}
	if (a.ReturnType == nil) != (b.ReturnType == nil) {
		return false
	}
	return a.ReturnType == nil || a.ReturnType.Root() == b.ReturnType.Root()
}

// -----------------------------------------------------------------------------
// packages

func (w *Walker) walkPackageDecl(n *syntax.Node) {
	sym := w.Mgr.Define(&sem.Symbol{
		Name:   n.Name,
		Kind:   sem.SymPackage,
		Pos:    n.Pos,
		Parent: w.Mgr.Top.Owner,
	})
	n.Sym = sym

	w.Mgr.Push(sym)

	for _, d := range n.List {
		w.walkDecl(d)
	}

	// the visible part's symbols are the package's exports
	for _, s := range sym.InnerScope.Symbols {
		sym.Exports = append(sym.Exports, s)
	}

	for _, d := range n.Decls {
		w.walkDecl(d)
	}

	w.freezeScopeTypes()
	w.Mgr.Pop()
}

// walkPackageBody re-enters the spec's scope so body declarations see the
// visible and private parts directly
func (w *Walker) walkPackageBody(n *syntax.Node) {
	if gsym := w.genericForName(n.Name); gsym != nil {
		gsym.Expanded = n
		n.Sym = gsym
		return
	}

	spec := w.Mgr.Lookup(n.Name)
	if spec == nil || spec.Kind != sem.SymPackage {
		w.errorName(n.Pos, "no package specification for body '"+n.Name+"'")
		spec = w.Mgr.Define(&sem.Symbol{Name: n.Name, Kind: sem.SymPackage, Pos: n.Pos})
	}
	spec.Body = n
	n.Sym = spec

	if spec.InnerScope != nil {
		w.Mgr.PushExisting(spec.InnerScope)
	} else {
		w.Mgr.Push(spec)
	}

	w.walkDeclarativePart(n.Decls)
	w.walkStatements(n.List)
	w.walkHandlers(n.Handlers)

	w.Mgr.Pop()
}

// -----------------------------------------------------------------------------
// exceptions and renamings

func (w *Walker) walkExceptionDecl(n *syntax.Node) {
	for _, name := range n.Names {
		sym := w.Mgr.Define(&sem.Symbol{
			Name:   name.Name,
			Kind:   sem.SymException,
			Pos:    name.Pos,
			Parent: w.Mgr.Top.Owner,
		})
		name.Sym = sym
		w.Exceptions = append(w.Exceptions, sym)
	}
}

// walkRenamesDecl declares an alias symbol carrying the renamed entity in its
// body slot
func (w *Walker) walkRenamesDecl(n *syntax.Node) {
	target := n.Left

	var declared *typing.Type
	if n.Right != nil && n.Right.Kind == syntax.NSubtypeInd {
		declared = w.resolveSubtypeInd(n.Right)
	}

	w.walkExpr(target, declared)
	tsym := target.Sym

	for _, name := range n.Names {
		kind := sem.SymVariable
		t := target.TypeOf
		if tsym != nil {
			kind = tsym.Kind
			if tsym.Type != nil {
				t = tsym.Type
			}
		}
		if declared != nil && t != nil && !typing.Compatible(declared, t) {
			w.errorType(n.Pos, "renamed object has the wrong type")
		}

		sym := w.Mgr.Define(&sem.Symbol{
			Name:       name.Name,
			Kind:       kind,
			Pos:        name.Pos,
			Type:       t,
			Body:       target,
			Params:     paramsOf(tsym),
			ReturnType: returnTypeOf(tsym),
		})
		name.Sym = sym
	}
}

func paramsOf(sym *sem.Symbol) []*sem.Param {
	if sym == nil {
		return nil
	}
	return sym.Params
}

func returnTypeOf(sym *sem.Symbol) *typing.Type {
	if sym == nil {
		return nil
	}
	return sym.ReturnType
}

// -----------------------------------------------------------------------------
// tasks, stubs, and representation clauses

// walkTaskDecl accepts task syntax; no tasking semantics attach, but entries
// resolve so calls to them type-check
func (w *Walker) walkTaskDecl(n *syntax.Node) {
	if n.Kind == syntax.NTaskBody {
		sym := w.Mgr.Lookup(n.Name)
		if sym == nil || sym.Kind != sem.SymType && sym.Kind != sem.SymVariable {
			sym = w.Mgr.Define(&sem.Symbol{Name: n.Name, Kind: sem.SymVariable, Pos: n.Pos})
		}
		w.Mgr.Push(sym)
		w.walkDeclarativePart(n.Decls)
		w.walkStatements(n.List)
		w.walkHandlers(n.Handlers)
		w.Mgr.Pop()
		return
	}

	t := typing.NewType(typing.KindTask, common.FoldName(n.Name))
	kind := sem.SymVariable
	if n.Flag {
		kind = sem.SymType
	}
	sym := w.Mgr.Define(&sem.Symbol{Name: n.Name, Kind: kind, Pos: n.Pos, Type: t})
	t.Decl = sym
	n.Sym = sym

	w.Mgr.Push(sym)
	for _, item := range n.List {
		w.walkDecl(item)
	}
	w.Mgr.Pop()
}

func (w *Walker) walkEntryDecl(n *syntax.Node) {
	sym := &sem.Symbol{Name: n.Name, Kind: sem.SymEntry, Pos: n.Pos, Parent: w.Mgr.Top.Owner}
	for _, ps := range n.List {
		pt := w.resolveSubtypeInd(ps.Left)
		for _, name := range ps.Names {
			sym.Params = append(sym.Params, &sem.Param{Name: name.Name, Type: pt, Mode: paramMode(ps.Mode)})
		}
	}
	w.Mgr.Define(sym)
	n.Sym = sym
}

// walkRepClause resolves the clause's name and expression; only `'Size`
// length clauses on unfrozen types affect layout
func (w *Walker) walkRepClause(n *syntax.Node) {
	w.walkExpr(n.Left, nil)
	if n.Right != nil {
		w.walkExpr(n.Right, w.Types.UniversalInt)
	}

	if n.Left.Kind != syntax.NAttribute || n.Right == nil {
		return
	}
	if common.FoldName(n.Left.Name) != "size" {
		return
	}

	sym := n.Left.Left.Sym
	if sym == nil || sym.Type == nil {
		return
	}
	if sym.Type.Frozen {
		w.errorType(n.Pos, "'"+sym.Name+"' is already frozen")
		return
	}

	if bits, ok := FoldInt(n.Right); ok && bits.IsInt64() {
		// length clauses speak bits; the lattice stores bytes
		sym.Type.Size = int((bits.Int64() + 7) / 8)
	}
}

func (w *Walker) walkSeparateStub(n *syntax.Node) {
	// the stub declares the subprogram; the separate body is compiled as its
	// own unit
	w.walkSubpDecl(&syntax.Node{Kind: syntax.NSubpDecl, Pos: n.Pos, Left: n.Left})
	n.Sym = n.Left.Sym
}

// walkSeparateBody resolves a `separate (Parent)` proper body in the context
// of its parent unit's scope when that unit is loaded
func (w *Walker) walkSeparateBody(n *syntax.Node) {
	w.walkExpr(n.Left, nil)

	parent := n.Left.Sym
	if parent != nil && parent.InnerScope != nil {
		w.Mgr.PushExisting(parent.InnerScope)
		defer w.Mgr.Pop()
	}

	if n.Right != nil {
		w.walkDecl(n.Right)
	}
}
