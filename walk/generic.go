package walk

import (
	"adac/common"
	"adac/sem"
	"adac/syntax"
)

// Generic units.  A generic declaration stashes its template unresolved; each
// instantiation clones the template tree, binds the formals to the actuals in
// a fresh scope, and resolves the clone there.  Clones keep instances from
// sharing annotations.

func (w *Walker) walkGenericDecl(n *syntax.Node) {
	name := unitName(n.Left)
	sym := w.Mgr.Define(&sem.Symbol{
		Name:   name,
		Kind:   sem.SymGeneric,
		Pos:    n.Pos,
		Parent: w.Mgr.Top.Owner,
		Body:   n,
	})
	n.Sym = sym
}

// unitName extracts the defining name of a library unit declaration node
func unitName(n *syntax.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case syntax.NPackageDecl, syntax.NPackageBody:
		return n.Name
	case syntax.NSubpDecl, syntax.NSubpBody:
		return n.Left.Name
	}
	return n.Name
}

// genericForName reports a generic declared in the current scope with the
// given name, used to route the proper bodies of generic units to their
// templates.  A generic body must share its declarative region with the
// declaration, so only the innermost scope is consulted.
func (w *Walker) genericForName(name string) *sem.Symbol {
	sym := w.Mgr.Top.Find(name)
	if sym != nil && sym.Kind == sem.SymGeneric {
		return sym
	}
	return nil
}

func (w *Walker) walkInstanceDecl(n *syntax.Node) {
	gname := n.Left
	var actuals []*syntax.Node
	if gname.Kind == syntax.NApply {
		actuals = gname.List
		gname = gname.Left
	}

	gsym := w.lookupGeneric(gname)
	if gsym == nil {
		return
	}
	template, ok := gsym.Body.(*syntax.Node)
	if !ok || template.Kind != syntax.NGenericDecl {
		w.errorType(n.Pos, "'"+gsym.Name+"' has no usable template")
		return
	}

	instKind := sem.SymPackage
	if n.Mode == syntax.NSubpSpec {
		instKind = sem.SymFunction // adjusted below from the template unit
	}
	inst := w.Mgr.Define(&sem.Symbol{
		Name:     n.Name,
		Kind:     instKind,
		Pos:      n.Pos,
		Parent:   w.Mgr.Top.Owner,
		Template: gsym,
		Actuals:  map[string]interface{}{},
	})
	n.Sym = inst

	w.Mgr.Push(inst)
	w.bindFormals(template.List, actuals, inst)

	unit := cloneTree(template.Left)
	templateBody, _ := gsym.Expanded.(*syntax.Node)
	inst.Expanded = unit

	switch unit.Kind {
	case syntax.NPackageDecl:
		for _, d := range unit.List {
			w.walkDecl(d)
		}
		for _, s := range inst.InnerScope.Symbols {
			inst.Exports = append(inst.Exports, s)
		}
		for _, d := range unit.Decls {
			w.walkDecl(d)
		}
		if templateBody != nil {
			body := cloneTree(templateBody)
			inst.Body = body
			w.walkDeclarativePart(body.Decls)
			w.walkStatements(body.List)
			w.walkHandlers(body.Handlers)
		}
		w.freezeScopeTypes()
		w.Mgr.Pop()

	case syntax.NSubpDecl, syntax.NSubpBody:
		if templateBody != nil {
			unit = cloneTree(templateBody)
			inst.Expanded = unit
		}
		w.walkDecl(unit)
		expanded := w.Mgr.Top.Find(unit.Left.Name)
		w.Mgr.Pop()

		// surface the expanded subprogram under the instance name
		if expanded != nil {
			inst.Kind = expanded.Kind
			inst.Params = expanded.Params
			inst.ReturnType = expanded.ReturnType
			inst.Body = expanded.Body
			inst.InnerScope = expanded.InnerScope
		}

	default:
		w.errorType(n.Pos, "generic unit cannot be instantiated")
		w.Mgr.Pop()
	}
}

func (w *Walker) lookupGeneric(gname *syntax.Node) *sem.Symbol {
	switch gname.Kind {
	case syntax.NIdentifier:
		sym := w.Mgr.Lookup(gname.Name)
		if sym == nil {
			w.errorName(gname.Pos, "undefined generic '"+gname.Name+"'")
			return nil
		}
		if sym.Kind != sem.SymGeneric {
			w.errorType(gname.Pos, "'"+gname.Name+"' is not a generic unit")
			return nil
		}
		gname.Sym = sym
		return sym

	case syntax.NSelected:
		w.walkExpr(gname.Left, nil)
		if pkg := gname.Left.Sym; pkg != nil && pkg.Kind == sem.SymPackage {
			if sym := findExport(pkg, gname.Name); sym != nil && sym.Kind == sem.SymGeneric {
				gname.Sym = sym
				return sym
			}
		}
		w.errorName(gname.Pos, "'"+nodeText(gname)+"' is not a generic unit")
		return nil
	}

	w.errorType(gname.Pos, "expected a generic unit name")
	return nil
}

// bindFormals declares one symbol per generic formal bound to its actual
func (w *Walker) bindFormals(formals []*syntax.Node, actuals []*syntax.Node, inst *sem.Symbol) {
	positional := 0

	actualFor := func(name string) *syntax.Node {
		for _, a := range actuals {
			if len(a.List) == 1 && a.List[0].Kind == syntax.NIdentifier &&
				common.NamesEqual(a.List[0].Name, name) {
				return a.Right
			}
		}
		return nil
	}
	nextPositional := func() *syntax.Node {
		for positional < len(actuals) {
			a := actuals[positional]
			positional++
			if len(a.List) == 0 {
				return a.Right
			}
		}
		return nil
	}

	for _, formal := range formals {
		switch formal.Mode {
		case syntax.TYPE:
			w.bindTypeFormal(formal, actualFor(formal.Name), nextPositional, inst)

		case syntax.WITH:
			w.bindSubprogramFormal(formal, actualFor(formal.Left.Name), nextPositional, inst)

		default:
			for _, name := range formal.Names {
				actual := actualFor(name.Name)
				if actual == nil {
					actual = nextPositional()
				}
				w.bindObjectFormal(formal, name, actual, inst)
			}
		}
	}
}

func (w *Walker) bindTypeFormal(formal, actual *syntax.Node, next func() *syntax.Node, inst *sem.Symbol) {
	if actual == nil {
		actual = next()
	}
	if actual == nil {
		w.errorType(formal.Pos, "no actual for generic type '"+formal.Name+"'")
		return
	}

	t := w.resolveTypeMark(actual)
	inst.Actuals[common.FoldName(formal.Name)] = actual

	sub := t.Clone(common.FoldName(formal.Name))
	sub.Base = t
	sym := w.Mgr.Define(&sem.Symbol{
		Name: formal.Name,
		Kind: sem.SymSubtype,
		Pos:  formal.Pos,
		Type: sub,
	})
	sub.Decl = sym
	formal.Sym = sym
}

func (w *Walker) bindSubprogramFormal(formal, actual *syntax.Node, next func() *syntax.Node, inst *sem.Symbol) {
	spec := formal.Left
	if actual == nil {
		actual = next()
	}
	if actual == nil {
		if !formal.Flag && formal.Right == nil {
			w.errorType(formal.Pos, "no actual for generic subprogram '"+spec.Name+"'")
			return
		}
		// box or named default: resolve the default name at the instance point
		actual = formal.Right
	}

	var target *sem.Symbol
	name := spec.Name
	if actual != nil {
		w.walkExpr(actual, nil)
		target = actual.Sym
		inst.Actuals[common.FoldName(name)] = actual
	} else {
		// `is <>`: the homonym visible here serves
		target = w.Mgr.Lookup(name)
	}

	if target == nil || !target.IsSubprogram() {
		w.errorType(formal.Pos, "actual for '"+name+"' is not a subprogram")
		return
	}

	alias := w.Mgr.Define(&sem.Symbol{
		Name:       name,
		Kind:       target.Kind,
		Pos:        formal.Pos,
		Params:     target.Params,
		ReturnType: target.ReturnType,
		Body:       actual,
	})
	alias.Template = target
	formal.Sym = alias
}

func (w *Walker) bindObjectFormal(formal, name, actual *syntax.Node, inst *sem.Symbol) {
	t := w.resolveSubtypeInd(formal.Left)

	if actual == nil {
		actual = formal.Right // declared default
	}
	if actual == nil {
		w.errorType(formal.Pos, "no actual for generic object '"+name.Name+"'")
		return
	}

	w.walkExpr(actual, t)
	inst.Actuals[common.FoldName(name.Name)] = actual

	kind := sem.SymConstant
	if formal.Flag {
		kind = sem.SymVariable // `in out` formal
	}
	sym := w.Mgr.Define(&sem.Symbol{
		Name: name.Name,
		Kind: kind,
		Pos:  name.Pos,
		Type: t,
		Body: actual,
	})
	name.Sym = sym
}

// cloneTree deep-copies a template subtree so each instantiation resolves
// independently
func cloneTree(n *syntax.Node) *syntax.Node {
	if n == nil {
		return nil
	}

	c := *n
	c.Sym = nil
	c.TypeOf = nil
	c.Left = cloneTree(n.Left)
	c.Right = cloneTree(n.Right)
	c.Names = cloneList(n.Names)
	c.List = cloneList(n.List)
	c.Decls = cloneList(n.Decls)
	c.Handlers = cloneList(n.Handlers)
	return &c
}

func cloneList(list []*syntax.Node) []*syntax.Node {
	if list == nil {
		return nil
	}
	out := make([]*syntax.Node, len(list))
	for i, n := range list {
		out[i] = cloneTree(n)
	}
	return out
}
