package walk

import (
	"adac/common"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Statement resolution.

func (w *Walker) walkStatements(stmts []*syntax.Node) {
	for _, s := range stmts {
		w.walkStatement(s)
	}
}

func (w *Walker) walkStatement(n *syntax.Node) {
	switch n.Kind {
	case syntax.NNullStmt:

	case syntax.NAssign:
		w.walkAssign(n)

	case syntax.NProcCall:
		w.walkProcCall(n)

	case syntax.NIfStmt:
		for _, branch := range n.List {
			if branch.Left != nil {
				w.requireBoolean(branch.Left)
			}
			w.walkStatements(branch.List)
		}

	case syntax.NCaseStmt:
		w.walkCaseStmt(n)

	case syntax.NLoopStmt:
		w.walkLoopStmt(n)

	case syntax.NBlockStmt:
		w.walkBlockStmt(n)

	case syntax.NExitStmt:
		w.walkExitStmt(n)

	case syntax.NReturnStmt:
		w.walkReturnStmt(n)

	case syntax.NGotoStmt:
		// label targets resolve lazily; an undefined label surfaces at
		// emission when no block carries it

	case syntax.NLabeled:
		w.Mgr.Define(&sem.Symbol{Name: n.Name, Kind: sem.SymLabel, Pos: n.Pos})
		if n.Left != nil {
			w.walkStatement(n.Left)
		}

	case syntax.NRaiseStmt:
		if n.Left != nil {
			w.walkExceptionName(n.Left)
		}

	case syntax.NDelayStmt:
		t := w.walkExpr(n.Left, w.Types.Duration)
		if !typing.IsReal(t.Root()) && !typing.IsUniversal(t) {
			w.errorType(n.Left.Pos, "delay expects a duration value")
		}

	case syntax.NAbortStmt:
		for _, name := range n.List {
			w.walkExpr(name, nil)
		}

	case syntax.NAcceptStmt, syntax.NSelectStmt:
		// tasking statements are accepted, not compiled; resolve nested
		// statement sequences so their names still check
		w.walkStatements(n.Decls)
		for _, alt := range n.List {
			if alt.Kind == syntax.NBlockStmt {
				w.walkStatements(alt.List)
			}
		}

	case syntax.NPragmaNode:
		w.walkPragma(n)
	}
}

func (w *Walker) walkAssign(n *syntax.Node) {
	tt := w.walkExpr(n.Left, nil)

	if !isVariable(n.Left) {
		w.errorType(n.Left.Pos, "target of assignment is not a variable")
	} else if sym := baseName(n.Left).Sym; sym != nil && sym.Kind == sem.SymConstant {
		w.errorType(n.Left.Pos, "cannot assign to constant '"+sym.Name+"'")
	}

	if typing.IsLimited(tt.Root()) {
		w.errorType(n.Pos, "assignment is not defined for limited types")
	}

	vt := w.walkExpr(n.Right, tt)
	if !typing.Compatible(vt, tt) {
		w.errorType(n.Pos, "expression has the wrong type for the assignment target")
	}
}

// walkProcCall resolves a call statement: either a bare name or an apply node
func (w *Walker) walkProcCall(n *syntax.Node) {
	target := n.Left

	if target.Kind == syntax.NApply {
		w.walkApply(target, nil, true)
		n.Sym = target.Sym
		return
	}

	// parameterless call: Name;
	candidates := w.callCandidates(target)
	if candidates == nil {
		if target.Kind == syntax.NIdentifier || target.Kind == syntax.NSelected {
			w.walkExpr(target, nil)
			sym := target.Sym
			if sym != nil && !sym.IsSubprogram() {
				w.errorType(n.Pos, "'"+nodeText(target)+"' is not a procedure")
			}
			n.Sym = sym
		} else {
			w.errorType(n.Pos, "statement is not a procedure call")
		}
		return
	}

	for _, cand := range candidates {
		if cand.Kind == sem.SymProcedure || cand.Kind == sem.SymEntry {
			if allDefaulted(cand.Params) {
				target.Sym = cand
				n.Sym = cand
				return
			}
		}
	}

	w.errorType(n.Pos, "no parameterless procedure '"+nodeText(target)+"' is visible")
}

func allDefaulted(params []*sem.Param) bool {
	for _, p := range params {
		if p.Default == nil {
			return false
		}
	}
	return true
}

func (w *Walker) walkCaseStmt(n *syntax.Node) {
	st := w.walkExpr(n.Left, nil)
	if !typing.IsDiscrete(st.Root()) {
		w.errorType(n.Left.Pos, "case selector must be discrete")
	}

	sawOthers := false
	for _, alt := range n.List {
		for _, choice := range alt.List {
			if choice.Kind == syntax.NOthers {
				sawOthers = true
				continue
			}
			if sawOthers {
				w.errorType(choice.Pos, "'when others' must be the last alternative")
			}
			ct := w.walkExpr(choice, st)
			if !typing.Compatible(ct, st) {
				w.errorType(choice.Pos, "case choice has the wrong type")
			}
		}
		w.walkStatements(alt.Decls)
	}
}

func (w *Walker) walkLoopStmt(n *syntax.Node) {
	loopSym := &sem.Symbol{Name: n.Name, Kind: sem.SymLoop, Pos: n.Pos}
	if n.Name != "" {
		w.Mgr.Define(loopSym)
	}
	n.Sym = loopSym

	w.Mgr.Push(loopSym)
	w.loops = append(w.loops, loopSym)

	switch {
	case n.Left == nil:
		// bare loop

	case n.Left.Kind == syntax.NWhileScheme:
		w.requireBoolean(n.Left.Left)

	case n.Left.Kind == syntax.NForScheme:
		iterType := w.walkIterationRange(n.Left.Left)
		varSym := w.Mgr.Define(&sem.Symbol{
			Name: n.Left.Name,
			Kind: sem.SymConstant, // the loop parameter is not assignable
			Pos:  n.Left.Pos,
			Type: iterType,
		})
		n.Left.Sym = varSym
		n.Left.TypeOf = iterType
	}

	w.walkStatements(n.List)

	w.loops = w.loops[:len(w.loops)-1]
	w.Mgr.Pop()
}

// walkIterationRange types the discrete range of a for scheme: a low..high
// pair, a type mark, or an array's `'Range`
func (w *Walker) walkIterationRange(rng *syntax.Node) *typing.Type {
	t := w.walkExpr(rng, nil)
	root := t.Root()

	if typing.IsUniversal(root) {
		return w.Types.Integer
	}
	if !typing.IsDiscrete(root) {
		w.errorType(rng.Pos, "iteration range must be discrete")
		return w.errType()
	}
	return t
}

func (w *Walker) walkBlockStmt(n *syntax.Node) {
	blockSym := &sem.Symbol{Name: n.Name, Kind: sem.SymLabel, Pos: n.Pos}
	if n.Name != "" {
		w.Mgr.Define(blockSym)
	}

	w.Mgr.Push(blockSym)
	w.walkDeclarativePart(n.Decls)
	w.walkStatements(n.List)
	w.walkHandlers(n.Handlers)
	w.Mgr.Pop()
}

func (w *Walker) walkExitStmt(n *syntax.Node) {
	if len(w.loops) == 0 {
		w.errorType(n.Pos, "exit statement outside a loop")
		return
	}

	if n.Name != "" {
		found := false
		for _, loop := range w.loops {
			if common.NamesEqual(loop.Name, n.Name) {
				n.Sym = loop
				found = true
			}
		}
		if !found {
			w.errorName(n.Pos, "no enclosing loop named '"+n.Name+"'")
		}
	} else {
		n.Sym = w.loops[len(w.loops)-1]
	}

	if n.Left != nil {
		w.requireBoolean(n.Left)
	}
}

func (w *Walker) walkReturnStmt(n *syntax.Node) {
	subp := w.enclosingSubprogram()
	if subp == nil {
		w.errorType(n.Pos, "return statement outside a subprogram")
		return
	}

	if subp.ReturnType == nil {
		if n.Left != nil {
			w.errorType(n.Pos, "procedure '"+subp.Name+"' cannot return a value")
			w.walkExpr(n.Left, nil)
		}
		return
	}

	if n.Left == nil {
		w.errorType(n.Pos, "function '"+subp.Name+"' must return a value")
		return
	}

	vt := w.walkExpr(n.Left, subp.ReturnType)
	if !typing.Compatible(vt, subp.ReturnType) {
		w.errorType(n.Left.Pos, "return value has the wrong type for '"+subp.Name+"'")
	}
}

// walkHandlers resolves exception-handler choices: exception names or others
func (w *Walker) walkHandlers(handlers []*syntax.Node) {
	for _, h := range handlers {
		for _, choice := range h.List {
			if choice.Kind == syntax.NOthers {
				continue
			}
			w.walkExceptionName(choice)
		}
		w.walkStatements(h.Decls)
	}
}

// walkExceptionName resolves a name that must denote an exception
func (w *Walker) walkExceptionName(n *syntax.Node) {
	switch n.Kind {
	case syntax.NIdentifier:
		sym := w.Mgr.Lookup(n.Name)
		if sym == nil {
			msg := "undefined exception '" + n.Name + "'"
			if hint := w.suggest(n.Name); hint != "" {
				msg += "; did you mean '" + hint + "'?"
			}
			w.errorName(n.Pos, msg)
			return
		}
		if sym.Kind != sem.SymException {
			w.errorType(n.Pos, "'"+n.Name+"' is not an exception")
			return
		}
		n.Sym = sym

	case syntax.NSelected:
		w.walkExpr(n.Left, nil)
		if pkg := n.Left.Sym; pkg != nil && pkg.Kind == sem.SymPackage {
			if exc := findExport(pkg, n.Name); exc != nil && exc.Kind == sem.SymException {
				n.Sym = exc
				return
			}
		}
		w.errorName(n.Pos, "'"+nodeText(n)+"' does not denote an exception")

	default:
		w.errorType(n.Pos, "expected an exception name")
	}
}
