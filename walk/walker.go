package walk

import (
	"adac/logging"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Walker is the resolution pass: one depth-first traversal of a compilation
// unit that binds names, annotates every node with a type, folds static
// expressions, and freezes types at the points the language requires.
type Walker struct {
	lctx *logging.LogContext

	// Mgr owns the scope stack; Types owns the predefined environment and the
	// frozen-composite list
	Mgr   *sem.Manager
	Types *typing.Context

	// Exceptions collects every declared exception in declaration order; the
	// emitter produces one identity global per entry
	Exceptions []*sem.Symbol

	// subprograms is the stack of enclosing subprogram symbols
	subprograms []*sem.Symbol

	// loops is the stack of open loop symbols for exit-statement checking
	loops []*sem.Symbol
}

// NewWalker creates a walker and populates the library scope with the
// predefined environment: the standard types, the Boolean literals, and the
// predefined exceptions.
func NewWalker(lctx *logging.LogContext, mgr *sem.Manager, tctx *typing.Context) *Walker {
	w := &Walker{lctx: lctx, Mgr: mgr, Types: tctx}
	w.definePredefined()
	return w
}

func (w *Walker) definePredefined() {
	types := []*typing.Type{
		w.Types.Boolean, w.Types.Character, w.Types.Integer,
		w.Types.LongInteger, w.Types.Natural, w.Types.Positive,
		w.Types.Float, w.Types.Duration, w.Types.String,
	}
	for _, t := range types {
		sym := w.Mgr.Define(&sem.Symbol{Name: t.Name, Kind: sem.SymType, Type: t})
		t.Decl = sym
	}

	w.Mgr.Define(&sem.Symbol{Name: "false", Kind: sem.SymLiteral, Type: w.Types.Boolean})
	w.Mgr.Define(&sem.Symbol{Name: "true", Kind: sem.SymLiteral, Type: w.Types.Boolean})

	for _, name := range []string{
		"constraint_error", "numeric_error", "program_error",
		"storage_error", "tasking_error",
	} {
		exc := w.Mgr.Define(&sem.Symbol{Name: name, Kind: sem.SymException})
		w.Exceptions = append(w.Exceptions, exc)
	}

	w.defineTextIO()
}

// defineTextIO installs the runtime-provided input-output package as the
// predefined Ada.Text_IO.  Its subprograms are imported: the emitter links
// them by external name and declares them instead of defining bodies.
func (w *Walker) defineTextIO() {
	ada := w.Mgr.Define(&sem.Symbol{Name: "ada", Kind: sem.SymPackage})

	w.Mgr.Push(ada)
	textIO := w.Mgr.Define(&sem.Symbol{Name: "text_io", Kind: sem.SymPackage, Parent: ada})
	ada.Exports = append(ada.Exports, textIO)

	w.Mgr.Push(textIO)
	stringParam := func(name string) []*sem.Param {
		return []*sem.Param{{Name: name, Type: w.Types.String, Mode: sem.ParamIn}}
	}
	routines := []*sem.Symbol{
		{Name: "put", Kind: sem.SymProcedure, Params: stringParam("item"), ExternalName: "__ada_put"},
		{Name: "put_line", Kind: sem.SymProcedure, Params: stringParam("item"), ExternalName: "__ada_put_line"},
		{Name: "new_line", Kind: sem.SymProcedure, ExternalName: "__ada_new_line"},
		{Name: "get_line", Kind: sem.SymFunction, ReturnType: w.Types.String, ExternalName: "__ada_get_line"},
	}
	for _, r := range routines {
		r.Parent = textIO
		r.IsImported = true
		r.Convention = "intrinsic"
		w.Mgr.Define(r)
		textIO.Exports = append(textIO.Exports, r)
	}
	w.Mgr.Pop()
	w.Mgr.Pop()
}

// WalkUnit resolves one compilation unit in place
func (w *Walker) WalkUnit(unit *syntax.Node) {
	if unit == nil {
		return
	}

	for _, clause := range unit.List {
		switch clause.Kind {
		case syntax.NWithClause:
			w.walkWithClause(clause)
		case syntax.NUseClause:
			w.walkUseClause(clause)
		case syntax.NPragmaNode:
			w.walkPragma(clause)
		}
	}

	if unit.Left != nil {
		w.walkDecl(unit.Left)
	}
}

// walkWithClause resolves the named packages when their specs have already
// been loaded into the library scope.  An unknown name is not an error here;
// the include-path probe reported it when the spec failed to open.
func (w *Walker) walkWithClause(n *syntax.Node) {
	for _, name := range n.List {
		if name.Kind != syntax.NIdentifier {
			continue
		}
		if sym := w.Mgr.Lookup(name.Name); sym != nil && sym.Kind == sem.SymPackage {
			name.Sym = sym
		}
	}
}

// walkUseClause promotes each named package's exports to use-visible
func (w *Walker) walkUseClause(n *syntax.Node) {
	for _, name := range n.List {
		w.walkExpr(name, nil)
		sym := name.Sym
		if sym == nil {
			continue // the lookup failure was already diagnosed
		}
		if sym.Kind != sem.SymPackage {
			w.errorName(name.Pos, "'"+nodeText(name)+"' is not a package")
			continue
		}
		w.Mgr.Top.AddUse(sym)
	}
}

// -----------------------------------------------------------------------------
// diagnostics

func (w *Walker) errorName(pos *logging.TextPosition, msg string) {
	logging.LogCompileError(w.lctx, msg, logging.LMKName, pos)
}

func (w *Walker) errorType(pos *logging.TextPosition, msg string) {
	logging.LogCompileError(w.lctx, msg, logging.LMKTyping, pos)
}

func (w *Walker) errorConstraint(pos *logging.TextPosition, msg string) {
	logging.LogCompileError(w.lctx, msg, logging.LMKConstraint, pos)
}

func (w *Walker) warn(pos *logging.TextPosition, msg string) {
	logging.LogCompileWarning(w.lctx, msg, logging.LMKUsage, pos)
}

// errType is the error-recovery type: resolution failures annotate the node
// with the predefined Integer and continue
func (w *Walker) errType() *typing.Type {
	return w.Types.Integer
}

// nodeText renders a name node back to source-ish text for diagnostics
func nodeText(n *syntax.Node) string {
	switch n.Kind {
	case syntax.NIdentifier:
		return n.Name
	case syntax.NSelected:
		return nodeText(n.Left) + "." + n.Name
	case syntax.NAttribute:
		return nodeText(n.Left) + "'" + n.Name
	case syntax.NApply:
		return nodeText(n.Left) + "(...)"
	case syntax.NDeref:
		return nodeText(n.Left) + ".all"
	}
	return "expression"
}

// -----------------------------------------------------------------------------
// freezing

// freezeScopeTypes freezes every type declared in the current scope; called
// at the end of each declarative part
func (w *Walker) freezeScopeTypes() {
	for _, sym := range w.Mgr.Top.Symbols {
		if sym.Kind == sem.SymType || sym.Kind == sem.SymSubtype {
			w.Types.Freeze(sym.Type)
		}
	}
}

// enclosingSubprogram is the innermost open subprogram, nil at library level
func (w *Walker) enclosingSubprogram() *sem.Symbol {
	if len(w.subprograms) == 0 {
		return nil
	}
	return w.subprograms[len(w.subprograms)-1]
}
