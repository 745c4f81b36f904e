package walk

import (
	"adac/common"
	"adac/sem"
	"adac/syntax"
)

// Pragma handling.  Each recognized pragma records its effect on the named
// entity's symbol or type descriptor; unknown pragmas are accepted silently
// (RM 2.8).

func (w *Walker) walkPragma(n *syntax.Node) {
	switch common.FoldName(n.Name) {
	case "inline":
		for _, sym := range w.pragmaSymbols(n) {
			if sym.IsSubprogram() {
				for _, o := range sym.Overloads() {
					o.IsInline = true
				}
			} else {
				w.errorType(n.Pos, "pragma Inline applies to subprograms")
			}
		}

	case "pack":
		for _, sym := range w.pragmaSymbols(n) {
			if sym.Type == nil {
				w.errorType(n.Pos, "pragma Pack applies to composite types")
				continue
			}
			if sym.Type.Frozen {
				w.errorType(n.Pos, "'"+sym.Name+"' is already frozen")
				continue
			}
			sym.Type.Packed = true
		}

	case "suppress":
		w.walkSuppress(n)

	case "import", "interface":
		w.walkImportExport(n, true)

	case "export":
		w.walkImportExport(n, false)

	case "convention":
		if len(n.List) == 2 {
			convention := pragmaArgName(n.List[0])
			for _, sym := range w.namedSymbols(n.List[1]) {
				sym.Convention = convention
			}
		}

	case "unreferenced":
		for _, sym := range w.pragmaSymbols(n) {
			sym.IsUnreferenced = true
		}

	case "pure", "preelaborate", "elaborate", "elaborate_all",
		"optimize", "list", "page":
		// informational; accepted with no effect on the tree

	default:
		// unknown pragmas are accepted silently
	}
}

// pragmaSymbols resolves every argument of an entity-list pragma
func (w *Walker) pragmaSymbols(n *syntax.Node) []*sem.Symbol {
	var syms []*sem.Symbol
	for _, assoc := range n.List {
		syms = append(syms, w.namedSymbols(assoc.Right)...)
	}
	return syms
}

// namedSymbols resolves one pragma argument to its symbol
func (w *Walker) namedSymbols(arg *syntax.Node) []*sem.Symbol {
	if arg == nil || arg.Kind != syntax.NIdentifier {
		return nil
	}
	sym := w.Mgr.Lookup(arg.Name)
	if sym == nil {
		w.errorName(arg.Pos, "undefined name '"+arg.Name+"' in pragma")
		return nil
	}
	arg.Sym = sym
	return []*sem.Symbol{sym}
}

// pragmaArgName reads an identifier or string argument as a plain spelling
func pragmaArgName(assoc *syntax.Node) string {
	if assoc == nil || assoc.Right == nil {
		return ""
	}
	switch assoc.Right.Kind {
	case syntax.NIdentifier:
		return assoc.Right.Name
	case syntax.NStringLit:
		return assoc.Right.Tok.StrValue
	}
	return ""
}

// walkSuppress merges a check bit into the named entity's mask, or into the
// current scope's mask when no entity is named
func (w *Walker) walkSuppress(n *syntax.Node) {
	if len(n.List) == 0 {
		return
	}

	check := common.FoldName(pragmaArgName(n.List[0]))
	bit, ok := sem.CheckNames[check]
	if !ok {
		w.warn(n.Pos, "unknown check '"+check+"' in pragma Suppress")
		return
	}

	if len(n.List) == 1 {
		w.Mgr.Top.SuppressedChecks |= bit
		// the scope is popped before emission; the owner's mask survives
		if owner := w.Mgr.Top.Owner; owner != nil {
			owner.SuppressedChecks |= bit
		}
		return
	}

	for _, sym := range w.namedSymbols(n.List[1].Right) {
		sym.SuppressedChecks |= bit
		if sym.Kind == sem.SymType || sym.Kind == sem.SymSubtype {
			sym.Type.SuppressedChecks |= bit
		}
	}
}

// walkImportExport handles pragma Import(convention, entity[, external_name])
// and its Export counterpart
func (w *Walker) walkImportExport(n *syntax.Node, importing bool) {
	if len(n.List) < 2 {
		w.errorType(n.Pos, "pragma needs a convention and an entity")
		return
	}

	convention := pragmaArgName(n.List[0])
	external := ""
	if len(n.List) > 2 {
		external = pragmaArgName(n.List[2])
	}

	for _, sym := range w.namedSymbols(n.List[1].Right) {
		sym.Convention = convention
		sym.ExternalName = external
		if external == "" {
			sym.ExternalName = common.FoldName(sym.Name)
		}
		if importing {
			sym.IsImported = true
		} else {
			sym.IsExported = true
		}
	}
}
