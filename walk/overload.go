package walk

import (
	"adac/common"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Overload resolution.  The candidate set is the full overload chain of a
// name visible from the call site; each candidate is scored against the
// argument vector and the context type.  Ties break by fewer universal
// coercions, then nearer scope, then exact named-parameter matches.

// walkCall resolves a subprogram call against its candidate chain
func (w *Walker) walkCall(n *syntax.Node, candidates []*sem.Symbol, expected *typing.Type, asStatement bool) *typing.Type {
	// pre-walk argument values so matching can see their types; aggregates
	// and nulls stay untyped until a profile is chosen
	argTypes := make([]*typing.Type, len(n.List))
	for i, assoc := range n.List {
		if deferTyping(assoc.Right) {
			continue
		}
		argTypes[i] = w.walkExpr(assoc.Right, nil)
	}

	type scored struct {
		sym       *sem.Symbol
		coercions int
	}
	var viable []scored

	for _, cand := range candidates {
		if !cand.IsSubprogram() {
			continue
		}
		if asStatement != (cand.ReturnType == nil) {
			continue
		}
		if expected != nil && cand.ReturnType != nil && !typing.Compatible(cand.ReturnType, expected) {
			continue
		}
		coercions, ok := matchProfile(cand.Params, n.List, argTypes)
		if ok {
			viable = append(viable, scored{cand, coercions})
		}
	}

	if len(viable) == 0 {
		w.errorType(n.Pos, "no visible '"+callName(n.Left)+"' matches these arguments")
		return nil
	}

	// tie-break (a): fewer universal coercions
	best := viable[:0:0]
	minCoerce := viable[0].coercions
	for _, v := range viable[1:] {
		if v.coercions < minCoerce {
			minCoerce = v.coercions
		}
	}
	for _, v := range viable {
		if v.coercions == minCoerce {
			best = append(best, v)
		}
	}

	// tie-break (b): nearer scope
	if len(best) > 1 {
		nearest := best[:0:0]
		minDist := w.Mgr.ScopeDistance(best[0].sym)
		for _, v := range best[1:] {
			if d := w.Mgr.ScopeDistance(v.sym); d < minDist {
				minDist = d
			}
		}
		for _, v := range best {
			if w.Mgr.ScopeDistance(v.sym) == minDist {
				nearest = append(nearest, v)
			}
		}
		best = nearest
	}

	// tie-break (c): exact match on named parameter spellings
	if len(best) > 1 {
		exact := best[:0:0]
		for _, v := range best {
			if namedParamsExact(v.sym.Params, n.List) {
				exact = append(exact, v)
			}
		}
		if len(exact) > 0 {
			best = exact
		}
	}

	if len(best) > 1 {
		w.errorType(n.Pos, "call to '"+callName(n.Left)+"' is ambiguous")
	}

	chosen := best[0].sym
	w.bindCall(n, chosen)
	return chosen.ReturnType
}

// bindCall commits a chosen profile: annotates the prefix, re-walks deferred
// arguments with their parameter types, and checks actual modes
func (w *Walker) bindCall(n *syntax.Node, sym *sem.Symbol) {
	n.Sym = sym
	n.Left.Sym = sym
	n.Left.TypeOf = sym.ReturnType

	positional := 0
	for _, assoc := range n.List {
		var param *sem.Param
		if len(assoc.List) == 0 {
			if positional < len(sym.Params) {
				param = sym.Params[positional]
			}
			positional++
		} else if assoc.List[0].Kind == syntax.NIdentifier {
			param = findParam(sym.Params, assoc.List[0].Name)
		}
		if param == nil {
			continue
		}

		if deferTyping(assoc.Right) {
			w.walkExpr(assoc.Right, param.Type)
		} else if assoc.Right.TypeOf != nil && typing.IsUniversal(assoc.Right.TypeOf) {
			assoc.Right.TypeOf = param.Type
		}

		if param.Mode != sem.ParamIn && !isVariable(assoc.Right) {
			w.errorType(assoc.Right.Pos, "actual for 'out' parameter '"+param.Name+"' must be a variable")
		}
	}
}

// matchProfile scores one candidate against the association list.  It
// returns the universal-coercion count and whether the profile matches.
func matchProfile(params []*sem.Param, assocs []*syntax.Node, argTypes []*typing.Type) (int, bool) {
	matched := make([]bool, len(params))
	coercions := 0
	positional := 0
	sawNamed := false

	for i, assoc := range assocs {
		var slot int
		if len(assoc.List) == 0 {
			if sawNamed || positional >= len(params) {
				return 0, false
			}
			slot = positional
			positional++
		} else {
			sawNamed = true
			if assoc.List[0].Kind != syntax.NIdentifier {
				return 0, false
			}
			slot = paramIndex(params, assoc.List[0].Name)
			if slot < 0 || matched[slot] {
				return 0, false
			}
		}

		matched[slot] = true

		at := argTypes[i]
		if at == nil {
			continue // aggregate or null literal; matches any composite/access
		}
		if !typing.Compatible(at, params[slot].Type) {
			return 0, false
		}
		if typing.IsUniversal(at) && !typing.IsUniversal(params[slot].Type) {
			coercions++
		}
	}

	for i, p := range params {
		if !matched[i] && p.Default == nil {
			return 0, false
		}
	}

	return coercions, true
}

// namedParamsExact reports whether every named association matches a
// parameter spelling exactly (after case folding)
func namedParamsExact(params []*sem.Param, assocs []*syntax.Node) bool {
	for _, assoc := range assocs {
		if len(assoc.List) == 0 || assoc.List[0].Kind != syntax.NIdentifier {
			continue
		}
		if paramIndex(params, assoc.List[0].Name) < 0 {
			return false
		}
	}
	return true
}

func paramIndex(params []*sem.Param, name string) int {
	for i, p := range params {
		if common.NamesEqual(p.Name, name) {
			return i
		}
	}
	return -1
}

func findParam(params []*sem.Param, name string) *sem.Param {
	if i := paramIndex(params, name); i >= 0 {
		return params[i]
	}
	return nil
}

// deferTyping reports whether an argument cannot be typed without a context
func deferTyping(n *syntax.Node) bool {
	return n != nil && (n.Kind == syntax.NAggregate || n.Kind == syntax.NNullLit)
}

// isVariable reports whether an expression denotes an assignable object
func isVariable(n *syntax.Node) bool {
	switch n.Kind {
	case syntax.NIdentifier:
		sym := n.Sym
		if sym == nil {
			return true // unresolved; avoid cascading errors
		}
		return sym.Kind == sem.SymVariable ||
			sym.Kind == sem.SymParam ||
			sym.Kind == sem.SymComponent ||
			sym.Kind == sem.SymDiscriminant
	case syntax.NSelected:
		// a package-qualified object resolved to its own symbol; judge that,
		// not the package prefix
		if sym := n.Sym; sym != nil {
			return sym.Kind == sem.SymVariable ||
				sym.Kind == sem.SymParam ||
				sym.Kind == sem.SymComponent ||
				sym.Kind == sem.SymDiscriminant
		}
		return isVariable(n.Left)
	case syntax.NApply, syntax.NDeref:
		return isVariable(n.Left)
	}
	return false
}

// baseName strips postfix layers down to the root name
func baseName(n *syntax.Node) *syntax.Node {
	for {
		switch n.Kind {
		case syntax.NSelected, syntax.NApply, syntax.NAttribute, syntax.NDeref:
			n = n.Left
		default:
			return n
		}
	}
}

func callName(prefix *syntax.Node) string {
	return nodeText(prefix)
}
