package generate

import (
	"fmt"

	"adac/common"
	"adac/sem"
	"adac/syntax"
	"adac/typing"
)

// Attribute emission.  Array attributes read the descriptor when the prefix
// is constrained and the fat pointer when it is not; scalar position
// attributes are identity or unit arithmetic on the representation.

func (g *Generator) genAttribute(n *syntax.Node) string {
	name := common.FoldName(n.Name)
	prefix := n.Left

	switch name {
	case "first", "last":
		return g.genBoundAttr(prefix, name == "first")

	case "length":
		if isFat(prefix.TypeOf) {
			return g.fatLength(g.genExpr(prefix))
		}
		t := arrayPrefixType(prefix)
		if t != nil && len(t.Indexes) > 0 {
			if span, ok := t.Indexes[0].Span(); ok {
				return fmt.Sprintf("%d", span)
			}
		}
		return "0"

	case "size":
		if t := prefixTypeDescriptor(prefix); t != nil {
			return fmt.Sprintf("%d", t.Size)
		}
		return "0"

	case "alignment":
		if t := prefixTypeDescriptor(prefix); t != nil {
			return fmt.Sprintf("%d", t.Align)
		}
		return "1"

	case "pos", "val":
		// identity on the integer representation
		if len(n.List) > 0 {
			return g.genExpr(assocValue(n.List[0]))
		}
		return "0"

	case "succ":
		v := g.genExpr(assocValue(n.List[0]))
		return g.binOp("add", v, "1")

	case "pred":
		v := g.genExpr(assocValue(n.List[0]))
		return g.binOp("sub", v, "1")

	case "address":
		addr := g.genAddr(prefix)
		v := g.temp()
		g.emit("%s = ptrtoint ptr %s to i64", v, addr)
		return v

	case "image":
		// the runtime renders into a secondary-stack buffer
		v := g.genExpr(assocValue(n.List[0]))
		buf := g.temp()
		g.emit("%s = call ptr @__ada_sec_stack_alloc(i64 32)", buf)
		g.emit("call void @__ada_image(ptr %s, i64 %s)", buf, v)
		return g.makeFat(buf, "1", "32")

	case "value":
		arg := assocValue(n.List[0])
		fat := g.asFat(arg)
		data := g.fatField(fat, 0)
		v := g.temp()
		g.emit("%s = call i64 @__ada_value(ptr %s)", v, data)
		return v

	case "width":
		if t := prefixTypeDescriptor(prefix); t != nil {
			if lo, hi, ok := staticBounds(t); ok {
				v := g.temp()
				g.emit("%s = call i64 @__ada_width(i64 %d, i64 %d)", v, lo, hi)
				return v
			}
		}
		return "0"
	}

	g.emit("; attribute '%s' unsupported, zero substituted", name)
	return "0"
}

// genBoundAttr produces 'First or 'Last of an array or scalar prefix
func (g *Generator) genBoundAttr(prefix *syntax.Node, first bool) string {
	if isFat(prefix.TypeOf) {
		fat := g.genExpr(prefix)
		if first {
			return g.fatField(fat, 1)
		}
		return g.fatField(fat, 2)
	}

	t := prefixTypeDescriptor(prefix)
	if t == nil {
		return "0"
	}
	if typing.IsArrayLike(t.Root()) && len(t.Root().Indexes) > 0 {
		t = indexDescriptor(t)
	}

	lo, hi, ok := staticBounds(t)
	if !ok {
		g.emit("; dynamic bound unsupported, zero substituted")
		return "0"
	}
	if first {
		return fmt.Sprintf("%d", lo)
	}
	return fmt.Sprintf("%d", hi)
}

// prefixTypeDescriptor resolves the prefix to a type descriptor: the type
// itself for a type mark, the object's subtype otherwise
func prefixTypeDescriptor(prefix *syntax.Node) *typing.Type {
	if prefix.Sym != nil && prefix.Sym.Type != nil &&
		(prefix.Sym.Kind == sem.SymType || prefix.Sym.Kind == sem.SymSubtype) {
		return prefix.Sym.Type
	}
	return prefix.TypeOf
}

func arrayPrefixType(prefix *syntax.Node) *typing.Type {
	t := prefixTypeDescriptor(prefix)
	if t == nil {
		return nil
	}
	return t.Root()
}

func indexDescriptor(t *typing.Type) *typing.Type {
	r := t
	if len(t.Indexes) > 0 {
		return t.Indexes[0]
	}
	if len(r.Root().Indexes) > 0 {
		return r.Root().Indexes[0]
	}
	return t
}
