package generate

import (
	"adac/common"
	"adac/syntax"
	"adac/typing"
	"adac/walk"
)

// Aggregate emission writes component values directly into the target
// buffer.  Array aggregates run three passes: find the others value, write
// the explicit associations, fill the remaining slots.

func (g *Generator) genAggregateInto(addr string, n *syntax.Node) {
	t := n.TypeOf
	if t == nil {
		return
	}
	root := t.Root()

	if root.Kind == typing.KindRecord {
		g.genRecordAggregate(addr, n, root)
		return
	}
	if typing.IsArrayLike(root) {
		g.genArrayAggregate(addr, n, t)
		return
	}

	// a parenthesized scalar reached aggregate position during recovery
	v := g.genExpr(n)
	g.store(v, addr, t)
}

func (g *Generator) genRecordAggregate(addr string, n *syntax.Node, rec *typing.Type) {
	written := make(map[string]bool)
	var others *syntax.Node
	positional := 0

	writeField := func(f *typing.Field, value *syntax.Node) {
		p := g.temp()
		g.emit("%s = getelementptr i8, ptr %s, i64 %d", p, addr, f.Offset)
		if value.Kind == syntax.NAggregate {
			g.genAggregateInto(p, value)
		} else {
			g.store(g.genExpr(value), p, f.Type)
		}
		written[f.Name] = true
	}

	for _, assoc := range n.List {
		value := assocValue(assoc)
		if assoc.Kind != syntax.NAssociation || len(assoc.List) == 0 {
			// positional: components in declaration order
			if positional < len(rec.Fields) {
				writeField(rec.Fields[positional], value)
				positional++
			}
			continue
		}
		for _, choice := range assoc.List {
			if choice.Kind == syntax.NOthers {
				others = value
				continue
			}
			for _, f := range rec.Fields {
				if common.NamesEqual(f.Name, choice.Name) {
					writeField(f, value)
				}
			}
		}
	}

	if others != nil {
		for _, f := range rec.Fields {
			if !written[f.Name] {
				writeField(f, others)
			}
		}
	}
}

func (g *Generator) genArrayAggregate(addr string, n *syntax.Node, t *typing.Type) {
	root := t.Root()
	elem := root.Elem
	stride := elemStride(t)

	lo := int64(0)
	span := int64(0)
	if len(t.Indexes) > 0 {
		if l, h, ok := staticBounds(t.Indexes[0]); ok {
			lo, span = l, h-l+1
		}
	} else if len(root.Indexes) > 0 {
		if l, h, ok := staticBounds(root.Indexes[0]); ok {
			lo, span = l, h-l+1
		}
	}

	writeSlot := func(slot int64, value *syntax.Node) {
		p := g.temp()
		g.emit("%s = getelementptr i8, ptr %s, i64 %d", p, addr, slot*int64(stride))
		if value.Kind == syntax.NAggregate {
			g.genAggregateInto(p, value)
		} else {
			g.store(g.genExpr(value), p, elem)
		}
	}

	// first pass: the others value, if any
	var others *syntax.Node
	for _, assoc := range n.List {
		if assoc.Kind == syntax.NAssociation {
			for _, choice := range assoc.List {
				if choice.Kind == syntax.NOthers {
					others = assoc.Right
				}
			}
		}
	}

	// second pass: positional and named associations
	filled := make(map[int64]bool)
	positional := int64(0)
	for _, assoc := range n.List {
		value := assocValue(assoc)
		if assoc.Kind != syntax.NAssociation || len(assoc.List) == 0 {
			writeSlot(positional, value)
			filled[positional] = true
			positional++
			continue
		}
		for _, choice := range assoc.List {
			switch choice.Kind {
			case syntax.NOthers:
				// handled by the fill pass
			case syntax.NRange:
				cl, okL := staticChoice(choice.Left)
				ch, okH := staticChoice(choice.Right)
				if okL && okH {
					for i := cl; i <= ch; i++ {
						writeSlot(i-lo, value)
						filled[i-lo] = true
					}
				}
			default:
				if cv, ok := staticChoice(choice); ok {
					writeSlot(cv-lo, value)
					filled[cv-lo] = true
				}
			}
		}
	}

	// third pass: fill untouched slots with the others value
	if others != nil {
		for i := int64(0); i < span; i++ {
			if !filled[i] {
				writeSlot(i, others)
			}
		}
	}
}

// staticChoice evaluates an aggregate choice that must be static
func staticChoice(n *syntax.Node) (int64, bool) {
	v, ok := walk.FoldInt(n)
	if !ok || !v.IsInt64() {
		return 0, false
	}
	return v.Int64(), true
}

// genAllocator reserves designated-type storage and initializes it
func (g *Generator) genAllocator(n *syntax.Node) string {
	var designated *typing.Type
	if n.TypeOf != nil && n.TypeOf.Root().Designated != nil {
		designated = n.TypeOf.Root().Designated
	}

	size := 8
	if designated != nil && designated.Size > 0 {
		size = designated.Size
	}

	p := g.temp()
	g.emit("%s = call ptr @__ada_sec_stack_alloc(i64 %d)", p, size)

	if n.Right != nil {
		if n.Right.Kind == syntax.NAggregate {
			g.genAggregateInto(p, n.Right)
		} else {
			g.store(g.genExpr(n.Right), p, designated)
		}
	}
	return p
}
