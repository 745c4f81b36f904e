package sem

// Manager owns the scope stack of one compilation.  The resolver pushes a
// scope on every package, subprogram, and block entry and pops it on exit;
// lookup walks the stack from the top outward.
type Manager struct {
	// Library is the root scope holding library units and the predefined
	// environment
	Library *Scope

	// Top is the currently open scope
	Top *Scope

	nextID int
}

// NewManager creates a manager with an empty library scope
func NewManager() *Manager {
	lib := NewScope(nil, nil)
	return &Manager{Library: lib, Top: lib}
}

// Push opens a new scope owned by the given symbol and makes it current
func (m *Manager) Push(owner *Symbol) *Scope {
	s := NewScope(m.Top, owner)
	if owner != nil {
		owner.InnerScope = s
	}
	m.Top = s
	return s
}

// PushExisting re-enters a scope built earlier (a package body re-entering
// its spec's scope)
func (m *Manager) PushExisting(s *Scope) {
	m.Top = s
}

// Pop closes the current scope
func (m *Manager) Pop() {
	if m.Top.Parent == nil {
		// popping the library scope is an invariant violation; leave the
		// stack alone so the caller's diagnostics still work
		return
	}
	m.Top = m.Top.Parent
}

// Define inserts a symbol into the current scope: assigns its monotonic
// unique id, records its defining scope and nesting level, threads overload
// chains, and hands variables and parameters a frame offset.
func (m *Manager) Define(sym *Symbol) *Symbol {
	m.nextID++
	sym.UniqueID = m.nextID
	sym.DefScope = m.Top
	sym.NestingLevel = m.Top.Level
	if sym.Visibility == VisHidden {
		sym.Visibility = VisImmediate
	}

	if sym.Kind == SymVariable || sym.Kind == SymConstant || sym.Kind == SymParam {
		size := 8
		if sym.Type != nil && sym.Type.Size > 0 {
			size = sym.Type.Size
		}
		// keep every slot 8-aligned; the frame is a raw byte buffer
		frame := m.frameScope()
		sym.FrameOffset = (frame.FrameSize + 7) &^ 7
		frame.FrameSize = sym.FrameOffset + size
	}

	m.Top.insert(sym)
	return sym
}

// frameScope is the scope whose frame holds newly declared slots.  Blocks,
// loops, and local packages share the enclosing subprogram's frame so their
// offsets never collide with its locals.
func (m *Manager) frameScope() *Scope {
	for s := m.Top; s != nil; s = s.Parent {
		if s.Owner != nil && s.Owner.IsSubprogram() {
			return s
		}
	}
	return m.Top
}

// Lookup finds the nearest visible symbol with the given name, walking the
// scope stack outward.  Use-visible symbols are consulted only after direct
// lookup fails everywhere.
func (m *Manager) Lookup(name string) *Symbol {
	for s := m.Top; s != nil; s = s.Parent {
		if sym := s.Find(name); sym != nil {
			return sym
		}
	}

	for s := m.Top; s != nil; s = s.Parent {
		if sym := s.findUseVisible(name); sym != nil {
			return sym
		}
	}

	return nil
}

// LookupAll collects every candidate for an overloadable name visible from
// the current scope: the overload chains of each scope's homonym, outermost
// last, plus use-visible exports
func (m *Manager) LookupAll(name string) []*Symbol {
	var candidates []*Symbol

	for s := m.Top; s != nil; s = s.Parent {
		if sym := s.Find(name); sym != nil {
			candidates = append(candidates, sym.Overloads()...)

			// a non-subprogram homonym hides everything beyond it
			if !sym.IsSubprogram() {
				return candidates
			}
		}
	}

	for s := m.Top; s != nil; s = s.Parent {
		if sym := s.findUseVisible(name); sym != nil {
			candidates = append(candidates, sym.Overloads()...)
		}
	}

	return candidates
}

// ScopeDistance reports how many scopes out from the current one the symbol
// was declared; used as an overload tie-break
func (m *Manager) ScopeDistance(sym *Symbol) int {
	d := 0
	for s := m.Top; s != nil; s = s.Parent {
		if s == sym.DefScope {
			return d
		}
		d++
	}
	return d
}

// SuppressedChecks folds the scope-level Suppress masks visible from the
// current scope with a symbol's own mask
func (m *Manager) SuppressedChecks(sym *Symbol) uint32 {
	mask := uint32(0)
	if sym != nil {
		mask = sym.SuppressedChecks
		if sym.Type != nil {
			mask |= sym.Type.SuppressedChecks
		}
	}
	for s := m.Top; s != nil; s = s.Parent {
		mask |= s.SuppressedChecks
	}
	return mask
}
