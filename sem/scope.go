package sem

import (
	"adac/common"
)

// Scope is one name-lookup region.  Scopes form a tree rooted at the library
// scope; lookup walks from the innermost scope outward.
type Scope struct {
	// buckets maps the folded FNV-1a hash of a name to its entries.  Homonyms
	// land in the same entry list; subprogram homonyms additionally thread
	// their overload chain.
	buckets map[uint32][]*Symbol

	// Parent is the enclosing scope, nil at the library level
	Parent *Scope

	// Owner is the symbol whose declarative region this scope is
	Owner *Symbol

	// Level is the static nesting level, 0 at the library level
	Level int

	// Symbols lists every symbol in declaration order
	Symbols []*Symbol

	// FrameSize is the running byte size of the subprogram frame allocated
	// for variables and parameters declared here
	FrameSize int

	// SuppressedChecks accumulates scope-level pragma Suppress bitmasks
	SuppressedChecks uint32

	// useVisible lists package symbols promoted by use clauses in this scope
	useVisible []*Symbol
}

// NewScope creates a scope under a parent (nil for the library scope)
func NewScope(parent *Scope, owner *Symbol) *Scope {
	level := 0
	if parent != nil {
		level = parent.Level + 1
	}

	return &Scope{
		buckets: make(map[uint32][]*Symbol),
		Parent:  parent,
		Owner:   owner,
		Level:   level,
	}
}

// Find returns the first visible symbol with the given name declared directly
// in this scope
func (s *Scope) Find(name string) *Symbol {
	for _, sym := range s.buckets[common.HashName(name)] {
		if sym.Visibility >= VisImmediate && common.NamesEqual(sym.Name, name) {
			return sym
		}
	}
	return nil
}

// insert links a symbol into its bucket.  When a homonym already exists and
// both are subprograms, the new symbol joins the homonym's overload chain;
// otherwise the new symbol shadows the old (the caller detects illegal
// redefinitions before inserting).
func (s *Scope) insert(sym *Symbol) {
	h := common.HashName(sym.Name)

	for _, prev := range s.buckets[h] {
		if common.NamesEqual(prev.Name, sym.Name) && prev.IsSubprogram() && sym.IsSubprogram() {
			cur := prev
			for cur.NextOverload != nil {
				cur = cur.NextOverload
			}
			cur.NextOverload = sym
			s.Symbols = append(s.Symbols, sym)
			return
		}
	}

	// newest first so shadowing falls out of Find's scan order
	s.buckets[h] = append([]*Symbol{sym}, s.buckets[h]...)
	s.Symbols = append(s.Symbols, sym)
}

// AddUse promotes a package's exports to use-visible within this scope
func (s *Scope) AddUse(pkg *Symbol) {
	for _, existing := range s.useVisible {
		if existing == pkg {
			return
		}
	}
	s.useVisible = append(s.useVisible, pkg)
}

// findUseVisible scans packages used in this scope for an exported symbol.
// Immediately visible symbols always beat use-visible ones, so this is only
// consulted after direct lookup fails at every level.
func (s *Scope) findUseVisible(name string) *Symbol {
	for _, pkg := range s.useVisible {
		for _, exp := range pkg.Exports {
			if common.NamesEqual(exp.Name, name) {
				return exp
			}
		}
	}
	return nil
}
