package sem

import (
	"adac/logging"
	"adac/typing"
)

// Symbol represents a named entity (globally or locally)
type Symbol struct {
	// Name is the name of the symbol as written in source
	Name string

	// Kind is one of the enumerated symbol kinds below
	Kind int

	// Pos is the text position where this symbol is defined
	Pos *logging.TextPosition

	// Type is the data type of the entity; for type and subtype symbols it is
	// the named descriptor itself
	Type *typing.Type

	// DefScope is the scope the symbol was declared in (a bare back-link; the
	// scope's vector is the authoritative membership record)
	DefScope *Scope

	// Visibility is the symbol's current visibility level
	Visibility int

	// Subprogram payload
	Params       []*Param
	ReturnType   *typing.Type // nil for procedures
	NestingLevel int
	HasNested    bool // body declares nested subprograms, so it carries a frame

	// FrameOffset is the byte offset of a variable or parameter within its
	// subprogram frame
	FrameOffset int

	// Package payload
	Exports []*Symbol

	// NextOverload threads homonym subprogram symbols declared in the same
	// scope into a chain
	NextOverload *Symbol

	// Parent is the enclosing package or subprogram symbol, used by name
	// mangling and static-chain construction
	Parent *Symbol

	// Body is the syntax body of a subprogram or package (*syntax.Node),
	// stashed for deferred emission of nested bodies.  Constants reuse the
	// slot for their initializer so static expressions can fold on demand.
	Body interface{}

	// InnerScope is the scope a subprogram or package owns
	InnerScope *Scope

	// Code-generation bookkeeping
	UniqueID         int
	ExternalName     string // pragma Import/Export external name
	Convention       string
	IsInline         bool
	IsImported       bool
	IsExported       bool
	IsUnreferenced   bool
	SuppressedChecks uint32

	// Generic instantiation state
	Template *Symbol
	Actuals  map[string]interface{} // formal name -> actual (*syntax.Node)
	Expanded interface{}            // expanded body AST (*syntax.Node)
}

// Param is one entry of a subprogram's parameter vector
type Param struct {
	Name string
	Type *typing.Type
	Mode int

	// Default is the default expression (*syntax.Node), nil if none
	Default interface{}

	// Sym is the parameter symbol inside the subprogram's scope, linked once
	// the body opens
	Sym *Symbol
}

// Enumeration of parameter modes
const (
	ParamIn = iota
	ParamOut
	ParamInOut
)

// Enumeration of symbol kinds
const (
	SymVariable = iota
	SymConstant
	SymType
	SymSubtype
	SymProcedure
	SymFunction
	SymParam
	SymPackage
	SymException
	SymLabel
	SymLoop
	SymEntry
	SymComponent
	SymDiscriminant
	SymLiteral
	SymGeneric
	SymGenericInstance
)

// Enumeration of visibility levels, monotonically increasing.  Lookup skips
// anything below immediately visible.
const (
	VisHidden = iota
	VisImmediate
	VisUse
	VisDirect
)

// IsSubprogram reports whether the symbol can carry an overload chain
func (s *Symbol) IsSubprogram() bool {
	return s.Kind == SymProcedure || s.Kind == SymFunction || s.Kind == SymEntry
}

// IsObject reports whether the symbol denotes a value with storage
func (s *Symbol) IsObject() bool {
	switch s.Kind {
	case SymVariable, SymConstant, SymParam, SymComponent, SymDiscriminant:
		return true
	}
	return false
}

// Overloads returns the full overload chain rooted at this symbol
func (s *Symbol) Overloads() []*Symbol {
	var chain []*Symbol
	for cur := s; cur != nil; cur = cur.NextOverload {
		chain = append(chain, cur)
	}
	return chain
}
