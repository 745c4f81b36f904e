package syntax

import (
	"adac/logging"
	"adac/sem"
	"adac/typing"
)

// Node is the single tagged syntax-tree record.  Kind selects which payload
// fields are meaningful; the annotation fields start nil and are filled in by
// the resolver.
type Node struct {
	Kind int
	Pos  *logging.TextPosition

	// TypeOf is the resolved type of the construct; nil before resolution
	TypeOf *typing.Type

	// Sym is the resolved symbol of the construct; nil before resolution
	Sym *sem.Symbol

	// Name carries identifier spellings: the name of a declaration, the
	// selector of a selected component, the attribute designator, loop and
	// end-name labels
	Name string

	// Tok is the originating token for literal and operator nodes
	Tok *Token

	// Left and Right are the generic operand slots; the comment on each node
	// kind documents their use
	Left  *Node
	Right *Node

	// Names holds identifier-list nodes for declarations naming several
	// entities at once
	Names []*Node

	// List is the generic child vector: statements, associations, choices,
	// context items, parameter specifications
	List []*Node

	// Decls holds the declarative part of bodies and blocks
	Decls []*Node

	// Handlers holds the exception handlers of bodies and blocks
	Handlers []*Node

	// Mode carries small enumerations: parameter modes, unit kinds
	Mode int

	// Flag carries single payload bits: constant, reverse, limited,
	// unconstrained, negated membership
	Flag bool
}

// Enumeration of node kinds
const (
	// expressions and primaries
	NIntLit     = iota // Tok
	NRealLit           // Tok
	NCharLit           // Tok
	NStringLit         // Tok
	NNullLit           // the literal `null`
	NIdentifier        // Name
	NSelected          // Left.Name
	NAttribute         // Left'Name(List...)
	NApply             // Left(List...) -- call, index, slice, or conversion
	NDeref             // Left.all
	NQualified         // Left'(Right)
	NAllocator         // new Left or new Left'(Right)
	NAggregate         // (List...) where List is associations
	NAssociation       // List(choices) => Right; positional when List empty
	NOthers            // the `others` choice
	NRange             // Left .. Right
	NBinary            // Left Tok Right
	NShortCircuit      // Left and-then/or-else Right; Mode is AND or OR
	NUnary             // Tok Left
	NMembership        // Left in Right; Flag = negated

	// type definitions and indications
	NSubtypeInd    // Left = type mark, Right = optional constraint
	NRangeCons     // range Left
	NIndexCons     // (List...) index or discriminant constraints
	NDigitsCons    // digits Left [range Right]
	NDeltaCons     // delta Left [range Right]
	NEnumDef       // List = literal identifiers / character literals
	NIntDef        // range Left
	NModDef        // mod Left
	NFloatDef      // digits Left [Right = range]
	NFixedDef      // delta Left [Right = range]
	NArrayDef      // array (List) of Right; Flag = unconstrained (box bounds)
	NIndexSpec     // Left = mark or range; Flag = box form (`range <>`)
	NRecordDef     // List = components, Right = optional variant part
	NComponentDecl // Names : Left [:= Right]
	NVariantPart   // case Name is List of NVariant
	NVariant       // when List(choices) => Decls components
	NAccessDef     // access Left
	NDerivedDef    // new Left
	NPrivateDef    // private; Flag = limited
	NIncompleteDef // forward type declaration

	// statements
	NNullStmt
	NAssign      // Left := Right
	NIfStmt      // List of NIfBranch
	NIfBranch    // Left = condition (nil for else), List = statements
	NCaseStmt    // case Left is List of NCaseAlt
	NCaseAlt     // when List(choices) => Decls(statements)
	NLoopStmt    // Name label, Left = scheme, List = body
	NForScheme   // for Name in [reverse] Left
	NWhileScheme // while Left
	NBlockStmt   // declare Decls begin List exception Handlers
	NExitStmt    // exit [Name] [when Left]
	NReturnStmt  // return [Left]
	NGotoStmt    // goto Name
	NRaiseStmt   // raise [Left]
	NDelayStmt   // delay Left
	NAbortStmt   // abort List
	NProcCall    // Left = name or apply used as a statement
	NLabeled     // <<Name>> Left
	NAcceptStmt  // accept Name [(Left)] params List do Decls
	NSelectStmt  // select alternatives; accepted, not compiled
	NCodeStmt    // machine-code insertion; accepted, not compiled

	// declarations
	NObjectDecl    // Names : [constant] Left [:= Right]; Flag = constant
	NNumberDecl    // Names : constant := Right (named number)
	NTypeDecl      // type Name [discriminants List] is Left
	NSubtypeDecl   // subtype Name is Left
	NSubpSpec      // Name(List params) [return Right]; Flag = function
	NSubpDecl      // Left = spec
	NSubpBody      // Left = spec, Decls, List = stmts, Handlers
	NParamSpec     // Names : Mode Left [:= Right]
	NPackageDecl   // package Name is List [private Decls]
	NPackageBody   // package body Name is Decls begin List Handlers
	NPrivatePart   // marker wrapping private declarations
	NUseClause     // use List
	NWithClause    // with List
	NPragmaNode    // pragma Name(List...)
	NExceptionDecl // Names : exception
	NRenamesDecl   // Name : [Right] renames Left; exceptions have Right nil
	NGenericDecl   // generic List(formals) Left(unit decl)
	NGenericFormal // formal object/type/subprogram; Mode distinguishes
	NInstanceDecl  // Name is new Left(List actuals); Mode = unit kind
	NTaskDecl      // task [type] Name is List entries; Flag = type
	NTaskBody      // task body Name is Decls begin List
	NEntryDecl     // entry Name(List params)
	NSeparateStub  // Left is separate
	NSeparateBody  // separate (Left) Right
	NRepClause     // for Left use Right; representation clauses

	// compilation structure
	NCompilationUnit // List = context clauses, Left = library unit
)

// Enumeration of parameter modes
const (
	ModeIn = iota
	ModeOut
	ModeInOut
)

// NewNode creates a node of a given kind at a position
func NewNode(kind int, pos *logging.TextPosition) *Node {
	return &Node{Kind: kind, Pos: pos}
}

// Append grows the node's generic child vector
func (n *Node) Append(children ...*Node) {
	n.List = append(n.List, children...)
}

// IsNameExpr reports whether the node is one of the prefix forms a postfix
// parse can extend: identifier, selected component, attribute, apply, deref
func (n *Node) IsNameExpr() bool {
	switch n.Kind {
	case NIdentifier, NSelected, NAttribute, NApply, NDeref:
		return true
	}
	return false
}
