// Package ast is the abstract syntax tree of Borf,
// and the parser that builds it.
package ast

import "github.com/eaburns/borf/loc"

// A Node is a node of the AST with optional location information.
type Node interface {
	// Loc returns the source location of the Node, or nil if unknown.
	Loc() *loc.Loc
}

type location struct {
	loc *loc.Loc
}

func (n location) Loc() *loc.Loc { return n.loc }

// A Module is a named set of declarations.
type Module struct {
	location
	Name string

	// Types, Ops, and Funs are the declared names,
	// in the order that they were first declared.
	Types []string
	Ops   []string
	Funs  []string

	Decls []Decl
}

// A Decl is a module-level declaration.
type Decl interface {
	Node
	// DeclName returns the declared name;
	// for a Dependency it is the import path.
	DeclName() string
	isDecl()
}

// A TypeDecl declares a named type.
type TypeDecl struct {
	location
	Name string
	Type TypeExpr
}

// An OpDecl declares an operation signature.
type OpDecl struct {
	location
	Name string
	Type TypeExpr
}

// A FnDecl defines a function.
type FnDecl struct {
	location
	Name string
	Sig  TypeExpr
	Body Expr
}

// A DepDecl declares a dependency on another module.
type DepDecl struct {
	location
	Import string
	Export string
	// Direct is whether the dependency was declared with =>.
	Direct bool
}

// An EntityDecl declares a named value.
type EntityDecl struct {
	location
	Name string
	Type TypeExpr
	// Init is the initializer, or nil.
	Init Expr
}

func (d *TypeDecl) DeclName() string   { return d.Name }
func (d *OpDecl) DeclName() string     { return d.Name }
func (d *FnDecl) DeclName() string     { return d.Name }
func (d *DepDecl) DeclName() string    { return d.Import }
func (d *EntityDecl) DeclName() string { return d.Name }

func (*TypeDecl) isDecl()   {}
func (*OpDecl) isDecl()     {}
func (*FnDecl) isDecl()     {}
func (*DepDecl) isDecl()    {}
func (*EntityDecl) isDecl() {}

// A TypeExpr is a type expression.
// Type expressions are descriptive; they are never evaluated.
type TypeExpr interface {
	Node
	isTypeExpr()
}

// A TypeName is a named type.
type TypeName struct {
	location
	Name string
}

// A TypeVar is a type variable.
type TypeVar struct {
	location
	Name string
}

// A FuncType is a function type: From -> To.
type FuncType struct {
	location
	From, To TypeExpr
}

// A LinearFuncType is a linear function type: From -o To.
type LinearFuncType struct {
	location
	From, To TypeExpr
}

// A ProductType is L * R.
type ProductType struct {
	location
	L, R TypeExpr
}

// A SumType is L + R.
type SumType struct {
	location
	L, R TypeExpr
}

// A MapType is {Key: Val}.
type MapType struct {
	location
	Key, Val TypeExpr
}

// A ListType is [Elem].
type ListType struct {
	location
	Elem TypeExpr
}

// A SetType is {Elem}.
type SetType struct {
	location
	Elem TypeExpr
}

// An OptionType is ?Elem.
type OptionType struct {
	location
	Elem TypeExpr
}

// A LinearType is !Elem.
type LinearType struct {
	location
	Elem TypeExpr
}

// A SeqType is Elem...
type SeqType struct {
	location
	Elem TypeExpr
}

// AnyType is the universal type.
type AnyType struct{ location }

// VoidType is the empty type.
type VoidType struct{ location }

func (*TypeName) isTypeExpr()       {}
func (*TypeVar) isTypeExpr()        {}
func (*FuncType) isTypeExpr()       {}
func (*LinearFuncType) isTypeExpr() {}
func (*ProductType) isTypeExpr()    {}
func (*SumType) isTypeExpr()        {}
func (*MapType) isTypeExpr()        {}
func (*ListType) isTypeExpr()       {}
func (*SetType) isTypeExpr()        {}
func (*OptionType) isTypeExpr()     {}
func (*LinearType) isTypeExpr()     {}
func (*SeqType) isTypeExpr()        {}
func (*AnyType) isTypeExpr()        {}
func (*VoidType) isTypeExpr()       {}

// An Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

// A Lit is a literal expression.
// Lits are also literal patterns.
type Lit interface {
	Expr
	isLit()
}

// An Int is an integer literal.
type Int struct {
	location
	Val int64
}

// A Float is a floating point literal.
type Float struct {
	location
	Val float64
}

// A String is a string literal.
type String struct {
	location
	// Data is the string with quotes removed and escapes interpreted.
	Data string
}

// A Bool is a boolean literal.
type Bool struct {
	location
	Val bool
}

// A Var is a variable reference.
type Var struct {
	location
	Name string
}

// A QualName is a dotted name: a.b.c.
type QualName struct {
	location
	Parts []string
}

// A Lambda is a function literal.
type Lambda struct {
	location
	Parms []Pattern
	Body  Expr
}

// An Apply is a function application.
type Apply struct {
	location
	Fun  Expr
	Args []Expr
}

// A Let binds a pattern to a value in the scope of a body.
type Let struct {
	location
	Pattern Pattern
	Val     Expr
	// Body is nil for a let with no in clause;
	// such a let binds in the enclosing scope.
	Body Expr
}

// An If is a conditional.
type If struct {
	location
	Cond, Then, Else Expr
}

// A Binary is an infix operator expression.
type Binary struct {
	location
	Op          Op
	Left, Right Expr
}

// A Unary is a prefix operator expression.
type Unary struct {
	location
	Op      Op
	Operand Expr
}

// A List is a list literal.
type List struct {
	location
	Elems []Expr
}

// A Set is a set literal.
type Set struct {
	location
	Elems []Expr
}

// A Map is a map literal with string keys.
type Map struct {
	location
	Entries []MapEntry
}

// A MapEntry is a single key: value pair of a Map.
type MapEntry struct {
	Key string
	Val Expr
}

// A Quote is 'Expr.
type Quote struct {
	location
	Expr Expr
}

// An Unquote is ~Expr.
type Unquote struct {
	location
	Expr Expr
}

// An UnquoteSplice is ~@Expr.
type UnquoteSplice struct {
	location
	Expr Expr
}

// A Quasiquote is `Expr.
type Quasiquote struct {
	location
	Expr Expr
}

// A Placeholder stands in for a malformed expression
// when the parser recovers from an error.
// It is never produced by a successful parse.
type Placeholder struct{ location }

// PlaceholderName is the name of a Placeholder.
const PlaceholderName = "_error_"

func (*Int) isExpr()           {}
func (*Float) isExpr()         {}
func (*String) isExpr()        {}
func (*Bool) isExpr()          {}
func (*Var) isExpr()           {}
func (*QualName) isExpr()      {}
func (*Lambda) isExpr()        {}
func (*Apply) isExpr()         {}
func (*Let) isExpr()           {}
func (*If) isExpr()            {}
func (*Binary) isExpr()        {}
func (*Unary) isExpr()         {}
func (*List) isExpr()          {}
func (*Set) isExpr()           {}
func (*Map) isExpr()           {}
func (*Quote) isExpr()         {}
func (*Unquote) isExpr()       {}
func (*UnquoteSplice) isExpr() {}
func (*Quasiquote) isExpr()    {}
func (*Placeholder) isExpr()   {}

func (*Int) isLit()    {}
func (*Float) isLit()  {}
func (*String) isLit() {}
func (*Bool) isLit()   {}

// A Pattern is a destructuring pattern
// of a let binding or a lambda parameter.
type Pattern interface {
	Node
	isPattern()
}

// A VarPat binds a value to a name.
type VarPat struct {
	location
	Name string
}

// A LitPat matches a value equal to a literal.
type LitPat struct {
	location
	Lit Lit
}

// A WildPat matches anything and binds nothing.
type WildPat struct{ location }

// A ListPat matches a list of the same length.
type ListPat struct {
	location
	Elems []Pattern
}

// A SetPat matches a set of the same size.
type SetPat struct {
	location
	Elems []Pattern
}

// A MapPat matches a map with the same number of entries.
type MapPat struct {
	location
	Entries []MapPatEntry
}

// A MapPatEntry is a single key: pattern pair of a MapPat.
type MapPatEntry struct {
	Key     string
	Pattern Pattern
}

// An AnnotPat is a pattern with a type annotation.
type AnnotPat struct {
	location
	Pattern Pattern
	Type    TypeExpr
}

func (*VarPat) isPattern()   {}
func (*LitPat) isPattern()   {}
func (*WildPat) isPattern()  {}
func (*ListPat) isPattern()  {}
func (*SetPat) isPattern()   {}
func (*MapPat) isPattern()   {}
func (*AnnotPat) isPattern() {}
