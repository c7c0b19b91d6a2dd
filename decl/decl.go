// Package decl is the tagged-variant constant model: the eight declaration
// kinds of the language, their anon/meta projections, and the canonical
// encodings those projections hash into.
//
// A constant references its sub-terms strictly by expression identifier, so
// it must be built after its expressions are stored. The store derives a
// constant's ConstID by hashing both projections; that pair is the only
// identity a constant ever has.
package decl

import "xdao.co/cadl/cidutil"

// DefSafety classifies a definition's unfolding behavior.
type DefSafety uint8

const (
	DefUnsafe DefSafety = iota
	DefSafe
	DefPartial
)

// QuotKind distinguishes the four quotient primitives.
type QuotKind uint8

const (
	QuotType QuotKind = iota
	QuotCtor
	QuotLift
	QuotInd
)

// Const is one declaration.
type Const interface{ isConst() }

// Axiom: unsafe? axiom <name> {lvl*} : <typ>
type Axiom struct {
	Name   string
	Levels []string
	Type   cidutil.ExprID
	Safe   bool
}

// Theorem: theorem <name> {lvl*} : <typ> := <body>
type Theorem struct {
	Name   string
	Levels []string
	Type   cidutil.ExprID
	Body   cidutil.ExprID
}

// Opaque: unsafe? opaque <name> {lvl*} : <typ> := <body>
type Opaque struct {
	Name   string
	Levels []string
	Type   cidutil.ExprID
	Body   cidutil.ExprID
	Safe   bool
}

// Definition: unsafe? def <name> {lvl*} : <typ> := <body>
type Definition struct {
	Name   string
	Levels []string
	Type   cidutil.ExprID
	Body   cidutil.ExprID
	Safety DefSafety
}

// CtorRef is one constructor entry of an inductive declaration.
type CtorRef struct {
	Name string
	Type cidutil.ExprID
}

// Inductive declares an inductive type with its constructors.
//
// Reflexive and Nested are carried as opaque structural flags; no behavior
// is attached to them here.
type Inductive struct {
	Name      string
	Levels    []string
	Type      cidutil.ExprID
	Params    int
	Indices   int
	Ctors     []CtorRef
	Recursive bool
	Safe      bool
	Reflexive bool
	Nested    bool
}

// Constructor declares one constructor of an inductive type.
// Params and Fields are argument counts, not positions.
type Constructor struct {
	Name   string
	Levels []string
	Ind    cidutil.ConstID
	Type   cidutil.ExprID
	Params int
	Fields int
	Safe   bool
}

// Rule is one recursor reduction rule: when the major premise is headed by
// Ctor, take Fields constructor arguments and evaluate RHS.
type Rule struct {
	Ctor   cidutil.ConstID
	Fields int
	RHS    cidutil.ExprID
}

// Recursor is the eliminator of an inductive type, one Rule per constructor.
type Recursor struct {
	Levels  []string
	Ind     cidutil.ConstID
	Type    cidutil.ExprID
	Params  int
	Indices int
	Motives int
	Minors  int
	Rules   []Rule
	UsesK   bool
	Safe    bool
}

// Quotient is one of the four built-in quotient primitives.
type Quotient struct{ Kind QuotKind }

func (*Axiom) isConst()       {}
func (*Theorem) isConst()     {}
func (*Opaque) isConst()      {}
func (*Definition) isConst()  {}
func (*Inductive) isConst()   {}
func (*Constructor) isConst() {}
func (*Recursor) isConst()    {}
func (*Quotient) isConst()    {}

// NameOf returns the display name of a constant, if it has one.
func NameOf(c Const) string {
	switch v := c.(type) {
	case *Axiom:
		return v.Name
	case *Theorem:
		return v.Name
	case *Opaque:
		return v.Name
	case *Definition:
		return v.Name
	case *Inductive:
		return v.Name
	case *Constructor:
		return v.Name
	}
	return ""
}
