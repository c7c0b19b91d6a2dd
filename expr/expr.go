// Package expr is the de Bruijn-indexed term representation consumed by the
// evaluator and projected into content-addressed payloads by the store.
//
// Terms are pure data. Var indices are assumed well-scoped: validity is
// established by the elaborator that produced the tree, not reverified here.
// Binder names and binder info are display data; reduction ignores both.
package expr

import (
	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/univ"
)

// BinderInfo tags a Lam/Pi parameter. Irrelevant to reduction; carried only
// for faithful read-back and rendering.
type BinderInfo uint8

const (
	BinderDefault BinderInfo = iota
	BinderImplicit
	BinderStrictImplicit
	BinderInstImplicit
)

// LitKind discriminates literal families.
type LitKind uint8

const (
	LitNat LitKind = iota
	LitStr
)

// Literal is a primitive literal value.
type Literal struct {
	Kind LitKind
	Nat  uint64
	Str  string
}

func (l Literal) form() []any {
	if l.Kind == LitNat {
		// Naturals encode as decimal strings so the canonical JSON form
		// stays exact beyond 2^53.
		return []any{0, natString(l.Nat)}
	}
	return []any{1, l.Str}
}

// Expr is a term node.
type Expr interface{ isExpr() }

// Var is a bound variable, counted from the innermost binder.
type Var struct{ Idx int }

// Sort is a universe.
type Sort struct{ Level univ.Level }

// Const references a stored constant with its level instantiation.
type Const struct {
	Ref    cidutil.ConstID
	Levels []univ.Level
}

// App is function application.
type App struct{ Fn, Arg Expr }

// Lam is a lambda abstraction. Name is display-only.
type Lam struct {
	Name string
	Info BinderInfo
	Type Expr
	Body Expr
}

// Pi is a dependent function type.
type Pi struct {
	Name string
	Info BinderInfo
	Dom  Expr
	Cod  Expr
}

// Let binds a definition in a body.
type Let struct {
	Name  string
	Type  Expr
	Value Expr
	Body  Expr
}

// Lit is a literal value.
type Lit struct{ Value Literal }

// LitType is the type of a literal family.
type LitType struct{ Kind LitKind }

// Fix is the self-referential binder enabling general recursion. It is an
// intentional escape from structural-recursion guarantees; the evaluator
// does not check termination.
type Fix struct{ Body Expr }

// Proj is reserved. Storing or evaluating one fails with an explicit
// unimplemented error.
type Proj struct {
	Idx int
	Of  Expr
}

func (*Var) isExpr()     {}
func (*Sort) isExpr()    {}
func (*Const) isExpr()   {}
func (*App) isExpr()     {}
func (*Lam) isExpr()     {}
func (*Pi) isExpr()      {}
func (*Let) isExpr()     {}
func (*Lit) isExpr()     {}
func (*LitType) isExpr() {}
func (*Fix) isExpr()     {}
func (*Proj) isExpr()    {}

// Equal reports structural equality of two terms, ignoring binder names.
// Binder type annotations are compared; callers comparing read-back results
// rely on read-back filling them consistently on both sides.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Idx == y.Idx
	case *Sort:
		y, ok := b.(*Sort)
		return ok && univ.Equal(x.Level, y.Level)
	case *Const:
		y, ok := b.(*Const)
		if !ok || x.Ref != y.Ref || len(x.Levels) != len(y.Levels) {
			return false
		}
		for i := range x.Levels {
			if !univ.Equal(x.Levels[i], y.Levels[i]) {
				return false
			}
		}
		return true
	case *App:
		y, ok := b.(*App)
		return ok && Equal(x.Fn, y.Fn) && Equal(x.Arg, y.Arg)
	case *Lam:
		y, ok := b.(*Lam)
		return ok && x.Info == y.Info && Equal(x.Type, y.Type) && Equal(x.Body, y.Body)
	case *Pi:
		y, ok := b.(*Pi)
		return ok && x.Info == y.Info && Equal(x.Dom, y.Dom) && Equal(x.Cod, y.Cod)
	case *Let:
		y, ok := b.(*Let)
		return ok && Equal(x.Type, y.Type) && Equal(x.Value, y.Value) && Equal(x.Body, y.Body)
	case *Lit:
		y, ok := b.(*Lit)
		return ok && x.Value == y.Value
	case *LitType:
		y, ok := b.(*LitType)
		return ok && x.Kind == y.Kind
	case *Fix:
		y, ok := b.(*Fix)
		return ok && Equal(x.Body, y.Body)
	case *Proj:
		y, ok := b.(*Proj)
		return ok && x.Idx == y.Idx && Equal(x.Of, y.Of)
	}
	return false
}

func natString(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
