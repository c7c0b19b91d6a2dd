package eval

import (
	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/expr"
	"xdao.co/cadl/univ"
)

// Env is the evaluation environment: one thunk per variable in scope
// (Vars[0] is the innermost binder) and the universe substitution for the
// enclosing declaration's level parameters.
//
// Environments are persistent values: push returns an extended copy, so all
// closures captured at a given evaluation point share thunks by reference.
type Env struct {
	Vars  []*Thunk
	Univs []univ.Level
}

// push returns env extended with t as the new innermost binding.
func (e Env) push(t *Thunk) Env {
	vars := make([]*Thunk, 0, len(e.Vars)+1)
	vars = append(vars, t)
	vars = append(vars, e.Vars...)
	return Env{Vars: vars, Univs: e.Univs}
}

// Thunk is a memoization cell with exactly two states: suspended
// (expression plus captured environment) or resolved (cached value).
// The transition is one-directional and happens at most once.
type Thunk struct {
	val  Value
	expr expr.Expr
	env  Env
}

// Suspend produces a suspended thunk. No evaluation is performed.
func Suspend(e expr.Expr, env Env) *Thunk {
	return &Thunk{expr: e, env: env}
}

// Resolved produces an already-resolved thunk holding v.
func Resolved(v Value) *Thunk {
	return &Thunk{val: v}
}

// Value is a term in weak-head normal form: the outermost constructor is
// exposed, sub-terms stay suspended.
type Value interface{ isValue() }

// VSort holds a fully reduced level: by construction the universe
// substitution has been applied and normalized before a VSort is built.
type VSort struct{ Level univ.Level }

// VLam is a function closure. The declared domain type is dropped on
// evaluation and recovered only approximately on read-back.
type VLam struct {
	Info expr.BinderInfo
	Body expr.Expr
	Env  Env
}

// VPi is a dependent function type with its domain suspended.
type VPi struct {
	Info expr.BinderInfo
	Dom  *Thunk
	Cod  expr.Expr
	Env  Env
}

// VApp is a neutral application: a head that cannot reduce plus its
// argument spine. Args[0] is the most recently applied argument.
type VApp struct {
	Head Neutral
	Args []*Thunk
}

// VLit is a literal value.
type VLit struct{ Value expr.Literal }

// VLitType is the type of a literal family.
type VLitType struct{ Kind expr.LitKind }

func (*VSort) isValue()    {}
func (*VLam) isValue()     {}
func (*VPi) isValue()      {}
func (*VApp) isValue()     {}
func (*VLit) isValue()     {}
func (*VLitType) isValue() {}

// Neutral is a stuck application head.
type Neutral interface{ isNeutral() }

// FreeVar is a synthetic free variable, introduced only during read-back.
type FreeVar struct{ Idx int }

// ConstHead is a constant that does not (or cannot yet) reduce.
type ConstHead struct {
	Ref    cidutil.ConstID
	Levels []univ.Level
}

func (*FreeVar) isNeutral()   {}
func (*ConstHead) isNeutral() {}

func neutralConst(id cidutil.ConstID, levels []univ.Level) *VApp {
	return &VApp{Head: &ConstHead{Ref: id, Levels: levels}}
}
