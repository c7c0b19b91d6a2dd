package expr

import (
	"github.com/ipfs/go-cid"

	"xdao.co/cadl/univ"
)

// Expression payload tag table, stable across anon and meta:
// 0 Var, 1 Sort, 2 Const, 3 App, 4 Lam, 5 Pi, 6 Let, 7 Lit, 8 LitType,
// 9 Fix. Tag 10 is reserved for Proj.
//
// Anon payloads carry structure only: indices, binder info, inlined levels
// (positional parameters) and child anon identifiers. Meta payloads carry
// binder/let names and child meta identifiers.

// Anon is the structural projection of one expression node.
type Anon interface{ Form() []any }

// Meta is the display projection of one expression node.
type Meta interface{ Form() []any }

type VarAnon struct{ Idx int }

type SortAnon struct{ Level univ.Level }

type ConstAnon struct {
	Ref    cid.Cid
	Levels []univ.Level
}

type AppAnon struct{ Fn, Arg cid.Cid }

type LamAnon struct {
	Info BinderInfo
	Type cid.Cid
	Body cid.Cid
}

type PiAnon struct {
	Info BinderInfo
	Dom  cid.Cid
	Cod  cid.Cid
}

type LetAnon struct{ Type, Value, Body cid.Cid }

type LitAnon struct{ Value Literal }

type LitTypeAnon struct{ Kind LitKind }

type FixAnon struct{ Body cid.Cid }

func (a *VarAnon) Form() []any  { return []any{0, a.Idx} }
func (a *SortAnon) Form() []any { return []any{1, a.Level.Form()} }
func (a *ConstAnon) Form() []any {
	lvls := make([]any, len(a.Levels))
	for i, l := range a.Levels {
		lvls[i] = l.Form()
	}
	return []any{2, a.Ref.String(), lvls}
}
func (a *AppAnon) Form() []any { return []any{3, a.Fn.String(), a.Arg.String()} }
func (a *LamAnon) Form() []any {
	return []any{4, int(a.Info), a.Type.String(), a.Body.String()}
}
func (a *PiAnon) Form() []any {
	return []any{5, int(a.Info), a.Dom.String(), a.Cod.String()}
}
func (a *LetAnon) Form() []any {
	return []any{6, a.Type.String(), a.Value.String(), a.Body.String()}
}
func (a *LitAnon) Form() []any     { return []any{7, a.Value.form()} }
func (a *LitTypeAnon) Form() []any { return []any{8, int(a.Kind)} }
func (a *FixAnon) Form() []any     { return []any{9, a.Body.String()} }

type VarMeta struct{}

type SortMeta struct{}

type ConstMeta struct{ Ref cid.Cid }

type AppMeta struct{ Fn, Arg cid.Cid }

type LamMeta struct {
	Name string
	Type cid.Cid
	Body cid.Cid
}

type PiMeta struct {
	Name string
	Dom  cid.Cid
	Cod  cid.Cid
}

type LetMeta struct {
	Name  string
	Type  cid.Cid
	Value cid.Cid
	Body  cid.Cid
}

type LitMeta struct{}

type LitTypeMeta struct{}

type FixMeta struct{ Body cid.Cid }

func (m *VarMeta) Form() []any   { return []any{0} }
func (m *SortMeta) Form() []any  { return []any{1} }
func (m *ConstMeta) Form() []any { return []any{2, m.Ref.String()} }
func (m *AppMeta) Form() []any   { return []any{3, m.Fn.String(), m.Arg.String()} }
func (m *LamMeta) Form() []any {
	return []any{4, m.Name, m.Type.String(), m.Body.String()}
}
func (m *PiMeta) Form() []any {
	return []any{5, m.Name, m.Dom.String(), m.Cod.String()}
}
func (m *LetMeta) Form() []any {
	return []any{6, m.Name, m.Type.String(), m.Value.String(), m.Body.String()}
}
func (m *LitMeta) Form() []any     { return []any{7} }
func (m *LitTypeMeta) Form() []any { return []any{8} }
func (m *FixMeta) Form() []any     { return []any{9, m.Body.String()} }
