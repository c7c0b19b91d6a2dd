package render_test

import (
	"errors"
	"testing"

	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/decl"
	"xdao.co/cadl/expr"
	"xdao.co/cadl/render"
	"xdao.co/cadl/store"
	"xdao.co/cadl/univ"
)

func putExpr(t *testing.T, s *store.Store, e expr.Expr) cidutil.ExprID {
	t.Helper()
	id, err := s.PutExpr(e)
	if err != nil {
		t.Fatalf("PutExpr: %v", err)
	}
	return id
}

func putConst(t *testing.T, s *store.Store, c decl.Const) cidutil.ConstID {
	t.Helper()
	id, err := s.PutConst(c)
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}
	return id
}

func renderConst(t *testing.T, s *store.Store, id cidutil.ConstID, showSafety bool) string {
	t.Helper()
	out, err := render.Constant(s, id, showSafety)
	if err != nil {
		t.Fatalf("Constant: %v", err)
	}
	return out
}

func TestRender_Axiom(t *testing.T) {
	s := store.New()
	typ := putExpr(t, s, &expr.Sort{Level: univ.Param{Idx: 0}})
	ax := putConst(t, s, &decl.Axiom{Name: "A", Levels: []string{"u"}, Type: typ, Safe: true})

	if got := renderConst(t, s, ax, false); got != "axiom A {u} : Sort u" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_UnsafeAxiomPrefix(t *testing.T) {
	s := store.New()
	typ := putExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})
	ax := putConst(t, s, &decl.Axiom{Name: "A", Type: typ, Safe: false})

	if got := renderConst(t, s, ax, true); got != "unsafe axiom A : Sort 1" {
		t.Fatalf("got %q", got)
	}
	// Without showSafety the prefix is suppressed.
	if got := renderConst(t, s, ax, false); got != "axiom A : Sort 1" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_DefinitionSafety(t *testing.T) {
	s := store.New()
	typ := putExpr(t, s, &expr.LitType{Kind: expr.LitNat})
	body := putExpr(t, s, &expr.Lit{Value: expr.Literal{Kind: expr.LitNat, Nat: 1}})

	partial := putConst(t, s, &decl.Definition{Name: "p", Type: typ, Body: body, Safety: decl.DefPartial})
	unsafe := putConst(t, s, &decl.Definition{Name: "u", Type: typ, Body: body, Safety: decl.DefUnsafe})

	if got := renderConst(t, s, partial, true); got != "partial def p : Nat := 1" {
		t.Fatalf("got %q", got)
	}
	if got := renderConst(t, s, unsafe, true); got != "unsafe def u : Nat := 1" {
		t.Fatalf("got %q", got)
	}
	if got := renderConst(t, s, unsafe, false); got != "def u : Nat := 1" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_Inductive(t *testing.T) {
	s := store.New()
	sortOne := putExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})
	ind := putConst(t, s, &decl.Inductive{
		Name: "Nat", Type: sortOne, Recursive: true, Safe: true,
		Ctors: []decl.CtorRef{
			{Name: "zero", Type: sortOne},
			{Name: "succ", Type: sortOne},
		},
	})

	want := "inductive Nat : Sort 1 where\n| zero : Sort 1\n| succ : Sort 1"
	if got := renderConst(t, s, ind, false); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRender_Quotient(t *testing.T) {
	s := store.New()
	mk := putConst(t, s, &decl.Quotient{Kind: decl.QuotCtor})
	if got := renderConst(t, s, mk, false); got != "quotient Quot.mk" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_Lambda(t *testing.T) {
	s := store.New()
	id := putExpr(t, s, &expr.Lam{
		Name: "x",
		Type: &expr.LitType{Kind: expr.LitNat},
		Body: &expr.Var{Idx: 0},
	})

	got, err := render.Expr(s, id, nil)
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if got != "fun (x : Nat) => x" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_ImplicitBinder(t *testing.T) {
	s := store.New()
	id := putExpr(t, s, &expr.Lam{
		Name: "x",
		Info: expr.BinderImplicit,
		Type: &expr.LitType{Kind: expr.LitNat},
		Body: &expr.Var{Idx: 0},
	})

	got, err := render.Expr(s, id, nil)
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if got != "fun {x : Nat} => x" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_ArrowPi(t *testing.T) {
	s := store.New()
	id := putExpr(t, s, &expr.Pi{
		Dom: &expr.LitType{Kind: expr.LitNat},
		Cod: &expr.LitType{Kind: expr.LitStr},
	})

	got, err := render.Expr(s, id, nil)
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if got != "Nat -> String" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_ApplicationSpine(t *testing.T) {
	s := store.New()
	typ := putExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})
	f := putConst(t, s, &decl.Axiom{Name: "f", Type: typ, Safe: true})

	e := &expr.App{
		Fn:  &expr.App{Fn: &expr.Const{Ref: f}, Arg: &expr.Lit{Value: expr.Literal{Kind: expr.LitNat, Nat: 1}}},
		Arg: &expr.Lit{Value: expr.Literal{Kind: expr.LitNat, Nat: 2}},
	}
	id := putExpr(t, s, e)

	got, err := render.Expr(s, id, nil)
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if got != "f 1 2" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_LevelParameterNames(t *testing.T) {
	s := store.New()
	id := putExpr(t, s, &expr.Sort{Level: &univ.Max{Left: univ.Param{Idx: 0}, Right: univ.Param{Idx: 1}}})

	got, err := render.Expr(s, id, []string{"u", "v"})
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if got != "Sort (max u v)" {
		t.Fatalf("got %q", got)
	}

	// Unknown parameter names fall back to positional display.
	got, err = render.Expr(s, id, nil)
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if got != "Sort (max u0 u1)" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_Let(t *testing.T) {
	s := store.New()
	id := putExpr(t, s, &expr.Let{
		Name:  "n",
		Type:  &expr.LitType{Kind: expr.LitNat},
		Value: &expr.Lit{Value: expr.Literal{Kind: expr.LitNat, Nat: 3}},
		Body:  &expr.Var{Idx: 0},
	})

	got, err := render.Expr(s, id, nil)
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if got != "let n : Nat := 3; n" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_MissingConstant(t *testing.T) {
	s := store.New()
	anon, err := cidutil.CIDv1JSONSHA256CID([]byte(`["ghost-a"]`))
	if err != nil {
		t.Fatal(err)
	}
	meta, err := cidutil.CIDv1JSONSHA256CID([]byte(`["ghost-m"]`))
	if err != nil {
		t.Fatal(err)
	}
	ghost := cidutil.ConstID{Anon: anon, Meta: meta}

	_, err = render.Constant(s, ghost, false)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	var me *render.MissingError
	if !errors.As(err, &me) {
		t.Fatalf("got %T, want MissingError", err)
	}
}

func TestRender_MissingReference(t *testing.T) {
	s := store.New()
	anon, err := cidutil.CIDv1JSONSHA256CID([]byte(`["ref-a"]`))
	if err != nil {
		t.Fatal(err)
	}
	meta, err := cidutil.CIDv1JSONSHA256CID([]byte(`["ref-m"]`))
	if err != nil {
		t.Fatal(err)
	}
	ghost := cidutil.ConstID{Anon: anon, Meta: meta}

	id := putExpr(t, s, &expr.Const{Ref: ghost})
	if _, err := render.Expr(s, id, nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
