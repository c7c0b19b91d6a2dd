package store

import (
	"errors"
	"testing"

	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/decl"
	"xdao.co/cadl/expr"
	"xdao.co/cadl/univ"
)

func mustPutExpr(t *testing.T, s *Store, e expr.Expr) cidutil.ExprID {
	t.Helper()
	id, err := s.PutExpr(e)
	if err != nil {
		t.Fatalf("PutExpr: %v", err)
	}
	if !id.Defined() {
		t.Fatalf("PutExpr returned undefined id")
	}
	return id
}

func TestPutExpr_Idempotent(t *testing.T) {
	s := New()
	tree := &expr.Lam{
		Name: "x",
		Type: &expr.Sort{Level: univ.Zero{}},
		Body: &expr.Var{Idx: 0},
	}

	id1 := mustPutExpr(t, s, tree)
	before := s.Counts()
	id2 := mustPutExpr(t, s, tree)
	after := s.Counts()

	if id1 != id2 {
		t.Fatalf("ids differ: %s vs %s", id1, id2)
	}
	if before != after {
		t.Fatalf("re-put grew the store: %v -> %v", before, after)
	}
	if _, ok := s.Expr(id1); !ok {
		t.Fatalf("stored expression not retrievable")
	}
}

func TestPutExpr_NamesOnlyChangeMeta(t *testing.T) {
	s := New()
	a := mustPutExpr(t, s, &expr.Lam{Name: "x", Type: &expr.Sort{Level: univ.Zero{}}, Body: &expr.Var{Idx: 0}})
	b := mustPutExpr(t, s, &expr.Lam{Name: "y", Type: &expr.Sort{Level: univ.Zero{}}, Body: &expr.Var{Idx: 0}})

	if a.Anon != b.Anon {
		t.Fatalf("anon ids differ for alpha-equivalent terms: %s vs %s", a.Anon, b.Anon)
	}
	if a.Meta == b.Meta {
		t.Fatalf("meta ids equal despite different binder names")
	}
	if a == b {
		t.Fatalf("full ids should differ")
	}
}

func TestPutExpr_Proj(t *testing.T) {
	s := New()
	_, err := s.PutExpr(&expr.Proj{Idx: 0, Of: &expr.Var{Idx: 0}})
	if !errors.Is(err, ErrUnimplemented) {
		t.Fatalf("Proj: got %v want ErrUnimplemented", err)
	}
}

func TestPutConst_SharedAnon(t *testing.T) {
	s := New()
	typ := mustPutExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})
	body := mustPutExpr(t, s, &expr.Sort{Level: univ.Zero{}})

	a, err := s.PutConst(&decl.Definition{Name: "id", Levels: []string{"u"}, Type: typ, Body: body, Safety: decl.DefSafe})
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}
	b, err := s.PutConst(&decl.Definition{Name: "renamed", Levels: []string{"v"}, Type: typ, Body: body, Safety: decl.DefSafe})
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}

	if a.Anon != b.Anon {
		t.Fatalf("renaming changed the anon id: %s vs %s", a.Anon, b.Anon)
	}
	if a.Meta == b.Meta {
		t.Fatalf("meta ids equal despite different names")
	}
	if _, ok := s.ConstAnon(a.Anon); !ok {
		t.Fatalf("anon projection not retrievable")
	}
	if _, ok := s.ConstMeta(b.Meta); !ok {
		t.Fatalf("meta projection not retrievable")
	}
}

func TestPutConst_Idempotent(t *testing.T) {
	s := New()
	typ := mustPutExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})

	c := &decl.Axiom{Name: "A", Type: typ, Safe: true}
	id1, err := s.PutConst(c)
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}
	before := s.Counts()
	id2, err := s.PutConst(c)
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("ids differ: %s vs %s", id1, id2)
	}
	if before != s.Counts() {
		t.Fatalf("re-put grew the store")
	}
}

func TestPersistence_WriteThrough(t *testing.T) {
	cas := NewMemoryCAS()
	s := NewPersistent(cas)

	typ := mustPutExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})
	id, err := s.PutConst(&decl.Axiom{Name: "A", Type: typ, Safe: true})
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}

	if !cas.Has(id.Anon) || !cas.Has(id.Meta) {
		t.Fatalf("constant payload bytes not persisted")
	}
	if !cas.Has(typ.Anon) || !cas.Has(typ.Meta) {
		t.Fatalf("expression payload bytes not persisted")
	}
	b, err := cas.Get(id.Anon)
	if err != nil {
		t.Fatalf("Get persisted anon bytes: %v", err)
	}
	if len(b) == 0 || b[0] != '[' {
		t.Fatalf("persisted bytes are not a canonical array: %q", b)
	}
}

func TestClosure_Transitive(t *testing.T) {
	s := New()
	typ := mustPutExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})
	ax, err := s.PutConst(&decl.Axiom{Name: "A", Type: typ, Safe: true})
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}

	body := mustPutExpr(t, s, &expr.Const{Ref: ax})
	def, err := s.PutConst(&decl.Definition{Name: "d", Type: typ, Body: body, Safety: decl.DefSafe})
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}

	ids, err := s.Closure(def)
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	seen := make(map[string]bool, len(ids))
	for _, c := range ids {
		seen[c.String()] = true
	}
	for _, want := range []string{
		def.Anon.String(), def.Meta.String(),
		ax.Anon.String(), ax.Meta.String(),
		typ.Anon.String(), typ.Meta.String(),
		body.Anon.String(), body.Meta.String(),
	} {
		if !seen[want] {
			t.Fatalf("closure missing %s", want)
		}
	}
}

func TestClosure_MissingDependency(t *testing.T) {
	s := New()
	typ := mustPutExpr(t, s, &expr.Sort{Level: univ.FromNat(1)})

	// A constant reference that was never stored.
	ghostAnon, err := cidutil.CIDv1JSONSHA256CID([]byte(`["ghost-anon"]`))
	if err != nil {
		t.Fatalf("cid: %v", err)
	}
	ghostMeta, err := cidutil.CIDv1JSONSHA256CID([]byte(`["ghost-meta"]`))
	if err != nil {
		t.Fatalf("cid: %v", err)
	}
	ghost := cidutil.ConstID{Anon: ghostAnon, Meta: ghostMeta}

	body := mustPutExpr(t, s, &expr.Const{Ref: ghost})
	def, err := s.PutConst(&decl.Definition{Name: "d", Type: typ, Body: body, Safety: decl.DefSafe})
	if err != nil {
		t.Fatalf("PutConst: %v", err)
	}

	_, err = s.Closure(def)
	if err == nil {
		t.Fatalf("Closure succeeded despite missing dependency")
	}
	if !IsNotFound(err) {
		t.Fatalf("Closure error: got %v want ErrNotFound", err)
	}
	var me *MissingError
	if !errors.As(err, &me) {
		t.Fatalf("Closure error is not a MissingError: %v", err)
	}
	if me.ID != ghost.Anon {
		t.Fatalf("MissingError names %s, want %s", me.ID, ghost.Anon)
	}
}
