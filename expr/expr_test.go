package expr_test

import (
	"testing"

	"xdao.co/cadl/canon"
	"xdao.co/cadl/expr"
	"xdao.co/cadl/univ"
)

func TestEqual_IgnoresBinderNames(t *testing.T) {
	a := &expr.Lam{Name: "x", Type: &expr.LitType{Kind: expr.LitNat}, Body: &expr.Var{Idx: 0}}
	b := &expr.Lam{Name: "y", Type: &expr.LitType{Kind: expr.LitNat}, Body: &expr.Var{Idx: 0}}
	if !expr.Equal(a, b) {
		t.Fatalf("terms differing only in binder names should be equal")
	}
}

func TestEqual_ComparesBinderInfo(t *testing.T) {
	a := &expr.Lam{Info: expr.BinderDefault, Type: &expr.LitType{Kind: expr.LitNat}, Body: &expr.Var{Idx: 0}}
	b := &expr.Lam{Info: expr.BinderImplicit, Type: &expr.LitType{Kind: expr.LitNat}, Body: &expr.Var{Idx: 0}}
	if expr.Equal(a, b) {
		t.Fatalf("binder info should participate in equality")
	}
}

func TestEqual_Structure(t *testing.T) {
	mk := func(n uint64) expr.Expr {
		return &expr.App{
			Fn:  &expr.Lam{Type: &expr.Sort{Level: univ.Zero{}}, Body: &expr.Var{Idx: 0}},
			Arg: &expr.Lit{Value: expr.Literal{Kind: expr.LitNat, Nat: n}},
		}
	}
	if !expr.Equal(mk(1), mk(1)) {
		t.Fatalf("identical trees unequal")
	}
	if expr.Equal(mk(1), mk(2)) {
		t.Fatalf("distinct literals equal")
	}
	if expr.Equal(&expr.Var{Idx: 0}, &expr.Sort{Level: univ.Zero{}}) {
		t.Fatalf("distinct node kinds equal")
	}
}

func TestLitAnon_NatBeyondFloatPrecision(t *testing.T) {
	// Naturals encode as decimal strings, so values above 2^53 survive the
	// canonical JSON form exactly.
	a := &expr.LitAnon{Value: expr.Literal{Kind: expr.LitNat, Nat: 1 << 63}}
	b, err := canon.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(b), `[7,[0,"9223372036854775808"]]`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestLitAnon_String(t *testing.T) {
	a := &expr.LitAnon{Value: expr.Literal{Kind: expr.LitStr, Str: "hi"}}
	b, err := canon.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(b), `[7,[1,"hi"]]`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestPayloadTags(t *testing.T) {
	cases := []struct {
		payload interface{ Form() []any }
		want    string
	}{
		{&expr.VarAnon{Idx: 3}, `[0,3]`},
		{&expr.SortAnon{Level: univ.FromNat(1)}, `[1,[1,[0]]]`},
		{&expr.LitTypeAnon{Kind: expr.LitStr}, `[8,1]`},
		{&expr.VarMeta{}, `[0]`},
		{&expr.LitMeta{}, `[7]`},
	}
	for _, c := range cases {
		b, err := canon.Marshal(c.payload)
		if err != nil {
			t.Fatalf("Marshal %T: %v", c.payload, err)
		}
		if string(b) != c.want {
			t.Fatalf("%T: got %s, want %s", c.payload, b, c.want)
		}
	}
}
