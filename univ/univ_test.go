package univ

import "testing"

func TestFromNatAsNat(t *testing.T) {
	for _, n := range []uint64{0, 1, 2, 7} {
		got, ok := AsNat(FromNat(n))
		if !ok || got != n {
			t.Fatalf("AsNat(FromNat(%d)) = %d, %v", n, got, ok)
		}
	}
	if _, ok := AsNat(Param{Idx: 0}); ok {
		t.Fatalf("AsNat should fail on a parameter")
	}
}

func TestInstantiateConcrete(t *testing.T) {
	cases := []struct {
		name  string
		level Level
		subst []Level
		want  uint64
	}{
		{"param", Param{Idx: 0}, []Level{FromNat(3)}, 3},
		{"succ of param", &Succ{Of: Param{Idx: 0}}, []Level{FromNat(1)}, 2},
		{"max picks larger", &Max{Left: FromNat(2), Right: FromNat(5)}, nil, 5},
		{"max of params", &Max{Left: Param{Idx: 0}, Right: Param{Idx: 1}}, []Level{FromNat(4), FromNat(1)}, 4},
		{"imax right zero", &IMax{Left: FromNat(9), Right: Zero{}}, nil, 0},
		{"imax right succ", &IMax{Left: FromNat(1), Right: FromNat(3)}, nil, 3},
		{"imax left zero", &IMax{Left: Zero{}, Right: &Succ{Of: Zero{}}}, nil, 1},
		{"imax via param", &IMax{Left: Param{Idx: 0}, Right: Param{Idx: 1}}, []Level{FromNat(2), FromNat(2)}, 2},
		{"nested", &Succ{Of: &Max{Left: Param{Idx: 0}, Right: &IMax{Left: Param{Idx: 1}, Right: Zero{}}}}, []Level{FromNat(1), FromNat(6)}, 2},
	}
	for _, tc := range cases {
		got := Instantiate(tc.level, tc.subst)
		n, ok := AsNat(got)
		if !ok {
			t.Fatalf("%s: result not concrete: %#v", tc.name, got)
		}
		if n != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, n, tc.want)
		}
	}
}

func TestInstantiateIdempotent(t *testing.T) {
	subst := []Level{FromNat(2), FromNat(0)}
	l := &Max{Left: &Succ{Of: Param{Idx: 0}}, Right: &IMax{Left: Param{Idx: 1}, Right: Param{Idx: 0}}}
	once := Instantiate(l, subst)
	twice := Instantiate(once, nil)
	if !Equal(once, twice) {
		t.Fatalf("reduction not idempotent: %#v vs %#v", once, twice)
	}
}

func TestIncompleteSubstitutionKeepsParam(t *testing.T) {
	got := Instantiate(Param{Idx: 3}, []Level{FromNat(1)})
	if !HasParams(got) {
		t.Fatalf("out-of-range parameter should be carried through, got %#v", got)
	}
}

func TestSymbolicMaxRetained(t *testing.T) {
	// Without a substitution, max over distinct parameters stays symbolic.
	got := Instantiate(&Max{Left: Param{Idx: 0}, Right: Param{Idx: 1}}, nil)
	if _, ok := got.(*Max); !ok {
		t.Fatalf("expected symbolic max, got %#v", got)
	}
}
