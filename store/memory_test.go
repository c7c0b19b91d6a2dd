package store_test

import (
	"testing"

	"xdao.co/cadl/store"
	"xdao.co/cadl/store/testkit"
)

func TestMemoryCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) store.CAS {
		t.Helper()
		return store.NewMemoryCAS()
	})
}

func TestMemoryCAS_Len(t *testing.T) {
	cas := store.NewMemoryCAS()
	if cas.Len() != 0 {
		t.Fatalf("fresh CAS not empty")
	}
	if _, err := cas.Put([]byte(`[1]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := cas.Put([]byte(`[1]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := cas.Put([]byte(`[2]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := cas.Len(); got != 2 {
		t.Fatalf("Len: got %d want 2", got)
	}
}

func TestMultiCAS_OrderedFallback(t *testing.T) {
	primary := store.NewMemoryCAS()
	secondary := store.NewMemoryCAS()
	m := store.MultiCAS{Adapters: []store.CAS{primary, secondary}}

	id, err := secondary.Put([]byte(`["only-secondary"]`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if !m.Has(id) {
		t.Fatalf("Has should fall through to secondary")
	}
	b, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(b) != `["only-secondary"]` {
		t.Fatalf("unexpected bytes: %s", b)
	}

	// Writes land only in the first adapter.
	wid, err := m.Put([]byte(`["written"]`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !primary.Has(wid) {
		t.Fatalf("primary missing written block")
	}
	if secondary.Has(wid) {
		t.Fatalf("secondary unexpectedly has written block")
	}
}

func TestReplicatingCAS_WritesAll(t *testing.T) {
	a := store.NewMemoryCAS()
	b := store.NewMemoryCAS()
	r := store.ReplicatingCAS{Backends: []store.NamedCAS{
		{Name: "a", CAS: a},
		{Name: "b", CAS: b},
	}}

	want, perBackend, err := r.PutAll([]byte(`["replicated"]`))
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if len(perBackend) != 2 {
		t.Fatalf("expected 2 backend results, got %d", len(perBackend))
	}
	for name, got := range perBackend {
		if got != want {
			t.Fatalf("backend %s returned %s want %s", name, got, want)
		}
	}
	if !a.Has(want) || !b.Has(want) {
		t.Fatalf("replication incomplete")
	}
}
