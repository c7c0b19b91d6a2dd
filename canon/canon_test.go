package canon

import (
	"bytes"
	"testing"
)

type testPayload struct{ form []any }

func (p testPayload) Form() []any { return p.form }

func TestMarshal_Deterministic(t *testing.T) {
	p := testPayload{form: []any{6, 2, "cid-a", true, []any{[]any{"c", 1, "r"}}}}
	a, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("Marshal not deterministic:\n%s\n%s", a, b)
	}
}

func TestMarshal_DiscriminantFirst(t *testing.T) {
	b, err := MarshalForm([]any{3, "typ", "body", 1})
	if err != nil {
		t.Fatalf("MarshalForm: %v", err)
	}
	want := `[3,"typ","body",1]`
	if string(b) != want {
		t.Fatalf("canonical form: got %s want %s", b, want)
	}
}

func TestMarshal_NestedArrays(t *testing.T) {
	b, err := MarshalForm([]any{4, []any{[]any{"zero", "t0"}, []any{"succ", "t1"}}})
	if err != nil {
		t.Fatalf("MarshalForm: %v", err)
	}
	want := `[4,[["zero","t0"],["succ","t1"]]]`
	if string(b) != want {
		t.Fatalf("canonical form: got %s want %s", b, want)
	}
}

func TestMarshal_NumberNormalization(t *testing.T) {
	// JCS renders numbers in their shortest round-trippable form.
	b, err := MarshalForm([]any{0, uint64(42), 0})
	if err != nil {
		t.Fatalf("MarshalForm: %v", err)
	}
	if string(b) != `[0,42,0]` {
		t.Fatalf("number form: got %s", b)
	}
}

func TestMarshal_NilPayload(t *testing.T) {
	if _, err := Marshal(nil); !IsEncoding(err) {
		t.Fatalf("nil payload: got %v want encoding error", err)
	}
}

func TestMarshal_Unencodable(t *testing.T) {
	if _, err := MarshalForm([]any{0, make(chan int)}); !IsEncoding(err) {
		t.Fatalf("unencodable form: got %v want encoding error", err)
	}
}
