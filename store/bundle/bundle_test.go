package bundle_test

import (
	"archive/tar"
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/decl"
	"xdao.co/cadl/expr"
	"xdao.co/cadl/store"
	"xdao.co/cadl/store/bundle"
	"xdao.co/cadl/univ"
)

func TestBundle_ExportIsDeterministic(t *testing.T) {
	cas := store.NewMemoryCAS()

	id1, err := cas.Put([]byte(`["hello"]`))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := cas.Put([]byte(`["world"]`))
	if err != nil {
		t.Fatal(err)
	}

	var outA bytes.Buffer
	if err := bundle.Export(&outA, cas, []cid.Cid{id2, id1}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	var outB bytes.Buffer
	if err := bundle.Export(&outB, cas, []cid.Cid{id1, id2}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(outA.Bytes(), outB.Bytes()) {
		t.Fatalf("expected deterministic bundle bytes")
	}
}

func TestBundle_ImportRoundTrip(t *testing.T) {
	src := store.NewMemoryCAS()

	payload := []byte(`["payload"]`)
	id, err := src.Put(payload)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, []cid.Cid{id}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	dst := store.NewMemoryCAS()
	if err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatal(err)
	}

	got, err := dst.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestBundle_ImportRejectsCIDMismatch(t *testing.T) {
	good := []byte(`["good"]`)
	otherCID, err := cidutil.CIDv1JSONSHA256CID([]byte(`["other"]`))
	if err != nil {
		t.Fatal(err)
	}

	// Name says otherCID but bytes are good => computed CID mismatch.
	bundleBytes := makeDeterministicTar(t, "blocks/"+otherCID.String(), good)

	dst := store.NewMemoryCAS()
	if err := bundle.Import(bytes.NewReader(bundleBytes), dst); err != store.ErrCIDMismatch {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
}

func TestBundle_ImportRejectsUnknownEntries(t *testing.T) {
	bundleBytes := makeDeterministicTar(t, "extras/surprise", []byte("x"))
	dst := store.NewMemoryCAS()
	if err := bundle.Import(bytes.NewReader(bundleBytes), dst); err == nil {
		t.Fatalf("expected error for unknown entry")
	}
	if err := bundle.ImportWithOptions(bytes.NewReader(bundleBytes), dst, bundle.ImportOptions{IgnoreUnknown: true}); err != nil {
		t.Fatalf("IgnoreUnknown import: %v", err)
	}
}

func TestBundle_ExportConstantClosure(t *testing.T) {
	cas := store.NewMemoryCAS()
	s := store.NewPersistent(cas)

	typ, err := s.PutExpr(&expr.Sort{Level: univ.FromNat(1)})
	if err != nil {
		t.Fatal(err)
	}
	ax, err := s.PutConst(&decl.Axiom{Name: "A", Type: typ, Safe: true})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := bundle.ExportConstant(&buf, s, cas, ax, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	dst := store.NewMemoryCAS()
	if err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatal(err)
	}
	for _, id := range []cid.Cid{ax.Anon, ax.Meta, typ.Anon, typ.Meta} {
		if !dst.Has(id) {
			t.Fatalf("closure block %s missing after import", id)
		}
	}
}

func TestBundle_SignedManifest(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer := bundle.Ed25519Signer{Private: priv}

	index := []byte(`{"version":1}` + "\n")
	rec, err := bundle.SignIndex(index, signer)
	if err != nil {
		t.Fatalf("SignIndex: %v", err)
	}
	if rec.Scheme != "ed25519" || rec.HashAlg != "sha256" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := bundle.Verify(index, rec); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := bundle.Verify([]byte(`{"version":2}`), rec); err == nil {
		t.Fatalf("Verify accepted tampered index")
	}
}

func TestBundle_SignedManifestDilithium(t *testing.T) {
	_, priv, err := bundle.GenerateDilithium3Keypair(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer := bundle.Dilithium3Signer{HashAlg: "sha3-256", Private: priv}

	index := []byte(`{"version":1}` + "\n")
	rec, err := bundle.SignIndex(index, signer)
	if err != nil {
		t.Fatalf("SignIndex: %v", err)
	}
	if err := bundle.Verify(index, rec); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	rec.Signature = rec.Signature[:len(rec.Signature)-4] + "AAAA"
	if err := bundle.Verify(index, rec); err == nil {
		t.Fatalf("Verify accepted corrupted signature")
	}
}

func makeDeterministicTar(t *testing.T, name string, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	h := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(h); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
