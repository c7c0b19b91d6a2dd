package store

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/cadl/cidutil"
)

// NamedCAS associates a byte store with a stable backend name, for
// multi-backend orchestration where callers retain per-backend metadata.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// ReplicatingCAS writes every payload to all configured backends and reads
// with ordered fallback. All backends must return the canonical CID on
// write; a divergence is reported as ErrCIDMismatch.
//
// Use PutAll when the per-backend CID mapping is needed.
type ReplicatingCAS struct {
	Backends []NamedCAS
}

var _ CAS = ReplicatingCAS{}

// PutAll writes the same bytes to all backends and returns the canonical
// CID plus a map of backend name to returned CID.
func (r ReplicatingCAS) PutAll(b []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := cidutil.CIDv1JSONSHA256CID(b)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("store: ReplicatingCAS has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, be := range r.Backends {
		if be.CAS == nil {
			return cid.Undef, nil, fmt.Errorf("store: nil CAS for backend %q", be.Name)
		}
		got, err := be.CAS.Put(b)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[be.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r ReplicatingCAS) Put(b []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(b)
	return id, err
}

func (r ReplicatingCAS) Get(id cid.Cid) ([]byte, error) {
	for _, be := range r.Backends {
		if be.CAS == nil {
			continue
		}
		out, err := be.CAS.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r ReplicatingCAS) Has(id cid.Cid) bool {
	for _, be := range r.Backends {
		if be.CAS != nil && be.CAS.Has(id) {
			return true
		}
	}
	return false
}
