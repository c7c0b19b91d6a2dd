// Package localfs is a filesystem-backed byte CAS for canonical payload
// bytes. Objects are immutable files named by CID under a two-character
// fan-out, written create-exclusive so concurrent writers of identical
// content converge without locking.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/store"
)

// CAS is a local filesystem content-addressed store rooted at a directory.
// It is offline and deterministic: no network, no wall-clock dependence.
type CAS struct {
	root string
}

var _ store.CAS = (*CAS)(nil)

// New constructs a filesystem CAS rooted at root, creating the directory if
// needed.
func New(root string) (*CAS, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &CAS{root: root}, nil
}

func (c *CAS) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1JSONSHA256CID(b)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, store.ErrInvalidCID
	}

	path := c.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := c.Get(id)
			if rerr != nil {
				// Present but unreadable or corrupted counts as an
				// immutability violation, not a retryable miss.
				return cid.Undef, store.ErrImmutable
			}
			if !bytes.Equal(existing, b) {
				return cid.Undef, store.ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}

	return id, nil
}

// Get rehashes what it reads: a payload that no longer matches its name
// surfaces as ErrCIDMismatch rather than silently corrupt bytes.
func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, store.ErrInvalidCID
	}
	b, err := os.ReadFile(c.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	got, err := cidutil.CIDv1JSONSHA256CID(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, store.ErrCIDMismatch
	}
	return b, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.pathFor(id))
	return err == nil
}

func (c *CAS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(c.root, s)
	}
	return filepath.Join(c.root, s[:2], s)
}
