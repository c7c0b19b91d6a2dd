package store

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrInvalidCID    = errors.New("store: invalid cid")
	ErrCIDMismatch   = errors.New("store: cid mismatch")
	ErrImmutable     = errors.New("store: immutable object mismatch")
	ErrUnimplemented = errors.New("store: unimplemented payload")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// MissingError reports an identifier that was dereferenced against the
// store but is absent. For an identifier reachable from valid program state
// this indicates a corrupted or incomplete store.
type MissingError struct {
	ID   cid.Cid
	What string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("store: missing %s payload %s", e.What, e.ID)
}

func (e *MissingError) Unwrap() error { return ErrNotFound }

func missing(what string, id cid.Cid) error { return &MissingError{ID: id, What: what} }
