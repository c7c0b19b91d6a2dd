package render

import (
	"fmt"

	"xdao.co/cadl/store"
)

// MissingError reports a dependency the store could not supply while
// rendering. It wraps store.ErrNotFound so callers can keep matching the
// sentinel.
type MissingError struct {
	What string
	ID   string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("render: missing %s %s", e.What, e.ID)
}

func (e *MissingError) Unwrap() error { return store.ErrNotFound }

func missing(what string, id fmt.Stringer) error {
	return &MissingError{What: what, ID: id.String()}
}
