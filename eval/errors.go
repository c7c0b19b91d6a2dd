package eval

import (
	"errors"
	"fmt"

	"xdao.co/cadl/cidutil"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind rather than matching error strings.
// Error() strings are intentionally human-readable and may evolve.
type Kind string

const (
	// KindCacheMiss: an identifier dereferenced against the store is absent,
	// indicating an incomplete or corrupted store.
	KindCacheMiss Kind = "CacheMiss"
	// KindUnsafeUnfold: delta-reduction was attempted on a definition marked
	// unsafe in a context that requires evaluation.
	KindUnsafeUnfold Kind = "UnsafeUnfold"
	// KindUnimplemented: projections, quotient reduction, and any construct
	// not yet modeled by the evaluator.
	KindUnimplemented Kind = "Unimplemented"
	// KindInternal: a shape prior type checking should have ruled out, e.g.
	// applying a non-function value or a recursor missing a rule.
	KindInternal Kind = "Internal"
	// KindFuel: the optional evaluation step limit was exhausted.
	KindFuel Kind = "Fuel"
)

// Error is the evaluator's structured error type. Const names the constant
// responsible when one is known; Where describes the expression position.
type Error struct {
	Kind    Kind
	Message string
	Const   cidutil.ConstID
	Where   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Const.Defined() {
		return fmt.Sprintf("eval: %s: %s (constant %s)", e.Kind, e.Message, e.Const)
	}
	return fmt.Sprintf("eval: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func constError(kind Kind, msg string, id cidutil.ConstID) error {
	return &Error{Kind: kind, Message: msg, Const: id}
}

func cacheMiss(what string, id cidutil.ConstID, cause error) error {
	return &Error{Kind: KindCacheMiss, Message: "missing " + what, Const: id, Cause: cause}
}
