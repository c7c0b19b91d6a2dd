// Package canon produces the canonical byte encoding of kernel payloads.
//
// A payload's canonical form is a JSON array whose first element is the
// integer discriminant of its variant, followed by its fields in declaration
// order. The JSON bytes are normalized with JCS (RFC 8785) so that equal
// structured content always yields identical bytes. This is the prerequisite
// for the content store's dedup invariant: identifiers are digests over
// these bytes.
package canon

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Payload is anything with a canonical array form.
//
// Form must return only JSON-safe values: bool, int, uint64 below 2^53,
// string, nil, and nested []any of the same.
type Payload interface {
	Form() []any
}

// Marshal encodes a payload's canonical form into canonical bytes.
func Marshal(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("canon: %w: nil payload", ErrEncoding)
	}
	return MarshalForm(p.Form())
}

// MarshalForm canonically encodes a raw discriminant-first array.
func MarshalForm(form []any) ([]byte, error) {
	b, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("canon: %w: %v", ErrEncoding, err)
	}
	out, err := jcs.Transform(b)
	if err != nil {
		return nil, fmt.Errorf("canon: %w: %v", ErrEncoding, err)
	}
	return out, nil
}
