package canon

import "errors"

// ErrEncoding reports a payload that cannot be canonically serialized.
// Well-formed payloads never hit it; it indicates a malformed input tree.
var ErrEncoding = errors.New("canon: encoding failed")

func IsEncoding(err error) bool { return errors.Is(err, ErrEncoding) }
