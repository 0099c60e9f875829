package radcodec

import "errors"

// Sentinel errors returned by Encode/Decode. Wrapped with context via
// fmt.Errorf("...: %w", ...) at the call site, so callers match a kind
// with errors.Is rather than a concrete type.
var (
	// ErrStringTooLong indicates a string or octets value exceeds the
	// 253-octet wire limit (RFC 2865 Section 5.4).
	ErrStringTooLong = errors.New("value exceeds 253 octets")

	// ErrWrongLength indicates a fixed-width value was not exactly the
	// expected number of octets on decode.
	ErrWrongLength = errors.New("value has wrong length for type")

	// ErrUnknownType indicates a Type value outside the closed set.
	ErrUnknownType = errors.New("unknown attribute type")

	// ErrBadValue indicates a value could not be encoded as the
	// requested type (e.g. an unparsable IP address or abinary term).
	ErrBadValue = errors.New("value cannot be encoded as requested type")
)
