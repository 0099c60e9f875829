package raddict

import "errors"

// Sentinel errors for Dictionary construction and lookup, wrapped with
// fmt.Errorf("...: %w", ...) at call sites so callers match a kind
// with errors.Is rather than a concrete type.
var (
	// ErrCollision indicates two registrations disagree about a
	// code<->name binding; construction fails loudly rather than
	// silently keeping the first-registered binding.
	ErrCollision = errors.New("dictionary collision")

	// ErrUnknownAttribute indicates a lookup found no matching
	// attribute definition.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrUnknownVendor indicates a lookup found no matching vendor.
	ErrUnknownVendor = errors.New("unknown vendor")

	// ErrNotTLV indicates a sub-attribute was registered under a parent
	// that is not TypeTLV.
	ErrNotTLV = errors.New("parent attribute is not a tlv")

	// ErrUnknownValue indicates a value-name lookup found no entry in
	// the attribute's enumerated value table.
	ErrUnknownValue = errors.New("unknown attribute value")
)
