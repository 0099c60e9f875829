// Package radcodec implements the scalar attribute codec primitives used
// by the RADIUS packet layer (RFC 2865 Section 5). Each function encodes
// or decodes exactly one value to or from its fixed on-wire octet layout;
// none of them know about attribute names, vendors, or TLV composition —
// that lives in package raddict and package radius.
package radcodec

import "fmt"

// Type identifies the wire encoding of an attribute value. The set is
// closed: RADIUS dictionaries only ever declare one of these.
type Type uint8

const (
	// TypeString is a UTF-8 string, at most 253 octets on the wire.
	TypeString Type = iota
	// TypeOctets is an opaque byte string, at most 253 octets.
	TypeOctets
	// TypeInteger is a 32-bit unsigned big-endian integer.
	TypeInteger
	// TypeInteger64 is a 64-bit unsigned big-endian integer.
	TypeInteger64
	// TypeDate is a 32-bit big-endian Unix timestamp (seconds).
	TypeDate
	// TypeIPAddr is a 4-octet dotted-quad IPv4 address.
	TypeIPAddr
	// TypeIPv6Addr is a 16-octet IPv6 address.
	TypeIPv6Addr
	// TypeIPv6Prefix is a reserved byte, a prefix-length byte, and up to
	// 16 network octets.
	TypeIPv6Prefix
	// TypeAbinary is an Ascend filter rule packed into a fixed layout.
	TypeAbinary
	// TypeSigned is a 32-bit signed big-endian integer.
	TypeSigned
	// TypeShort is a 16-bit unsigned big-endian integer.
	TypeShort
	// TypeByte is a single octet.
	TypeByte
	// TypeTLV is a container of further Type-Length-Value sub-attributes.
	TypeTLV
)

// typeNames maps Type values to their dictionary-file keyword spelling.
var typeNames = [...]string{
	TypeString:     "string",
	TypeOctets:     "octets",
	TypeInteger:    "integer",
	TypeInteger64:  "integer64",
	TypeDate:       "date",
	TypeIPAddr:     "ipaddr",
	TypeIPv6Addr:   "ipv6addr",
	TypeIPv6Prefix: "ipv6prefix",
	TypeAbinary:    "abinary",
	TypeSigned:     "signed",
	TypeShort:      "short",
	TypeByte:       "byte",
	TypeTLV:        "tlv",
}

// String returns the dictionary-file keyword for t, or "Unknown(n)" if t
// is outside the closed set.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// ParseType maps a dictionary-file keyword to its Type, reporting ok=false
// for an unrecognized keyword.
func ParseType(keyword string) (Type, bool) {
	for i, name := range typeNames {
		if name == keyword {
			return Type(i), true
		}
	}
	return 0, false
}
