package radcodec

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/netip"
	"strings"
)

// maxValueLen is the largest a string or octets attribute value may be on
// the wire (RFC 2865 Section 5.4: the Length octet caps the whole AVP at
// 255, minus 2 octets of Type+Length).
const maxValueLen = 253

// EncodeString encodes s as UTF-8 octets. Fails if s is longer than 253
// octets once encoded.
func EncodeString(s string) ([]byte, error) {
	b := []byte(s)
	if len(b) > maxValueLen {
		return nil, fmt.Errorf("encode string: %d octets: %w", len(b), ErrStringTooLong)
	}
	return b, nil
}

// DecodeString decodes raw UTF-8 octets back to a string. RADIUS does not
// guarantee valid UTF-8 on the wire; invalid sequences are preserved via
// Go's replacement-free byte-string conversion rather than rejected, since
// this value is frequently opaque vendor data mislabeled as "string".
func DecodeString(raw []byte) (string, error) {
	return string(raw), nil
}

// EncodeOctets returns raw as-is, unless it is given as a "0x"-prefixed
// hex string, in which case it is unhexed first (RFC 2865 conventions, as
// followed by pyrad's encode_octets).
func EncodeOctets(raw []byte) ([]byte, error) {
	if len(raw) > maxValueLen {
		return nil, fmt.Errorf("encode octets: %d octets: %w", len(raw), ErrStringTooLong)
	}
	if len(raw) >= 2 && raw[0] == '0' && raw[1] == 'x' {
		decoded := make([]byte, hex.DecodedLen(len(raw)-2))
		n, err := hex.Decode(decoded, raw[2:])
		if err != nil {
			return nil, fmt.Errorf("encode octets: decode hex: %w: %w", err, ErrBadValue)
		}
		return decoded[:n], nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// DecodeOctets returns raw unchanged; octets values are opaque.
func DecodeOctets(raw []byte) ([]byte, error) {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// EncodeInteger encodes v as a 32-bit unsigned big-endian integer.
func EncodeInteger(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

// DecodeInteger decodes a 32-bit unsigned big-endian integer.
func DecodeInteger(raw []byte) (uint32, error) {
	if len(raw) != 4 {
		return 0, fmt.Errorf("decode integer: %d octets: %w", len(raw), ErrWrongLength)
	}
	return binary.BigEndian.Uint32(raw), nil
}

// EncodeSigned encodes v as a 32-bit signed big-endian integer.
func EncodeSigned(v int32) []byte {
	return EncodeInteger(uint32(v)) //nolint:gosec // two's-complement reinterpretation is intentional
}

// DecodeSigned decodes a 32-bit signed big-endian integer.
func DecodeSigned(raw []byte) (int32, error) {
	v, err := DecodeInteger(raw)
	if err != nil {
		return 0, err
	}
	return int32(v), nil //nolint:gosec // two's-complement reinterpretation is intentional
}

// EncodeShort encodes v as a 16-bit unsigned big-endian integer.
func EncodeShort(v uint16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	return buf
}

// DecodeShort decodes a 16-bit unsigned big-endian integer.
func DecodeShort(raw []byte) (uint16, error) {
	if len(raw) != 2 {
		return 0, fmt.Errorf("decode short: %d octets: %w", len(raw), ErrWrongLength)
	}
	return binary.BigEndian.Uint16(raw), nil
}

// EncodeByte encodes v as a single octet.
func EncodeByte(v uint8) []byte {
	return []byte{v}
}

// DecodeByte decodes a single octet.
func DecodeByte(raw []byte) (uint8, error) {
	if len(raw) != 1 {
		return 0, fmt.Errorf("decode byte: %d octets: %w", len(raw), ErrWrongLength)
	}
	return raw[0], nil
}

// EncodeInteger64 encodes v as a 64-bit unsigned big-endian integer.
func EncodeInteger64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// DecodeInteger64 decodes a 64-bit unsigned big-endian integer.
func DecodeInteger64(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("decode integer64: %d octets: %w", len(raw), ErrWrongLength)
	}
	return binary.BigEndian.Uint64(raw), nil
}

// EncodeDate encodes seconds-since-epoch as a 32-bit big-endian integer.
func EncodeDate(unixSeconds uint32) []byte {
	return EncodeInteger(unixSeconds)
}

// DecodeDate decodes a 32-bit big-endian Unix timestamp.
func DecodeDate(raw []byte) (uint32, error) {
	return DecodeInteger(raw)
}

// EncodeIPAddr encodes a dotted-quad IPv4 address to 4 octets.
func EncodeIPAddr(addr string) ([]byte, error) {
	a, err := netip.ParseAddr(addr)
	if err != nil || !a.Is4() {
		return nil, fmt.Errorf("encode ipaddr %q: %w", addr, ErrBadValue)
	}
	b := a.As4()
	return b[:], nil
}

// DecodeIPAddr decodes 4 octets to a dotted-quad IPv4 address string.
func DecodeIPAddr(raw []byte) (string, error) {
	if len(raw) != 4 {
		return "", fmt.Errorf("decode ipaddr: %d octets: %w", len(raw), ErrWrongLength)
	}
	return netip.AddrFrom4([4]byte(raw)).String(), nil
}

// EncodeIPv6Addr encodes an IPv6 address to 16 octets.
func EncodeIPv6Addr(addr string) ([]byte, error) {
	a, err := netip.ParseAddr(addr)
	if err != nil || !a.Is6() {
		return nil, fmt.Errorf("encode ipv6addr %q: %w", addr, ErrBadValue)
	}
	b := a.As16()
	return b[:], nil
}

// DecodeIPv6Addr decodes 16 octets to an IPv6 address string. Short input
// is zero-padded on the right, matching pyrad's decode_ipv6_address.
func DecodeIPv6Addr(raw []byte) (string, error) {
	if len(raw) > 16 {
		return "", fmt.Errorf("decode ipv6addr: %d octets: %w", len(raw), ErrWrongLength)
	}
	var buf [16]byte
	copy(buf[:], raw)
	return netip.AddrFrom16(buf).String(), nil
}

// EncodeIPv6Prefix encodes an IPv6 CIDR prefix ("2001:db8::/32") as a
// reserved zero octet, a prefix-length octet, and the network address
// octets (RFC 3162 Section 2.3).
func EncodeIPv6Prefix(prefix string) ([]byte, error) {
	p, err := netip.ParsePrefix(prefix)
	if err != nil || !p.Addr().Is6() {
		return nil, fmt.Errorf("encode ipv6prefix %q: %w", prefix, ErrBadValue)
	}
	net := p.Masked().Addr().As16()
	out := make([]byte, 2+16)
	out[0] = 0
	out[1] = uint8(p.Bits()) //nolint:gosec // prefix length is 0-128, fits uint8
	copy(out[2:], net[:])
	return out, nil
}

// DecodeIPv6Prefix decodes a reserved octet, prefix-length octet, and
// network octets into a CIDR prefix string. Input is zero-padded to 18
// octets before parsing (RFC 3162 Section 2.3; a short network field is
// equivalent to a zero-extended one).
func DecodeIPv6Prefix(raw []byte) (string, error) {
	if len(raw) < 2 || len(raw) > 18 {
		return "", fmt.Errorf("decode ipv6prefix: %d octets: %w", len(raw), ErrWrongLength)
	}
	padded := make([]byte, 18)
	copy(padded, raw)

	prefixLen := padded[1]
	if prefixLen > 128 {
		return "", fmt.Errorf("decode ipv6prefix: prefix length %d: %w", prefixLen, ErrBadValue)
	}

	var addrBytes [16]byte
	copy(addrBytes[:], padded[2:18])
	addr := netip.AddrFrom16(addrBytes)

	p := netip.PrefixFrom(addr, int(prefixLen)).Masked()
	return p.String(), nil
}

// splitKV splits a single "key=value" abinary term.
func splitKV(term string) (string, string, bool) {
	idx := strings.IndexByte(term, '=')
	if idx < 0 {
		return "", "", false
	}
	return term[:idx], term[idx+1:], true
}
