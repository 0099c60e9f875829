package radcodec

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Ascend filter rule field values (RFC-less, vendor convention; layout
// follows the pyrad reference implementation in
// _examples/original_source/pyrad/tools.py).
const (
	abinaryFamilyIPv4 = 0x01
	abinaryFamilyIPv6 = 0x03

	abinaryActionDiscard = 0x00
	abinaryActionAccept  = 0x01

	abinaryDirectionOut = 0x00
	abinaryDirectionIn  = 0x01
)

// abinaryTrailerLen is the fixed zero-padding trailer at the end of every
// Ascend filter rule.
const abinaryTrailerLen = 8

// EncodeAbinary composes a space-separated list of "key=value" terms into
// the fixed Ascend filter rule layout:
//
//	family(1) action(1) direction(1) pad(1) src(4|16) dst(4|16)
//	srclen(1) dstlen(1) proto(1) pad(1) sport(2) dport(2)
//	sportq(1) dportq(1) pad(2) trailer(8)
//
// Missing fields default to zero, except family (ipv4) and direction
// (in); family=ipv6 widens the default src/dst
// network fields from 4 to 16 zero octets.
func EncodeAbinary(rule string) ([]byte, error) {
	family := uint8(abinaryFamilyIPv4)
	action := uint8(abinaryActionDiscard)
	direction := uint8(abinaryDirectionIn)
	src := make([]byte, 4)
	dst := make([]byte, 4)
	var srcLen, dstLen, proto, sportq, dportq uint8
	var sport, dport uint16

	for _, term := range strings.Fields(rule) {
		key, value, ok := splitKV(term)
		if !ok {
			return nil, fmt.Errorf("encode abinary: malformed term %q: %w", term, ErrBadValue)
		}

		switch key {
		case "family":
			if value == "ipv6" {
				family = abinaryFamilyIPv6
				if len(src) == 4 {
					src = make([]byte, 16)
				}
				if len(dst) == 4 {
					dst = make([]byte, 16)
				}
			}
		case "action":
			if value == "accept" {
				action = abinaryActionAccept
			}
		case "direction":
			if value == "out" {
				direction = abinaryDirectionOut
			}
		case "src", "dst":
			network, err := netip.ParsePrefix(value)
			if err != nil {
				return nil, fmt.Errorf("encode abinary: parse %s %q: %w", key, value, ErrBadValue)
			}
			addr := network.Masked().Addr()
			var bytes []byte
			if addr.Is4() {
				b := addr.As4()
				bytes = b[:]
			} else {
				b := addr.As16()
				bytes = b[:]
			}
			if key == "src" {
				src = bytes
				srcLen = uint8(network.Bits()) //nolint:gosec // prefix length 0-128
			} else {
				dst = bytes
				dstLen = uint8(network.Bits()) //nolint:gosec // prefix length 0-128
			}
		case "proto":
			n, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("encode abinary: parse proto %q: %w", value, ErrBadValue)
			}
			proto = uint8(n)
		case "sport", "dport":
			n, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("encode abinary: parse %s %q: %w", key, value, ErrBadValue)
			}
			if key == "sport" {
				sport = uint16(n)
			} else {
				dport = uint16(n)
			}
		case "sportq", "dportq":
			n, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("encode abinary: parse %s %q: %w", key, value, ErrBadValue)
			}
			if key == "sportq" {
				sportq = uint8(n)
			} else {
				dportq = uint8(n)
			}
		default:
			return nil, fmt.Errorf("encode abinary: unknown field %q: %w", key, ErrBadValue)
		}
	}

	out := make([]byte, 0, 4+len(src)+len(dst)+4+4+abinaryTrailerLen)
	out = append(out, family, action, direction, 0)
	out = append(out, src...)
	out = append(out, dst...)
	out = append(out, srcLen, dstLen, proto, 0)

	portBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(portBuf, sport)
	out = append(out, portBuf...)
	binary.BigEndian.PutUint16(portBuf, dport)
	out = append(out, portBuf...)

	out = append(out, sportq, dportq, 0, 0)
	out = append(out, make([]byte, abinaryTrailerLen)...)

	return out, nil
}

// DecodeAbinary is the inverse of EncodeAbinary: it parses the fixed
// Ascend filter rule layout back into a space-separated "key=value" rule
// string. This is a deliberate divergence from the pyrad reference, whose
// decode_ascend_binary is an identity function — see DESIGN.md's Open
// Questions section.
func DecodeAbinary(raw []byte) (string, error) {
	if len(raw) < 4 {
		return "", fmt.Errorf("decode abinary: %d octets: %w", len(raw), ErrWrongLength)
	}

	family := raw[0]
	action := raw[1]
	direction := raw[2]

	addrLen := 4
	if family == abinaryFamilyIPv6 {
		addrLen = 16
	}

	want := 4 + 2*addrLen + 4 + 4 + 4 + abinaryTrailerLen
	if len(raw) != want {
		return "", fmt.Errorf("decode abinary: %d octets, want %d: %w", len(raw), want, ErrWrongLength)
	}

	off := 4
	src := raw[off : off+addrLen]
	off += addrLen
	dst := raw[off : off+addrLen]
	off += addrLen

	srcLen := raw[off]
	dstLen := raw[off+1]
	proto := raw[off+2]
	off += 4

	sport := binary.BigEndian.Uint16(raw[off : off+2])
	dport := binary.BigEndian.Uint16(raw[off+2 : off+4])
	off += 4

	sportq := raw[off]
	dportq := raw[off+1]

	terms := make([]string, 0, 12)
	if family == abinaryFamilyIPv6 {
		terms = append(terms, "family=ipv6")
	} else {
		terms = append(terms, "family=ipv4")
	}
	if action == abinaryActionAccept {
		terms = append(terms, "action=accept")
	} else {
		terms = append(terms, "action=discard")
	}
	if direction == abinaryDirectionOut {
		terms = append(terms, "direction=out")
	} else {
		terms = append(terms, "direction=in")
	}

	srcAddr, ok := netip.AddrFromSlice(src)
	if !ok {
		return "", fmt.Errorf("decode abinary: invalid src address: %w", ErrBadValue)
	}
	dstAddr, ok := netip.AddrFromSlice(dst)
	if !ok {
		return "", fmt.Errorf("decode abinary: invalid dst address: %w", ErrBadValue)
	}
	terms = append(terms,
		fmt.Sprintf("src=%s/%d", srcAddr, srcLen),
		fmt.Sprintf("dst=%s/%d", dstAddr, dstLen),
	)
	if proto != 0 {
		terms = append(terms, fmt.Sprintf("proto=%d", proto))
	}
	if sport != 0 {
		terms = append(terms, fmt.Sprintf("sport=%d", sport))
	}
	if dport != 0 {
		terms = append(terms, fmt.Sprintf("dport=%d", dport))
	}
	if sportq != 0 {
		terms = append(terms, fmt.Sprintf("sportq=%d", sportq))
	}
	if dportq != 0 {
		terms = append(terms, fmt.Sprintf("dportq=%d", dportq))
	}

	return strings.Join(terms, " "), nil
}
