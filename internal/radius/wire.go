package radius

import (
	"crypto/md5" //nolint:gosec // G501: MD5 required by RFC 2865 §3
	"encoding/binary"
	"fmt"

	"github.com/wichert/goradius/internal/radcodec"
	"github.com/wichert/goradius/internal/raddict"
)

const (
	headerLen       = 20
	maxDatagramLen  = 4096
	maxParentAVPLen = 245 // leaves room for the TLV sub-attribute header and an optional vendor wrapper under the 255-octet AVP value cap
	vsaCode         = 26
)

// Encode serializes p into a RADIUS datagram (RFC 2865 §3). id and
// Authenticator are filled in if unset: id from alloc (nil is
// permitted when p.ID was already assigned by the caller, e.g. for a
// reply), and Authenticator per the request/response rule below. If the
// packet was marked via AddMessageAuthenticator, attribute 80 is
// (re)computed and substituted before the final encode.
func (p *Packet) Encode(alloc *IDAllocator) ([]byte, error) {
	if !p.authenticatorSet {
		if isRequest(p.Code) {
			if _, err := p.ensureAuthenticator(); err != nil {
				return nil, err
			}
		} else {
			// Reply codes derive Authenticator from the request's,
			// computed below; a zero placeholder is fine here.
			p.authenticatorSet = true
		}
	}
	if alloc != nil && p.ID == 0 {
		p.ID = alloc.Next()
	}

	if p.wantMessageAuthenticator {
		if err := p.refreshMessageAuthenticator(); err != nil {
			return nil, err
		}
	}

	attrBytes, err := p.encodeAttributes()
	if err != nil {
		return nil, err
	}

	total := headerLen + len(attrBytes)
	if total > maxDatagramLen {
		return nil, fmt.Errorf("radius: encode: datagram %d octets exceeds %d: %w", total, maxDatagramLen, ErrEncoding)
	}

	buf := make([]byte, headerLen, total)
	buf[0] = byte(p.Code)
	buf[1] = p.ID
	binary.BigEndian.PutUint16(buf[2:4], uint16(total)) //nolint:gosec // G115: bounded by maxDatagramLen check above

	if isRequest(p.Code) {
		switch p.Kind() {
		case KindAuth:
			// Access-Request/Status-Server: random Authenticator, used
			// as-is (RFC 2865 §3, §5.2).
			copy(buf[4:20], p.authenticator[:])
			buf = append(buf, attrBytes...)
		default:
			// Accounting/CoA/Disconnect requests: MD5 over the header
			// with a zero Authenticator, the attributes, and the
			// secret (RFC 2866 §4, RFC 5176 §3).
			buf = append(buf, attrBytes...)
			sum := md5RequestAuthenticator(buf, p.Secret)
			copy(buf[4:20], sum[:])
			p.authenticator = sum
		}
	} else {
		// Reply codes: Response-Authenticator over the header, the
		// *request's* Authenticator, the attributes, and the secret
		// (RFC 2865 §3).
		reqAuth, ok := p.RequestAuthenticator()
		if !ok {
			return nil, fmt.Errorf("radius: encode reply: %w", ErrNoAuthenticator)
		}
		buf = append(buf, attrBytes...)
		sum := md5ResponseAuthenticator(buf, reqAuth, p.Secret)
		copy(buf[4:20], sum[:])
		p.authenticator = sum
	}

	return buf, nil
}

// md5RequestAuthenticator computes MD5(code||id||length||16*0||attrs||secret)
// over a buffer whose header[4:20] is currently zero-filled (or will be
// treated as such): buf already has attrs appended and header[4:20] is
// whatever was there before (zeroed by make()).
func md5RequestAuthenticator(buf []byte, secret []byte) [16]byte {
	h := md5.New() //nolint:gosec // G401
	h.Write(buf[0:4])
	h.Write(make([]byte, 16))
	h.Write(buf[20:])
	h.Write(secret)
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

// md5ResponseAuthenticator computes
// MD5(code||id||length||requestAuthenticator||attrs||secret).
func md5ResponseAuthenticator(buf []byte, requestAuth [16]byte, secret []byte) [16]byte {
	h := md5.New() //nolint:gosec // G401
	h.Write(buf[0:4])
	h.Write(requestAuth[:])
	h.Write(buf[20:])
	h.Write(secret)
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

// encodeAttributes serializes the attribute store in key insertion
// order, since RFC 2865 §4.1 permits servers to depend on the order of
// same-named attributes.
func (p *Packet) encodeAttributes() ([]byte, error) {
	var out []byte
	for _, key := range p.attrs.order {
		sl := p.attrs.slots[key]
		def, _ := p.Dict.LookupAttributeByCode(key.vendor, key.code)

		if def != nil && def.Type == radcodec.TypeTLV && sl.tlv != nil {
			packed, err := encodeTLV(key, def, sl.tlv)
			if err != nil {
				return nil, err
			}
			out = append(out, packed...)
			continue
		}

		for _, raw := range sl.values {
			out = append(out, encodeAVP(key, raw)...)
		}
	}
	return out, nil
}

// encodeAVP serializes one Type|Length|Value record, wrapping in a
// Vendor-Specific (26) envelope when key carries a vendor code
// (RFC 2865 §5.26).
func encodeAVP(key attrKey, value []byte) []byte {
	if key.vendor != 0 {
		inner := append([]byte{byte(key.code), byte(len(value) + 2)}, value...)
		out := make([]byte, 0, 6+len(inner))
		out = append(out, vsaCode, byte(len(inner)+6))
		var vendorBuf [4]byte
		binary.BigEndian.PutUint32(vendorBuf[:], key.vendor)
		out = append(out, vendorBuf[:]...)
		out = append(out, inner...)
		return out
	}
	out := make([]byte, 0, 2+len(value))
	out = append(out, byte(key.code), byte(len(value)+2))
	out = append(out, value...)
	return out
}

// encodeTLV packs a TLV attribute's sub-attributes greedily into as
// few parent AVPs as possible, each capped at maxParentAVPLen octets
// of value, then wraps each packed AVP in a Vendor-Specific envelope
// if the parent is vendor-scoped (RFC 2865 §5.26).
func encodeTLV(key attrKey, def *raddict.AttrDef, tlv *tlvValues) ([]byte, error) {
	maxLen := 0
	for _, code := range tlv.order {
		if n := len(tlv.vals[code]); n > maxLen {
			maxLen = n
		}
	}

	var avps [][]byte
	var cur []byte
	for i := 0; i < maxLen; i++ {
		var round []byte
		for _, code := range tlv.order {
			values := tlv.vals[code]
			if i >= len(values) {
				continue
			}
			round = append(round, encodeAVP(attrKey{code: code}, values[i])...)
		}
		if len(cur)+len(round) < maxParentAVPLen {
			cur = append(cur, round...)
		} else {
			avps = append(avps, cur)
			cur = round
		}
	}
	avps = append(avps, cur)

	var out []byte
	for _, avp := range avps {
		parentAVP := append([]byte{byte(def.Code), byte(len(avp) + 2)}, avp...)
		if key.vendor != 0 {
			wrapped := make([]byte, 0, 6+len(parentAVP))
			wrapped = append(wrapped, vsaCode, byte(len(parentAVP)+6))
			var vendorBuf [4]byte
			binary.BigEndian.PutUint32(vendorBuf[:], key.vendor)
			wrapped = append(wrapped, vendorBuf[:]...)
			wrapped = append(wrapped, parentAVP...)
			out = append(out, wrapped...)
		} else {
			out = append(out, parentAVP...)
		}
	}
	return out, nil
}
