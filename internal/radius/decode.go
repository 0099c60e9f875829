package radius

import (
	"encoding/binary"
	"fmt"

	"github.com/wichert/goradius/internal/radcodec"
	"github.com/wichert/goradius/internal/raddict"
)

// Decode parses a RADIUS datagram into a Packet, per the framing rules
// in RFC 2865 §3. secret is attached so later Get/Verify calls can
// decrypt and authenticate the packet.
func Decode(raw []byte, dict *raddict.Dictionary, secret []byte) (*Packet, error) {
	if len(raw) < headerLen {
		return nil, fmt.Errorf("radius: decode: datagram %d octets shorter than header: %w", len(raw), ErrDecode)
	}
	if len(raw) > maxDatagramLen {
		return nil, fmt.Errorf("radius: decode: datagram %d octets exceeds %d: %w", len(raw), maxDatagramLen, ErrDecode)
	}

	declared := int(binary.BigEndian.Uint16(raw[2:4]))
	if declared != len(raw) {
		return nil, fmt.Errorf("radius: decode: declared length %d != actual %d: %w", declared, len(raw), ErrDecode)
	}

	p := New(Code(raw[0]), dict, secret)
	p.ID = raw[1]
	var auth [16]byte
	copy(auth[:], raw[4:20])
	p.SetAuthenticator(auth)

	if err := p.decodeAttributes(raw[headerLen:]); err != nil {
		return nil, err
	}
	if p.HasMessageAuthenticator() {
		p.wantMessageAuthenticator = true
	}
	return p, nil
}

// decodeAttributes walks the Type|Length|Value records following the
// header, unwrapping Vendor-Specific (26) and TLV composition.
func (p *Packet) decodeAttributes(body []byte) error {
	offset := 0
	for offset < len(body) {
		typ, value, n, err := readAVP(body, offset)
		if err != nil {
			return err
		}
		offset += n

		if typ == vsaCode {
			if err := p.decodeVSA(value); err != nil {
				return err
			}
			continue
		}

		def, ok := p.Dict.LookupAttributeByCode(0, int(typ))
		key := attrKey{code: int(typ)}
		if ok && def.Type == radcodec.TypeTLV {
			if err := decodeTLVChildren(p, key, def, value); err != nil {
				return err
			}
			continue
		}
		p.setRawKey(key, value)
	}
	return nil
}

// readAVP reads one Type|Length|Value record starting at offset,
// returning the type, value, and total octets consumed.
func readAVP(body []byte, offset int) (typ byte, value []byte, n int, err error) {
	if offset+2 > len(body) {
		return 0, nil, 0, fmt.Errorf("radius: decode: truncated attribute header: %w", ErrDecode)
	}
	typ = body[offset]
	length := int(body[offset+1])
	if length < 2 {
		return 0, nil, 0, fmt.Errorf("radius: decode: attribute length %d < 2: %w", length, ErrDecode)
	}
	if offset+length > len(body) {
		return 0, nil, 0, fmt.Errorf("radius: decode: attribute overruns datagram: %w", ErrDecode)
	}
	return typ, body[offset+2 : offset+length], length, nil
}

// decodeVSA unwraps a Vendor-Specific attribute's value: a 4-octet
// vendor id followed by one or more concatenated VSA-Type|VSA-
// Length|VSA-Value records. Malformed VSAs (< 6 octets) are retained
// as a single opaque attribute 26 (RFC 2865 §5.26).
func (p *Packet) decodeVSA(value []byte) error {
	if len(value) < 6 {
		p.setRawKey(attrKey{code: vsaCode}, value)
		return nil
	}
	vendor := binary.BigEndian.Uint32(value[0:4])
	rest := value[4:]

	offset := 0
	for offset < len(rest) {
		typ, subValue, n, err := readAVP(rest, offset)
		if err != nil {
			// A malformed sub-record (the first one included): stop,
			// keeping whatever was already committed (possibly
			// nothing) rather than failing the whole datagram.
			return nil //nolint:nilerr // malformed fragment: degrade, don't fail the datagram
		}
		offset += n

		key := attrKey{vendor: vendor, code: int(typ)}
		def, ok := p.Dict.LookupAttributeByCode(vendor, int(typ))
		if ok && def.Type == radcodec.TypeTLV {
			if err := decodeTLVChildren(p, key, def, subValue); err != nil {
				return err
			}
			continue
		}
		p.setRawKey(key, subValue)
	}
	return nil
}

// decodeTLVChildren parses value as a sequence of sub-attribute
// Type|Length|Value records under parentKey, storing each by its
// registered sub-code.
func decodeTLVChildren(p *Packet, parentKey attrKey, _ *raddict.AttrDef, value []byte) error {
	offset := 0
	for offset < len(value) {
		typ, subValue, n, err := readAVP(value, offset)
		if err != nil {
			return err
		}
		offset += n
		p.attrs.addTLVValue(parentKey, int(typ), subValue)
	}
	return nil
}
