package radius

import (
	"crypto/md5" //nolint:gosec // G501: MD5 required by RFC 3748 §4.2 MD5-Challenge
	"encoding/binary"
	"fmt"
)

// EAP codes and types (RFC 3748), scoped to the subset needed to carry
// EAP-MD5 inside EAP-Message attributes per RFC 3579 §3.1.
const (
	eapCodeRequest  = 1
	eapCodeResponse = 2

	eapTypeIdentity     = 1
	eapTypeMD5Challenge = 4
)

// SetEAPIdentityResponse attaches an EAP-Message attribute (code 79)
// carrying an EAP-Response/Identity (RFC 3748 §5.1), keyed by the
// packet's own id.
func (p *Packet) SetEAPIdentityResponse(identity string) error {
	eap := buildEAPTLV(eapCodeResponse, p.ID, eapTypeIdentity, []byte(identity))
	return p.Set("EAP-Message", eap)
}

// EAPMD5Challenge extracts the server's EAP-Request/MD5-Challenge
// (RFC 3748 §4.2) value and identifier from this packet's EAP-Message
// attribute.
func (p *Packet) EAPMD5Challenge() (eapID uint8, challenge []byte, err error) {
	raw, err := p.GetRaw("EAP-Message")
	if err != nil {
		return 0, nil, err
	}
	if len(raw) == 0 {
		return 0, nil, fmt.Errorf("radius: eap-md5: no EAP-Message attribute: %w", ErrDecode)
	}

	eap := raw[0]
	code, id, eapType, typeData, err := parseEAPTLV(eap)
	if err != nil {
		return 0, nil, err
	}
	if code != eapCodeRequest || eapType != eapTypeMD5Challenge {
		return 0, nil, fmt.Errorf("radius: eap-md5: expected Request/MD5-Challenge, got code=%d type=%d: %w",
			code, eapType, ErrDecode)
	}
	if len(typeData) < 1 {
		return 0, nil, fmt.Errorf("radius: eap-md5: truncated MD5-Challenge value: %w", ErrDecode)
	}
	valueSize := int(typeData[0])
	if len(typeData) < 1+valueSize {
		return 0, nil, fmt.Errorf("radius: eap-md5: truncated MD5-Challenge value: %w", ErrDecode)
	}
	return id, typeData[1 : 1+valueSize], nil
}

// SetEAPMD5ChallengeResponse computes MD5(eapID||password||challenge)
// per RFC 3748 §4.2 and attaches it as an EAP-Response/MD5-Challenge in
// attribute 79.
func (p *Packet) SetEAPMD5ChallengeResponse(eapID uint8, password string, challenge []byte) error {
	h := md5.New() //nolint:gosec // G401
	h.Write([]byte{eapID})
	h.Write([]byte(password))
	h.Write(challenge)
	sum := h.Sum(nil)

	typeData := append([]byte{byte(len(sum))}, sum...)
	eap := buildEAPTLV(eapCodeResponse, eapID, eapTypeMD5Challenge, typeData)
	return p.Set("EAP-Message", eap)
}

// CopyState copies the State attribute (code 24) from src to dst, if
// present, preserving it across an EAP-MD5 challenge/response round
// trip as RFC 2865 §5.24 requires.
func CopyState(dst, src *Packet) error {
	raw, err := src.GetRaw("State")
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	_ = dst.Delete("State")
	for _, v := range raw {
		dst.attrs.addValue(attrKey{code: 24}, v)
	}
	return nil
}

// buildEAPTLV serializes a minimal EAP packet: Code(1) Identifier(1)
// Length(2 BE) Type(1) TypeData.
func buildEAPTLV(code, id, eapType byte, typeData []byte) []byte {
	length := 5 + len(typeData)
	out := make([]byte, 4, length)
	out[0] = code
	out[1] = id
	binary.BigEndian.PutUint16(out[2:4], uint16(length)) //nolint:gosec // G115: EAP-Message is capped well under 65535 by RADIUS framing
	out = append(out, eapType)
	out = append(out, typeData...)
	return out
}

// parseEAPTLV parses a minimal EAP packet as built by buildEAPTLV.
func parseEAPTLV(raw []byte) (code, id, eapType byte, typeData []byte, err error) {
	if len(raw) < 5 {
		return 0, 0, 0, nil, fmt.Errorf("radius: eap: packet shorter than header: %w", ErrDecode)
	}
	length := int(binary.BigEndian.Uint16(raw[2:4]))
	if length > len(raw) {
		return 0, 0, 0, nil, fmt.Errorf("radius: eap: declared length %d exceeds %d available: %w", length, len(raw), ErrDecode)
	}
	return raw[0], raw[1], raw[4], raw[5:length], nil
}
