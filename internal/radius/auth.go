package radius

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // G501: MD5/HMAC-MD5 required by RFC 3579 §3.2
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

var zero16 [16]byte

// authenticatorInput returns the 16 octets fed into the Message-
// Authenticator HMAC in place of the packet's own Authenticator, per
// the per-code rule in RFC 3579 §3.2: zero for Accounting/CoA/Disconnect
// request and response, the request's Authenticator for Access-
// Accept/Reject/Challenge, and the packet's own (random) Authenticator
// for Access-Request and Status-Server.
func (p *Packet) authenticatorInput() ([16]byte, error) {
	switch p.Code {
	case CodeAccessAccept, CodeAccessReject, CodeAccessChallenge:
		reqAuth, ok := p.RequestAuthenticator()
		if !ok {
			return zero16, fmt.Errorf("radius: message-authenticator: %w", ErrNoAuthenticator)
		}
		return reqAuth, nil
	case CodeAccessRequest, CodeStatusServer:
		return p.ensureAuthenticator()
	default:
		return zero16, nil
	}
}

// refreshMessageAuthenticator (re)computes attribute 80's value and
// stores it back into the attribute map: zero the slot, encode, hash,
// store the digest (RFC 3579 §3.2). Re-encoding without mutation
// yields an identical 16-octet HMAC value and verifies successfully.
func (p *Packet) refreshMessageAuthenticator() error {
	key := attrKey{code: 80}
	p.attrs.delete(key)
	p.attrs.addValue(key, make([]byte, 16))

	digest, err := p.computeMessageAuthenticator()
	if err != nil {
		return err
	}

	p.attrs.delete(key)
	p.attrs.addValue(key, digest[:])
	return nil
}

// computeMessageAuthenticator hashes the packet as it currently stands
// (attribute 80, if present, must already be zeroed by the caller) and
// returns the HMAC-MD5 digest.
func (p *Packet) computeMessageAuthenticator() ([16]byte, error) {
	var digest [16]byte

	attrBytes, err := p.encodeAttributes()
	if err != nil {
		return digest, err
	}

	authInput, err := p.authenticatorInput()
	if err != nil {
		return digest, err
	}

	total := headerLen + len(attrBytes)
	var header [4]byte
	header[0] = byte(p.Code)
	header[1] = p.ID
	binary.BigEndian.PutUint16(header[2:4], uint16(total)) //nolint:gosec // G115: caller bounds total

	mac := hmac.New(md5.New, p.Secret) //nolint:gosec // G401: HMAC-MD5 required by RFC 3579 §3.2
	mac.Write(header[:])
	mac.Write(authInput[:])
	mac.Write(attrBytes)
	copy(digest[:], mac.Sum(nil))
	return digest, nil
}

// VerifyMessageAuthenticator recomputes the HMAC-MD5 over the packet
// as decoded and compares it, in constant time, against the stored
// attribute 80 value (RFC 3579 §3.2).
func (p *Packet) VerifyMessageAuthenticator() error {
	key := attrKey{code: 80}
	sl, ok := p.attrs.get(key)
	if !ok || len(sl.values) == 0 {
		return ErrNoMessageAuthenticator
	}
	stored := append([]byte(nil), sl.values[0]...)

	sl.values[0] = make([]byte, 16)
	digest, err := p.computeMessageAuthenticator()
	sl.values[0] = stored
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(stored, digest[:]) != 1 {
		return fmt.Errorf("radius: verify message-authenticator: %w", ErrVerification)
	}
	return nil
}

// VerifyResponseAuthenticator recomputes
// MD5(code||id||length||requestAuthenticator||attributes||secret) for
// a decoded reply and compares it against its Authenticator field
// (RFC 2865 §3, client-side reply verification).
func (p *Packet) VerifyResponseAuthenticator(requestAuthenticator [16]byte) error {
	attrBytes, err := p.encodeAttributes()
	if err != nil {
		return err
	}

	total := headerLen + len(attrBytes)
	buf := make([]byte, headerLen, total)
	buf[0] = byte(p.Code)
	buf[1] = p.ID
	binary.BigEndian.PutUint16(buf[2:4], uint16(total)) //nolint:gosec // G115
	buf = append(buf, attrBytes...)

	expected := md5ResponseAuthenticator(buf, requestAuthenticator, p.Secret)

	got, _ := p.Authenticator()
	if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
		return fmt.Errorf("radius: verify response-authenticator: %w", ErrVerification)
	}
	return nil
}
