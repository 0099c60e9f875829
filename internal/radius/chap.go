package radius

import (
	"crypto/md5" //nolint:gosec // G501: MD5 required by RFC 2865 §5.3
	"crypto/subtle"
	"fmt"
)

// VerifyCHAP checks a CHAP-Password attribute (code 3, RFC 2865 §5.3)
// against password, using challenge from CHAP-Challenge (attribute 60)
// if present, falling back to the packet's own Authenticator
// otherwise, per RFC 2865 §5.3.
func (p *Packet) VerifyCHAP(password string) error {
	raw, err := p.GetRaw("CHAP-Password")
	if err != nil {
		return err
	}
	if len(raw) == 0 || len(raw[0]) != 17 {
		return fmt.Errorf("radius: chap: missing or malformed CHAP-Password: %w", ErrVerification)
	}
	id := raw[0][0]
	response := raw[0][1:17]

	challenge, err := p.chapChallenge()
	if err != nil {
		return err
	}

	h := md5.New() //nolint:gosec // G401
	h.Write([]byte{id})
	h.Write([]byte(password))
	h.Write(challenge)
	expected := h.Sum(nil)

	if subtle.ConstantTimeCompare(response, expected) != 1 {
		return fmt.Errorf("radius: chap: response mismatch: %w", ErrVerification)
	}
	return nil
}

// chapChallenge returns CHAP-Challenge's octets if present, otherwise
// the packet's Authenticator (RFC 2865 §5.3).
func (p *Packet) chapChallenge() ([]byte, error) {
	raw, err := p.GetRaw("CHAP-Challenge")
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		return raw[0], nil
	}
	auth, ok := p.Authenticator()
	if !ok {
		return nil, fmt.Errorf("radius: chap: %w", ErrNoAuthenticator)
	}
	return auth[:], nil
}
