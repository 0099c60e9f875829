package radius

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/wichert/goradius/internal/radcodec"
	"github.com/wichert/goradius/internal/raddict"
)

// Packet is a RADIUS datagram in progress: a Code/ID/Authenticator
// header (RFC 2865 §3), a shared secret, a Dictionary for name
// resolution, and the ordered attribute store. A single type plus a
// Kind discriminator covers every packet family (auth, accounting,
// CoA, disconnect) rather than a distinct Go type per family.
type Packet struct {
	Code Code
	ID   uint8

	Secret []byte
	Dict   *raddict.Dictionary

	authenticator    [16]byte
	authenticatorSet bool

	// requestAuthenticator is the Authenticator of the request this
	// packet replies to, preserved on reply objects so Response-
	// Authenticator and Message-Authenticator can be derived without
	// the original request in hand (RFC 2865 §3).
	requestAuthenticator    [16]byte
	requestAuthenticatorSet bool

	// wantMessageAuthenticator marks that attribute 80 should be
	// (re)computed at serialization time rather than trusted verbatim.
	wantMessageAuthenticator bool

	attrs *attrStore
}

// Kind classifies Code into the auth/acct/coa family.
func (p *Packet) Kind() Kind {
	return KindOf(p.Code)
}

// New constructs an empty Packet of the given code, bound to dict and
// secret. Use a Host to also fill in id/authenticator/port conventions.
func New(code Code, dict *raddict.Dictionary, secret []byte) *Packet {
	return &Packet{
		Code:   code,
		Secret: secret,
		Dict:   dict,
		attrs:  newAttrStore(),
	}
}

// Authenticator returns the packet's Authenticator and whether it has
// been assigned yet. The Authenticator is 16 octets (RFC 2865 §3),
// optional until first serialization.
func (p *Packet) Authenticator() ([16]byte, bool) {
	return p.authenticator, p.authenticatorSet
}

// SetAuthenticator assigns the packet's Authenticator explicitly. A
// packet built with authenticator = 16 zero octets via SetAuthenticator
// is considered "set", so later encrypt/encode operations use the
// caller's zero value rather than lazily replacing it with fresh
// randomness.
func (p *Packet) SetAuthenticator(a [16]byte) {
	p.authenticator = a
	p.authenticatorSet = true
}

// ensureAuthenticator lazily assigns a fresh random Authenticator if
// none has been set yet, needed both by User-Password obfuscation (RFC
// 2865 §5.2) and by first serialization. A fresh random value is
// preferred over an all-zero fallback whenever one must be manufactured.
func (p *Packet) ensureAuthenticator() ([16]byte, error) {
	if p.authenticatorSet {
		return p.authenticator, nil
	}
	var a [16]byte
	if _, err := rand.Read(a[:]); err != nil {
		return a, fmt.Errorf("radius: generate authenticator: %w", err)
	}
	p.SetAuthenticator(a)
	return a, nil
}

// RequestAuthenticator returns the Authenticator of the request this
// reply packet was derived from, and whether one has been recorded.
func (p *Packet) RequestAuthenticator() ([16]byte, bool) {
	return p.requestAuthenticator, p.requestAuthenticatorSet
}

// SetRequestAuthenticator records the originating request's
// Authenticator on a reply packet — a reply inherits its request's id,
// authenticator, secret, and dict, and the request authenticator
// specifically feeds Response-Authenticator and Message-Authenticator
// derivation; see auth.go.
func (p *Packet) SetRequestAuthenticator(a [16]byte) {
	p.requestAuthenticator = a
	p.requestAuthenticatorSet = true
}

// AddMessageAuthenticator marks the packet to carry a Message-
// Authenticator attribute (code 80, RFC 3579 §3.2), computed when the
// packet is serialized. It also stores a zero placeholder immediately
// so Contains/Get see the attribute before the first Encode.
func (p *Packet) AddMessageAuthenticator() {
	p.wantMessageAuthenticator = true
	key := attrKey{code: 80}
	p.attrs.delete(key)
	p.attrs.addValue(key, make([]byte, 16))
}

// HasMessageAuthenticator reports whether attribute 80 is present,
// whether it was explicitly requested via AddMessageAuthenticator or
// found while decoding a datagram off the wire.
func (p *Packet) HasMessageAuthenticator() bool {
	_, ok := p.attrs.get(attrKey{code: 80})
	return ok
}

// keyFor resolves an attribute definition's storage key.
func keyFor(def *raddict.AttrDef) attrKey {
	if def.Vendor != nil {
		return attrKey{vendor: def.Vendor.Code, code: def.Code}
	}
	return attrKey{code: def.Code}
}

// resolve looks up name (after canonicalisation and tag-suffix
// stripping) in p.Dict, returning its definition, storage key, and tag.
func (p *Packet) resolve(name string) (def *raddict.AttrDef, key attrKey, tag int, err error) {
	base, tag, err := splitTagSuffix(name)
	if err != nil {
		return nil, attrKey{}, 0, err
	}
	def, ok := p.Dict.LookupAttributeByName(base)
	if !ok {
		return nil, attrKey{}, 0, fmt.Errorf("radius: attribute %q: %w", name, ErrUnknownAttribute)
	}
	return def, keyFor(def), tag, nil
}

// Set encodes value for the named attribute and appends it to that
// attribute's value list; stored values are always lists, since RFC
// 2865 §5 permits an attribute to repeat. Tagged attributes take their
// tag from a ":tag" name suffix (default 0). Attributes with a
// non-zero Encrypt mode are obfuscated immediately, against the
// packet's current Secret and Authenticator (lazily assigned if unset).
func (p *Packet) Set(name string, value any) error {
	def, key, tag, err := p.resolve(name)
	if err != nil {
		return err
	}
	if def.Type == radcodec.TypeTLV {
		return fmt.Errorf("radius: %q is a tlv attribute, use SetTLV: %w", name, ErrEncoding)
	}

	raw, err := encodeValue(p.Dict, def, value)
	if err != nil {
		return err
	}

	if def.Encrypt != 0 {
		raw, err = p.encrypt(def, raw)
		if err != nil {
			return err
		}
	}

	raw = applyTag(def, tag, raw)
	p.attrs.addValue(key, raw)
	return nil
}

// setRawKey stores a pre-encoded octet value directly under key,
// bypassing scalar encoding, tagging, and encryption. Used by the wire
// decoder to store each non-TLV attribute's octets as received, whether
// or not the dictionary has an entry for it.
func (p *Packet) setRawKey(key attrKey, raw []byte) {
	p.attrs.addValue(key, raw)
}

// encrypt applies def's configured obfuscation (Encrypt 1: User-
// Password style; Encrypt 2: salt encryption) to plaintext.
func (p *Packet) encrypt(def *raddict.AttrDef, plaintext []byte) ([]byte, error) {
	auth, err := p.ensureAuthenticator()
	if err != nil {
		return nil, err
	}
	switch def.Encrypt {
	case 1:
		return pwCrypt(p.Secret, auth, plaintext), nil
	case 2:
		salt, err := randomSalt()
		if err != nil {
			return nil, err
		}
		return saltCrypt(p.Secret, auth, salt, plaintext), nil
	default:
		return plaintext, nil
	}
}

// decrypt reverses encrypt for Get.
func (p *Packet) decrypt(def *raddict.AttrDef, raw []byte) []byte {
	auth, _ := p.Authenticator()
	switch def.Encrypt {
	case 1:
		return pwDecrypt(p.Secret, auth, raw)
	case 2:
		return saltDecrypt(p.Secret, auth, raw)
	default:
		return raw
	}
}

// randomSalt returns a 2-octet salt with the top bit set and 15
// random low bits (RFC 2868 §3.5).
func randomSalt() ([2]byte, error) {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return buf, fmt.Errorf("radius: generate salt: %w", err)
	}
	v := (binary.BigEndian.Uint16(buf[:]) & 0x7fff) | 0x8000
	binary.BigEndian.PutUint16(buf[:], v)
	return buf, nil
}

// Get returns the decoded values for the named attribute, in insertion
// order. Tagged attributes ignore a ":tag" suffix on
// read (all tag values of a name share the same underlying key): values
// of every tag are returned, with the tag octet stripped.
func (p *Packet) Get(name string) ([]any, error) {
	def, key, _, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	sl, ok := p.attrs.get(key)
	if !ok || len(sl.values) == 0 {
		return nil, nil
	}

	out := make([]any, 0, len(sl.values))
	for _, raw := range sl.values {
		v := raw
		if def.HasTag {
			_, v = stripTag(def, raw)
		}
		if def.Encrypt != 0 {
			v = p.decrypt(def, v)
		}
		decoded, err := decodeValue(p.Dict, def, v)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

// GetRaw returns the stored octets for the named attribute without
// decoding, decryption, or tag stripping.
func (p *Packet) GetRaw(name string) ([][]byte, error) {
	_, key, _, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	sl, ok := p.attrs.get(key)
	if !ok {
		return nil, nil
	}
	return sl.values, nil
}

// Contains reports whether the named attribute has at least one value.
func (p *Packet) Contains(name string) bool {
	_, key, _, err := p.resolve(name)
	if err != nil {
		return false
	}
	sl, ok := p.attrs.get(key)
	return ok && (len(sl.values) > 0 || (sl.tlv != nil && len(sl.tlv.order) > 0))
}

// Delete removes all values for the named attribute.
func (p *Packet) Delete(name string) error {
	_, key, _, err := p.resolve(name)
	if err != nil {
		return err
	}
	p.attrs.delete(key)
	return nil
}

// SetTLV encodes value for childName (a sub-attribute of the TLV
// attribute parentName) and appends it under its sub-code (RFC 2865 §5
// TLV nesting).
func (p *Packet) SetTLV(parentName, childName string, value any) error {
	parent, ok := p.Dict.LookupAttributeByName(parentName)
	if !ok {
		return fmt.Errorf("radius: attribute %q: %w", parentName, ErrUnknownAttribute)
	}
	if parent.Type != radcodec.TypeTLV {
		return fmt.Errorf("radius: %q is not a tlv attribute: %w", parentName, ErrEncoding)
	}
	child, ok := parent.Children[childCode(parent, childName)]
	if !ok {
		return fmt.Errorf("radius: %q has no child %q: %w", parentName, childName, ErrUnknownAttribute)
	}

	raw, err := encodeValue(p.Dict, child, value)
	if err != nil {
		return err
	}
	p.attrs.addTLVValue(keyFor(parent), child.Code, raw)
	return nil
}

// childCode resolves childName to its sub-code within parent, or -1 if
// not found. Kept separate from the Children map's own keys so
// SetTLV can look up by symbolic name.
func childCode(parent *raddict.AttrDef, childName string) int {
	childName = raddict.CanonicalName(childName)
	for code, child := range parent.Children {
		if child.Name == childName {
			return code
		}
	}
	return -1
}

// GetTLV returns the decoded sub-attribute values for parentName,
// keyed by the sub-attribute's symbolic name, each in insertion order.
func (p *Packet) GetTLV(parentName string) (map[string][]any, error) {
	parent, ok := p.Dict.LookupAttributeByName(parentName)
	if !ok {
		return nil, fmt.Errorf("radius: attribute %q: %w", parentName, ErrUnknownAttribute)
	}
	sl, ok := p.attrs.get(keyFor(parent))
	if !ok || sl.tlv == nil {
		return nil, nil
	}

	out := make(map[string][]any, len(sl.tlv.order))
	for _, code := range sl.tlv.order {
		child, ok := parent.Children[code]
		if !ok {
			continue
		}
		values := sl.tlv.vals[code]
		decoded := make([]any, 0, len(values))
		for _, raw := range values {
			v, err := decodeValue(p.Dict, child, raw)
			if err != nil {
				return nil, err
			}
			decoded = append(decoded, v)
		}
		out[child.Name] = decoded
	}
	return out, nil
}

// Clone deep-copies p, including its attribute store. Secret and Dict
// are shared by reference (the dictionary is immutable once built, and
// the secret is treated as read-only octets).
func (p *Packet) Clone() *Packet {
	c := &Packet{
		Code:                     p.Code,
		ID:                       p.ID,
		Secret:                   p.Secret,
		Dict:                     p.Dict,
		authenticator:            p.authenticator,
		authenticatorSet:         p.authenticatorSet,
		requestAuthenticator:     p.requestAuthenticator,
		requestAuthenticatorSet:  p.requestAuthenticatorSet,
		wantMessageAuthenticator: p.wantMessageAuthenticator,
		attrs:                    p.attrs.clone(),
	}
	return c
}
