package radius

import "errors"

// Sentinel errors for the packet layer, wrapped at call sites with
// fmt.Errorf("...: %w", ...) so callers match a kind with errors.Is
// rather than a concrete type.
var (
	// ErrDecode covers malformed datagrams: length mismatch, attribute
	// length < 2, datagram > 4096 octets, corrupt header.
	ErrDecode = errors.New("radius: decode error")

	// ErrEncoding covers value type mismatch, string > 253 octets,
	// unknown attribute type tag. Raised synchronously; never surfaces
	// on the wire.
	ErrEncoding = errors.New("radius: encoding error")

	// ErrServerPacket covers semantically unroutable packets: unknown
	// source host, wrong packet code for the socket role.
	ErrServerPacket = errors.New("radius: server packet error")

	// ErrTimeout indicates client retries were exhausted without a
	// verified reply.
	ErrTimeout = errors.New("radius: timeout")

	// ErrVerification indicates a Response-Authenticator or
	// Message-Authenticator mismatch.
	ErrVerification = errors.New("radius: verification error")

	// ErrUnknownAttribute indicates a Set/Get/Delete by name found no
	// dictionary entry.
	ErrUnknownAttribute = errors.New("radius: unknown attribute")

	// ErrNoAuthenticator indicates an operation needed the packet's
	// Authenticator before it had been assigned.
	ErrNoAuthenticator = errors.New("radius: authenticator not initialized")

	// ErrNoMessageAuthenticator indicates verification was attempted
	// against a packet with no Message-Authenticator attribute present.
	ErrNoMessageAuthenticator = errors.New("radius: no message-authenticator present")
)
