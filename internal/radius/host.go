package radius

import "github.com/wichert/goradius/internal/raddict"

// Host is the shared packet-factory seam both Client and Server build
// on: it binds a Dictionary, a default shared secret, and the three
// conventional port numbers, and exposes typed packet constructors so
// callers never juggle Code values directly for the common cases.
type Host struct {
	Dict   *raddict.Dictionary
	Secret []byte

	AuthPort int
	AcctPort int
	CoAPort  int
}

// NewHost returns a Host with the conventional RFC port defaults (1812,
// 1813, 3799).
func NewHost(dict *raddict.Dictionary, secret []byte) *Host {
	return &Host{
		Dict:     dict,
		Secret:   secret,
		AuthPort: KindAuth.DefaultPort(),
		AcctPort: KindAcct.DefaultPort(),
		CoAPort:  KindCoA.DefaultPort(),
	}
}

// Port returns the configured port for kind.
func (h *Host) Port(kind Kind) int {
	switch kind {
	case KindAuth:
		return h.AuthPort
	case KindAcct:
		return h.AcctPort
	case KindCoA:
		return h.CoAPort
	default:
		return 0
	}
}

// CreateAuthPacket builds an empty packet of the given auth-family
// code (Access-Request, Status-Server, ...).
func (h *Host) CreateAuthPacket(code Code) *Packet {
	return New(code, h.Dict, h.Secret)
}

// CreateAcctPacket builds an empty packet of the given accounting-
// family code.
func (h *Host) CreateAcctPacket(code Code) *Packet {
	return New(code, h.Dict, h.Secret)
}

// CreateCoAPacket builds an empty packet of the given CoA/Disconnect-
// family code.
func (h *Host) CreateCoAPacket(code Code) *Packet {
	return New(code, h.Dict, h.Secret)
}

// DecodePacket decodes raw into a Packet using this Host's Dictionary
// and Secret.
func (h *Host) DecodePacket(raw []byte) (*Packet, error) {
	return Decode(raw, h.Dict, h.Secret)
}

// CreateReply derives a reply packet from an incoming request:
// inheriting id, the request's authenticator (as RequestAuthenticator,
// for Response-Authenticator/Message-Authenticator derivation), secret,
// and dict.
func CreateReply(request *Packet, replyCode Code) *Packet {
	reply := New(replyCode, request.Dict, request.Secret)
	reply.ID = request.ID
	if auth, ok := request.Authenticator(); ok {
		reply.SetRequestAuthenticator(auth)
	}
	return reply
}
