package radius_test

import (
	"testing"

	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
)

func TestNewHostDefaultPorts(t *testing.T) {
	t.Parallel()

	h := radius.NewHost(raddict.Standard(), []byte("secret"))
	if h.AuthPort != 1812 {
		t.Fatalf("auth port = %d, want 1812", h.AuthPort)
	}
	if h.AcctPort != 1813 {
		t.Fatalf("acct port = %d, want 1813", h.AcctPort)
	}
	if h.CoAPort != 3799 {
		t.Fatalf("coa port = %d, want 3799", h.CoAPort)
	}
}

func TestHostPortByKind(t *testing.T) {
	t.Parallel()

	h := radius.NewHost(raddict.Standard(), []byte("secret"))
	if got := h.Port(radius.KindAuth); got != 1812 {
		t.Fatalf("got %d, want 1812", got)
	}
	if got := h.Port(radius.KindAcct); got != 1813 {
		t.Fatalf("got %d, want 1813", got)
	}
	if got := h.Port(radius.KindCoA); got != 3799 {
		t.Fatalf("got %d, want 3799", got)
	}
}

func TestCreateReplyInheritsIDAndRequestAuthenticator(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	secret := []byte("secret")

	req := radius.New(radius.CodeAccessRequest, dict, secret)
	req.ID = 17
	var auth [16]byte
	copy(auth[:], []byte("request-authntcr"))
	req.SetAuthenticator(auth)

	reply := radius.CreateReply(req, radius.CodeAccessAccept)
	if reply.ID != req.ID {
		t.Fatalf("reply id = %d, want %d", reply.ID, req.ID)
	}
	gotAuth, ok := reply.RequestAuthenticator()
	if !ok || gotAuth != auth {
		t.Fatalf("reply request-authenticator = %v, want %v", gotAuth, auth)
	}
	if reply.Code != radius.CodeAccessAccept {
		t.Fatalf("reply code = %v, want Access-Accept", reply.Code)
	}
}

func TestHostDecodePacketRoundTrip(t *testing.T) {
	t.Parallel()

	h := radius.NewHost(raddict.Standard(), []byte("secret"))
	p := h.CreateAuthPacket(radius.CodeAccessRequest)
	if err := p.Set("User-Name", "bob"); err != nil {
		t.Fatalf("set: %v", err)
	}

	alloc, err := radius.NewIDAllocator()
	if err != nil {
		t.Fatalf("new id allocator: %v", err)
	}
	wire, err := p.Encode(alloc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := h.DecodePacket(wire)
	if err != nil {
		t.Fatalf("decode packet: %v", err)
	}
	got, err := decoded.Get("User-Name")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0] != "bob" {
		t.Fatalf("got %v, want [bob]", got)
	}
}
