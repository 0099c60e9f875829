package radius_test

import (
	"testing"

	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
)

func TestMessageAuthenticatorStableAcrossReEncode(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	secret := []byte("radsec")

	p := radius.New(radius.CodeAccessRequest, dict, secret)
	if err := p.Set("User-Name", "bob"); err != nil {
		t.Fatalf("set: %v", err)
	}
	p.AddMessageAuthenticator()

	alloc, err := radius.NewIDAllocator()
	if err != nil {
		t.Fatalf("new id allocator: %v", err)
	}

	first, err := p.Encode(alloc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := p.Encode(nil)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}

	decoded, err := radius.Decode(second, dict, secret)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := decoded.VerifyMessageAuthenticator(); err != nil {
		t.Fatalf("verify message-authenticator: %v", err)
	}

	got, err := decoded.GetRaw("Message-Authenticator")
	if err != nil {
		t.Fatalf("getraw: %v", err)
	}
	firstDecoded, err := radius.Decode(first, dict, secret)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	wantRaw, err := firstDecoded.GetRaw("Message-Authenticator")
	if err != nil {
		t.Fatalf("getraw: %v", err)
	}
	if len(got) != 1 || len(wantRaw) != 1 || string(got[0]) != string(wantRaw[0]) {
		t.Fatalf("message-authenticator changed across re-encode without mutation")
	}
}

func TestMessageAuthenticatorDetectsTamper(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	secret := []byte("radsec")

	p := radius.New(radius.CodeAccessRequest, dict, secret)
	p.AddMessageAuthenticator()

	alloc, err := radius.NewIDAllocator()
	if err != nil {
		t.Fatalf("new id allocator: %v", err)
	}
	wire, err := p.Encode(alloc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	wire[len(wire)-1] ^= 0xff

	decoded, err := radius.Decode(wire, dict, secret)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := decoded.VerifyMessageAuthenticator(); err == nil {
		t.Fatal("want verification failure after tampering")
	}
}

func TestResponseAuthenticatorRoundTrip(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	secret := []byte("radsec")

	req := radius.New(radius.CodeAccessRequest, dict, secret)
	if err := req.Set("User-Name", "bob"); err != nil {
		t.Fatalf("set: %v", err)
	}
	alloc, err := radius.NewIDAllocator()
	if err != nil {
		t.Fatalf("new id allocator: %v", err)
	}
	if _, err := req.Encode(alloc); err != nil {
		t.Fatalf("encode request: %v", err)
	}
	reqAuth, ok := req.Authenticator()
	if !ok {
		t.Fatal("request authenticator not set after encode")
	}

	reply := radius.CreateReply(req, radius.CodeAccessAccept)
	if err := reply.Set("Framed-IP-Address", "192.0.2.20"); err != nil {
		t.Fatalf("set: %v", err)
	}
	wire, err := reply.Encode(nil)
	if err != nil {
		t.Fatalf("encode reply: %v", err)
	}

	decoded, err := radius.Decode(wire, dict, secret)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := decoded.VerifyResponseAuthenticator(reqAuth); err != nil {
		t.Fatalf("verify response-authenticator: %v", err)
	}
}

func TestResponseAuthenticatorRejectsWrongRequestAuthenticator(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	secret := []byte("radsec")

	req := radius.New(radius.CodeAccessRequest, dict, secret)
	alloc, err := radius.NewIDAllocator()
	if err != nil {
		t.Fatalf("new id allocator: %v", err)
	}
	if _, err := req.Encode(alloc); err != nil {
		t.Fatalf("encode request: %v", err)
	}

	reply := radius.CreateReply(req, radius.CodeAccessReject)
	wire, err := reply.Encode(nil)
	if err != nil {
		t.Fatalf("encode reply: %v", err)
	}

	decoded, err := radius.Decode(wire, dict, secret)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var wrongAuth [16]byte
	wrongAuth[0] = 0xff
	if err := decoded.VerifyResponseAuthenticator(wrongAuth); err == nil {
		t.Fatal("want verification failure for mismatched request authenticator")
	}
}

func TestEnsureAuthenticatorNeverFallsBackToZero(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	p := radius.New(radius.CodeAccessRequest, dict, []byte("secret"))
	if err := p.Set("User-Password", "hunter2"); err != nil {
		t.Fatalf("set: %v", err)
	}

	auth, ok := p.Authenticator()
	if !ok {
		t.Fatal("authenticator should have been lazily assigned by Set")
	}
	var zero [16]byte
	if auth == zero {
		t.Fatal("lazily assigned authenticator must not be all-zero")
	}
}

func TestExplicitZeroAuthenticatorIsRespected(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	p := radius.New(radius.CodeAccessRequest, dict, []byte("secret"))
	var zero [16]byte
	p.SetAuthenticator(zero)

	if err := p.Set("User-Password", "hunter2"); err != nil {
		t.Fatalf("set: %v", err)
	}

	auth, ok := p.Authenticator()
	if !ok || auth != zero {
		t.Fatal("explicitly set zero authenticator must not be overwritten")
	}
}
