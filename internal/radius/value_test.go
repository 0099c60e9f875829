package radius_test

import (
	"bytes"
	"crypto/md5" //nolint:gosec // test replicates RFC 2865 §5.2 math independently
	"testing"

	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
)

// TestUserPasswordEncodingMath independently recomputes the RFC 2865 §5.2
// User-Password obfuscation for a known Authenticator and secret, and
// checks it against what Set produces.
func TestUserPasswordEncodingMath(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	secret := []byte("xyzzy5461")

	p := radius.New(radius.CodeAccessRequest, dict, secret)
	var auth [16]byte
	copy(auth[:], []byte("0123456789abcdef"))
	p.SetAuthenticator(auth)

	if err := p.Set("User-Password", "hunter2"); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw, err := p.GetRaw("User-Password")
	if err != nil {
		t.Fatalf("getraw: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("got %d values, want 1", len(raw))
	}

	plaintext := []byte("hunter2")
	padded := make([]byte, 16)
	copy(padded, plaintext)

	h := md5.New() //nolint:gosec // G401
	h.Write(secret)
	h.Write(auth[:])
	sum := h.Sum(nil)

	want := make([]byte, 16)
	for i := range want {
		want[i] = padded[i] ^ sum[i]
	}

	if !bytes.Equal(raw[0], want) {
		t.Fatalf("got %x, want %x", raw[0], want)
	}
}

func TestEnumeratedValueNameRoundTrip(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	p := radius.New(radius.CodeAccountingRequest, dict, []byte("secret"))
	if err := p.Set("Acct-Status-Type", "Start"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := p.Get("Acct-Status-Type")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0] != "Start" {
		t.Fatalf("got %v, want [Start]", got)
	}
}

func TestEnumeratedValueAcceptsRawInteger(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	p := radius.New(radius.CodeAccountingRequest, dict, []byte("secret"))
	if err := p.Set("Acct-Status-Type", 1); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := p.Get("Acct-Status-Type")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0] != "Start" {
		t.Fatalf("got %v, want [Start] (1 resolves to the same VALUE name)", got)
	}
}
