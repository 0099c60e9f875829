package radcodec_test

import (
	"testing"

	"github.com/wichert/goradius/internal/radcodec"
)

func TestAbinaryEncodeLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule string
		want int
	}{
		{"default ipv4", "", 32},
		{"ipv4 with dst", "family=ipv4 action=discard direction=in dst=10.10.255.254/32", 32},
		{"ipv6 widens addresses", "family=ipv6 action=accept direction=out dst=2001:db8::/64", 56},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := radcodec.EncodeAbinary(tc.rule)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d octets, want %d", len(got), tc.want)
			}
		})
	}
}

func TestAbinaryRoundTrip(t *testing.T) {
	t.Parallel()

	rule := "family=ipv4 action=accept direction=in src=192.168.1.0/24 dst=10.0.0.0/8 proto=6 sport=1024 dport=80 sportq=2 dportq=4"

	raw, err := radcodec.EncodeAbinary(rule)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("got %d octets, want 32", len(raw))
	}

	decoded, err := radcodec.DecodeAbinary(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Re-encoding the decoded rule must produce the identical wire bytes;
	// this is the symmetric-decode property this module chose over the
	// reference implementation's identity decode (see DESIGN.md).
	raw2, err := radcodec.EncodeAbinary(decoded)
	if err != nil {
		t.Fatalf("re-encode decoded rule %q: %v", decoded, err)
	}
	if string(raw) != string(raw2) {
		t.Fatalf("round trip mismatch: decoded=%q\n  raw=%x\n raw2=%x", decoded, raw, raw2)
	}
}

func TestAbinaryDecodeWrongLength(t *testing.T) {
	t.Parallel()

	if _, err := radcodec.DecodeAbinary([]byte{1, 2}); err == nil {
		t.Fatal("want error for truncated abinary value")
	}
}

func TestAbinaryUnknownFieldRejected(t *testing.T) {
	t.Parallel()

	if _, err := radcodec.EncodeAbinary("bogus=1"); err == nil {
		t.Fatal("want error for unknown abinary field")
	}
}
