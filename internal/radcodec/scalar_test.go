package radcodec_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/wichert/goradius/internal/radcodec"
)

func TestEncodeStringTooLong(t *testing.T) {
	t.Parallel()

	_, err := radcodec.EncodeString(strings.Repeat("a", 254))
	if !errors.Is(err, radcodec.ErrStringTooLong) {
		t.Fatalf("want ErrStringTooLong, got %v", err)
	}
}

func TestEncodeOctetsHexPrefix(t *testing.T) {
	t.Parallel()

	got, err := radcodec.EncodeOctets([]byte("0xdeadbeef"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeOctetsRaw(t *testing.T) {
	t.Parallel()

	got, err := radcodec.EncodeOctets([]byte("raw bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("raw bytes")) {
		t.Fatalf("got %q, want %q", got, "raw bytes")
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	t.Parallel()

	raw := radcodec.EncodeInteger(4096)
	got, err := radcodec.DecodeInteger(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4096 {
		t.Fatalf("got %d, want 4096", got)
	}
}

func TestIntegerWrongLength(t *testing.T) {
	t.Parallel()

	_, err := radcodec.DecodeInteger([]byte{1, 2, 3})
	if !errors.Is(err, radcodec.ErrWrongLength) {
		t.Fatalf("want ErrWrongLength, got %v", err)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	t.Parallel()

	raw := radcodec.EncodeSigned(-42)
	got, err := radcodec.DecodeSigned(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -42 {
		t.Fatalf("got %d, want -42", got)
	}
}

func TestShortByteInteger64DateRoundTrip(t *testing.T) {
	t.Parallel()

	if got, _ := radcodec.DecodeShort(radcodec.EncodeShort(65000)); got != 65000 {
		t.Fatalf("short: got %d", got)
	}
	if got, _ := radcodec.DecodeByte(radcodec.EncodeByte(250)); got != 250 {
		t.Fatalf("byte: got %d", got)
	}
	if got, _ := radcodec.DecodeInteger64(radcodec.EncodeInteger64(1 << 40)); got != 1<<40 {
		t.Fatalf("integer64: got %d", got)
	}
	if got, _ := radcodec.DecodeDate(radcodec.EncodeDate(1700000000)); got != 1700000000 {
		t.Fatalf("date: got %d", got)
	}
}

func TestIPAddrRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := radcodec.EncodeIPAddr("192.168.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 4 {
		t.Fatalf("got %d octets, want 4", len(raw))
	}
	got, err := radcodec.DecodeIPAddr(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "192.168.0.1" {
		t.Fatalf("got %q", got)
	}
}

func TestIPAddrRejectsIPv6(t *testing.T) {
	t.Parallel()

	if _, err := radcodec.EncodeIPAddr("::1"); !errors.Is(err, radcodec.ErrBadValue) {
		t.Fatalf("want ErrBadValue, got %v", err)
	}
}

func TestIPv6AddrRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := radcodec.EncodeIPv6Addr("2001:db8::1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 16 {
		t.Fatalf("got %d octets, want 16", len(raw))
	}
	got, err := radcodec.DecodeIPv6Addr(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2001:db8::1" {
		t.Fatalf("got %q", got)
	}
}

func TestIPv6PrefixRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := radcodec.EncodeIPv6Prefix("2001:db8::/32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 18 {
		t.Fatalf("got %d octets, want 18 (zero-padded on decode)", len(raw))
	}
	if raw[0] != 0 {
		t.Fatalf("reserved byte must be zero, got %d", raw[0])
	}

	got, err := radcodec.DecodeIPv6Prefix(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2001:db8::/32" {
		t.Fatalf("got %q", got)
	}
}

func TestIPv6PrefixDecodeZeroPads(t *testing.T) {
	t.Parallel()

	// A truncated network field (reserved + prefixlen + 4 network octets)
	// must be treated as zero-extended to 18 octets total.
	short := []byte{0, 24, 0x20, 0x01, 0x0d, 0xb8}
	got, err := radcodec.DecodeIPv6Prefix(short)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2001:d00::/24" {
		t.Fatalf("got %q", got)
	}
}
