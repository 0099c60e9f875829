package radius

import "crypto/md5" //nolint:gosec // G501: MD5 required by RFC 2865 §5.2

// pwCrypt implements the User-Password obfuscation algorithm (RFC 2865
// §5.2). Plaintext is padded to a 16-octet multiple with
// \x00; each ciphertext block is XORed against MD5(secret || prev),
// where prev is the authenticator for the first block and the previous
// ciphertext block thereafter.
func pwCrypt(secret []byte, authenticator [16]byte, plaintext []byte) []byte {
	padded := padTo16(plaintext)

	out := make([]byte, len(padded))
	prev := authenticator[:]
	for i := 0; i < len(padded); i += 16 {
		h := md5.New() //nolint:gosec // G401
		h.Write(secret)
		h.Write(prev)
		sum := h.Sum(nil)

		block := padded[i : i+16]
		for j := range 16 {
			out[i+j] = block[j] ^ sum[j]
		}
		prev = out[i : i+16]
	}
	return out
}

// pwDecrypt reverses pwCrypt, stripping the trailing \x00 padding.
func pwDecrypt(secret []byte, authenticator [16]byte, ciphertext []byte) []byte {
	out := make([]byte, len(ciphertext))
	prev := authenticator[:]
	for i := 0; i+16 <= len(ciphertext); i += 16 {
		h := md5.New() //nolint:gosec // G401
		h.Write(secret)
		h.Write(prev)
		sum := h.Sum(nil)

		block := ciphertext[i : i+16]
		for j := range 16 {
			out[i+j] = block[j] ^ sum[j]
		}
		prev = block
	}
	return trimTrailingZero(out)
}

// padTo16 right-pads data with \x00 octets to the next 16-octet
// boundary. A zero-length input still yields one 16-octet zero block.
func padTo16(data []byte) []byte {
	n := len(data)
	if n == 0 {
		n = 16
	} else if n%16 != 0 {
		n += 16 - n%16
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

func trimTrailingZero(data []byte) []byte {
	i := len(data)
	for i > 0 && data[i-1] == 0 {
		i--
	}
	return data[:i]
}

// saltCrypt implements salt encryption (encrypt=2, RFC 2868 §3.5
// Tunnel-Password style): a 2-octet salt with the top bit set, a
// length-prefixed plaintext zero-padded to a 16-octet multiple, then
// XOR-chained seeded by authenticator||salt instead of authenticator
// alone.
func saltCrypt(secret []byte, authenticator [16]byte, salt [2]byte, plaintext []byte) []byte {
	buf := append([]byte{byte(len(plaintext))}, plaintext...)
	buf = padTo16(buf)

	out := make([]byte, 2+len(buf))
	out[0], out[1] = salt[0], salt[1]

	prev := make([]byte, 0, 18)
	prev = append(prev, authenticator[:]...)
	prev = append(prev, salt[:]...)

	for i := 0; i < len(buf); i += 16 {
		h := md5.New() //nolint:gosec // G401
		h.Write(secret)
		h.Write(prev)
		sum := h.Sum(nil)

		block := buf[i : i+16]
		dst := out[2+i : 2+i+16]
		for j := range 16 {
			dst[j] = block[j] ^ sum[j]
		}
		prev = dst
	}
	return out
}

// saltDecrypt reverses saltCrypt. raw must be at least 2 octets (the
// salt); for anything shorter nil is returned.
func saltDecrypt(secret []byte, authenticator [16]byte, raw []byte) []byte {
	if len(raw) < 2 {
		return nil
	}
	salt := [2]byte{raw[0], raw[1]}
	ciphertext := raw[2:]

	buf := make([]byte, len(ciphertext))
	prev := make([]byte, 0, 18)
	prev = append(prev, authenticator[:]...)
	prev = append(prev, salt[:]...)

	for i := 0; i+16 <= len(ciphertext); i += 16 {
		h := md5.New() //nolint:gosec // G401
		h.Write(secret)
		h.Write(prev)
		sum := h.Sum(nil)

		block := ciphertext[i : i+16]
		for j := range 16 {
			buf[i+j] = block[j] ^ sum[j]
		}
		prev = block
	}

	if len(buf) == 0 {
		return nil
	}
	n := int(buf[0])
	if n < 0 || n > len(buf)-1 {
		n = len(buf) - 1
	}
	return buf[1 : 1+n]
}
