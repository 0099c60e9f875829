package radius

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wichert/goradius/internal/radcodec"
	"github.com/wichert/goradius/internal/raddict"
)

// splitTagSuffix splits an externally addressed name of the form
// "Attr-Name" or "Attr-Name:tag" for tagged attributes (RFC 2868 §3.1).
// Returns tag 0 if no suffix is present.
func splitTagSuffix(name string) (base string, tag int, err error) {
	base, suffix, found := strings.Cut(name, ":")
	if !found {
		return base, 0, nil
	}
	tag, err = strconv.Atoi(suffix)
	if err != nil {
		return "", 0, fmt.Errorf("radius: invalid tag suffix %q: %w", suffix, ErrEncoding)
	}
	return base, tag, nil
}

// applyTag prefixes raw with the 1-octet tag, per RFC 2868 §3.1: for
// TypeInteger, the tag replaces the value's high octet instead of being
// prepended.
func applyTag(def *raddict.AttrDef, tag int, raw []byte) []byte {
	if !def.HasTag {
		return raw
	}
	if def.Type == radcodec.TypeInteger && len(raw) == 4 {
		out := make([]byte, 4)
		copy(out, raw)
		out[0] = byte(tag)
		return out
	}
	out := make([]byte, 0, len(raw)+1)
	out = append(out, byte(tag))
	out = append(out, raw...)
	return out
}

// stripTag reverses applyTag, returning the tag and the untagged value
// octets (with the TypeInteger high octet zeroed, matching encode's
// "tag replaces the high octet" rule).
func stripTag(def *raddict.AttrDef, raw []byte) (tag int, value []byte) {
	if !def.HasTag || len(raw) == 0 {
		return 0, raw
	}
	if def.Type == radcodec.TypeInteger && len(raw) == 4 {
		out := make([]byte, 4)
		copy(out, raw)
		tag = int(out[0])
		out[0] = 0
		return tag, out
	}
	return int(raw[0]), raw[1:]
}
