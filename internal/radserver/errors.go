package radserver

import (
	"fmt"
	"net/netip"

	"github.com/wichert/goradius/internal/radius"
)

// newServerPacketError builds a server-side packet rejection for
// reason ("unknown host" or "port"), wrapping radius.ErrServerPacket so
// callers can match it with errors.Is regardless of the reason text.
func newServerPacketError(reason string, peer netip.Addr) error {
	return fmt.Errorf("radserver: %s (peer %s): %w", reason, peer, radius.ErrServerPacket)
}
