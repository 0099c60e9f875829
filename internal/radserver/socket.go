//go:build linux

package radserver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"syscall"

	"golang.org/x/sys/unix"
)

// listen opens a UDP socket bound to addr:port. When reusePort is
// true, SO_REUSEPORT is set before bind so multiple daemon processes
// can share the same address:port pair for load distribution across
// workers.
func listen(ctx context.Context, addr netip.Addr, port int, reusePort bool) (*net.UDPConn, error) {
	laddr := netip.AddrPortFrom(addr, uint16(port)) //nolint:gosec // G115: port is validated config, always <= 65535

	network := "udp4"
	if addr.Is6() && !addr.Is4In6() {
		network = "udp6"
	}

	lc := net.ListenConfig{}
	if reusePort {
		lc.Control = func(_, _ string, c syscall.RawConn) error {
			return setReusePort(c)
		}
	}

	pc, err := lc.ListenPacket(ctx, network, laddr.String())
	if err != nil {
		return nil, fmt.Errorf("radserver: listen %s: %w", laddr, err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, fmt.Errorf("radserver: listen %s: unexpected connection type %T", laddr, pc)
	}

	return conn, nil
}

// setReusePort sets SO_REUSEPORT on the raw socket fd.
func setReusePort(c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		//nolint:gosec // G115: fd uintptr->int is safe; kernel FDs are always small positive integers.
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return fmt.Errorf("raw conn control: %w", err)
	}
	return sockErr
}
