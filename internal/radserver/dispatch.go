package radserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"runtime"

	"github.com/wichert/goradius/internal/radius"
)

const maxDatagramLen = 4096

// recvLoop reads datagrams from sock until ctx is cancelled, at which
// point it closes sock's connection to unblock the pending read.
func (s *Server) recvLoop(ctx context.Context, sock *boundSocket) error {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = sock.conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	logger := s.Logger.With(
		slog.String("kind", sock.kind.String()),
		slog.String("bind", sock.addr.String()),
	)

	buf := make([]byte, maxDatagramLen)
	for {
		n, peer, err := sock.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil //nolint:nilerr // context cancellation is expected shutdown, not a loop error
			}
			logger.Warn("recv error", slog.Any("error", err))
			continue
		}

		raw := make([]byte, n)
		copy(raw, buf[:n])
		s.handleDatagram(ctx, sock, logger, raw, peer)
	}
}

// handleDatagram admits, decodes, role-checks, dispatches, and replies
// to a single datagram. A panicking Handler is recovered and logged
// rather than crashing the socket's loop goroutine.
func (s *Server) handleDatagram(
	ctx context.Context,
	sock *boundSocket,
	logger *slog.Logger,
	raw []byte,
	peer netip.AddrPort,
) {
	defer s.recoverPanic(logger, peer.Addr())

	role := sock.kind.String()

	host, ok := s.Hosts.Lookup(peer.Addr())
	if !ok {
		logger.Warn("drop", slog.Any("error", newServerPacketError("unknown host", peer.Addr())))
		s.incDropped(role, "unknown host")
		return
	}

	req, err := radius.Decode(raw, s.Dict, host.Secret)
	if err != nil {
		logger.Warn("drop: decode error", slog.String("peer", peer.Addr().String()), slog.Any("error", err))
		s.incDropped(role, "decode error")
		return
	}
	s.incReceived(role, req.Code.String())

	if req.HasMessageAuthenticator() {
		if err := req.VerifyMessageAuthenticator(); err != nil {
			logger.Warn("drop: message-authenticator verification failed",
				slog.String("peer", peer.Addr().String()), slog.Any("error", err))
			s.incAuthFailure(role)
			return
		}
	}

	if err := validateRole(sock.kind, req.Code, peer.Addr()); err != nil {
		logger.Warn("drop", slog.Any("error", err))
		s.incDropped(role, "port")
		return
	}

	reply, err := s.dispatch(ctx, req)
	if err != nil {
		logger.Warn("drop: handler error", slog.String("peer", peer.Addr().String()), slog.Any("error", err))
		s.incDropped(role, "handler error")
		return
	}
	if reply == nil {
		return
	}

	wire, err := reply.Encode(nil)
	if err != nil {
		logger.Warn("drop: reply encode error", slog.String("peer", peer.Addr().String()), slog.Any("error", err))
		return
	}
	if _, err := sock.conn.WriteToUDPAddrPort(wire, peer); err != nil {
		logger.Warn("reply send error", slog.String("peer", peer.Addr().String()), slog.Any("error", err))
		return
	}
	s.incSent(role, reply.Code.String())
}

func (s *Server) incDropped(role, reason string) {
	if s.Metrics != nil {
		s.Metrics.IncPacketsDropped(role, reason)
	}
}

func (s *Server) incReceived(role, code string) {
	if s.Metrics != nil {
		s.Metrics.IncPacketsReceived(role, code)
	}
}

func (s *Server) incSent(role, code string) {
	if s.Metrics != nil {
		s.Metrics.IncPacketsSent(role, code)
	}
}

func (s *Server) incAuthFailure(role string) {
	if s.Metrics != nil {
		s.Metrics.IncAuthFailures(role)
	}
}

// dispatch routes req to the role-specific Handler method, with
// Disconnect-Request distinguished from CoA-Request by code within the
// shared CoA socket (RFC 5176 §2).
func (s *Server) dispatch(ctx context.Context, req *radius.Packet) (*radius.Packet, error) {
	switch radius.KindOf(req.Code) {
	case radius.KindAuth:
		return s.Handler.HandleAuthPacket(ctx, req)
	case radius.KindAcct:
		return s.Handler.HandleAcctPacket(ctx, req)
	case radius.KindCoA:
		if req.Code == radius.CodeDisconnectRequest {
			return s.Handler.HandleDisconnectPacket(ctx, req)
		}
		return s.Handler.HandleCoAPacket(ctx, req)
	default:
		return nil, fmt.Errorf("radserver: dispatch: unhandled code %s", req.Code)
	}
}

// validateRole rejects a packet whose code does not belong on the
// socket it arrived on: either the wrong family (an Accounting-Request
// reaching the auth socket) or a reply code arriving at all, neither of
// which a client should ever send to a server.
func validateRole(kind radius.Kind, code radius.Code, peer netip.Addr) error {
	if !radius.IsRequest(code) || radius.KindOf(code) != kind {
		return newServerPacketError("port", peer)
	}
	return nil
}

// recoverPanic logs a recovered panic from handleDatagram without
// propagating it, keeping one bad datagram from taking down the
// socket's receive loop.
func (s *Server) recoverPanic(logger *slog.Logger, peer netip.Addr) {
	if r := recover(); r != nil {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		logger.Error("panic recovered in packet handler",
			slog.String("peer", peer.String()),
			slog.Any("panic", r),
			slog.String("stack", string(buf[:n])),
		)
	}
}
