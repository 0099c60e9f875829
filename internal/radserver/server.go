package radserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync"

	"golang.org/x/sync/errgroup"

	radmetrics "github.com/wichert/goradius/internal/metrics"
	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
)

// Handler implements the four role-specific packet handlers a Server
// dispatches decoded requests to: authentication (RFC 2865), accounting
// (RFC 2866), and CoA/Disconnect (RFC 3576/5176). A handler returns the
// reply to send back (typically built with radius.CreateReply), or a
// nil packet to send no reply, or a non-nil error to drop the datagram
// — logged by the caller, never panicking the loop.
type Handler interface {
	HandleAuthPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error)
	HandleAcctPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error)
	HandleCoAPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error)
	HandleDisconnectPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error)
}

// Default port numbers (RFC 2865 §3, RFC 2866 §3, RFC 5176 §2.1).
const (
	DefaultAuthPort = 1812
	DefaultAcctPort = 1813
	DefaultCoAPort  = 3799
)

// boundSocket is one (address, port, Kind) socket the poll loop reads
// from: one UDP socket per (address, port) in the cartesian product of
// configured bind addresses and enabled services.
type boundSocket struct {
	conn *net.UDPConn
	addr netip.Addr
	kind radius.Kind
}

// Server binds UDP sockets across addresses x {auth, acct, and
// optionally CoA/Disconnect}, admits datagrams by source IP against a
// HostTable, and dispatches decoded packets to a Handler.
type Server struct {
	Dict    *raddict.Dictionary
	Hosts   *HostTable
	Handler Handler
	Logger  *slog.Logger
	Metrics *radmetrics.Collector

	authPort, acctPort, coaPort int
	coaEnabled                  bool
	reusePort                   bool

	mu      sync.Mutex
	sockets []*boundSocket
}

// Option configures optional Server parameters.
type Option func(*Server)

// WithCoA enables the CoA/Disconnect socket family, disabled by
// default (matching pyrad.server.Server's coa_enabled=False default,
// per example/server.py).
func WithCoA() Option {
	return func(s *Server) { s.coaEnabled = true }
}

// WithPorts overrides the default auth/acct/coa port numbers.
func WithPorts(auth, acct, coa int) Option {
	return func(s *Server) {
		s.authPort, s.acctPort, s.coaPort = auth, acct, coa
	}
}

// WithoutReusePort disables SO_REUSEPORT on bound sockets, which is
// otherwise enabled by default.
func WithoutReusePort() Option {
	return func(s *Server) { s.reusePort = false }
}

// WithLogger attaches a structured logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithMetrics attaches a Collector; metrics are a no-op when unset.
func WithMetrics(m *radmetrics.Collector) Option {
	return func(s *Server) { s.Metrics = m }
}

// New returns a Server with no bound sockets yet; call BindAddress for
// each address the server should listen on before calling Run.
func New(dict *raddict.Dictionary, hosts *HostTable, handler Handler, opts ...Option) *Server {
	s := &Server{
		Dict:      dict,
		Hosts:     hosts,
		Handler:   handler,
		Logger:    slog.Default(),
		authPort:  DefaultAuthPort,
		acctPort:  DefaultAcctPort,
		coaPort:   DefaultCoAPort,
		reusePort: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Logger = s.Logger.With(slog.String("component", "radserver"))
	return s
}

// BindAddress opens the auth and accounting sockets for addr, plus the
// CoA/Disconnect socket if WithCoA was supplied.
func (s *Server) BindAddress(ctx context.Context, addr netip.Addr) error {
	kinds := []radius.Kind{radius.KindAuth, radius.KindAcct}
	if s.coaEnabled {
		kinds = append(kinds, radius.KindCoA)
	}

	for _, kind := range kinds {
		conn, err := listen(ctx, addr, s.port(kind), s.reusePort)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.sockets = append(s.sockets, &boundSocket{conn: conn, addr: addr, kind: kind})
		s.mu.Unlock()
	}
	return nil
}

// LocalPort returns the actual bound local port for kind and whether a
// socket of that kind exists, useful for logging the OS-assigned port
// when a Server was bound with port 0 (e.g. in tests).
func (s *Server) LocalPort(kind radius.Kind) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sock := range s.sockets {
		if sock.kind != kind {
			continue
		}
		if addr, ok := sock.conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.Port, true
		}
	}
	return 0, false
}

func (s *Server) port(kind radius.Kind) int {
	switch kind {
	case radius.KindAuth:
		return s.authPort
	case radius.KindAcct:
		return s.acctPort
	case radius.KindCoA:
		return s.coaPort
	default:
		return 0
	}
}

// Run starts the poll loop: one goroutine per bound socket, all
// stopped together when ctx is cancelled. Handlers run inline on their
// socket's loop goroutine, so sends on a given socket are always
// serialized even though different sockets proceed concurrently.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	sockets := append([]*boundSocket(nil), s.sockets...)
	s.mu.Unlock()

	if len(sockets) == 0 {
		return fmt.Errorf("radserver: run: no bound sockets")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, sock := range sockets {
		g.Go(func() error {
			return s.recvLoop(ctx, sock)
		})
	}
	return g.Wait()
}
