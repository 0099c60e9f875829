// Package radclient implements the RADIUS client side of a request/reply
// exchange: per-attempt retry and timeout (RFC 2865 §2.4), port
// selection by packet family, reply verification, and EAP-MD5
// two-flight chaining (RFC 3748 §4).
package radclient

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	radmetrics "github.com/wichert/goradius/internal/metrics"
	"github.com/wichert/goradius/internal/radius"
)

// DefaultRetries and DefaultTimeout match pyrad.client.Client's
// constructor defaults (retries=3, timeout=5 seconds).
const (
	DefaultRetries = 3
	DefaultTimeout = 5 * time.Second
)

// Client exchanges RADIUS requests with a single server, retrying on
// timeout and discarding replies that fail id or authenticator
// verification.
type Client struct {
	host    *radius.Host
	server  string
	retries int
	timeout time.Duration
	alloc   *radius.IDAllocator
	logger  *slog.Logger
	metrics *radmetrics.Collector

	mu     sync.Mutex
	closed bool
	conns  map[radius.Kind]*net.UDPConn
}

// Option configures optional Client parameters.
type Option func(*Client)

// WithRetries overrides DefaultRetries.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithTimeout overrides DefaultTimeout, the per-attempt wait before a
// retry is sent.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger attaches a structured logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics attaches a Collector; metrics are a no-op when unset.
func WithMetrics(m *radmetrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a Client talking to server (a hostname or IP literal,
// without a port) using host for its Dictionary, shared secret, and
// per-kind port conventions.
func New(host *radius.Host, server string, opts ...Option) (*Client, error) {
	alloc, err := radius.NewIDAllocator()
	if err != nil {
		return nil, fmt.Errorf("radclient: new: %w", err)
	}

	c := &Client{
		host:    host,
		server:  server,
		retries: DefaultRetries,
		timeout: DefaultTimeout,
		alloc:   alloc,
		logger:  slog.Default(),
		conns:   make(map[radius.Kind]*net.UDPConn),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(
		slog.String("component", "radclient"),
		slog.String("server", server),
	)
	return c, nil
}

// Close releases every socket opened by the client. Exchange returns
// an error after Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	var firstErr error
	for kind, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("radclient: close %s socket: %w", kind, err)
		}
	}
	c.conns = nil
	return firstErr
}

// connFor returns the UDP connection used for kind, dialing one on
// first use and keeping it open across calls.
func (c *Client) connFor(kind radius.Kind) (*net.UDPConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("radclient: client is closed")
	}
	if conn, ok := c.conns[kind]; ok {
		return conn, nil
	}

	addr := net.JoinHostPort(c.server, strconv.Itoa(c.host.Port(kind)))
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("radclient: dial %s %s: %w", kind, addr, err)
	}
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("radclient: dial %s %s: unexpected connection type %T", kind, addr, conn)
	}

	c.conns[kind] = udpConn
	return udpConn, nil
}
