package radclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/wichert/goradius/internal/radius"
)

// Exchange sends req and blocks for a verified reply, resending up to
// c.retries times with a c.timeout wait per attempt (RFC 2865 §2.4).
// Accounting-Request's Acct-Delay-Time is bumped by c.timeout on every
// attempt past the
// first, matching pyrad's behaviour exactly. req.Encode is called
// fresh on every attempt, so a bumped Acct-Delay-Time and its
// recomputed Request-Authenticator both reach the wire. Exchange
// returns radius.ErrTimeout once every attempt is exhausted without a
// reply that passes id and Response-Authenticator verification.
func (c *Client) Exchange(ctx context.Context, req *radius.Packet) (*radius.Packet, error) {
	conn, err := c.connFor(req.Kind())
	if err != nil {
		return nil, err
	}

	logger := c.logger.With(slog.String("code", req.Code.String()))

	for attempt := 0; attempt < c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if attempt > 0 && req.Code == radius.CodeAccountingRequest {
			if err := bumpAcctDelayTime(req, c.timeout); err != nil {
				return nil, err
			}
		}

		raw, err := req.Encode(c.alloc)
		if err != nil {
			return nil, fmt.Errorf("radclient: encode: %w", err)
		}

		deadline := time.Now().Add(c.timeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}

		if attempt > 0 {
			c.incRetry(req.Code.String())
		}
		role := req.Kind().String()
		c.incSent(role, req.Code.String())

		reply, err := c.sendAndWait(conn, raw, req, deadline, logger)
		if err == nil {
			c.incReceived(role, reply.Code.String())
			return reply, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		logger.Debug("attempt produced no verified reply", slog.Int("attempt", attempt))
	}

	c.incTimeout(req.Code.String())
	return nil, fmt.Errorf("radclient: exchange %s: %w", req.Code, radius.ErrTimeout)
}

func (c *Client) incRetry(code string) {
	if c.metrics != nil {
		c.metrics.IncClientRetry(code)
	}
}

func (c *Client) incTimeout(code string) {
	if c.metrics != nil {
		c.metrics.IncClientTimeout(code)
	}
}

func (c *Client) incSent(role, code string) {
	if c.metrics != nil {
		c.metrics.IncPacketsSent(role, code)
	}
}

func (c *Client) incReceived(role, code string) {
	if c.metrics != nil {
		c.metrics.IncPacketsReceived(role, code)
	}
}

// sendAndWait writes raw once and reads datagrams until deadline,
// discarding any reply that does not match req's id or whose
// Response-Authenticator does not verify. A failed verification is
// silently discarded, not surfaced as an error, so a spoofed or stale
// datagram cannot short-circuit a retry.
func (c *Client) sendAndWait(
	conn *net.UDPConn,
	raw []byte,
	req *radius.Packet,
	deadline time.Time,
	logger *slog.Logger,
) (*radius.Packet, error) {
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, fmt.Errorf("radclient: set write deadline: %w", err)
	}
	if _, err := conn.Write(raw); err != nil {
		return nil, fmt.Errorf("radclient: write: %w", err)
	}

	reqAuth, ok := req.Authenticator()
	if !ok {
		return nil, fmt.Errorf("radclient: exchange: %w", radius.ErrNoAuthenticator)
	}

	buf := make([]byte, 4096)
	for {
		if !time.Now().Before(deadline) {
			return nil, radius.ErrTimeout
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("radclient: set read deadline: %w", err)
		}

		n, err := conn.Read(buf)
		if err != nil {
			return nil, radius.ErrTimeout
		}

		reply, err := c.host.DecodePacket(buf[:n])
		if err != nil {
			logger.Debug("discarding malformed reply", slog.Any("error", err))
			continue
		}
		if reply.ID != req.ID {
			continue
		}
		if err := reply.VerifyResponseAuthenticator(reqAuth); err != nil {
			logger.Debug("discarding reply failing verification", slog.Any("error", err))
			continue
		}
		return reply, nil
	}
}

// bumpAcctDelayTime implements pyrad's per-retry Acct-Delay-Time
// adjustment for Accounting-Request (client.py Client._send_packet):
// add timeout seconds to the existing value, or set it to timeout
// seconds if the attribute is absent.
func bumpAcctDelayTime(p *radius.Packet, timeout time.Duration) error {
	delaySeconds := uint32(timeout.Round(time.Second) / time.Second) //nolint:gosec // G115: timeouts are small by construction

	if !p.Contains("Acct-Delay-Time") {
		return p.Set("Acct-Delay-Time", delaySeconds)
	}

	vals, err := p.Get("Acct-Delay-Time")
	if err != nil {
		return fmt.Errorf("radclient: get acct-delay-time: %w", err)
	}
	current, ok := vals[0].(uint32)
	if !ok {
		return fmt.Errorf("radclient: acct-delay-time: unexpected stored type %T", vals[0])
	}
	return p.Set("Acct-Delay-Time", current+delaySeconds)
}
