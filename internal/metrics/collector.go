// Package radmetrics exposes Prometheus counters and gauges for the
// goradius client and server.
package radmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "goradius"
	subsystem = "radius"
)

// Label names for RADIUS metrics.
const (
	labelRole   = "role"   // "auth", "acct", "coa"
	labelCode   = "code"   // RADIUS packet code name, e.g. "Access-Request"
	labelReason = "reason" // drop reason, e.g. "unknown host", "port"
)

// -------------------------------------------------------------------------
// Collector — Prometheus RADIUS Metrics
// -------------------------------------------------------------------------

// Collector holds all RADIUS Prometheus metrics.
//
//   - Packet counters track send/receive/drop volume per role and code.
//   - AuthFailures flags Response-Authenticator / Message-Authenticator
//     verification failures for alerting.
//   - ClientRetries/ClientTimeouts track radclient exchange health.
type Collector struct {
	// PacketsSent counts RADIUS packets transmitted, by role and code.
	PacketsSent *prometheus.CounterVec

	// PacketsReceived counts RADIUS packets received, by role and code.
	PacketsReceived *prometheus.CounterVec

	// PacketsDropped counts server-side datagrams dropped before
	// dispatch, by role and reason ("unknown host", "port", "decode
	// error", "handler error").
	PacketsDropped *prometheus.CounterVec

	// AuthFailures counts Response-Authenticator / Message-Authenticator
	// verification failures, by role.
	AuthFailures *prometheus.CounterVec

	// ClientRetries counts radclient.Exchange retransmissions, by code.
	ClientRetries *prometheus.CounterVec

	// ClientTimeouts counts radclient.Exchange attempts that exhausted
	// all retries without a verified reply, by code.
	ClientTimeouts *prometheus.CounterVec
}

// NewCollector creates a Collector with all RADIUS metrics registered
// against the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
//
// All metrics are created with the "goradius_radius_" prefix
// (namespace_subsystem) to avoid collisions with other exporters.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.PacketsSent,
		c.PacketsReceived,
		c.PacketsDropped,
		c.AuthFailures,
		c.ClientRetries,
		c.ClientTimeouts,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	roleCodeLabels := []string{labelRole, labelCode}
	dropLabels := []string{labelRole, labelReason}
	roleLabels := []string{labelRole}
	codeLabels := []string{labelCode}

	return &Collector{
		PacketsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_sent_total",
			Help:      "Total RADIUS packets transmitted.",
		}, roleCodeLabels),

		PacketsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_received_total",
			Help:      "Total RADIUS packets received.",
		}, roleCodeLabels),

		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_dropped_total",
			Help:      "Total RADIUS datagrams dropped before dispatch.",
		}, dropLabels),

		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_failures_total",
			Help:      "Total Response-Authenticator/Message-Authenticator verification failures.",
		}, roleLabels),

		ClientRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "client_retries_total",
			Help:      "Total radclient retransmissions.",
		}, codeLabels),

		ClientTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "client_timeouts_total",
			Help:      "Total radclient exchanges that exhausted all retries.",
		}, codeLabels),
	}
}

// -------------------------------------------------------------------------
// Packet Counters
// -------------------------------------------------------------------------

// IncPacketsSent increments the transmitted packets counter for role/code.
func (c *Collector) IncPacketsSent(role, code string) {
	c.PacketsSent.WithLabelValues(role, code).Inc()
}

// IncPacketsReceived increments the received packets counter for role/code.
func (c *Collector) IncPacketsReceived(role, code string) {
	c.PacketsReceived.WithLabelValues(role, code).Inc()
}

// IncPacketsDropped increments the dropped packets counter for role/reason.
func (c *Collector) IncPacketsDropped(role, reason string) {
	c.PacketsDropped.WithLabelValues(role, reason).Inc()
}

// -------------------------------------------------------------------------
// Authentication
// -------------------------------------------------------------------------

// IncAuthFailures increments the authentication failure counter for role.
func (c *Collector) IncAuthFailures(role string) {
	c.AuthFailures.WithLabelValues(role).Inc()
}

// -------------------------------------------------------------------------
// Client Exchange Health
// -------------------------------------------------------------------------

// IncClientRetry increments the retransmission counter for code.
func (c *Collector) IncClientRetry(code string) {
	c.ClientRetries.WithLabelValues(code).Inc()
}

// IncClientTimeout increments the exhausted-retries counter for code.
func (c *Collector) IncClientTimeout(code string) {
	c.ClientTimeouts.WithLabelValues(code).Inc()
}
