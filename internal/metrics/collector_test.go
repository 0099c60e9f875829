package radmetrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	radmetrics "github.com/wichert/goradius/internal/metrics"
)

func TestNewCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := radmetrics.NewCollector(reg)

	if c.PacketsSent == nil {
		t.Error("PacketsSent is nil")
	}
	if c.PacketsReceived == nil {
		t.Error("PacketsReceived is nil")
	}
	if c.PacketsDropped == nil {
		t.Error("PacketsDropped is nil")
	}
	if c.AuthFailures == nil {
		t.Error("AuthFailures is nil")
	}
	if c.ClientRetries == nil {
		t.Error("ClientRetries is nil")
	}
	if c.ClientTimeouts == nil {
		t.Error("ClientTimeouts is nil")
	}

	// Verify all metrics are registered by gathering them.
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	// No data yet, so families may be empty -- but registration must not panic.
	_ = families
}

func TestPacketCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := radmetrics.NewCollector(reg)

	c.IncPacketsSent("auth", "Access-Request")
	c.IncPacketsSent("auth", "Access-Request")
	c.IncPacketsSent("auth", "Access-Request")

	val := counterValue(t, c.PacketsSent, "auth", "Access-Request")
	if val != 3 {
		t.Errorf("PacketsSent = %v, want 3", val)
	}

	c.IncPacketsReceived("auth", "Access-Accept")
	c.IncPacketsReceived("auth", "Access-Accept")

	val = counterValue(t, c.PacketsReceived, "auth", "Access-Accept")
	if val != 2 {
		t.Errorf("PacketsReceived = %v, want 2", val)
	}

	c.IncPacketsDropped("auth", "unknown host")

	val = counterValue(t, c.PacketsDropped, "auth", "unknown host")
	if val != 1 {
		t.Errorf("PacketsDropped = %v, want 1", val)
	}
}

func TestAuthFailures(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := radmetrics.NewCollector(reg)

	c.IncAuthFailures("auth")
	c.IncAuthFailures("auth")

	val := counterValue(t, c.AuthFailures, "auth")
	if val != 2 {
		t.Errorf("AuthFailures = %v, want 2", val)
	}
}

func TestClientRetriesAndTimeouts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := radmetrics.NewCollector(reg)

	c.IncClientRetry("Accounting-Request")
	c.IncClientRetry("Accounting-Request")
	c.IncClientTimeout("Access-Request")

	val := counterValue(t, c.ClientRetries, "Accounting-Request")
	if val != 2 {
		t.Errorf("ClientRetries = %v, want 2", val)
	}

	val = counterValue(t, c.ClientTimeouts, "Access-Request")
	if val != 1 {
		t.Errorf("ClientTimeouts = %v, want 1", val)
	}
}

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

// counterValue reads the current value of a CounterVec with the given labels.
func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}

	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetCounter().GetValue()
}
