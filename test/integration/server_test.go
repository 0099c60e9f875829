//go:build integration

// Package integration_test exercises internal/radclient and
// internal/radserver together over real loopback UDP sockets, rather
// than against a bare fake connection as the unit tests do.
package integration_test

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"testing"
	"time"

	"github.com/wichert/goradius/internal/radclient"
	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
	"github.com/wichert/goradius/internal/radserver"
)

// lifecycleHandler answers every request role with a fixed accept/ack,
// the same shape as cmd/radiusd's example handler, trimmed to what
// this test needs to assert on.
type lifecycleHandler struct{}

func (lifecycleHandler) HandleAuthPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	reply := radius.CreateReply(req, radius.CodeAccessAccept)
	if err := reply.Set("Framed-IP-Address", "192.168.0.1"); err != nil {
		return nil, err
	}
	return reply, nil
}

func (lifecycleHandler) HandleAcctPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	return radius.CreateReply(req, radius.CodeAccountingResponse), nil
}

func (lifecycleHandler) HandleCoAPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	return radius.CreateReply(req, radius.CodeCoAACK), nil
}

func (lifecycleHandler) HandleDisconnectPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	return radius.CreateReply(req, radius.CodeDisconnectACK), nil
}

// startServer binds a radserver.Server to ephemeral loopback ports
// (auth, acct, and CoA) and returns a radius.Host whose port fields
// have been pointed at them, mirroring startTestServer in
// internal/radserver's own unit tests but wiring a real radclient
// on top instead of raw socket writes.
func startServer(t *testing.T, secret []byte) *radius.Host {
	t.Helper()

	dict := raddict.Standard()
	hosts := radserver.NewHostTable()
	loopback := netip.MustParseAddr("127.0.0.1")
	hosts.Add(radserver.RemoteHost{Address: loopback, Secret: secret, Name: "test-client"})

	srv := radserver.New(dict, hosts, lifecycleHandler{},
		radserver.WithPorts(0, 0, 0),
		radserver.WithoutReusePort(),
		radserver.WithCoA(),
		radserver.WithLogger(slog.New(slog.DiscardHandler)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := srv.BindAddress(ctx, loopback); err != nil {
		t.Fatalf("bind: %v", err)
	}
	go func() { _ = srv.Run(ctx) }()

	host := radius.NewHost(dict, secret)
	authPort, _ := srv.LocalPort(radius.KindAuth)
	acctPort, _ := srv.LocalPort(radius.KindAcct)
	coaPort, _ := srv.LocalPort(radius.KindCoA)
	host.AuthPort, host.AcctPort, host.CoAPort = authPort, acctPort, coaPort
	return host
}

func TestClientServerLifecycle(t *testing.T) {
	t.Parallel()

	secret := []byte("integration-secret")
	host := startServer(t, secret)

	client, err := radclient.New(host, "127.0.0.1", radclient.WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ctx := t.Context()

	// --- Access-Request ---
	authReq := host.CreateAuthPacket(radius.CodeAccessRequest)
	if err := authReq.Set("User-Name", "alice"); err != nil {
		t.Fatalf("set user-name: %v", err)
	}
	if err := authReq.Set("User-Password", "hunter2"); err != nil {
		t.Fatalf("set user-password: %v", err)
	}
	authReply, err := client.Exchange(ctx, authReq)
	if err != nil {
		t.Fatalf("auth exchange: %v", err)
	}
	if authReply.Code != radius.CodeAccessAccept {
		t.Fatalf("auth code = %v, want Access-Accept", authReply.Code)
	}
	vals, err := authReply.Get("Framed-IP-Address")
	if err != nil || len(vals) != 1 || vals[0].(string) != "192.168.0.1" {
		t.Fatalf("Framed-IP-Address = %v, %v", vals, err)
	}

	// --- Accounting-Request: Start then Stop ---
	acctBase := host.CreateAcctPacket(radius.CodeAccountingRequest)
	if err := acctBase.Set("Acct-Session-Id", "sess-1"); err != nil {
		t.Fatalf("set acct-session-id: %v", err)
	}

	start := acctBase.Clone()
	if err := start.Set("Acct-Status-Type", "Start"); err != nil {
		t.Fatalf("set acct-status-type: %v", err)
	}
	if reply, err := client.Exchange(ctx, start); err != nil || reply.Code != radius.CodeAccountingResponse {
		t.Fatalf("acct start: reply=%v err=%v", reply, err)
	}

	stop := acctBase.Clone()
	if err := stop.Set("Acct-Status-Type", "Stop"); err != nil {
		t.Fatalf("set acct-status-type: %v", err)
	}
	if reply, err := client.Exchange(ctx, stop); err != nil || reply.Code != radius.CodeAccountingResponse {
		t.Fatalf("acct stop: reply=%v err=%v", reply, err)
	}

	// --- CoA-Request ---
	coaReq := host.CreateCoAPacket(radius.CodeCoARequest)
	if err := coaReq.Set("Acct-Session-Id", "sess-1"); err != nil {
		t.Fatalf("set acct-session-id: %v", err)
	}
	if reply, err := client.Exchange(ctx, coaReq); err != nil || reply.Code != radius.CodeCoAACK {
		t.Fatalf("coa: reply=%v err=%v", reply, err)
	}

	// --- Disconnect-Request ---
	disconnectReq := host.CreateCoAPacket(radius.CodeDisconnectRequest)
	if err := disconnectReq.Set("Acct-Session-Id", "sess-1"); err != nil {
		t.Fatalf("set acct-session-id: %v", err)
	}
	if reply, err := client.Exchange(ctx, disconnectReq); err != nil || reply.Code != radius.CodeDisconnectACK {
		t.Fatalf("disconnect: reply=%v err=%v", reply, err)
	}

	// --- Status-Server ---
	statusReq := host.CreateAuthPacket(radius.CodeStatusServer)
	statusReq.AddMessageAuthenticator()
	if reply, err := client.Exchange(ctx, statusReq); err != nil || reply.Code != radius.CodeAccessAccept {
		t.Fatalf("status: reply=%v err=%v", reply, err)
	}
}

func TestClientServerWrongSecretIsRejected(t *testing.T) {
	t.Parallel()

	host := startServer(t, []byte("integration-secret"))

	// A client using the wrong secret gets back a reply whose Response
	// Authenticator won't verify, which Exchange treats as a dropped
	// reply and ultimately a timeout once retries are exhausted.
	wrongHost := radius.NewHost(raddict.Standard(), []byte("wrong-secret"))
	wrongHost.AuthPort, wrongHost.AcctPort, wrongHost.CoAPort = host.AuthPort, host.AcctPort, host.CoAPort

	client, err := radclient.New(wrongHost, "127.0.0.1",
		radclient.WithTimeout(100*time.Millisecond),
		radclient.WithRetries(2),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	req := wrongHost.CreateAuthPacket(radius.CodeAccessRequest)
	if _, err := client.Exchange(t.Context(), req); !errors.Is(err, radius.ErrTimeout) {
		t.Fatalf("exchange with wrong secret: err = %v, want ErrTimeout", err)
	}
}
