//go:build integration

package integration_test

import (
	"context"
	"log/slog"
	"net/netip"
	"os"
	"strings"
	"testing"

	"github.com/wichert/goradius/cmd/radclient/commands"
	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
	"github.com/wichert/goradius/internal/radserver"
)

// cliSecret is the shared secret the package-level test server and
// every CLI test below agree on.
const cliSecret = "cli-integration-secret"

// cliHandler answers Access-Request with accept/deny by password and
// acknowledges every other role, giving the CLI tests something to
// assert on.
type cliHandler struct{}

func (cliHandler) HandleAuthPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	vals, _ := req.Get("User-Password")
	if len(vals) == 1 && vals[0] == "correct-password" {
		return radius.CreateReply(req, radius.CodeAccessAccept), nil
	}
	return radius.CreateReply(req, radius.CodeAccessReject), nil
}

func (cliHandler) HandleAcctPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	return radius.CreateReply(req, radius.CodeAccountingResponse), nil
}

func (cliHandler) HandleCoAPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	return radius.CreateReply(req, radius.CodeCoAACK), nil
}

func (cliHandler) HandleDisconnectPacket(_ context.Context, req *radius.Packet) (*radius.Packet, error) {
	return radius.CreateReply(req, radius.CodeDisconnectACK), nil
}

// TestMain starts one radserver bound to the default auth/acct/coa
// ports on loopback for the whole package run, shared by every CLI
// test below: radclient has no --port flags, so it always dials the
// well-known ports, and rebinding them per-test would race the
// previous test's asynchronous socket teardown.
func TestMain(m *testing.M) {
	dict := raddict.Standard()
	hosts := radserver.NewHostTable()
	loopback := netip.MustParseAddr("127.0.0.1")
	hosts.Add(radserver.RemoteHost{Address: loopback, Secret: []byte(cliSecret), Name: "cli-test"})

	srv := radserver.New(dict, hosts, cliHandler{},
		radserver.WithoutReusePort(),
		radserver.WithCoA(),
		radserver.WithLogger(slog.New(slog.DiscardHandler)),
	)

	// No cancellation: the server runs for the life of the test binary
	// and os.Exit below tears it down with the process.
	ctx := context.Background()
	if err := srv.BindAddress(ctx, loopback); err != nil {
		panic(err)
	}
	go func() { _ = srv.Run(ctx) }()

	os.Exit(m.Run())
}

// runCLI invokes commands.Run(args) with stdout captured, returning
// its output and exit code. Run (rather than exec'ing a built binary)
// keeps this an in-process integration test instead of shelling out to
// a built radclient binary.
func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w

	done := make(chan string, 1)
	go func() {
		var sb strings.Builder
		buf := make([]byte, 4096)
		for {
			n, readErr := r.Read(buf)
			if n > 0 {
				sb.Write(buf[:n])
			}
			if readErr != nil {
				break
			}
		}
		done <- sb.String()
	}()

	code := commands.Run(args)

	os.Stdout = orig
	_ = w.Close()
	out := <-done
	_ = r.Close()
	return out, code
}

func TestCLIAuthAcceptAndReject(t *testing.T) {
	out, code := runCLI(t, "auth",
		"--server", "127.0.0.1",
		"--secret", cliSecret,
		"--username", "alice",
		"--password", "correct-password",
	)
	if code != 0 {
		t.Fatalf("auth exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "Access accepted") {
		t.Fatalf("output = %q, want it to contain %q", out, "Access accepted")
	}

	out, code = runCLI(t, "auth",
		"--server", "127.0.0.1",
		"--secret", cliSecret,
		"--username", "alice",
		"--password", "wrong-password",
	)
	if code != 0 {
		t.Fatalf("auth exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "Access denied") {
		t.Fatalf("output = %q, want it to contain %q", out, "Access denied")
	}
}

func TestCLIAuthRequiresSecret(t *testing.T) {
	out, code := runCLI(t, "auth", "--server", "127.0.0.1", "--username", "alice")
	if code == 0 {
		t.Fatalf("auth without --secret succeeded, output:\n%s", out)
	}
}

func TestCLIAcctStartStop(t *testing.T) {
	out, code := runCLI(t, "acct",
		"--server", "127.0.0.1",
		"--secret", cliSecret,
		"--username", "alice",
		"--session-id", "cli-sess-1",
	)
	if code != 0 {
		t.Fatalf("acct exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "Sending accounting start packet") || !strings.Contains(out, "Sending accounting stop packet") {
		t.Fatalf("output = %q, want both start and stop lines", out)
	}
}

func TestCLIStatus(t *testing.T) {
	out, code := runCLI(t, "status", "--server", "127.0.0.1", "--secret", cliSecret)
	if code != 0 {
		t.Fatalf("status exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "Sending Status-Server request") {
		t.Fatalf("output = %q, want it to contain the request line", out)
	}
}

func TestCLIVersion(t *testing.T) {
	out, code := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("version exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "radclient") {
		t.Fatalf("output = %q, want it to contain %q", out, "radclient")
	}
}
