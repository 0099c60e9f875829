// radiusd is the example RADIUS server front-end, mirroring pyrad's
// example/server.py: it loads a host table and bind configuration,
// answers Access-Request with a fixed Access-Accept, and acknowledges
// everything else.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wichert/goradius/internal/config"
	radmetrics "github.com/wichert/goradius/internal/metrics"
	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
	"github.com/wichert/goradius/internal/radserver"
)

// shutdownTimeout bounds how long the metrics HTTP server is given to
// drain active connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("radiusd starting",
		slog.Any("bind_addrs", cfg.Server.BindAddrs),
		slog.Int("auth_port", cfg.Server.AuthPort),
		slog.Int("acct_port", cfg.Server.AcctPort),
		slog.Bool("coa_enabled", cfg.Server.EnableCoA),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	reg := prometheus.NewRegistry()
	collector := radmetrics.NewCollector(reg)

	hosts := radserver.NewHostTable()
	if err := loadHosts(hosts, cfg.Peers); err != nil {
		logger.Error("failed to load peers", slog.String("error", err.Error()))
		return 1
	}

	srv, err := newServer(cfg, hosts, collector, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return 1
	}

	if err := runDaemon(cfg, srv, reg, logger, *configPath, logLevel, hosts); err != nil {
		logger.Error("radiusd exited with error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("radiusd stopped")
	return 0
}

// newServer builds a radserver.Server bound to every configured address,
// wired to collector and logger.
func newServer(cfg *config.Config, hosts *radserver.HostTable, collector *radmetrics.Collector, logger *slog.Logger) (*radserver.Server, error) {
	opts := []radserver.Option{
		radserver.WithPorts(cfg.Server.AuthPort, cfg.Server.AcctPort, cfg.Server.CoAPort),
		radserver.WithLogger(logger),
		radserver.WithMetrics(collector),
	}
	if cfg.Server.EnableCoA {
		opts = append(opts, radserver.WithCoA())
	}
	if !cfg.Server.ReusePort {
		opts = append(opts, radserver.WithoutReusePort())
	}

	srv := radserver.New(raddict.Standard(), hosts, exampleHandler{logger: logger}, opts...)

	ctx := context.Background()
	for _, a := range cfg.Server.BindAddrs {
		addr, err := netip.ParseAddr(a)
		if err != nil {
			return nil, fmt.Errorf("parse bind address %q: %w", a, err)
		}
		if err := srv.BindAddress(ctx, addr); err != nil {
			return nil, fmt.Errorf("bind address %s: %w", a, err)
		}
	}
	return srv, nil
}

// loadHosts populates hosts from the configured peer list
// (pyrad.server.RemoteHost).
func loadHosts(hosts *radserver.HostTable, peers []config.PeerConfig) error {
	for _, pc := range peers {
		addr, err := pc.Addr()
		if err != nil {
			return fmt.Errorf("peer %q: %w", pc.Name, err)
		}
		hosts.Add(radserver.RemoteHost{Address: addr, Secret: []byte(pc.Secret), Name: pc.Name})
	}
	return nil
}

// runDaemon runs the server's receive loops and the metrics HTTP server
// together under an errgroup with a signal-aware context: either one
// exiting, or a SIGINT/SIGTERM, tears both down.
func runDaemon(
	cfg *config.Config,
	srv *radserver.Server,
	reg *prometheus.Registry,
	logger *slog.Logger,
	configPath string,
	logLevel *slog.LevelVar,
	hosts *radserver.HostTable,
) error {
	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info("metrics server listening",
			slog.String("addr", cfg.Metrics.Addr),
			slog.String("path", cfg.Metrics.Path),
		)
		return listenAndServe(gCtx, metricsSrv, cfg.Metrics.Addr)
	})

	known := peerAddrSet(cfg.Peers)
	sigHUP := make(chan os.Signal, 1)
	signal.Notify(sigHUP, syscall.SIGHUP)
	g.Go(func() error {
		defer signal.Stop(sigHUP)
		handleSIGHUP(gCtx, sigHUP, configPath, logLevel, hosts, &known, logger)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(gCtx, metricsSrv)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run daemon: %w", err)
	}
	return nil
}

// peerAddrSet collects the set of peer addresses currently loaded into
// the host table, used to detect removed peers on reload.
func peerAddrSet(peers []config.PeerConfig) map[netip.Addr]struct{} {
	set := make(map[netip.Addr]struct{}, len(peers))
	for _, pc := range peers {
		if addr, err := pc.Addr(); err == nil {
			set[addr] = struct{}{}
		}
	}
	return set
}

// handleSIGHUP reloads configuration on SIGHUP: the dynamic log level is
// updated in place, and the host table is reconciled against the new
// peer list (entries removed from config are evicted, new/changed
// entries are (re)added). Blocks until ctx is cancelled.
func handleSIGHUP(
	ctx context.Context,
	sigHUP <-chan os.Signal,
	configPath string,
	logLevel *slog.LevelVar,
	hosts *radserver.HostTable,
	known *map[netip.Addr]struct{},
	logger *slog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigHUP:
			logger.Info("received SIGHUP, reloading configuration")
			reloadConfig(configPath, logLevel, hosts, known, logger)
		}
	}
}

func reloadConfig(
	configPath string,
	logLevel *slog.LevelVar,
	hosts *radserver.HostTable,
	known *map[netip.Addr]struct{},
	logger *slog.Logger,
) {
	newCfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to reload configuration, keeping current settings",
			slog.String("error", err.Error()),
		)
		return
	}

	oldLevel := logLevel.Level()
	newLevel := config.ParseLogLevel(newCfg.Log.Level)
	logLevel.Set(newLevel)
	logger.Info("configuration reloaded",
		slog.String("old_log_level", oldLevel.String()),
		slog.String("new_log_level", newLevel.String()),
	)

	newKnown := peerAddrSet(newCfg.Peers)
	for addr := range *known {
		if _, stillPresent := newKnown[addr]; !stillPresent {
			hosts.Remove(addr)
			logger.Info("removed peer", slog.String("addr", addr.String()))
		}
	}
	if err := loadHosts(hosts, newCfg.Peers); err != nil {
		logger.Error("failed to apply reloaded peers", slog.String("error", err.Error()))
		return
	}
	*known = newKnown
}

// gracefulShutdown drains the metrics HTTP server within shutdownTimeout.
// The server's own receive loops are stopped by gCtx cancellation, which
// unblocks every bound socket's pending read (internal/radserver.recvLoop).
func gracefulShutdown(ctx context.Context, metricsSrv *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

func listenAndServe(ctx context.Context, srv *http.Server, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func newLoggerWithLevel(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// exampleHandler implements radserver.Handler, mirroring pyrad's
// example/server.py FakeServer: every Access-Request is accepted with a
// fixed Framed-IP-Address/Service-Type reply, and every
// accounting/CoA/Disconnect request is acknowledged unconditionally.
type exampleHandler struct {
	logger *slog.Logger
}

var _ radserver.Handler = exampleHandler{}

func (h exampleHandler) HandleAuthPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error) {
	h.logAttributes(ctx, req, "auth")

	reply := radius.CreateReply(req, radius.CodeAccessAccept)
	if err := reply.Set("Service-Type", uint32(2)); err != nil { // Framed-User
		return nil, fmt.Errorf("radiusd: set service-type: %w", err)
	}
	if err := reply.Set("Framed-IP-Address", "192.168.0.1"); err != nil {
		return nil, fmt.Errorf("radiusd: set framed-ip-address: %w", err)
	}
	return reply, nil
}

func (h exampleHandler) HandleAcctPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error) {
	h.logAttributes(ctx, req, "acct")
	return radius.CreateReply(req, radius.CodeAccountingResponse), nil
}

func (h exampleHandler) HandleCoAPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error) {
	h.logAttributes(ctx, req, "coa")
	return radius.CreateReply(req, radius.CodeCoAACK), nil
}

func (h exampleHandler) HandleDisconnectPacket(ctx context.Context, req *radius.Packet) (*radius.Packet, error) {
	h.logAttributes(ctx, req, "disconnect")
	return radius.CreateReply(req, radius.CodeDisconnectACK), nil
}

func (h exampleHandler) logAttributes(ctx context.Context, req *radius.Packet, kind string) {
	h.logger.InfoContext(ctx, "received packet",
		slog.String("kind", kind),
		slog.String("code", req.Code.String()),
		slog.Int("id", int(req.ID)),
	)
}
