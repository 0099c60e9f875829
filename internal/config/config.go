// Package config manages goradius daemon and client configuration using
// koanf/v2.
//
// Supports YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete goradius configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Client  ClientConfig  `koanf:"client"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Peers   []PeerConfig  `koanf:"peers"`
}

// ServerConfig holds the radiusd bind configuration.
type ServerConfig struct {
	// BindAddrs lists the addresses radiusd binds to. One UDP socket is
	// opened per (address, enabled service) pair.
	BindAddrs []string `koanf:"bind_addrs"`

	// AuthPort, AcctPort, CoAPort are the UDP ports for each service
	// (RFC 2865/2866/5176 conventional defaults: 1812/1813/3799).
	AuthPort int `koanf:"auth_port"`
	AcctPort int `koanf:"acct_port"`
	CoAPort  int `koanf:"coa_port"`

	// EnableCoA opens the CoA/Disconnect socket family, disabled by
	// default to match the source's coa_enabled=False default.
	EnableCoA bool `koanf:"enable_coa"`

	// ReusePort sets SO_REUSEPORT on bound sockets for multi-process
	// scale-out.
	ReusePort bool `koanf:"reuse_port"`
}

// ClientConfig holds the radclient default retry/timeout parameters
// (RFC 2865 §2.4).
type ClientConfig struct {
	// Retries is the number of send attempts before giving up.
	Retries int `koanf:"retries"`

	// Timeout is the per-attempt wait for a reply.
	Timeout time.Duration `koanf:"timeout"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// PeerConfig describes one entry in the server's host table: a RADIUS
// client permitted to talk to this server, identified by source
// address.
type PeerConfig struct {
	// Address is the peer's source IP address.
	Address string `koanf:"address"`

	// Secret is the shared secret used to sign/verify packets from this
	// peer.
	Secret string `koanf:"secret"`

	// Name is a human-readable label for logging.
	Name string `koanf:"name"`
}

// Addr parses Address as a netip.Addr.
func (pc PeerConfig) Addr() (netip.Addr, error) {
	if pc.Address == "" {
		return netip.Addr{}, fmt.Errorf("peer address: %w", ErrInvalidPeerAddress)
	}
	addr, err := netip.ParseAddr(pc.Address)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("parse peer address %q: %w: %w", pc.Address, ErrInvalidPeerAddress, err)
	}
	return addr, nil
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// Conventional RADIUS UDP ports (RFC 2865 §1, RFC 2866 §1, RFC 5176 §3).
const (
	defaultAuthPort = 1812
	defaultAcctPort = 1813
	defaultCoAPort  = 3799
)

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddrs: []string{"0.0.0.0"},
			AuthPort:  defaultAuthPort,
			AcctPort:  defaultAcctPort,
			CoAPort:   defaultCoAPort,
			EnableCoA: false,
			ReusePort: true,
		},
		Client: ClientConfig{
			Retries: 3,
			Timeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for goradius configuration.
// Variables are named GORADIUS_<section>_<key>, e.g., GORADIUS_METRICS_ADDR.
const envPrefix = "GORADIUS_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (GORADIUS_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults.
//
// Environment variable mapping:
//
//	GORADIUS_SERVER_AUTH_PORT  -> server.auth_port
//	GORADIUS_CLIENT_RETRIES    -> client.retries
//	GORADIUS_METRICS_ADDR      -> metrics.addr
//	GORADIUS_LOG_LEVEL         -> log.level
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms GORADIUS_SERVER_AUTH_PORT -> server.auth_port.
// Strips the GORADIUS_ prefix, lowercases, and replaces the first _ with .
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"server.bind_addrs": defaults.Server.BindAddrs,
		"server.auth_port":  defaults.Server.AuthPort,
		"server.acct_port":  defaults.Server.AcctPort,
		"server.coa_port":   defaults.Server.CoAPort,
		"server.enable_coa": defaults.Server.EnableCoA,
		"server.reuse_port": defaults.Server.ReusePort,
		"client.retries":    defaults.Client.Retries,
		"client.timeout":    defaults.Client.Timeout.String(),
		"metrics.addr":      defaults.Metrics.Addr,
		"metrics.path":      defaults.Metrics.Path,
		"log.level":         defaults.Log.Level,
		"log.format":        defaults.Log.Format,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyBindAddrs indicates the server has no bind addresses.
	ErrEmptyBindAddrs = errors.New("server.bind_addrs must not be empty")

	// ErrInvalidRetries indicates the client retry count is less than 1.
	ErrInvalidRetries = errors.New("client.retries must be >= 1")

	// ErrInvalidTimeout indicates the client timeout is non-positive.
	ErrInvalidTimeout = errors.New("client.timeout must be > 0")

	// ErrInvalidPeerAddress indicates a peer entry has an invalid address.
	ErrInvalidPeerAddress = errors.New("peer address is invalid")

	// ErrEmptyPeerSecret indicates a peer entry has no shared secret.
	ErrEmptyPeerSecret = errors.New("peer secret must not be empty")

	// ErrDuplicatePeerAddress indicates two peer entries share an address.
	ErrDuplicatePeerAddress = errors.New("duplicate peer address")
)

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if len(cfg.Server.BindAddrs) == 0 {
		return ErrEmptyBindAddrs
	}

	if cfg.Client.Retries < 1 {
		return ErrInvalidRetries
	}

	if cfg.Client.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return validatePeers(cfg.Peers)
}

// validatePeers checks each host-table entry for correctness.
func validatePeers(peers []PeerConfig) error {
	seen := make(map[string]struct{}, len(peers))

	for i, pc := range peers {
		addr, err := pc.Addr()
		if err != nil {
			return fmt.Errorf("peers[%d]: %w", i, err)
		}

		if pc.Secret == "" {
			return fmt.Errorf("peers[%d]: %w", i, ErrEmptyPeerSecret)
		}

		key := addr.String()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("peers[%d] address %q: %w", i, key, ErrDuplicatePeerAddress)
		}
		seen[key] = struct{}{}
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
