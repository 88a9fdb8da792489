// Package config loads the gateway's configuration from command-line
// flags and environment variables (env overrides flags); no config-file
// library is involved.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds every knob the gateway's handlers and transports need.
type Config struct {
	// HTTP surface.
	ListenAddr string
	LogLevel   string

	// HSS / Cx. HSSConfigured false puts every handler
	// in no-HSS/cache-only mode.
	HSSConfigured     bool
	OriginHost        string
	OriginRealm       string
	DestinationHost   string
	DestinationRealm  string
	DefaultServerName string

	// ReregistrationInterval is the HSS re-registration interval R:
	// records are cached for 2R, and R is the
	// threshold a re-registration's remaining TTL is compared against.
	ReregistrationInterval time.Duration

	// Sprout collaborator.
	SproutAddr string

	// Optional gRPC stats sink for the latency histograms; empty
	// means aggregate in-process only.
	StatsSinkAddr string

	CacheCleanupInterval time.Duration
}

// Load parses flags, applies environment overrides, and returns the
// resulting Config.
func Load() *Config {
	cfg := &Config{
		ReregistrationInterval: 30 * time.Minute,
		CacheCleanupInterval:   30 * time.Second,
	}

	flag.StringVar(&cfg.ListenAddr, "listen", ":8888", "HTTP listen address")
	flag.StringVar(&cfg.LogLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.HSSConfigured, "hss-configured", false, "whether an upstream HSS is configured (false = cache-only mode)")
	flag.StringVar(&cfg.OriginHost, "origin-host", "cxgateway.example.com", "Diameter Origin-Host")
	flag.StringVar(&cfg.OriginRealm, "origin-realm", "example.com", "Diameter Origin-Realm")
	flag.StringVar(&cfg.DestinationHost, "destination-host", "", "Diameter Destination-Host (empty lets the transport route by realm)")
	flag.StringVar(&cfg.DestinationRealm, "destination-realm", "example.com", "Diameter Destination-Realm")
	flag.StringVar(&cfg.DefaultServerName, "server-name", "sip:sprout.example.com", "this gateway's S-CSCF Server-Name, carried on SAR/UAR")
	flag.DurationVar(&cfg.ReregistrationInterval, "reregistration-interval", cfg.ReregistrationInterval, "HSS re-registration interval R; cache TTL is 2R")
	flag.StringVar(&cfg.SproutAddr, "sprout-addr", "http://localhost:9888", "base URL of the Sprout registrar collaborator")
	flag.StringVar(&cfg.StatsSinkAddr, "stats-sink-addr", "", "optional gRPC address to forward latency histograms to (empty = in-process only)")
	flag.DurationVar(&cfg.CacheCleanupInterval, "cache-cleanup-interval", cfg.CacheCleanupInterval, "background TTL-eviction sweep interval")

	flag.Parse()

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOGLEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HSS_CONFIGURED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.HSSConfigured = b
		}
	}
	if v := os.Getenv("ORIGIN_HOST"); v != "" {
		cfg.OriginHost = v
	}
	if v := os.Getenv("ORIGIN_REALM"); v != "" {
		cfg.OriginRealm = v
	}
	if v := os.Getenv("DESTINATION_HOST"); v != "" {
		cfg.DestinationHost = v
	}
	if v := os.Getenv("DESTINATION_REALM"); v != "" {
		cfg.DestinationRealm = v
	}
	if v := os.Getenv("SERVER_NAME"); v != "" {
		cfg.DefaultServerName = v
	}
	if v := os.Getenv("REREGISTRATION_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReregistrationInterval = d
		}
	}
	if v := os.Getenv("SPROUT_ADDR"); v != "" {
		cfg.SproutAddr = v
	}
	if v := os.Getenv("STATS_SINK_ADDR"); v != "" {
		cfg.StatsSinkAddr = v
	}

	return cfg
}

// CacheTTL returns 2R, the cache write TTL used whenever an HSS is
// configured. When no HSS is configured, callers use 0
// (no expiry) directly rather than calling this.
func (c *Config) CacheTTL() time.Duration {
	return 2 * c.ReregistrationInterval
}
