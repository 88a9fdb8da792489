// Package appserver assembles every collaborator (cache, Diameter client,
// Sprout client, stats registry, HTTP surface) into one running gateway.
package appserver

import (
	"context"
	"fmt"
	"time"

	"github.com/sebas/cxgateway/internal/config"
	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/handlers/serverinitiated"
	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/httpapi"
	"github.com/sebas/cxgateway/internal/logging"
	"github.com/sebas/cxgateway/internal/sprout"
	"github.com/sebas/cxgateway/internal/stats"
)

// Gateway is the assembled HSS cache and Cx protocol gateway process.
type Gateway struct {
	cfg    *config.Config
	cache  *hsscache.Cache
	stats  *stats.Registry
	sprout *sprout.Client
	http   *httpapi.Server

	// RTR/PPR are server-initiated Diameter commands this gateway
	// answers; the real Diameter transport dispatches inbound requests
	// to these tasks. Exported so cmd/cxgateway can wire them into
	// whatever peer/transport library is configured at deploy time,
	// since that transport is explicitly out of scope.
	RTR *serverinitiated.RegistrationTerminationTask
	PPR *serverinitiated.PushProfileTask
}

// New builds a Gateway from configuration. client is the outbound
// Diameter collaborator (cmd/cxgateway passes diameter.NoopClient; tests
// can pass a diameter.FakeClient).
func New(cfg *config.Config, client diameter.Client) (*Gateway, error) {
	var sink stats.Sink
	if cfg.StatsSinkAddr != "" {
		s, err := stats.NewGRPCSink(stats.DefaultGRPCSinkConfig(cfg.StatsSinkAddr))
		if err != nil {
			return nil, fmt.Errorf("appserver: connect stats sink: %w", err)
		}
		sink = s
	}
	registry := stats.NewRegistry(sink)

	cache := hsscache.NewWithCleanup(cfg.CacheCleanupInterval)
	sessions := cxcodec.NewSessionIDGenerator(cfg.OriginHost, time.Now())
	base := hsstask.New(cfg, cxdict.Default(), cache, client, registry, sessions)

	sproutClient := sprout.NewClient(cfg.SproutAddr)

	g := &Gateway{
		cfg:    cfg,
		cache:  cache,
		stats:  registry,
		sprout: sproutClient,
		http:   httpapi.NewServer(cfg.ListenAddr, base),
		RTR:    serverinitiated.NewRegistrationTerminationTask(base, sproutClient),
		PPR:    serverinitiated.NewPushProfileTask(base),
	}
	return g, nil
}

// Start begins serving the HTTP surface.
func (g *Gateway) Start() error {
	logging.Info("appserver", "starting HSS cache gateway",
		"listen", g.cfg.ListenAddr,
		"hss_configured", g.cfg.HSSConfigured,
		"reregistration_interval", g.cfg.ReregistrationInterval,
	)
	return g.http.Start()
}

// Stop gracefully shuts the gateway down.
func (g *Gateway) Stop(ctx context.Context) error {
	err := g.http.Stop(ctx)
	g.cache.Close()
	if closeErr := g.stats.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// StatsSnapshot exposes the current latency-histogram aggregates, e.g.
// for an operator endpoint or log line.
func (g *Gateway) StatsSnapshot() map[string]stats.Snapshot {
	return g.stats.Snapshot()
}
