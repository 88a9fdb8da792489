// Package hsstask is the shared base every HTTP/Diameter handler task
// embeds: common configuration, the cache/Diameter/stats handles, and
// the latency-timer wrapping around every cache or Diameter call.
package hsstask

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sebas/cxgateway/internal/config"
	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/logging"
	"github.com/sebas/cxgateway/internal/stats"
)

const component = "hsstask"

// DefaultDiameterTimeout is the default per-request Diameter timeout.
const DefaultDiameterTimeout = 20 * time.Second

// Base holds the shared HSS-cache-task configuration: destination
// realm/host, default server name, the
// re-registration interval, and handles to the cache/Diameter/stats
// collaborators. Every field is configured once at process start and is
// read-only from here on.
type Base struct {
	Cfg      *config.Config
	Dict     *cxdict.Dictionary
	Cache    *hsscache.Cache
	Diameter diameter.Client
	Stats    *stats.Registry
	Sessions *cxcodec.SessionIDGenerator
}

// New builds a Base from its collaborators.
func New(cfg *config.Config, dict *cxdict.Dictionary, cache *hsscache.Cache, client diameter.Client, reg *stats.Registry, sessions *cxcodec.SessionIDGenerator) *Base {
	return &Base{Cfg: cfg, Dict: dict, Cache: cache, Diameter: client, Stats: reg, Sessions: sessions}
}

// Origin returns this gateway's Diameter origin identity.
func (b *Base) Origin() cxcodec.Origin {
	return cxcodec.Origin{Host: b.Cfg.OriginHost, Realm: b.Cfg.OriginRealm}
}

// Destination returns the configured HSS destination identity.
func (b *Base) Destination() cxcodec.Destination {
	return cxcodec.Destination{Host: b.Cfg.DestinationHost, Realm: b.Cfg.DestinationRealm}
}

// HSSConfigured reports whether an upstream HSS is configured; false puts
// every handler in cache-only mode.
func (b *Base) HSSConfigured() bool {
	return b.Cfg.HSSConfigured
}

// CacheTTL returns 2R, the write TTL used whenever an HSS is configured.
func (b *Base) CacheTTL() time.Duration {
	return b.Cfg.CacheTTL()
}

// NewSessionID mints a fresh Diameter Session-Id for an outbound request.
func (b *Base) NewSessionID() string {
	return b.Sessions.Next()
}

// SendDiameter sends req with a bounded timeout and records its latency
// against both H_hss_latency_us and the command-specific histName
// (H_hss_digest_latency_us / H_hss_subscription_latency_us). A zero
// timeout uses DefaultDiameterTimeout. diameter.ErrTimeout is passed
// through unchanged so callers can map it to a 504.
func (b *Base) SendDiameter(ctx context.Context, histName string, req *diameter.Message, timeout time.Duration) (*diameter.Message, error) {
	if timeout <= 0 {
		timeout = DefaultDiameterTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// correlationID ties the request/answer pair together across log
	// lines; it never leaves this process.
	correlationID := uuid.NewString()
	logging.Debug(component, "sending Diameter request", "correlation_id", correlationID, "command_code", req.CommandCode)

	overall := b.Stats.Start(stats.HSSLatencyUs)
	var specific *stats.Timer
	if histName != "" {
		specific = b.Stats.Start(histName)
	}
	answer, err := b.Diameter.SendRequest(cctx, req)
	overall.Stop()
	if specific != nil {
		specific.Stop()
	}
	if err != nil {
		logging.Warn(component, "Diameter request failed", "correlation_id", correlationID, "err", err)
	} else {
		logging.Debug(component, "received Diameter answer", "correlation_id", correlationID)
	}
	return answer, err
}
