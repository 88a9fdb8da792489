package appserver

import (
	"context"
	"testing"
	"time"

	"github.com/sebas/cxgateway/internal/config"
	"github.com/sebas/cxgateway/internal/diameter"
)

func newTestConfig() *config.Config {
	return &config.Config{
		ListenAddr:             "127.0.0.1:0",
		OriginHost:             "cxgateway.test",
		OriginRealm:            "test",
		DestinationRealm:       "test",
		ReregistrationInterval: time.Hour,
		SproutAddr:             "http://sprout.test",
	}
}

func TestNewGatewayWiresCollaborators(t *testing.T) {
	gw, err := New(newTestConfig(), diameter.NewNoopClient())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if gw.cache == nil || gw.stats == nil || gw.sprout == nil || gw.http == nil {
		t.Fatal("Gateway missing a collaborator after New")
	}
	if gw.RTR == nil || gw.PPR == nil {
		t.Fatal("Gateway missing server-initiated tasks after New")
	}
}

func TestGatewayStartStop(t *testing.T) {
	gw, err := New(newTestConfig(), diameter.NewNoopClient())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := gw.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := gw.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStatsSnapshotEmptyAfterConstruction(t *testing.T) {
	gw, err := New(newTestConfig(), diameter.NewNoopClient())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = gw.Stop(context.Background()) })
	snap := gw.StatsSnapshot()
	if snap == nil {
		t.Fatal("StatsSnapshot() = nil")
	}
}
