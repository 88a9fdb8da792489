package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sebas/cxgateway/internal/appserver"
	"github.com/sebas/cxgateway/internal/banner"
	"github.com/sebas/cxgateway/internal/config"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/httpapi"
	"github.com/sebas/cxgateway/internal/logging"
)

func main() {
	cfg := config.Load()

	logging.Init(os.Stdout)
	logging.SetLevel(cfg.LogLevel)

	// The real Diameter transport (peer table, SCTP/TCP framing, routing)
	// is a separate collaborator; NoopClient answers every outbound
	// request as an HSS-unreachable timeout until a real transport is
	// wired in here.
	var client diameter.Client = diameter.NewNoopClient()

	gw, err := appserver.New(cfg, client)
	if err != nil {
		logging.Error("main", "failed to build gateway", "err", err)
		os.Exit(1)
	}

	banner.Print(banner.Info{
		Service:                "cxgateway",
		ListenAddr:             cfg.ListenAddr,
		HSSConfigured:          cfg.HSSConfigured,
		OriginHost:             cfg.OriginHost,
		OriginRealm:            cfg.OriginRealm,
		DestinationRealm:       cfg.DestinationRealm,
		ServerName:             cfg.DefaultServerName,
		ReregistrationInterval: cfg.ReregistrationInterval,
		SproutAddr:             cfg.SproutAddr,
	})

	if err := gw.Start(); err != nil {
		logging.Error("main", "failed to start gateway", "err", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("main", "received signal, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), httpapi.DefaultShutdownTimeout)
	defer cancel()
	if err := gw.Stop(ctx); err != nil {
		logging.Error("main", "error during shutdown", "err", err)
	}
}
