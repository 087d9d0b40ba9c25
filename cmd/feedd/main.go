package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TickBoard/internal/handler/api"
	"TickBoard/internal/service/replay"
	"TickBoard/pkg/config"
	xhttp "TickBoard/pkg/http"
	applogger "TickBoard/pkg/logger"
)

// feedd replays a trading-day CSV as a live feed: a WebSocket push
// channel on /ws/stocks plus the /api/snapshot pull endpoint.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	port := flag.Int("port", 8001, "listen port")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	source := replay.NewSource(cfg.Replay.CSVPath, cfg.Replay.Symbols, cfg.Replay.EMAShort, cfg.Replay.EMALong)
	if err := source.Load(); err != nil {
		log.Fatalf("replay load failed: %v", err)
	}
	l.Info("replay source loaded", applogger.String("csv", cfg.Replay.CSVPath))

	hub := replay.NewHub(l)
	bc := replay.NewBroadcaster(source, hub, cfg.Replay.Interval, l)

	handler := api.NewFeedEchoHandler(l, bc,
		cfg.Replay.RateLimit.Capacity, cfg.Replay.RateLimit.RefillSec)
	srv := xhttp.NewServer(handler,
		xhttp.WithPort(*port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bc.Start(ctx)
	if err := srv.Start(); err != nil {
		log.Fatalf("http server start failed: %v", err)
	}
	l.Info("feed broadcasting", applogger.Int("port", *port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	bc.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
		os.Exit(1)
	}
}
