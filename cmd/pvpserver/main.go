// Package main provides pvpserver, the JSON HTTP API over the damage engine.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/app"
	"github.com/cory-johannsen/pvp-damage/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	srv, cleanup, err := app.InitializeServer(ctx, cfg, "pvpserver")
	if err != nil {
		log.Fatalf("initializing server: %v", err)
	}
	defer cleanup()

	logger := srv.Engine.Logger
	logger.Info("starting pvp damage server",
		zap.String("http_addr", cfg.HTTP.Addr()),
		zap.Bool("reports", srv.Engine.Reports != nil),
		zap.Bool("advisor", cfg.Advisor.Enabled),
		zap.Duration("startup", time.Since(start)),
	)

	if err := srv.Lifecycle.Run(ctx); err != nil {
		logger.Error("server exited", zap.Error(err))
		cleanup()
		log.Fatalf("server: %v", err)
	}
}
