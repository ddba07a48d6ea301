// Package main downloads the upstream gamemaster parts and writes the merged
// document to data.gamemaster.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/pvp-damage/internal/config"
	"github.com/cory-johannsen/pvp-damage/internal/gamedata"
	"github.com/cory-johannsen/pvp-damage/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	out := flag.String("out", "", "output path (default: data.gamemaster from the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *out == "" {
		*out = cfg.Data.Gamemaster
	}

	logger, err := observability.NewLogger(cfg.Logging, "fetch-gamemaster")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 3*cfg.Fetch.Timeout)
	defer cancel()

	doc, err := gamedata.NewFetcher(cfg.Fetch, logger).Fetch(ctx)
	if err != nil {
		log.Fatalf("fetching gamemaster: %v", err)
	}
	if err := gamedata.WriteFile(*out, doc); err != nil {
		log.Fatalf("writing gamemaster: %v", err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s (%d bytes) [%s]\n", *out, len(doc), time.Since(start))
}
