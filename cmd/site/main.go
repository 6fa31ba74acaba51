package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stonetech/catalog/internal/config"
	"stonetech/catalog/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting catalog site...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Log.Apply(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	site, err := container.NewSite(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize site: %v", err)
	}
	defer site.Close()

	if err := site.Run(ctx); err != nil {
		site.Close()
		log.Fatalf("Site exited with error: %v", err)
	}

	log.Info("Site stopped")
}
