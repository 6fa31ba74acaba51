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
	log.Info("Starting catalog scraper...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Log.Apply(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.NewScraper(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize scraper: %v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		app.Close()
		log.Fatalf("Scraper exited with error: %v", err)
	}

	log.Infof("Catalog saved to %s", cfg.Scraper.OutputFile)
}
