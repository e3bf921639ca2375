package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tpprogramming22/weekendinthecity/cmd/consumers/jobs"
	"github.com/tpprogramming22/weekendinthecity/internal/config"
	"github.com/tpprogramming22/weekendinthecity/internal/consumers"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service...")

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "weekendinthecity-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reconcileJob *jobs.ReconcileJob
	if cfg.Reconcile.Enabled {
		reconcileJob = jobs.NewReconcileJob(consumerService.Webhooks(), cfg.Reconcile.Interval, cfg.Reconcile.After, cfg.Reconcile.BatchSize)
		reconcileJob.Start(ctx)
	}

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	if reconcileJob != nil {
		reconcileJob.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
