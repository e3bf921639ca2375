package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/tpprogramming22/weekendinthecity/internal/config"
	"github.com/tpprogramming22/weekendinthecity/internal/database"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/repository"
	"github.com/tpprogramming22/weekendinthecity/internal/search"
)

// eventSource lists every event regardless of category
type eventSource interface {
	List(ctx context.Context, category string) ([]models.Event, error)
}

type bulkIndexer interface {
	BulkIndex(ctx context.Context, events []models.Event) (int, error)
}

func main() {
	var batchSize int
	flag.IntVar(&batchSize, "batch", 500, "Number of events per bulk request")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if !cfg.Elasticsearch.Enabled() {
		logger.Fatal("ELASTICSEARCH_URL is not set")
	}

	slog.Info("Starting event index synchronization", "index", cfg.Elasticsearch.Index)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := syncEvents(ctx, repository.NewEventRepository(db), esClient, batchSize); err != nil {
		logger.Fatal("Event synchronization failed", "error", err)
	}

	slog.Info("Event synchronization completed successfully")
}

func syncEvents(ctx context.Context, source eventSource, index bulkIndexer, batchSize int) error {
	start := time.Now()

	events, err := source.List(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	slog.Info("Loaded events from database", "count", len(events))

	if batchSize <= 0 {
		batchSize = len(events)
	}

	failed := 0
	for from := 0; from < len(events); from += batchSize {
		to := min(from+batchSize, len(events))

		n, err := index.BulkIndex(ctx, events[from:to])
		if err != nil {
			return fmt.Errorf("failed to index batch %d-%d: %w", from, to, err)
		}
		failed += n
		slog.Info("Indexed batch", "from", from, "to", to, "failed", n)
	}

	slog.Info("Synchronization finished",
		"events", len(events),
		"failed", failed,
		"duration", time.Since(start).String())

	if failed > 0 {
		return fmt.Errorf("%d events failed to index", failed)
	}
	return nil
}
