package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/banjirlab/relief-assistant/internal/adapters/search"
	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	"github.com/banjirlab/relief-assistant/internal/infrastructure/clients/typesense"
	"github.com/banjirlab/relief-assistant/pkg/config"
)

// Bulk document ingestion. Chunks land in the processed directory, where the
// API server picks them up on its next start, and in the search index when
// one is configured.
func main() {
	var workers int
	var maxRetries int
	var dir string
	var file string

	flag.IntVar(&workers, "workers", 3, "Number of concurrent workers")
	flag.IntVar(&maxRetries, "max-retries", 3, "Max retries per document")
	flag.StringVar(&dir, "dir", "", "Directory of documents to ingest")
	flag.StringVar(&file, "file", "", "Single document to ingest")
	flag.Parse()

	if dir == "" && file == "" {
		log.Fatal("Either -dir or -file is required")
	}

	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var index repositories.DocumentIndex
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Printf("Warning: continuing without Typesense: %v", err)
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.EnsureCollection(context.Background()); err != nil {
				log.Printf("Warning: failed to ensure Typesense collection: %v", err)
			}
			index = adapter
		}
	}

	retrieval := services.NewRetrievalService(nil, index, nil)
	ingestion := services.NewIngestionService(cfg.Data.ProcessedDir, retrieval, index)
	svc := services.NewBulkIngestService(ingestion, workers, maxRetries)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	if file != "" {
		log.Printf("Ingesting single document: %s", file)
		count, err := svc.IngestOne(ctx, file)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", file, err)
		}
		log.Printf("Successfully ingested %s (%d chunks)", file, count)
	} else {
		log.Printf("Starting ingestion with %d workers...", workers)
		summary, err := svc.IngestDir(ctx, dir)
		if err != nil {
			log.Printf("Ingestion failed: %v", err)
		}

		if summary != nil {
			log.Printf("Ingestion complete in %s", time.Since(start))
			log.Printf("Total processed: %d", summary.TotalProcessed)
			log.Printf("Success: %d", summary.SuccessCount)
			log.Printf("Failed: %d", summary.FailureCount)
			log.Printf("Chunks produced: %d", summary.ChunkCount)
		}
	}
}
