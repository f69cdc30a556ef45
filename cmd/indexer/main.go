package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/banjirlab/relief-assistant/internal/adapters/search"
	"github.com/banjirlab/relief-assistant/internal/adapters/storage"
	"github.com/banjirlab/relief-assistant/internal/infrastructure/clients/typesense"
	"github.com/banjirlab/relief-assistant/pkg/config"
)

const indexBatchSize = 100

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	_ = godotenv.Load()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}
	adapter := search.NewTypesenseAdapter(tsClient)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Reset requested, deleting documents collection")
		if err := adapter.Drop(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	if err := adapter.EnsureCollection(ctx); err != nil {
		return err
	}

	docs := storage.LoadCorpus(storage.CorpusPaths{
		EnglishParquet: cfg.Data.EnglishCorpus,
		MalayParquet:   cfg.Data.MalayCorpus,
		CSV:            cfg.Data.CSVCorpus,
		ProcessedDir:   cfg.Data.ProcessedDir,
	})
	if len(docs) == 0 {
		log.Println("No corpus documents found, nothing to index")
		return nil
	}

	log.Printf("Indexing %d documents...", len(docs))

	for start := 0; start < len(docs); start += indexBatchSize {
		end := start + indexBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := adapter.Index(ctx, docs[start:end]); err != nil {
			log.Printf("Failed to index batch starting at %d: %v", start, err)
			continue
		}
		log.Printf("Indexed %d/%d documents", end, len(docs))
	}

	log.Println("Indexing complete.")
	return nil
}
