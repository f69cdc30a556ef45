package services

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

const ingestQueueSize = 100

// IngestSummary totals one bulk ingestion run.
type IngestSummary struct {
	TotalProcessed int
	SuccessCount   int
	FailureCount   int
	ChunkCount     int
}

// BulkIngestService feeds every supported document under a directory through
// the ingestion pipeline with a fixed worker pool.
type BulkIngestService struct {
	ingestion   *IngestionService
	workerCount int
	maxRetries  int
}

func NewBulkIngestService(ingestion *IngestionService, workers, maxRetries int) *BulkIngestService {
	if workers <= 0 {
		workers = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &BulkIngestService{
		ingestion:   ingestion,
		workerCount: workers,
		maxRetries:  maxRetries,
	}
}

// IngestDir walks dir and ingests every PDF, text, and markdown file found.
func (s *BulkIngestService) IngestDir(ctx context.Context, dir string) (*IngestSummary, error) {
	var processed, success, failure, chunks int64

	pathChan := make(chan string, ingestQueueSize)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathChan {
				count, err := s.IngestOne(ctx, path)
				atomic.AddInt64(&processed, 1)
				if err != nil {
					atomic.AddInt64(&failure, 1)
					log.Printf("Failed to ingest %s: %v", path, err)
				} else {
					atomic.AddInt64(&success, 1)
					atomic.AddInt64(&chunks, int64(count))
				}
			}
		}()
	}

	// Producer loop
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedDocument(path) {
			return nil
		}
		select {
		case pathChan <- path:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	close(pathChan)
	wg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}

	return &IngestSummary{
		TotalProcessed: int(processed),
		SuccessCount:   int(success),
		FailureCount:   int(failure),
		ChunkCount:     int(chunks),
	}, nil
}

// IngestOne ingests a single document, retrying transient failures with a
// linear backoff. Validation failures are final and never retried.
func (s *BulkIngestService) IngestOne(ctx context.Context, path string) (int, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		count, err := s.ingestion.IngestFile(ctx, path)
		if err == nil {
			return count, nil
		}
		lastErr = err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			return 0, err
		}
	}
	return 0, lastErr
}

func supportedDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}
