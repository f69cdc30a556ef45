package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

// Chunking geometry for ingested documents, in runes.
const (
	chunkSize    = 500
	chunkOverlap = 50
)

var (
	ingestionMetricsOnce sync.Once
	ingestionCounter     metric.Int64Counter
)

// IngestionService turns uploaded documents into corpus chunks. Chunks are
// persisted as JSONL under the processed directory, appended to the live
// corpus, and pushed to the search index when one is configured.
type IngestionService struct {
	processedDir string
	retrieval    *RetrievalService
	index        repositories.DocumentIndex
}

// NewIngestionService creates an ingestion service. index may be nil.
func NewIngestionService(processedDir string, retrieval *RetrievalService, index repositories.DocumentIndex) *IngestionService {
	return &IngestionService{processedDir: processedDir, retrieval: retrieval, index: index}
}

// IngestFile processes one document and returns the number of chunks
// produced. PDF, plain-text, and markdown files are supported.
func (s *IngestionService) IngestFile(ctx context.Context, path string) (int, error) {
	text, err := extractText(path)
	if err != nil {
		return 0, err
	}

	chunks := chunkText(text)
	if len(chunks) == 0 {
		return 0, apperrors.NewValidationError("no text could be extracted from the document")
	}

	source := filepath.Base(path)
	docs := make([]entities.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, entities.Document{
			ID:     fmt.Sprintf("%s-%d", strings.TrimSuffix(source, filepath.Ext(source)), i),
			Query:  chunk,
			Text:   chunk,
			Source: source,
		})
	}

	if err := s.writeChunks(source, docs); err != nil {
		return 0, apperrors.NewStorageError("failed to persist processed chunks", err)
	}

	s.retrieval.Append(docs...)

	if s.index != nil {
		if err := s.index.Index(ctx, docs); err != nil {
			log.Printf("Warning: failed to index %d chunks from %s, continuing with local corpus only: %v", len(docs), source, err)
		}
	}

	s.recordIngested(ctx, filepath.Ext(source), len(docs))
	return len(docs), nil
}

func extractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDFText(path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", apperrors.NewStorageError("failed to read document", err)
		}
		return string(data), nil
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("unsupported file type %q", filepath.Ext(path)))
	}
}

func extractPDFText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", apperrors.NewStorageError("failed to open PDF", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			log.Printf("Warning: failed to extract page %d of %s: %v", i+1, path, err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// chunkText splits text into overlapping windows, breaking on whitespace
// where one falls near the window edge so words stay intact.
func chunkText(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			for i := end; i > start+chunkSize/2; i-- {
				if runes[i-1] == ' ' || runes[i-1] == '\n' {
					end = i
					break
				}
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		start = end - chunkOverlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

func (s *IngestionService) writeChunks(source string, docs []entities.Document) error {
	if err := os.MkdirAll(s.processedDir, 0o755); err != nil {
		return err
	}

	name := strings.TrimSuffix(source, filepath.Ext(source)) + "_chunks.jsonl"
	f, err := os.Create(filepath.Join(s.processedDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, doc := range docs {
		line, err := json.Marshal(entities.Chunk{ID: doc.ID, Text: doc.Text, Source: doc.Source})
		if err != nil {
			return err
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (s *IngestionService) recordIngested(ctx context.Context, fileType string, count int) {
	ingestionMetricsOnce.Do(func() {
		meter := otel.Meter("relief-assistant/ingestion")
		var err error
		ingestionCounter, err = meter.Int64Counter(
			"ingestion.chunks",
			metric.WithDescription("Count of corpus chunks produced by document ingestion"),
		)
		if err != nil {
			ingestionCounter = nil
		}
	})
	if ingestionCounter == nil {
		return
	}
	ingestionCounter.Add(ctx, int64(count), metric.WithAttributes(attribute.String("file.type", fileType)))
}
