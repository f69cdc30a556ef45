package repositories

import (
	"context"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// DocumentIndex is an optional external search index over the corpus. When
// unavailable the retrieval service falls back to its local scan.
type DocumentIndex interface {
	// EnsureCollection creates or recreates the backing collection.
	EnsureCollection(ctx context.Context) error

	// Index upserts the given documents.
	Index(ctx context.Context, docs []entities.Document) error

	// Search returns the best-matching documents for a query, most relevant
	// first. Documents tagged with another language are excluded; untagged
	// documents always qualify.
	Search(ctx context.Context, query, language string, limit int) ([]entities.Chunk, error)
}
