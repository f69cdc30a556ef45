package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	tsclient "github.com/banjirlab/relief-assistant/internal/infrastructure/clients/typesense"
)

const collectionName = "documents"

// Untagged documents are indexed under this language so one filter clause
// matches both the requested language and language-neutral chunks.
const languageAny = "any"

// TypesenseAdapter implements the DocumentIndex interface over a Typesense
// collection of corpus documents.
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.DocumentIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// EnsureCollection creates the document collection if it does not exist.
func (a *TypesenseAdapter) EnsureCollection(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "query", Type: "string"},
			{Name: "text", Type: "string"},
			{Name: "source", Type: "string"},
			{Name: "language", Type: "string", Facet: pointer.True()},
		},
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Drop deletes the document collection so the indexer can rebuild it from
// scratch.
func (a *TypesenseAdapter) Drop(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	return nil
}

// Index upserts corpus documents into the collection.
func (a *TypesenseAdapter) Index(ctx context.Context, docs []entities.Document) error {
	for _, doc := range docs {
		record := documentRecord(doc)
		if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, record); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}
	return nil
}

func documentRecord(doc entities.Document) map[string]interface{} {
	language := doc.Language
	if language == "" {
		language = languageAny
	}
	return map[string]interface{}{
		"id":       doc.ID,
		"query":    doc.Query,
		"text":     doc.Text,
		"source":   doc.Source,
		"language": language,
	}
}

// Search queries the collection, preferring question matches over body
// matches, restricted to the requested language plus untagged documents.
func (a *TypesenseAdapter) Search(ctx context.Context, query, language string, limit int) ([]entities.Chunk, error) {
	if limit <= 0 {
		limit = 3
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("query,text"),
		FilterBy: pointer.String(fmt.Sprintf("language:=[%s,%s]", language, languageAny)),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	chunks := []entities.Chunk{}
	if result.Hits == nil {
		return chunks, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		chunk, ok := chunkFromHit(*hit.Document)
		if !ok {
			continue
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// chunkFromHit decodes a search hit into a chunk. Hits without text are
// dropped since the answer service has nothing to quote from them.
func chunkFromHit(doc map[string]interface{}) (entities.Chunk, bool) {
	chunk := entities.Chunk{}
	if val, ok := doc["id"].(string); ok {
		chunk.ID = val
	}
	if val, ok := doc["text"].(string); ok {
		chunk.Text = val
	}
	if val, ok := doc["source"].(string); ok {
		chunk.Source = val
	}
	if chunk.Text == "" {
		return entities.Chunk{}, false
	}
	return chunk, true
}
