package services

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
)

const defaultSearchLimit = 3

var (
	retrievalMetricsOnce sync.Once
	retrievalCounter     metric.Int64Counter

	nonWord = regexp.MustCompile(`[^a-z0-9]+`)
)

// RetrievalService answers informational queries from the in-memory corpus,
// optionally fronted by a search index. Index failures degrade to the local
// corpus; retrieval itself never returns an error.
type RetrievalService struct {
	mu    sync.RWMutex
	docs  []entities.Document
	index repositories.DocumentIndex
	terms *TermExpansionService
}

// NewRetrievalService creates a retrieval service over the given corpus.
// index may be nil, in which case only local matching is used. terms may be
// nil to disable synonym expansion in keyword matching.
func NewRetrievalService(docs []entities.Document, index repositories.DocumentIndex, terms *TermExpansionService) *RetrievalService {
	return &RetrievalService{docs: docs, index: index, terms: terms}
}

// Append adds documents to the corpus, such as freshly ingested chunks.
func (s *RetrievalService) Append(docs ...entities.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
}

// Size returns the number of documents currently held.
func (s *RetrievalService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Retrieve finds the best context passage for a query. The index, when
// configured, is consulted first; local exact and keyword matching serve as
// the fallback. A miss is a normal result with Found set to false.
func (s *RetrievalService) Retrieve(ctx context.Context, query, language string) entities.RetrievalResult {
	language = NormalizeLanguage(language)
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		s.recordLookup(ctx, "none", false)
		return entities.RetrievalResult{}
	}

	if s.index != nil {
		if result, ok := s.searchIndex(ctx, query, language); ok {
			s.recordLookup(ctx, "index", true)
			return result
		}
	}

	candidates := s.eligibleDocs(language)

	if result, ok := exactMatch(candidates, normalized); ok {
		s.recordLookup(ctx, "exact", true)
		return result
	}
	if result, ok := keywordMatch(candidates, normalized, s.terms); ok {
		s.recordLookup(ctx, "keyword", true)
		return result
	}

	s.recordLookup(ctx, "none", false)
	return entities.RetrievalResult{}
}

func (s *RetrievalService) searchIndex(ctx context.Context, query, language string) (entities.RetrievalResult, bool) {
	hits, err := s.index.Search(ctx, query, language, defaultSearchLimit)
	if err != nil {
		log.Printf("Warning: search index unavailable, falling back to local retrieval: %v", err)
		return entities.RetrievalResult{}, false
	}
	if len(hits) == 0 {
		return entities.RetrievalResult{}, false
	}
	top := hits[0]
	return entities.RetrievalResult{Text: top.Text, Source: top.Source, Found: true}, true
}

// eligibleDocs returns documents in the requested language plus documents
// with no language tag, which serve any request.
func (s *RetrievalService) eligibleDocs(language string) []entities.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if doc.Language == "" || doc.Language == language {
			out = append(out, doc)
		}
	}
	return out
}

func exactMatch(docs []entities.Document, normalized string) (entities.RetrievalResult, bool) {
	for _, doc := range docs {
		if strings.ToLower(strings.TrimSpace(doc.Query)) == normalized {
			return entities.RetrievalResult{Text: doc.Text, Source: doc.Source, Found: true}, true
		}
	}
	return entities.RetrievalResult{}, false
}

// keywordMatch scores each document by the number of query tokens appearing
// in its stored question and returns the highest scorer. Ties keep the
// earliest document, so corpus order is a stable preference. Synonym-expanded
// tokens score the same as the originals.
func keywordMatch(docs []entities.Document, normalized string, terms *TermExpansionService) (entities.RetrievalResult, bool) {
	queryTokens := tokenize(normalized)
	if len(queryTokens) == 0 {
		return entities.RetrievalResult{}, false
	}
	if terms != nil {
		queryTokens = terms.Expand(queryTokens)
	}

	bestScore := 0
	var best entities.Document
	for _, doc := range docs {
		docTokens := tokenize(strings.ToLower(doc.Query))
		score := 0
		for token := range queryTokens {
			if docTokens[token] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = doc
		}
	}
	if bestScore == 0 {
		return entities.RetrievalResult{}, false
	}
	return entities.RetrievalResult{Text: best.Text, Source: best.Source, Found: true}, true
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, token := range nonWord.Split(s, -1) {
		if len(token) > 1 {
			tokens[token] = true
		}
	}
	return tokens
}

func (s *RetrievalService) recordLookup(ctx context.Context, method string, found bool) {
	retrievalMetricsOnce.Do(func() {
		meter := otel.Meter("relief-assistant/retrieval")
		var err error
		retrievalCounter, err = meter.Int64Counter(
			"retrieval.lookups",
			metric.WithDescription("Count of corpus lookups by retrieval method"),
		)
		if err != nil {
			retrievalCounter = nil
		}
	})
	if retrievalCounter == nil {
		return
	}
	retrievalCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("retrieval.method", method),
		attribute.Bool("retrieval.found", found),
	))
}
