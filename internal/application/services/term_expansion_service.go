package services

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// TermExpansionService bridges the vocabulary gap in keyword retrieval:
// Malay query tokens expand to their English equivalents and vice versa, so
// "banjir" can match a document stored under "flood". Mappings load from a
// JSON file of term -> synonyms.
type TermExpansionService struct {
	terms map[string][]string
	mu    sync.RWMutex
}

// NewTermExpansionService loads the synonym table from the given JSON file.
func NewTermExpansionService(configPath string) (*TermExpansionService, error) {
	s := &TermExpansionService{
		terms: make(map[string][]string),
	}
	if err := s.loadConfig(configPath); err != nil {
		return nil, err
	}
	return s, nil
}

// loadConfig loads the term mappings from a JSON file
func (s *TermExpansionService) loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var mappings map[string][]string
	if err := json.Unmarshal(data, &mappings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Normalize keys to lowercase for consistent lookup
	for k, v := range mappings {
		s.terms[strings.ToLower(k)] = v
	}
	return nil
}

// Expand returns a copy of tokens grown with the configured synonyms of each
// token. Multi-word synonyms contribute one token per word, so "evacuation
// center" can match either word in a stored question.
// TODO: match multi-word keys such as "pusat pemindahan" before single-token
// lookup.
func (s *TermExpansionService) Expand(tokens map[string]bool) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expanded := make(map[string]bool, len(tokens))
	for token := range tokens {
		expanded[token] = true
	}
	for token := range tokens {
		for _, synonym := range s.terms[token] {
			for word := range tokenize(strings.ToLower(synonym)) {
				expanded[word] = true
			}
		}
	}
	return expanded
}

// Count returns the number of mapped terms.
func (s *TermExpansionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}
