package evaluation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// goldenFile is the on-disk shape of a golden set.
type goldenFile struct {
	Queries []GoldenQuery `yaml:"queries"`
}

// LoadGoldenQueries reads and parses a golden query set from a YAML file.
func LoadGoldenQueries(path string) ([]GoldenQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden queries file: %w", err)
	}

	var file goldenFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse golden queries: %w", err)
	}

	return file.Queries, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

var validLanguages = map[string]bool{
	"":   true, // defaults to English at run time
	"en": true,
	"ms": true,
}

// ValidateGoldenQueries checks that all golden queries have required fields and valid values.
func ValidateGoldenQueries(queries []GoldenQuery) error {
	known := make(map[entities.NeedKind]bool)
	for _, kind := range entities.AllNeedKinds() {
		known[kind] = true
	}

	seen := make(map[string]struct{}, len(queries))

	for i, q := range queries {
		if q.ID == "" {
			return fmt.Errorf("query at index %d: missing id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("query at index %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.Query == "" {
			return fmt.Errorf("query %q: missing query text", q.ID)
		}
		if !validLanguages[q.Language] {
			return fmt.Errorf("query %q: invalid language %q (must be en/ms)", q.ID, q.Language)
		}
		if !validDifficulties[q.Difficulty] {
			return fmt.Errorf("query %q: invalid difficulty %q (must be easy/medium/hard)", q.ID, q.Difficulty)
		}
		for _, kind := range q.ExpectedNeeds {
			if !known[kind] {
				return fmt.Errorf("query %q: unknown need kind %q", q.ID, kind)
			}
		}
	}

	return nil
}
