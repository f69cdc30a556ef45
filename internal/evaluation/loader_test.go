package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

func TestLoadGoldenQueries_ValidFile(t *testing.T) {
	content := `queries:
  - id: q1
    query: "my grandmother uses a wheelchair"
    language: en
    expected_needs: [ground_floor, oku_toilets]
    expected_top: "Kolej Komuniti Gombak"
    difficulty: easy
  - id: q2
    query: "saya ada kucing"
    language: ms
    expected_needs: [pet_area]
    difficulty: medium
`
	path := writeTempFile(t, content)

	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}
	if queries[0].ID != "q1" {
		t.Errorf("expected id q1, got %s", queries[0].ID)
	}
	if queries[0].Language != "en" {
		t.Errorf("expected language en, got %s", queries[0].Language)
	}
	if len(queries[0].ExpectedNeeds) != 2 || queries[0].ExpectedNeeds[0] != entities.NeedGroundFloor {
		t.Errorf("unexpected expected_needs: %v", queries[0].ExpectedNeeds)
	}
	if queries[0].ExpectedTop != "Kolej Komuniti Gombak" {
		t.Errorf("unexpected expected_top: %s", queries[0].ExpectedTop)
	}
	if queries[1].Query != "saya ada kucing" {
		t.Errorf("expected query 'saya ada kucing', got %s", queries[1].Query)
	}
	if queries[1].ExpectedTop != "" {
		t.Errorf("expected empty expected_top, got %s", queries[1].ExpectedTop)
	}
}

func TestLoadGoldenQueries_InvalidFile(t *testing.T) {
	_, err := LoadGoldenQueries("/nonexistent/path.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadGoldenQueries_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, `queries: [broken`)
	_, err := LoadGoldenQueries(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadGoldenQueries_EmptyFile(t *testing.T) {
	path := writeTempFile(t, ``)
	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 0 {
		t.Errorf("expected 0 queries, got %d", len(queries))
	}
}

func TestValidateGoldenQueries_MissingID(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "", Query: "test", Language: "en", Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for missing ID")
	}
}

func TestValidateGoldenQueries_MissingQuery(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "", Language: "en", Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for missing query")
	}
}

func TestValidateGoldenQueries_InvalidLanguage(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", Language: "fr", Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for invalid language")
	}
}

func TestValidateGoldenQueries_EmptyLanguageAllowed(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", Language: "", Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateGoldenQueries_InvalidDifficulty(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", Language: "en", Difficulty: "impossible"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for invalid difficulty")
	}
}

func TestValidateGoldenQueries_UnknownNeedKind(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", Language: "en", ExpectedNeeds: []entities.NeedKind{"helipad"}, Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for unknown need kind")
	}
}

func TestValidateGoldenQueries_DuplicateIDs(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "kerusi roda", Language: "ms", Difficulty: "easy"},
		{ID: "q1", Query: "wheelchair", Language: "en", Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for duplicate IDs")
	}
}

func TestValidateGoldenQueries_Valid(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "wheelchair", Language: "en", ExpectedNeeds: []entities.NeedKind{entities.NeedGroundFloor}, Difficulty: "easy"},
		{ID: "q2", Query: "bawa kucing", Language: "ms", ExpectedNeeds: []entities.NeedKind{entities.NeedPetArea}, ExpectedTop: "Dewan Serbaguna Gombak", Difficulty: "medium"},
	}
	err := ValidateGoldenQueries(queries)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
