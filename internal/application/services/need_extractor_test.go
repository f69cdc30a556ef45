package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// --- Detection tests ---

func TestExtract_EnglishGroundFloor(t *testing.T) {
	e := NewNeedExtractor()
	flags := e.Extract("my grandmother is in a wheelchair")
	if !flags[entities.NeedGroundFloor] {
		t.Error("expected ground_floor flag for wheelchair query")
	}
}

func TestExtract_MalayGroundFloor(t *testing.T) {
	e := NewNeedExtractor()
	flags := e.Extract("nenek saya guna kerusi roda")
	if !flags[entities.NeedGroundFloor] {
		t.Error("expected ground_floor flag for kerusi roda query")
	}
}

func TestExtract_LanguageSymmetry(t *testing.T) {
	// An English and a Malay keyword for the same kind both set that flag.
	e := NewNeedExtractor()
	cases := []struct {
		kind    entities.NeedKind
		english string
		malay   string
	}{
		{entities.NeedGroundFloor, "wheelchair access please", "perlu kerusi roda"},
		{entities.NeedPetArea, "I have a cat", "saya ada kucing"},
		{entities.NeedFamilyRoom, "breastfeeding my baby", "saya perlu menyusu"},
	}
	for _, c := range cases {
		if !e.Extract(c.english)[c.kind] {
			t.Errorf("english query %q did not set %s", c.english, c.kind)
		}
		if !e.Extract(c.malay)[c.kind] {
			t.Errorf("malay query %q did not set %s", c.malay, c.kind)
		}
	}
}

func TestExtract_CaseInsensitive(t *testing.T) {
	e := NewNeedExtractor()
	if !e.Extract("GRANDMOTHER IN WHEELCHAIR")[entities.NeedGroundFloor] {
		t.Error("expected case-insensitive match")
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewNeedExtractor()
	query := "grandmother in wheelchair with a cat"
	first := e.Extract(query)
	second := e.Extract(query)
	for _, kind := range entities.AllNeedKinds() {
		if first[kind] != second[kind] {
			t.Errorf("flag %s differs between calls", kind)
		}
	}
}

func TestExtract_AllFlagsAlwaysPresent(t *testing.T) {
	e := NewNeedExtractor()
	flags := e.Extract("hello")
	if len(flags) != len(entities.AllNeedKinds()) {
		t.Fatalf("expected %d flags, got %d", len(entities.AllNeedKinds()), len(flags))
	}
	if flags.Any() {
		t.Error("expected no flags for a neutral query")
	}
}

func TestExtract_NoNegationHandling(t *testing.T) {
	// "no pets" still flags pet_area: negation is deliberately not parsed.
	e := NewNeedExtractor()
	if !e.Extract("we have no pets")[entities.NeedPetArea] {
		t.Error("expected pet_area flag despite negation")
	}
}

func TestExtract_WordBoundaries(t *testing.T) {
	e := NewNeedExtractor()
	if e.Extract("sila semak dokumen itu")[entities.NeedOKUToilets] {
		t.Error("oku must not match inside 'dokumen'")
	}
	if e.Extract("the petrol station flooded")[entities.NeedPetArea] {
		t.Error("pet must not match inside 'petrol'")
	}
	if !e.Extract("ada tandas oku?")[entities.NeedOKUToilets] {
		t.Error("expected oku_toilets flag for tandas oku query")
	}
}

func TestExtract_EndToEndScenarioNeeds(t *testing.T) {
	e := NewNeedExtractor()
	flags := e.Extract("grandmother in wheelchair with a cat")
	if !flags[entities.NeedGroundFloor] {
		t.Error("expected ground_floor flag")
	}
	if !flags[entities.NeedPetArea] {
		t.Error("expected pet_area flag")
	}
	if flags[entities.NeedOKUToilets] || flags[entities.NeedFamilyRoom] {
		t.Error("unexpected extra flags")
	}
}

// --- Pattern file override tests ---

func TestNewNeedExtractorFromFile_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")
	table := map[string][]string{
		"pet_area": {`\bhamster\b`},
	}
	data, err := json.Marshal(table)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := NewNeedExtractorFromFile(path)
	if err != nil {
		t.Fatalf("failed to load pattern file: %v", err)
	}
	if !e.Extract("my hamster needs shelter")[entities.NeedPetArea] {
		t.Error("expected overridden pattern to match")
	}
	if e.Extract("I have a cat")[entities.NeedPetArea] {
		t.Error("override should replace the default pet patterns")
	}
	// Kinds absent from the file keep their defaults.
	if !e.Extract("wheelchair user")[entities.NeedGroundFloor] {
		t.Error("expected default ground_floor patterns to survive")
	}
}

func TestNewNeedExtractorFromFile_BadPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")
	if err := os.WriteFile(path, []byte(`{"pet_area": ["("]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewNeedExtractorFromFile(path); err == nil {
		t.Error("expected error for invalid regex pattern")
	}
}
