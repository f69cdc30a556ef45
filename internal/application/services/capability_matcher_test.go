package services

import (
	"testing"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

func centerWithTags(tags ...string) entities.Center {
	return entities.Center{
		Name:         "Test Center",
		Location:     entities.Location{Latitude: 3.2, Longitude: 101.6},
		Capabilities: tags,
	}
}

// --- Per-need classification ---

func TestAssess_PositiveTagMatches(t *testing.T) {
	m := NewCapabilityMatcher()
	got := m.Assess(centerWithTags("ground_floor"), []entities.NeedKind{entities.NeedGroundFloor})
	if got[0].Verdict != entities.VerdictMatched {
		t.Errorf("expected MATCHED, got %s", got[0].Verdict)
	}
}

func TestAssess_NegativeTagFails(t *testing.T) {
	m := NewCapabilityMatcher()
	got := m.Assess(centerWithTags("stairs_only"), []entities.NeedKind{entities.NeedGroundFloor})
	if got[0].Verdict != entities.VerdictFailed {
		t.Errorf("expected FAILED, got %s", got[0].Verdict)
	}
}

func TestAssess_NeitherTagUnknown(t *testing.T) {
	m := NewCapabilityMatcher()
	got := m.Assess(centerWithTags("ground_floor"), []entities.NeedKind{entities.NeedPetArea})
	if got[0].Verdict != entities.VerdictUnknown {
		t.Errorf("expected UNKNOWN, got %s", got[0].Verdict)
	}
}

func TestAssess_MatchedTakesPrecedenceOverFailed(t *testing.T) {
	// A center carrying both tags of a pair resolves MATCHED, per the
	// documented ordering.
	m := NewCapabilityMatcher()
	for _, kind := range entities.AllNeedKinds() {
		rule := defaultCapabilityMap[kind]
		center := centerWithTags(rule.Positive, rule.Negative)
		got := m.Assess(center, []entities.NeedKind{kind})
		if got[0].Verdict != entities.VerdictMatched {
			t.Errorf("kind %s: expected MATCHED with both tags, got %s", kind, got[0].Verdict)
		}
	}
}

func TestAssess_UnknownNeedKind(t *testing.T) {
	m := NewCapabilityMatcher()
	got := m.Assess(centerWithTags("ground_floor"), []entities.NeedKind{"helipad"})
	if got[0].Verdict != entities.VerdictUnknown {
		t.Errorf("expected UNKNOWN for unrecognized kind, got %s", got[0].Verdict)
	}
}

// --- Aggregate classification ---

func TestClassify_AnyFailedIsNotSuitable(t *testing.T) {
	m := NewCapabilityMatcher()
	status := m.Classify([]entities.NeedAssessment{
		{Kind: entities.NeedGroundFloor, Verdict: entities.VerdictMatched},
		{Kind: entities.NeedPetArea, Verdict: entities.VerdictFailed},
	})
	if status != entities.StatusNotSuitable {
		t.Errorf("expected NOT_SUITABLE, got %s", status)
	}
}

func TestClassify_AllMatchedIsBestMatch(t *testing.T) {
	m := NewCapabilityMatcher()
	status := m.Classify([]entities.NeedAssessment{
		{Kind: entities.NeedGroundFloor, Verdict: entities.VerdictMatched},
		{Kind: entities.NeedPetArea, Verdict: entities.VerdictMatched},
	})
	if status != entities.StatusBestMatch {
		t.Errorf("expected BEST_MATCH, got %s", status)
	}
}

func TestClassify_MixedUnknownIsSuitable(t *testing.T) {
	m := NewCapabilityMatcher()
	status := m.Classify([]entities.NeedAssessment{
		{Kind: entities.NeedGroundFloor, Verdict: entities.VerdictMatched},
		{Kind: entities.NeedPetArea, Verdict: entities.VerdictUnknown},
	})
	if status != entities.StatusSuitable {
		t.Errorf("expected SUITABLE, got %s", status)
	}
}

func TestMatch_EndToEndScenarioCenters(t *testing.T) {
	m := NewCapabilityMatcher()
	needs := []entities.NeedKind{entities.NeedGroundFloor, entities.NeedPetArea}

	a := centerWithTags("stairs_only", "no_pets")
	statusA, _ := m.Match(a, needs)
	if statusA != entities.StatusNotSuitable {
		t.Errorf("center A: expected NOT_SUITABLE, got %s", statusA)
	}

	b := centerWithTags("ground_floor", "designated_pet_area")
	statusB, _ := m.Match(b, needs)
	if statusB != entities.StatusBestMatch {
		t.Errorf("center B: expected BEST_MATCH, got %s", statusB)
	}
}
