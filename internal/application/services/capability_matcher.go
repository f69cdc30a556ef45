package services

import (
	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// CapabilityRule names the tag pair that resolves one need against a
// center's capability set.
type CapabilityRule struct {
	Positive string `json:"positive"`
	Negative string `json:"negative"`
}

// defaultCapabilityMap resolves each need kind. A positive tag confirms the
// need is met; a negative tag is an explicit exclusion; neither tag present
// means the center's data is silent on it.
var defaultCapabilityMap = map[entities.NeedKind]CapabilityRule{
	entities.NeedGroundFloor: {Positive: "ground_floor", Negative: "stairs_only"},
	entities.NeedOKUToilets:  {Positive: "oku_toilets", Negative: "no_oku_facilities"},
	entities.NeedPetArea:     {Positive: "designated_pet_area", Negative: "no_pets"},
	entities.NeedFamilyRoom:  {Positive: "family_room", Negative: "open_hall_only"},
}

// CapabilityMatcher classifies how well a center's static capability tags
// cover a set of detected needs.
type CapabilityMatcher struct {
	rules map[entities.NeedKind]CapabilityRule
}

// NewCapabilityMatcher creates a matcher with the compiled-in capability map.
func NewCapabilityMatcher() *CapabilityMatcher {
	return NewCapabilityMatcherWithRules(defaultCapabilityMap)
}

// NewCapabilityMatcherWithRules creates a matcher with a custom rule table.
func NewCapabilityMatcherWithRules(rules map[entities.NeedKind]CapabilityRule) *CapabilityMatcher {
	copied := make(map[entities.NeedKind]CapabilityRule, len(rules))
	for k, v := range rules {
		copied[k] = v
	}
	return &CapabilityMatcher{rules: copied}
}

// Assess classifies every needed kind against the center, in the order the
// needs are given. Per need: positive tag present wins, then negative tag,
// then UNKNOWN. A need kind with no rule is UNKNOWN, never an error.
func (m *CapabilityMatcher) Assess(center entities.Center, needs []entities.NeedKind) []entities.NeedAssessment {
	assessments := make([]entities.NeedAssessment, 0, len(needs))
	for _, kind := range needs {
		verdict := entities.VerdictUnknown
		if rule, ok := m.rules[kind]; ok {
			switch {
			case rule.Positive != "" && center.HasCapability(rule.Positive):
				verdict = entities.VerdictMatched
			case rule.Negative != "" && center.HasCapability(rule.Negative):
				verdict = entities.VerdictFailed
			}
		}
		assessments = append(assessments, entities.NeedAssessment{Kind: kind, Verdict: verdict})
	}
	return assessments
}

// Classify collapses per-need assessments into the center's capability
// status: any FAILED excludes the center; a full set of MATCHED verdicts is
// a best match; a MATCHED/UNKNOWN mix stays merely suitable.
func (m *CapabilityMatcher) Classify(assessments []entities.NeedAssessment) entities.MatchStatus {
	if len(assessments) == 0 {
		return entities.StatusSuitable
	}
	allMatched := true
	for _, a := range assessments {
		switch a.Verdict {
		case entities.VerdictFailed:
			return entities.StatusNotSuitable
		case entities.VerdictMatched:
		default:
			allMatched = false
		}
	}
	if allMatched {
		return entities.StatusBestMatch
	}
	return entities.StatusSuitable
}

// Match runs Assess and Classify in one step.
func (m *CapabilityMatcher) Match(center entities.Center, needs []entities.NeedKind) (entities.MatchStatus, []entities.NeedAssessment) {
	assessments := m.Assess(center, needs)
	return m.Classify(assessments), assessments
}
