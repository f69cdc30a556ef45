package evaluation

import (
	"time"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// GoldenQuery represents a labeled test query with expected outcomes.
type GoldenQuery struct {
	ID            string              `yaml:"id" json:"id"`
	Query         string              `yaml:"query" json:"query"`
	Language      string              `yaml:"language" json:"language"`
	ExpectedNeeds []entities.NeedKind `yaml:"expected_needs" json:"expected_needs"`
	ExpectedTop   string              `yaml:"expected_top" json:"expected_top"`
	Difficulty    string              `yaml:"difficulty" json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID     string
	Query       string
	Language    string
	NeedTP      int
	NeedFP      int
	NeedFN      int
	Ranked      bool // query carried an expected_top label
	TopRank     int  // 1-based rank of the expected center, 0 when absent
	ResultCount int
	Latency     time.Duration
}

// NeedScore aggregates extraction counts for one need kind.
type NeedScore struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
}

// Precision is TP/(TP+FP). Undefined (no predictions) returns 0.
func (s *NeedScore) Precision() float64 {
	denom := s.TruePositives + s.FalsePositives
	if denom == 0 {
		return 0.0
	}
	return float64(s.TruePositives) / float64(denom)
}

// Recall is TP/(TP+FN). Undefined (kind never expected) returns 0.
func (s *NeedScore) Recall() float64 {
	denom := s.TruePositives + s.FalseNegatives
	if denom == 0 {
		return 0.0
	}
	return float64(s.TruePositives) / float64(denom)
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries  int
	NeedScores    map[entities.NeedKind]*NeedScore
	RankedQueries int // queries with an expected_top label
	Top1Hits      int // expected center ranked first
	Top1Accuracy  float64
	MRR           float64
	AvgLatency    time.Duration
	ByLanguage    map[string]*LanguageSummary
}

// LanguageSummary holds ranking metrics grouped by query language.
type LanguageSummary struct {
	Count        int
	RankedCount  int
	Top1Accuracy float64
	MRR          float64
}

// NeedRecallMicro is the micro-averaged recall over every need kind: total
// true positives over total expected occurrences.
func (s *EvalSummary) NeedRecallMicro() float64 {
	tp, fn := 0, 0
	for _, score := range s.NeedScores {
		tp += score.TruePositives
		fn += score.FalseNegatives
	}
	if tp+fn == 0 {
		return 0.0
	}
	return float64(tp) / float64(tp+fn)
}
