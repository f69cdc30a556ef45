package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

type stubExtractor struct {
	flags map[string]entities.NeedFlags
}

func (s *stubExtractor) Extract(query string) entities.NeedFlags {
	if f, ok := s.flags[query]; ok {
		return f
	}
	return entities.NeedFlags{}
}

type stubRecommender struct {
	rankings map[string][]string
	fallback map[string][]string
	err      error
	calls    int
}

func (s *stubRecommender) Recommend(_ context.Context, query string, _, _ float64, _ string) (*entities.Recommendation, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if names, ok := s.fallback[query]; ok {
		items := make([]entities.FallbackItem, len(names))
		for i, name := range names {
			items[i] = entities.FallbackItem{Name: name}
		}
		return &entities.Recommendation{Fallback: &entities.FallbackResult{Items: items}}, nil
	}
	items := make([]entities.RecommendationItem, len(s.rankings[query]))
	for i, name := range s.rankings[query] {
		items[i] = entities.RecommendationItem{Name: name}
	}
	return &entities.Recommendation{Items: items}, nil
}

func TestRunner_NeedScoring(t *testing.T) {
	extractor := &stubExtractor{flags: map[string]entities.NeedFlags{
		"wheelchair and a cat": {entities.NeedGroundFloor: true, entities.NeedPetArea: true},
		"toilet OKU":           {},
	}}
	runner := NewRunner(extractor, &stubRecommender{}, 3.2, 101.6)

	queries := []GoldenQuery{
		{ID: "q1", Query: "wheelchair and a cat", ExpectedNeeds: []entities.NeedKind{entities.NeedGroundFloor}},
		{ID: "q2", Query: "toilet OKU", ExpectedNeeds: []entities.NeedKind{entities.NeedOKUToilets}},
	}

	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ground := summary.NeedScores[entities.NeedGroundFloor]
	if ground.TruePositives != 1 || ground.FalsePositives != 0 || ground.FalseNegatives != 0 {
		t.Errorf("unexpected ground_floor score: %+v", ground)
	}
	pet := summary.NeedScores[entities.NeedPetArea]
	if pet.FalsePositives != 1 {
		t.Errorf("expected 1 pet_area false positive, got %d", pet.FalsePositives)
	}
	oku := summary.NeedScores[entities.NeedOKUToilets]
	if oku.FalseNegatives != 1 {
		t.Errorf("expected 1 oku_toilets false negative, got %d", oku.FalseNegatives)
	}
	if got := summary.NeedRecallMicro(); !almostEqual(got, 0.5) {
		t.Errorf("expected micro recall 0.5, got %f", got)
	}
}

func TestRunner_RankingMetrics(t *testing.T) {
	recommender := &stubRecommender{rankings: map[string][]string{
		"wheelchair": {"Dewan Serbaguna Gombak", "SK Gombak"},
		"cat":        {"Dewan Serbaguna Gombak", "Kolej Komuniti Gombak"},
	}}
	runner := NewRunner(&stubExtractor{}, recommender, 3.2, 101.6)

	queries := []GoldenQuery{
		{ID: "q1", Query: "wheelchair", ExpectedTop: "Dewan Serbaguna Gombak"},
		{ID: "q2", Query: "cat", ExpectedTop: "Kolej Komuniti Gombak"},
	}

	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.RankedQueries != 2 {
		t.Errorf("expected 2 ranked queries, got %d", summary.RankedQueries)
	}
	if summary.Top1Hits != 1 {
		t.Errorf("expected 1 top-1 hit, got %d", summary.Top1Hits)
	}
	if !almostEqual(summary.Top1Accuracy, 0.5) {
		t.Errorf("expected top-1 accuracy 0.5, got %f", summary.Top1Accuracy)
	}
	// Ranks 1 and 2 give (1.0 + 0.5) / 2.
	if !almostEqual(summary.MRR, 0.75) {
		t.Errorf("expected MRR 0.75, got %f", summary.MRR)
	}
}

func TestRunner_UnlabeledQuerySkipsRanking(t *testing.T) {
	recommender := &stubRecommender{}
	runner := NewRunner(&stubExtractor{}, recommender, 3.2, 101.6)

	queries := []GoldenQuery{
		{ID: "q1", Query: "what should i pack"},
	}

	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recommender.calls != 0 {
		t.Errorf("expected no recommender calls, got %d", recommender.calls)
	}
	if summary.RankedQueries != 0 {
		t.Errorf("expected 0 ranked queries, got %d", summary.RankedQueries)
	}
	if summary.TotalQueries != 1 {
		t.Errorf("expected 1 total query, got %d", summary.TotalQueries)
	}
}

func TestRunner_FallbackListingIsRanked(t *testing.T) {
	recommender := &stubRecommender{fallback: map[string][]string{
		"hello": {"SK Gombak", "Dewan Serbaguna Gombak"},
	}}
	runner := NewRunner(&stubExtractor{}, recommender, 3.2, 101.6)

	queries := []GoldenQuery{
		{ID: "q1", Query: "hello", ExpectedTop: "SK Gombak"},
	}

	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(summary.Top1Accuracy, 1.0) {
		t.Errorf("expected top-1 accuracy 1.0, got %f", summary.Top1Accuracy)
	}
}

func TestRunner_RecommenderErrorSkipsQuery(t *testing.T) {
	recommender := &stubRecommender{err: errors.New("engine down")}
	runner := NewRunner(&stubExtractor{}, recommender, 3.2, 101.6)

	queries := []GoldenQuery{
		{ID: "q1", Query: "wheelchair", ExpectedTop: "SK Gombak"},
	}

	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.RankedQueries != 0 {
		t.Errorf("expected 0 ranked queries, got %d", summary.RankedQueries)
	}
	if len(summary.ByLanguage) != 0 {
		t.Errorf("expected no language summaries, got %d", len(summary.ByLanguage))
	}
}

func TestRunner_ByLanguageGrouping(t *testing.T) {
	recommender := &stubRecommender{rankings: map[string][]string{
		"wheelchair":  {"Dewan Serbaguna Gombak"},
		"kerusi roda": {"SK Gombak", "Dewan Serbaguna Gombak"},
	}}
	runner := NewRunner(&stubExtractor{}, recommender, 3.2, 101.6)

	queries := []GoldenQuery{
		{ID: "q1", Query: "wheelchair", Language: "en", ExpectedTop: "Dewan Serbaguna Gombak"},
		{ID: "q2", Query: "kerusi roda", Language: "ms", ExpectedTop: "Dewan Serbaguna Gombak"},
		{ID: "q3", Query: "what should i pack", Language: ""},
	}

	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	en := summary.ByLanguage["en"]
	if en == nil {
		t.Fatal("expected en summary")
	}
	// The unlabeled query is grouped under English.
	if en.Count != 2 {
		t.Errorf("expected en count 2, got %d", en.Count)
	}
	if en.RankedCount != 1 || !almostEqual(en.Top1Accuracy, 1.0) {
		t.Errorf("unexpected en ranking summary: %+v", en)
	}

	ms := summary.ByLanguage["ms"]
	if ms == nil {
		t.Fatal("expected ms summary")
	}
	if ms.Count != 1 {
		t.Errorf("expected ms count 1, got %d", ms.Count)
	}
	if !almostEqual(ms.Top1Accuracy, 0.0) || !almostEqual(ms.MRR, 0.5) {
		t.Errorf("unexpected ms ranking summary: %+v", ms)
	}
}
