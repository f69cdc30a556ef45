package evaluation

import (
	"context"
	"time"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// Recommender is the slice of the recommendation engine the runner drives.
type Recommender interface {
	Recommend(ctx context.Context, query string, lat, lon float64, language string) (*entities.Recommendation, error)
}

// Extractor detects need flags in a query.
type Extractor interface {
	Extract(query string) entities.NeedFlags
}

// Runner runs evaluation across a set of golden queries from a fixed
// evaluation location.
type Runner struct {
	extractor   Extractor
	recommender Recommender
	lat         float64
	lon         float64
}

func NewRunner(extractor Extractor, recommender Recommender, lat, lon float64) *Runner {
	return &Runner{
		extractor:   extractor,
		recommender: recommender,
		lat:         lat,
		lon:         lon,
	}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		NeedScores:   make(map[entities.NeedKind]*NeedScore),
		ByLanguage:   make(map[string]*LanguageSummary),
	}
	for _, kind := range entities.AllNeedKinds() {
		summary.NeedScores[kind] = &NeedScore{}
	}

	for _, gq := range queries {
		start := time.Now()

		flags := r.extractor.Extract(gq.Query)
		expected := make(map[entities.NeedKind]bool, len(gq.ExpectedNeeds))
		for _, kind := range gq.ExpectedNeeds {
			expected[kind] = true
		}

		result := EvalResult{
			QueryID:  gq.ID,
			Query:    gq.Query,
			Language: gq.Language,
		}

		for _, kind := range entities.AllNeedKinds() {
			score := summary.NeedScores[kind]
			switch {
			case flags[kind] && expected[kind]:
				score.TruePositives++
				result.NeedTP++
			case flags[kind] && !expected[kind]:
				score.FalsePositives++
				result.NeedFP++
			case !flags[kind] && expected[kind]:
				score.FalseNegatives++
				result.NeedFN++
			}
		}

		if gq.ExpectedTop != "" {
			recommendation, err := r.recommender.Recommend(ctx, gq.Query, r.lat, r.lon, gq.Language)
			if err != nil {
				continue
			}
			names := rankedNames(recommendation)
			result.Ranked = true
			result.ResultCount = len(names)
			result.TopRank = RankOf(gq.ExpectedTop, names)
		}
		result.Latency = time.Since(start)

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

// rankedNames flattens whichever listing the engine produced into center
// names in rank order.
func rankedNames(recommendation *entities.Recommendation) []string {
	if recommendation.Fallback != nil {
		names := make([]string, len(recommendation.Fallback.Items))
		for i, item := range recommendation.Fallback.Items {
			names[i] = item.Name
		}
		return names
	}

	names := make([]string, len(recommendation.Items))
	for i, item := range recommendation.Items {
		names[i] = item.Name
	}
	return names
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgLatency += res.Latency

	language := res.Language
	if language == "" {
		language = "en"
	}
	if _, ok := s.ByLanguage[language]; !ok {
		s.ByLanguage[language] = &LanguageSummary{}
	}
	ls := s.ByLanguage[language]
	ls.Count++

	if !res.Ranked {
		return
	}

	s.RankedQueries++
	s.MRR += ReciprocalRank(res.TopRank)
	ls.RankedCount++
	ls.MRR += ReciprocalRank(res.TopRank)
	if res.TopRank == 1 {
		s.Top1Hits++
		ls.Top1Accuracy++
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}
	if s.RankedQueries > 0 {
		n := float64(s.RankedQueries)
		s.Top1Accuracy = float64(s.Top1Hits) / n
		s.MRR /= n
	}

	for _, ls := range s.ByLanguage {
		if ls.RankedCount > 0 {
			n := float64(ls.RankedCount)
			ls.Top1Accuracy /= n
			ls.MRR /= n
		}
	}
}
