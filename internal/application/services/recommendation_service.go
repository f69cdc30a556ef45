package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
	"github.com/banjirlab/relief-assistant/pkg/geo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	recommendationMetricsOnce sync.Once
	recommendationCounter     metric.Int64Counter
)

// RecommendationService combines need extraction, capability matching, and
// the live-status consensus into a ranked, explained center list.
type RecommendationService struct {
	centers   []entities.Center
	extractor *NeedExtractor
	matcher   *CapabilityMatcher
	consensus *ConsensusService
}

// rankedCenter carries one candidate through ranking.
type rankedCenter struct {
	center entities.Center
	dist   float64
}

// NewRecommendationService creates the engine over a fixed center list. The
// list is shared read-only; an empty list degrades to empty results.
func NewRecommendationService(centers []entities.Center, extractor *NeedExtractor, matcher *CapabilityMatcher, consensus *ConsensusService) *RecommendationService {
	return &RecommendationService{
		centers:   centers,
		extractor: extractor,
		matcher:   matcher,
		consensus: consensus,
	}
}

// Centers returns the static center list. Callers must not mutate it.
func (s *RecommendationService) Centers() []entities.Center {
	return s.centers
}

// Recommend ranks every center for the query and location. When the query
// expresses no recognizable need the result is the nearest-centers fallback
// instead of a need-aware ranking. Data problems degrade; only non-finite
// coordinates are a caller error.
func (s *RecommendationService) Recommend(ctx context.Context, query string, lat, lon float64, language string) (*entities.Recommendation, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return nil, apperrors.NewValidationError("coordinates must be finite numbers")
	}
	lang := NormalizeLanguage(language)

	// Rebuild defensively so a ranking never sees a stale snapshot, even if
	// a submission's rebuild was interrupted.
	s.consensus.Rebuild(ctx)
	live := s.consensus.Snapshot()

	candidates := make([]rankedCenter, 0, len(s.centers))
	for _, c := range s.centers {
		if !c.HasCoordinates() {
			continue
		}
		d := geo.RoundKM(geo.DistanceKM(lat, lon, c.Location.Latitude, c.Location.Longitude))
		candidates = append(candidates, rankedCenter{center: c, dist: d})
	}

	needs := s.extractor.Extract(query)
	if !needs.Any() {
		rec := s.fallback(candidates, live, lang, needs)
		s.recordServed(ctx, true)
		return rec, nil
	}

	active := needs.Active()
	items := make([]entities.RecommendationItem, 0, len(candidates))
	for _, cand := range candidates {
		items = append(items, s.buildItem(cand, active, live, lang))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Status.Priority() != items[j].Status.Priority() {
			return items[i].Status.Priority() < items[j].Status.Priority()
		}
		return items[i].DistanceKM < items[j].DistanceKM
	})

	s.recordServed(ctx, false)
	return &entities.Recommendation{Needs: needs, Items: items}, nil
}

func (s *RecommendationService) buildItem(cand rankedCenter, active []entities.NeedKind, live map[string]entities.AggregatedStatus, lang string) entities.RecommendationItem {
	status, assessments := s.matcher.Match(cand.center, active)

	livePrefix := ""
	if agg, ok := live[cand.center.Name]; ok {
		switch {
		case agg.FinalStatus == entities.LiveStatusCriticalIssue:
			// Live data always wins over a capability-only best match.
			status = entities.StatusCriticalIssue
			livePrefix = LiveCriticalPhrase(lang, agg.CriticalCount, agg.LatestStatus)
		case agg.FinalStatus == entities.LiveStatusWarning &&
			status != entities.StatusNotSuitable && status != entities.StatusCriticalIssue:
			status = entities.StatusWarning
			if agg.CriticalCount == 1 {
				livePrefix = LiveUnverifiedPhrase(lang, agg.LatestCriticalStatus)
			} else {
				livePrefix = LiveLatestReportPhrase(lang, agg.LatestStatus)
			}
		}
	}

	parts := make([]string, 0, len(assessments)+2)
	if livePrefix != "" {
		parts = append(parts, livePrefix)
	}
	for _, a := range assessments {
		parts = append(parts, NeedPhrase(lang, a))
	}
	if livePrefix == "" {
		parts = append(parts, NoRecentReportPhrase(lang))
	}

	return entities.RecommendationItem{
		Name:        cand.center.Name,
		Location:    cand.center.Location,
		DistanceKM:  cand.dist,
		Status:      status,
		Reason:      strings.Join(parts, "; "),
		Assessments: assessments,
	}
}

func (s *RecommendationService) fallback(candidates []rankedCenter, live map[string]entities.AggregatedStatus, lang string, needs entities.NeedFlags) *entities.Recommendation {
	items := make([]entities.FallbackItem, 0, len(candidates))
	for _, cand := range candidates {
		status := entities.LiveStatusOK
		if agg, ok := live[cand.center.Name]; ok {
			status = agg.FinalStatus
		}
		items = append(items, entities.FallbackItem{
			Name:       cand.center.Name,
			Location:   cand.center.Location,
			DistanceKM: cand.dist,
			Status:     status,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Status.Priority() != items[j].Status.Priority() {
			return items[i].Status.Priority() < items[j].Status.Priority()
		}
		return items[i].DistanceKM < items[j].DistanceKM
	})

	return &entities.Recommendation{
		Needs: needs,
		Fallback: &entities.FallbackResult{
			Message: FallbackMessagePhrase(lang),
			Items:   items,
		},
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func initRecommendationMetrics() {
	meter := otel.Meter("github.com/banjirlab/relief-assistant/recommendation")
	counter, err := meter.Int64Counter(
		"recommendations.served",
		metric.WithDescription("Count of recommendation responses served"),
	)
	if err == nil {
		recommendationCounter = counter
	}
}

func (s *RecommendationService) recordServed(ctx context.Context, fallback bool) {
	recommendationMetricsOnce.Do(initRecommendationMetrics)
	if recommendationCounter == nil {
		return
	}
	recommendationCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("fallback", fallback)))
}
