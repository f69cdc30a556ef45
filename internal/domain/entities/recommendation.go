package entities

// MatchStatus is the final per-center status in a need-aware recommendation.
type MatchStatus string

const (
	StatusBestMatch     MatchStatus = "BEST_MATCH"
	StatusSuitable      MatchStatus = "SUITABLE"
	StatusWarning       MatchStatus = "WARNING"
	StatusCriticalIssue MatchStatus = "CRITICAL_ISSUE"
	StatusNotSuitable   MatchStatus = "NOT_SUITABLE"
)

var matchStatusPriority = map[MatchStatus]int{
	StatusBestMatch:     0,
	StatusSuitable:      1,
	StatusWarning:       2,
	StatusCriticalIssue: 3,
	StatusNotSuitable:   4,
}

// Priority returns the sort rank of the status, lower is better.
func (s MatchStatus) Priority() int {
	if p, ok := matchStatusPriority[s]; ok {
		return p
	}
	return len(matchStatusPriority)
}

// RecommendationItem is one ranked center in a need-aware recommendation.
type RecommendationItem struct {
	Name        string           `json:"name"`
	Location    Location         `json:"location"`
	DistanceKM  float64          `json:"distance_km"`
	Status      MatchStatus      `json:"status"`
	Reason      string           `json:"reason"`
	Assessments []NeedAssessment `json:"assessments,omitempty"`
}

// FallbackItem is one center in the nearest-centers fallback listing served
// when the query expressed no recognizable need.
type FallbackItem struct {
	Name       string     `json:"name"`
	Location   Location   `json:"location"`
	DistanceKM float64    `json:"distance_km"`
	Status     LiveStatus `json:"status"`
}

// FallbackResult lists every center by live status and distance, with a
// localized explanation of why no filtering was applied.
type FallbackResult struct {
	Message string         `json:"message"`
	Items   []FallbackItem `json:"items"`
}

// Recommendation is the engine's answer to one query: exactly one of Items
// or Fallback is populated.
type Recommendation struct {
	Needs    NeedFlags            `json:"needs"`
	Items    []RecommendationItem `json:"items,omitempty"`
	Fallback *FallbackResult      `json:"fallback,omitempty"`
}
