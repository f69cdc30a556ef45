package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
)

// QueryHandler answers free-text questions: corpus retrieval feeds the answer
// provider, and when the caller shared a location the evacuation-center
// recommendations ride along as actions.
type QueryHandler struct {
	retrieval   *services.RetrievalService
	answerer    providers.AnswerProvider
	recommender *services.RecommendationService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(retrieval *services.RetrievalService, answerer providers.AnswerProvider, recommender *services.RecommendationService) *QueryHandler {
	return &QueryHandler{
		retrieval:   retrieval,
		answerer:    answerer,
		recommender: recommender,
	}
}

type queryRequest struct {
	Query    string  `json:"query"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Language string  `json:"language"`
}

type queryResponse struct {
	Answer  string        `json:"answer"`
	Sources []string      `json:"sources"`
	Actions []interface{} `json:"actions,omitempty"`
}

// recommendationAction is one ranked center flattened for the chat client.
type recommendationAction struct {
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason"`
	DistanceKM float64 `json:"distance_km"`
}

// fallbackAction carries the nearest-centers listing served when the query
// expressed no recognizable need.
type fallbackAction struct {
	Type            string                  `json:"type"`
	Message         string                  `json:"message"`
	Recommendations []entities.FallbackItem `json:"recommendations"`
}

// HandleQuery handles POST /api/query
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var payload queryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Query = strings.TrimSpace(payload.Query)
	if payload.Query == "" {
		respondWithError(w, http.StatusBadRequest, "query is required")
		return
	}

	retrieved := h.retrieval.Retrieve(r.Context(), payload.Query, payload.Language)

	answer, err := h.answerer.Answer(r.Context(), providers.AnswerQuery{
		Query:    payload.Query,
		Context:  retrieved.Text,
		Source:   retrieved.Source,
		Language: payload.Language,
		Found:    retrieved.Found,
	})
	if err != nil {
		respondWithAppError(w, err, "failed to generate answer")
		return
	}

	sources := []string{}
	if retrieved.Found {
		sources = append(sources, retrieved.Source)
	}

	response := queryResponse{
		Answer:  answer,
		Sources: sources,
		Actions: h.buildActions(r, payload),
	}

	log.Printf("Query answered: %q language=%s sources=%v", snippet(payload.Query, 80), payload.Language, sources)

	respondWithJSON(w, http.StatusOK, response)
}

// buildActions runs the recommendation engine when the caller shared usable
// coordinates. A zero coordinate means no location; recommendation failures
// never block the answer.
func (h *QueryHandler) buildActions(r *http.Request, payload queryRequest) []interface{} {
	if payload.Lat == 0 || payload.Lon == 0 {
		return nil
	}

	recommendation, err := h.recommender.Recommend(r.Context(), payload.Query, payload.Lat, payload.Lon, payload.Language)
	if err != nil {
		log.Printf("Warning: recommendations unavailable for query: %v", err)
		return nil
	}

	if recommendation.Fallback != nil {
		return []interface{}{fallbackAction{
			Type:            "PPS_NEAREST_FALLBACK",
			Message:         recommendation.Fallback.Message,
			Recommendations: recommendation.Fallback.Items,
		}}
	}

	actions := make([]interface{}, 0, len(recommendation.Items))
	for _, item := range recommendation.Items {
		actions = append(actions, recommendationAction{
			Type:       "PPS_RECOMMENDATION",
			Name:       item.Name,
			Lat:        item.Location.Latitude,
			Lon:        item.Location.Longitude,
			Status:     string(item.Status),
			Reason:     item.Reason,
			DistanceKM: item.DistanceKM,
		})
	}
	return actions
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
