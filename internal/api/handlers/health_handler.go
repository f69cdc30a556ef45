package handlers

import (
	"net/http"

	"github.com/banjirlab/relief-assistant/internal/application/services"
)

// HealthDependencies flags which optional backends the process managed to
// connect to at startup. The service runs without any of them.
type HealthDependencies struct {
	Redis     bool `json:"redis"`
	Typesense bool `json:"typesense"`
	OpenAI    bool `json:"openai"`
}

// HealthHandler reports liveness plus a summary of the data and optional
// dependencies this instance is running with.
type HealthHandler struct {
	recommender *services.RecommendationService
	retrieval   *services.RetrievalService
	sse         *SSEHandler
	deps        HealthDependencies
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(recommender *services.RecommendationService, retrieval *services.RetrievalService, sse *SSEHandler, deps HealthDependencies) *HealthHandler {
	return &HealthHandler{
		recommender: recommender,
		retrieval:   retrieval,
		sse:         sse,
		deps:        deps,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status":       "ok",
		"dependencies": h.deps,
	}
	if h.recommender != nil {
		payload["centers"] = len(h.recommender.Centers())
	}
	if h.retrieval != nil {
		payload["documents"] = h.retrieval.Size()
	}
	if h.sse != nil {
		payload["stream_clients"] = h.sse.GetClientCount()
	}

	respondWithJSON(w, http.StatusOK, payload)
}
