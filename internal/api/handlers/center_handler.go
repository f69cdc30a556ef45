package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/banjirlab/relief-assistant/internal/application/services"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

// CenterHandler serves the center directory, the live consensus snapshot,
// and the GET form of the recommendation entry point.
type CenterHandler struct {
	recommender *services.RecommendationService
	consensus   *services.ConsensusService
}

// NewCenterHandler creates a new center handler
func NewCenterHandler(recommender *services.RecommendationService, consensus *services.ConsensusService) *CenterHandler {
	return &CenterHandler{
		recommender: recommender,
		consensus:   consensus,
	}
}

// ListCenters handles GET /api/centers
func (h *CenterHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	centers := h.recommender.Centers()

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"centers": centers,
		"count":   len(centers),
	})
}

// GetCenterStatuses handles GET /api/centers/status. The snapshot is rebuilt
// on every call so callers always see the current consensus, never a cached
// view.
func (h *CenterHandler) GetCenterStatuses(w http.ResponseWriter, r *http.Request) {
	h.consensus.Rebuild(r.Context())
	statuses := h.consensus.Snapshot()

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"statuses": statuses,
		"count":    len(statuses),
	})
}

// GetRecommendations handles GET /api/recommendations?query=&lat=&lon=&language=
func (h *CenterHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	lat, err := strconv.ParseFloat(params.Get("lat"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid latitude parameter")
		return
	}

	lon, err := strconv.ParseFloat(params.Get("lon"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid longitude parameter")
		return
	}

	recommendation, err := h.recommender.Recommend(r.Context(), params.Get("query"), lat, lon, params.Get("language"))
	if err != nil {
		respondWithAppError(w, err, "failed to build recommendations")
		return
	}

	respondWithJSON(w, http.StatusOK, recommendation)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps a service error onto an HTTP status. Anything that
// is not an AppError is reported as the generic fallback message so internal
// detail never leaks to callers.
func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, fallback)
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeRateLimit:
		respondWithError(w, http.StatusTooManyRequests, appErr.Message)
	case apperrors.ErrorTypeStorage:
		respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}
