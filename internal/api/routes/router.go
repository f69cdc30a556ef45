package routes

import (
	"net/http"

	"github.com/banjirlab/relief-assistant/internal/api/handlers"
	"github.com/banjirlab/relief-assistant/internal/api/middleware"
	"github.com/banjirlab/relief-assistant/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	queryHandler  *handlers.QueryHandler
	reportHandler *handlers.ReportHandler
	centerHandler *handlers.CenterHandler
	uploadHandler *handlers.UploadHandler
	sseHandler    *handlers.SSEHandler
	healthHandler *handlers.HealthHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  string
}

// NewRouter creates a new router
func NewRouter(
	queryHandler *handlers.QueryHandler,
	reportHandler *handlers.ReportHandler,
	centerHandler *handlers.CenterHandler,
	uploadHandler *handlers.UploadHandler,
	sseHandler *handlers.SSEHandler,
	healthHandler *handlers.HealthHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins string,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		queryHandler:    queryHandler,
		reportHandler:   reportHandler,
		centerHandler:   centerHandler,
		uploadHandler:   uploadHandler,
		sseHandler:      sseHandler,
		healthHandler:   healthHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
		allowedOrigins:  allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Assistant endpoints
	r.mux.HandleFunc("POST /api/query", r.queryHandler.HandleQuery)

	// Crowd report endpoints
	r.mux.HandleFunc("POST /api/reports", r.reportHandler.SubmitReport)

	// Center endpoints
	r.mux.HandleFunc("GET /api/centers", r.centerHandler.ListCenters)
	r.mux.HandleFunc("GET /api/centers/status", r.centerHandler.GetCenterStatuses)
	r.mux.HandleFunc("GET /api/recommendations", r.centerHandler.GetRecommendations)

	// Document ingestion endpoint
	r.mux.HandleFunc("POST /api/upload", r.uploadHandler.UploadDocument)

	// Live status stream
	r.mux.HandleFunc("GET /api/stream/status", r.sseHandler.StreamStatusUpdates)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
