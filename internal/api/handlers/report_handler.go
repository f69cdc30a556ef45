package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
)

const (
	reportRateLimit   = 5
	reportRateWindow  = time.Hour
	reportDedupWindow = 10 * time.Minute

	defaultReporterID = "anonymous"
)

// ReportService defines the report operations used by the handler.
type ReportService interface {
	Submit(ctx context.Context, centerName, status, reporterID string) (entities.StatusReport, error)
}

// ReportHandler handles crowd status-report submissions.
type ReportHandler struct {
	service     ReportService
	cache       providers.CacheProvider
	local       *localRateLimiter
	deduper     *localDeduper
	rateLimit   int
	dedupWindow time.Duration
}

// NewReportHandler creates a new report handler. The cache is optional; when
// absent, rate limiting and dedup fall back to per-instance memory. Zero
// limit or window values select the defaults.
func NewReportHandler(service ReportService, cache providers.CacheProvider, rateLimit int, dedupWindow time.Duration) *ReportHandler {
	if rateLimit <= 0 {
		rateLimit = reportRateLimit
	}
	if dedupWindow <= 0 {
		dedupWindow = reportDedupWindow
	}
	return &ReportHandler{
		service:     service,
		cache:       cache,
		local:       newLocalRateLimiter(),
		deduper:     newLocalDeduper(),
		rateLimit:   rateLimit,
		dedupWindow: dedupWindow,
	}
}

type reportRequest struct {
	CenterName string `json:"center_name"`
	Status     string `json:"status"`
	ReporterID string `json:"reporter_id"`
}

// SubmitReport handles POST /api/reports
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var payload reportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.CenterName = strings.TrimSpace(payload.CenterName)
	payload.Status = strings.TrimSpace(payload.Status)
	payload.ReporterID = strings.TrimSpace(payload.ReporterID)
	if payload.ReporterID == "" {
		payload.ReporterID = defaultReporterID
	}

	if payload.CenterName == "" {
		respondWithError(w, http.StatusBadRequest, "center_name is required")
		return
	}
	if payload.Status == "" {
		respondWithError(w, http.StatusBadRequest, "status is required")
		return
	}
	if len(payload.CenterName) > 200 {
		respondWithError(w, http.StatusBadRequest, "center_name is too long")
		return
	}
	if len(payload.Status) > 100 {
		respondWithError(w, http.StatusBadRequest, "status is too long")
		return
	}
	if len(payload.ReporterID) > 100 {
		respondWithError(w, http.StatusBadRequest, "reporter_id is too long")
		return
	}

	key := "reports:rate:" + clientIP(r)
	allowed, retryAfter := h.allowRequest(r.Context(), key)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	// A repeat of the same observation adds no signal to the consensus, so
	// it is acknowledged without touching the log.
	dupKey := "reports:dup:" + reportFingerprint(payload)
	if h.isDuplicate(r.Context(), dupKey) {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status":  "ok",
			"message": "report already recorded",
		})
		return
	}

	if _, err := h.service.Submit(r.Context(), payload.CenterName, payload.Status, payload.ReporterID); err != nil {
		respondWithAppError(w, err, "failed to submit report")
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status":  "ok",
		"message": "report received, thank you for helping your community",
	})
}

func (h *ReportHandler) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	if h.cache == nil {
		return h.local.allow(key, h.rateLimit, reportRateWindow)
	}

	state := rateLimitState{}
	if data, err := h.cache.Get(ctx, key); err == nil {
		_ = json.Unmarshal(data, &state)
	}

	if state.Count >= h.rateLimit {
		return false, reportRateWindow
	}

	state.Count++
	data, _ := json.Marshal(state)
	_ = h.cache.Set(ctx, key, data, int(reportRateWindow.Seconds()))
	return true, reportRateWindow
}

type rateLimitState struct {
	Count int `json:"count"`
}

func (h *ReportHandler) isDuplicate(ctx context.Context, key string) bool {
	if h.cache == nil {
		return h.deduper.seen(key, h.dedupWindow)
	}

	exists, err := h.cache.Exists(ctx, key)
	if err == nil && exists {
		return true
	}

	_ = h.cache.Set(ctx, key, []byte("1"), int(h.dedupWindow.Seconds()))
	return false
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := time.Until(state.resetAt)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

type localDeduper struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries: make(map[string]time.Time),
	}
}

func (d *localDeduper) seen(key string, window time.Duration) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiresAt, ok := d.entries[key]; ok && now.Before(expiresAt) {
		return true
	}

	d.entries[key] = now.Add(window)
	return false
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// reportFingerprint identifies an observation: who reported what about which
// center. The timestamp is deliberately excluded.
func reportFingerprint(payload reportRequest) string {
	normalized := []string{
		strings.ToLower(payload.ReporterID),
		strings.ToLower(strings.Join(strings.Fields(payload.CenterName), " ")),
		strings.ToUpper(payload.Status),
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
