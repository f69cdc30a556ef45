package services

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// User location for ranking tests. Center distances are set via latitude
// offsets: 0.009 degrees is roughly one kilometer.
const (
	testLat = 3.2000
	testLon = 101.6000
)

func centerAt(name string, kmNorth float64, caps ...string) entities.Center {
	return entities.Center{
		Name:         name,
		Location:     entities.Location{Latitude: testLat + kmNorth*0.009, Longitude: testLon},
		Capabilities: caps,
	}
}

func newTestEngine(centers []entities.Center, logStore *stubReportLog) *RecommendationService {
	consensus := NewConsensusService(logStore, nil, 0, 0)
	return NewRecommendationService(centers, NewNeedExtractor(), NewCapabilityMatcher(), consensus)
}

func scenarioCenters() []entities.Center {
	return []entities.Center{
		centerAt("SK Gombak", 1, "stairs_only", "no_pets"),
		centerAt("Dewan Serbaguna", 3, "ground_floor", "designated_pet_area"),
	}
}

// --- End-to-end scenario ---

func TestRecommend_WheelchairWithCat(t *testing.T) {
	engine := newTestEngine(scenarioCenters(), &stubReportLog{})

	rec, err := engine.Recommend(context.Background(), "grandmother in wheelchair with a cat", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Fallback != nil {
		t.Fatal("expected a ranked list, got fallback")
	}
	if len(rec.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(rec.Items))
	}

	// The farther center matches both needs and outranks the nearer one
	// that fails them.
	if rec.Items[0].Name != "Dewan Serbaguna" || rec.Items[0].Status != entities.StatusBestMatch {
		t.Errorf("expected Dewan Serbaguna BEST_MATCH first, got %s %s", rec.Items[0].Name, rec.Items[0].Status)
	}
	if rec.Items[1].Name != "SK Gombak" || rec.Items[1].Status != entities.StatusNotSuitable {
		t.Errorf("expected SK Gombak NOT_SUITABLE second, got %s %s", rec.Items[1].Name, rec.Items[1].Status)
	}
	if rec.Items[0].DistanceKM < 2.9 || rec.Items[0].DistanceKM > 3.1 {
		t.Errorf("expected ~3 km for Dewan Serbaguna, got %f", rec.Items[0].DistanceKM)
	}
}

func TestRecommend_ReportSubmissionVisibility(t *testing.T) {
	// Two FULL reports from different reporters flip the best match to
	// CRITICAL_ISSUE in the same process, no restart.
	logStore := &stubReportLog{}
	engine := newTestEngine(scenarioCenters(), logStore)
	now := time.Now().Unix()

	logStore.Append(context.Background(), entities.StatusReport{
		ID: "r1", CenterName: "Dewan Serbaguna", Status: entities.ReportStatusFull, ReporterID: "a", Timestamp: now,
	})
	logStore.Append(context.Background(), entities.StatusReport{
		ID: "r2", CenterName: "Dewan Serbaguna", Status: entities.ReportStatusFull, ReporterID: "b", Timestamp: now,
	})

	rec, err := engine.Recommend(context.Background(), "grandmother in wheelchair with a cat", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var dewan entities.RecommendationItem
	for _, item := range rec.Items {
		if item.Name == "Dewan Serbaguna" {
			dewan = item
		}
	}
	if dewan.Status != entities.StatusCriticalIssue {
		t.Errorf("expected CRITICAL_ISSUE after two FULL reports, got %s", dewan.Status)
	}
	if !strings.Contains(dewan.Reason, "CRITICAL") {
		t.Errorf("expected live critical prefix in reason, got %q", dewan.Reason)
	}
}

// --- Live override precedence ---

func TestRecommend_LiveCriticalOverridesBestMatch(t *testing.T) {
	now := time.Now().Unix()
	logStore := &stubReportLog{reports: []entities.StatusReport{
		{ID: "r1", CenterName: "Dewan Serbaguna", Status: entities.ReportStatusFull, ReporterID: "a", Timestamp: now},
		{ID: "r2", CenterName: "Dewan Serbaguna", Status: entities.ReportStatusCriticalIssue, ReporterID: "b", Timestamp: now},
	}}
	engine := newTestEngine(scenarioCenters(), logStore)

	rec, err := engine.Recommend(context.Background(), "grandmother in wheelchair with a cat", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range rec.Items {
		if item.Name == "Dewan Serbaguna" && item.Status == entities.StatusBestMatch {
			t.Error("live CRITICAL_ISSUE must never surface as BEST_MATCH")
		}
	}
}

func TestRecommend_WarningDoesNotOverrideNotSuitable(t *testing.T) {
	now := time.Now().Unix()
	logStore := &stubReportLog{reports: []entities.StatusReport{
		{ID: "r1", CenterName: "SK Gombak", Status: entities.ReportStatusNoFood, ReporterID: "a", Timestamp: now},
	}}
	engine := newTestEngine(scenarioCenters(), logStore)

	rec, err := engine.Recommend(context.Background(), "grandmother in wheelchair with a cat", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range rec.Items {
		if item.Name == "SK Gombak" && item.Status != entities.StatusNotSuitable {
			t.Errorf("expected NOT_SUITABLE to stand over a live WARNING, got %s", item.Status)
		}
	}
}

func TestRecommend_WarningOverridesSuitable(t *testing.T) {
	now := time.Now().Unix()
	centers := []entities.Center{
		centerAt("Kolej Komuniti", 2, "ground_floor"),
	}
	logStore := &stubReportLog{reports: []entities.StatusReport{
		{ID: "r1", CenterName: "Kolej Komuniti", Status: entities.ReportStatusNeedBlankets, ReporterID: "a", Timestamp: now},
	}}
	engine := newTestEngine(centers, logStore)

	// ground_floor matches, pet_area unknown: SUITABLE before the override.
	rec, err := engine.Recommend(context.Background(), "wheelchair user with a dog", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Items[0].Status != entities.StatusWarning {
		t.Errorf("expected WARNING override, got %s", rec.Items[0].Status)
	}
	if !strings.Contains(rec.Items[0].Reason, entities.ReportStatusNeedBlankets) {
		t.Errorf("expected latest report status in reason, got %q", rec.Items[0].Reason)
	}
}

// --- Ranking order ---

func TestRecommend_RankingOrderHoldsPairwise(t *testing.T) {
	now := time.Now().Unix()
	centers := []entities.Center{
		centerAt("Far Best", 5, "ground_floor", "designated_pet_area"),
		centerAt("Near Best", 1, "ground_floor", "designated_pet_area"),
		centerAt("Suitable Hall", 2, "ground_floor"),
		centerAt("Warned Hall", 1, "ground_floor", "designated_pet_area"),
		centerAt("Blocked Hall", 1, "stairs_only"),
	}
	logStore := &stubReportLog{reports: []entities.StatusReport{
		{ID: "r1", CenterName: "Warned Hall", Status: entities.ReportStatusNoFood, ReporterID: "a", Timestamp: now},
	}}
	engine := newTestEngine(centers, logStore)

	rec, err := engine.Recommend(context.Background(), "wheelchair and a cat", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(rec.Items); i++ {
		prev, cur := rec.Items[i-1], rec.Items[i]
		if prev.Status.Priority() > cur.Status.Priority() {
			t.Errorf("status order violated at %d: %s before %s", i, prev.Status, cur.Status)
		}
		if prev.Status == cur.Status && prev.DistanceKM > cur.DistanceKM {
			t.Errorf("distance order violated within %s: %f before %f", cur.Status, prev.DistanceKM, cur.DistanceKM)
		}
	}

	if rec.Items[0].Name != "Near Best" || rec.Items[1].Name != "Far Best" {
		t.Errorf("expected both best matches first by distance, got %s then %s", rec.Items[0].Name, rec.Items[1].Name)
	}
	if rec.Items[len(rec.Items)-1].Name != "Blocked Hall" {
		t.Errorf("expected NOT_SUITABLE last, got %s", rec.Items[len(rec.Items)-1].Name)
	}
}

// --- Fallback path ---

func TestRecommend_FallbackOnNoNeeds(t *testing.T) {
	engine := newTestEngine(scenarioCenters(), &stubReportLog{})

	rec, err := engine.Recommend(context.Background(), "hello", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Fallback == nil {
		t.Fatal("expected fallback result for a query with no needs")
	}
	if len(rec.Fallback.Items) != 2 {
		t.Fatalf("expected all centers in fallback, got %d", len(rec.Fallback.Items))
	}
	if rec.Fallback.Items[0].Name != "SK Gombak" {
		t.Errorf("expected nearest center first, got %s", rec.Fallback.Items[0].Name)
	}
	if rec.Fallback.Items[0].Status != entities.LiveStatusOK {
		t.Errorf("expected OK status with no reports, got %s", rec.Fallback.Items[0].Status)
	}
}

func TestRecommend_FallbackRanksLiveStatusFirst(t *testing.T) {
	now := time.Now().Unix()
	logStore := &stubReportLog{reports: []entities.StatusReport{
		{ID: "r1", CenterName: "SK Gombak", Status: entities.ReportStatusFull, ReporterID: "a", Timestamp: now},
		{ID: "r2", CenterName: "SK Gombak", Status: entities.ReportStatusFull, ReporterID: "b", Timestamp: now},
	}}
	engine := newTestEngine(scenarioCenters(), logStore)

	rec, err := engine.Recommend(context.Background(), "hello", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The nearer center is critical, so the clean one leads despite distance.
	if rec.Fallback.Items[0].Name != "Dewan Serbaguna" {
		t.Errorf("expected clean center first, got %s", rec.Fallback.Items[0].Name)
	}
	if rec.Fallback.Items[1].Status != entities.LiveStatusCriticalIssue {
		t.Errorf("expected CRITICAL_ISSUE for reported center, got %s", rec.Fallback.Items[1].Status)
	}
}

func TestRecommend_FallbackMessageLocalized(t *testing.T) {
	engine := newTestEngine(scenarioCenters(), &stubReportLog{})

	rec, _ := engine.Recommend(context.Background(), "hai", testLat, testLon, "ms")
	if !strings.Contains(rec.Fallback.Message, "Tiada keperluan khusus") {
		t.Errorf("expected Malay fallback message, got %q", rec.Fallback.Message)
	}

	rec, _ = engine.Recommend(context.Background(), "hello", testLat, testLon, "xx")
	if !strings.Contains(rec.Fallback.Message, "No specific needs") {
		t.Errorf("expected English fallback for unknown language, got %q", rec.Fallback.Message)
	}
}

// --- Edge cases ---

func TestRecommend_MissingCoordinatesExcluded(t *testing.T) {
	centers := append(scenarioCenters(), entities.Center{
		Name:         "Unmapped Hall",
		Capabilities: []string{"ground_floor"},
	})
	engine := newTestEngine(centers, &stubReportLog{})

	rec, err := engine.Recommend(context.Background(), "wheelchair", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range rec.Items {
		if item.Name == "Unmapped Hall" {
			t.Error("center without coordinates must be excluded")
		}
	}
}

func TestRecommend_NonFiniteCoordinatesRejected(t *testing.T) {
	engine := newTestEngine(scenarioCenters(), &stubReportLog{})

	if _, err := engine.Recommend(context.Background(), "wheelchair", math.NaN(), testLon, "en"); err == nil {
		t.Error("expected error for NaN latitude")
	}
	if _, err := engine.Recommend(context.Background(), "wheelchair", testLat, math.Inf(1), "en"); err == nil {
		t.Error("expected error for infinite longitude")
	}
}

func TestRecommend_NoCentersDegradesToEmpty(t *testing.T) {
	engine := newTestEngine(nil, &stubReportLog{})

	rec, err := engine.Recommend(context.Background(), "wheelchair", testLat, testLon, "en")
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}
	if len(rec.Items) != 0 {
		t.Errorf("expected empty items, got %d", len(rec.Items))
	}
}

func TestRecommend_NoRecentReportNoticeAppended(t *testing.T) {
	engine := newTestEngine(scenarioCenters(), &stubReportLog{})

	rec, _ := engine.Recommend(context.Background(), "wheelchair with a cat", testLat, testLon, "en")
	for _, item := range rec.Items {
		if !strings.Contains(item.Reason, "no recent status reports") {
			t.Errorf("expected no-recent-report notice for %s, got %q", item.Name, item.Reason)
		}
	}
}

func TestRecommend_ReasonLocalizedMalay(t *testing.T) {
	engine := newTestEngine(scenarioCenters(), &stubReportLog{})

	rec, _ := engine.Recommend(context.Background(), "nenek saya guna kerusi roda, ada kucing", testLat, testLon, "ms")
	if rec.Fallback != nil {
		t.Fatal("expected ranked list for Malay needs query")
	}
	top := rec.Items[0]
	if !strings.Contains(top.Reason, "tersedia") {
		t.Errorf("expected Malay need fragments, got %q", top.Reason)
	}
}
