package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

func TestFileReportLog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	logStore := NewFileReportLog(path)
	ctx := context.Background()

	first := entities.StatusReport{ID: "r1", CenterName: "SK Gombak", Status: "FULL", ReporterID: "a", Timestamp: 1700000000}
	second := entities.StatusReport{ID: "r2", CenterName: "SK Gombak", Status: "NO_FOOD", ReporterID: "b", Timestamp: 1700000100}

	if err := logStore.Append(ctx, first); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := logStore.Append(ctx, second); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	reports, err := logStore.All(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID != "r1" || reports[1].ID != "r2" {
		t.Errorf("append order not preserved: %+v", reports)
	}
	if reports[1].Status != "NO_FOOD" || reports[1].Timestamp != 1700000100 {
		t.Errorf("fields lost in round trip: %+v", reports[1])
	}
}

func TestFileReportLog_AbsentFileReadsEmpty(t *testing.T) {
	logStore := NewFileReportLog(filepath.Join(t.TempDir(), "reports.json"))

	reports, err := logStore.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected empty log, got %d", len(reports))
	}
}

func TestFileReportLog_AppendCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "reports.json")
	logStore := NewFileReportLog(path)

	report := entities.StatusReport{ID: "r1", CenterName: "SK Gombak", Status: "FULL", Timestamp: 1}
	if err := logStore.Append(context.Background(), report); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected log file to exist: %v", err)
	}
}

func TestFileReportLog_CorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	logStore := NewFileReportLog(path)

	reports, err := logStore.All(context.Background())
	if err != nil {
		t.Fatalf("corrupt log must read as empty, got error: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected empty, got %d", len(reports))
	}

	// Appending over a corrupt log starts a fresh array.
	report := entities.StatusReport{ID: "r1", CenterName: "SK Gombak", Status: "FULL", Timestamp: 1}
	if err := logStore.Append(context.Background(), report); err != nil {
		t.Fatalf("append over corrupt log failed: %v", err)
	}
	reports, _ = logStore.All(context.Background())
	if len(reports) != 1 {
		t.Errorf("expected 1 report after recovery, got %d", len(reports))
	}
}

func TestFileReportLog_MalformedRecordSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	content := `[
  {"id": "r1", "center_name": "SK Gombak", "status": "FULL", "reporter_id": "a", "timestamp": 100},
  {"id": "r2", "center_name": "SK Gombak", "status": "FULL", "timestamp": "not-a-number"},
  {"id": "r3", "center_name": "SK Gombak", "status": "NO_FOOD", "reporter_id": "b", "timestamp": 200}
]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	reports, err := NewFileReportLog(path).All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected malformed record skipped, got %d reports", len(reports))
	}
	if reports[0].ID != "r1" || reports[1].ID != "r3" {
		t.Errorf("wrong records survived: %+v", reports)
	}
}

func TestFileReportLog_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	logStore := NewFileReportLog(filepath.Join(dir, "reports.json"))

	for i := 0; i < 3; i++ {
		report := entities.StatusReport{ID: "r", CenterName: "SK Gombak", Status: "FULL", Timestamp: int64(i + 1)}
		if err := logStore.Append(context.Background(), report); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "reports.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only reports.json, got %v", names)
	}
}
