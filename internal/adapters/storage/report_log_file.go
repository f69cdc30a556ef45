package storage

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

// FileReportLog implements ReportLog over a single JSON array file, the
// durable source of truth for consensus. A corrupt or absent file reads as
// empty; individual malformed records are skipped rather than failing the
// whole read.
type FileReportLog struct {
	path string
	mu   sync.Mutex
}

// NewFileReportLog creates a report log backed by path. The file is created
// on first append.
func NewFileReportLog(path string) repositories.ReportLog {
	return &FileReportLog{path: path}
}

// All returns every report currently in the log.
func (l *FileReportLog) All(ctx context.Context) ([]entities.StatusReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked()
}

// Append adds one report and persists the whole log via temp-file + rename,
// so a crash mid-write never leaves a truncated log behind.
func (l *FileReportLog) Append(ctx context.Context, report entities.StatusReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	reports, err := l.readLocked()
	if err != nil {
		return err
	}
	reports = append(reports, report)

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return apperrors.NewInternalError("failed to marshal report log", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageError("failed to create report log directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".reports-*.json")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp report log", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to write report log", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to flush report log", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to replace report log", err)
	}
	return nil
}

func (l *FileReportLog) readLocked() ([]entities.StatusReport, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read report log", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Warning: report log %s is corrupt, treating as empty: %v", l.path, err)
		return nil, nil
	}

	reports := make([]entities.StatusReport, 0, len(raw))
	for i, entry := range raw {
		var report entities.StatusReport
		if err := json.Unmarshal(entry, &report); err != nil {
			log.Printf("Warning: skipping malformed report record %d in %s: %v", i, l.path, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}
