package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

var (
	reportMetricsOnce sync.Once
	reportCounter     metric.Int64Counter
)

// ReportService handles crowdsourced status report submissions. Each accepted
// report is appended to the shared log and the consensus snapshot is rebuilt
// before the caller is acknowledged, so a submitter immediately sees the
// effect of their own report.
type ReportService struct {
	reportLog repositories.ReportLog
	consensus *ConsensusService
}

// NewReportService creates a new report service.
func NewReportService(reportLog repositories.ReportLog, consensus *ConsensusService) *ReportService {
	return &ReportService{reportLog: reportLog, consensus: consensus}
}

// Submit validates, persists, and applies a status report. Reports may name
// centers the directory does not know; they are logged and simply never
// surface in recommendations.
func (s *ReportService) Submit(ctx context.Context, centerName, status, reporterID string) (entities.StatusReport, error) {
	centerName = strings.TrimSpace(centerName)
	status = strings.TrimSpace(status)
	reporterID = strings.TrimSpace(reporterID)

	if centerName == "" {
		return entities.StatusReport{}, apperrors.NewValidationError("center_name is required")
	}
	if status == "" {
		return entities.StatusReport{}, apperrors.NewValidationError("status is required")
	}

	report := entities.StatusReport{
		ID:         uuid.New().String(),
		CenterName: centerName,
		Status:     status,
		ReporterID: reporterID,
		Timestamp:  time.Now().Unix(),
	}

	if err := s.reportLog.Append(ctx, report); err != nil {
		return entities.StatusReport{}, apperrors.NewStorageError("failed to store status report", err)
	}

	s.recordSubmitted(ctx, report.Status)

	// Rebuild before acknowledging so the next query reflects this report.
	s.consensus.Rebuild(ctx)

	return report, nil
}

func (s *ReportService) recordSubmitted(ctx context.Context, status string) {
	reportMetricsOnce.Do(func() {
		meter := otel.Meter("relief-assistant/reports")
		var err error
		reportCounter, err = meter.Int64Counter(
			"reports.submitted",
			metric.WithDescription("Count of accepted status reports by reported status"),
		)
		if err != nil {
			reportCounter = nil
		}
	})
	if reportCounter == nil {
		return
	}
	reportCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("report.status", status)))
}
