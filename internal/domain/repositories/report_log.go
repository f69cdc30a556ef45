package repositories

import (
	"context"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// ReportLog is the append-only durable store of status reports. The full
// sequence is the source of truth for every consensus rebuild; there is no
// separate index.
type ReportLog interface {
	// All returns every stored report in append order. A corrupt or absent
	// store reads as empty.
	All(ctx context.Context) ([]entities.StatusReport, error)

	// Append durably adds one report to the end of the log.
	Append(ctx context.Context, report entities.StatusReport) error
}
