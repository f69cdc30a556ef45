package entities

// StatusReport is one crowdsourced report about a center's live condition.
// Reports are append-only: never mutated or deleted, only filtered by age
// when the consensus is rebuilt.
type StatusReport struct {
	ID         string `json:"id"`
	CenterName string `json:"center_name"`
	Status     string `json:"status"`
	ReporterID string `json:"reporter_id"`
	Timestamp  int64  `json:"timestamp"`
}

// Well-known report statuses. Status is free text on the wire; these values
// carry consensus weight.
const (
	ReportStatusFull          = "FULL"
	ReportStatusCriticalIssue = "CRITICAL_ISSUE"
	ReportStatusNoFood        = "NO_FOOD"
	ReportStatusNeedBlankets  = "NEED_BLANKETS"
)

// IsCriticalReportStatus reports whether a raw status counts toward the
// critical consensus threshold.
func IsCriticalReportStatus(status string) bool {
	return status == ReportStatusFull || status == ReportStatusCriticalIssue
}

// IsWarningReportStatus reports whether a raw status downgrades a center to
// WARNING on its own.
func IsWarningReportStatus(status string) bool {
	return status == ReportStatusNoFood || status == ReportStatusNeedBlankets
}

// Valid reports whether the record is usable for aggregation. Malformed
// records are skipped, not errored on.
func (r StatusReport) Valid() bool {
	return r.CenterName != "" && r.Timestamp > 0
}
